// Package client calls the bookstore HTTP API.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jasonlau05/bookstore/model"
	"github.com/jasonlau05/bookstore/util/apperr"
	"github.com/jasonlau05/bookstore/util/httpx"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Code    apperr.Code
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("bookstore: %d %s: %s", e.Status, e.Code, e.Message)
}

type Session struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	User      model.Principal `json:"user"`
}

type Client struct {
	base    string
	http    *http.Client
	session *Session
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

func New(baseURL string, opts ...Option) *Client {
	c := &Client{base: strings.TrimRight(baseURL, "/"), http: httpx.Client()}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Session returns the current login, or nil.
func (c *Client) Session() *Session { return c.session }

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	req, err := httpx.JSONRequest(ctx, method, c.base+path, in)
	if err != nil {
		return err
	}
	if c.session != nil {
		httpx.Bearer(req, c.session.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		var body struct {
			Code    apperr.Code `json:"code"`
			Message string      `json:"message"`
		}
		if json.Unmarshal(raw, &body) == nil {
			apiErr.Code, apiErr.Message = body.Code, body.Message
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}

func (c *Client) Register(ctx context.Context, req model.RegisterReq) (int64, error) {
	var out struct {
		ID int64 `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1/users/register", req, &out); err != nil {
		return 0, err
	}
	return out.ID, nil
}

// Login authenticates and keeps the token for later calls.
func (c *Client) Login(ctx context.Context, username, password string) (*Session, error) {
	var s Session
	err := c.do(ctx, http.MethodPost, "/v1/users/login", model.LoginReq{Username: username, Password: password}, &s)
	if err != nil {
		return nil, err
	}
	c.session = &s
	return &s, nil
}

func (c *Client) Logout() { c.session = nil }

func (c *Client) Books(ctx context.Context, query string) ([]model.Book, error) {
	path := "/v1/books"
	if query != "" {
		path += "?query=" + url.QueryEscape(query)
	}
	var out struct {
		Data []model.Book `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// Checkout submits cart as one order and empties it on success.
func (c *Client) Checkout(ctx context.Context, cart *Cart) (*model.PlacedOrder, error) {
	if cart.Len() == 0 {
		return nil, errors.New("cart is empty")
	}
	var out model.PlacedOrder
	err := c.do(ctx, http.MethodPost, "/v1/orders", struct {
		Items []model.CartLine `json:"items"`
	}{cart.Lines()}, &out)
	if err != nil {
		return nil, err
	}
	cart.Clear()
	return &out, nil
}

// MyOrders lists the logged-in customer's orders.
func (c *Client) MyOrders(ctx context.Context) ([]model.Order, error) {
	if c.session == nil {
		return nil, errors.New("not logged in")
	}
	var out struct {
		Data []model.Order `json:"data"`
	}
	path := fmt.Sprintf("/v1/users/%d/orders", c.session.User.UserID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) Orders(ctx context.Context) ([]model.Order, error) {
	var out struct {
		Data []model.Order `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/orders", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) OrderItems(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	var out struct {
		Data []model.OrderItem `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/v1/orders/%d/items", orderID), nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) MarkPaid(ctx context.Context, orderID int64) (*model.Order, error) {
	var out model.Order
	body := map[string]model.OrderStatus{"status": model.OrderPaid}
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/v1/orders/%d/status", orderID), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ReturnRental(ctx context.Context, itemID int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/v1/order-items/%d/return", itemID), nil, nil)
}

func (c *Client) UpdateBook(ctx context.Context, bookID int64, patch model.BookPatch) (*model.Book, error) {
	var out model.Book
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/v1/books/%d", bookID), patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
