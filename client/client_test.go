package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jasonlau05/bookstore/model"
	"github.com/jasonlau05/bookstore/util/apperr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/users/login", func(w http.ResponseWriter, r *http.Request) {
		var req model.LoginReq
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Password != "pw" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"code": "INVALID_CREDENTIALS", "message": "invalid credentials"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"token": "tok-9",
			"user":  map[string]any{"user_id": 9, "username": req.Username, "role": "customer"},
		})
	})
	mux.HandleFunc("GET /v1/books", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "dune messiah", r.URL.Query().Get("query"))
		writeJSON(w, http.StatusOK, map[string]any{"data": []map[string]any{{"id": 42, "title": "Dune Messiah", "buy_price": "12.50", "rent_price": "2.00"}}})
	})
	mux.HandleFunc("POST /v1/orders", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok-9", r.Header.Get("Authorization"))
		var body struct {
			Items []model.CartLine `json:"items"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body.Items[0].BookID == 99 {
			writeJSON(w, http.StatusConflict, map[string]string{"code": "OUT_OF_STOCK", "message": "book 99 is out of stock"})
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"order_id": 100, "total_cost": "12.50"})
	})
	mux.HandleFunc("GET /v1/users/9/orders", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"data": []map[string]any{{"id": 100, "customer_id": 9, "status": "pending"}}})
	})
	mux.HandleFunc("POST /v1/order-items/3/return", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "returned"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Flow(t *testing.T) {
	ctx := context.Background()
	srv := newServer(t)
	c := New(srv.URL+"/", WithHTTPClient(srv.Client()))

	_, err := c.Login(ctx, "ann", "wrong")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.Status)
	require.Equal(t, apperr.InvalidCredentials, apiErr.Code)
	require.Nil(t, c.Session())

	s, err := c.Login(ctx, "ann", "pw")
	require.NoError(t, err)
	require.Equal(t, int64(9), s.User.UserID)

	books, err := c.Books(ctx, "dune messiah")
	require.NoError(t, err)
	require.Len(t, books, 1)

	cart := NewCart()
	require.NoError(t, cart.Add(books[0], model.KindBuy))
	placed, err := c.Checkout(ctx, cart)
	require.NoError(t, err)
	require.Equal(t, int64(100), placed.OrderID)
	require.Zero(t, cart.Len())

	_, err = c.Checkout(ctx, cart)
	require.Error(t, err)

	orders, err := c.MyOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Equal(t, model.OrderPending, orders[0].Status)

	require.NoError(t, c.ReturnRental(ctx, 3))
}

func TestClient_CheckoutFailureKeepsCart(t *testing.T) {
	ctx := context.Background()
	srv := newServer(t)
	c := New(srv.URL, WithHTTPClient(srv.Client()))
	_, err := c.Login(ctx, "ann", "pw")
	require.NoError(t, err)

	cart := NewCart()
	require.NoError(t, cart.Add(book(99, "5", "1"), model.KindBuy))

	_, err = c.Checkout(ctx, cart)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, apperr.OutOfStock, apiErr.Code)
	require.Equal(t, 1, cart.Len())
}
