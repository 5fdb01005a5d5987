package echoServer

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jasonlau05/bookstore/app/echoServer/controller/auth"
	"github.com/jasonlau05/bookstore/app/echoServer/controller/book"
	"github.com/jasonlau05/bookstore/app/echoServer/controller/order"
	"github.com/jasonlau05/bookstore/service/gate"
)

type C struct {
	Auth  *auth.Controller
	Book  *book.Controller
	Order *order.Controller
	Gate  *gate.Gate
	Log   *slog.Logger
}

// Register wires every route with its gate requirement spelled out.
func Register(e *echo.Echo, c C) {
	e.GET("/health", func(ctx echo.Context) error {
		return ctx.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})

	anyRole := Gate(c.Gate, gate.AnyRole, c.Log)
	manager := Gate(c.Gate, gate.ManagerOnly, c.Log)
	customer := Gate(c.Gate, gate.CustomerOnly, c.Log)

	v1 := e.Group("/v1")

	// Public
	v1.POST("/users/register", c.Auth.Register)
	v1.POST("/users/login", c.Auth.Login)

	// Books
	v1.GET("/books", c.Book.List, anyRole)
	v1.GET("/books/:id", c.Book.Detail, anyRole)
	v1.PATCH("/books/:id", c.Book.UpdateFields, manager)

	// Orders
	v1.POST("/orders", c.Order.Place, customer)
	v1.GET("/orders", c.Order.ListAll, manager)
	v1.GET("/users/:id/orders", c.Order.ListMine, customer)
	v1.GET("/orders/:id/items", c.Order.Items, anyRole)
	v1.PUT("/orders/:id/status", c.Order.UpdateStatus, manager)
	v1.POST("/order-items/:id/return", c.Order.ReturnItem, manager)
}
