package order

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/jasonlau05/bookstore/app/echoServer/httperr"
	"github.com/jasonlau05/bookstore/app/echoServer/jwtx"
	ordersvc "github.com/jasonlau05/bookstore/service/order"
	"github.com/jasonlau05/bookstore/util/apperr"
)

type Controller struct {
	Svc ordersvc.Service
	Log *slog.Logger
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.New(apperr.Validation, "invalid id")
	}
	return id, nil
}

// POST /v1/orders  (customer)
func (h *Controller) Place(c echo.Context) error {
	p, err := jwtx.PrincipalFromContext(c)
	if err != nil {
		return httperr.Fail(c, h.Log, err)
	}

	var req PlaceOrderReq
	if err := c.Bind(&req); err != nil {
		return httperr.Fail(c, h.Log, apperr.New(apperr.Validation, "invalid JSON"))
	}
	if err := c.Validate(&req); err != nil {
		return httperr.Fail(c, h.Log, err)
	}

	out, err := h.Svc.PlaceOrder(c.Request().Context(), p.UserID, req.Items)
	if err != nil {
		return httperr.Fail(c, h.Log, err)
	}
	h.Log.Info("order placed", "order_id", out.OrderID, "customer_id", p.UserID, "total", out.TotalCost.String())
	return c.JSON(http.StatusCreated, out)
}

// GET /v1/orders  (manager)
func (h *Controller) ListAll(c echo.Context) error {
	rows, err := h.Svc.ListOrders(c.Request().Context())
	if err != nil {
		return httperr.Fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/users/:id/orders  (customer, own id only)
func (h *Controller) ListMine(c echo.Context) error {
	p, err := jwtx.PrincipalFromContext(c)
	if err != nil {
		return httperr.Fail(c, h.Log, err)
	}
	id, err := pathID(c)
	if err != nil {
		return httperr.Fail(c, h.Log, err)
	}
	rows, err := h.Svc.ListMyOrders(c.Request().Context(), *p, id)
	if err != nil {
		return httperr.Fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/orders/:id/items
func (h *Controller) Items(c echo.Context) error {
	p, err := jwtx.PrincipalFromContext(c)
	if err != nil {
		return httperr.Fail(c, h.Log, err)
	}
	id, err := pathID(c)
	if err != nil {
		return httperr.Fail(c, h.Log, err)
	}
	rows, err := h.Svc.OrderItems(c.Request().Context(), *p, id)
	if err != nil {
		return httperr.Fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// PUT /v1/orders/:id/status  (manager)
func (h *Controller) UpdateStatus(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return httperr.Fail(c, h.Log, err)
	}
	var req StatusReq
	if err := c.Bind(&req); err != nil {
		return httperr.Fail(c, h.Log, apperr.New(apperr.Validation, "invalid JSON"))
	}
	if err := c.Validate(&req); err != nil {
		return httperr.Fail(c, h.Log, apperr.Wrap(apperr.Validation, err, `status must be "paid"`))
	}

	o, err := h.Svc.MarkPaid(c.Request().Context(), id)
	if err != nil {
		return httperr.Fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, o)
}

// POST /v1/order-items/:id/return  (manager)
func (h *Controller) ReturnItem(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return httperr.Fail(c, h.Log, err)
	}
	if err := h.Svc.ReturnRental(c.Request().Context(), id); err != nil {
		return httperr.Fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "returned"})
}
