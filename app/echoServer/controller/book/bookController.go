package book

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/jasonlau05/bookstore/app/echoServer/httperr"
	"github.com/jasonlau05/bookstore/model"
	booksvc "github.com/jasonlau05/bookstore/service/book"
	"github.com/jasonlau05/bookstore/util/apperr"
)

type Controller struct {
	Svc booksvc.Service
	Log *slog.Logger
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.New(apperr.Validation, "invalid id")
	}
	return id, nil
}

// GET /v1/books?query=
func (h *Controller) List(c echo.Context) error {
	rows, err := h.Svc.List(c.Request().Context(), c.QueryParam("query"))
	if err != nil {
		return httperr.Fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/books/:id
func (h *Controller) Detail(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return httperr.Fail(c, h.Log, err)
	}
	row, err := h.Svc.Detail(c.Request().Context(), id)
	if err != nil {
		return httperr.Fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, row)
}

// PATCH /v1/books/:id  (manager)
// Unknown fields are rejected rather than ignored.
func (h *Controller) UpdateFields(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return httperr.Fail(c, h.Log, err)
	}

	var patch model.BookPatch
	dec := json.NewDecoder(c.Request().Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&patch); err != nil {
		h.Log.Warn("patch decode failed", "path", c.Path(), "err", err)
		return httperr.Fail(c, h.Log, apperr.Wrap(apperr.Validation, err, "invalid or unknown field in body"))
	}
	if err := c.Validate(&patch); err != nil {
		return httperr.Fail(c, h.Log, err)
	}

	b, err := h.Svc.UpdateFields(c.Request().Context(), id, patch)
	if err != nil {
		return httperr.Fail(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, b)
}
