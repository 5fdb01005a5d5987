// app/echoServer/controller/auth/authController.go
package auth

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jasonlau05/bookstore/app/echoServer/httperr"
	"github.com/jasonlau05/bookstore/model"
	authsvc "github.com/jasonlau05/bookstore/service/auth"
	"github.com/jasonlau05/bookstore/util/apperr"
)

type Controller struct {
	Svc authsvc.Service
	Log *slog.Logger
}

// Register a new customer
// @Summary      Register user
// @Description  Register a new customer account. Username and email must be unique.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        payload  body  model.RegisterReq  true  "Register payload"
// @Success      201  {object}  map[string]any
// @Failure      400  {object}  httperr.Body
// @Failure      409  {object}  httperr.Body "username or email already taken"
// @Failure      500  {object}  httperr.Body
// @Router       /v1/users/register [post]
func (ct *Controller) Register(c echo.Context) error {
	var req model.RegisterReq

	if err := c.Bind(&req); err != nil {
		ct.Log.Warn("bind failed", "path", c.Path(), "err", err)
		return httperr.Fail(c, ct.Log, apperr.New(apperr.Validation, "invalid body"))
	}
	if err := c.Validate(&req); err != nil {
		ct.Log.Warn("validation failed", "path", c.Path(), "err", err)
		return httperr.Fail(c, ct.Log, err)
	}

	id, err := ct.Svc.Register(c.Request().Context(), req)
	if err != nil {
		return httperr.Fail(c, ct.Log, err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "registered",
		"id":      id,
	})
}

// Login
// @Summary      Login
// @Description  Login with username + password, returns a bearer token
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        payload  body  model.LoginReq  true  "Login payload"
// @Success      200  {object}  authsvc.LoginResult
// @Failure      400  {object}  httperr.Body
// @Failure      401  {object}  httperr.Body
// @Failure      500  {object}  httperr.Body
// @Router       /v1/users/login [post]
func (ct *Controller) Login(c echo.Context) error {
	var req model.LoginReq

	if err := c.Bind(&req); err != nil {
		ct.Log.Warn("bind failed", "path", c.Path(), "err", err)
		return httperr.Fail(c, ct.Log, apperr.New(apperr.Validation, "invalid body"))
	}
	if err := c.Validate(&req); err != nil {
		return httperr.Fail(c, ct.Log, err)
	}

	res, err := ct.Svc.Login(c.Request().Context(), req)
	if err != nil {
		if apperr.Is(err, apperr.InvalidCredentials) {
			ct.Log.Info("login rejected", "req_id", c.Response().Header().Get(echo.HeaderXRequestID))
		}
		return httperr.Fail(c, ct.Log, err)
	}

	return c.JSON(http.StatusOK, res)
}
