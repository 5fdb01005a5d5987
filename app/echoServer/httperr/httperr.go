// Package httperr renders classified errors as {"code","message"} bodies.
package httperr

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jasonlau05/bookstore/util/apperr"
)

type Body struct {
	Code    apperr.Code `json:"code"`
	Message string      `json:"message"`
}

// StatusOf maps an error class to its HTTP status.
func StatusOf(code apperr.Code) int {
	switch code {
	case apperr.Unauthenticated, apperr.InvalidToken, apperr.ExpiredToken, apperr.InvalidCredentials:
		return http.StatusUnauthorized
	case apperr.Forbidden:
		return http.StatusForbidden
	case apperr.Validation, apperr.NoFieldsProvided:
		return http.StatusBadRequest
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.UsernameTaken, apperr.NotRented, apperr.OutOfStock:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Fail writes err to the client. Server-side faults are logged with the
// request id and reach the client only as their code.
func Fail(c echo.Context, log *slog.Logger, err error) error {
	code := apperr.CodeOf(err)
	if code == "" {
		code = apperr.Internal
	}
	status := StatusOf(code)

	msg := apperr.Message(err)
	if status >= http.StatusInternalServerError {
		if log == nil {
			log = slog.Default()
		}
		log.Error("request failed",
			"err", err,
			"code", code,
			"req_id", c.Response().Header().Get(echo.HeaderXRequestID),
			"path", c.Path(),
			"method", c.Request().Method,
		)
		msg = "internal error"
	}
	return c.JSON(status, Body{Code: code, Message: msg})
}

// Handler renders errors that escape handlers, echo's own included.
func Handler(log *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		var he *echo.HTTPError
		if errors.As(err, &he) && apperr.CodeOf(err) == "" {
			code := apperr.Internal
			switch {
			case he.Code == http.StatusNotFound:
				code = apperr.NotFound
			case he.Code == http.StatusUnauthorized:
				code = apperr.Unauthenticated
			case he.Code == http.StatusForbidden:
				code = apperr.Forbidden
			case he.Code < http.StatusInternalServerError:
				code = apperr.Validation
			}
			msg, _ := he.Message.(string)
			if msg == "" {
				msg = http.StatusText(he.Code)
			}
			_ = c.JSON(he.Code, Body{Code: code, Message: msg})
			return
		}
		_ = Fail(c, log, err)
	}
}
