// app/echoServer/middleware.go
package echoServer

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/jasonlau05/bookstore/app/echoServer/httperr"
	"github.com/jasonlau05/bookstore/app/echoServer/jwtx"
	"github.com/jasonlau05/bookstore/service/gate"
	"github.com/jasonlau05/bookstore/util/apperr"
)

func RegisterMiddlewares(e *echo.Echo, log *slog.Logger) {

	e.Use(middleware.Recover())

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))

	e.Use(Slog(log))
}

func Slog(log *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			lat := time.Since(start).Milliseconds()

			rid := c.Response().Header().Get(echo.HeaderXRequestID)
			log.Info("http",
				"method", c.Request().Method,
				"path", c.Path(),
				"status", c.Response().Status,
				"latency_ms", lat,
				"req_id", rid,
				"ip", c.RealIP(),
				"ua", c.Request().UserAgent(),
			)
			return nil
		}
	}
}

const gateErrKey = "gate_err"

// Gate admits requests whose bearer token satisfies req and stores the
// caller under jwtx.PrincipalKey. A missing or non-Bearer Authorization
// header is UNAUTHENTICATED.
func Gate(g *gate.Gate, req gate.Requirement, log *slog.Logger) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ContextKey:  jwtx.PrincipalKey,
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			p, err := g.Authorize(auth, req)
			if err != nil {
				c.Set(gateErrKey, err)
				return nil, err
			}
			return p, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			if gerr, ok := c.Get(gateErrKey).(error); ok {
				return httperr.Fail(c, log, gerr)
			}
			return httperr.Fail(c, log, apperr.Wrap(apperr.Unauthenticated, err, "missing bearer token"))
		},
	})
}
