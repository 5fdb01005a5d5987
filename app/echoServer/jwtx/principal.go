package jwtx

import (
	"github.com/labstack/echo/v4"

	"github.com/jasonlau05/bookstore/model"
	"github.com/jasonlau05/bookstore/util/apperr"
)

// PrincipalKey is where the gate middleware stores the caller.
const PrincipalKey = "principal"

func PrincipalFromContext(c echo.Context) (*model.Principal, error) {
	p, ok := c.Get(PrincipalKey).(*model.Principal)
	if !ok || p == nil {
		return nil, apperr.New(apperr.Unauthenticated, "no principal in context")
	}
	return p, nil
}
