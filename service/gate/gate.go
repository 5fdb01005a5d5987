// Package gate decides whether a bearer token may reach an operation.
package gate

import (
	"strings"

	"github.com/jasonlau05/bookstore/model"
	"github.com/jasonlau05/bookstore/util/apperr"
	jwtutil "github.com/jasonlau05/bookstore/util/jwt"
)

// Requirement is the role an operation demands.
type Requirement int

const (
	AnyRole Requirement = iota
	ManagerOnly
	CustomerOnly
)

func (r Requirement) String() string {
	switch r {
	case ManagerOnly:
		return "manager"
	case CustomerOnly:
		return "customer"
	default:
		return "any"
	}
}

type Verifier interface {
	Verify(token string) (*jwtutil.Claims, error)
}

type Gate struct{ v Verifier }

func New(v Verifier) *Gate { return &Gate{v: v} }

// Authorize verifies rawToken and checks the caller's role against req.
func (g *Gate) Authorize(rawToken string, req Requirement) (*model.Principal, error) {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return nil, apperr.New(apperr.Unauthenticated, "missing bearer token")
	}

	claims, err := g.v.Verify(rawToken)
	if err != nil {
		if apperr.CodeOf(err) == "" {
			return nil, apperr.Wrap(apperr.InvalidToken, err, "invalid token")
		}
		return nil, err
	}

	p := claims.Principal()
	switch {
	case req == ManagerOnly && p.Role != model.RoleManager:
		return nil, apperr.New(apperr.Forbidden, "manager role required")
	case req == CustomerOnly && p.Role != model.RoleCustomer:
		return nil, apperr.New(apperr.Forbidden, "customer role required")
	}
	return p, nil
}
