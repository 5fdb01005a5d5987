package jwt

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jasonlau05/bookstore/model"
	"github.com/jasonlau05/bookstore/util/apperr"
)

const (
	DefaultTTL = 6 * time.Hour
	issuer     = "bookstore"
)

type Claims struct {
	UserID   int64      `json:"uid"`
	Username string     `json:"username"`
	Role     model.Role `json:"role"`
	jwt.RegisteredClaims
}

func (c *Claims) Principal() *model.Principal {
	return &model.Principal{UserID: c.UserID, Username: c.Username, Role: c.Role}
}

// Issuer signs and verifies session tokens with one process-wide secret.
// Rotating the secret invalidates every outstanding token.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

type Option func(*Issuer)

// WithClock overrides the time source for issuing and verifying.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) { i.now = now }
}

func NewIssuer(secret []byte, ttl time.Duration, opts ...Option) (*Issuer, error) {
	if len(secret) == 0 {
		return nil, errors.New("jwt: empty signing secret")
	}
	if ttl < 0 {
		return nil, errors.New("jwt: negative ttl")
	}
	i := &Issuer{secret: secret, ttl: ttl, now: time.Now}
	for _, o := range opts {
		o(i)
	}
	return i, nil
}

// Issue signs a token for p using the configured TTL.
func (i *Issuer) Issue(p model.Principal) (string, time.Time, error) {
	return i.IssueTTL(p, i.ttl)
}

func (i *Issuer) IssueTTL(p model.Principal, ttl time.Duration) (string, time.Time, error) {
	now := i.now()
	exp := now.Add(ttl)
	claims := &Claims{
		UserID:   p.UserID,
		Username: p.Username,
		Role:     p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatInt(p.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return s, claims.ExpiresAt.Time, nil
}

// Verify checks signature, issuer and expiry. An expired token (now >= exp)
// yields apperr.ExpiredToken, anything else unusable apperr.InvalidToken.
func (i *Issuer) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperr.Wrap(apperr.ExpiredToken, err, "token expired")
		}
		return nil, apperr.Wrap(apperr.InvalidToken, err, "invalid token")
	}
	if !tok.Valid {
		return nil, apperr.New(apperr.InvalidToken, "invalid token")
	}
	if claims.UserID <= 0 || (claims.Role != model.RoleCustomer && claims.Role != model.RoleManager) {
		return nil, apperr.New(apperr.InvalidToken, "invalid claims")
	}
	return claims, nil
}
