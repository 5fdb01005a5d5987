package jwt

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/jasonlau05/bookstore/model"
	"github.com/jasonlau05/bookstore/util/apperr"
)

var customer = model.Principal{UserID: 9, Username: "eric", Role: model.RoleCustomer}

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func TestIssueVerify_RoundTrip(t *testing.T) {
	iss, err := NewIssuer([]byte("test-secret"), DefaultTTL)
	require.NoError(t, err)

	tok, exp, err := iss.Issue(customer)
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(6*time.Hour), exp, 2*time.Second)

	claims, err := iss.Verify(tok)
	require.NoError(t, err)
	require.Equal(t, customer, *claims.Principal())
	require.Equal(t, "9", claims.Subject)
}

func TestVerify_ZeroTTLIsExpired(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	iss, err := NewIssuer([]byte("test-secret"), DefaultTTL, WithClock(fixedClock(now)))
	require.NoError(t, err)

	tok, _, err := iss.IssueTTL(customer, 0)
	require.NoError(t, err)

	_, err = iss.Verify(tok)
	require.Error(t, err)
	require.Equal(t, apperr.ExpiredToken, apperr.CodeOf(err))
}

func TestVerify_ExpiresAfterTTL(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := now
	iss, err := NewIssuer([]byte("test-secret"), time.Hour, WithClock(func() time.Time { return clock }))
	require.NoError(t, err)

	tok, _, err := iss.Issue(customer)
	require.NoError(t, err)

	clock = now.Add(59 * time.Minute)
	_, err = iss.Verify(tok)
	require.NoError(t, err)

	clock = now.Add(time.Hour)
	_, err = iss.Verify(tok)
	require.Equal(t, apperr.ExpiredToken, apperr.CodeOf(err))
}

func TestVerify_TamperedSignature(t *testing.T) {
	iss, err := NewIssuer([]byte("test-secret"), DefaultTTL)
	require.NoError(t, err)

	tok, _, err := iss.Issue(customer)
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = iss.Verify(tampered)
	require.Equal(t, apperr.InvalidToken, apperr.CodeOf(err))
}

func TestVerify_OtherSecret(t *testing.T) {
	a, _ := NewIssuer([]byte("secret-a"), DefaultTTL)
	b, _ := NewIssuer([]byte("secret-b"), DefaultTTL)

	tok, _, err := a.Issue(customer)
	require.NoError(t, err)

	_, err = b.Verify(tok)
	require.Equal(t, apperr.InvalidToken, apperr.CodeOf(err))
}

func TestVerify_Garbage(t *testing.T) {
	iss, _ := NewIssuer([]byte("test-secret"), DefaultTTL)

	_, err := iss.Verify("not.a.jwt")
	require.Equal(t, apperr.InvalidToken, apperr.CodeOf(err))
}

func TestVerify_RejectsNoneAlg(t *testing.T) {
	iss, _ := NewIssuer([]byte("test-secret"), DefaultTTL)

	claims := &Claims{
		UserID: 1, Username: "admin", Role: model.RoleManager,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = iss.Verify(tok)
	require.Equal(t, apperr.InvalidToken, apperr.CodeOf(err))
}

func TestNewIssuer_EmptySecret(t *testing.T) {
	_, err := NewIssuer(nil, DefaultTTL)
	require.Error(t, err)
}
