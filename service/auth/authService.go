package authsvc

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jasonlau05/bookstore/model"
	authrepo "github.com/jasonlau05/bookstore/repository/auth"
	"github.com/jasonlau05/bookstore/util/apperr"
	"github.com/jasonlau05/bookstore/util/hash"
	jwtutil "github.com/jasonlau05/bookstore/util/jwt"
)

type LoginResult struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Principal model.Principal `json:"user"`
}

type Service interface {
	Register(ctx context.Context, req model.RegisterReq) (int64, error)
	Login(ctx context.Context, req model.LoginReq) (*LoginResult, error)
	EnsureManager(ctx context.Context, req model.RegisterReq) (int64, error)
}

type service struct {
	ur     authrepo.Repo
	issuer *jwtutil.Issuer
}

func New(ur authrepo.Repo, issuer *jwtutil.Issuer) Service {
	return &service{ur: ur, issuer: issuer}
}

var verify = hash.Verify

// Compared against on unknown usernames so both failure paths pay for bcrypt.
var dummyHash = sync.OnceValue(func() string {
	h, err := hash.HashPassword("bookstore-dummy-password")
	if err != nil {
		panic(err)
	}
	return h
})

// Register creates a customer account. Managers are never self-registered.
func (s *service) Register(ctx context.Context, req model.RegisterReq) (int64, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)
	if email == "" || username == "" || req.Password == "" {
		return 0, apperr.New(apperr.Validation, "email, username and password are required")
	}

	hashed, err := hash.HashPassword(req.Password)
	if err != nil {
		return 0, apperr.Wrap(apperr.Internal, err, "could not hash password")
	}

	u := &model.User{
		Email:        email,
		Username:     username,
		PasswordHash: hashed,
		IsManager:    false,
	}
	if err := s.ur.Create(ctx, u); err != nil {
		// Email and username collisions are reported the same way.
		if errors.Is(err, authrepo.ErrDuplicate) {
			return 0, apperr.Wrap(apperr.UsernameTaken, err, "username or email already registered")
		}
		return 0, apperr.Storage(err, "could not create user")
	}
	return u.ID, nil
}

// Login never tells an unknown username apart from a wrong password.
func (s *service) Login(ctx context.Context, req model.LoginReq) (*LoginResult, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, apperr.New(apperr.InvalidCredentials, "invalid credentials")
	}

	u, err := s.ur.ByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, authrepo.ErrNotFound) {
			_, _ = verify(dummyHash(), req.Password)
			return nil, apperr.New(apperr.InvalidCredentials, "invalid credentials")
		}
		return nil, apperr.Storage(err, "could not load user")
	}

	ok, err := verify(u.PasswordHash, req.Password)
	if err != nil {
		return nil, apperr.Wrap(apperr.VerificationFailure, err, "could not verify credentials")
	}
	if !ok {
		return nil, apperr.New(apperr.InvalidCredentials, "invalid credentials")
	}

	p := model.Principal{UserID: u.ID, Username: u.Username, Role: u.Role()}
	token, exp, err := s.issuer.Issue(p)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "could not issue token")
	}
	return &LoginResult{Token: token, ExpiresAt: exp, Principal: p}, nil
}

// EnsureManager creates the bootstrap manager account, or promotes and
// resets it when the username already exists.
func (s *service) EnsureManager(ctx context.Context, req model.RegisterReq) (int64, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)
	if email == "" || username == "" || req.Password == "" {
		return 0, apperr.New(apperr.Validation, "email, username and password are required")
	}

	hashed, err := hash.HashPassword(req.Password)
	if err != nil {
		return 0, apperr.Wrap(apperr.Internal, err, "could not hash password")
	}

	u := &model.User{Email: email, Username: username, PasswordHash: hashed, IsManager: true}
	if err := s.ur.UpsertManager(ctx, u); err != nil {
		if errors.Is(err, authrepo.ErrDuplicate) {
			return 0, apperr.Wrap(apperr.UsernameTaken, err, "email already registered to another user")
		}
		return 0, apperr.Storage(err, "could not save manager")
	}
	return u.ID, nil
}
