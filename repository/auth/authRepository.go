package auth

import (
	"context"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"

	"github.com/jasonlau05/bookstore/model"
	"github.com/jasonlau05/bookstore/util/database"
)

var (
	// ErrNotFound is returned by ByUsername when no user matches.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicate is returned by Create on a username or email collision.
	ErrDuplicate = errors.New("duplicate user")
)

type Repo interface {
	Create(ctx context.Context, u *model.User) error
	ByUsername(ctx context.Context, username string) (*model.User, error)
	// UpsertManager creates or promotes the named user to manager and
	// resets its email and password hash.
	UpsertManager(ctx context.Context, u *model.User) error
}

type repo struct{ db database.DBTX }

func New(db database.DBTX) Repo { return &repo{db: db} }

func (r *repo) Create(ctx context.Context, u *model.User) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO users(username, email, password_hash, is_manager)
		VALUES ($1,$2,$3,$4)
		RETURNING id, created_at`,
		u.Username, u.Email, u.PasswordHash, u.IsManager,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return errors.Wrapf(ErrDuplicate, "constraint %s", pgErr.ConstraintName)
		}
		return errors.Wrap(err, "insert user")
	}
	return nil
}

func (r *repo) ByUsername(ctx context.Context, username string) (*model.User, error) {
	u := &model.User{}
	err := r.db.QueryRow(ctx, `
        SELECT id, username, email, password_hash, is_manager, created_at
        FROM users
        WHERE username = $1`,
		username,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsManager, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "select user")
	}
	return u, nil
}

func (r *repo) UpsertManager(ctx context.Context, u *model.User) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO users(username, email, password_hash, is_manager)
		VALUES ($1,$2,$3,TRUE)
		ON CONFLICT (username) DO UPDATE
		SET email = EXCLUDED.email, password_hash = EXCLUDED.password_hash, is_manager = TRUE
		RETURNING id, created_at`,
		u.Username, u.Email, u.PasswordHash,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return errors.Wrapf(ErrDuplicate, "constraint %s", pgErr.ConstraintName)
		}
		return errors.Wrap(err, "upsert manager")
	}
	u.IsManager = true
	return nil
}
