package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

var (
	ErrEmailTaken   = errors.New("email already registered")
	ErrUserNotFound = errors.New("user not found")
)

const pgUniqueViolation = "23505"

func (r *Repo) Create(ctx context.Context, p CreateUserParams) (User, error) {
	u := User{
		ID:            uuid.NewString(),
		Name:          p.Name,
		Email:         p.Email,
		PasswordHash:  p.PasswordHash,
		AffiliateCode: p.AffiliateCode,
		ReferredBy:    p.ReferredBy,
	}
	err := r.DB.QueryRow(ctx, `
		INSERT INTO users(id, name, email, password_hash, affiliate_code, referred_by_user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.AffiliateCode, u.ReferredBy,
	).Scan(&u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return User{}, ErrEmailTaken
		}
		return User{}, err
	}
	return u, nil
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (User, error) {
	return r.get(ctx, `SELECT id, name, email, password_hash, affiliate_code, referred_by_user_id, created_at
		FROM users WHERE email=$1`, email)
}

func (r *Repo) GetByID(ctx context.Context, id string) (User, error) {
	return r.get(ctx, `SELECT id, name, email, password_hash, affiliate_code, referred_by_user_id, created_at
		FROM users WHERE id=$1`, id)
}

func (r *Repo) get(ctx context.Context, query, arg string) (User, error) {
	var u User
	err := r.DB.QueryRow(ctx, query, arg).
		Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.AffiliateCode, &u.ReferredBy, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}

func (r *Repo) CodeExists(ctx context.Context, code string) (bool, error) {
	var n int
	err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE affiliate_code=$1`, code).Scan(&n)
	return n > 0, err
}

// FindIDByCode resolves an affiliate code to its owner's user id.
func (r *Repo) FindIDByCode(ctx context.Context, code string) (string, error) {
	var id string
	err := r.DB.QueryRow(ctx, `SELECT id FROM users WHERE affiliate_code=$1`, code).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrUserNotFound
	}
	return id, err
}
