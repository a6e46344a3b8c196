package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/01moynul/wholesale-shop/internal/apperr"
	"github.com/01moynul/wholesale-shop/internal/database"
	"github.com/01moynul/wholesale-shop/internal/models"
)

// UserStore keeps the accounts allowed to sign in.
type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

// Register creates an account with a bcrypt hash of password.
func (s *UserStore) Register(ctx context.Context, email, password string) (*models.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperr.Validation("Email and password are required")
	}

	var pw models.Password
	if err := pw.Set(password); err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, apperr.Validation("password must be at most 72 bytes long")
		}
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}

	now := database.Now()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (email, password_hash, created_at) VALUES (?, ?, ?)`,
		email, pw.Hash, now,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperr.Conflict("User already exists with this email")
		}
		return nil, fmt.Errorf("auth: insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("auth: get new user id: %w", err)
	}
	return &models.User{ID: id, Email: email, PasswordHash: pw.Hash, CreatedAt: now}, nil
}

// Authenticate returns the user when password matches. Unknown emails and
// wrong passwords get the same Unauthorized error.
func (s *UserStore) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.byEmail(ctx, normalizeEmail(email))
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.Unauthorized("Invalid credentials")
		}
		return nil, err
	}

	pw := models.Password{Hash: u.PasswordHash}
	ok, err := pw.Matches(password)
	if err != nil {
		return nil, fmt.Errorf("auth: compare password: %w", err)
	}
	if !ok {
		return nil, apperr.Unauthorized("Invalid credentials")
	}
	return u, nil
}

// User returns the account with id.
func (s *UserStore) User(ctx context.Context, id int64) (*models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE id = ?`, id))
}

func (s *UserStore) byEmail(ctx context.Context, email string) (*models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE email = ?`, email))
}

func (s *UserStore) scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, fmt.Errorf("auth: get user: %w", err)
	}
	return &u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
