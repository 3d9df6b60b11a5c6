// Package repository provides SQL persistence for accounts and diagnosis history.
// Queries use $n placeholders and RETURNING, understood by both lib/pq and go-sqlite3.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/AdityaD28/GreenGuardian/internal/models"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateUsername and ErrDuplicateEmail report a UNIQUE violation on insert.
	ErrDuplicateUsername = errors.New("duplicate username")
	ErrDuplicateEmail    = errors.New("duplicate email")
)

const pqUniqueViolation = pq.ErrorCode("23505")

// AuthRepository implements account operations on a SQL database.
type AuthRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewAuthRepository creates a new AuthRepository with the given database connection.
func NewAuthRepository(db *sql.DB) *AuthRepository {
	return &AuthRepository{DB: db}
}

// UsernameExists checks whether a user with the specified username exists.
func (r *AuthRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(
		ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`,
		username,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("UsernameExists: %w", err)
	}
	return exists, nil
}

// EmailExists checks whether the email address is already registered.
func (r *AuthRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(
		ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`,
		email,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("EmailExists: %w", err)
	}
	return exists, nil
}

// CreateUser inserts a user and returns the id assigned by the database.
// Uniqueness of username and email is enforced by the schema.
func (r *AuthRepository) CreateUser(ctx context.Context, username, email string, passwordHash []byte) (int64, error) {
	var id int64
	err := r.DB.QueryRowContext(
		ctx,
		`INSERT INTO users (username, email, password_hash) VALUES ($1, $2, $3) RETURNING id`,
		username, email, passwordHash,
	).Scan(&id)
	if err != nil {
		if dup := duplicateUserField(err); dup != nil {
			return 0, fmt.Errorf("CreateUser: %w: %w", dup, err)
		}
		return 0, fmt.Errorf("CreateUser: %w", err)
	}
	return id, nil
}

// duplicateUserField maps a unique violation on the users table to the
// sentinel of the offending column, or returns nil.
func duplicateUserField(err error) error {
	var detail string

	var pqErr *pq.Error
	var liteErr sqlite3.Error
	switch {
	case errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation:
		// constraint names look like users_email_key
		detail = pqErr.Constraint
	case errors.As(err, &liteErr) && liteErr.ExtendedCode == sqlite3.ErrConstraintUnique:
		// "UNIQUE constraint failed: users.email"
		detail = liteErr.Error()
	default:
		return nil
	}

	switch {
	case strings.Contains(detail, "username"):
		return ErrDuplicateUsername
	case strings.Contains(detail, "email"):
		return ErrDuplicateEmail
	}
	return nil
}

// GetByUsername loads a user by username. It returns ErrNotFound if there is none.
func (r *AuthRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := r.DB.QueryRowContext(
		ctx,
		`SELECT id, username, email, password_hash FROM users WHERE username = $1`,
		username,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetByUsername: %w", err)
	}
	return &u, nil
}
