// Package service provides the account, diagnosis and history business logic,
// delegating persistence to repositories.
package service

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/AdityaD28/GreenGuardian/internal/models"
	"github.com/AdityaD28/GreenGuardian/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserExists      = errors.New("username already exists")
	ErrEmailExists     = errors.New("email already registered")
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidPassword = errors.New("invalid password")
	// ErrMissingFields is returned when a registration or login field is blank.
	ErrMissingFields = errors.New("missing required fields")
)

// AuthRepository defines the persistence operations
// required by the authentication service.
type AuthRepository interface {
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	CreateUser(ctx context.Context, username, email string, passwordHash []byte) (int64, error)
	// GetByUsername returns repository.ErrNotFound for unknown users.
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// AuthService implements registration and password login.
type AuthService struct {
	repo AuthRepository
	cost int
}

// NewAuthService constructs a new AuthService using the provided repository.
func NewAuthService(repo AuthRepository) *AuthService {
	return &AuthService{repo: repo, cost: bcrypt.DefaultCost}
}

// Register creates an account. Username is checked before email, so a request
// that collides on both reports ErrUserExists.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return nil, ErrMissingFields
	}

	exists, err := s.repo.UsernameExists(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if exists {
		return nil, ErrUserExists
	}

	exists, err = s.repo.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if exists {
		return nil, ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword(passwordKey(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	// A concurrent registration can win the race past the checks above.
	id, err := s.repo.CreateUser(ctx, username, email, hash)
	switch {
	case errors.Is(err, repository.ErrDuplicateUsername):
		return nil, ErrUserExists
	case errors.Is(err, repository.ErrDuplicateEmail):
		return nil, ErrEmailExists
	case err != nil:
		return nil, fmt.Errorf("register: %w", err)
	}
	return &models.User{ID: id, Username: username, Email: email, PasswordHash: hash}, nil
}

// Authenticate checks the password of username and returns the user.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrMissingFields
	}

	u, err := s.repo.GetByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, passwordKey(password)); err != nil {
		return nil, ErrInvalidPassword
	}
	return u, nil
}

// passwordKey digests the password before bcrypt, which only reads the first
// 72 bytes of its input.
func passwordKey(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum[:])
	return out
}
