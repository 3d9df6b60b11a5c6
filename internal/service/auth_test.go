package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/AdityaD28/GreenGuardian/internal/models"
	"github.com/AdityaD28/GreenGuardian/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

type mockAuthRepo struct {
	UsernameExistsFunc func(ctx context.Context, username string) (bool, error)
	EmailExistsFunc    func(ctx context.Context, email string) (bool, error)
	CreateUserFunc     func(ctx context.Context, username, email string, hash []byte) (int64, error)
	GetByUsernameFunc  func(ctx context.Context, username string) (*models.User, error)
}

func (m *mockAuthRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	if m.UsernameExistsFunc == nil {
		return false, nil
	}
	return m.UsernameExistsFunc(ctx, username)
}
func (m *mockAuthRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	if m.EmailExistsFunc == nil {
		return false, nil
	}
	return m.EmailExistsFunc(ctx, email)
}
func (m *mockAuthRepo) CreateUser(ctx context.Context, username, email string, hash []byte) (int64, error) {
	return m.CreateUserFunc(ctx, username, email, hash)
}
func (m *mockAuthRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return m.GetByUsernameFunc(ctx, username)
}

func newTestAuthService(repo AuthRepository) *AuthService {
	s := NewAuthService(repo)
	s.cost = bcrypt.MinCost
	return s
}

func TestRegister_Success(t *testing.T) {
	var storedHash []byte
	repo := &mockAuthRepo{
		CreateUserFunc: func(ctx context.Context, username, email string, hash []byte) (int64, error) {
			if username != "carol" || email != "carol@example.com" {
				t.Errorf("CreateUser received %q, %q", username, email)
			}
			storedHash = hash
			return 11, nil
		},
	}
	svc := newTestAuthService(repo)

	u, err := svc.Register(context.Background(), " carol ", "carol@example.com", "s3cret")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if u.ID != 11 {
		t.Errorf("ID = %d; want 11", u.ID)
	}
	if string(storedHash) == "s3cret" {
		t.Fatal("password stored in clear text")
	}
	if err := bcrypt.CompareHashAndPassword(storedHash, passwordKey("s3cret")); err != nil {
		t.Errorf("stored hash does not match password: %v", err)
	}
}

func TestRegister_Errors(t *testing.T) {
	dbErr := errors.New("db error")
	cases := []struct {
		name     string
		repo     *mockAuthRepo
		username string
		email    string
		password string
		want     error
	}{
		{"missing fields", &mockAuthRepo{}, "", "a@example.com", "pw", ErrMissingFields},
		{"duplicate username", &mockAuthRepo{
			UsernameExistsFunc: func(context.Context, string) (bool, error) { return true, nil },
		}, "dave", "d@example.com", "pw", ErrUserExists},
		{"duplicate email", &mockAuthRepo{
			EmailExistsFunc: func(context.Context, string) (bool, error) { return true, nil },
		}, "dave", "d@example.com", "pw", ErrEmailExists},
		{"lookup failure", &mockAuthRepo{
			UsernameExistsFunc: func(context.Context, string) (bool, error) { return false, dbErr },
		}, "dave", "d@example.com", "pw", dbErr},
		{"username taken between check and insert", &mockAuthRepo{
			CreateUserFunc: func(context.Context, string, string, []byte) (int64, error) {
				return 0, fmt.Errorf("CreateUser: %w", repository.ErrDuplicateUsername)
			},
		}, "dave", "d@example.com", "pw", ErrUserExists},
		{"email taken between check and insert", &mockAuthRepo{
			CreateUserFunc: func(context.Context, string, string, []byte) (int64, error) {
				return 0, fmt.Errorf("CreateUser: %w", repository.ErrDuplicateEmail)
			},
		}, "dave", "d@example.com", "pw", ErrEmailExists},
		{"insert failure", &mockAuthRepo{
			CreateUserFunc: func(context.Context, string, string, []byte) (int64, error) { return 0, dbErr },
		}, "dave", "d@example.com", "pw", dbErr},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := newTestAuthService(tc.repo).Register(context.Background(), tc.username, tc.email, tc.password)
			if !errors.Is(err, tc.want) {
				t.Fatalf("Register error = %v; want %v", err, tc.want)
			}
		})
	}
}

func TestAuthenticate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword(passwordKey("right"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	repo := &mockAuthRepo{
		GetByUsernameFunc: func(ctx context.Context, username string) (*models.User, error) {
			if username != "erin" {
				return nil, repository.ErrNotFound
			}
			return &models.User{ID: 4, Username: "erin", PasswordHash: hash}, nil
		},
	}
	svc := newTestAuthService(repo)

	u, err := svc.Authenticate(context.Background(), "erin", "right")
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if u.ID != 4 {
		t.Errorf("ID = %d; want 4", u.ID)
	}

	if _, err := svc.Authenticate(context.Background(), "erin", "wrong"); !errors.Is(err, ErrInvalidPassword) {
		t.Errorf("wrong password error = %v; want ErrInvalidPassword", err)
	}
	if _, err := svc.Authenticate(context.Background(), "frank", "right"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("unknown user error = %v; want ErrUserNotFound", err)
	}
	if _, err := svc.Authenticate(context.Background(), "", "right"); !errors.Is(err, ErrMissingFields) {
		t.Errorf("blank username error = %v; want ErrMissingFields", err)
	}
}

func TestRegister_LongPassword(t *testing.T) {
	var storedHash []byte
	repo := &mockAuthRepo{
		CreateUserFunc: func(_ context.Context, _, _ string, hash []byte) (int64, error) {
			storedHash = hash
			return 1, nil
		},
		GetByUsernameFunc: func(context.Context, string) (*models.User, error) {
			return &models.User{ID: 1, Username: "bob", PasswordHash: storedHash}, nil
		},
	}
	svc := newTestAuthService(repo)

	long := strings.Repeat("p", 80)
	if _, err := svc.Register(context.Background(), "bob", "b@example.com", long); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "bob", long); err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	// bytes past 72 still count
	if _, err := svc.Authenticate(context.Background(), "bob", strings.Repeat("p", 79)+"q"); !errors.Is(err, ErrInvalidPassword) {
		t.Errorf("tail-modified password error = %v; want ErrInvalidPassword", err)
	}
}
