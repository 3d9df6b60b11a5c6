// Package http provides the HTTP handlers of the diagnosis service.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"github.com/AdityaD28/GreenGuardian/internal/models"
	"github.com/AdityaD28/GreenGuardian/internal/service"
	"go.uber.org/zap"
)

// AuthService defines the account operations required by the HTTP handlers.
type AuthService interface {
	Register(ctx context.Context, username, email, password string) (*models.User, error)
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
}

// SessionManager binds an authenticated user to the client.
type SessionManager interface {
	Login(w http.ResponseWriter, r *http.Request, userID int64) error
	Logout(w http.ResponseWriter, r *http.Request) error
}

// AuthHandler handles HTTP requests for registration, login and logout.
type AuthHandler struct {
	AuthService AuthService
	Sessions    SessionManager
	Log         *zap.Logger
}

// credentials is accepted as JSON or as a url-encoded form.
type credentials struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func decodeCredentials(r *http.Request) (credentials, error) {
	var c credentials
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		err := json.NewDecoder(r.Body).Decode(&c)
		return c, err
	}
	if err := r.ParseForm(); err != nil {
		return c, err
	}
	c.Username = r.PostForm.Get("username")
	c.Email = r.PostForm.Get("email")
	c.Password = r.PostForm.Get("password")
	return c, nil
}

// Register creates an account. Duplicate usernames and emails are rejected with 409.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	c, err := decodeCredentials(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	_, err = h.AuthService.Register(r.Context(), c.Username, c.Email, c.Password)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, map[string]string{"status": "ok"})
	case errors.Is(err, service.ErrMissingFields):
		writeError(w, http.StatusBadRequest, "Username, email and password are required.")
	case errors.Is(err, service.ErrUserExists):
		writeError(w, http.StatusConflict, "Username already exists.")
	case errors.Is(err, service.ErrEmailExists):
		writeError(w, http.StatusConflict, "Email already registered.")
	default:
		h.Log.Error("registration failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// Login checks the password and starts a session.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	c, err := decodeCredentials(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	u, err := h.AuthService.Authenticate(r.Context(), c.Username, c.Password)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrMissingFields):
		writeError(w, http.StatusBadRequest, "Username and password are required.")
		return
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusUnauthorized, "User not found.")
		return
	case errors.Is(err, service.ErrInvalidPassword):
		writeError(w, http.StatusUnauthorized, "Invalid password.")
		return
	default:
		h.Log.Error("login failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if err := h.Sessions.Login(w, r, u.ID); err != nil {
		h.Log.Error("failed to save session", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "user": u.Username})
}

// Logout ends the current session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.Logout(w, r); err != nil {
		h.Log.Error("failed to clear session", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
