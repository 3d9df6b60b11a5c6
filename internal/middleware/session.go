// Package middleware provides HTTP middlewares for session authentication and logging.
package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"net/http"

	"github.com/gorilla/sessions"
)

type ctxKey string

const userKey ctxKey = "user"

const (
	// SessionName is the cookie holding the signed and encrypted session.
	SessionName = "greenguardian_session"
	userIDValue = "user_id"
	// sessionMaxAge keeps a login for seven days.
	sessionMaxAge = 86400 * 7
)

// Sessions issues and validates login sessions stored in cookies.
type Sessions struct {
	store *sessions.CookieStore
}

// NewSessions derives the cookie signing and encryption keys from secret.
// secure marks the cookie HTTPS-only.
func NewSessions(secret string, secure bool) *Sessions {
	store := sessions.NewCookieStore(
		createSessionKey(secret),
		createSessionKey(secret+"encryption"),
	)
	store.Options = buildSessionOptions(secure, sessionMaxAge)
	return &Sessions{store: store}
}

func buildSessionOptions(secure bool, maxAge int) *sessions.Options {
	return &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// createSessionKey hashes seed to 32 bytes, a valid AES-256 key.
func createSessionKey(seed string) []byte {
	sum := sha256.Sum256([]byte(seed))
	return sum[:]
}

// Login stores userID in the session and writes the cookie.
func (s *Sessions) Login(w http.ResponseWriter, r *http.Request, userID int64) error {
	sess, _ := s.store.Get(r, SessionName) // a stale cookie yields a fresh session
	sess.Values[userIDValue] = userID
	return sess.Save(r, w)
}

// Logout expires the session cookie.
func (s *Sessions) Logout(w http.ResponseWriter, r *http.Request) error {
	sess, _ := s.store.Get(r, SessionName)
	delete(sess.Values, userIDValue)
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// UserID returns the user of the request's session, if any.
func (s *Sessions) UserID(r *http.Request) (int64, bool) {
	sess, err := s.store.Get(r, SessionName)
	if err != nil {
		return 0, false
	}
	id, ok := sess.Values[userIDValue].(int64)
	return id, ok && id > 0
}

// SessionAuth rejects requests without a valid session and stores the user id
// in the request context for downstream handlers.
func (s *Sessions) SessionAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := s.UserID(r)
		if !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "Authentication required"})
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), id)))
	})
}

// WithUserID returns a copy of ctx carrying the authenticated user id.
func WithUserID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, userKey, id)
}

// GetUserIDFromContext extracts the authenticated user id from the request
// context. Returns 0 if not found.
func GetUserIDFromContext(ctx context.Context) int64 {
	if id, ok := ctx.Value(userKey).(int64); ok {
		return id
	}
	return 0
}
