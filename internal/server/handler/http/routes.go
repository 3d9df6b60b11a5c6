package http

import (
	"net/http"

	"github.com/AdityaD28/GreenGuardian/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// Handlers groups the endpoint handlers mounted by NewRouter.
type Handlers struct {
	Auth      *AuthHandler
	Diagnosis *DiagnosisHandler
	History   *HistoryHandler
	Uploads   *UploadHandler
	Health    *HealthHandler
}

// Router dependencies that are not endpoints.
type RouterDeps struct {
	// Authenticate guards every route that needs a logged-in user.
	Authenticate func(http.Handler) http.Handler
	// Instrument records request metrics. Optional.
	Instrument func(http.Handler) http.Handler
	// Metrics serves the Prometheus exposition. Optional.
	Metrics http.Handler
	Logger  *zap.Logger
}

// NewRouter constructs the HTTP handler of the service.
//
// Routes:
//
//	GET  /healthz                 → Health
//	GET  /metrics                 → Prometheus exposition
//	POST /register                → Auth.Register
//	POST /login                   → Auth.Login
//	POST /logout                  → Auth.Logout          (session)
//	POST /predict                 → Diagnosis.Predict    (session)
//	GET  /api/history             → History.History      (session)
//	GET  /api/recent-diagnoses    → History.Recent       (session)
//	GET  /uploads/{filename}      → Uploads.Serve        (session)
func NewRouter(h Handlers, deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	if deps.Instrument != nil {
		r.Use(deps.Instrument)
	}
	// Log each request and its metadata
	r.Use(middleware.WithRequestLogging(deps.Logger))

	r.Get("/healthz", h.Health.Health)
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	// Public endpoints
	r.Post("/register", h.Auth.Register)
	r.Post("/login", h.Auth.Login)

	// Protected group: requires a valid session
	r.Group(func(r chi.Router) {
		r.Use(deps.Authenticate)

		r.Post("/logout", h.Auth.Logout)
		r.Post("/predict", h.Diagnosis.Predict)
		r.Get("/uploads/{filename}", h.Uploads.Serve)

		r.Route("/api", func(r chi.Router) {
			r.Get("/history", h.History.History)
			r.Get("/recent-diagnoses", h.History.Recent)
		})
	})

	return r
}
