package http

import "net/http"

// HealthHandler reports liveness and the operating modes chosen at startup.
type HealthHandler struct {
	ClassifierMode     string
	RecommendationMode string
}

func (h *HealthHandler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":         "ok",
		"mode":           h.ClassifierMode,
		"recommendation": h.RecommendationMode,
	})
}
