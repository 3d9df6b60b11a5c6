package http

import (
	"context"
	"net/http"

	"github.com/AdityaD28/GreenGuardian/internal/middleware"
	"github.com/AdityaD28/GreenGuardian/internal/models"
	"go.uber.org/zap"
)

// RecentTimestampLayout renders timestamps like "March 04, 2025 at 10:30 AM".
const RecentTimestampLayout = "January 02, 2006 at 03:04 PM"

// HistoryService reads diagnosis history.
type HistoryService interface {
	List(ctx context.Context, userID int64) ([]models.DiagnosisRecord, error)
	Recent(ctx context.Context, userID int64) ([]models.DiagnosisRecord, error)
}

// HistoryHandler serves the user's past diagnoses.
type HistoryHandler struct {
	HistoryService HistoryService
	Log            *zap.Logger
}

// RecentDiagnosis is one entry of the recent diagnoses panel.
type RecentDiagnosis struct {
	ID            int64   `json:"id"`
	Disease       string  `json:"disease"`
	Confidence    float64 `json:"confidence"`
	ImageFilename string  `json:"image_filename"`
	Timestamp     string  `json:"timestamp"`
}

// History returns every record of the user, newest first.
func (h *HistoryHandler) History(w http.ResponseWriter, r *http.Request) {
	recs, err := h.HistoryService.List(r.Context(), middleware.GetUserIDFromContext(r.Context()))
	if err != nil {
		h.Log.Error("failed to load history", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to load history")
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

// Recent returns the latest few records with a human-readable timestamp.
func (h *HistoryHandler) Recent(w http.ResponseWriter, r *http.Request) {
	recs, err := h.HistoryService.Recent(r.Context(), middleware.GetUserIDFromContext(r.Context()))
	if err != nil {
		h.Log.Error("failed to load recent diagnoses", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to load recent diagnoses")
		return
	}

	out := make([]RecentDiagnosis, 0, len(recs))
	for _, rec := range recs {
		out = append(out, RecentDiagnosis{
			ID:            rec.ID,
			Disease:       rec.Disease,
			Confidence:    rec.Confidence,
			ImageFilename: rec.ImageFilename,
			Timestamp:     rec.CreatedAt.Format(RecentTimestampLayout),
		})
	}
	writeJSON(w, http.StatusOK, out)
}
