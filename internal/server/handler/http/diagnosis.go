package http

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/AdityaD28/GreenGuardian/internal/middleware"
	"github.com/AdityaD28/GreenGuardian/internal/service"
	"go.uber.org/zap"
)

// MaxUploadSize bounds the accepted request body of /predict.
const MaxUploadSize = 16 << 20

// DiagnosisService runs the diagnosis pipeline for an authenticated user.
type DiagnosisService interface {
	SubmitDiagnosis(ctx context.Context, userID int64, upload *service.Upload) (*service.DiagnosisResult, error)
}

// DiagnosisHandler serves image submissions.
type DiagnosisHandler struct {
	DiagnosisService DiagnosisService
	Log              *zap.Logger
}

// Predict accepts a multipart form with the image in the "file" part and
// responds with the disease, the confidence and the recommendation.
func (h *DiagnosisHandler) Predict(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	upload, err := readUpload(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		h.Log.Error("failed to read upload", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Prediction failed")
		return
	}

	res, err := h.DiagnosisService.SubmitDiagnosis(r.Context(), userID, upload)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, res)
	case errors.Is(err, service.ErrNoFile):
		writeError(w, http.StatusBadRequest, "No file part")
	case errors.Is(err, service.ErrEmptyFilename):
		writeError(w, http.StatusBadRequest, "No selected file")
	default:
		h.Log.Error("prediction failed", zap.Int64("user_id", userID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Prediction failed")
	}
}

// readUpload returns nil when the request carries no "file" part and an
// Upload with an empty Filename when the part was sent without a name.
func readUpload(r *http.Request) (*service.Upload, error) {
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		// not a multipart body at all
		return nil, nil
	}

	f, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		// parts without a filename are parsed as plain values
		if _, ok := r.MultipartForm.Value["file"]; ok {
			return &service.Upload{}, nil
		}
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &service.Upload{Filename: header.Filename, Data: data}, nil
}
