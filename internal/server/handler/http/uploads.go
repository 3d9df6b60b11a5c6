package http

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/AdityaD28/GreenGuardian/internal/uploads"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// UploadReader opens stored uploads.
type UploadReader interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// UploadHandler serves stored images back to authenticated clients.
type UploadHandler struct {
	Store UploadReader
	Log   *zap.Logger
}

// Serve streams the upload named by the {filename} route parameter.
func (h *UploadHandler) Serve(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")

	rc, err := h.Store.Open(r.Context(), name)
	if errors.Is(err, uploads.ErrNotFound) || errors.Is(err, uploads.ErrInvalidName) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.Log.Error("failed to open upload", zap.String("name", name), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	defer rc.Close()

	var body io.Reader = rc
	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		head := make([]byte, 512)
		n, _ := io.ReadFull(rc, head)
		head = head[:n]
		contentType = http.DetectContentType(head)
		body = io.MultiReader(bytes.NewReader(head), rc)
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if _, err := io.Copy(w, body); err != nil {
		h.Log.Warn("failed to stream upload", zap.String("name", name), zap.Error(err))
	}
}
