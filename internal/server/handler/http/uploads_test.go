package http_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	handler "github.com/AdityaD28/GreenGuardian/internal/server/handler/http"
	"github.com/AdityaD28/GreenGuardian/internal/uploads"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type mapUploads map[string][]byte

func (m mapUploads) Open(_ context.Context, name string) (io.ReadCloser, error) {
	if name == "boom.jpg" {
		return nil, errors.New("bucket offline")
	}
	data, ok := m[name]
	if !ok {
		return nil, uploads.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func TestUploadHandler_Serve(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n rest of image")
	store := mapUploads{"leaf.jpg": []byte("jpeg"), "noext": png}
	h := &handler.UploadHandler{Store: store, Log: zap.NewNop()}

	r := chi.NewRouter()
	r.Get("/uploads/{filename}", h.Serve)

	cases := []struct {
		path     string
		wantCode int
		wantType string
		wantBody []byte
	}{
		{"/uploads/leaf.jpg", http.StatusOK, "image/jpeg", []byte("jpeg")},
		{"/uploads/noext", http.StatusOK, "image/png", png},
		{"/uploads/missing.jpg", http.StatusNotFound, "", nil},
		{"/uploads/boom.jpg", http.StatusInternalServerError, "", nil},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))

			if rec.Code != tc.wantCode {
				t.Fatalf("status = %d; want %d", rec.Code, tc.wantCode)
			}
			if tc.wantCode != http.StatusOK {
				return
			}
			if ct := rec.Header().Get("Content-Type"); ct != tc.wantType {
				t.Errorf("Content-Type = %q; want %q", ct, tc.wantType)
			}
			if !bytes.Equal(rec.Body.Bytes(), tc.wantBody) {
				t.Errorf("body = %q", rec.Body.Bytes())
			}
		})
	}
}
