package uploads

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_SaveOpenListDelete(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "nested", "uploads")

	store, err := NewLocalStore(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, store.Dir())

	payload := []byte("fake jpeg bytes")
	require.NoError(t, store.Save(ctx, "a.jpg", bytes.NewReader(payload), int64(len(payload))))

	rc, err := store.Open(ctx, "a.jpg")
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))
	objects, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, objects, 1)
	assert.Equal(t, "a.jpg", objects[0].Name)
	assert.Equal(t, int64(len(payload)), objects[0].Size)

	require.NoError(t, store.Delete(ctx, "a.jpg"))
	require.NoError(t, store.Delete(ctx, "a.jpg"), "second delete is a no-op")

	_, err = store.Open(ctx, "a.jpg")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestLocalStore_NoOverwrite(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, "dup.png", bytes.NewReader([]byte("first")), 5))
	assert.Error(t, store.Save(ctx, "dup.png", bytes.NewReader([]byte("second")), 6))

	rc, err := store.Open(ctx, "dup.png")
	require.NoError(t, err)
	defer rc.Close()
	got, _ := io.ReadAll(rc)
	assert.Equal(t, "first", string(got))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestLocalStore_PartialWriteRemoved(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewLocalStore(dir)
	require.NoError(t, err)

	assert.Error(t, store.Save(ctx, "broken.jpg", failingReader{}, -1))
	_, statErr := os.Stat(filepath.Join(dir, "broken.jpg"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestLocalStore_RejectsTraversal(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	assert.ErrorIs(t, store.Save(ctx, "../escape.jpg", bytes.NewReader(nil), 0), ErrInvalidName)
	_, err = store.Open(ctx, "../../etc/passwd")
	assert.ErrorIs(t, err, ErrInvalidName)
	assert.ErrorIs(t, store.Delete(ctx, ".."), ErrInvalidName)
}

func TestNewMinioStore_Validation(t *testing.T) {
	cases := []struct {
		name string
		cfg  MinioConfig
	}{
		{"no endpoint", MinioConfig{AccessKey: "a", SecretKey: "b", Bucket: "c"}},
		{"no credentials", MinioConfig{Endpoint: "localhost:9000", Bucket: "c"}},
		{"no bucket", MinioConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewMinioStore(tc.cfg)
			assert.Error(t, err)
		})
	}

	s, err := NewMinioStore(MinioConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b", Bucket: "leaves"})
	require.NoError(t, err)
	assert.Equal(t, "us-east-1", s.region)
	assert.ErrorIs(t, s.Save(context.Background(), "a/b", bytes.NewReader(nil), 0), ErrInvalidName)
}
