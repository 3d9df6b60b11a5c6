package db

import (
	"context"
	"time"

	"github.com/AdityaD28/GreenGuardian/internal/uploads"
	"go.uber.org/zap"
)

// UploadStore is the part of the upload store the cleaner needs.
type UploadStore interface {
	List(ctx context.Context) ([]uploads.Object, error)
	Delete(ctx context.Context, name string) error
}

// UploadReferences reports whether a stored upload belongs to a diagnosis.
type UploadReferences interface {
	Exists(ctx context.Context, filename string) (bool, error)
}

// StartOrphanUploadCleaner periodically removes stored uploads that are older
// than retention and referenced by no diagnosis record. Such files are left
// behind when a request fails after the image was written.
func StartOrphanUploadCleaner(
	ctx context.Context,
	store UploadStore,
	refs UploadReferences,
	interval time.Duration,
	retention time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed, err := CleanOrphanUploads(ctx, store, refs, time.Now().Add(-retention), log)
				if err != nil {
					log.Error("failed to clean orphan uploads", zap.Error(err))
					continue
				}
				if removed > 0 {
					log.Info("cleaned orphan uploads", zap.Int("removed", removed))
				}
			}
		}
	}()
}

// CleanOrphanUploads deletes unreferenced uploads modified before cutoff and
// returns how many were removed. A failure on one object is logged and skipped.
func CleanOrphanUploads(
	ctx context.Context,
	store UploadStore,
	refs UploadReferences,
	cutoff time.Time,
	log *zap.Logger,
) (int, error) {
	objects, err := store.List(ctx)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, obj := range objects {
		if ctx.Err() != nil {
			return removed, ctx.Err()
		}
		if !obj.ModTime.Before(cutoff) {
			continue
		}
		used, err := refs.Exists(ctx, obj.Name)
		if err != nil {
			log.Warn("could not check upload reference", zap.String("name", obj.Name), zap.Error(err))
			continue
		}
		if used {
			continue
		}
		if err := store.Delete(ctx, obj.Name); err != nil {
			log.Warn("could not delete orphan upload", zap.String("name", obj.Name), zap.Error(err))
			continue
		}
		removed++
	}
	return removed, nil
}
