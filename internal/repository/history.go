package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/AdityaD28/GreenGuardian/internal/models"
)

const historyColumns = `id, user_id, image_filename, disease_name, confidence, recommendation, created_at`

// HistoryRepository stores immutable diagnosis records.
type HistoryRepository struct {
	DB *sql.DB
}

// NewHistoryRepository creates a new HistoryRepository.
func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{DB: db}
}

// Append inserts rec as a single row and returns the new id.
func (r *HistoryRepository) Append(ctx context.Context, rec *models.DiagnosisRecord) (int64, error) {
	var id int64
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO diagnoses (user_id, image_filename, disease_name, confidence, recommendation, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		rec.UserID, rec.ImageFilename, rec.Disease, rec.Confidence, rec.Recommendation, rec.CreatedAt.UTC(),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("Append: %w", err)
	}
	return id, nil
}

// ListForUser returns every record of the user, newest first.
func (r *HistoryRepository) ListForUser(ctx context.Context, userID int64) ([]models.DiagnosisRecord, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+historyColumns+`
		  FROM diagnoses
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListForUser: %w", err)
	}
	return scanRecords(rows)
}

// RecentForUser returns at most limit records in ListForUser order.
// A non-positive limit yields an empty slice without touching the database.
func (r *HistoryRepository) RecentForUser(ctx context.Context, userID int64, limit int) ([]models.DiagnosisRecord, error) {
	if limit <= 0 {
		return []models.DiagnosisRecord{}, nil
	}
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+historyColumns+`
		  FROM diagnoses
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("RecentForUser: %w", err)
	}
	return scanRecords(rows)
}

// Exists reports whether a record references the stored upload filename.
func (r *HistoryRepository) Exists(ctx context.Context, filename string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(
		ctx,
		`SELECT EXISTS(SELECT 1 FROM diagnoses WHERE image_filename = $1)`,
		filename,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("Exists: %w", err)
	}
	return exists, nil
}

func scanRecords(rows *sql.Rows) ([]models.DiagnosisRecord, error) {
	defer rows.Close()

	out := []models.DiagnosisRecord{}
	for rows.Next() {
		var (
			rec       models.DiagnosisRecord
			createdAt time.Time
		)
		if err := rows.Scan(
			&rec.ID, &rec.UserID, &rec.ImageFilename, &rec.Disease,
			&rec.Confidence, &rec.Recommendation, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan diagnosis: %w", err)
		}
		rec.CreatedAt = createdAt.UTC()
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate diagnoses: %w", err)
	}
	return out, nil
}
