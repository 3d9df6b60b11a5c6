package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/AdityaD28/GreenGuardian/internal/classifier"
	"github.com/AdityaD28/GreenGuardian/internal/models"
	"github.com/AdityaD28/GreenGuardian/internal/uploads"
	"go.uber.org/zap"
)

// Validation and stage errors returned by SubmitDiagnosis. Stage errors wrap
// the underlying cause.
var (
	ErrNoFile         = errors.New("no file part")
	ErrEmptyFilename  = errors.New("no selected file")
	ErrStorageWrite   = errors.New("store upload")
	ErrClassification = errors.New("classify image")
	ErrPersistence    = errors.New("save diagnosis")
)

// Pipeline stages reported to a DiagnosisObserver on failure.
const (
	StageStorage        = "storage"
	StageClassification = "classification"
	StagePersistence    = "persistence"
)

// Upload is an image received from a client.
type Upload struct {
	// Filename is the client-supplied name. It is sanitized before use.
	Filename string
	Data     []byte
}

// DiagnosisResult is returned to the client after a successful submission.
type DiagnosisResult struct {
	Disease        string `json:"disease"`
	Confidence     string `json:"confidence"`
	Recommendation string `json:"recommendation"`

	// Record is the persisted history entry.
	Record *models.DiagnosisRecord `json:"-"`
}

// UploadWriter stores raw upload bytes.
type UploadWriter interface {
	Save(ctx context.Context, name string, r io.Reader, size int64) error
}

// Recommender produces treatment advice for a label. It never fails.
type Recommender interface {
	Recommend(ctx context.Context, label models.Label) string
}

// HistoryAppender persists diagnosis records.
type HistoryAppender interface {
	Append(ctx context.Context, rec *models.DiagnosisRecord) (int64, error)
}

// DiagnosisObserver receives pipeline outcomes, typically for metrics.
type DiagnosisObserver interface {
	ObservePrediction(mode classifier.Mode, label models.Label, elapsed time.Duration)
	ObserveFailure(stage string)
}

// DiagnosisService runs the diagnosis request pipeline. The classifier and
// recommender variants are fixed at construction.
type DiagnosisService struct {
	store       UploadWriter
	classifier  classifier.Classifier
	recommender Recommender
	history     HistoryAppender
	clock       Clock
	log         *zap.Logger
	observer    DiagnosisObserver
}

// DiagnosisOption configures a DiagnosisService.
type DiagnosisOption func(*DiagnosisService)

// WithClock replaces the wall clock used for names and timestamps.
func WithClock(c Clock) DiagnosisOption {
	return func(s *DiagnosisService) { s.clock = c }
}

// WithObserver registers an observer for prediction outcomes.
func WithObserver(o DiagnosisObserver) DiagnosisOption {
	return func(s *DiagnosisService) { s.observer = o }
}

// NewDiagnosisService wires the pipeline collaborators.
func NewDiagnosisService(
	store UploadWriter,
	c classifier.Classifier,
	rec Recommender,
	history HistoryAppender,
	log *zap.Logger,
	opts ...DiagnosisOption,
) *DiagnosisService {
	s := &DiagnosisService{
		store:       store,
		classifier:  c,
		recommender: rec,
		history:     history,
		clock:       RealClock{},
		log:         log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Mode reports which classifier variant serves predictions.
func (s *DiagnosisService) Mode() classifier.Mode { return s.classifier.Mode() }

// SubmitDiagnosis stores the upload, classifies it, builds a recommendation and
// appends a record to the user's history. userID must already be authenticated.
// Nothing is recorded when any stage fails.
func (s *DiagnosisService) SubmitDiagnosis(ctx context.Context, userID int64, upload *Upload) (*DiagnosisResult, error) {
	if upload == nil {
		return nil, ErrNoFile
	}
	if upload.Filename == "" {
		return nil, ErrEmptyFilename
	}

	start := time.Now()
	name := uploads.UniqueName(s.clock.Now().UTC(), upload.Filename)

	if err := s.store.Save(ctx, name, bytes.NewReader(upload.Data), int64(len(upload.Data))); err != nil {
		s.fail(StageStorage)
		return nil, fmt.Errorf("%w: %w", ErrStorageWrite, err)
	}

	pred, err := s.classifier.Classify(ctx, upload.Data)
	if err != nil {
		s.fail(StageClassification)
		return nil, fmt.Errorf("%w: %w", ErrClassification, err)
	}

	recommendation := s.recommender.Recommend(ctx, pred.Label)

	rec := &models.DiagnosisRecord{
		UserID:         userID,
		ImageFilename:  name,
		Disease:        pred.Label.DisplayName(),
		Confidence:     pred.Confidence,
		Recommendation: recommendation,
		CreatedAt:      s.clock.Now().UTC(),
	}
	id, err := s.history.Append(ctx, rec)
	if err != nil {
		s.fail(StagePersistence)
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	rec.ID = id

	mode := s.classifier.Mode()
	elapsed := time.Since(start)
	s.log.Info("prediction completed",
		zap.String("mode", string(mode)),
		zap.Int64("user_id", userID),
		zap.String("label", pred.Label.String()),
		zap.Float64("confidence", pred.Confidence),
		zap.String("image", name),
		zap.Duration("elapsed", elapsed),
	)
	if s.observer != nil {
		s.observer.ObservePrediction(mode, pred.Label, elapsed)
	}

	return &DiagnosisResult{
		Disease:        rec.Disease,
		Confidence:     FormatConfidence(rec.Confidence),
		Recommendation: recommendation,
		Record:         rec,
	}, nil
}

func (s *DiagnosisService) fail(stage string) {
	if s.observer != nil {
		s.observer.ObserveFailure(stage)
	}
}

// FormatConfidence renders a percentage with two decimals, e.g. "91.27%".
func FormatConfidence(c float64) string {
	return fmt.Sprintf("%.2f%%", c)
}
