package service

import (
	"context"
	"fmt"

	"github.com/AdityaD28/GreenGuardian/internal/models"
)

// RecentLimit is the number of records shown in the recent diagnoses panel.
const RecentLimit = 3

// HistoryRepository reads a user's diagnosis records, newest first.
type HistoryRepository interface {
	ListForUser(ctx context.Context, userID int64) ([]models.DiagnosisRecord, error)
	RecentForUser(ctx context.Context, userID int64, limit int) ([]models.DiagnosisRecord, error)
}

// HistoryService exposes read access to diagnosis history.
type HistoryService struct {
	repo HistoryRepository
}

func NewHistoryService(repo HistoryRepository) *HistoryService {
	return &HistoryService{repo: repo}
}

// List returns every record of the user, newest first.
func (s *HistoryService) List(ctx context.Context, userID int64) ([]models.DiagnosisRecord, error) {
	recs, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return recs, nil
}

// Recent returns at most RecentLimit records, a prefix of List.
func (s *HistoryService) Recent(ctx context.Context, userID int64) ([]models.DiagnosisRecord, error) {
	recs, err := s.repo.RecentForUser(ctx, userID, RecentLimit)
	if err != nil {
		return nil, fmt.Errorf("recent history: %w", err)
	}
	return recs, nil
}
