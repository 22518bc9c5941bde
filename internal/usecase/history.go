package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"CoinPulse/internal/domain/models"
	domrepo "CoinPulse/internal/domain/repository"
)

var (
	ErrHistoryDisabled = errors.New("history storage is not configured")
	ErrInvalidRange    = errors.New("from must be <= to")
)

// HistoryUseCase reads stored aggregate readings.
type HistoryUseCase struct {
	store domrepo.SnapshotStore
}

// NewHistoryUseCase creates the use case. store may be nil.
func NewHistoryUseCase(store domrepo.SnapshotStore) *HistoryUseCase {
	return &HistoryUseCase{store: store}
}

type GetHistoryParams struct {
	From  time.Time
	To    time.Time
	Limit int
}

type GetHistoryResult struct {
	From   time.Time               `json:"from"`
	To     time.Time               `json:"to"`
	Count  int                     `json:"count"`
	Points []models.AggregatePoint `json:"points"`
}

func (uc *HistoryUseCase) GetHistory(ctx context.Context, p GetHistoryParams) (*GetHistoryResult, error) {
	if uc.store == nil {
		return nil, ErrHistoryDisabled
	}
	if p.To.IsZero() {
		p.To = time.Now().UTC()
	}
	if p.From.IsZero() {
		p.From = p.To.Add(-24 * time.Hour)
	}
	if p.From.After(p.To) {
		return nil, ErrInvalidRange
	}
	if p.Limit <= 0 {
		p.Limit = 100
	}
	if p.Limit > 5000 {
		p.Limit = 5000
	}

	points, err := uc.store.QueryAggregates(ctx, p.From, p.To, p.Limit)
	if err != nil {
		return nil, fmt.Errorf("query aggregates: %w", err)
	}
	if points == nil {
		points = []models.AggregatePoint{}
	}

	return &GetHistoryResult{
		From:   p.From,
		To:     p.To,
		Count:  len(points),
		Points: points,
	}, nil
}
