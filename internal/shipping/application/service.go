package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rtwlabs/roastery-backend/internal/apperr"
	"github.com/rtwlabs/roastery-backend/internal/shipping/domain"
)

type Service struct {
	log  *slog.Logger
	repo RateRepository
}

func NewService(log *slog.Logger, repo RateRepository) *Service {
	return &Service{log: log, repo: repo}
}

func (s *Service) List(ctx context.Context) ([]domain.Rate, error) {
	return s.repo.List(ctx)
}

func (s *Service) Create(ctx context.Context, region string, rateCents int64, description string) (domain.Rate, error) {
	if rateCents < 0 {
		return domain.Rate{}, fmt.Errorf("%w: negative rate", apperr.ErrInvalid)
	}
	rate := domain.Rate{
		ID:          uuid.NewString(),
		Region:      region,
		RateCents:   rateCents,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, rate); err != nil {
		return domain.Rate{}, err
	}
	return rate, nil
}
