package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rtwlabs/roastery-backend/internal/apperr"
	"github.com/rtwlabs/roastery-backend/internal/subscription/domain"
)

type Service struct {
	log  *slog.Logger
	repo SubscriptionRepository
}

func NewService(log *slog.Logger, repo SubscriptionRepository) *Service {
	return &Service{log: log, repo: repo}
}

func (s *Service) Create(ctx context.Context, owner, blendID string, freq domain.Frequency) (domain.Subscription, error) {
	now := time.Now().UTC()
	sub := domain.Subscription{
		ID:           uuid.NewString(),
		UserID:       owner,
		BlendID:      blendID,
		Frequency:    freq,
		Status:       domain.StatusActive,
		NextDelivery: now.Add(domain.DeliveryInterval(freq)),
		CreatedAt:    now,
	}
	if err := s.repo.Insert(ctx, sub); err != nil {
		return domain.Subscription{}, err
	}
	return sub, nil
}

func (s *Service) List(ctx context.Context, owner string) ([]domain.Subscription, error) {
	return s.repo.ListByOwner(ctx, owner)
}

func (s *Service) UpdateStatus(ctx context.Context, id, owner string, status domain.Status) error {
	switch status {
	case domain.StatusActive, domain.StatusPaused, domain.StatusCancelled:
	default:
		return fmt.Errorf("%w: unknown subscription status %q", apperr.ErrInvalid, status)
	}
	n, err := s.repo.UpdateStatus(ctx, id, owner, status)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: subscription %s", apperr.ErrNotFound, id)
	}
	return nil
}
