package application

import (
	"context"

	"github.com/rtwlabs/roastery-backend/internal/subscription/domain"
)

type SubscriptionRepository interface {
	Insert(ctx context.Context, sub domain.Subscription) error
	ListByOwner(ctx context.Context, owner string) ([]domain.Subscription, error)
	UpdateStatus(ctx context.Context, id, owner string, status domain.Status) (int64, error)
}
