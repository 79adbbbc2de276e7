package application

import (
	"context"

	"github.com/rtwlabs/roastery-backend/internal/cart/domain"
)

type CartRepository interface {
	Insert(ctx context.Context, item domain.Item) error
	ListByOwner(ctx context.Context, owner string) ([]domain.Item, error)
	Delete(ctx context.Context, id, owner string) (int64, error)
	DeleteAll(ctx context.Context, owner string) error
}
