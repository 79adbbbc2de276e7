package application

import (
	"context"

	"github.com/rtwlabs/roastery-backend/internal/catalog/domain"
)

type ProductRepository interface {
	Insert(ctx context.Context, p domain.Product) error
	List(ctx context.Context) ([]domain.Product, error)
	Find(ctx context.Context, id string) (domain.Product, error)
}

type BlendRepository interface {
	Insert(ctx context.Context, b domain.Blend) error
	ListByOwner(ctx context.Context, owner string) ([]domain.Blend, error)
	FindOwned(ctx context.Context, id, owner string) (domain.Blend, error)
	Find(ctx context.Context, id string) (domain.Blend, error)
}
