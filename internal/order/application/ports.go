package application

import (
	"context"

	"github.com/rtwlabs/roastery-backend/internal/order/domain"
)

type OrderRepository interface {
	SaveWithOutbox(ctx context.Context, o domain.Order, eventType string, payload []byte, traceparent string) error
	Get(ctx context.Context, id string) (domain.Order, error)
	GetOwned(ctx context.Context, id, owner string) (domain.Order, error)
	ListByOwner(ctx context.Context, owner string) ([]domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
	UpdateStatusWithOutbox(ctx context.Context, id string, status domain.Status, eventType string, payload []byte, traceparent string) (int64, error)
}

// Quote is an authoritative price lookup for a line-item reference.
type Quote struct {
	Name      string
	UnitCents int64
	Available bool
}

type CatalogClient interface {
	Quote(ctx context.Context, productID, blendID string) (Quote, error)
}
