package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/rtwlabs/roastery-backend/internal/apperr"
	"github.com/rtwlabs/roastery-backend/internal/order/domain"
	"github.com/rtwlabs/roastery-backend/pkg/tracing"
)

var (
	ErrEmptyOrder      = fmt.Errorf("%w: order has no items", apperr.ErrInvalid)
	ErrTotalMismatch   = fmt.Errorf("%w: total does not match line items", apperr.ErrInvalid)
	ErrItemUnavailable = fmt.Errorf("%w: item unavailable", apperr.ErrInvalid)
	ErrBadTransition   = fmt.Errorf("%w: illegal status transition", apperr.ErrInvalid)
)

type Service struct {
	log     *slog.Logger
	repo    OrderRepository
	catalog CatalogClient
}

func NewService(log *slog.Logger, repo OrderRepository, catalog CatalogClient) *Service {
	return &Service{log: log, repo: repo, catalog: catalog}
}

type ItemRef struct {
	ProductID string
	BlendID   string
	Quantity  int
}

type CreateOrder struct {
	Items           []ItemRef
	TotalCents      int64
	ShippingAddress domain.Address
	Owner           string
	GuestEmail      string
}

// Create prices every line item from the catalog rather than trusting the
// client, and rejects a client total that disagrees with the recomputed sum.
func (s *Service) Create(ctx context.Context, in CreateOrder) (domain.Order, error) {
	if len(in.Items) == 0 {
		return domain.Order{}, ErrEmptyOrder
	}

	items := make([]domain.Item, 0, len(in.Items))
	for _, ref := range in.Items {
		if ref.Quantity <= 0 {
			return domain.Order{}, fmt.Errorf("%w: quantity must be positive", apperr.ErrInvalid)
		}
		q, err := s.catalog.Quote(ctx, ref.ProductID, ref.BlendID)
		if errors.Is(err, apperr.ErrNotFound) {
			return domain.Order{}, fmt.Errorf("%w: unknown item", apperr.ErrInvalid)
		}
		if err != nil {
			return domain.Order{}, err
		}
		if !q.Available {
			return domain.Order{}, ErrItemUnavailable
		}
		items = append(items, domain.Item{
			ProductID:      ref.ProductID,
			BlendID:        ref.BlendID,
			Name:           q.Name,
			Quantity:       ref.Quantity,
			UnitPriceCents: q.UnitCents,
		})
	}

	o := domain.NewOrder(uuid.NewString(), in.Owner, in.GuestEmail, items, in.ShippingAddress)
	if in.TotalCents != o.TotalCents {
		return domain.Order{}, ErrTotalMismatch
	}

	payload, err := json.Marshal(domain.OrderCreated{
		OrderID:    o.ID,
		Owner:      o.UserID,
		TotalCents: o.TotalCents,
		Items:      o.Items,
	})
	if err != nil {
		return domain.Order{}, err
	}
	if err := s.repo.SaveWithOutbox(ctx, o, "OrderCreated", payload, tracing.Traceparent(ctx)); err != nil {
		return domain.Order{}, err
	}
	s.log.Info("order created", "order_id", o.ID, "total_cents", o.TotalCents)
	return o, nil
}

func (s *Service) Get(ctx context.Context, id, owner string) (domain.Order, error) {
	return s.repo.GetOwned(ctx, id, owner)
}

func (s *Service) List(ctx context.Context, owner string) ([]domain.Order, error) {
	return s.repo.ListByOwner(ctx, owner)
}

func (s *Service) ListAll(ctx context.Context) ([]domain.Order, error) {
	return s.repo.ListAll(ctx)
}

// UpdateStatus advances the fulfillment status along the allowed-transition
// graph. Payment state is never touched here; that belongs to reconciliation.
func (s *Service) UpdateStatus(ctx context.Context, id string, next domain.Status) error {
	if !domain.ValidStatus(next) {
		return fmt.Errorf("%w: unknown status %q", apperr.ErrInvalid, next)
	}

	o, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !o.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrBadTransition, o.Status, next)
	}

	payload, err := json.Marshal(domain.OrderStatusChanged{OrderID: id, From: o.Status, To: next})
	if err != nil {
		return err
	}
	n, err := s.repo.UpdateStatusWithOutbox(ctx, id, next, "OrderStatusChanged", payload, tracing.Traceparent(ctx))
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: order %s", apperr.ErrNotFound, id)
	}
	s.log.Info("order status updated", "order_id", id, "from", o.Status, "to", next)
	return nil
}
