package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rtwlabs/roastery-backend/internal/apperr"
	"github.com/rtwlabs/roastery-backend/internal/catalog/domain"
)

type Service struct {
	log      *slog.Logger
	products ProductRepository
	blends   BlendRepository
}

func NewService(log *slog.Logger, products ProductRepository, blends BlendRepository) *Service {
	return &Service{log: log, products: products, blends: blends}
}

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.products.List(ctx)
}

type CreateProduct struct {
	Name        string
	Description string
	Origin      string
	PriceCents  int64
	ImageURL    string
	Available   bool
}

func (s *Service) CreateProduct(ctx context.Context, in CreateProduct) (domain.Product, error) {
	if in.PriceCents < 0 {
		return domain.Product{}, fmt.Errorf("%w: negative price", apperr.ErrInvalid)
	}
	p := domain.Product{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		Origin:      in.Origin,
		PriceCents:  in.PriceCents,
		ImageURL:    in.ImageURL,
		Available:   in.Available,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.products.Insert(ctx, p); err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

type CreateBlend struct {
	Name          string
	Origin        string
	RoastLevel    string
	GrindSize     string
	Components    map[string]int
	QuantityGrams int
}

// CreateBlend prices the blend from its weight; the client never supplies a
// price.
func (s *Service) CreateBlend(ctx context.Context, owner string, in CreateBlend) (domain.Blend, error) {
	if in.QuantityGrams <= 0 {
		return domain.Blend{}, fmt.Errorf("%w: quantity must be positive", apperr.ErrInvalid)
	}
	b := domain.Blend{
		ID:            uuid.NewString(),
		UserID:        owner,
		Name:          in.Name,
		Origin:        in.Origin,
		RoastLevel:    in.RoastLevel,
		GrindSize:     in.GrindSize,
		Components:    in.Components,
		QuantityGrams: in.QuantityGrams,
		PriceCents:    domain.BlendPrice(in.QuantityGrams),
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.blends.Insert(ctx, b); err != nil {
		return domain.Blend{}, err
	}
	s.log.Info("blend created", "blend_id", b.ID, "price_cents", b.PriceCents)
	return b, nil
}

func (s *Service) ListBlends(ctx context.Context, owner string) ([]domain.Blend, error) {
	return s.blends.ListByOwner(ctx, owner)
}

func (s *Service) GetBlend(ctx context.Context, id, owner string) (domain.Blend, error) {
	return s.blends.FindOwned(ctx, id, owner)
}

// Quote resolves a line-item reference to its authoritative name and unit
// price. Orders use this instead of trusting client-side prices.
type Quote struct {
	Name      string
	UnitCents int64
	Available bool
}

func (s *Service) Quote(ctx context.Context, productID, blendID string) (Quote, error) {
	switch {
	case productID != "":
		p, err := s.products.Find(ctx, productID)
		if err != nil {
			return Quote{}, err
		}
		return Quote{Name: p.Name, UnitCents: p.PriceCents, Available: p.Available}, nil
	case blendID != "":
		b, err := s.blends.Find(ctx, blendID)
		if err != nil {
			return Quote{}, err
		}
		return Quote{Name: b.Name, UnitCents: b.PriceCents, Available: true}, nil
	default:
		return Quote{}, fmt.Errorf("%w: item references neither product nor blend", apperr.ErrInvalid)
	}
}
