package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rtwlabs/roastery-backend/internal/apperr"
	"github.com/rtwlabs/roastery-backend/internal/cart/domain"
)

type Service struct {
	log  *slog.Logger
	repo CartRepository
}

func NewService(log *slog.Logger, repo CartRepository) *Service {
	return &Service{log: log, repo: repo}
}

func (s *Service) Add(ctx context.Context, owner, productID, blendID string, quantity int) (domain.Item, error) {
	if productID == "" && blendID == "" {
		return domain.Item{}, fmt.Errorf("%w: item references neither product nor blend", apperr.ErrInvalid)
	}
	if quantity <= 0 {
		return domain.Item{}, fmt.Errorf("%w: quantity must be positive", apperr.ErrInvalid)
	}
	item := domain.Item{
		ID:        uuid.NewString(),
		UserID:    owner,
		ProductID: productID,
		BlendID:   blendID,
		Quantity:  quantity,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, item); err != nil {
		return domain.Item{}, err
	}
	return item, nil
}

func (s *Service) List(ctx context.Context, owner string) ([]domain.Item, error) {
	return s.repo.ListByOwner(ctx, owner)
}

func (s *Service) Remove(ctx context.Context, id, owner string) error {
	n, err := s.repo.Delete(ctx, id, owner)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: cart item %s", apperr.ErrNotFound, id)
	}
	return nil
}

func (s *Service) Clear(ctx context.Context, owner string) error {
	return s.repo.DeleteAll(ctx, owner)
}
