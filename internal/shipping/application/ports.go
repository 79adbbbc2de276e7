package application

import (
	"context"

	"github.com/rtwlabs/roastery-backend/internal/shipping/domain"
)

type RateRepository interface {
	Insert(ctx context.Context, rate domain.Rate) error
	List(ctx context.Context) ([]domain.Rate, error)
}
