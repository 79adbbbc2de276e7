package application

import (
	"context"

	"github.com/rtwlabs/roastery-backend/internal/identity/domain"
)

type UserRepository interface {
	Insert(ctx context.Context, u domain.User) error
	FindByID(ctx context.Context, id string) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
}
