package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rtwlabs/roastery-backend/internal/apperr"
	"github.com/rtwlabs/roastery-backend/internal/identity/domain"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) Insert(ctx context.Context, u domain.User) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO users (id, email, name, password_hash, created_at)
		VALUES ($1,$2,$3,$4,$5)`,
		u.ID, u.Email, u.Name, u.PasswordHash, u.CreatedAt)
	return err
}

func (r *Repository) FindByID(ctx context.Context, id string) (domain.User, error) {
	return r.findOne(ctx, `SELECT id, email, name, password_hash, created_at FROM users WHERE id=$1`, id)
}

func (r *Repository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.findOne(ctx, `SELECT id, email, name, password_hash, created_at FROM users WHERE email=$1`, email)
}

func (r *Repository) findOne(ctx context.Context, query string, arg any) (domain.User, error) {
	var u domain.User
	err := r.pool.QueryRow(ctx, query, arg).
		Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, fmt.Errorf("%w: user", apperr.ErrNotFound)
	}
	if err != nil {
		return domain.User{}, err
	}
	return u, nil
}
