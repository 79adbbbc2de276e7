package postgres

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rtwlabs/roastery-backend/internal/shipping/domain"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) Insert(ctx context.Context, rate domain.Rate) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO shipping_rates (id, region, rate_cents, description, created_at)
		VALUES ($1,$2,$3,$4,$5)`,
		rate.ID, rate.Region, rate.RateCents, rate.Description, rate.CreatedAt)
	return err
}

func (r *Repository) List(ctx context.Context) ([]domain.Rate, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, region, rate_cents, description, created_at FROM shipping_rates ORDER BY region`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Rate
	for rows.Next() {
		var rate domain.Rate
		if err := rows.Scan(&rate.ID, &rate.Region, &rate.RateCents, &rate.Description, &rate.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rate)
	}
	return out, rows.Err()
}
