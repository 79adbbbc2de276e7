package postgres

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rtwlabs/roastery-backend/internal/subscription/domain"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) Insert(ctx context.Context, sub domain.Subscription) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO subscriptions (id, user_id, blend_id, frequency, status, next_delivery, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		sub.ID, sub.UserID, sub.BlendID, sub.Frequency, sub.Status, sub.NextDelivery, sub.CreatedAt)
	return err
}

func (r *Repository) ListByOwner(ctx context.Context, owner string) ([]domain.Subscription, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, user_id, blend_id, frequency, status, next_delivery, created_at
		FROM subscriptions WHERE user_id=$1 ORDER BY created_at DESC`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Subscription
	for rows.Next() {
		var sub domain.Subscription
		if err := rows.Scan(&sub.ID, &sub.UserID, &sub.BlendID, &sub.Frequency, &sub.Status, &sub.NextDelivery, &sub.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

func (r *Repository) UpdateStatus(ctx context.Context, id, owner string, status domain.Status) (int64, error) {
	ct, err := r.pool.Exec(ctx, `UPDATE subscriptions SET status=$3 WHERE id=$1 AND user_id=$2`, id, owner, status)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}
