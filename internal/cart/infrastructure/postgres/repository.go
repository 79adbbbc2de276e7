package postgres

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rtwlabs/roastery-backend/internal/cart/domain"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) Insert(ctx context.Context, item domain.Item) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO cart_items (id, user_id, product_id, blend_id, quantity, created_at)
		VALUES ($1,$2,NULLIF($3,''),NULLIF($4,''),$5,$6)`,
		item.ID, item.UserID, item.ProductID, item.BlendID, item.Quantity, item.CreatedAt)
	return err
}

func (r *Repository) ListByOwner(ctx context.Context, owner string) ([]domain.Item, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, user_id, COALESCE(product_id,''), COALESCE(blend_id,''), quantity, created_at
		FROM cart_items WHERE user_id=$1 ORDER BY created_at`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Item
	for rows.Next() {
		var item domain.Item
		if err := rows.Scan(&item.ID, &item.UserID, &item.ProductID, &item.BlendID, &item.Quantity, &item.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *Repository) Delete(ctx context.Context, id, owner string) (int64, error) {
	ct, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE id=$1 AND user_id=$2`, id, owner)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

func (r *Repository) DeleteAll(ctx context.Context, owner string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE user_id=$1`, owner)
	return err
}
