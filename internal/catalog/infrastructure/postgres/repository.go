package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rtwlabs/roastery-backend/internal/apperr"
	"github.com/rtwlabs/roastery-backend/internal/catalog/domain"
)

type ProductRepository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewProductRepository(log *slog.Logger, pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{log: log, pool: pool}
}

func (r *ProductRepository) Insert(ctx context.Context, p domain.Product) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO products (id, name, description, origin, price_cents, image_url, available, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		p.ID, p.Name, p.Description, p.Origin, p.PriceCents, p.ImageURL, p.Available, p.CreatedAt)
	return err
}

func (r *ProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, description, origin, price_cents, image_url, available, created_at
		FROM products ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Origin, &p.PriceCents, &p.ImageURL, &p.Available, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ProductRepository) Find(ctx context.Context, id string) (domain.Product, error) {
	var p domain.Product
	err := r.pool.QueryRow(ctx, `SELECT id, name, description, origin, price_cents, image_url, available, created_at
		FROM products WHERE id=$1`, id).
		Scan(&p.ID, &p.Name, &p.Description, &p.Origin, &p.PriceCents, &p.ImageURL, &p.Available, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Product{}, fmt.Errorf("%w: product %s", apperr.ErrNotFound, id)
	}
	return p, err
}

type BlendRepository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewBlendRepository(log *slog.Logger, pool *pgxpool.Pool) *BlendRepository {
	return &BlendRepository{log: log, pool: pool}
}

func (r *BlendRepository) Insert(ctx context.Context, b domain.Blend) error {
	components, err := json.Marshal(b.Components)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `INSERT INTO custom_blends (id, user_id, name, origin, roast_level, grind_size, components, quantity_grams, price_cents, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		b.ID, b.UserID, b.Name, b.Origin, b.RoastLevel, b.GrindSize, components, b.QuantityGrams, b.PriceCents, b.CreatedAt)
	return err
}

const blendColumns = `id, user_id, name, origin, roast_level, grind_size, components, quantity_grams, price_cents, created_at`

func (r *BlendRepository) ListByOwner(ctx context.Context, owner string) ([]domain.Blend, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+blendColumns+` FROM custom_blends WHERE user_id=$1 ORDER BY created_at DESC`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Blend
	for rows.Next() {
		b, err := scanBlend(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *BlendRepository) FindOwned(ctx context.Context, id, owner string) (domain.Blend, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+blendColumns+` FROM custom_blends WHERE id=$1 AND user_id=$2`, id, owner)
	return blendFromRow(row, id)
}

func (r *BlendRepository) Find(ctx context.Context, id string) (domain.Blend, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+blendColumns+` FROM custom_blends WHERE id=$1`, id)
	return blendFromRow(row, id)
}

func blendFromRow(row pgx.Row, id string) (domain.Blend, error) {
	b, err := scanBlend(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Blend{}, fmt.Errorf("%w: blend %s", apperr.ErrNotFound, id)
	}
	return b, err
}

func scanBlend(row pgx.Row) (domain.Blend, error) {
	var b domain.Blend
	var components []byte
	if err := row.Scan(&b.ID, &b.UserID, &b.Name, &b.Origin, &b.RoastLevel, &b.GrindSize, &components, &b.QuantityGrams, &b.PriceCents, &b.CreatedAt); err != nil {
		return domain.Blend{}, err
	}
	if err := json.Unmarshal(components, &b.Components); err != nil {
		return domain.Blend{}, err
	}
	return b, nil
}
