package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rtwlabs/roastery-backend/internal/apperr"
	"github.com/rtwlabs/roastery-backend/internal/order/domain"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

const orderColumns = `id, user_id, COALESCE(guest_email,''), items, total_cents, shipping_address, status, payment_status, COALESCE(session_id,''), created_at, updated_at`

func (r *Repository) SaveWithOutbox(ctx context.Context, o domain.Order, eventType string, payload []byte, traceparent string) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return err
	}
	addr, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return err
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	_, err = tx.Exec(ctx, `INSERT INTO orders (id, user_id, guest_email, items, total_cents, shipping_address, status, payment_status, created_at, updated_at)
		VALUES ($1,$2,NULLIF($3,''),$4,$5,$6,$7,$8,$9,$10)`,
		o.ID, o.UserID, o.GuestEmail, items, o.TotalCents, addr, o.Status, o.PaymentStatus, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return err
	}

	if err := insertOutbox(ctx, tx, "order", o.ID, eventType, payload, traceparent); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *Repository) Get(ctx context.Context, id string) (domain.Order, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id)
	return orderFromRow(row, id)
}

func (r *Repository) GetOwned(ctx context.Context, id, owner string) (domain.Order, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1 AND user_id=$2`, id, owner)
	return orderFromRow(row, id)
}

func (r *Repository) ListByOwner(ctx context.Context, owner string) ([]domain.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id=$1 ORDER BY created_at DESC`, owner)
}

func (r *Repository) ListAll(ctx context.Context) ([]domain.Order, error) {
	return r.list(ctx, `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`)
}

func (r *Repository) list(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// UpdateStatusWithOutbox writes the new fulfillment status and stages the
// status-changed event in one transaction. Returns the matched row count.
func (r *Repository) UpdateStatusWithOutbox(ctx context.Context, id string, status domain.Status, eventType string, payload []byte, traceparent string) (int64, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	ct, err := tx.Exec(ctx, `UPDATE orders SET status=$2, updated_at=$3 WHERE id=$1`,
		id, status, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	if ct.RowsAffected() == 0 {
		return 0, tx.Commit(ctx)
	}

	if err := insertOutbox(ctx, tx, "order", id, eventType, payload, traceparent); err != nil {
		return 0, err
	}
	return ct.RowsAffected(), tx.Commit(ctx)
}

func insertOutbox(ctx context.Context, tx pgx.Tx, aggregateType, aggregateID, eventType string, payload []byte, traceparent string) error {
	_, err := tx.Exec(ctx, `INSERT INTO outbox (aggregate_type, aggregate_id, type, payload, traceparent, status)
		VALUES ($1,$2,$3,$4,$5,'pending')`,
		aggregateType, aggregateID, eventType, payload, traceparent)
	return err
}

func orderFromRow(row pgx.Row, id string) (domain.Order, error) {
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, fmt.Errorf("%w: order %s", apperr.ErrNotFound, id)
	}
	return o, err
}

func scanOrder(row pgx.Row) (domain.Order, error) {
	var o domain.Order
	var items, addr []byte
	err := row.Scan(&o.ID, &o.UserID, &o.GuestEmail, &items, &o.TotalCents, &addr,
		&o.Status, &o.PaymentStatus, &o.SessionID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return domain.Order{}, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return domain.Order{}, err
	}
	if err := json.Unmarshal(addr, &o.ShippingAddress); err != nil {
		return domain.Order{}, err
	}
	return o, nil
}
