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
	"github.com/rtwlabs/roastery-backend/internal/payment/application"
	"github.com/rtwlabs/roastery-backend/internal/payment/domain"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

// CreateForOrder inserts the pending transaction and stamps the order with
// the session ID in one database transaction, so a crash can't leave an
// order pointing at a session with no transaction row.
func (r *Repository) CreateForOrder(ctx context.Context, t domain.Transaction) error {
	metadata, err := json.Marshal(t.Metadata)
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

	_, err = tx.Exec(ctx, `INSERT INTO payment_transactions (id, user_id, order_id, session_id, amount_cents, currency, payment_status, metadata, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		t.ID, t.UserID, t.OrderID, t.SessionID, t.AmountCents, t.Currency, t.Status, metadata, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `UPDATE orders SET session_id=$2, updated_at=$3 WHERE id=$1`,
		t.OrderID, t.SessionID, time.Now().UTC())
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

const txColumns = `id, user_id, order_id, session_id, amount_cents, currency, payment_status, metadata, created_at, updated_at`

func (r *Repository) FindBySession(ctx context.Context, sessionID string) (domain.Transaction, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+txColumns+` FROM payment_transactions WHERE session_id=$1`, sessionID)
	return transactionFromRow(row, sessionID)
}

func (r *Repository) FindOwnedBySession(ctx context.Context, sessionID, owner string) (domain.Transaction, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+txColumns+` FROM payment_transactions WHERE session_id=$1 AND user_id=$2`, sessionID, owner)
	return transactionFromRow(row, sessionID)
}

// MarkPaid applies the paid transition. The conditional UPDATE on the
// transaction is the concurrency guard: a second caller matches zero rows
// and the whole transition rolls back to a no-op. The order flip and the
// settlement outbox row ride in the same transaction.
func (r *Repository) MarkPaid(ctx context.Context, sessionID, eventType string, payload []byte, traceparent string) (bool, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	now := time.Now().UTC()

	var orderID string
	err = tx.QueryRow(ctx, `UPDATE payment_transactions SET payment_status=$2, updated_at=$3
		WHERE session_id=$1 AND payment_status <> $2
		RETURNING order_id`,
		sessionID, domain.StatusPaid, now).Scan(&orderID)
	if errors.Is(err, pgx.ErrNoRows) {
		// already paid; lost the race
		return false, tx.Commit(ctx)
	}
	if err != nil {
		return false, err
	}

	_, err = tx.Exec(ctx, `UPDATE orders SET payment_status=$2, status=$3, updated_at=$4
		WHERE id=$1 AND payment_status <> $2`,
		orderID, domain.StatusPaid, "processing", now)
	if err != nil {
		return false, err
	}

	_, err = tx.Exec(ctx, `INSERT INTO outbox (aggregate_type, aggregate_id, type, payload, traceparent, status)
		VALUES ('payment',$1,$2,$3,$4,'pending')`,
		sessionID, eventType, payload, traceparent)
	if err != nil {
		return false, err
	}
	return true, tx.Commit(ctx)
}

// FindOwned satisfies the checkout engine's order lookup.
func (r *Repository) FindOwned(ctx context.Context, orderID, owner string) (application.OrderSummary, error) {
	var s application.OrderSummary
	err := r.pool.QueryRow(ctx, `SELECT id, user_id, total_cents FROM orders WHERE id=$1 AND user_id=$2`, orderID, owner).
		Scan(&s.ID, &s.Owner, &s.TotalCents)
	if errors.Is(err, pgx.ErrNoRows) {
		return application.OrderSummary{}, fmt.Errorf("%w: order %s", apperr.ErrNotFound, orderID)
	}
	return s, err
}

func transactionFromRow(row pgx.Row, sessionID string) (domain.Transaction, error) {
	var t domain.Transaction
	var metadata []byte
	err := row.Scan(&t.ID, &t.UserID, &t.OrderID, &t.SessionID, &t.AmountCents, &t.Currency, &t.Status, &metadata, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Transaction{}, fmt.Errorf("%w: transaction for session %s", apperr.ErrNotFound, sessionID)
	}
	if err != nil {
		return domain.Transaction{}, err
	}
	if err := json.Unmarshal(metadata, &t.Metadata); err != nil {
		return domain.Transaction{}, err
	}
	return t, nil
}
