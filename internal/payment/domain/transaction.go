package domain

import "time"

type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
	StatusFailed  Status = "failed"
)

// Transaction tracks one checkout attempt against an order. The provider
// session ID is unique per transaction and is the idempotency key for every
// reconciliation write. Once Status reaches paid it is never written again.
type Transaction struct {
	ID          string
	UserID      string
	OrderID     string
	SessionID   string
	AmountCents int64
	Currency    string
	Status      Status
	Metadata    map[string]string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func NewTransaction(id, owner, orderID, sessionID string, amountCents int64, currency string, metadata map[string]string) Transaction {
	now := time.Now().UTC()
	return Transaction{
		ID:          id,
		UserID:      owner,
		OrderID:     orderID,
		SessionID:   sessionID,
		AmountCents: amountCents,
		Currency:    currency,
		Status:      StatusPending,
		Metadata:    metadata,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
