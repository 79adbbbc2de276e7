package application

import (
	"context"

	"github.com/rtwlabs/roastery-backend/internal/payment/domain"
)

// SessionRequest is what the gateway needs to open a hosted checkout.
type SessionRequest struct {
	AmountCents int64
	Currency    string
	SuccessURL  string
	CancelURL   string
	Metadata    map[string]string
}

type Session struct {
	ID          string
	RedirectURL string
}

// SessionStatus is the provider's live view of a checkout session.
type SessionStatus struct {
	Status        string
	PaymentStatus string
	AmountCents   int64
	Currency      string
	Metadata      map[string]string
}

// ProviderEvent is a verified, parsed webhook notification.
type ProviderEvent struct {
	Type          string
	SessionID     string
	PaymentStatus string
}

type CheckoutGateway interface {
	CreateSession(ctx context.Context, req SessionRequest) (Session, error)
	SessionStatus(ctx context.Context, sessionID string) (SessionStatus, error)
	// VerifyEvent checks the webhook signature and parses the event.
	// A bad signature or body must surface as a validation error.
	VerifyEvent(payload []byte, signature string) (ProviderEvent, error)
}

type TransactionRepository interface {
	// CreateForOrder inserts the transaction and stamps the order with the
	// session ID in one transaction.
	CreateForOrder(ctx context.Context, t domain.Transaction) error
	FindBySession(ctx context.Context, sessionID string) (domain.Transaction, error)
	FindOwnedBySession(ctx context.Context, sessionID, owner string) (domain.Transaction, error)
	// MarkPaid applies the paid transition: transaction and linked order are
	// flipped to paid (order also to processing) and the settlement event is
	// staged, all conditioned on the transaction not already being paid.
	// Returns false when a concurrent caller already applied it.
	MarkPaid(ctx context.Context, sessionID, eventType string, payload []byte, traceparent string) (bool, error)
}

// OrderReader is the narrow slice of order state checkout needs.
type OrderReader interface {
	FindOwned(ctx context.Context, orderID, owner string) (OrderSummary, error)
}

type OrderSummary struct {
	ID         string
	Owner      string
	TotalCents int64
}
