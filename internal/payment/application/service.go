package application

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/rtwlabs/roastery-backend/internal/apperr"
	identity "github.com/rtwlabs/roastery-backend/internal/identity/domain"
	"github.com/rtwlabs/roastery-backend/internal/payment/domain"
	"github.com/rtwlabs/roastery-backend/pkg/tracing"
)

// Engine reconciles local payment state with provider-reported truth. Both
// reconciliation paths (client polling and the provider webhook) funnel into
// applyPaid, whose at-most-once effect rests on the repository's conditional
// update, so duplicate webhooks and poll/webhook races are safe by
// construction.
type Engine struct {
	log      *slog.Logger
	repo     TransactionRepository
	orders   OrderReader
	gateway  CheckoutGateway
	currency string
}

func NewEngine(log *slog.Logger, repo TransactionRepository, orders OrderReader, gateway CheckoutGateway, currency string) *Engine {
	return &Engine{
		log:      log,
		repo:     repo,
		orders:   orders,
		gateway:  gateway,
		currency: currency,
	}
}

// OpenSession creates a hosted checkout session for an order the caller
// owns. Nothing is persisted when the gateway call fails; on success the
// transaction insert and the order's session stamp land in one store
// transaction.
func (e *Engine) OpenSession(ctx context.Context, orderID string, p identity.Principal, originURL string) (Session, error) {
	o, err := e.orders.FindOwned(ctx, orderID, p.OwnerKey())
	if err != nil {
		return Session{}, err
	}

	req := SessionRequest{
		AmountCents: o.TotalCents,
		Currency:    e.currency,
		SuccessURL:  originURL + "/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:   originURL + "/checkout/cancel",
		Metadata: map[string]string{
			"order_id": o.ID,
			"user_id":  p.OwnerKey(),
		},
	}

	session, err := e.gateway.CreateSession(ctx, req)
	if err != nil {
		return Session{}, err
	}

	t := domain.NewTransaction(uuid.NewString(), p.OwnerKey(), o.ID, session.ID, o.TotalCents, e.currency, req.Metadata)
	if err := e.repo.CreateForOrder(ctx, t); err != nil {
		return Session{}, err
	}

	e.log.Info("checkout session opened", "order_id", o.ID, "session_id", session.ID, "amount_cents", o.TotalCents)
	return session, nil
}

// PollStatus reports a session's payment state. A transaction already stored
// as paid answers from the record alone; the gateway is never re-queried
// after settlement. Otherwise the provider is asked live, and a paid answer
// triggers the paid transition before the view is returned.
func (e *Engine) PollStatus(ctx context.Context, sessionID string, p identity.Principal) (SessionStatus, error) {
	t, err := e.repo.FindOwnedBySession(ctx, sessionID, p.OwnerKey())
	if err != nil {
		return SessionStatus{}, err
	}

	if t.Status == domain.StatusPaid {
		return SessionStatus{
			Status:        "complete",
			PaymentStatus: string(domain.StatusPaid),
			AmountCents:   t.AmountCents,
			Currency:      t.Currency,
			Metadata:      t.Metadata,
		}, nil
	}

	status, err := e.gateway.SessionStatus(ctx, sessionID)
	if err != nil {
		return SessionStatus{}, err
	}

	if status.PaymentStatus == string(domain.StatusPaid) {
		if err := e.applyPaid(ctx, t); err != nil {
			return SessionStatus{}, err
		}
	}
	return status, nil
}

// HandleProviderEvent processes an asynchronous provider notification.
// Signature and parse failures surface as validation errors; an event for an
// unknown session is a benign no-op; only a store failure after successful
// validation is reported to the caller.
func (e *Engine) HandleProviderEvent(ctx context.Context, payload []byte, signature string) error {
	event, err := e.gateway.VerifyEvent(payload, signature)
	if err != nil {
		return err
	}

	if event.PaymentStatus != string(domain.StatusPaid) || event.SessionID == "" {
		e.log.Info("provider event ignored", "type", event.Type, "payment_status", event.PaymentStatus)
		return nil
	}

	t, err := e.repo.FindBySession(ctx, event.SessionID)
	if errors.Is(err, apperr.ErrNotFound) {
		e.log.Info("provider event for unknown session", "session_id", event.SessionID)
		return nil
	}
	if err != nil {
		return err
	}

	if t.Status == domain.StatusPaid {
		return nil
	}
	return e.applyPaid(ctx, t)
}

// applyPaid performs the shared paid transition. The repository applies the
// writes only while the stored status is still pending, so of any number of
// concurrent callers exactly one takes effect and the rest observe a lost
// race.
func (e *Engine) applyPaid(ctx context.Context, t domain.Transaction) error {
	payload, err := json.Marshal(domain.PaymentSettled{
		OrderID:     t.OrderID,
		SessionID:   t.SessionID,
		AmountCents: t.AmountCents,
		Currency:    t.Currency,
	})
	if err != nil {
		return err
	}

	applied, err := e.repo.MarkPaid(ctx, t.SessionID, "PaymentSettled", payload, tracing.Traceparent(ctx))
	if err != nil {
		return err
	}
	if applied {
		e.log.Info("payment settled", "order_id", t.OrderID, "session_id", t.SessionID)
	} else {
		e.log.Info("paid transition already applied", "session_id", t.SessionID)
	}
	return nil
}
