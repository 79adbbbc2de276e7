package http

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rtwlabs/roastery-backend/internal/apperr"
	"github.com/rtwlabs/roastery-backend/internal/payment/application"
	"github.com/rtwlabs/roastery-backend/internal/payment/domain"
)

type webhookGateway struct {
	event application.ProviderEvent
	err   error
}

func (g *webhookGateway) CreateSession(ctx context.Context, req application.SessionRequest) (application.Session, error) {
	return application.Session{}, fmt.Errorf("not used")
}

func (g *webhookGateway) SessionStatus(ctx context.Context, sessionID string) (application.SessionStatus, error) {
	return application.SessionStatus{}, fmt.Errorf("not used")
}

func (g *webhookGateway) VerifyEvent(payload []byte, signature string) (application.ProviderEvent, error) {
	if g.err != nil {
		return application.ProviderEvent{}, g.err
	}
	return g.event, nil
}

type webhookRepo struct {
	tx          domain.Transaction
	hasTx       bool
	markPaidErr error
	markedPaid  bool
}

func (r *webhookRepo) CreateForOrder(ctx context.Context, t domain.Transaction) error { return nil }

func (r *webhookRepo) FindBySession(ctx context.Context, sessionID string) (domain.Transaction, error) {
	if !r.hasTx {
		return domain.Transaction{}, fmt.Errorf("%w: transaction", apperr.ErrNotFound)
	}
	return r.tx, nil
}

func (r *webhookRepo) FindOwnedBySession(ctx context.Context, sessionID, owner string) (domain.Transaction, error) {
	return r.FindBySession(ctx, sessionID)
}

func (r *webhookRepo) MarkPaid(ctx context.Context, sessionID, eventType string, payload []byte, traceparent string) (bool, error) {
	if r.markPaidErr != nil {
		return false, r.markPaidErr
	}
	r.markedPaid = true
	return true, nil
}

func (r *webhookRepo) FindOwned(ctx context.Context, orderID, owner string) (application.OrderSummary, error) {
	return application.OrderSummary{}, fmt.Errorf("%w: order", apperr.ErrNotFound)
}

func webhookRequest(t *testing.T, handler http.Handler) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/stripe", strings.NewReader(`{}`))
	req.Header.Set("Stripe-Signature", "t=1,v1=sig")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func newWebhookHandler(gw *webhookGateway, repo *webhookRepo) http.Handler {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := application.NewEngine(log, repo, repo, gw, "usd")
	return NewHandler(log, engine, nil).WebhookRoutes()
}

func TestWebhook_AcksSettlement(t *testing.T) {
	repo := &webhookRepo{
		hasTx: true,
		tx:    domain.Transaction{SessionID: "cs_1", OrderID: "order-1", Status: domain.StatusPending},
	}
	gw := &webhookGateway{event: application.ProviderEvent{
		Type: "checkout.session.completed", SessionID: "cs_1", PaymentStatus: "paid",
	}}

	rec := webhookRequest(t, newWebhookHandler(gw, repo))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, repo.markedPaid)
}

func TestWebhook_AcksUnknownSession(t *testing.T) {
	gw := &webhookGateway{event: application.ProviderEvent{
		Type: "checkout.session.completed", SessionID: "cs_other", PaymentStatus: "paid",
	}}

	rec := webhookRequest(t, newWebhookHandler(gw, &webhookRepo{}))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWebhook_BadSignatureIsClientError(t *testing.T) {
	gw := &webhookGateway{err: fmt.Errorf("%w: webhook verification", apperr.ErrInvalid)}

	rec := webhookRequest(t, newWebhookHandler(gw, &webhookRepo{}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWebhook_StoreFailureReportedForRetry(t *testing.T) {
	repo := &webhookRepo{
		hasTx:       true,
		tx:          domain.Transaction{SessionID: "cs_1", OrderID: "order-1", Status: domain.StatusPending},
		markPaidErr: fmt.Errorf("connection reset"),
	}
	gw := &webhookGateway{event: application.ProviderEvent{
		Type: "checkout.session.completed", SessionID: "cs_1", PaymentStatus: "paid",
	}}

	rec := webhookRequest(t, newWebhookHandler(gw, repo))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal error")
}
