package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rtwlabs/roastery-backend/internal/apperr"
	identity "github.com/rtwlabs/roastery-backend/internal/identity/domain"
	"github.com/rtwlabs/roastery-backend/internal/payment/domain"
)

type stubGateway struct {
	mu          sync.Mutex
	createCalls int
	statusCalls int

	session   Session
	createErr error
	status    SessionStatus
	statusErr error
	event     ProviderEvent
	eventErr  error
}

func (g *stubGateway) CreateSession(ctx context.Context, req SessionRequest) (Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.createCalls++
	if g.createErr != nil {
		return Session{}, g.createErr
	}
	return g.session, nil
}

func (g *stubGateway) SessionStatus(ctx context.Context, sessionID string) (SessionStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.statusCalls++
	if g.statusErr != nil {
		return SessionStatus{}, g.statusErr
	}
	return g.status, nil
}

func (g *stubGateway) VerifyEvent(payload []byte, signature string) (ProviderEvent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.eventErr != nil {
		return ProviderEvent{}, g.eventErr
	}
	return g.event, nil
}

func (g *stubGateway) calls() (int, int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.createCalls, g.statusCalls
}

type orderState struct {
	Status        string
	PaymentStatus string
	SessionID     string
}

// memStore mimics the conditional-update semantics of the postgres
// repository: the paid transition applies only while the stored transaction
// is not yet paid.
type memStore struct {
	mu         sync.Mutex
	orders     map[string]OrderSummary
	states     map[string]*orderState
	txs        map[string]domain.Transaction
	inserts    int
	paidWrites int
}

func newMemStore() *memStore {
	return &memStore{
		orders: map[string]OrderSummary{},
		states: map[string]*orderState{},
		txs:    map[string]domain.Transaction{},
	}
}

func (s *memStore) addOrder(id, owner string, totalCents int64) {
	s.orders[id] = OrderSummary{ID: id, Owner: owner, TotalCents: totalCents}
	s.states[id] = &orderState{Status: "pending", PaymentStatus: "pending"}
}

func (s *memStore) FindOwned(ctx context.Context, orderID, owner string) (OrderSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok || o.Owner != owner {
		return OrderSummary{}, fmt.Errorf("%w: order %s", apperr.ErrNotFound, orderID)
	}
	return o, nil
}

func (s *memStore) CreateForOrder(ctx context.Context, t domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inserts++
	s.txs[t.SessionID] = t
	s.states[t.OrderID].SessionID = t.SessionID
	return nil
}

func (s *memStore) FindBySession(ctx context.Context, sessionID string) (domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.txs[sessionID]
	if !ok {
		return domain.Transaction{}, fmt.Errorf("%w: transaction for session %s", apperr.ErrNotFound, sessionID)
	}
	return t, nil
}

func (s *memStore) FindOwnedBySession(ctx context.Context, sessionID, owner string) (domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.txs[sessionID]
	if !ok || t.UserID != owner {
		return domain.Transaction{}, fmt.Errorf("%w: transaction for session %s", apperr.ErrNotFound, sessionID)
	}
	return t, nil
}

func (s *memStore) MarkPaid(ctx context.Context, sessionID, eventType string, payload []byte, traceparent string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.txs[sessionID]
	if !ok || t.Status == domain.StatusPaid {
		return false, nil
	}
	t.Status = domain.StatusPaid
	s.txs[sessionID] = t
	if st := s.states[t.OrderID]; st.PaymentStatus != "paid" {
		st.PaymentStatus = "paid"
		st.Status = "processing"
	}
	s.paidWrites++
	return true, nil
}

func (s *memStore) paidWriteCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paidWrites
}

func newTestEngine(store *memStore, gw *stubGateway) *Engine {
	return NewEngine(slog.New(slog.NewTextHandler(io.Discard, nil)), store, store, gw, "usd")
}

var alice = identity.Principal{UserID: "user-1", Email: "alice@example.com"}

func TestOpenSession_Success(t *testing.T) {
	store := newMemStore()
	store.addOrder("order-1", alice.OwnerKey(), 3500)
	gw := &stubGateway{session: Session{ID: "cs_1", RedirectURL: "https://pay.example/cs_1"}}
	engine := newTestEngine(store, gw)

	session, err := engine.OpenSession(context.Background(), "order-1", alice, "https://shop.example")
	require.NoError(t, err)
	assert.Equal(t, "cs_1", session.ID)
	assert.Equal(t, "https://pay.example/cs_1", session.RedirectURL)

	tx, err := store.FindBySession(context.Background(), "cs_1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, tx.Status)
	assert.Equal(t, "order-1", tx.OrderID)
	assert.Equal(t, int64(3500), tx.AmountCents)
	assert.Equal(t, "order-1", tx.Metadata["order_id"])
	assert.Equal(t, "cs_1", store.states["order-1"].SessionID)
}

func TestOpenSession_UnknownOrder(t *testing.T) {
	store := newMemStore()
	gw := &stubGateway{}
	engine := newTestEngine(store, gw)

	_, err := engine.OpenSession(context.Background(), "missing", alice, "https://shop.example")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	createCalls, _ := gw.calls()
	assert.Zero(t, createCalls)
	assert.Zero(t, store.inserts)
}

func TestOpenSession_ForeignOrder(t *testing.T) {
	store := newMemStore()
	store.addOrder("order-1", "someone-else", 3500)
	engine := newTestEngine(store, &stubGateway{})

	_, err := engine.OpenSession(context.Background(), "order-1", alice, "https://shop.example")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Zero(t, store.inserts)
}

func TestOpenSession_GatewayFailure(t *testing.T) {
	store := newMemStore()
	store.addOrder("order-1", alice.OwnerKey(), 3500)
	gw := &stubGateway{createErr: &apperr.GatewayError{Op: "create session", Err: fmt.Errorf("boom")}}
	engine := newTestEngine(store, gw)

	_, err := engine.OpenSession(context.Background(), "order-1", alice, "https://shop.example")
	var gerr *apperr.GatewayError
	require.ErrorAs(t, err, &gerr)
	assert.Zero(t, store.inserts, "nothing persisted when the gateway fails")
}

func openSession(t *testing.T, engine *Engine, store *memStore, gw *stubGateway) string {
	t.Helper()
	store.addOrder("order-1", alice.OwnerKey(), 3500)
	gw.mu.Lock()
	gw.session = Session{ID: "cs_1", RedirectURL: "https://pay.example/cs_1"}
	gw.mu.Unlock()
	_, err := engine.OpenSession(context.Background(), "order-1", alice, "https://shop.example")
	require.NoError(t, err)
	return "cs_1"
}

func TestPollStatus_PendingLeavesStateAlone(t *testing.T) {
	store := newMemStore()
	gw := &stubGateway{}
	engine := newTestEngine(store, gw)
	sessionID := openSession(t, engine, store, gw)

	gw.status = SessionStatus{Status: "open", PaymentStatus: "unpaid", AmountCents: 3500, Currency: "usd"}

	view, err := engine.PollStatus(context.Background(), sessionID, alice)
	require.NoError(t, err)
	assert.Equal(t, "unpaid", view.PaymentStatus)
	assert.Zero(t, store.paidWriteCount())
	assert.Equal(t, "pending", store.states["order-1"].PaymentStatus)
}

func TestPollStatus_PaidAppliesTransitionOnce(t *testing.T) {
	store := newMemStore()
	gw := &stubGateway{}
	engine := newTestEngine(store, gw)
	sessionID := openSession(t, engine, store, gw)

	gw.status = SessionStatus{Status: "complete", PaymentStatus: "paid", AmountCents: 3500, Currency: "usd"}

	view, err := engine.PollStatus(context.Background(), sessionID, alice)
	require.NoError(t, err)
	assert.Equal(t, "paid", view.PaymentStatus)
	assert.Equal(t, 1, store.paidWriteCount())
	assert.Equal(t, "processing", store.states["order-1"].Status)
	assert.Equal(t, "paid", store.states["order-1"].PaymentStatus)

	// settled sessions answer from the stored record
	_, statusCallsBefore := gw.calls()
	view, err = engine.PollStatus(context.Background(), sessionID, alice)
	require.NoError(t, err)
	assert.Equal(t, "paid", view.PaymentStatus)
	assert.Equal(t, int64(3500), view.AmountCents)
	_, statusCallsAfter := gw.calls()
	assert.Equal(t, statusCallsBefore, statusCallsAfter, "poll after settlement must not hit the gateway")
	assert.Equal(t, 1, store.paidWriteCount())
}

func TestPollStatus_UnknownSession(t *testing.T) {
	engine := newTestEngine(newMemStore(), &stubGateway{})
	_, err := engine.PollStatus(context.Background(), "cs_missing", alice)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestPollStatus_ForeignSession(t *testing.T) {
	store := newMemStore()
	gw := &stubGateway{}
	engine := newTestEngine(store, gw)
	sessionID := openSession(t, engine, store, gw)

	mallory := identity.Principal{UserID: "user-2"}
	_, err := engine.PollStatus(context.Background(), sessionID, mallory)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestWebhook_PaidThenDuplicateIsNoOp(t *testing.T) {
	store := newMemStore()
	gw := &stubGateway{}
	engine := newTestEngine(store, gw)
	sessionID := openSession(t, engine, store, gw)

	gw.event = ProviderEvent{Type: "checkout.session.completed", SessionID: sessionID, PaymentStatus: "paid"}

	require.NoError(t, engine.HandleProviderEvent(context.Background(), []byte(`{}`), "sig"))
	assert.Equal(t, 1, store.paidWriteCount())
	assert.Equal(t, "processing", store.states["order-1"].Status)

	// duplicate delivery
	require.NoError(t, engine.HandleProviderEvent(context.Background(), []byte(`{}`), "sig"))
	assert.Equal(t, 1, store.paidWriteCount(), "duplicate webhook must not write")
}

func TestWebhook_UnknownSessionAcks(t *testing.T) {
	store := newMemStore()
	gw := &stubGateway{event: ProviderEvent{Type: "checkout.session.completed", SessionID: "cs_other", PaymentStatus: "paid"}}
	engine := newTestEngine(store, gw)

	require.NoError(t, engine.HandleProviderEvent(context.Background(), []byte(`{}`), "sig"))
	assert.Zero(t, store.paidWriteCount())
}

func TestWebhook_InvalidSignature(t *testing.T) {
	store := newMemStore()
	gw := &stubGateway{eventErr: fmt.Errorf("%w: webhook verification", apperr.ErrInvalid)}
	engine := newTestEngine(store, gw)

	err := engine.HandleProviderEvent(context.Background(), []byte(`{}`), "bad")
	assert.ErrorIs(t, err, apperr.ErrInvalid)
	assert.Zero(t, store.paidWriteCount())
}

func TestWebhook_NonPaidEventIgnored(t *testing.T) {
	store := newMemStore()
	gw := &stubGateway{}
	engine := newTestEngine(store, gw)
	sessionID := openSession(t, engine, store, gw)

	gw.event = ProviderEvent{Type: "checkout.session.expired", SessionID: sessionID, PaymentStatus: "unpaid"}
	require.NoError(t, engine.HandleProviderEvent(context.Background(), []byte(`{}`), "sig"))
	assert.Zero(t, store.paidWriteCount())
}

// Simulates the poll/webhook race: both observe the pending transaction,
// both attempt the transition, exactly one set of writes lands.
func TestConcurrentPaidTransition(t *testing.T) {
	store := newMemStore()
	gw := &stubGateway{}
	engine := newTestEngine(store, gw)
	sessionID := openSession(t, engine, store, gw)

	gw.status = SessionStatus{Status: "complete", PaymentStatus: "paid", AmountCents: 3500, Currency: "usd"}
	gw.event = ProviderEvent{Type: "checkout.session.completed", SessionID: sessionID, PaymentStatus: "paid"}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := engine.PollStatus(context.Background(), sessionID, alice)
		assert.NoError(t, err)
	}()
	go func() {
		defer wg.Done()
		assert.NoError(t, engine.HandleProviderEvent(context.Background(), []byte(`{}`), "sig"))
	}()
	wg.Wait()

	assert.Equal(t, 1, store.paidWriteCount(), "exactly one effective transition")
	assert.Equal(t, "paid", store.states["order-1"].PaymentStatus)
	assert.Equal(t, "processing", store.states["order-1"].Status)

	tx, err := store.FindBySession(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, tx.Status)
}
