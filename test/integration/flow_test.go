//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orderdomain "github.com/rtwlabs/roastery-backend/internal/order/domain"
	orderkafka "github.com/rtwlabs/roastery-backend/internal/order/infrastructure/kafka"
	orderpg "github.com/rtwlabs/roastery-backend/internal/order/infrastructure/postgres"
	paymentdomain "github.com/rtwlabs/roastery-backend/internal/payment/domain"
	paymentpg "github.com/rtwlabs/roastery-backend/internal/payment/infrastructure/postgres"
	"github.com/rtwlabs/roastery-backend/pkg/outbox"
)

func TestPaymentSettlementFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}

	ctx := context.Background()
	env, err := Setup(ctx)
	require.NoError(t, err)
	defer env.Teardown(ctx)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	orders := orderpg.NewRepository(log, env.Pool)
	payments := paymentpg.NewRepository(log, env.Pool)

	o := orderdomain.NewOrder(uuid.NewString(), "user-1", "", []orderdomain.Item{
		{ProductID: "prod-1", Name: "Ethiopia Natural", Quantity: 2, UnitPriceCents: 1500},
		{BlendID: "blend-1", Name: "House Blend", Quantity: 1, UnitPriceCents: 500},
	}, orderdomain.Address{
		Name: "Alice", Line1: "1 Roast Way", City: "Portland",
		Region: "OR", PostalCode: "97201", Country: "US",
	})
	require.Equal(t, int64(3500), o.TotalCents)

	created, err := json.Marshal(orderdomain.OrderCreated{OrderID: o.ID, Owner: o.UserID, TotalCents: o.TotalCents, Items: o.Items})
	require.NoError(t, err)
	require.NoError(t, orders.SaveWithOutbox(ctx, o, "OrderCreated", created, ""))

	const sessionID = "cs_integration_1"
	tx := paymentdomain.NewTransaction(uuid.NewString(), "user-1", o.ID, sessionID, o.TotalCents, "usd",
		map[string]string{"order_id": o.ID, "user_id": "user-1"})
	require.NoError(t, payments.CreateForOrder(ctx, tx))

	stamped, err := orders.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, sessionID, stamped.SessionID)

	stored, err := payments.FindBySession(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, paymentdomain.StatusPending, stored.Status)

	settled, err := json.Marshal(paymentdomain.PaymentSettled{
		OrderID: o.ID, SessionID: sessionID, AmountCents: o.TotalCents, Currency: "usd",
	})
	require.NoError(t, err)

	applied, err := payments.MarkPaid(ctx, sessionID, "PaymentSettled", settled, "")
	require.NoError(t, err)
	assert.True(t, applied)

	// duplicate settlement loses the race
	applied, err = payments.MarkPaid(ctx, sessionID, "PaymentSettled", settled, "")
	require.NoError(t, err)
	assert.False(t, applied)

	after, err := orders.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, orderdomain.PaymentPaid, after.PaymentStatus)
	assert.Equal(t, orderdomain.StatusProcessing, after.Status)

	txAfter, err := payments.FindBySession(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, paymentdomain.StatusPaid, txAfter.Status)

	var settlementRows int
	require.NoError(t, env.Pool.QueryRow(ctx,
		`SELECT count(*) FROM outbox WHERE aggregate_type='payment' AND aggregate_id=$1`, sessionID).Scan(&settlementRows))
	assert.Equal(t, 1, settlementRows, "one settlement event despite the duplicate")
}

func TestOutboxRelayThroughKafka(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}

	ctx := context.Background()
	env, err := Setup(ctx)
	require.NoError(t, err)
	defer env.Teardown(ctx)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	orders := orderpg.NewRepository(log, env.Pool)
	store := orderpg.NewOutboxStore(log, env.Pool)

	o := orderdomain.NewOrder(uuid.NewString(), "user-1", "", []orderdomain.Item{
		{ProductID: "prod-1", Name: "Kenya AA", Quantity: 1, UnitPriceCents: 1800},
	}, orderdomain.Address{Name: "Alice", Line1: "1 Roast Way", City: "Portland", Country: "US"})
	created, err := json.Marshal(orderdomain.OrderCreated{OrderID: o.ID, Owner: o.UserID, TotalCents: o.TotalCents, Items: o.Items})
	require.NoError(t, err)
	require.NoError(t, orders.SaveWithOutbox(ctx, o, "OrderCreated", created, ""))

	events, err := store.LockBatch(ctx, "it-relay", 10, 30*time.Second)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "OrderCreated", events[0].Type)
	assert.Equal(t, o.ID, events[0].AggregateID)

	// leased rows are invisible to a second relay
	second, err := store.LockBatch(ctx, "it-relay-2", 10, 30*time.Second)
	require.NoError(t, err)
	assert.Empty(t, second)

	const topic = "roastery.events.test"
	writer := orderkafka.NewWriter(env.Brokers)
	writer.AllowAutoTopicCreation = true
	defer writer.Close()
	dispatch := outbox.NewDispatcher(log, writer, topic)

	// first writes can race topic auto-creation
	deadline := time.Now().Add(30 * time.Second)
	for {
		err = dispatch.Dispatch(ctx, events[0])
		if err == nil || time.Now().After(deadline) {
			break
		}
		time.Sleep(time.Second)
	}
	require.NoError(t, err)
	require.NoError(t, store.MarkSent(ctx, []int64{events[0].ID}))

	drained, err := store.LockBatch(ctx, "it-relay", 10, 30*time.Second)
	require.NoError(t, err)
	assert.Empty(t, drained)

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  env.Brokers,
		Topic:    topic,
		GroupID:  "it-consumer",
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	readCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	msg, err := reader.ReadMessage(readCtx)
	require.NoError(t, err)
	assert.Equal(t, o.ID, string(msg.Key))
	assert.Equal(t, created, msg.Value)
}
