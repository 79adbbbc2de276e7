// Package stripe adapts Stripe hosted checkout to the reconciliation
// engine's gateway port.
package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/rtwlabs/roastery-backend/internal/apperr"
	"github.com/rtwlabs/roastery-backend/internal/payment/application"
)

type Gateway struct {
	log           *slog.Logger
	api           *client.API
	webhookSecret string
}

// NewGateway builds a dedicated API client; no process-wide Stripe key is
// set.
func NewGateway(log *slog.Logger, apiKey, webhookSecret string) *Gateway {
	api := &client.API{}
	api.Init(apiKey, nil)
	return &Gateway{log: log, api: api, webhookSecret: webhookSecret}
}

func (g *Gateway) CreateSession(ctx context.Context, req application.SessionRequest) (application.Session, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			Quantity: stripe.Int64(1),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(req.Currency),
				UnitAmount: stripe.Int64(req.AmountCents),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String("Roastery order"),
				},
			},
		}},
	}
	params.Context = ctx
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	s, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return application.Session{}, &apperr.GatewayError{Op: "create session", Err: err}
	}
	return application.Session{ID: s.ID, RedirectURL: s.URL}, nil
}

func (g *Gateway) SessionStatus(ctx context.Context, sessionID string) (application.SessionStatus, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	s, err := g.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return application.SessionStatus{}, &apperr.GatewayError{Op: "get session", Err: err}
	}
	return application.SessionStatus{
		Status:        string(s.Status),
		PaymentStatus: string(s.PaymentStatus),
		AmountCents:   s.AmountTotal,
		Currency:      string(s.Currency),
		Metadata:      s.Metadata,
	}, nil
}

// VerifyEvent checks the Stripe-Signature header against the raw body and
// extracts the checkout session state. Events that are not checkout
// lifecycle notifications parse to an empty ProviderEvent the engine
// ignores.
func (g *Gateway) VerifyEvent(payload []byte, signature string) (application.ProviderEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, g.webhookSecret)
	if err != nil {
		return application.ProviderEvent{}, fmt.Errorf("%w: webhook verification: %v", apperr.ErrInvalid, err)
	}

	switch event.Type {
	case "checkout.session.completed", "checkout.session.async_payment_succeeded":
		var s stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
			return application.ProviderEvent{}, fmt.Errorf("%w: webhook payload: %v", apperr.ErrInvalid, err)
		}
		return application.ProviderEvent{
			Type:          string(event.Type),
			SessionID:     s.ID,
			PaymentStatus: string(s.PaymentStatus),
		}, nil
	default:
		return application.ProviderEvent{Type: string(event.Type)}, nil
	}
}
