package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/rtwlabs/roastery-backend/internal/apperr"
	identitydomain "github.com/rtwlabs/roastery-backend/internal/identity/domain"
	identityhttp "github.com/rtwlabs/roastery-backend/internal/identity/infrastructure/http"
	"github.com/rtwlabs/roastery-backend/internal/payment/application"
	"github.com/rtwlabs/roastery-backend/internal/rest"
)

type Handler struct {
	log      *slog.Logger
	engine   *application.Engine
	identity *identityhttp.Handler
	tracer   trace.Tracer
}

func NewHandler(log *slog.Logger, engine *application.Engine, identity *identityhttp.Handler) *Handler {
	return &Handler{
		log:      log,
		engine:   engine,
		identity: identity,
		tracer:   otel.Tracer("payment-http"),
	}
}

// CheckoutRoutes serves session creation and status polling. Guests reach
// checkout with the email their order was created under.
func (h *Handler) CheckoutRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(h.identity.OptionalUser)
	r.Post("/session", h.openSession)
	r.Get("/status/{sessionID}", h.pollStatus)
	return r
}

// WebhookRoutes serves the provider callback. No authentication: the
// signature check is the trust boundary.
func (h *Handler) WebhookRoutes() http.Handler {
	r := chi.NewRouter()
	r.Post("/stripe", h.webhook)
	return r
}

type openSessionReq struct {
	OrderID    string `json:"order_id" validate:"required"`
	OriginURL  string `json:"origin_url" validate:"required,url"`
	GuestEmail string `json:"guest_email" validate:"omitempty,email"`
}

type sessionView struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

func (h *Handler) openSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "OpenCheckoutSession")
	defer span.End()

	var req openSessionReq
	if err := rest.Decode(r, &req); err != nil {
		rest.Error(w, h.log, err)
		return
	}

	p, err := h.caller(ctx, req.GuestEmail)
	if err != nil {
		rest.Error(w, h.log, err)
		return
	}

	session, err := h.engine.OpenSession(ctx, req.OrderID, p, req.OriginURL)
	if err != nil {
		rest.Error(w, h.log, err)
		return
	}
	rest.JSON(w, http.StatusOK, sessionView{SessionID: session.ID, URL: session.RedirectURL})
}

type statusView struct {
	Status        string            `json:"status"`
	PaymentStatus string            `json:"payment_status"`
	AmountTotal   int64             `json:"amount_total"`
	Currency      string            `json:"currency"`
	Metadata      map[string]string `json:"metadata"`
}

func (h *Handler) pollStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "PollCheckoutStatus")
	defer span.End()

	p, err := h.caller(ctx, r.URL.Query().Get("guest_email"))
	if err != nil {
		rest.Error(w, h.log, err)
		return
	}

	status, err := h.engine.PollStatus(ctx, chi.URLParam(r, "sessionID"), p)
	if err != nil {
		rest.Error(w, h.log, err)
		return
	}
	rest.JSON(w, http.StatusOK, statusView{
		Status:        status.Status,
		PaymentStatus: status.PaymentStatus,
		AmountTotal:   status.AmountCents,
		Currency:      status.Currency,
		Metadata:      status.Metadata,
	})
}

// webhook acknowledges any event that passes signature validation. A store
// failure after validation is the one post-validation error reported back,
// so the provider retries instead of dropping the notification.
func (h *Handler) webhook(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ProviderWebhook")
	defer span.End()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		rest.Error(w, h.log, err)
		return
	}

	err = h.engine.HandleProviderEvent(ctx, body, r.Header.Get("Stripe-Signature"))
	if errors.Is(err, apperr.ErrInvalid) {
		rest.Error(w, h.log, err)
		return
	}
	if err != nil {
		h.log.Error("webhook processing failed", "err", err)
		rest.JSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	rest.JSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (h *Handler) caller(ctx context.Context, guestEmail string) (identitydomain.Principal, error) {
	if p, ok := identityhttp.PrincipalFrom(ctx); ok {
		return p, nil
	}
	if guestEmail != "" {
		return identitydomain.GuestPrincipal(guestEmail), nil
	}
	return identitydomain.Principal{}, apperr.ErrUnauthorized
}
