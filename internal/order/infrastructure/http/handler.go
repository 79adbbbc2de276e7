package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	identityhttp "github.com/rtwlabs/roastery-backend/internal/identity/infrastructure/http"
	"github.com/rtwlabs/roastery-backend/internal/order/application"
	"github.com/rtwlabs/roastery-backend/internal/order/domain"
	"github.com/rtwlabs/roastery-backend/internal/rest"
)

type Handler struct {
	log      *slog.Logger
	service  *application.Service
	identity *identityhttp.Handler
	tracer   trace.Tracer
}

func NewHandler(log *slog.Logger, service *application.Service, identity *identityhttp.Handler) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		identity: identity,
		tracer:   otel.Tracer("order-http"),
	}
}

// Routes serves the customer-facing order surface. Creation is open to
// guests; reads require an authenticated owner.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.With(h.identity.OptionalUser).Post("/", h.create)
	r.With(h.identity.RequireUser).Get("/", h.list)
	r.With(h.identity.RequireUser).Get("/{id}", h.get)
	return r
}

// AdminRoutes serves staff order management.
func (h *Handler) AdminRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(h.identity.RequireUser)
	r.Get("/orders", h.listAll)
	r.Patch("/orders/{id}", h.updateStatus)
	return r
}

type itemRefReq struct {
	ProductID string `json:"product_id"`
	BlendID   string `json:"custom_blend_id"`
	Quantity  int    `json:"quantity" validate:"gt=0"`
}

type addressReq struct {
	Name       string `json:"name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	Region     string `json:"region"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type createOrderReq struct {
	Items           []itemRefReq `json:"items" validate:"required,min=1,dive"`
	TotalCents      int64        `json:"total_cents" validate:"gte=0"`
	ShippingAddress addressReq   `json:"shipping_address"`
	GuestEmail      string       `json:"guest_email" validate:"omitempty,email"`
}

type orderView struct {
	ID              string         `json:"id"`
	UserID          string         `json:"user_id"`
	GuestEmail      string         `json:"guest_email,omitempty"`
	Items           []domain.Item  `json:"items"`
	TotalCents      int64          `json:"total_cents"`
	ShippingAddress domain.Address `json:"shipping_address"`
	Status          string         `json:"status"`
	PaymentStatus   string         `json:"payment_status"`
	SessionID       string         `json:"session_id,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

func toOrderView(o domain.Order) orderView {
	return orderView{
		ID:              o.ID,
		UserID:          o.UserID,
		GuestEmail:      o.GuestEmail,
		Items:           o.Items,
		TotalCents:      o.TotalCents,
		ShippingAddress: o.ShippingAddress,
		Status:          string(o.Status),
		PaymentStatus:   string(o.PaymentStatus),
		SessionID:       o.SessionID,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateOrder")
	defer span.End()

	var req createOrderReq
	if err := rest.Decode(r, &req); err != nil {
		rest.Error(w, h.log, err)
		return
	}

	in := application.CreateOrder{
		TotalCents: req.TotalCents,
		ShippingAddress: domain.Address{
			Name:       req.ShippingAddress.Name,
			Line1:      req.ShippingAddress.Line1,
			Line2:      req.ShippingAddress.Line2,
			City:       req.ShippingAddress.City,
			Region:     req.ShippingAddress.Region,
			PostalCode: req.ShippingAddress.PostalCode,
			Country:    req.ShippingAddress.Country,
		},
	}
	for _, item := range req.Items {
		in.Items = append(in.Items, application.ItemRef{
			ProductID: item.ProductID,
			BlendID:   item.BlendID,
			Quantity:  item.Quantity,
		})
	}

	if p, ok := identityhttp.PrincipalFrom(ctx); ok {
		in.Owner = p.OwnerKey()
	} else if req.GuestEmail != "" {
		in.Owner = req.GuestEmail
		in.GuestEmail = req.GuestEmail
	} else {
		in.Owner = "guest"
	}

	o, err := h.service.Create(ctx, in)
	if err != nil {
		rest.Error(w, h.log, err)
		return
	}
	rest.JSON(w, http.StatusOK, toOrderView(o))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	p, _ := identityhttp.PrincipalFrom(r.Context())
	orders, err := h.service.List(r.Context(), p.OwnerKey())
	if err != nil {
		rest.Error(w, h.log, err)
		return
	}
	views := make([]orderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, toOrderView(o))
	}
	rest.JSON(w, http.StatusOK, views)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	p, _ := identityhttp.PrincipalFrom(r.Context())
	o, err := h.service.Get(r.Context(), chi.URLParam(r, "id"), p.OwnerKey())
	if err != nil {
		rest.Error(w, h.log, err)
		return
	}
	rest.JSON(w, http.StatusOK, toOrderView(o))
}

func (h *Handler) listAll(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListAll(r.Context())
	if err != nil {
		rest.Error(w, h.log, err)
		return
	}
	views := make([]orderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, toOrderView(o))
	}
	rest.JSON(w, http.StatusOK, views)
}

type patchOrderReq struct {
	Status string `json:"status" validate:"required"`
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "UpdateOrderStatus")
	defer span.End()

	var req patchOrderReq
	if err := rest.Decode(r, &req); err != nil {
		rest.Error(w, h.log, err)
		return
	}
	if err := h.service.UpdateStatus(ctx, chi.URLParam(r, "id"), domain.Status(req.Status)); err != nil {
		rest.Error(w, h.log, err)
		return
	}
	rest.JSON(w, http.StatusOK, map[string]string{"message": "order updated"})
}
