package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	identityhttp "github.com/rtwlabs/roastery-backend/internal/identity/infrastructure/http"
	"github.com/rtwlabs/roastery-backend/internal/rest"
	"github.com/rtwlabs/roastery-backend/internal/subscription/application"
	"github.com/rtwlabs/roastery-backend/internal/subscription/domain"
)

type Handler struct {
	log      *slog.Logger
	service  *application.Service
	identity *identityhttp.Handler
}

func NewHandler(log *slog.Logger, service *application.Service, identity *identityhttp.Handler) *Handler {
	return &Handler{log: log, service: service, identity: identity}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(h.identity.RequireUser)
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Patch("/{id}", h.updateStatus)
	return r
}

type createSubReq struct {
	BlendID   string `json:"custom_blend_id" validate:"required"`
	Frequency string `json:"frequency" validate:"required,oneof=weekly biweekly monthly"`
}

type subView struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	BlendID      string    `json:"custom_blend_id"`
	Frequency    string    `json:"frequency"`
	Status       string    `json:"status"`
	NextDelivery time.Time `json:"next_delivery"`
	CreatedAt    time.Time `json:"created_at"`
}

func toSubView(sub domain.Subscription) subView {
	return subView{sub.ID, sub.UserID, sub.BlendID, string(sub.Frequency), string(sub.Status), sub.NextDelivery, sub.CreatedAt}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createSubReq
	if err := rest.Decode(r, &req); err != nil {
		rest.Error(w, h.log, err)
		return
	}
	p, _ := identityhttp.PrincipalFrom(r.Context())
	sub, err := h.service.Create(r.Context(), p.OwnerKey(), req.BlendID, domain.Frequency(req.Frequency))
	if err != nil {
		rest.Error(w, h.log, err)
		return
	}
	rest.JSON(w, http.StatusOK, toSubView(sub))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	p, _ := identityhttp.PrincipalFrom(r.Context())
	subs, err := h.service.List(r.Context(), p.OwnerKey())
	if err != nil {
		rest.Error(w, h.log, err)
		return
	}
	views := make([]subView, 0, len(subs))
	for _, sub := range subs {
		views = append(views, toSubView(sub))
	}
	rest.JSON(w, http.StatusOK, views)
}

type patchSubReq struct {
	Status string `json:"status" validate:"required"`
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req patchSubReq
	if err := rest.Decode(r, &req); err != nil {
		rest.Error(w, h.log, err)
		return
	}
	p, _ := identityhttp.PrincipalFrom(r.Context())
	if err := h.service.UpdateStatus(r.Context(), chi.URLParam(r, "id"), p.OwnerKey(), domain.Status(req.Status)); err != nil {
		rest.Error(w, h.log, err)
		return
	}
	rest.JSON(w, http.StatusOK, map[string]string{"message": "subscription updated"})
}
