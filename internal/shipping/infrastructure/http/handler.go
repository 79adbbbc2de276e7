package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	identityhttp "github.com/rtwlabs/roastery-backend/internal/identity/infrastructure/http"
	"github.com/rtwlabs/roastery-backend/internal/rest"
	"github.com/rtwlabs/roastery-backend/internal/shipping/application"
	"github.com/rtwlabs/roastery-backend/internal/shipping/domain"
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
	r.Get("/rates", h.list)
	r.With(h.identity.RequireUser).Post("/rates", h.create)
	return r
}

type rateView struct {
	ID          string    `json:"id"`
	Region      string    `json:"region"`
	RateCents   int64     `json:"rate_cents"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	rates, err := h.service.List(r.Context())
	if err != nil {
		rest.Error(w, h.log, err)
		return
	}
	views := make([]rateView, 0, len(rates))
	for _, rate := range rates {
		views = append(views, toRateView(rate))
	}
	rest.JSON(w, http.StatusOK, views)
}

type createRateReq struct {
	Region      string `json:"region" validate:"required"`
	RateCents   int64  `json:"rate_cents" validate:"gte=0"`
	Description string `json:"description"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRateReq
	if err := rest.Decode(r, &req); err != nil {
		rest.Error(w, h.log, err)
		return
	}
	rate, err := h.service.Create(r.Context(), req.Region, req.RateCents, req.Description)
	if err != nil {
		rest.Error(w, h.log, err)
		return
	}
	rest.JSON(w, http.StatusOK, toRateView(rate))
}

func toRateView(rate domain.Rate) rateView {
	return rateView{rate.ID, rate.Region, rate.RateCents, rate.Description, rate.CreatedAt}
}
