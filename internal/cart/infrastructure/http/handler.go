package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rtwlabs/roastery-backend/internal/cart/application"
	"github.com/rtwlabs/roastery-backend/internal/cart/domain"
	identityhttp "github.com/rtwlabs/roastery-backend/internal/identity/infrastructure/http"
	"github.com/rtwlabs/roastery-backend/internal/rest"
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
	r.Post("/", h.add)
	r.Get("/", h.list)
	r.Delete("/{id}", h.remove)
	r.Delete("/", h.clear)
	return r
}

type addItemReq struct {
	ProductID string `json:"product_id"`
	BlendID   string `json:"custom_blend_id"`
	Quantity  int    `json:"quantity" validate:"gt=0"`
}

type itemView struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ProductID string    `json:"product_id,omitempty"`
	BlendID   string    `json:"custom_blend_id,omitempty"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}

func toItemView(item domain.Item) itemView {
	return itemView{item.ID, item.UserID, item.ProductID, item.BlendID, item.Quantity, item.CreatedAt}
}

func (h *Handler) add(w http.ResponseWriter, r *http.Request) {
	var req addItemReq
	if err := rest.Decode(r, &req); err != nil {
		rest.Error(w, h.log, err)
		return
	}
	p, _ := identityhttp.PrincipalFrom(r.Context())
	item, err := h.service.Add(r.Context(), p.OwnerKey(), req.ProductID, req.BlendID, req.Quantity)
	if err != nil {
		rest.Error(w, h.log, err)
		return
	}
	rest.JSON(w, http.StatusOK, toItemView(item))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	p, _ := identityhttp.PrincipalFrom(r.Context())
	items, err := h.service.List(r.Context(), p.OwnerKey())
	if err != nil {
		rest.Error(w, h.log, err)
		return
	}
	views := make([]itemView, 0, len(items))
	for _, item := range items {
		views = append(views, toItemView(item))
	}
	rest.JSON(w, http.StatusOK, views)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	p, _ := identityhttp.PrincipalFrom(r.Context())
	if err := h.service.Remove(r.Context(), chi.URLParam(r, "id"), p.OwnerKey()); err != nil {
		rest.Error(w, h.log, err)
		return
	}
	rest.JSON(w, http.StatusOK, map[string]string{"message": "item removed from cart"})
}

func (h *Handler) clear(w http.ResponseWriter, r *http.Request) {
	p, _ := identityhttp.PrincipalFrom(r.Context())
	if err := h.service.Clear(r.Context(), p.OwnerKey()); err != nil {
		rest.Error(w, h.log, err)
		return
	}
	rest.JSON(w, http.StatusOK, map[string]string{"message": "cart cleared"})
}
