package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rtwlabs/roastery-backend/internal/catalog/application"
	"github.com/rtwlabs/roastery-backend/internal/catalog/domain"
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

// ProductRoutes serves the public catalog plus authenticated product creation.
func (h *Handler) ProductRoutes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.listProducts)
	r.With(h.identity.RequireUser).Post("/", h.createProduct)
	return r
}

func (h *Handler) BlendRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(h.identity.RequireUser)
	r.Post("/", h.createBlend)
	r.Get("/", h.listBlends)
	r.Get("/{id}", h.getBlend)
	return r
}

type productView struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Origin      string    `json:"origin"`
	PriceCents  int64     `json:"price_cents"`
	ImageURL    string    `json:"image_url"`
	Available   bool      `json:"available"`
	CreatedAt   time.Time `json:"created_at"`
}

func toProductView(p domain.Product) productView {
	return productView{p.ID, p.Name, p.Description, p.Origin, p.PriceCents, p.ImageURL, p.Available, p.CreatedAt}
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListProducts(r.Context())
	if err != nil {
		rest.Error(w, h.log, err)
		return
	}
	views := make([]productView, 0, len(products))
	for _, p := range products {
		views = append(views, toProductView(p))
	}
	rest.JSON(w, http.StatusOK, views)
}

type createProductReq struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Origin      string `json:"origin"`
	PriceCents  int64  `json:"price_cents" validate:"gte=0"`
	ImageURL    string `json:"image_url"`
	Available   bool   `json:"available"`
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductReq
	if err := rest.Decode(r, &req); err != nil {
		rest.Error(w, h.log, err)
		return
	}
	p, err := h.service.CreateProduct(r.Context(), application.CreateProduct{
		Name:        req.Name,
		Description: req.Description,
		Origin:      req.Origin,
		PriceCents:  req.PriceCents,
		ImageURL:    req.ImageURL,
		Available:   req.Available,
	})
	if err != nil {
		rest.Error(w, h.log, err)
		return
	}
	rest.JSON(w, http.StatusOK, toProductView(p))
}

type blendView struct {
	ID            string         `json:"id"`
	UserID        string         `json:"user_id"`
	Name          string         `json:"name"`
	Origin        string         `json:"origin"`
	RoastLevel    string         `json:"roast_level"`
	GrindSize     string         `json:"grind_size"`
	Components    map[string]int `json:"blend_components"`
	QuantityGrams int            `json:"quantity"`
	PriceCents    int64          `json:"price_cents"`
	CreatedAt     time.Time      `json:"created_at"`
}

func toBlendView(b domain.Blend) blendView {
	return blendView{b.ID, b.UserID, b.Name, b.Origin, b.RoastLevel, b.GrindSize, b.Components, b.QuantityGrams, b.PriceCents, b.CreatedAt}
}

type createBlendReq struct {
	Name          string         `json:"name" validate:"required"`
	Origin        string         `json:"origin"`
	RoastLevel    string         `json:"roast_level" validate:"required,oneof=light medium dark"`
	GrindSize     string         `json:"grind_size" validate:"required,oneof=whole_bean fine medium coarse"`
	Components    map[string]int `json:"blend_components" validate:"required"`
	QuantityGrams int            `json:"quantity" validate:"gt=0"`
}

func (h *Handler) createBlend(w http.ResponseWriter, r *http.Request) {
	var req createBlendReq
	if err := rest.Decode(r, &req); err != nil {
		rest.Error(w, h.log, err)
		return
	}
	p, _ := identityhttp.PrincipalFrom(r.Context())
	b, err := h.service.CreateBlend(r.Context(), p.OwnerKey(), application.CreateBlend{
		Name:          req.Name,
		Origin:        req.Origin,
		RoastLevel:    req.RoastLevel,
		GrindSize:     req.GrindSize,
		Components:    req.Components,
		QuantityGrams: req.QuantityGrams,
	})
	if err != nil {
		rest.Error(w, h.log, err)
		return
	}
	rest.JSON(w, http.StatusOK, toBlendView(b))
}

func (h *Handler) listBlends(w http.ResponseWriter, r *http.Request) {
	p, _ := identityhttp.PrincipalFrom(r.Context())
	blends, err := h.service.ListBlends(r.Context(), p.OwnerKey())
	if err != nil {
		rest.Error(w, h.log, err)
		return
	}
	views := make([]blendView, 0, len(blends))
	for _, b := range blends {
		views = append(views, toBlendView(b))
	}
	rest.JSON(w, http.StatusOK, views)
}

func (h *Handler) getBlend(w http.ResponseWriter, r *http.Request) {
	p, _ := identityhttp.PrincipalFrom(r.Context())
	b, err := h.service.GetBlend(r.Context(), chi.URLParam(r, "id"), p.OwnerKey())
	if err != nil {
		rest.Error(w, h.log, err)
		return
	}
	rest.JSON(w, http.StatusOK, toBlendView(b))
}
