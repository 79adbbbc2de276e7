package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rtwlabs/roastery-backend/internal/identity/application"
	"github.com/rtwlabs/roastery-backend/internal/rest"
)

type Handler struct {
	log     *slog.Logger
	service *application.Service
}

func NewHandler(log *slog.Logger, service *application.Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/register", h.register)
	r.Post("/login", h.login)
	r.With(h.RequireUser).Get("/me", h.me)
	return r
}

type registerReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type userView struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type tokenResp struct {
	Token string   `json:"token"`
	User  userView `json:"user"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := rest.Decode(r, &req); err != nil {
		rest.Error(w, h.log, err)
		return
	}

	u, token, err := h.service.Register(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		rest.Error(w, h.log, err)
		return
	}
	rest.JSON(w, http.StatusOK, tokenResp{Token: token, User: userView{u.ID, u.Email, u.Name, u.CreatedAt}})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := rest.Decode(r, &req); err != nil {
		rest.Error(w, h.log, err)
		return
	}

	u, token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		rest.Error(w, h.log, err)
		return
	}
	rest.JSON(w, http.StatusOK, tokenResp{Token: token, User: userView{u.ID, u.Email, u.Name, u.CreatedAt}})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())
	u, err := h.service.Get(r.Context(), p.UserID)
	if err != nil {
		rest.Error(w, h.log, err)
		return
	}
	rest.JSON(w, http.StatusOK, userView{u.ID, u.Email, u.Name, u.CreatedAt})
}
