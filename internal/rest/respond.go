package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/rtwlabs/roastery-backend/internal/apperr"
)

var validate = validator.New()

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Decode unmarshals the request body into v and runs struct-tag validation.
func Decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &invalidError{detail: "malformed body"}
	}
	if err := validate.Struct(v); err != nil {
		return &invalidError{detail: err.Error()}
	}
	return nil
}

type invalidError struct{ detail string }

func (e *invalidError) Error() string { return "invalid request: " + e.detail }
func (e *invalidError) Unwrap() error { return apperr.ErrInvalid }

// Error maps the application error taxonomy onto HTTP statuses.
func Error(w http.ResponseWriter, log *slog.Logger, err error) {
	var gw *apperr.GatewayError
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		JSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, apperr.ErrInvalid):
		JSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, apperr.ErrUnauthorized):
		JSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
	case errors.As(err, &gw):
		log.Error("gateway call failed", "op", gw.Op, "err", gw.Err)
		JSON(w, http.StatusBadGateway, map[string]string{"error": "payment gateway unavailable"})
	default:
		log.Error("request failed", "err", err)
		JSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
