package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/rtwlabs/roastery-backend/internal/apperr"
	"github.com/rtwlabs/roastery-backend/internal/identity/domain"
	"github.com/rtwlabs/roastery-backend/internal/rest"
)

type principalKey struct{}

func WithPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFrom(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(domain.Principal)
	return p, ok
}

// RequireUser rejects requests without a valid bearer token.
func (h *Handler) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, err := h.authenticate(r)
		if err != nil {
			rest.Error(w, h.log, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
	})
}

// OptionalUser attaches a principal when a valid token is present and lets
// anonymous requests through; guest flows decide ownership themselves.
func (h *Handler) OptionalUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p, err := h.authenticate(r); err == nil {
			r = r.WithContext(WithPrincipal(r.Context(), p))
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) authenticate(r *http.Request) (domain.Principal, error) {
	auth := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok || token == "" {
		return domain.Principal{}, apperr.ErrUnauthorized
	}
	u, err := h.service.Authenticate(r.Context(), token)
	if err != nil {
		return domain.Principal{}, err
	}
	return domain.UserPrincipal(u), nil
}
