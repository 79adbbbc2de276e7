package idempotency

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store tracks request keys in Redis with a TTL. SetNX makes the check
// race-free across replicas.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

func (s *Store) Key(method, path, requestKey string) string {
	return fmt.Sprintf("idem:http:%s:%s:%s", method, path, requestKey)
}

// Seen records the key and reports whether it had been recorded before.
func (s *Store) Seen(ctx context.Context, key string) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, key, "1", s.ttl).Result()
	if err != nil {
		return false, err
	}
	return !ok, nil
}

// Middleware rejects replays of requests carrying an Idempotency-Key header.
// Requests without the header pass through untouched. A Redis outage degrades
// to allowing the request rather than failing checkout.
func Middleware(log *slog.Logger, store *Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqKey := r.Header.Get("Idempotency-Key")
			if reqKey == "" {
				next.ServeHTTP(w, r)
				return
			}

			key := store.Key(r.Method, r.URL.Path, reqKey)
			seen, err := store.Seen(r.Context(), key)
			if err != nil {
				log.Error("idempotency check failed", "key", key, "err", err)
				next.ServeHTTP(w, r)
				return
			}
			if seen {
				log.Info("duplicate request rejected", "key", key)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusConflict)
				_, _ = w.Write([]byte(`{"error":"duplicate request"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
