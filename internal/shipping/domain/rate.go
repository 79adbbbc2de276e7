package domain

import "time"

type Rate struct {
	ID          string
	Region      string
	RateCents   int64
	Description string
	CreatedAt   time.Time
}
