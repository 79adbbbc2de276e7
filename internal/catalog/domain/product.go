package domain

import "time"

type Product struct {
	ID          string
	Name        string
	Description string
	Origin      string
	PriceCents  int64
	ImageURL    string
	Available   bool
	CreatedAt   time.Time
}
