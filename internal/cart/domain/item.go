package domain

import "time"

type Item struct {
	ID        string
	UserID    string
	ProductID string
	BlendID   string
	Quantity  int
	CreatedAt time.Time
}
