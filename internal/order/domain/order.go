package domain

import "time"

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

// transitions is the allowed fulfillment graph. delivered and cancelled are
// terminal.
var transitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Item is a line item with a price snapshot taken at order time.
type Item struct {
	ProductID      string `json:"product_id,omitempty"`
	BlendID        string `json:"custom_blend_id,omitempty"`
	Name           string `json:"name"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

type Address struct {
	Name       string `json:"name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	Region     string `json:"region"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type Order struct {
	ID              string
	UserID          string
	GuestEmail      string
	Items           []Item
	TotalCents      int64
	ShippingAddress Address
	Status          Status
	PaymentStatus   PaymentStatus
	SessionID       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func NewOrder(id, owner, guestEmail string, items []Item, addr Address) Order {
	var total int64
	for _, item := range items {
		total += int64(item.Quantity) * item.UnitPriceCents
	}
	now := time.Now().UTC()
	return Order{
		ID:              id,
		UserID:          owner,
		GuestEmail:      guestEmail,
		Items:           items,
		TotalCents:      total,
		ShippingAddress: addr,
		Status:          StatusPending,
		PaymentStatus:   PaymentPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}
