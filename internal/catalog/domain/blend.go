package domain

import "time"

// PricePerGramCents is the flat rate a custom blend is priced at.
const PricePerGramCents int64 = 5

// Blend is a user-defined coffee blend. Components map origin name to its
// share of the mix.
type Blend struct {
	ID            string
	UserID        string
	Name          string
	Origin        string
	RoastLevel    string
	GrindSize     string
	Components    map[string]int
	QuantityGrams int
	PriceCents    int64
	CreatedAt     time.Time
}

// BlendPrice computes the price of a blend from its weight.
func BlendPrice(quantityGrams int) int64 {
	return int64(quantityGrams) * PricePerGramCents
}
