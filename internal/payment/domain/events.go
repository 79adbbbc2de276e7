package domain

// PaymentSettled is emitted exactly once per session, in the same transaction
// as the paid write.
type PaymentSettled struct {
	OrderID     string `json:"order_id"`
	SessionID   string `json:"session_id"`
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
}
