package domain

type OrderCreated struct {
	OrderID    string `json:"order_id"`
	Owner      string `json:"owner"`
	TotalCents int64  `json:"total_cents"`
	Items      []Item `json:"items"`
}

type OrderStatusChanged struct {
	OrderID string `json:"order_id"`
	From    Status `json:"from"`
	To      Status `json:"to"`
}
