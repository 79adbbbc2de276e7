package domain

import "time"

type Status string

const (
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCancelled Status = "cancelled"
)

type Frequency string

const (
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
)

type Subscription struct {
	ID           string
	UserID       string
	BlendID      string
	Frequency    Frequency
	Status       Status
	NextDelivery time.Time
	CreatedAt    time.Time
}

// DeliveryInterval maps a frequency to its delivery cadence. Unknown values
// fall back to monthly.
func DeliveryInterval(f Frequency) time.Duration {
	switch f {
	case FrequencyWeekly:
		return 7 * 24 * time.Hour
	case FrequencyBiweekly:
		return 14 * 24 * time.Hour
	default:
		return 30 * 24 * time.Hour
	}
}
