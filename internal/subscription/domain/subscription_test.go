package domain

import (
	"testing"
	"time"
)

func TestDeliveryInterval(t *testing.T) {
	cases := []struct {
		frequency Frequency
		want      time.Duration
	}{
		{FrequencyWeekly, 7 * 24 * time.Hour},
		{FrequencyBiweekly, 14 * 24 * time.Hour},
		{FrequencyMonthly, 30 * 24 * time.Hour},
		{Frequency("quarterly"), 30 * 24 * time.Hour},
	}
	for _, tc := range cases {
		if got := DeliveryInterval(tc.frequency); got != tc.want {
			t.Errorf("DeliveryInterval(%q) = %v, want %v", tc.frequency, got, tc.want)
		}
	}
}
