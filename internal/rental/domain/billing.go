package rental

import (
	"time"

	"venue-pos/internal/money"
)

// DurationMinutes rounds the elapsed time to whole minutes, half up.
// Negative spans clamp to zero.
func DurationMinutes(start, end time.Time) int {
	elapsed := end.Sub(start)
	if elapsed <= 0 {
		return 0
	}
	return int((elapsed + 30*time.Second) / time.Minute)
}

// Charge computes the duration-based fee: (minutes/60) × hourly rate,
// rounded to the cent in integer arithmetic.
func Charge(hourlyRate money.Money, minutes int) money.Money {
	if minutes <= 0 || hourlyRate <= 0 {
		return 0
	}
	return money.ScaleRoundHalfUp(hourlyRate, int64(minutes), 60)
}
