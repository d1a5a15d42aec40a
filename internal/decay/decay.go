// Package decay estimates the caffeine still active in a member's body from
// their logged intake events, using first-order elimination with a fixed
// half-life. The estimator is pure: callers pass the events and the clock
// reading, which keeps it trivial to test and to recompute on demand.
package decay

import (
	"math"
	"time"

	"github.com/jeiu/caffeine-backend/internal/domain"
)

// HalfLifeHours is the elimination half-life used for every member.
// Individual variation (CYP1A2 genetics, pregnancy, medication) is real but
// out of scope; 5 hours is the accepted population average.
const HalfLifeHours = 5.0

// Status labels for the current estimate relative to the daily limit.
const (
	StatusSafe    = "safe"
	StatusCaution = "caution"
	StatusHigh    = "high"
)

// Estimate returns the milligrams of caffeine still active at now, summing
// the decayed contribution of each event:
//
//	mg * 0.5^(elapsedHours / HalfLifeHours)
//
// Events with a consumption time at or after now contribute zero, so
// future-dated rows can never inflate the estimate. An empty slice yields 0.
// The result is not clamped against any limit.
func Estimate(events []domain.IntakeEvent, now time.Time) float64 {
	var total float64
	for _, ev := range events {
		total += Contribution(ev.Milligrams, ev.ConsumedAt, now)
	}
	return total
}

// Contribution returns the decayed milligrams of a single dose consumed at
// consumedAt, observed at now.
func Contribution(mg float64, consumedAt, now time.Time) float64 {
	h := now.Sub(consumedAt).Hours()
	if h <= 0 {
		return 0
	}
	return mg * math.Pow(0.5, h/HalfLifeHours)
}

// Remaining returns how many milligrams the member may still consume today
// before reaching limit. It never goes negative.
func Remaining(estimate, limit float64) float64 {
	if r := limit - estimate; r > 0 {
		return r
	}
	return 0
}

// StatusFor buckets the estimate against the daily limit: "high" at 75% or
// more, "caution" at 50% or more, "safe" below that. A non-positive limit is
// treated as always safe.
func StatusFor(estimate, limit float64) string {
	if limit <= 0 {
		return StatusSafe
	}
	switch ratio := estimate / limit; {
	case ratio >= 0.75:
		return StatusHigh
	case ratio >= 0.50:
		return StatusCaution
	default:
		return StatusSafe
	}
}
