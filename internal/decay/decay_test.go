package decay

import (
	"math"
	"testing"
	"time"

	"github.com/jeiu/caffeine-backend/internal/domain"
)

func almostEqual(a, b, eps float64) bool { return math.Abs(a-b) <= eps }

func TestEstimate_EmptySetIsZero(t *testing.T) {
	if got := Estimate(nil, time.Now()); got != 0 {
		t.Fatalf("Estimate(nil) = %v; want 0", got)
	}
	if got := Estimate([]domain.IntakeEvent{}, time.Now()); got != 0 {
		t.Fatalf("Estimate(empty) = %v; want 0", got)
	}
}

func TestEstimate_HalfLife(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	events := []domain.IntakeEvent{
		{Milligrams: 100, ConsumedAt: now.Add(-5 * time.Hour)},
	}
	got := Estimate(events, now)
	if !almostEqual(got, 50, 1e-9) {
		t.Fatalf("after one half-life: got %v; want 50", got)
	}

	events[0].ConsumedAt = now.Add(-10 * time.Hour)
	if got := Estimate(events, now); !almostEqual(got, 25, 1e-9) {
		t.Fatalf("after two half-lives: got %v; want 25", got)
	}
}

func TestEstimate_FutureEventsContributeZero(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	events := []domain.IntakeEvent{
		{Milligrams: 200, ConsumedAt: now.Add(30 * time.Minute)},
		{Milligrams: 200, ConsumedAt: now}, // exactly now: still zero
	}
	if got := Estimate(events, now); got != 0 {
		t.Fatalf("future/now events: got %v; want 0", got)
	}
}

func TestEstimate_NonNegativeAndMonotonic(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	events := []domain.IntakeEvent{
		{Milligrams: 80, ConsumedAt: now.Add(-90 * time.Minute)},
		{Milligrams: 150, ConsumedAt: now.Add(-4 * time.Hour)},
		{Milligrams: 60, ConsumedAt: now.Add(-30 * time.Hour)},
	}
	prev := math.Inf(1)
	for i := 0; i < 48; i++ {
		at := now.Add(time.Duration(i) * time.Hour)
		got := Estimate(events, at)
		if got < 0 {
			t.Fatalf("estimate went negative at +%dh: %v", i, got)
		}
		if got > prev {
			t.Fatalf("estimate increased at +%dh without new intake: %v > %v", i, got, prev)
		}
		prev = got
	}
}

func TestEstimate_SumsContributions(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	events := []domain.IntakeEvent{
		{Milligrams: 100, ConsumedAt: now.Add(-5 * time.Hour)},  // 50
		{Milligrams: 100, ConsumedAt: now.Add(-10 * time.Hour)}, // 25
	}
	if got := Estimate(events, now); !almostEqual(got, 75, 1e-9) {
		t.Fatalf("got %v; want 75", got)
	}
}

func TestRemaining(t *testing.T) {
	if got := Remaining(120, 400); got != 280 {
		t.Fatalf("Remaining(120,400) = %v; want 280", got)
	}
	if got := Remaining(500, 400); got != 0 {
		t.Fatalf("Remaining(500,400) = %v; want 0", got)
	}
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		estimate float64
		limit    float64
		want     string
	}{
		{0, 400, StatusSafe},
		{199, 400, StatusSafe},
		{200, 400, StatusCaution}, // exactly 50%
		{299, 400, StatusCaution},
		{300, 400, StatusHigh}, // exactly 75%
		{900, 400, StatusHigh},
		{100, 0, StatusSafe}, // degenerate limit
	}
	for _, c := range cases {
		if got := StatusFor(c.estimate, c.limit); got != c.want {
			t.Fatalf("StatusFor(%v,%v) = %q; want %q", c.estimate, c.limit, got, c.want)
		}
	}
}
