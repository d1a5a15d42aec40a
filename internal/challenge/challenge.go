// Package challenge evaluates the fixed challenge catalogue against a
// member's intake history. Evaluation is pure: the service layer assembles a
// Snapshot from the database and every rule derives its status and progress
// from that snapshot alone, which keeps the rules deterministic and
// independently testable.
package challenge

import "time"

// Challenge statuses as exposed to clients.
const (
	StatusNotStarted = "not_started"
	StatusInProgress = "in_progress"
	StatusClaimable  = "claimable"
	StatusCompleted  = "completed"
	StatusLocked     = "locked"
)

// LockLimitMg is the daily limit above which the whole challenge feature
// locks. A member who raises their limit past 600mg has opted out of the
// moderation game; every non-completed challenge shows as locked until the
// limit drops back.
const LockLimitMg = 600.0

// RollingShare is the fraction of the daily limit that the rolling-24h
// challenge allows per calendar day.
const RollingShare = 0.7

// DecafMaxMg is the heuristic cutoff for treating an uncatalogued drink as
// decaffeinated.
const DecafMaxMg = 20.0

// Drink is one of today's intake events reduced to what the rules need: the
// dose and the catalogue category of the menu it came from (empty for manual
// entries).
type Drink struct {
	Milligrams float64
	Category   string
}

// Snapshot is everything the rules may look at, assembled once per
// evaluation. Day totals are bucketed by the member's calendar day.
type Snapshot struct {
	// Now is the evaluation instant.
	Now time.Time
	// DailyLimitMg is the member's configured daily limit.
	DailyLimitMg float64
	// TodayDrinks are today's intake events.
	TodayDrinks []Drink
	// FirstIntakeAt is the member's earliest intake ever; nil when the
	// member has never logged a drink.
	FirstIntakeAt *time.Time
	// RecentDayTotals are per-calendar-day milligram totals restricted to
	// the trailing 24 hours (yesterday's bucket starts at now-24h, today's
	// at midnight). Events older than 24 hours never appear here.
	RecentDayTotals []float64
	// Last3DayTotals are the totals of the last three calendar days,
	// oldest first, today last.
	Last3DayTotals []float64
	// DaysWithIntake is the count of distinct lifetime days with at least
	// one intake event.
	DaysWithIntake int
}

// Result is a rule's verdict before claim/lock post-processing.
type Result struct {
	Status   string `json:"status"`
	Progress int    `json:"progress"`
}

// Finalize applies the two overrides that sit outside individual rules: a
// claimed challenge always reads completed at full progress, and a daily
// limit above LockLimitMg locks everything that is not already completed.
func Finalize(r Result, claimed bool, dailyLimitMg float64) Result {
	if claimed {
		return Result{Status: StatusCompleted, Progress: 100}
	}
	if dailyLimitMg > LockLimitMg {
		return Result{Status: StatusLocked, Progress: r.Progress}
	}
	return r
}
