package challenge

import "math"

// Codes of the built-in catalogue.
const (
	CodeDecafSwap         = "decaf_substitute"
	CodeHalfReduction     = "caffeine_half_cut"
	CodeRolling24h        = "rolling_24h_limit"
	CodeThreeDayAdherence = "three_day_adherence"
	CodeFirstAttendance   = "first_attendance"
	CodeTenDayAttendance  = "ten_day_attendance"
)

// Rule evaluates one challenge code against a snapshot.
type Rule interface {
	// Code is the catalogue code this rule serves.
	Code() string
	// Evaluate derives status and progress. It must not mutate the snapshot.
	Evaluate(s Snapshot) Result
}

// decafSwapRule: claimable the moment today contains at least one decaf
// drink. Catalogue drinks qualify via their category; manual entries qualify
// by dose, but only when no category is present (a categorized non-decaf
// drink under the cutoff is still not decaf).
type decafSwapRule struct{}

func (decafSwapRule) Code() string { return CodeDecafSwap }

func (decafSwapRule) Evaluate(s Snapshot) Result {
	for _, d := range s.TodayDrinks {
		if d.Category == "decaf" || (d.Category == "" && d.Milligrams < DecafMaxMg) {
			return Result{Status: StatusClaimable, Progress: 100}
		}
	}
	return Result{Status: StatusNotStarted, Progress: 0}
}

// halfReductionRule: cut today's intake to half of a personal baseline. No
// baseline is recorded yet, so the rule reports not started until a baseline
// source exists.
//
// TODO: derive the baseline from the trailing 7-day average once intake
// history retention is long enough to make it meaningful.
type halfReductionRule struct{}

func (halfReductionRule) Code() string { return CodeHalfReduction }

func (halfReductionRule) Evaluate(Snapshot) Result {
	return Result{Status: StatusNotStarted, Progress: 0}
}

// rolling24hRule: keep every calendar day touching the trailing 24 hours at
// or below RollingShare of the daily limit. Progress tracks elapsed time
// since the member's first intake, capped at the 24-hour window; any
// violating day bucket forfeits the attempt back to not started.
type rolling24hRule struct{}

func (rolling24hRule) Code() string { return CodeRolling24h }

func (rolling24hRule) Evaluate(s Snapshot) Result {
	if s.FirstIntakeAt == nil {
		return Result{Status: StatusNotStarted, Progress: 0}
	}
	allowed := RollingShare * s.DailyLimitMg
	for _, total := range s.RecentDayTotals {
		if total > allowed {
			return Result{Status: StatusNotStarted, Progress: 0}
		}
	}
	elapsed := s.Now.Sub(*s.FirstIntakeAt).Hours()
	if elapsed < 0 {
		elapsed = 0
	}
	// Claimable only after the full 24 hours have passed; rounding may show
	// 100% a little early, but the clock is the gate.
	if elapsed >= 24 {
		return Result{Status: StatusClaimable, Progress: 100}
	}
	progress := int(math.Round(elapsed / 24 * 100))
	return Result{Status: StatusInProgress, Progress: progress}
}

// threeDayAdherenceRule: accumulate three days where the member drank some
// caffeine but stayed within the daily limit. Zero-intake days do not count;
// adherence means moderation, not abstinence.
type threeDayAdherenceRule struct{}

func (threeDayAdherenceRule) Code() string { return CodeThreeDayAdherence }

func (threeDayAdherenceRule) Evaluate(s Snapshot) Result {
	success := 0
	for _, total := range s.Last3DayTotals {
		if total > 0 && total <= s.DailyLimitMg {
			success++
		}
	}
	progress := int(math.Round(float64(success) / 3 * 100))
	switch {
	case success >= 3:
		return Result{Status: StatusClaimable, Progress: 100}
	case success > 0:
		return Result{Status: StatusInProgress, Progress: progress}
	default:
		return Result{Status: StatusNotStarted, Progress: 0}
	}
}

// firstAttendanceRule: claimable as soon as today has any intake event.
type firstAttendanceRule struct{}

func (firstAttendanceRule) Code() string { return CodeFirstAttendance }

func (firstAttendanceRule) Evaluate(s Snapshot) Result {
	if len(s.TodayDrinks) > 0 {
		return Result{Status: StatusClaimable, Progress: 100}
	}
	return Result{Status: StatusNotStarted, Progress: 0}
}

// attendanceRule: log intake on target distinct days, lifetime. The target
// comes from the catalogue definition (default 10).
type attendanceRule struct {
	code   string
	target int
}

func (r attendanceRule) Code() string { return r.code }

func (r attendanceRule) Evaluate(s Snapshot) Result {
	target := r.target
	if target <= 0 {
		target = 10
	}
	ratio := float64(s.DaysWithIntake) / float64(target)
	if ratio > 1 {
		ratio = 1
	}
	progress := int(math.Round(ratio * 100))
	switch {
	case s.DaysWithIntake >= target:
		return Result{Status: StatusClaimable, Progress: 100}
	case s.DaysWithIntake > 0:
		return Result{Status: StatusInProgress, Progress: progress}
	default:
		return Result{Status: StatusNotStarted, Progress: 0}
	}
}
