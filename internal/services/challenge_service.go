// Package services – ChallengeService
//
// This file implements the ChallengeService, which derives live challenge
// statuses from the intake log and handles claims. Listing is read-only:
// statuses are computed on demand from a snapshot of the member's history,
// never stored. Claiming is transactional; the unique progress index is the
// serialization point that guarantees a single success per period under
// concurrent claims.
package services

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/jeiu/caffeine-backend/internal/challenge"
	"github.com/jeiu/caffeine-backend/internal/domain"
	"github.com/jeiu/caffeine-backend/internal/repo"
)

// lifetimePeriod is the progress-date marker for STREAK and CUMULATIVE
// claims, which are claimable once ever. Using a fixed value keeps the
// unique index on (member, code, date) to a single lifetime row.
const lifetimePeriod = "0001-01-01"

// ChallengeView is one catalogue entry with its derived state for a member.
type ChallengeView struct {
	Code        string `json:"code"`
	Title       string `json:"title"`
	Description string `json:"description"`
	TargetType  string `json:"target_type"`
	TargetValue int    `json:"target_value"`
	Status      string `json:"status"`
	Progress    int    `json:"progress"`
	Points      int    `json:"points"`
}

// ClaimResult reports a successful claim.
type ClaimResult struct {
	Code          string `json:"code"`
	PointsAwarded int    `json:"points_awarded"`
	Balance       int    `json:"balance"`
}

// ChallengeService implements challenge listing and claiming.
type ChallengeService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Registry maps challenge codes to evaluation rules.
	Registry *challenge.Registry
	// Loc fixes the calendar used for day bucketing. Nil means UTC.
	Loc *time.Location
	// now is a test seam; defaults to time.Now.
	now func() time.Time
}

func (s *ChallengeService) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

func (s *ChallengeService) loc() *time.Location {
	if s.Loc != nil {
		return s.Loc
	}
	return time.UTC
}

// dayStart returns midnight of the calendar day containing t.
func (s *ChallengeService) dayStart(t time.Time) time.Time {
	t = t.In(s.loc())
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, s.loc())
}

// dayKey formats the calendar day of t as the progress-date string.
func (s *ChallengeService) dayKey(t time.Time) string {
	return t.In(s.loc()).Format("2006-01-02")
}

// List returns the whole catalogue with derived status and progress for
// memberID. Claimed challenges read completed; a daily limit above the lock
// threshold turns every non-completed entry locked.
func (s *ChallengeService) List(ctx context.Context, memberID string) ([]ChallengeView, error) {
	ctx, span := otel.Tracer("services.challenge").Start(ctx, "ChallengeService.List")
	defer span.End()
	span.SetAttributes(attribute.String("member.id", memberID))

	defs, err := repo.ListChallengeDefinitions(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	snap, err := s.buildSnapshot(ctx, memberID)
	if err != nil {
		return nil, err
	}
	claimed, err := s.claimedSet(ctx, memberID)
	if err != nil {
		return nil, err
	}

	out := make([]ChallengeView, 0, len(defs))
	for _, def := range defs {
		res := s.Registry.Evaluate(def.Code, *snap)
		res = challenge.Finalize(res, claimed[claimKey(def, s.dayKey(snap.Now))], snap.DailyLimitMg)
		out = append(out, ChallengeView{
			Code:        def.Code,
			Title:       def.Title,
			Description: def.Description,
			TargetType:  def.TargetType,
			TargetValue: def.TargetValue,
			Status:      res.Status,
			Progress:    res.Progress,
			Points:      pointsFor(def.TargetType),
		})
	}
	return out, nil
}

// Claim records a claim for code on behalf of memberID and credits points.
//
// Semantics:
//   - Unknown codes yield ErrChallengeNotFound; nothing is mutated.
//   - The challenge must currently evaluate claimable (after the lock
//     override); otherwise ErrChallengeNotClaimable.
//   - DAILY challenges are claimable once per calendar day, STREAK and
//     CUMULATIVE once ever; a repeat yields ErrAlreadyClaimed.
//   - The progress insert and the points credit run in one transaction, so
//     concurrent claims for the same period produce exactly one success.
func (s *ChallengeService) Claim(ctx context.Context, memberID, code string) (*ClaimResult, error) {
	ctx, span := otel.Tracer("services.challenge").Start(ctx, "ChallengeService.Claim")
	defer span.End()
	span.SetAttributes(attribute.String("member.id", memberID), attribute.String("challenge.code", code))

	def, err := repo.GetChallengeDefinition(ctx, s.DB, code)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrChallengeNotFound
		}
		return nil, err
	}

	snap, err := s.buildSnapshot(ctx, memberID)
	if err != nil {
		return nil, err
	}
	res := challenge.Finalize(s.Registry.Evaluate(def.Code, *snap), false, snap.DailyLimitMg)
	if res.Status != challenge.StatusClaimable {
		return nil, ErrChallengeNotClaimable
	}

	period := lifetimePeriod
	if def.TargetType == domain.TargetDaily {
		period = s.dayKey(snap.Now)
	}
	points := pointsFor(def.TargetType)

	var balance int
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Pre-check gives the common repeat a clean error without burning
		// a constraint violation.
		if _, err := repo.GetChallengeProgress(ctx, tx, memberID, def.Code, period); err == nil {
			return ErrAlreadyClaimed
		} else if !isNotFound(err) {
			return err
		}
		if _, err := repo.CreateChallengeProgress(ctx, tx, memberID, def.Code, period, s.clock().UTC()); err != nil {
			if errors.Is(err, repo.ErrDuplicate) || isDuplicate(err) {
				return ErrAlreadyClaimed
			}
			return err
		}
		if err := repo.AddPoints(ctx, tx, memberID, points); err != nil {
			if isNotFound(err) {
				return ErrMemberNotFound
			}
			return err
		}
		m, err := repo.GetMember(ctx, tx, memberID)
		if err != nil {
			return err
		}
		balance = m.Points
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ClaimResult{Code: def.Code, PointsAwarded: points, Balance: balance}, nil
}

// buildSnapshot assembles everything the rules inspect: today's drinks with
// their catalogue categories, the first-intake instant, and the day-bucketed
// totals the streak and cumulative rules consume.
func (s *ChallengeService) buildSnapshot(ctx context.Context, memberID string) (*challenge.Snapshot, error) {
	now := s.clock()
	today := s.dayStart(now)

	p, err := repo.GetProfileByMember(ctx, s.DB, memberID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	events, err := repo.ListIntakeBetween(ctx, s.DB, memberID, today, today.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	drinks, err := s.resolveDrinks(ctx, events)
	if err != nil {
		return nil, err
	}

	first, err := repo.FirstIntakeAt(ctx, s.DB, memberID)
	if err != nil {
		return nil, err
	}

	// Day totals, oldest first: day-2, day-1, today.
	var last3 []float64
	for offset := -2; offset <= 0; offset++ {
		start := today.AddDate(0, 0, offset)
		total, err := repo.SumIntakeBetween(ctx, s.DB, memberID, start, start.AddDate(0, 0, 1))
		if err != nil {
			return nil, err
		}
		last3 = append(last3, total)
	}
	// Bucket only the trailing 24 hours for the rolling rule. The window
	// touches at most yesterday and today; yesterday's bucket starts at the
	// window edge, not midnight, so an old heavy drink can age out.
	windowStart := now.Add(-24 * time.Hour)
	yesterdayRecent, err := repo.SumIntakeBetween(ctx, s.DB, memberID, windowStart, today)
	if err != nil {
		return nil, err
	}
	recent := []float64{yesterdayRecent, last3[2]}

	times, err := repo.ListConsumedTimes(ctx, s.DB, memberID)
	if err != nil {
		return nil, err
	}
	days := map[string]struct{}{}
	for _, t := range times {
		days[s.dayKey(t)] = struct{}{}
	}

	return &challenge.Snapshot{
		Now:             now,
		DailyLimitMg:    p.DailyLimitMg,
		TodayDrinks:     drinks,
		FirstIntakeAt:   first,
		RecentDayTotals: recent,
		Last3DayTotals:  last3,
		DaysWithIntake:  len(days),
	}, nil
}

// resolveDrinks attaches catalogue categories to today's events. Manual
// entries keep an empty category so the decaf rule can apply its milligram
// heuristic.
func (s *ChallengeService) resolveDrinks(ctx context.Context, events []domain.IntakeEvent) ([]challenge.Drink, error) {
	var menuIDs []string
	for _, ev := range events {
		if ev.MenuID != nil {
			menuIDs = append(menuIDs, *ev.MenuID)
		}
	}
	menus, err := repo.GetMenusByIDs(ctx, s.DB, menuIDs)
	if err != nil {
		return nil, err
	}
	drinks := make([]challenge.Drink, 0, len(events))
	for _, ev := range events {
		d := challenge.Drink{Milligrams: ev.Milligrams}
		if ev.MenuID != nil {
			if m, ok := menus[*ev.MenuID]; ok {
				d.Category = m.Category
			}
		}
		drinks = append(drinks, d)
	}
	return drinks, nil
}

// claimedSet returns the current-period claim markers for a member.
func (s *ChallengeService) claimedSet(ctx context.Context, memberID string) (map[string]bool, error) {
	rows, err := repo.ListChallengeProgress(ctx, s.DB, memberID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(rows))
	for _, r := range rows {
		out[r.ChallengeCode+"@"+r.ProgressDate] = true
	}
	return out, nil
}

// claimKey identifies the claim row that marks def completed for the
// current period.
func claimKey(def domain.ChallengeDefinition, today string) string {
	if def.TargetType == domain.TargetDaily {
		return def.Code + "@" + today
	}
	return def.Code + "@" + lifetimePeriod
}

// pointsFor returns the credit for claiming a challenge of the given target
// type.
func pointsFor(targetType string) int {
	if targetType == domain.TargetDaily {
		return domain.PointsDaily
	}
	return domain.PointsLongTerm
}
