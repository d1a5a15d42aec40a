package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/jeiu/caffeine-backend/internal/challenge"
	"github.com/jeiu/caffeine-backend/internal/domain"
	"github.com/jeiu/caffeine-backend/internal/repo"
)

var intakeSeq int

func newChallengeService(t *testing.T, ts time.Time) (*ChallengeService, *gorm.DB) {
	t.Helper()
	db := newSvcDB(t)
	if err := repo.SeedChallengeDefinitions(context.Background(), db); err != nil {
		t.Fatalf("seed definitions: %v", err)
	}
	s := &ChallengeService{
		DB:       db,
		Registry: challenge.NewRegistry(),
		now:      fixedClock(ts),
	}
	return s, db
}

func seedIntake(t *testing.T, db *gorm.DB, memberID string, mg float64, at time.Time) {
	t.Helper()
	intakeSeq++
	ev := domain.IntakeEvent{
		ID:         fmt.Sprintf("ev-%d", intakeSeq),
		MemberID:   memberID,
		BrandName:  "Test",
		DrinkName:  "Drink",
		Milligrams: mg,
		ConsumedAt: at,
		CreatedAt:  at,
	}
	if err := db.Create(&ev).Error; err != nil {
		t.Fatalf("seed intake: %v", err)
	}
}

func viewByCode(t *testing.T, views []ChallengeView, code string) ChallengeView {
	t.Helper()
	for _, v := range views {
		if v.Code == code {
			return v
		}
	}
	t.Fatalf("code %q missing from %+v", code, views)
	return ChallengeView{}
}

func TestChallengeList_NoIntake(t *testing.T) {
	ts := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	s, db := newChallengeService(t, ts)
	seedMember(t, db, "m1", "alice")

	views, err := s.List(context.Background(), "m1")
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(views) != 6 {
		t.Fatalf("expected 6 catalogue entries, got %d", len(views))
	}
	for _, v := range views {
		if v.Status != challenge.StatusNotStarted || v.Progress != 0 {
			t.Fatalf("fresh member should see not_started, got %+v", v)
		}
	}
	if viewByCode(t, views, challenge.CodeFirstAttendance).Points != domain.PointsDaily {
		t.Fatalf("daily challenge should pay %d point", domain.PointsDaily)
	}
	if viewByCode(t, views, challenge.CodeTenDayAttendance).Points != domain.PointsLongTerm {
		t.Fatalf("lifetime challenge should pay %d points", domain.PointsLongTerm)
	}
}

func TestChallengeList_AfterFirstDrink(t *testing.T) {
	ts := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	s, db := newChallengeService(t, ts)
	seedMember(t, db, "m1", "alice")
	seedIntake(t, db, "m1", 150, ts.Add(-2*time.Hour))

	views, err := s.List(context.Background(), "m1")
	if err != nil {
		t.Fatalf("List error: %v", err)
	}

	if v := viewByCode(t, views, challenge.CodeFirstAttendance); v.Status != challenge.StatusClaimable || v.Progress != 100 {
		t.Fatalf("first attendance should be claimable, got %+v", v)
	}
	// 150mg with no category is not decaf.
	if v := viewByCode(t, views, challenge.CodeDecafSwap); v.Status != challenge.StatusNotStarted {
		t.Fatalf("decaf swap should stay not_started, got %+v", v)
	}
	if v := viewByCode(t, views, challenge.CodeTenDayAttendance); v.Status != challenge.StatusInProgress || v.Progress != 10 {
		t.Fatalf("ten-day attendance should be 10%%, got %+v", v)
	}
	if v := viewByCode(t, views, challenge.CodeThreeDayAdherence); v.Status != challenge.StatusInProgress || v.Progress != 33 {
		t.Fatalf("three-day adherence should be 33%%, got %+v", v)
	}
	if v := viewByCode(t, views, challenge.CodeRolling24h); v.Status != challenge.StatusInProgress || v.Progress != 8 {
		t.Fatalf("rolling window should be 2h in (8%%), got %+v", v)
	}
}

func TestChallengeList_RollingWindowAgesOutOldDrink(t *testing.T) {
	ts := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	s, db := newChallengeService(t, ts)

	// 500mg landed on yesterday's calendar day but more than 24 hours ago,
	// so it is outside the rolling window and must not forfeit the attempt.
	// With 26 elapsed hours since the first drink the window is complete.
	seedMember(t, db, "m1", "alice")
	seedIntake(t, db, "m1", 500, ts.Add(-26*time.Hour))
	seedIntake(t, db, "m1", 50, ts.Add(-time.Hour))

	views, err := s.List(context.Background(), "m1")
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if v := viewByCode(t, views, challenge.CodeRolling24h); v.Status != challenge.StatusClaimable || v.Progress != 100 {
		t.Fatalf("drink older than 24h must not forfeit the window, got %+v", v)
	}

	// The same dose inside the window does forfeit (280mg allowed at limit 400).
	seedMember(t, db, "m2", "bob")
	seedIntake(t, db, "m2", 500, ts.Add(-23*time.Hour))
	seedIntake(t, db, "m2", 50, ts.Add(-time.Hour))

	views, err = s.List(context.Background(), "m2")
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if v := viewByCode(t, views, challenge.CodeRolling24h); v.Status != challenge.StatusNotStarted || v.Progress != 0 {
		t.Fatalf("in-window violation should forfeit, got %+v", v)
	}
}

func TestChallengeList_LockedAboveLimit(t *testing.T) {
	ts := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	s, db := newChallengeService(t, ts)
	seedMember(t, db, "m1", "alice")
	seedIntake(t, db, "m1", 150, ts.Add(-2*time.Hour))

	err := db.Model(&domain.CaffeineProfile{}).
		Where("member_id = ?", "m1").
		Update("daily_limit_mg", 601).Error
	if err != nil {
		t.Fatalf("raise limit: %v", err)
	}

	views, err := s.List(context.Background(), "m1")
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if v := viewByCode(t, views, challenge.CodeFirstAttendance); v.Status != challenge.StatusLocked || v.Progress != 100 {
		t.Fatalf("expected locked with progress kept, got %+v", v)
	}
}

func TestClaim_UnknownAndNotClaimable(t *testing.T) {
	ts := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	s, db := newChallengeService(t, ts)
	seedMember(t, db, "m1", "alice")

	if _, err := s.Claim(context.Background(), "m1", "no_such_code"); !errors.Is(err, ErrChallengeNotFound) {
		t.Fatalf("unknown code: got %v", err)
	}
	if _, err := s.Claim(context.Background(), "m1", challenge.CodeFirstAttendance); !errors.Is(err, ErrChallengeNotClaimable) {
		t.Fatalf("no intake yet: got %v", err)
	}
}

func TestClaim_DailyLifecycle(t *testing.T) {
	ts := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	s, db := newChallengeService(t, ts)
	seedMember(t, db, "m1", "alice")
	seedIntake(t, db, "m1", 150, ts.Add(-2*time.Hour))

	res, err := s.Claim(context.Background(), "m1", challenge.CodeFirstAttendance)
	if err != nil {
		t.Fatalf("Claim error: %v", err)
	}
	if res.PointsAwarded != domain.PointsDaily || res.Balance != domain.PointsDaily {
		t.Fatalf("unexpected claim result: %+v", res)
	}

	if _, err := s.Claim(context.Background(), "m1", challenge.CodeFirstAttendance); !errors.Is(err, ErrAlreadyClaimed) {
		t.Fatalf("repeat claim: got %v", err)
	}

	views, err := s.List(context.Background(), "m1")
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if v := viewByCode(t, views, challenge.CodeFirstAttendance); v.Status != challenge.StatusCompleted || v.Progress != 100 {
		t.Fatalf("claimed challenge should read completed, got %+v", v)
	}

	// A new calendar day resets the daily claim.
	tomorrow := ts.AddDate(0, 0, 1)
	s.now = fixedClock(tomorrow)
	seedIntake(t, db, "m1", 90, tomorrow.Add(-time.Hour))

	res2, err := s.Claim(context.Background(), "m1", challenge.CodeFirstAttendance)
	if err != nil {
		t.Fatalf("next-day claim error: %v", err)
	}
	if res2.Balance != 2*domain.PointsDaily {
		t.Fatalf("balance = %d; want %d", res2.Balance, 2*domain.PointsDaily)
	}
}

func TestClaim_LifetimeOnce(t *testing.T) {
	ts := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	s, db := newChallengeService(t, ts)
	seedMember(t, db, "m1", "alice")
	// Three consecutive days of moderate intake, today included.
	for offset := -2; offset <= 0; offset++ {
		seedIntake(t, db, "m1", 200, ts.AddDate(0, 0, offset).Add(-time.Hour))
	}

	res, err := s.Claim(context.Background(), "m1", challenge.CodeThreeDayAdherence)
	if err != nil {
		t.Fatalf("Claim error: %v", err)
	}
	if res.PointsAwarded != domain.PointsLongTerm {
		t.Fatalf("lifetime claim should pay %d, got %d", domain.PointsLongTerm, res.PointsAwarded)
	}
	if _, err := s.Claim(context.Background(), "m1", challenge.CodeThreeDayAdherence); !errors.Is(err, ErrAlreadyClaimed) {
		t.Fatalf("lifetime repeat: got %v", err)
	}
}

func TestClaim_ConcurrentSingleSuccess(t *testing.T) {
	ts := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	s, db := newChallengeService(t, ts)
	seedMember(t, db, "m1", "alice")
	seedIntake(t, db, "m1", 150, ts.Add(-time.Hour))

	// A single connection keeps SQLite from surfacing busy errors; the
	// claim transaction and the unique progress index still decide the
	// winner.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Claim(context.Background(), "m1", challenge.CodeFirstAttendance)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var wins, repeats int
	for err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrAlreadyClaimed):
			repeats++
		default:
			t.Fatalf("unexpected claim error: %v", err)
		}
	}
	if wins != 1 || repeats != 1 {
		t.Fatalf("wins=%d repeats=%d; want exactly one of each", wins, repeats)
	}

	m, err := repo.GetMember(context.Background(), db, "m1")
	if err != nil {
		t.Fatalf("get member: %v", err)
	}
	if m.Points != domain.PointsDaily {
		t.Fatalf("balance = %d; want a single %d-point credit", m.Points, domain.PointsDaily)
	}
}

func TestChallengeList_ClaimBeatsLock(t *testing.T) {
	ts := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	s, db := newChallengeService(t, ts)
	seedMember(t, db, "m1", "alice")
	seedIntake(t, db, "m1", 150, ts.Add(-time.Hour))

	if _, err := s.Claim(context.Background(), "m1", challenge.CodeFirstAttendance); err != nil {
		t.Fatalf("Claim: %v", err)
	}
	err := db.Model(&domain.CaffeineProfile{}).
		Where("member_id = ?", "m1").
		Update("daily_limit_mg", 700).Error
	if err != nil {
		t.Fatalf("raise limit: %v", err)
	}

	views, err := s.List(context.Background(), "m1")
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if v := viewByCode(t, views, challenge.CodeFirstAttendance); v.Status != challenge.StatusCompleted {
		t.Fatalf("claimed challenge must stay completed under lock, got %+v", v)
	}
}
