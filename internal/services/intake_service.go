// Package services – IntakeService
//
// This file implements the IntakeService, which manages the intake event log
// and the cached daily total on the caffeine profile. Every mutation keeps
// the cache in step (insert bumps it, delete decrements with a floor at
// zero), and every read of the profile reconciles the cache from the event
// log when the row last changed on a previous calendar day. The service also
// exposes the decayed "active caffeine" estimate for the level endpoint.
package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/jeiu/caffeine-backend/internal/decay"
	"github.com/jeiu/caffeine-backend/internal/domain"
	"github.com/jeiu/caffeine-backend/internal/repo"
)

// IntakeInput describes a drink to log. ConsumedAt defaults to now when
// zero. MenuID is optional; when present the milligrams may be resolved from
// the catalogue entry instead of the submitted value.
type IntakeInput struct {
	BrandName  string
	DrinkName  string
	Milligrams float64
	Temp       string
	MenuID     *string
	ConsumedAt time.Time
}

// Level is the decayed caffeine estimate exposed over REST.
type Level struct {
	EstimateMg   float64 `json:"estimate_mg"`
	DailyLimitMg float64 `json:"daily_limit_mg"`
	RemainingMg  float64 `json:"remaining_mg"`
	Status       string  `json:"status"`
}

// Kicker is the scheduled-refresh handle the service pokes after mutations
// so reconciliation never waits for the next tick.
type Kicker interface {
	Kick()
}

// IntakeService implements the intake log use-cases.
type IntakeService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Loc fixes the calendar used for day bucketing. Nil means UTC.
	Loc *time.Location
	// Refresher, when set, is kicked after mutations.
	Refresher Kicker
	// now is a test seam; defaults to time.Now.
	now func() time.Time
}

func (s *IntakeService) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

func (s *IntakeService) loc() *time.Location {
	if s.Loc != nil {
		return s.Loc
	}
	return time.UTC
}

// dayBounds returns the half-open [midnight, next midnight) window of the
// calendar day containing t.
func (s *IntakeService) dayBounds(t time.Time) (time.Time, time.Time) {
	t = t.In(s.loc())
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, s.loc())
	return start, start.AddDate(0, 0, 1)
}

func (s *IntakeService) kick() {
	if s.Refresher != nil {
		s.Refresher.Kick()
	}
}

// Log records a drink for memberID. When the event lands on today's
// calendar day the cached total is bumped in the same transaction.
func (s *IntakeService) Log(ctx context.Context, memberID string, in IntakeInput) (*domain.IntakeEvent, error) {
	if in.Milligrams < 0 || in.DrinkName == "" {
		return nil, ErrInvalidIntake
	}
	if in.ConsumedAt.IsZero() {
		in.ConsumedAt = s.clock().UTC()
	}
	// Trust the catalogue over the client for known menus.
	if in.MenuID != nil {
		if menu, err := repo.GetMenu(ctx, s.DB, *in.MenuID); err == nil {
			in.Milligrams = menu.CaffeineMg
			if in.BrandName == "" {
				if b, err := repo.GetBrand(ctx, s.DB, menu.BrandID); err == nil {
					in.BrandName = b.Name
				}
			}
		} else if !isNotFound(err) {
			return nil, err
		}
	}

	var ev *domain.IntakeEvent
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		created, err := repo.CreateIntake(ctx, tx, memberID, repo.NewIntake{
			BrandName:  in.BrandName,
			DrinkName:  in.DrinkName,
			Milligrams: in.Milligrams,
			Temp:       in.Temp,
			MenuID:     in.MenuID,
			ConsumedAt: in.ConsumedAt,
		})
		if err != nil {
			return err
		}
		start, end := s.dayBounds(s.clock())
		if !created.ConsumedAt.Before(start) && created.ConsumedAt.Before(end) {
			if err := repo.AdjustCurrentMg(ctx, tx, memberID, created.Milligrams); err != nil && !isNotFound(err) {
				return err
			}
		}
		ev = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.kick()
	return ev, nil
}

// Today returns today's events in consumption order.
func (s *IntakeService) Today(ctx context.Context, memberID string) ([]domain.IntakeEvent, error) {
	start, end := s.dayBounds(s.clock())
	return repo.ListIntakeBetween(ctx, s.DB, memberID, start, end)
}

// History returns the events in [start, end).
func (s *IntakeService) History(ctx context.Context, memberID string, start, end time.Time) ([]domain.IntakeEvent, error) {
	return repo.ListIntakeBetween(ctx, s.DB, memberID, start, end)
}

// Delete removes one event. When the event was on today's calendar day the
// cached total is decremented (floored at zero) in the same transaction.
// Returns ErrIntakeNotFound for missing or foreign events.
func (s *IntakeService) Delete(ctx context.Context, memberID, eventID string) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		removed, err := repo.DeleteIntake(ctx, tx, eventID, memberID)
		if err != nil {
			if isNotFound(err) {
				return ErrIntakeNotFound
			}
			return err
		}
		start, end := s.dayBounds(s.clock())
		if !removed.ConsumedAt.Before(start) && removed.ConsumedAt.Before(end) {
			if err := repo.AdjustCurrentMg(ctx, tx, memberID, -removed.Milligrams); err != nil && !isNotFound(err) {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.kick()
	return nil
}

// ResetToday deletes all of today's events and zeroes the cached total.
func (s *IntakeService) ResetToday(ctx context.Context, memberID string) (int64, error) {
	var n int64
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		start, end := s.dayBounds(s.clock())
		removed, err := repo.DeleteIntakeBetween(ctx, tx, memberID, start, end)
		if err != nil {
			return err
		}
		if err := repo.SetCurrentMg(ctx, tx, memberID, 0); err != nil && !isNotFound(err) {
			return err
		}
		n = removed
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.kick()
	return n, nil
}

// Info returns the caffeine profile, reconciling the cached total when the
// row was last touched on a previous calendar day (the midnight rollover).
func (s *IntakeService) Info(ctx context.Context, memberID string) (*domain.CaffeineProfile, error) {
	p, err := repo.GetProfileByMember(ctx, s.DB, memberID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	start, end := s.dayBounds(s.clock())
	if p.UpdatedAt.In(s.loc()).Before(start) {
		// Stale cache: recompute today's total from the event log.
		total, err := repo.SumIntakeBetween(ctx, s.DB, memberID, start, end)
		if err != nil {
			return nil, err
		}
		if err := repo.SetCurrentMg(ctx, s.DB, memberID, total); err != nil {
			return nil, err
		}
		p.CurrentMg = total
		p.UpdatedAt = s.clock().UTC()
	}
	return p, nil
}

// UpdateInfo changes the weight and/or daily limit on the profile.
func (s *IntakeService) UpdateInfo(ctx context.Context, memberID string, weightKg, dailyLimitMg *float64) (*domain.CaffeineProfile, error) {
	updates := map[string]any{}
	if weightKg != nil && *weightKg > 0 {
		updates["weight_kg"] = *weightKg
	}
	if dailyLimitMg != nil && *dailyLimitMg > 0 {
		updates["daily_limit_mg"] = *dailyLimitMg
	}
	if len(updates) > 0 {
		if err := repo.UpdateProfile(ctx, s.DB, memberID, updates); err != nil {
			if isNotFound(err) {
				return nil, ErrProfileNotFound
			}
			return nil, err
		}
	}
	return s.Info(ctx, memberID)
}

// Level computes the decayed active-caffeine estimate over today's events
// plus the remaining headroom and status against the daily limit.
func (s *IntakeService) Level(ctx context.Context, memberID string) (*Level, error) {
	p, err := s.Info(ctx, memberID)
	if err != nil {
		return nil, err
	}
	events, err := s.Today(ctx, memberID)
	if err != nil {
		return nil, err
	}
	now := s.clock()
	est := decay.Estimate(events, now)
	return &Level{
		EstimateMg:   est,
		DailyLimitMg: p.DailyLimitMg,
		RemainingMg:  decay.Remaining(est, p.DailyLimitMg),
		Status:       decay.StatusFor(est, p.DailyLimitMg),
	}, nil
}

// ReconcileStale recomputes the cached total for profiles that have not been
// touched today. The decay.Refresher runs this periodically so caches that
// crossed midnight without a read do not stay wrong until someone looks.
func (s *IntakeService) ReconcileStale(ctx context.Context, batch int) error {
	if batch <= 0 {
		batch = 100
	}
	start, end := s.dayBounds(s.clock())
	stale, err := repo.ListStaleProfiles(ctx, s.DB, start, batch)
	if err != nil {
		return err
	}
	for _, p := range stale {
		total, err := repo.SumIntakeBetween(ctx, s.DB, p.MemberID, start, end)
		if err != nil {
			return err
		}
		if err := repo.SetCurrentMg(ctx, s.DB, p.MemberID, total); err != nil && !isNotFound(err) {
			return err
		}
	}
	return nil
}
