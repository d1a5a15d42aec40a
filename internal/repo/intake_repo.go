// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// IntakeEvent model. Time-range queries are half-open [start, end) so
// consecutive windows never overlap; calendar-day bucketing happens in the
// service layer to stay independent of SQLite date() semantics.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jeiu/caffeine-backend/internal/domain"
)

// NewIntake describes an event to insert.
type NewIntake struct {
	BrandName  string
	DrinkName  string
	Milligrams float64
	Temp       string
	MenuID     *string
	ConsumedAt time.Time
}

// CreateIntake inserts an intake event for memberID. The event ID is a
// randomly generated UUID and CreatedAt is set to UTC.
func CreateIntake(ctx context.Context, db *gorm.DB, memberID string, in NewIntake) (*domain.IntakeEvent, error) {
	ev := &domain.IntakeEvent{
		ID:         uuid.NewString(),
		MemberID:   memberID,
		BrandName:  in.BrandName,
		DrinkName:  in.DrinkName,
		Milligrams: in.Milligrams,
		Temp:       in.Temp,
		MenuID:     in.MenuID,
		ConsumedAt: in.ConsumedAt,
		CreatedAt:  time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(ev).Error; err != nil {
		return nil, err
	}
	return ev, nil
}

// GetIntake fetches a single event by ID and owner, or ErrNotFound.
func GetIntake(ctx context.Context, db *gorm.DB, id, memberID string) (*domain.IntakeEvent, error) {
	var ev domain.IntakeEvent
	err := db.WithContext(ctx).
		Where("id = ? AND member_id = ?", id, memberID).
		First(&ev).Error
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

// ListIntakeBetween returns a member's events with start <= consumed_at < end,
// ordered by consumption time ascending.
func ListIntakeBetween(ctx context.Context, db *gorm.DB, memberID string, start, end time.Time) ([]domain.IntakeEvent, error) {
	var out []domain.IntakeEvent
	err := db.WithContext(ctx).
		Where("member_id = ? AND consumed_at >= ? AND consumed_at < ?", memberID, start, end).
		Order("consumed_at asc").
		Find(&out).Error
	return out, err
}

// SumIntakeBetween returns the milligram total of a member's events in
// [start, end).
func SumIntakeBetween(ctx context.Context, db *gorm.DB, memberID string, start, end time.Time) (float64, error) {
	var row struct {
		Total float64
	}
	err := db.WithContext(ctx).
		Model(&domain.IntakeEvent{}).
		Select("COALESCE(SUM(milligrams), 0) AS total").
		Where("member_id = ? AND consumed_at >= ? AND consumed_at < ?", memberID, start, end).
		Scan(&row).Error
	return row.Total, err
}

// FirstIntakeAt returns the member's earliest consumption time, or nil when
// they have never logged a drink.
func FirstIntakeAt(ctx context.Context, db *gorm.DB, memberID string) (*time.Time, error) {
	var ev domain.IntakeEvent
	err := db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Order("consumed_at asc").
		First(&ev).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	t := ev.ConsumedAt
	return &t, nil
}

// ListConsumedTimes returns every consumption timestamp for a member,
// ascending. The service buckets these into calendar days for attendance
// counting.
func ListConsumedTimes(ctx context.Context, db *gorm.DB, memberID string) ([]time.Time, error) {
	var rows []struct {
		ConsumedAt time.Time
	}
	err := db.WithContext(ctx).
		Model(&domain.IntakeEvent{}).
		Select("consumed_at").
		Where("member_id = ?", memberID).
		Order("consumed_at asc").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]time.Time, len(rows))
	for i, r := range rows {
		out[i] = r.ConsumedAt
	}
	return out, nil
}

// DeleteIntake soft-deletes a single event owned by memberID and returns the
// removed row so the caller can rebalance cached totals. Returns ErrNotFound
// when the event does not exist or belongs to someone else.
func DeleteIntake(ctx context.Context, db *gorm.DB, id, memberID string) (*domain.IntakeEvent, error) {
	ev, err := GetIntake(ctx, db, id, memberID)
	if err != nil {
		return nil, err
	}
	res := db.WithContext(ctx).
		Where("id = ? AND member_id = ?", id, memberID).
		Delete(&domain.IntakeEvent{})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return ev, nil
}

// DeleteIntakeBetween soft-deletes all of a member's events in [start, end)
// and reports how many rows were removed.
func DeleteIntakeBetween(ctx context.Context, db *gorm.DB, memberID string, start, end time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Where("member_id = ? AND consumed_at >= ? AND consumed_at < ?", memberID, start, end).
		Delete(&domain.IntakeEvent{})
	return res.RowsAffected, res.Error
}
