// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// CaffeineProfile model, including the cached daily total.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jeiu/caffeine-backend/internal/domain"
)

// CreateProfile inserts a caffeine profile for memberID with the given
// settings. One profile per member; duplicates surface as ErrDuplicate.
func CreateProfile(ctx context.Context, db *gorm.DB, memberID string, weightKg, dailyLimitMg float64) (*domain.CaffeineProfile, error) {
	now := time.Now().UTC()
	p := &domain.CaffeineProfile{
		ID:           uuid.NewString(),
		MemberID:     memberID,
		WeightKg:     weightKg,
		Gender:       "M",
		DailyLimitMg: dailyLimitMg,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := db.WithContext(ctx).Create(p).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return p, nil
}

// GetProfileByMember fetches a member's profile, or ErrNotFound.
func GetProfileByMember(ctx context.Context, db *gorm.DB, memberID string) (*domain.CaffeineProfile, error) {
	var p domain.CaffeineProfile
	if err := db.WithContext(ctx).First(&p, "member_id = ?", memberID).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProfile applies the given column updates to a member's profile.
// If no rows are affected, it returns ErrNotFound.
func UpdateProfile(ctx context.Context, db *gorm.DB, memberID string, updates map[string]any) error {
	res := db.WithContext(ctx).
		Model(&domain.CaffeineProfile{}).
		Where("member_id = ?", memberID).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AdjustCurrentMg shifts the cached daily total by delta, flooring at zero,
// and touches UpdatedAt so staleness detection sees the write.
func AdjustCurrentMg(ctx context.Context, db *gorm.DB, memberID string, delta float64) error {
	res := db.WithContext(ctx).
		Model(&domain.CaffeineProfile{}).
		Where("member_id = ?", memberID).
		Updates(map[string]any{
			"current_mg": gorm.Expr("MAX(0, current_mg + ?)", delta),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetCurrentMg overwrites the cached daily total, used when reconciling the
// cache against the event log.
func SetCurrentMg(ctx context.Context, db *gorm.DB, memberID string, mg float64) error {
	res := db.WithContext(ctx).
		Model(&domain.CaffeineProfile{}).
		Where("member_id = ?", memberID).
		Updates(map[string]any{
			"current_mg": mg,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListStaleProfiles returns profiles not touched since cutoff. The refresher
// uses this to find caches that crossed midnight without a reconciling read.
func ListStaleProfiles(ctx context.Context, db *gorm.DB, cutoff time.Time, limit int) ([]domain.CaffeineProfile, error) {
	var out []domain.CaffeineProfile
	err := db.WithContext(ctx).
		Where("updated_at < ?", cutoff).
		Order("updated_at asc").
		Limit(limit).
		Find(&out).Error
	return out, err
}
