// Package services – ProfileService
//
// This file implements the ProfileService covering the member-facing profile
// screen: display name, photo, language, and the body attributes that drive
// the recommended daily caffeine limit. The derived limit follows a simple
// mg-per-kg model with age discounts; an explicitly chosen limit always wins
// over the derived one.
package services

import (
	"context"
	"strings"
	"time"

	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/jeiu/caffeine-backend/internal/domain"
	"github.com/jeiu/caffeine-backend/internal/repo"
)

// Derived-limit model: 6 mg/kg body weight, clamped to [100, 400] mg, then
// halved for minors and reduced by a quarter at 65+.
const (
	limitPerKgMg = 6.0
	limitMinMg   = 100.0
	limitMaxMg   = 400.0
)

// Profile is the combined member + caffeine settings view.
type Profile struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Name         string     `json:"name"`
	ProfilePhoto string     `json:"profile_photo,omitempty"`
	LanguageCode string     `json:"language_code"`
	Points       int        `json:"points"`
	WeightKg     float64    `json:"weight_kg"`
	Gender       string     `json:"gender"`
	BirthDate    *time.Time `json:"birth_date,omitempty"`
	DailyLimitMg float64    `json:"daily_limit_mg"`
}

// ProfileUpdate carries the optional fields of a profile update. Nil means
// "leave unchanged".
type ProfileUpdate struct {
	Name         *string
	ProfilePhoto *string
	LanguageCode *string
	WeightKg     *float64
	Gender       *string
	BirthDate    *time.Time
	DailyLimitMg *float64
}

// ProfileService implements the profile use-cases.
type ProfileService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// now is a test seam; defaults to time.Now.
	now func() time.Time
}

func (s *ProfileService) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

// Get returns the combined profile view, or ErrMemberNotFound /
// ErrProfileNotFound.
func (s *ProfileService) Get(ctx context.Context, memberID string) (*Profile, error) {
	m, err := repo.GetMember(ctx, s.DB, memberID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	p, err := repo.GetProfileByMember(ctx, s.DB, memberID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return combine(m, p), nil
}

// Update applies the submitted fields and returns the fresh view. When body
// attributes change without an explicit limit, the daily limit is re-derived
// from the new weight and age.
func (s *ProfileService) Update(ctx context.Context, memberID string, in ProfileUpdate) (*Profile, error) {
	memberUpdates := map[string]any{}
	if in.Name != nil && strings.TrimSpace(*in.Name) != "" {
		memberUpdates["name"] = strings.TrimSpace(*in.Name)
	}
	if in.ProfilePhoto != nil {
		memberUpdates["profile_photo"] = *in.ProfilePhoto
	}
	if in.LanguageCode != nil {
		tag, err := language.Parse(*in.LanguageCode)
		if err != nil {
			return nil, ErrInvalidLanguage
		}
		memberUpdates["language_code"] = tag.String()
	}

	profileUpdates := map[string]any{}
	if in.WeightKg != nil && *in.WeightKg > 0 {
		profileUpdates["weight_kg"] = *in.WeightKg
	}
	if in.Gender != nil && (*in.Gender == "M" || *in.Gender == "F") {
		profileUpdates["gender"] = *in.Gender
	}
	if in.BirthDate != nil {
		profileUpdates["birth_date"] = *in.BirthDate
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(memberUpdates) > 0 {
			if err := repo.UpdateMemberProfile(ctx, tx, memberID, memberUpdates); err != nil {
				if isNotFound(err) {
					return ErrMemberNotFound
				}
				return err
			}
		}

		current, err := repo.GetProfileByMember(ctx, tx, memberID)
		if err != nil {
			if isNotFound(err) {
				return ErrProfileNotFound
			}
			return err
		}

		switch {
		case in.DailyLimitMg != nil && *in.DailyLimitMg > 0:
			// Explicit limit wins over the derived one.
			profileUpdates["daily_limit_mg"] = *in.DailyLimitMg
		case in.WeightKg != nil || in.BirthDate != nil:
			weight := current.WeightKg
			if in.WeightKg != nil && *in.WeightKg > 0 {
				weight = *in.WeightKg
			}
			birth := current.BirthDate
			if in.BirthDate != nil {
				birth = in.BirthDate
			}
			profileUpdates["daily_limit_mg"] = DerivedLimitMg(weight, birth, s.clock())
		}

		if len(profileUpdates) > 0 {
			if err := repo.UpdateProfile(ctx, tx, memberID, profileUpdates); err != nil {
				if isNotFound(err) {
					return ErrProfileNotFound
				}
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, memberID)
}

// DerivedLimitMg computes the recommended daily limit: 6 mg per kg body
// weight clamped to [100, 400], halved under 18, reduced to 75% at 65+.
func DerivedLimitMg(weightKg float64, birthDate *time.Time, now time.Time) float64 {
	limit := weightKg * limitPerKgMg
	if limit < limitMinMg {
		limit = limitMinMg
	}
	if limit > limitMaxMg {
		limit = limitMaxMg
	}
	if birthDate != nil {
		switch age := yearsBetween(*birthDate, now); {
		case age < 18:
			limit *= 0.5
		case age >= 65:
			limit *= 0.75
		}
	}
	return limit
}

// yearsBetween returns whole years from birth to now.
func yearsBetween(birth, now time.Time) int {
	years := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		years--
	}
	return years
}

func combine(m *domain.Member, p *domain.CaffeineProfile) *Profile {
	return &Profile{
		ID:           m.ID,
		Username:     m.Username,
		Name:         m.Name,
		ProfilePhoto: m.ProfilePhoto,
		LanguageCode: m.LanguageCode,
		Points:       m.Points,
		WeightKg:     p.WeightKg,
		Gender:       p.Gender,
		BirthDate:    p.BirthDate,
		DailyLimitMg: p.DailyLimitMg,
	}
}
