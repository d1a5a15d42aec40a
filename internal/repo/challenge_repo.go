// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the challenge
// catalogue and per-member claim records.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jeiu/caffeine-backend/internal/domain"
)

// ListChallengeDefinitions returns the full catalogue ordered by creation.
func ListChallengeDefinitions(ctx context.Context, db *gorm.DB) ([]domain.ChallengeDefinition, error) {
	var out []domain.ChallengeDefinition
	err := db.WithContext(ctx).
		Order("created_at asc, code asc").
		Find(&out).Error
	return out, err
}

// GetChallengeDefinition fetches one catalogue entry by code, or ErrNotFound.
func GetChallengeDefinition(ctx context.Context, db *gorm.DB, code string) (*domain.ChallengeDefinition, error) {
	var def domain.ChallengeDefinition
	if err := db.WithContext(ctx).First(&def, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &def, nil
}

// ListChallengeProgress returns every claim record for a member.
func ListChallengeProgress(ctx context.Context, db *gorm.DB, memberID string) ([]domain.ChallengeProgress, error) {
	var out []domain.ChallengeProgress
	err := db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Find(&out).Error
	return out, err
}

// GetChallengeProgress fetches a member's claim for (code, progressDate), or
// ErrNotFound.
func GetChallengeProgress(ctx context.Context, db *gorm.DB, memberID, code, progressDate string) (*domain.ChallengeProgress, error) {
	var p domain.ChallengeProgress
	err := db.WithContext(ctx).
		Where("member_id = ? AND challenge_code = ? AND progress_date = ?", memberID, code, progressDate).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateChallengeProgress inserts a claim record. The unique index on
// (member, code, date) makes this the serialization point for concurrent
// claims; the loser gets ErrDuplicate.
func CreateChallengeProgress(ctx context.Context, db *gorm.DB, memberID, code, progressDate string, claimedAt time.Time) (*domain.ChallengeProgress, error) {
	p := &domain.ChallengeProgress{
		ID:            uuid.NewString(),
		MemberID:      memberID,
		ChallengeCode: code,
		ProgressDate:  progressDate,
		IsCompleted:   true,
		ClaimedAt:     claimedAt,
		CreatedAt:     time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(p).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return p, nil
}
