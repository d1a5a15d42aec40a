// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Member
// model: account rows, profile attributes, and the points balance.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a member is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jeiu/caffeine-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateMember inserts a new account row. The member ID is a randomly
// generated UUID (string), and CreatedAt is set to UTC. Unique username
// violations surface as ErrDuplicate.
func CreateMember(ctx context.Context, db *gorm.DB, username, name, passwordHash string) (*domain.Member, error) {
	m := &domain.Member{
		ID:           uuid.NewString(),
		Username:     username,
		Name:         name,
		PasswordHash: passwordHash,
		LanguageCode: "en",
		CreatedAt:    time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return m, nil
}

// GetMember fetches a member by ID, or ErrNotFound.
func GetMember(ctx context.Context, db *gorm.DB, id string) (*domain.Member, error) {
	var m domain.Member
	if err := db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// GetMemberByUsername fetches a member by login handle, or ErrNotFound.
func GetMemberByUsername(ctx context.Context, db *gorm.DB, username string) (*domain.Member, error) {
	var m domain.Member
	if err := db.WithContext(ctx).First(&m, "username = ?", username).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// UpdateMemberProfile applies the given column updates to a member row.
// If no rows are affected, it returns ErrNotFound.
func UpdateMemberProfile(ctx context.Context, db *gorm.DB, id string, updates map[string]any) error {
	res := db.WithContext(ctx).
		Model(&domain.Member{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SearchMembers returns members whose username contains q, excluding the
// searcher, ordered by username, capped at limit.
func SearchMembers(ctx context.Context, db *gorm.DB, selfID, q string, limit int) ([]domain.Member, error) {
	var out []domain.Member
	err := db.WithContext(ctx).
		Where("id <> ? AND username LIKE ?", selfID, "%"+q+"%").
		Order("username asc").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// AddPoints credits delta points to a member. Call inside a transaction when
// the credit must be atomic with other writes. Returns ErrNotFound when the
// member does not exist.
func AddPoints(ctx context.Context, db *gorm.DB, id string, delta int) error {
	res := db.WithContext(ctx).
		Model(&domain.Member{}).
		Where("id = ?", id).
		Update("points", gorm.Expr("points + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SpendPoints debits amount points, guarded so the balance never goes
// negative. Zero rows affected means the member is missing or the balance
// is insufficient; callers disambiguate with GetMember.
func SpendPoints(ctx context.Context, db *gorm.DB, id string, amount int) (bool, error) {
	res := db.WithContext(ctx).
		Model(&domain.Member{}).
		Where("id = ? AND points >= ?", id, amount).
		Update("points", gorm.Expr("points - ?", amount))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
