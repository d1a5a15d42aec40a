// Package services – PointsService
//
// This file implements the PointsService behind the shop endpoints: reading
// the balance and spending points. Spending is a single guarded UPDATE, so
// the balance can never go negative under concurrent deductions.
package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/jeiu/caffeine-backend/internal/repo"
)

// PointsService implements the shop points use-cases.
type PointsService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// Balance returns the member's current points.
func (s *PointsService) Balance(ctx context.Context, memberID string) (int, error) {
	m, err := repo.GetMember(ctx, s.DB, memberID)
	if err != nil {
		if isNotFound(err) {
			return 0, ErrMemberNotFound
		}
		return 0, err
	}
	return m.Points, nil
}

// Deduct spends amount points and returns the new balance. A zero or
// negative amount is rejected as insufficient input by the handler; here it
// is treated as a no-op read. Overspending yields ErrInsufficientPoints.
func (s *PointsService) Deduct(ctx context.Context, memberID string, amount int) (int, error) {
	if amount <= 0 {
		return s.Balance(ctx, memberID)
	}
	var balance int
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := repo.SpendPoints(ctx, tx, memberID, amount)
		if err != nil {
			return err
		}
		if !ok {
			// Missing member and short balance both leave zero rows
			// affected; disambiguate for the caller.
			if _, err := repo.GetMember(ctx, tx, memberID); err != nil {
				if isNotFound(err) {
					return ErrMemberNotFound
				}
				return err
			}
			return ErrInsufficientPoints
		}
		m, err := repo.GetMember(ctx, tx, memberID)
		if err != nil {
			return err
		}
		balance = m.Points
		return nil
	})
	if err != nil {
		return 0, err
	}
	return balance, nil
}
