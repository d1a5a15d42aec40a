// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file seeds static reference data: the challenge
// catalogue and a starter drink catalogue.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jeiu/caffeine-backend/internal/challenge"
	"github.com/jeiu/caffeine-backend/internal/domain"
)

// SeedChallengeDefinitions inserts the built-in challenge catalogue,
// skipping codes that already exist so repeated startups are safe.
func SeedChallengeDefinitions(ctx context.Context, db *gorm.DB) error {
	defs := []domain.ChallengeDefinition{
		{Code: challenge.CodeDecafSwap, Title: "Decaf swap", Description: "Drink one decaf today.", TargetType: domain.TargetDaily, TargetValue: 1},
		{Code: challenge.CodeHalfReduction, Title: "Half cut", Description: "Cut today's caffeine to half your usual.", TargetType: domain.TargetDaily, TargetValue: 1},
		{Code: challenge.CodeRolling24h, Title: "Steady day", Description: "Stay under 70% of your limit for 24 hours.", TargetType: domain.TargetStreak, TargetValue: 24},
		{Code: challenge.CodeThreeDayAdherence, Title: "Three in a row", Description: "Three days of caffeine within your limit.", TargetType: domain.TargetCumulative, TargetValue: 3},
		{Code: challenge.CodeFirstAttendance, Title: "Check in", Description: "Log your first drink of the day.", TargetType: domain.TargetDaily, TargetValue: 1},
		{Code: challenge.CodeTenDayAttendance, Title: "Ten days", Description: "Log caffeine on ten different days.", TargetType: domain.TargetCumulative, TargetValue: 10},
	}
	now := time.Now().UTC()
	for i := range defs {
		defs[i].ID = uuid.NewString()
		// Preserve catalogue ordering on listing.
		defs[i].CreatedAt = now.Add(time.Duration(i) * time.Millisecond)
		err := db.WithContext(ctx).
			Where("code = ?", defs[i].Code).
			FirstOrCreate(&defs[i]).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// SeedCatalog inserts a minimal brand/menu catalogue when the brands table
// is empty, so a fresh install has something to search.
func SeedCatalog(ctx context.Context, db *gorm.DB) error {
	var cnt int64
	if err := db.WithContext(ctx).Model(&domain.Brand{}).Count(&cnt).Error; err != nil {
		return err
	}
	if cnt > 0 {
		return nil
	}
	now := time.Now().UTC()
	brands := map[string]*domain.Brand{
		"Starbucks": {ID: uuid.NewString(), Name: "Starbucks", CreatedAt: now},
		"Mega":      {ID: uuid.NewString(), Name: "Mega", CreatedAt: now},
	}
	for _, b := range brands {
		if err := db.WithContext(ctx).Create(b).Error; err != nil {
			return err
		}
	}
	menus := []domain.Menu{
		{Name: "Caffe Americano", BrandID: brands["Starbucks"].ID, Temp: "hot", Size: "tall", CaffeineMg: 150, Category: "espresso"},
		{Name: "Caffe Latte", BrandID: brands["Starbucks"].ID, Temp: "hot", Size: "tall", CaffeineMg: 75, Category: "espresso"},
		{Name: "Decaf Americano", BrandID: brands["Starbucks"].ID, Temp: "hot", Size: "tall", CaffeineMg: 10, Category: domain.CategoryDecaf},
		{Name: "Americano", BrandID: brands["Mega"].ID, Temp: "iced", Size: "grande", CaffeineMg: 185, Category: "espresso"},
		{Name: "Decaf Latte", BrandID: brands["Mega"].ID, Temp: "iced", Size: "grande", CaffeineMg: 8, Category: domain.CategoryDecaf},
	}
	for i := range menus {
		menus[i].ID = uuid.NewString()
		menus[i].CreatedAt = now
		if err := db.WithContext(ctx).Create(&menus[i]).Error; err != nil {
			return err
		}
	}
	return nil
}
