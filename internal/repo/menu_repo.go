// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the drink
// catalogue (brands, menus) and member-defined custom menus.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jeiu/caffeine-backend/internal/domain"
)

// ListBrands returns all catalogue brands ordered by name.
func ListBrands(ctx context.Context, db *gorm.DB) ([]domain.Brand, error) {
	var out []domain.Brand
	err := db.WithContext(ctx).Order("name asc").Find(&out).Error
	return out, err
}

// GetBrand fetches a brand by ID, or ErrNotFound.
func GetBrand(ctx context.Context, db *gorm.DB, id string) (*domain.Brand, error) {
	var b domain.Brand
	if err := db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// ListMenusByBrand returns a brand's drinks ordered by name.
func ListMenusByBrand(ctx context.Context, db *gorm.DB, brandID string) ([]domain.Menu, error) {
	var out []domain.Menu
	err := db.WithContext(ctx).
		Where("brand_id = ?", brandID).
		Order("name asc").
		Find(&out).Error
	return out, err
}

// ListMenus returns the whole catalogue ordered by brand then name.
func ListMenus(ctx context.Context, db *gorm.DB) ([]domain.Menu, error) {
	var out []domain.Menu
	err := db.WithContext(ctx).Order("brand_id asc, name asc").Find(&out).Error
	return out, err
}

// GetMenu fetches a menu by ID, or ErrNotFound.
func GetMenu(ctx context.Context, db *gorm.DB, id string) (*domain.Menu, error) {
	var m domain.Menu
	if err := db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// GetMenusByIDs returns the menus matching ids, keyed by ID. Missing IDs are
// simply absent from the map.
func GetMenusByIDs(ctx context.Context, db *gorm.DB, ids []string) (map[string]domain.Menu, error) {
	out := make(map[string]domain.Menu, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []domain.Menu
	if err := db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, m := range rows {
		out[m.ID] = m
	}
	return out, nil
}

// CreateCustomMenu inserts a member-defined drink. A second drink with the
// same name for the same member surfaces as ErrDuplicate.
func CreateCustomMenu(ctx context.Context, db *gorm.DB, memberID, name string, caffeineMg float64) (*domain.CustomMenu, error) {
	now := time.Now().UTC()
	cm := &domain.CustomMenu{
		ID:         uuid.NewString(),
		MemberID:   memberID,
		Name:       name,
		CaffeineMg: caffeineMg,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := db.WithContext(ctx).Create(cm).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return cm, nil
}

// ListCustomMenus returns a member's custom drinks ordered by name.
func ListCustomMenus(ctx context.Context, db *gorm.DB, memberID string) ([]domain.CustomMenu, error) {
	var out []domain.CustomMenu
	err := db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Order("name asc").
		Find(&out).Error
	return out, err
}

// UpdateCustomMenu updates a custom drink owned by memberID. Returns
// ErrNotFound when the row is missing or owned by someone else.
func UpdateCustomMenu(ctx context.Context, db *gorm.DB, id, memberID string, updates map[string]any) error {
	res := db.WithContext(ctx).
		Model(&domain.CustomMenu{}).
		Where("id = ? AND member_id = ?", id, memberID).
		Updates(updates)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return ErrDuplicate
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteCustomMenu soft-deletes a custom drink owned by memberID. Returns
// ErrNotFound when nothing was removed.
func DeleteCustomMenu(ctx context.Context, db *gorm.DB, id, memberID string) error {
	res := db.WithContext(ctx).
		Where("id = ? AND member_id = ?", id, memberID).
		Delete(&domain.CustomMenu{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
