package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/jeiu/caffeine-backend/internal/domain"
)

func TestSeedCatalog_PopulatesOnce(t *testing.T) {
	db := newRepoDB(t, &domain.Brand{}, &domain.Menu{})
	ctx := context.Background()

	if err := SeedCatalog(ctx, db); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := SeedCatalog(ctx, db); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	brands, err := ListBrands(ctx, db)
	if err != nil {
		t.Fatalf("ListBrands: %v", err)
	}
	if len(brands) != 2 {
		t.Fatalf("expected 2 brands after double seed, got %d", len(brands))
	}

	menus, err := ListMenusByBrand(ctx, db, brands[0].ID)
	if err != nil {
		t.Fatalf("ListMenusByBrand: %v", err)
	}
	if len(menus) == 0 {
		t.Fatalf("expected menus for brand %q", brands[0].Name)
	}

	all, err := ListMenus(ctx, db)
	if err != nil || len(all) != 5 {
		t.Fatalf("ListMenus: got=%d err=%v", len(all), err)
	}

	byID, err := GetMenusByIDs(ctx, db, []string{all[0].ID, "missing"})
	if err != nil {
		t.Fatalf("GetMenusByIDs: %v", err)
	}
	if len(byID) != 1 {
		t.Fatalf("expected 1 resolved menu, got %d", len(byID))
	}
}

func TestCustomMenu_CRUDAndUniqueName(t *testing.T) {
	db := newRepoDB(t, &domain.Member{}, &domain.CustomMenu{})
	ctx := context.Background()

	if err := db.Create(&domain.Member{ID: "u1", Username: "a", Name: "A", PasswordHash: "x"}).Error; err != nil {
		t.Fatalf("seed member: %v", err)
	}

	cm, err := CreateCustomMenu(ctx, db, "u1", "Office Drip", 120)
	if err != nil {
		t.Fatalf("CreateCustomMenu: %v", err)
	}
	if _, err := CreateCustomMenu(ctx, db, "u1", "Office Drip", 90); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("duplicate name: got %v; want ErrDuplicate", err)
	}
	// Same name for another member is fine.
	if err := db.Create(&domain.Member{ID: "u2", Username: "b", Name: "B", PasswordHash: "x"}).Error; err != nil {
		t.Fatalf("seed member 2: %v", err)
	}
	if _, err := CreateCustomMenu(ctx, db, "u2", "Office Drip", 90); err != nil {
		t.Fatalf("other member same name: %v", err)
	}

	if err := UpdateCustomMenu(ctx, db, cm.ID, "u1", map[string]any{"caffeine_mg": 140}); err != nil {
		t.Fatalf("UpdateCustomMenu: %v", err)
	}
	if err := UpdateCustomMenu(ctx, db, cm.ID, "u2", map[string]any{"caffeine_mg": 1}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update by non-owner: got %v; want ErrNotFound", err)
	}

	mine, err := ListCustomMenus(ctx, db, "u1")
	if err != nil || len(mine) != 1 || mine[0].CaffeineMg != 140 {
		t.Fatalf("ListCustomMenus: got=%+v err=%v", mine, err)
	}

	if err := DeleteCustomMenu(ctx, db, cm.ID, "u1"); err != nil {
		t.Fatalf("DeleteCustomMenu: %v", err)
	}
	if err := DeleteCustomMenu(ctx, db, cm.ID, "u1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: got %v; want ErrNotFound", err)
	}
}
