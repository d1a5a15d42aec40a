// Package services – MenuService
//
// This file implements the MenuService, which serves the drink catalogue
// (brands and menus), fuzzy catalogue search, and member-defined custom
// drinks. Search runs against an immutable in-memory index rebuilt from the
// catalogue; the catalogue is static reference data, so a rebuild per
// startup (or after an admin import) is enough.
package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"gorm.io/gorm"

	"github.com/jeiu/caffeine-backend/internal/domain"
	"github.com/jeiu/caffeine-backend/internal/repo"
	"github.com/jeiu/caffeine-backend/internal/search"
)

// MenuHit is one search result resolved back to its catalogue row.
type MenuHit struct {
	Menu  domain.Menu `json:"menu"`
	Score float64     `json:"score"`
}

// MenuService implements the catalogue use-cases.
type MenuService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB

	mu  sync.RWMutex
	idx search.Index
}

// Brands returns every catalogue brand.
func (s *MenuService) Brands(ctx context.Context) ([]domain.Brand, error) {
	return repo.ListBrands(ctx, s.DB)
}

// BrandMenus returns the drinks of one brand, or ErrBrandNotFound.
func (s *MenuService) BrandMenus(ctx context.Context, brandID string) ([]domain.Menu, error) {
	if _, err := repo.GetBrand(ctx, s.DB, brandID); err != nil {
		if isNotFound(err) {
			return nil, ErrBrandNotFound
		}
		return nil, err
	}
	return repo.ListMenusByBrand(ctx, s.DB, brandID)
}

// Menus returns the whole catalogue.
func (s *MenuService) Menus(ctx context.Context) ([]domain.Menu, error) {
	return repo.ListMenus(ctx, s.DB)
}

// RebuildIndex reloads the catalogue into the search index. Call at startup
// and after catalogue imports.
func (s *MenuService) RebuildIndex(ctx context.Context) error {
	menus, err := repo.ListMenus(ctx, s.DB)
	if err != nil {
		return err
	}
	brands, err := repo.ListBrands(ctx, s.DB)
	if err != nil {
		return err
	}
	names := make(map[string]string, len(brands))
	for _, b := range brands {
		names[b.ID] = b.Name
	}

	docs := make([]search.Doc, 0, len(menus))
	for _, m := range menus {
		text := strings.Join([]string{names[m.BrandID], m.Name, m.Temp, m.Size, m.Category}, " ")
		docs = append(docs, search.Doc{ID: m.ID, Text: text})
	}

	idx := search.NewIndex(docs)
	s.mu.Lock()
	s.idx = idx
	s.mu.Unlock()
	return nil
}

// Search ranks catalogue drinks against the query and resolves the hits
// back to full rows. An unbuilt index or blank query yields no hits.
func (s *MenuService) Search(ctx context.Context, query string, k int) ([]MenuHit, error) {
	s.mu.RLock()
	idx := s.idx
	s.mu.RUnlock()
	if idx == nil {
		if err := s.RebuildIndex(ctx); err != nil {
			return nil, err
		}
		s.mu.RLock()
		idx = s.idx
		s.mu.RUnlock()
	}

	results := idx.TopK(query, k)
	if len(results) == 0 {
		return []MenuHit{}, nil
	}
	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.ID
	}
	menus, err := repo.GetMenusByIDs(ctx, s.DB, ids)
	if err != nil {
		return nil, err
	}
	out := make([]MenuHit, 0, len(results))
	for _, r := range results {
		if m, ok := menus[r.ID]; ok {
			out = append(out, MenuHit{Menu: m, Score: r.Score})
		}
	}
	return out, nil
}

// CreateCustom registers a member-defined drink. Duplicate names per member
// yield ErrDuplicateMenu.
func (s *MenuService) CreateCustom(ctx context.Context, memberID, name string, caffeineMg float64) (*domain.CustomMenu, error) {
	name = strings.TrimSpace(name)
	if name == "" || caffeineMg < 0 {
		return nil, ErrInvalidIntake
	}
	cm, err := repo.CreateCustomMenu(ctx, s.DB, memberID, name, caffeineMg)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrDuplicateMenu
		}
		return nil, err
	}
	return cm, nil
}

// ListCustom returns the member's custom drinks.
func (s *MenuService) ListCustom(ctx context.Context, memberID string) ([]domain.CustomMenu, error) {
	return repo.ListCustomMenus(ctx, s.DB, memberID)
}

// UpdateCustom changes a custom drink's name and/or caffeine content.
func (s *MenuService) UpdateCustom(ctx context.Context, memberID, id string, name *string, caffeineMg *float64) error {
	updates := map[string]any{}
	if name != nil && strings.TrimSpace(*name) != "" {
		updates["name"] = strings.TrimSpace(*name)
	}
	if caffeineMg != nil && *caffeineMg >= 0 {
		updates["caffeine_mg"] = *caffeineMg
	}
	if len(updates) == 0 {
		return nil
	}
	if err := repo.UpdateCustomMenu(ctx, s.DB, id, memberID, updates); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return ErrDuplicateMenu
		}
		if isNotFound(err) {
			return ErrMenuNotFound
		}
		return err
	}
	return nil
}

// DeleteCustom removes a custom drink, or ErrMenuNotFound.
func (s *MenuService) DeleteCustom(ctx context.Context, memberID, id string) error {
	if err := repo.DeleteCustomMenu(ctx, s.DB, id, memberID); err != nil {
		if isNotFound(err) {
			return ErrMenuNotFound
		}
		return err
	}
	return nil
}
