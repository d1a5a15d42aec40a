package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jeiu/caffeine-backend/internal/domain"
)

func TestCreateMember_DuplicateUsername(t *testing.T) {
	db := newRepoDB(t, &domain.Member{})
	ctx := context.Background()

	m, err := CreateMember(ctx, db, "alice", "Alice", "hash")
	if err != nil {
		t.Fatalf("CreateMember: %v", err)
	}
	if m.ID == "" || m.LanguageCode != "en" {
		t.Fatalf("unexpected member: %+v", m)
	}

	if _, err := CreateMember(ctx, db, "alice", "Other Alice", "hash2"); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("duplicate username: got %v; want ErrDuplicate", err)
	}

	got, err := GetMemberByUsername(ctx, db, "alice")
	if err != nil {
		t.Fatalf("GetMemberByUsername: %v", err)
	}
	if got.ID != m.ID {
		t.Fatalf("lookup mismatch: %q vs %q", got.ID, m.ID)
	}
}

func TestPoints_AddAndSpend(t *testing.T) {
	db := newRepoDB(t, &domain.Member{})
	ctx := context.Background()

	m, err := CreateMember(ctx, db, "bob", "Bob", "hash")
	if err != nil {
		t.Fatalf("CreateMember: %v", err)
	}

	if err := AddPoints(ctx, db, m.ID, 5); err != nil {
		t.Fatalf("AddPoints: %v", err)
	}

	ok, err := SpendPoints(ctx, db, m.ID, 3)
	if err != nil || !ok {
		t.Fatalf("SpendPoints(3): ok=%v err=%v", ok, err)
	}

	// Balance is 2; spending 3 must be refused without touching the row.
	ok, err = SpendPoints(ctx, db, m.ID, 3)
	if err != nil {
		t.Fatalf("SpendPoints over balance: %v", err)
	}
	if ok {
		t.Fatalf("expected insufficient balance to be refused")
	}

	got, err := GetMember(ctx, db, m.ID)
	if err != nil {
		t.Fatalf("GetMember: %v", err)
	}
	if got.Points != 2 {
		t.Fatalf("expected balance 2, got %d", got.Points)
	}

	if err := AddPoints(ctx, db, "missing", 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("AddPoints missing member: got %v; want ErrNotFound", err)
	}
}

func TestSearchMembers_ExcludesSelf(t *testing.T) {
	db := newRepoDB(t, &domain.Member{})
	ctx := context.Background()

	ids := map[string]string{}
	for _, u := range []string{"carol", "carlos", "dave"} {
		m, err := CreateMember(ctx, db, u, u, "hash")
		if err != nil {
			t.Fatalf("seed %s: %v", u, err)
		}
		ids[u] = m.ID
	}

	got, err := SearchMembers(ctx, db, ids["carol"], "car", 10)
	if err != nil {
		t.Fatalf("SearchMembers: %v", err)
	}
	if len(got) != 1 || got[0].Username != "carlos" {
		t.Fatalf("expected only carlos, got %+v", got)
	}
}

func TestProfile_CurrentMgAdjustAndFloor(t *testing.T) {
	db := newRepoDB(t, &domain.Member{}, &domain.CaffeineProfile{})
	ctx := context.Background()

	m, err := CreateMember(ctx, db, "erin", "Erin", "hash")
	if err != nil {
		t.Fatalf("seed member: %v", err)
	}
	if _, err := CreateProfile(ctx, db, m.ID, 60, 360); err != nil {
		t.Fatalf("CreateProfile: %v", err)
	}
	if _, err := CreateProfile(ctx, db, m.ID, 60, 360); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("second profile: got %v; want ErrDuplicate", err)
	}

	if err := AdjustCurrentMg(ctx, db, m.ID, 150); err != nil {
		t.Fatalf("AdjustCurrentMg +150: %v", err)
	}
	// Deleting more than was tracked floors at zero instead of going negative.
	if err := AdjustCurrentMg(ctx, db, m.ID, -500); err != nil {
		t.Fatalf("AdjustCurrentMg -500: %v", err)
	}

	p, err := GetProfileByMember(ctx, db, m.ID)
	if err != nil {
		t.Fatalf("GetProfileByMember: %v", err)
	}
	if p.CurrentMg != 0 {
		t.Fatalf("expected floor at 0, got %v", p.CurrentMg)
	}

	if err := SetCurrentMg(ctx, db, m.ID, 42); err != nil {
		t.Fatalf("SetCurrentMg: %v", err)
	}
	p, _ = GetProfileByMember(ctx, db, m.ID)
	if p.CurrentMg != 42 {
		t.Fatalf("expected 42 after reconcile, got %v", p.CurrentMg)
	}
}

func TestListStaleProfiles(t *testing.T) {
	db := newRepoDB(t, &domain.Member{}, &domain.CaffeineProfile{})
	ctx := context.Background()

	m, err := CreateMember(ctx, db, "frank", "Frank", "hash")
	if err != nil {
		t.Fatalf("seed member: %v", err)
	}
	p, err := CreateProfile(ctx, db, m.ID, 80, 400)
	if err != nil {
		t.Fatalf("CreateProfile: %v", err)
	}
	// Age the row past the cutoff.
	old := time.Now().UTC().Add(-48 * time.Hour)
	if err := db.Model(&domain.CaffeineProfile{}).Where("id = ?", p.ID).Update("updated_at", old).Error; err != nil {
		t.Fatalf("age profile: %v", err)
	}

	stale, err := ListStaleProfiles(ctx, db, time.Now().UTC().Add(-24*time.Hour), 10)
	if err != nil {
		t.Fatalf("ListStaleProfiles: %v", err)
	}
	if len(stale) != 1 || stale[0].MemberID != m.ID {
		t.Fatalf("expected the aged profile, got %+v", stale)
	}
}
