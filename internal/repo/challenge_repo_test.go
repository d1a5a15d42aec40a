package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jeiu/caffeine-backend/internal/domain"
)

func TestChallengeDefinitions_SeedAndLookup(t *testing.T) {
	db := newRepoDB(t, &domain.ChallengeDefinition{})
	ctx := context.Background()

	if err := SeedChallengeDefinitions(ctx, db); err != nil {
		t.Fatalf("seed: %v", err)
	}

	defs, err := ListChallengeDefinitions(ctx, db)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(defs) != 6 {
		t.Fatalf("expected 6 definitions, got %d", len(defs))
	}

	def, err := GetChallengeDefinition(ctx, db, "first_attendance")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if def.TargetType != domain.TargetDaily {
		t.Fatalf("first_attendance target type = %q; want DAILY", def.TargetType)
	}

	if _, err := GetChallengeDefinition(ctx, db, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown code: got %v; want ErrNotFound", err)
	}
}

func TestCreateChallengeProgress_DuplicatePeriod(t *testing.T) {
	db := newRepoDB(t, &domain.Member{}, &domain.ChallengeProgress{})
	ctx := context.Background()
	now := time.Now().UTC()

	if err := db.Create(&domain.Member{ID: "u1", Username: "a", Name: "A", PasswordHash: "x"}).Error; err != nil {
		t.Fatalf("seed member: %v", err)
	}

	if _, err := CreateChallengeProgress(ctx, db, "u1", "first_attendance", "2026-08-31", now); err != nil {
		t.Fatalf("first claim: %v", err)
	}
	if _, err := CreateChallengeProgress(ctx, db, "u1", "first_attendance", "2026-08-31", now); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("second claim same period: got %v; want ErrDuplicate", err)
	}
	// Next day is a new period.
	if _, err := CreateChallengeProgress(ctx, db, "u1", "first_attendance", "2026-09-01", now); err != nil {
		t.Fatalf("next-day claim: %v", err)
	}

	rows, err := ListChallengeProgress(ctx, db, "u1")
	if err != nil {
		t.Fatalf("list progress: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 progress rows, got %d", len(rows))
	}

	got, err := GetChallengeProgress(ctx, db, "u1", "first_attendance", "2026-08-31")
	if err != nil {
		t.Fatalf("get progress: %v", err)
	}
	if !got.IsCompleted {
		t.Fatalf("claim should be completed: %+v", got)
	}
}
