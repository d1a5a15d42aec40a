package services

import (
	"context"
	"errors"
	"testing"

	"github.com/jeiu/caffeine-backend/internal/domain"
)

func TestPointsBalance(t *testing.T) {
	db := newSvcDB(t)
	seedMember(t, db, "m1", "alice")
	if err := db.Model(&domain.Member{}).Where("id = ?", "m1").Update("points", 7).Error; err != nil {
		t.Fatalf("seed points: %v", err)
	}
	s := &PointsService{DB: db}

	got, err := s.Balance(context.Background(), "m1")
	if err != nil {
		t.Fatalf("Balance error: %v", err)
	}
	if got != 7 {
		t.Fatalf("balance = %d; want 7", got)
	}

	if _, err := s.Balance(context.Background(), "ghost"); !errors.Is(err, ErrMemberNotFound) {
		t.Fatalf("unknown member: got %v", err)
	}
}

func TestPointsDeduct(t *testing.T) {
	db := newSvcDB(t)
	seedMember(t, db, "m1", "alice")
	if err := db.Model(&domain.Member{}).Where("id = ?", "m1").Update("points", 10).Error; err != nil {
		t.Fatalf("seed points: %v", err)
	}
	s := &PointsService{DB: db}

	balance, err := s.Deduct(context.Background(), "m1", 4)
	if err != nil {
		t.Fatalf("Deduct error: %v", err)
	}
	if balance != 6 {
		t.Fatalf("balance = %d; want 6", balance)
	}

	// Overspend leaves the balance untouched.
	if _, err := s.Deduct(context.Background(), "m1", 100); !errors.Is(err, ErrInsufficientPoints) {
		t.Fatalf("overspend: got %v", err)
	}
	if got, _ := s.Balance(context.Background(), "m1"); got != 6 {
		t.Fatalf("balance changed on failed deduct: %d", got)
	}

	// Non-positive amounts are a no-op read.
	if got, err := s.Deduct(context.Background(), "m1", 0); err != nil || got != 6 {
		t.Fatalf("zero deduct: got %d, %v", got, err)
	}

	if _, err := s.Deduct(context.Background(), "ghost", 1); !errors.Is(err, ErrMemberNotFound) {
		t.Fatalf("unknown member: got %v", err)
	}
}

func TestPointsDeduct_SpendToZero(t *testing.T) {
	db := newSvcDB(t)
	seedMember(t, db, "m1", "alice")
	if err := db.Model(&domain.Member{}).Where("id = ?", "m1").Update("points", 3).Error; err != nil {
		t.Fatalf("seed points: %v", err)
	}
	s := &PointsService{DB: db}

	balance, err := s.Deduct(context.Background(), "m1", 3)
	if err != nil {
		t.Fatalf("Deduct error: %v", err)
	}
	if balance != 0 {
		t.Fatalf("balance = %d; want 0", balance)
	}
}
