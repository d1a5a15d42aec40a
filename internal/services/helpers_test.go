package services

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/jeiu/caffeine-backend/internal/domain"
)

// newSvcDB opens a throwaway file-backed SQLite database migrated with every
// domain model, so service tests can exercise real transactions and
// constraints.
func newSvcDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "svc.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&domain.Member{},
		&domain.CaffeineProfile{},
		&domain.IntakeEvent{},
		&domain.Brand{},
		&domain.Menu{},
		&domain.CustomMenu{},
		&domain.ChallengeDefinition{},
		&domain.ChallengeProgress{},
		&domain.FriendRequest{},
		&domain.Friendship{},
		&domain.ChatRoom{},
		&domain.RoomParticipant{},
		&domain.ChatMessage{},
		&domain.Idempotency{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// seedMember inserts a bare member row with a default caffeine profile.
func seedMember(t *testing.T, db *gorm.DB, id, username string) {
	t.Helper()
	now := time.Now().UTC()
	m := domain.Member{
		ID:           id,
		Username:     username,
		Name:         username,
		PasswordHash: "x",
		LanguageCode: "en",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := db.Create(&m).Error; err != nil {
		t.Fatalf("seed member %s: %v", id, err)
	}
	p := domain.CaffeineProfile{
		ID:           id + "-profile",
		MemberID:     id,
		WeightKg:     70,
		Gender:       "M",
		DailyLimitMg: 400,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed profile %s: %v", id, err)
	}
}

// fixedClock returns a now func pinned to ts.
func fixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}
