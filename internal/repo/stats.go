// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate/statistics queries used
// primarily for conditional responses (e.g., ETag generation) in the HTTP
// layer. Each function is context-aware and safe to call from services or
// handlers.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/jeiu/caffeine-backend/internal/domain"
)

// IntakeStats returns aggregate metadata for a member's intake history: the
// total number of rows and the maximum CreatedAt timestamp among those rows.
//
// It executes two lightweight queries against the intake_events table scoped
// to the provided memberID. When the member has no events, the returned
// count is 0 and maxCreatedAt is nil.
//
// Return values:
//   - count:        total intake events for memberID
//   - maxCreatedAt: pointer to the greatest CreatedAt, or nil if no rows
//   - err:          database error, if any
func IntakeStats(ctx context.Context, db *gorm.DB, memberID string) (count int64, maxCreatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.IntakeEvent{}).Where("member_id = ?", memberID)

	// Count
	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest created_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		CreatedAt time.Time
	}
	if err = q.Select("created_at").Order("created_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.CreatedAt, nil
}

// RoomMessagesStats returns aggregate metadata for messages within a chat
// room: the total number of rows and the maximum CreatedAt timestamp among
// those rows.
//
// It executes two lightweight queries against the chat_messages table scoped
// to the provided roomID. When the room has no messages, the returned count
// is 0 and maxCreatedAt is nil.
//
// Return values:
//   - count:        total messages for roomID
//   - maxCreatedAt: pointer to the greatest CreatedAt, or nil if no rows
//   - err:          database error, if any
func RoomMessagesStats(ctx context.Context, db *gorm.DB, roomID string) (count int64, maxCreatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.ChatMessage{}).Where("room_id = ?", roomID)

	// Count
	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest created_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		CreatedAt time.Time
	}
	if err = q.Select("created_at").Order("created_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.CreatedAt, nil
}
