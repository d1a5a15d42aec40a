// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for 1:1 chat
// rooms, their participants, and messages.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a room or message is not found, functions return
//     gorm.ErrRecordNotFound (exported in this package as ErrNotFound).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jeiu/caffeine-backend/internal/domain"
)

// FindDirectRoom returns the existing 1:1 room shared by exactly a and b,
// or ErrNotFound.
func FindDirectRoom(ctx context.Context, db *gorm.DB, a, b string) (*domain.ChatRoom, error) {
	var room domain.ChatRoom
	err := db.WithContext(ctx).
		Joins("JOIN room_participants p1 ON p1.room_id = chat_rooms.id AND p1.member_id = ?", a).
		Joins("JOIN room_participants p2 ON p2.room_id = chat_rooms.id AND p2.member_id = ?", b).
		First(&room).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// CreateDirectRoom inserts a room with both participants. Call inside a
// transaction so a half-created room can never be observed.
func CreateDirectRoom(ctx context.Context, db *gorm.DB, a, b string) (*domain.ChatRoom, error) {
	room := &domain.ChatRoom{ID: uuid.NewString(), CreatedAt: time.Now().UTC()}
	if err := db.WithContext(ctx).Create(room).Error; err != nil {
		return nil, err
	}
	parts := []domain.RoomParticipant{
		{ID: uuid.NewString(), RoomID: room.ID, MemberID: a},
		{ID: uuid.NewString(), RoomID: room.ID, MemberID: b},
	}
	if err := db.WithContext(ctx).Create(&parts).Error; err != nil {
		return nil, err
	}
	return room, nil
}

// ListRoomsForMember returns every room memberID participates in, most
// recently created first.
func ListRoomsForMember(ctx context.Context, db *gorm.DB, memberID string) ([]domain.ChatRoom, error) {
	var out []domain.ChatRoom
	err := db.WithContext(ctx).
		Joins("JOIN room_participants p ON p.room_id = chat_rooms.id").
		Where("p.member_id = ?", memberID).
		Order("chat_rooms.created_at desc").
		Find(&out).Error
	return out, err
}

// RoomPeer returns the other participant of a 1:1 room, or ErrNotFound when
// memberID is not in the room or the room has no peer.
func RoomPeer(ctx context.Context, db *gorm.DB, roomID, memberID string) (*domain.Member, error) {
	if ok, err := IsParticipant(ctx, db, roomID, memberID); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrNotFound
	}
	var m domain.Member
	err := db.WithContext(ctx).
		Joins("JOIN room_participants p ON p.member_id = members.id").
		Where("p.room_id = ? AND p.member_id <> ?", roomID, memberID).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// IsParticipant reports whether memberID belongs to roomID.
func IsParticipant(ctx context.Context, db *gorm.DB, roomID, memberID string) (bool, error) {
	var cnt int64
	err := db.WithContext(ctx).
		Model(&domain.RoomParticipant{}).
		Where("room_id = ? AND member_id = ?", roomID, memberID).
		Count(&cnt).Error
	return cnt > 0, err
}

// CreateChatMessage inserts a message into a room. The message ID is a
// randomly generated UUID and CreatedAt is set to UTC.
func CreateChatMessage(ctx context.Context, db *gorm.DB, roomID, senderID, content string) (*domain.ChatMessage, error) {
	msg := &domain.ChatMessage{
		ID:        uuid.NewString(),
		RoomID:    roomID,
		SenderID:  senderID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(msg).Error; err != nil {
		return nil, err
	}
	return msg, nil
}

// CountRoomMessages returns the total number of messages in a room.
func CountRoomMessages(ctx context.Context, db *gorm.DB, roomID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.ChatMessage{}).
		Where("room_id = ?", roomID).
		Count(&total).Error
	return total, err
}

// ListRoomMessagesPage returns a paginated slice of a room's messages,
// oldest first. Use CountRoomMessages to obtain the total for pagination
// metadata.
//
// The caller is responsible for computing offset and limit (e.g., (page-1)*pageSize).
func ListRoomMessagesPage(ctx context.Context, db *gorm.DB, roomID string, offset, limit int) ([]domain.ChatMessage, error) {
	var out []domain.ChatMessage
	err := db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("created_at asc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}
