// Package services – ChatService
//
// This file implements the ChatService, which manages 1:1 rooms between
// friends. It enforces the friendship precondition on room creation,
// participant checks on reads and writes, and message normalization and
// length limits. Room listing resolves each room's peer so clients can
// render a conversation list directly.
//
// Service-level errors (e.g., ErrRoomNotFound, ErrNotFriends) are returned
// for predictable cases so handlers can map them to HTTP results
// consistently.
package services

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/jeiu/caffeine-backend/internal/domain"
)

// ChatRepo defines the repository contract required by ChatService.
// Implementations are responsible for persistence of rooms, participants,
// and messages.
type ChatRepo interface {
	// FindDirectRoom returns the 1:1 room shared by exactly a and b.
	FindDirectRoom(ctx context.Context, db *gorm.DB, a, b string) (*domain.ChatRoom, error)

	// CreateDirectRoom inserts a room with both participants.
	CreateDirectRoom(ctx context.Context, db *gorm.DB, a, b string) (*domain.ChatRoom, error)

	// ListRoomsForMember returns every room the member participates in.
	ListRoomsForMember(ctx context.Context, db *gorm.DB, memberID string) ([]domain.ChatRoom, error)

	// RoomPeer returns the other participant of a 1:1 room.
	RoomPeer(ctx context.Context, db *gorm.DB, roomID, memberID string) (*domain.Member, error)

	// IsParticipant reports whether the member belongs to the room.
	IsParticipant(ctx context.Context, db *gorm.DB, roomID, memberID string) (bool, error)

	// CreateChatMessage inserts a message into a room.
	CreateChatMessage(ctx context.Context, db *gorm.DB, roomID, senderID, content string) (*domain.ChatMessage, error)

	// CountRoomMessages returns the total number of messages for pagination.
	CountRoomMessages(ctx context.Context, db *gorm.DB, roomID string) (int64, error)

	// ListRoomMessagesPage returns a page of a room's messages, oldest first.
	ListRoomMessagesPage(ctx context.Context, db *gorm.DB, roomID string, offset, limit int) ([]domain.ChatMessage, error)
}

// FriendChecker reports whether two members are friends. FriendService
// satisfies this through a small adapter at wiring time.
type FriendChecker interface {
	AreFriends(ctx context.Context, a, b string) (bool, error)
}

// RoomView is one row of the conversation list: the room plus its peer.
type RoomView struct {
	ID   string        `json:"id"`
	Peer domain.Member `json:"peer"`
}

// ChatService provides room-level operations: opening a room with a friend,
// listing conversations, sending, and reading messages.
type ChatService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the chat repository used by this service.
	Repo ChatRepo
	// Friends answers the friendship precondition for opening a room.
	Friends FriendChecker

	// MessageMaxLen caps stored messages by rune length.
	MessageMaxLen int
}

// NewChatService constructs a ChatService with sane defaults for message
// handling.
func NewChatService(db *gorm.DB, r ChatRepo, f FriendChecker) *ChatService {
	return &ChatService{
		DB:            db,
		Repo:          r,
		Friends:       f,
		MessageMaxLen: 2000,
	}
}

// OpenRoom returns the 1:1 room shared with peerID, creating it on first
// use. Rooms exist only between friends; anything else yields ErrNotFriends.
func (s *ChatService) OpenRoom(ctx context.Context, memberID, peerID string) (*domain.ChatRoom, error) {
	if memberID == peerID {
		return nil, ErrSelfFriend
	}
	friends, err := s.Friends.AreFriends(ctx, memberID, peerID)
	if err != nil {
		return nil, err
	}
	if !friends {
		return nil, ErrNotFriends
	}

	room, err := s.Repo.FindDirectRoom(ctx, s.DB, memberID, peerID)
	if err == nil {
		return room, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Re-check inside the transaction so two concurrent opens
		// converge on a single room.
		if existing, err := s.Repo.FindDirectRoom(ctx, tx, memberID, peerID); err == nil {
			room = existing
			return nil
		} else if !isNotFound(err) {
			return err
		}
		created, err := s.Repo.CreateDirectRoom(ctx, tx, memberID, peerID)
		if err != nil {
			return err
		}
		room = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return room, nil
}

// Rooms returns the member's conversation list, each room resolved to its
// peer. Rooms whose peer row has since vanished are skipped.
func (s *ChatService) Rooms(ctx context.Context, memberID string) ([]RoomView, error) {
	rooms, err := s.Repo.ListRoomsForMember(ctx, s.DB, memberID)
	if err != nil {
		return nil, err
	}
	out := make([]RoomView, 0, len(rooms))
	for _, r := range rooms {
		peer, err := s.Repo.RoomPeer(ctx, s.DB, r.ID, memberID)
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return nil, err
		}
		out = append(out, RoomView{ID: r.ID, Peer: *peer})
	}
	return out, nil
}

// Send normalizes and stores a message in a room the member participates in.
// Blank content yields ErrEmptyMessage; content over MessageMaxLen runes
// yields ErrTooLong.
func (s *ChatService) Send(ctx context.Context, memberID, roomID, content string) (*domain.ChatMessage, error) {
	content = normalizeMessage(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}
	if s.MessageMaxLen > 0 && utf8.RuneCountInString(content) > s.MessageMaxLen {
		return nil, ErrTooLong
	}
	if ok, err := s.Repo.IsParticipant(ctx, s.DB, roomID, memberID); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrRoomNotFound
	}
	return s.Repo.CreateChatMessage(ctx, s.DB, roomID, memberID, content)
}

// Messages returns a page of a room's messages, oldest first, plus the
// total count for pagination metadata. It applies defaults for invalid
// page/pageSize.
func (s *ChatService) Messages(ctx context.Context, memberID, roomID string, page, pageSize int) ([]domain.ChatMessage, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 50
	}
	offset := (page - 1) * pageSize

	if ok, err := s.Repo.IsParticipant(ctx, s.DB, roomID, memberID); err != nil {
		return nil, 0, err
	} else if !ok {
		return nil, 0, ErrRoomNotFound
	}

	total, err := s.Repo.CountRoomMessages(ctx, s.DB, roomID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.ChatMessage{}, 0, nil
	}

	items, err := s.Repo.ListRoomMessagesPage(ctx, s.DB, roomID, offset, pageSize)
	return items, total, err
}

// normalizeMessage trims whitespace and collapses runs of whitespace to one
// space.
func normalizeMessage(s string) string {
	return whitespaceRE.ReplaceAllString(strings.TrimSpace(s), " ")
}

// whitespaceRE collapses consecutive whitespace to a single space.
var whitespaceRE = regexp.MustCompile(`\s+`)
