package domain

import (
	"time"

	"gorm.io/gorm"
)

// Friend request states.
const (
	FriendRequestPending  = "pending"
	FriendRequestAccepted = "accepted"
	FriendRequestRejected = "rejected"
)

// FriendRequest is an invitation from one member to another. Accepting it
// creates the symmetric Friendship pair; rejecting it keeps the row for
// audit but allows a later re-request.
type FriendRequest struct {
	ID          string    `json:"id"           gorm:"type:char(36);primaryKey"`
	RequesterID string    `json:"requester_id" gorm:"type:char(36);not null;index"`
	ReceiverID  string    `json:"receiver_id"  gorm:"type:char(36);not null;index"`
	Status      string    `json:"status"       gorm:"type:varchar(16);not null;default:'pending';check:status IN ('pending','accepted','rejected')"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the database table name for FriendRequest.
func (FriendRequest) TableName() string { return "friend_requests" }

// Friendship links two members. Rows come in symmetric pairs: accepting a
// request inserts (a,b) and (b,a) in one transaction, and removal deletes
// both directions.
type Friendship struct {
	ID        string    `json:"id"        gorm:"type:char(36);primaryKey"`
	MemberID  string    `json:"member_id" gorm:"type:char(36);not null;uniqueIndex:ux_friend_pair,priority:1"`
	FriendID  string    `json:"friend_id" gorm:"type:char(36);not null;uniqueIndex:ux_friend_pair,priority:2"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for Friendship.
func (Friendship) TableName() string { return "friendships" }

// ChatRoom is a 1:1 conversation between two friends.
type ChatRoom struct {
	ID        string    `json:"id" gorm:"type:char(36);primaryKey"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for ChatRoom.
func (ChatRoom) TableName() string { return "chat_rooms" }

// RoomParticipant ties a member to a chat room. A member appears at most
// once per room.
type RoomParticipant struct {
	ID       string `json:"id"        gorm:"type:char(36);primaryKey"`
	RoomID   string `json:"room_id"   gorm:"type:char(36);not null;uniqueIndex:ux_room_member,priority:1"`
	MemberID string `json:"member_id" gorm:"type:char(36);not null;uniqueIndex:ux_room_member,priority:2;index"`

	// Room is the owning conversation. Participants are cascade-deleted with it.
	Room ChatRoom `json:"-" gorm:"foreignKey:RoomID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for RoomParticipant.
func (RoomParticipant) TableName() string { return "room_participants" }

// ChatMessage is a single utterance inside a chat room.
type ChatMessage struct {
	ID        string         `json:"id"        gorm:"type:char(36);primaryKey"`
	RoomID    string         `json:"room_id"   gorm:"type:char(36);not null;index:idx_room_msgs,priority:1"`
	SenderID  string         `json:"sender_id" gorm:"type:char(36);not null"`
	Content   string         `json:"content"   gorm:"type:text;not null"`
	CreatedAt time.Time      `json:"created_at" gorm:"index:idx_room_msgs,priority:2"`
	DeletedAt gorm.DeletedAt `json:"-"         gorm:"index"`

	// Room is the parent conversation. Messages are cascade-deleted with it.
	Room ChatRoom `json:"-" gorm:"foreignKey:RoomID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for ChatMessage.
func (ChatMessage) TableName() string { return "chat_messages" }
