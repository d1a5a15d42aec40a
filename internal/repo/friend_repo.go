// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for friend
// requests and the symmetric friendship pairs they produce.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jeiu/caffeine-backend/internal/domain"
)

// CreateFriendRequest inserts a pending request from requester to receiver.
func CreateFriendRequest(ctx context.Context, db *gorm.DB, requesterID, receiverID string) (*domain.FriendRequest, error) {
	now := time.Now().UTC()
	fr := &domain.FriendRequest{
		ID:          uuid.NewString(),
		RequesterID: requesterID,
		ReceiverID:  receiverID,
		Status:      domain.FriendRequestPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := db.WithContext(ctx).Create(fr).Error; err != nil {
		return nil, err
	}
	return fr, nil
}

// GetFriendRequest fetches a request by ID, or ErrNotFound.
func GetFriendRequest(ctx context.Context, db *gorm.DB, id string) (*domain.FriendRequest, error) {
	var fr domain.FriendRequest
	if err := db.WithContext(ctx).First(&fr, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &fr, nil
}

// PendingRequestBetween returns the pending request connecting a and b in
// either direction, or ErrNotFound.
func PendingRequestBetween(ctx context.Context, db *gorm.DB, a, b string) (*domain.FriendRequest, error) {
	var fr domain.FriendRequest
	err := db.WithContext(ctx).
		Where("status = ? AND ((requester_id = ? AND receiver_id = ?) OR (requester_id = ? AND receiver_id = ?))",
			domain.FriendRequestPending, a, b, b, a).
		First(&fr).Error
	if err != nil {
		return nil, err
	}
	return &fr, nil
}

// ListIncomingRequests returns pending requests addressed to memberID,
// newest first.
func ListIncomingRequests(ctx context.Context, db *gorm.DB, memberID string) ([]domain.FriendRequest, error) {
	var out []domain.FriendRequest
	err := db.WithContext(ctx).
		Where("receiver_id = ? AND status = ?", memberID, domain.FriendRequestPending).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// UpdateFriendRequestStatus transitions a pending request to status. Zero
// rows affected (missing row or already resolved) returns ErrNotFound.
func UpdateFriendRequestStatus(ctx context.Context, db *gorm.DB, id, status string) error {
	res := db.WithContext(ctx).
		Model(&domain.FriendRequest{}).
		Where("id = ? AND status = ?", id, domain.FriendRequestPending).
		Updates(map[string]any{"status": status, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CreateFriendshipPair inserts both directions of a friendship. Call inside
// a transaction so the pair stays symmetric. An existing pair surfaces as
// ErrDuplicate.
func CreateFriendshipPair(ctx context.Context, db *gorm.DB, a, b string) error {
	now := time.Now().UTC()
	rows := []domain.Friendship{
		{ID: uuid.NewString(), MemberID: a, FriendID: b, CreatedAt: now},
		{ID: uuid.NewString(), MemberID: b, FriendID: a, CreatedAt: now},
	}
	if err := db.WithContext(ctx).Create(&rows).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// DeleteFriendshipPair removes both directions of a friendship and reports
// ErrNotFound when the members were not friends.
func DeleteFriendshipPair(ctx context.Context, db *gorm.DB, a, b string) error {
	res := db.WithContext(ctx).
		Where("(member_id = ? AND friend_id = ?) OR (member_id = ? AND friend_id = ?)", a, b, b, a).
		Delete(&domain.Friendship{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AreFriends reports whether a friendship row exists from a to b.
func AreFriends(ctx context.Context, db *gorm.DB, a, b string) (bool, error) {
	var cnt int64
	err := db.WithContext(ctx).
		Model(&domain.Friendship{}).
		Where("member_id = ? AND friend_id = ?", a, b).
		Count(&cnt).Error
	return cnt > 0, err
}

// ListFriends returns the member rows of everyone memberID is friends with,
// ordered by name.
func ListFriends(ctx context.Context, db *gorm.DB, memberID string) ([]domain.Member, error) {
	var out []domain.Member
	err := db.WithContext(ctx).
		Joins("JOIN friendships f ON f.friend_id = members.id").
		Where("f.member_id = ?", memberID).
		Order("members.name asc").
		Find(&out).Error
	return out, err
}
