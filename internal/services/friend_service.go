// Package services – FriendService
//
// This file implements the FriendService: member search, the friend request
// lifecycle (request, accept, reject), the friend list annotated with each
// friend's current decayed caffeine level, and friendship removal. Accepting
// a request and creating the symmetric friendship pair happen in one
// transaction so the pair can never be half-created.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/jeiu/caffeine-backend/internal/decay"
	"github.com/jeiu/caffeine-backend/internal/domain"
	"github.com/jeiu/caffeine-backend/internal/repo"
)

// FriendView is one row of the friend list: the friend's identity plus their
// live caffeine level, so the list can be rendered without extra round trips.
type FriendView struct {
	ID           string  `json:"id"`
	Username     string  `json:"username"`
	Name         string  `json:"name"`
	ProfilePhoto string  `json:"profile_photo,omitempty"`
	EstimateMg   float64 `json:"estimate_mg"`
	DailyLimitMg float64 `json:"daily_limit_mg"`
	Status       string  `json:"status"`
}

// FriendService implements the social graph use-cases.
type FriendService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Loc is the timezone used for day boundaries; nil means UTC.
	Loc *time.Location
	// now is a test seam; defaults to time.Now.
	now func() time.Time
}

func (s *FriendService) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

func (s *FriendService) loc() *time.Location {
	if s.Loc != nil {
		return s.Loc
	}
	return time.UTC
}

// Search finds members by username or display name, excluding the searcher.
func (s *FriendService) Search(ctx context.Context, memberID, query string, limit int) ([]domain.Member, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.Member{}, nil
	}
	if limit <= 0 {
		limit = 20
	}
	return repo.SearchMembers(ctx, s.DB, memberID, query, limit)
}

// Request creates a pending friend request toward receiverID.
//
// Rejected cases: self-requests (ErrSelfFriend), unknown receivers
// (ErrMemberNotFound), existing friendships (ErrAlreadyFriends), and a
// pending request in either direction (ErrRequestPending).
func (s *FriendService) Request(ctx context.Context, requesterID, receiverID string) (*domain.FriendRequest, error) {
	if requesterID == receiverID {
		return nil, ErrSelfFriend
	}
	if _, err := repo.GetMember(ctx, s.DB, receiverID); err != nil {
		if isNotFound(err) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	if friends, err := repo.AreFriends(ctx, s.DB, requesterID, receiverID); err != nil {
		return nil, err
	} else if friends {
		return nil, ErrAlreadyFriends
	}
	if _, err := repo.PendingRequestBetween(ctx, s.DB, requesterID, receiverID); err == nil {
		return nil, ErrRequestPending
	} else if !isNotFound(err) {
		return nil, err
	}
	return repo.CreateFriendRequest(ctx, s.DB, requesterID, receiverID)
}

// Incoming lists pending requests addressed to the member, newest first.
func (s *FriendService) Incoming(ctx context.Context, memberID string) ([]domain.FriendRequest, error) {
	return repo.ListIncomingRequests(ctx, s.DB, memberID)
}

// Accept resolves a pending request addressed to memberID and creates the
// friendship pair atomically.
func (s *FriendService) Accept(ctx context.Context, memberID, requestID string) error {
	fr, err := repo.GetFriendRequest(ctx, s.DB, requestID)
	if err != nil {
		if isNotFound(err) {
			return ErrRequestNotFound
		}
		return err
	}
	if fr.ReceiverID != memberID {
		return ErrRequestNotFound
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.UpdateFriendRequestStatus(ctx, tx, requestID, domain.FriendRequestAccepted); err != nil {
			if isNotFound(err) {
				return ErrRequestNotFound
			}
			return err
		}
		if err := repo.CreateFriendshipPair(ctx, tx, fr.RequesterID, fr.ReceiverID); err != nil {
			if errors.Is(err, repo.ErrDuplicate) {
				return ErrAlreadyFriends
			}
			return err
		}
		return nil
	})
}

// Reject resolves a pending request addressed to memberID without creating a
// friendship.
func (s *FriendService) Reject(ctx context.Context, memberID, requestID string) error {
	fr, err := repo.GetFriendRequest(ctx, s.DB, requestID)
	if err != nil {
		if isNotFound(err) {
			return ErrRequestNotFound
		}
		return err
	}
	if fr.ReceiverID != memberID {
		return ErrRequestNotFound
	}
	if err := repo.UpdateFriendRequestStatus(ctx, s.DB, requestID, domain.FriendRequestRejected); err != nil {
		if isNotFound(err) {
			return ErrRequestNotFound
		}
		return err
	}
	return nil
}

// List returns the member's friends with each friend's decayed caffeine
// estimate and status, computed from their intake since local midnight.
func (s *FriendService) List(ctx context.Context, memberID string) ([]FriendView, error) {
	friends, err := repo.ListFriends(ctx, s.DB, memberID)
	if err != nil {
		return nil, err
	}
	now := s.clock()
	local := now.In(s.loc())
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.loc())

	out := make([]FriendView, 0, len(friends))
	for _, f := range friends {
		view := FriendView{
			ID:           f.ID,
			Username:     f.Username,
			Name:         f.Name,
			ProfilePhoto: f.ProfilePhoto,
			Status:       decay.StatusSafe,
		}
		if p, err := repo.GetProfileByMember(ctx, s.DB, f.ID); err == nil {
			events, err := repo.ListIntakeBetween(ctx, s.DB, f.ID, start, start.Add(24*time.Hour))
			if err != nil {
				return nil, err
			}
			view.EstimateMg = decay.Estimate(events, now)
			view.DailyLimitMg = p.DailyLimitMg
			view.Status = decay.StatusFor(view.EstimateMg, p.DailyLimitMg)
		} else if !isNotFound(err) {
			return nil, err
		}
		out = append(out, view)
	}
	return out, nil
}

// Remove deletes the friendship in both directions, or ErrNotFriends.
func (s *FriendService) Remove(ctx context.Context, memberID, friendID string) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return repo.DeleteFriendshipPair(ctx, tx, memberID, friendID)
	})
	if err != nil {
		if isNotFound(err) {
			return ErrNotFriends
		}
		return err
	}
	return nil
}
