// Package services defines the business logic for accounts, caffeine intake,
// challenges, the drink catalogue, friends, and chat. This file centralizes
// common service-level error values so that they can be consistently returned
// by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and translation
// into user-facing messages or HTTP status codes should be performed at the
// handler/controller layer.
package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/jeiu/caffeine-backend/internal/repo"
)

// Account and profile errors.
var (
	// ErrMemberNotFound indicates that the requested member does not exist.
	ErrMemberNotFound = errors.New("member not found")

	// ErrUsernameTaken is returned when signing up with a username that
	// already belongs to another account.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrInvalidCredentials is returned when login fails, without revealing
	// whether the username or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidLanguage is returned when a profile update carries a
	// language code that does not parse as a BCP 47 tag.
	ErrInvalidLanguage = errors.New("invalid language code")

	// ErrProfileNotFound indicates that the member has no caffeine profile.
	ErrProfileNotFound = errors.New("caffeine profile not found")
)

// Intake errors.
var (
	// ErrIntakeNotFound indicates that the requested intake event does not
	// exist or is not owned by the current member.
	ErrIntakeNotFound = errors.New("intake event not found")

	// ErrInvalidIntake is returned when an intake submission is malformed
	// (negative milligrams, missing drink name).
	ErrInvalidIntake = errors.New("invalid intake event")
)

// Challenge and points errors.
var (
	// ErrChallengeNotFound indicates an unknown challenge code.
	ErrChallengeNotFound = errors.New("challenge not found")

	// ErrChallengeNotClaimable is returned when a claim is attempted on a
	// challenge whose conditions are not currently met.
	ErrChallengeNotClaimable = errors.New("challenge not claimable")

	// ErrAlreadyClaimed is returned when the challenge was already claimed
	// for the current period (today for DAILY, ever for the rest).
	ErrAlreadyClaimed = errors.New("challenge already claimed")

	// ErrInsufficientPoints is returned when a shop deduction exceeds the
	// member's balance.
	ErrInsufficientPoints = errors.New("insufficient points")
)

// Catalogue errors.
var (
	// ErrBrandNotFound indicates that the requested brand does not exist.
	ErrBrandNotFound = errors.New("brand not found")

	// ErrMenuNotFound indicates that the requested menu does not exist.
	ErrMenuNotFound = errors.New("menu not found")

	// ErrDuplicateMenu is returned when a member registers a second custom
	// drink under the same name.
	ErrDuplicateMenu = errors.New("custom menu already exists")
)

// Social errors.
var (
	// ErrSelfFriend is returned when a member targets themselves with a
	// friend operation.
	ErrSelfFriend = errors.New("cannot befriend yourself")

	// ErrAlreadyFriends is returned when a request or pair already connects
	// the two members.
	ErrAlreadyFriends = errors.New("already friends")

	// ErrRequestPending is returned when a pending request already connects
	// the two members in either direction.
	ErrRequestPending = errors.New("friend request already pending")

	// ErrRequestNotFound indicates that the friend request does not exist,
	// was already resolved, or is not addressed to the current member.
	ErrRequestNotFound = errors.New("friend request not found")

	// ErrNotFriends is returned when an operation requires an existing
	// friendship (chat, removal) and none exists.
	ErrNotFriends = errors.New("not friends")

	// ErrRoomNotFound indicates that the chat room does not exist or the
	// member is not a participant.
	ErrRoomNotFound = errors.New("chat room not found")

	// ErrEmptyMessage is returned when a chat message contains no content.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrTooLong is returned when a chat message exceeds the maximum
	// configured length limit.
	ErrTooLong = errors.New("message too long")
)

// isNotFound treats repo-level not found sentinels as "not found" in a
// driver-agnostic way. It also checks gorm.ErrRecordNotFound for safety.
func isNotFound(err error) bool {
	if errors.Is(err, repo.ErrNotFound) {
		return true
	}
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// isDuplicate attempts to detect unique-constraint violations across drivers
// that may not map to gorm.ErrDuplicatedKey.
func isDuplicate(err error) bool {
	if errors.Is(err, repo.ErrDuplicate) || errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}
