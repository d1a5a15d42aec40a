// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the service contracts the handlers consume and the
// Handlers aggregate that the router wires up. Handlers are transport-thin:
// they validate input, call application services, and translate results into
// HTTP responses. Business rules live in the services package; stable error
// codes live in errors.go.
package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jeiu/caffeine-backend/internal/domain"
	"github.com/jeiu/caffeine-backend/internal/services"
	"github.com/jeiu/caffeine-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// AuthService defines the account operations consumed by HTTP handlers.
type AuthService interface {
	// Signup creates a member plus their default caffeine profile.
	Signup(ctx context.Context, username, name, password string) (*domain.Member, error)
	// Login verifies credentials and returns a signed token plus the member.
	Login(ctx context.Context, username, password string) (string, *domain.Member, error)
}

// IntakeService defines the intake log operations consumed by HTTP handlers.
type IntakeService interface {
	// Log records a drink and keeps the daily cache in step.
	Log(ctx context.Context, memberID string, in services.IntakeInput) (*domain.IntakeEvent, error)
	// Today returns today's events in consumption order.
	Today(ctx context.Context, memberID string) ([]domain.IntakeEvent, error)
	// History returns the events in [start, end).
	History(ctx context.Context, memberID string, start, end time.Time) ([]domain.IntakeEvent, error)
	// Delete removes one event owned by the member.
	Delete(ctx context.Context, memberID, eventID string) error
	// ResetToday deletes all of today's events and zeroes the cache.
	ResetToday(ctx context.Context, memberID string) (int64, error)
	// Info returns the caffeine profile with a reconciled daily total.
	Info(ctx context.Context, memberID string) (*domain.CaffeineProfile, error)
	// UpdateInfo changes the weight and/or daily limit.
	UpdateInfo(ctx context.Context, memberID string, weightKg, dailyLimitMg *float64) (*domain.CaffeineProfile, error)
	// Level computes the decayed active-caffeine estimate.
	Level(ctx context.Context, memberID string) (*services.Level, error)
}

// ChallengeService defines challenge listing and claiming.
type ChallengeService interface {
	// List returns the catalogue with derived status per member.
	List(ctx context.Context, memberID string) ([]services.ChallengeView, error)
	// Claim records a claim and credits points.
	Claim(ctx context.Context, memberID, code string) (*services.ClaimResult, error)
}

// PointsService defines shop balance operations.
type PointsService interface {
	// Balance returns the member's current points.
	Balance(ctx context.Context, memberID string) (int, error)
	// Deduct spends points and returns the new balance.
	Deduct(ctx context.Context, memberID string, amount int) (int, error)
}

// ProfileService defines profile screen operations.
type ProfileService interface {
	// Get returns the combined member + caffeine settings view.
	Get(ctx context.Context, memberID string) (*services.Profile, error)
	// Update applies the submitted fields and returns the fresh view.
	Update(ctx context.Context, memberID string, in services.ProfileUpdate) (*services.Profile, error)
}

// MenuService defines catalogue and custom drink operations.
type MenuService interface {
	Brands(ctx context.Context) ([]domain.Brand, error)
	BrandMenus(ctx context.Context, brandID string) ([]domain.Menu, error)
	Menus(ctx context.Context) ([]domain.Menu, error)
	Search(ctx context.Context, query string, k int) ([]services.MenuHit, error)
	CreateCustom(ctx context.Context, memberID, name string, caffeineMg float64) (*domain.CustomMenu, error)
	ListCustom(ctx context.Context, memberID string) ([]domain.CustomMenu, error)
	UpdateCustom(ctx context.Context, memberID, id string, name *string, caffeineMg *float64) error
	DeleteCustom(ctx context.Context, memberID, id string) error
}

// FriendService defines social graph operations.
type FriendService interface {
	Search(ctx context.Context, memberID, query string, limit int) ([]domain.Member, error)
	Request(ctx context.Context, requesterID, receiverID string) (*domain.FriendRequest, error)
	Incoming(ctx context.Context, memberID string) ([]domain.FriendRequest, error)
	Accept(ctx context.Context, memberID, requestID string) error
	Reject(ctx context.Context, memberID, requestID string) error
	List(ctx context.Context, memberID string) ([]services.FriendView, error)
	Remove(ctx context.Context, memberID, friendID string) error
}

// ChatService defines 1:1 room operations.
type ChatService interface {
	OpenRoom(ctx context.Context, memberID, peerID string) (*domain.ChatRoom, error)
	Rooms(ctx context.Context, memberID string) ([]services.RoomView, error)
	Send(ctx context.Context, memberID, roomID, content string) (*domain.ChatMessage, error)
	Messages(ctx context.Context, memberID, roomID string, page, pageSize int) ([]domain.ChatMessage, int64, error)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for every resource. It depends on
// abstract service interfaces to keep transport concerns separate from
// business logic.
type Handlers struct {
	authSvc      AuthService
	intakeSvc    IntakeService
	challengeSvc ChallengeService
	pointsSvc    PointsService
	profileSvc   ProfileService
	menuSvc      MenuService
	friendSvc    FriendService
	chatSvc      ChatService

	// IdemTTL is how long a recorded Idempotency-Key stays replayable.
	IdemTTL time.Duration
}

// New constructs a Handlers instance bound to the given services.
func New(
	authSvc AuthService,
	intakeSvc IntakeService,
	challengeSvc ChallengeService,
	pointsSvc PointsService,
	profileSvc ProfileService,
	menuSvc MenuService,
	friendSvc FriendService,
	chatSvc ChatService,
) *Handlers {
	return &Handlers{
		authSvc:      authSvc,
		intakeSvc:    intakeSvc,
		challengeSvc: challengeSvc,
		pointsSvc:    pointsSvc,
		profileSvc:   profileSvc,
		menuSvc:      menuSvc,
		friendSvc:    friendSvc,
		chatSvc:      chatSvc,
		IdemTTL:      24 * time.Hour,
	}
}

// memberID extracts the authenticated member id from Gin context (set by the
// auth middleware). If absent, it falls back to the "X-Member-ID" header
// (tests use it). It never touches c.Request if it's nil.
func memberID(c *gin.Context) string {
	if v, ok := c.Get("memberID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-Member-ID")); h != "" {
			return h
		}
	}
	return ""
}

// requireMember returns the authenticated member id or aborts with 401.
func requireMember(c *gin.Context) (string, bool) {
	id := memberID(c)
	if id == "" {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
		return "", false
	}
	return id, true
}

//
// Shared DTOs and helpers
//

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// clampPagination parses and bounds page and page_size query params to the
// API-wide defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	return utils.PageParams(c.Query("page"), c.Query("page_size"))
}
