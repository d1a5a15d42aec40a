// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, authentication, idempotency, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/jeiu/caffeine-backend/internal/challenge"
	"github.com/jeiu/caffeine-backend/internal/config"
	"github.com/jeiu/caffeine-backend/internal/domain"
	"github.com/jeiu/caffeine-backend/internal/http/handlers"
	"github.com/jeiu/caffeine-backend/internal/http/middleware"
	"github.com/jeiu/caffeine-backend/internal/repo"
	"github.com/jeiu/caffeine-backend/internal/services"
)

// chatRepoShim adapts the repository free functions to the services.ChatRepo
// interface expected by the ChatService. This keeps services decoupled from
// the concrete repo package while reusing existing functions.
type chatRepoShim struct{}

// FindDirectRoom proxies repo.FindDirectRoom.
func (chatRepoShim) FindDirectRoom(ctx context.Context, db *gorm.DB, a, b string) (*domain.ChatRoom, error) {
	return repo.FindDirectRoom(ctx, db, a, b)
}

// CreateDirectRoom proxies repo.CreateDirectRoom.
func (chatRepoShim) CreateDirectRoom(ctx context.Context, db *gorm.DB, a, b string) (*domain.ChatRoom, error) {
	return repo.CreateDirectRoom(ctx, db, a, b)
}

// ListRoomsForMember proxies repo.ListRoomsForMember.
func (chatRepoShim) ListRoomsForMember(ctx context.Context, db *gorm.DB, memberID string) ([]domain.ChatRoom, error) {
	return repo.ListRoomsForMember(ctx, db, memberID)
}

// RoomPeer proxies repo.RoomPeer.
func (chatRepoShim) RoomPeer(ctx context.Context, db *gorm.DB, roomID, memberID string) (*domain.Member, error) {
	return repo.RoomPeer(ctx, db, roomID, memberID)
}

// IsParticipant proxies repo.IsParticipant.
func (chatRepoShim) IsParticipant(ctx context.Context, db *gorm.DB, roomID, memberID string) (bool, error) {
	return repo.IsParticipant(ctx, db, roomID, memberID)
}

// CreateChatMessage proxies repo.CreateChatMessage.
func (chatRepoShim) CreateChatMessage(ctx context.Context, db *gorm.DB, roomID, senderID, content string) (*domain.ChatMessage, error) {
	return repo.CreateChatMessage(ctx, db, roomID, senderID, content)
}

// CountRoomMessages proxies repo.CountRoomMessages.
func (chatRepoShim) CountRoomMessages(ctx context.Context, db *gorm.DB, roomID string) (int64, error) {
	return repo.CountRoomMessages(ctx, db, roomID)
}

// ListRoomMessagesPage proxies repo.ListRoomMessagesPage.
func (chatRepoShim) ListRoomMessagesPage(ctx context.Context, db *gorm.DB, roomID string, offset, limit int) ([]domain.ChatMessage, error) {
	return repo.ListRoomMessagesPage(ctx, db, roomID, offset, limit)
}

// friendCheckShim satisfies services.FriendChecker over the friendship table.
type friendCheckShim struct{ db *gorm.DB }

func (s friendCheckShim) AreFriends(ctx context.Context, a, b string) (bool, error) {
	return repo.AreFriends(ctx, s.db, a, b)
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), authentication,
// idempotency and rate limiting, CORS and security headers, health and metrics
// endpoints, and then mounts the versioned public API under /api/v*.
//
// menuSvc may be nil; a fresh service is built over db in that case. Passing
// it in lets the caller rebuild the catalogue search index at startup and
// share the instance. kicker, when non-nil, is poked after intake mutations
// so stale-total reconciliation runs promptly.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Structured logging (PII-redacting variant when configured)
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. CORS and Security headers
//
// Authenticated groups additionally run, in order: bearer-token auth,
// idempotency validation, then the rate limiter (so idempotent replays bypass
// limiting). The public /auth endpoints carry their own IP-keyed limiter.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, menuSvc *services.MenuService, kicker services.Kicker, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging; the redacting variant scrubs PII when enabled
	if cfg.LogRedact {
		r.Use(middleware.RedactingLogger(middleware.RedactOptions{
			MaskHeaders: []string{middleware.HeaderIdempotencyKey},
		}))
	} else {
		r.Use(middleware.Logger())
	}

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Compress responses; Prometheus scrapes handle their own encoding.
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	// 7) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Dependency injection: services ← repo/db
	loc := cfg.Location()
	authSvc := &services.AuthService{DB: db, Secret: []byte(cfg.JWTSecret), TokenTTL: cfg.TokenTTL}
	intakeSvc := &services.IntakeService{DB: db, Loc: loc, Refresher: kicker}
	challengeSvc := &services.ChallengeService{DB: db, Registry: challenge.NewRegistry(), Loc: loc}
	pointsSvc := &services.PointsService{DB: db}
	profileSvc := &services.ProfileService{DB: db}
	if menuSvc == nil {
		menuSvc = &services.MenuService{DB: db}
	}
	friendSvc := &services.FriendService{DB: db, Loc: loc}
	chatSvc := services.NewChatService(db, chatRepoShim{}, friendCheckShim{db: db})
	if cfg.ChatMsgMaxLen > 0 {
		chatSvc.MessageMaxLen = cfg.ChatMsgMaxLen
	}

	h := handlers.New(authSvc, intakeSvc, challengeSvc, pointsSvc, profileSvc, menuSvc, friendSvc, chatSvc)
	if cfg.IdempotencyTTL > 0 {
		h.IdemTTL = cfg.IdempotencyTTL
	}

	// Public API
	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	api := groupWithPrefix(r, apiBase)

	// Authentication endpoints: public, but behind their own IP-keyed limiter
	// so credential stuffing burns the caller's bucket, not a member's.
	authRL := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByMemberOrIP())
	auth := api.Group("/auth", authRL.Handler())
	{
		auth.POST("/signup", h.Signup)
		auth.POST("/login", h.Login)
	}

	// Catalogue browsing needs no account.
	catalog := api.Group("")
	{
		catalog.GET("/brands", h.ListBrands)
		catalog.GET("/brands/:id/menus", h.ListBrandMenus)
		catalog.GET("/menus", h.ListMenus)
		catalog.GET("/menus/search", h.SearchMenus)
	}

	// Everything else requires a bearer token. Idempotency validation runs
	// before the rate limiter so detected replays bypass limiting.
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByMemberOrIP())
	protected := api.Group("",
		middleware.RequireAuth(authSvc),
		middleware.IdempotencyValidator(
			middleware.IdempotencyOptions{MaxLen: 200},
			func(ctx context.Context, memberID, key string, now time.Time) (bool, error) {
				rec, err := repo.GetIdempotency(ctx, db, memberID, key, now)
				if err != nil || rec == nil {
					return false, nil
				}
				return true, nil
			},
		),
		rl.Handler(),
	)
	{
		// Intake log
		protected.POST("/caffeine/intakes", h.LogIntake)
		protected.GET("/caffeine/today", h.TodayIntakes)
		protected.GET("/caffeine/history", h.IntakeHistory)
		protected.DELETE("/caffeine/intakes/:id", h.DeleteIntake)
		protected.DELETE("/caffeine/today", h.ResetToday)
		protected.GET("/caffeine/info", h.CaffeineInfo)
		protected.PUT("/caffeine/info", h.UpdateCaffeineInfo)
		protected.GET("/caffeine/level", h.CaffeineLevel)

		// Challenges
		protected.GET("/challenges", h.ListChallenges)
		protected.POST("/challenges/:code/claim", h.ClaimChallenge)

		// Shop points
		protected.GET("/shop/points", h.GetPoints)
		protected.POST("/shop/points/deduct", h.DeductPoints)

		// Profile
		protected.GET("/profile", h.GetProfile)
		protected.PUT("/profile", h.UpdateProfile)

		// Custom drinks
		protected.POST("/menus/custom", h.CreateCustomMenu)
		protected.GET("/menus/custom", h.ListCustomMenus)
		protected.PUT("/menus/custom/:id", h.UpdateCustomMenu)
		protected.DELETE("/menus/custom/:id", h.DeleteCustomMenu)

		// Friends
		protected.GET("/friends", h.ListFriends)
		protected.GET("/friends/search", h.SearchMembers)
		protected.POST("/friends/requests", h.SendFriendRequest)
		protected.GET("/friends/requests", h.ListFriendRequests)
		protected.POST("/friends/requests/:id/accept", h.AcceptFriendRequest)
		protected.POST("/friends/requests/:id/reject", h.RejectFriendRequest)
		protected.DELETE("/friends/:id", h.RemoveFriend)

		// Chat
		protected.POST("/chat/rooms", h.OpenRoom)
		protected.GET("/chat/rooms", h.ListRooms)
		protected.POST("/chat/rooms/:id/messages", h.SendMessage)
		protected.GET("/chat/rooms/:id/messages", h.ListRoomMessages)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
