// Intake HTTP handlers.
//
// This file exposes the REST endpoints for the caffeine intake log:
//   - POST   /caffeine/intakes      (log a drink, idempotent via Idempotency-Key)
//   - GET    /caffeine/today        (today's events)
//   - GET    /caffeine/history      (events in a window, ETag support)
//   - DELETE /caffeine/intakes/{id} (remove one event)
//   - DELETE /caffeine/today        (reset today)
//   - GET    /caffeine/info         (profile with reconciled daily total)
//   - PUT    /caffeine/info         (update weight / daily limit)
//   - GET    /caffeine/level        (decayed active-caffeine estimate)
//
// Idempotency:
// If the client supplies an Idempotency-Key header and a previous successful
// log exists for (member, key), the handler returns the recorded event and
// sets `Idempotency-Replayed: true`.
package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jeiu/caffeine-backend/internal/domain"
	"github.com/jeiu/caffeine-backend/internal/http/middleware"
	"github.com/jeiu/caffeine-backend/internal/repo"
	"github.com/jeiu/caffeine-backend/internal/services"
)

//
// DTOs
//

// LogIntakeRequest is the JSON payload for logging a drink.
type LogIntakeRequest struct {
	BrandName  string  `json:"brand_name" example:"Starbucks"`
	DrinkName  string  `json:"drink_name" binding:"required,min=1,max=128" example:"Caffe Americano"`
	Milligrams float64 `json:"milligrams" example:"150"`
	Temp       string  `json:"temp" example:"hot"`
	// MenuID optionally points at a catalogue entry; when present the
	// milligrams are resolved from the catalogue.
	MenuID *string `json:"menu_id,omitempty"`
	// ConsumedAt defaults to now when omitted (RFC 3339).
	ConsumedAt *time.Time `json:"consumed_at,omitempty"`
}

// UpdateInfoRequest is the JSON payload for changing caffeine settings.
type UpdateInfoRequest struct {
	WeightKg     *float64 `json:"weight_kg,omitempty" example:"68.5"`
	DailyLimitMg *float64 `json:"daily_limit_mg,omitempty" example:"300"`
}

// ResetTodayResponse reports how many events a reset removed.
type ResetTodayResponse struct {
	Removed int64 `json:"removed"`
}

//
// Helpers
//

// idempotencyKey reads a validated Idempotency-Key if the upstream middleware
// stashed one, falling back to the raw header.
func idempotencyKey(c *gin.Context) string {
	if key, ok := middleware.GetIdempotencyKey(c); ok {
		return key
	}
	return strings.TrimSpace(c.GetHeader(middleware.HeaderIdempotencyKey))
}

// intakeDB exposes the concrete service's DB handle for ETag and idempotency
// lookups; nil when the handler is wired with a test double.
func (h *Handlers) intakeDB() *gorm.DB {
	if svc, ok := h.intakeSvc.(*services.IntakeService); ok {
		return svc.DB
	}
	return nil
}

//
// Handlers
//

// LogIntake godoc
// @ID          logIntake
// @Summary     Log a drink
// @Description Records an intake event. Supports idempotency via the Idempotency-Key header.
// @Tags        Intake
// @Accept      json
// @Produce     json
// @Success     201  {object} domain.IntakeEvent
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /caffeine/intakes [post]
func (h *Handlers) LogIntake(c *gin.Context) {
	ctx := c.Request.Context()
	uid, okID := requireMember(c)
	if !okID {
		return
	}

	var req LogIntakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "drink_name required")
		return
	}
	if req.Milligrams < 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "milligrams must not be negative")
		return
	}

	// Idempotency (replay path).
	idemKey := idempotencyKey(c)
	if idemKey != "" {
		if db := h.intakeDB(); db != nil {
			if rec, err := repo.GetIdempotency(ctx, db, uid, idemKey, time.Now().UTC()); err == nil && rec != nil {
				if prev, err2 := repo.GetIntake(ctx, db, rec.EventID, uid); err2 == nil {
					c.Header("Idempotency-Replayed", "true")
					ok(c, http.StatusCreated, prev)
					return
				}
			}
		}
	}

	in := services.IntakeInput{
		BrandName:  req.BrandName,
		DrinkName:  req.DrinkName,
		Milligrams: req.Milligrams,
		Temp:       req.Temp,
		MenuID:     req.MenuID,
	}
	if req.ConsumedAt != nil {
		in.ConsumedAt = *req.ConsumedAt
	}

	ev, err := h.intakeSvc.Log(ctx, uid, in)
	if err != nil {
		if err == services.ErrInvalidIntake {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid intake event")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		return
	}

	// Idempotency (store path), best effort.
	if idemKey != "" {
		if db := h.intakeDB(); db != nil {
			ttl := h.IdemTTL
			if ttl <= 0 {
				ttl = 24 * time.Hour
			}
			_, _ = repo.CreateIdempotency(ctx, db, uid, idemKey, ev.ID, http.StatusCreated, ttl)
		}
	}
	ok(c, http.StatusCreated, ev)
}

// TodayIntakes godoc
// @ID          todayIntakes
// @Summary     List today's intake events
// @Tags        Intake
// @Produce     json
// @Success     200  {array}  domain.IntakeEvent
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /caffeine/today [get]
func (h *Handlers) TodayIntakes(c *gin.Context) {
	uid, okID := requireMember(c)
	if !okID {
		return
	}
	events, err := h.intakeSvc.Today(c.Request.Context(), uid)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	if events == nil {
		events = []domain.IntakeEvent{}
	}
	ok(c, http.StatusOK, events)
}

// IntakeHistory godoc
// @ID          intakeHistory
// @Summary     List intake events in a window
// @Description Returns events in [start, end) (RFC 3339, default trailing 7 days). Supports weak ETag via If-None-Match.
// @Tags        Intake
// @Produce     json
// @Success     200  {array}  domain.IntakeEvent
// @Success     304  {string} string "Not Modified"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /caffeine/history [get]
func (h *Handlers) IntakeHistory(c *gin.Context) {
	ctx := c.Request.Context()
	uid, okID := requireMember(c)
	if !okID {
		return
	}

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -7)
	if raw := c.Query("start"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "start must be RFC 3339")
			return
		}
		start = t
	}
	if raw := c.Query("end"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "end must be RFC 3339")
			return
		}
		end = t
	}
	if !start.Before(end) {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "start must precede end")
		return
	}

	// ETag pre-check (best effort).
	if db := h.intakeDB(); db != nil {
		count, maxTS, err := repo.IntakeStats(ctx, db, uid)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"intakes:%s:%d:%d"`, uid, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	events, err := h.intakeSvc.History(ctx, uid, start, end)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	if events == nil {
		events = []domain.IntakeEvent{}
	}
	ok(c, http.StatusOK, events)
}

// DeleteIntake godoc
// @ID          deleteIntake
// @Summary     Remove one intake event
// @Tags        Intake
// @Produce     json
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Event not found"
// @Router      /caffeine/intakes/{id} [delete]
func (h *Handlers) DeleteIntake(c *gin.Context) {
	uid, okID := requireMember(c)
	if !okID {
		return
	}
	eventID := c.Param("id")
	if _, err := uuid.Parse(eventID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "event id must be a UUID")
		return
	}

	if err := h.intakeSvc.Delete(c.Request.Context(), uid, eventID); err != nil {
		if err == services.ErrIntakeNotFound {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "intake event not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	noContent(c)
}

// ResetToday godoc
// @ID          resetToday
// @Summary     Delete all of today's intake events
// @Tags        Intake
// @Produce     json
// @Success     200  {object} handlers.ResetTodayResponse
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /caffeine/today [delete]
func (h *Handlers) ResetToday(c *gin.Context) {
	uid, okID := requireMember(c)
	if !okID {
		return
	}
	n, err := h.intakeSvc.ResetToday(c.Request.Context(), uid)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, ResetTodayResponse{Removed: n})
}

// CaffeineInfo godoc
// @ID          caffeineInfo
// @Summary     Get the caffeine profile
// @Description Returns the member's caffeine settings with a daily total reconciled across midnight.
// @Tags        Intake
// @Produce     json
// @Success     200  {object} domain.CaffeineProfile
// @Failure     404  {object} handlers.ErrorResponse "Profile not found"
// @Router      /caffeine/info [get]
func (h *Handlers) CaffeineInfo(c *gin.Context) {
	uid, okID := requireMember(c)
	if !okID {
		return
	}
	p, err := h.intakeSvc.Info(c.Request.Context(), uid)
	if err != nil {
		if err == services.ErrProfileNotFound {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "caffeine profile not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, p)
}

// UpdateCaffeineInfo godoc
// @ID          updateCaffeineInfo
// @Summary     Update caffeine settings
// @Tags        Intake
// @Accept      json
// @Produce     json
// @Success     200  {object} domain.CaffeineProfile
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Profile not found"
// @Router      /caffeine/info [put]
func (h *Handlers) UpdateCaffeineInfo(c *gin.Context) {
	uid, okID := requireMember(c)
	if !okID {
		return
	}
	var req UpdateInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	p, err := h.intakeSvc.UpdateInfo(c.Request.Context(), uid, req.WeightKg, req.DailyLimitMg)
	if err != nil {
		if err == services.ErrProfileNotFound {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "caffeine profile not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, p)
}

// CaffeineLevel godoc
// @ID          caffeineLevel
// @Summary     Get the current decayed caffeine level
// @Tags        Intake
// @Produce     json
// @Success     200  {object} services.Level
// @Failure     404  {object} handlers.ErrorResponse "Profile not found"
// @Router      /caffeine/level [get]
func (h *Handlers) CaffeineLevel(c *gin.Context) {
	uid, okID := requireMember(c)
	if !okID {
		return
	}
	lvl, err := h.intakeSvc.Level(c.Request.Context(), uid)
	if err != nil {
		if err == services.ErrProfileNotFound {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "caffeine profile not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, lvl)
}
