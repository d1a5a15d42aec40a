// Profile HTTP handlers.
//
// This file exposes the REST endpoints for the member profile screen:
//   - GET /profile  (combined member + caffeine settings view)
//   - PUT /profile  (partial update; omitted fields stay unchanged)
//
// Changing weight or birth date without an explicit daily limit re-derives
// the recommended limit in the service layer.
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jeiu/caffeine-backend/internal/services"
)

// UpdateProfileRequest is the JSON payload for a partial profile update.
// Omitted (null) fields are left unchanged.
type UpdateProfileRequest struct {
	Name         *string    `json:"name,omitempty" example:"Coffee Cat"`
	ProfilePhoto *string    `json:"profile_photo,omitempty"`
	LanguageCode *string    `json:"language_code,omitempty" example:"ko"`
	WeightKg     *float64   `json:"weight_kg,omitempty" example:"68.5"`
	Gender       *string    `json:"gender,omitempty" example:"F"`
	BirthDate    *time.Time `json:"birth_date,omitempty"`
	DailyLimitMg *float64   `json:"daily_limit_mg,omitempty" example:"300"`
}

// GetProfile godoc
// @ID          getProfile
// @Summary     Get the member profile
// @Tags        Profile
// @Produce     json
// @Success     200  {object} services.Profile
// @Failure     404  {object} handlers.ErrorResponse "Not found"
// @Router      /profile [get]
func (h *Handlers) GetProfile(c *gin.Context) {
	uid, okID := requireMember(c)
	if !okID {
		return
	}
	p, err := h.profileSvc.Get(c.Request.Context(), uid)
	if err != nil {
		if errors.Is(err, services.ErrMemberNotFound) || errors.Is(err, services.ErrProfileNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "profile not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, p)
}

// UpdateProfile godoc
// @ID          updateProfile
// @Summary     Update the member profile
// @Tags        Profile
// @Accept      json
// @Produce     json
// @Success     200  {object} services.Profile
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Not found"
// @Router      /profile [put]
func (h *Handlers) UpdateProfile(c *gin.Context) {
	uid, okID := requireMember(c)
	if !okID {
		return
	}
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	p, err := h.profileSvc.Update(c.Request.Context(), uid, services.ProfileUpdate{
		Name:         req.Name,
		ProfilePhoto: req.ProfilePhoto,
		LanguageCode: req.LanguageCode,
		WeightKg:     req.WeightKg,
		Gender:       req.Gender,
		BirthDate:    req.BirthDate,
		DailyLimitMg: req.DailyLimitMg,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidLanguage):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "language_code must be a BCP 47 tag")
		case errors.Is(err, services.ErrMemberNotFound), errors.Is(err, services.ErrProfileNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "profile not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, p)
}
