// Challenge HTTP handlers.
//
// This file exposes the REST endpoints for the challenge catalogue:
//   - GET  /challenges              (catalogue with derived status per member)
//   - POST /challenges/{code}/claim (claim a completed challenge)
//
// Statuses are derived on demand from the intake log; nothing here is cached,
// so a claim immediately after a qualifying drink just works.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jeiu/caffeine-backend/internal/services"
)

// ListChallenges godoc
// @ID          listChallenges
// @Summary     List challenges with live status
// @Tags        Challenges
// @Produce     json
// @Success     200  {array}  services.ChallengeView
// @Failure     404  {object} handlers.ErrorResponse "Profile not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /challenges [get]
func (h *Handlers) ListChallenges(c *gin.Context) {
	uid, okID := requireMember(c)
	if !okID {
		return
	}
	views, err := h.challengeSvc.List(c.Request.Context(), uid)
	if err != nil {
		if errors.Is(err, services.ErrProfileNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "caffeine profile not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, views)
}

// ClaimChallenge godoc
// @ID          claimChallenge
// @Summary     Claim a challenge
// @Description Credits points for a currently claimable challenge. Daily challenges reset at midnight; streak and cumulative ones are claimable once.
// @Tags        Challenges
// @Produce     json
// @Success     200  {object} services.ClaimResult
// @Failure     404  {object} handlers.ErrorResponse "Unknown challenge"
// @Failure     409  {object} handlers.ErrorResponse "Already claimed"
// @Failure     422  {object} handlers.ErrorResponse "Not claimable"
// @Router      /challenges/{code}/claim [post]
func (h *Handlers) ClaimChallenge(c *gin.Context) {
	uid, okID := requireMember(c)
	if !okID {
		return
	}
	code := c.Param("code")

	res, err := h.challengeSvc.Claim(c.Request.Context(), uid, code)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrChallengeNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "challenge not found")
		case errors.Is(err, services.ErrChallengeNotClaimable):
			fail(c, http.StatusUnprocessableEntity, ErrCodeNotClaimable, "challenge is not claimable yet")
		case errors.Is(err, services.ErrAlreadyClaimed):
			fail(c, http.StatusConflict, ErrCodeAlreadyClaimed, "challenge already claimed")
		case errors.Is(err, services.ErrProfileNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "caffeine profile not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, res)
}
