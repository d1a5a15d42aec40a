// Shop HTTP handlers.
//
// This file exposes the REST endpoints for challenge points:
//   - GET  /shop/points  (current balance)
//   - POST /shop/deduct  (spend points)
//
// The balance can never go negative; overspending is a 422.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jeiu/caffeine-backend/internal/services"
)

// DeductPointsRequest is the JSON payload for spending points.
type DeductPointsRequest struct {
	Amount int `json:"amount" binding:"required,min=1" example:"5"`
}

// PointsResponse carries a points balance.
type PointsResponse struct {
	Balance int `json:"balance"`
}

// GetPoints godoc
// @ID          getPoints
// @Summary     Get the points balance
// @Tags        Shop
// @Produce     json
// @Success     200  {object} handlers.PointsResponse
// @Failure     404  {object} handlers.ErrorResponse "Member not found"
// @Router      /shop/points [get]
func (h *Handlers) GetPoints(c *gin.Context) {
	uid, okID := requireMember(c)
	if !okID {
		return
	}
	balance, err := h.pointsSvc.Balance(c.Request.Context(), uid)
	if err != nil {
		if errors.Is(err, services.ErrMemberNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "member not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, PointsResponse{Balance: balance})
}

// DeductPoints godoc
// @ID          deductPoints
// @Summary     Spend points
// @Tags        Shop
// @Accept      json
// @Produce     json
// @Success     200  {object} handlers.PointsResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     422  {object} handlers.ErrorResponse "Insufficient points"
// @Router      /shop/deduct [post]
func (h *Handlers) DeductPoints(c *gin.Context) {
	uid, okID := requireMember(c)
	if !okID {
		return
	}
	var req DeductPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "amount must be a positive integer")
		return
	}

	balance, err := h.pointsSvc.Deduct(c.Request.Context(), uid, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInsufficientPoints):
			fail(c, http.StatusUnprocessableEntity, ErrCodeInsufficientPoints, "insufficient points")
		case errors.Is(err, services.ErrMemberNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "member not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, PointsResponse{Balance: balance})
}
