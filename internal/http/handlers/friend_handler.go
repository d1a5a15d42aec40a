// Friend HTTP handlers.
//
// This file exposes the REST endpoints for the social graph:
//   - GET    /friends/search               (find members)
//   - POST   /friends/requests             (send a request)
//   - GET    /friends/requests             (incoming pending requests)
//   - POST   /friends/requests/{id}/accept (accept)
//   - POST   /friends/requests/{id}/reject (reject)
//   - GET    /friends                      (friend list with live levels)
//   - DELETE /friends/{id}                 (unfriend)
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jeiu/caffeine-backend/internal/services"
	"github.com/jeiu/caffeine-backend/internal/utils"
)

// FriendRequestRequest is the JSON payload for sending a friend request.
type FriendRequestRequest struct {
	ReceiverID string `json:"receiver_id" binding:"required" example:"141add05-4415-4938-b5a1-17e0d3171aff"`
}

// SearchMembers godoc
// @ID          searchMembers
// @Summary     Search members by username or name
// @Tags        Friends
// @Produce     json
// @Success     200  {array} domain.Member
// @Router      /friends/search [get]
func (h *Handlers) SearchMembers(c *gin.Context) {
	uid, okID := requireMember(c)
	if !okID {
		return
	}
	q := strings.TrimSpace(c.Query("q"))
	limit := utils.QueryInt(c.Query("limit"), 20, 1, utils.MaxPageSize)

	out, err := h.friendSvc.Search(c.Request.Context(), uid, q, limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, out)
}

// SendFriendRequest godoc
// @ID          sendFriendRequest
// @Summary     Send a friend request
// @Tags        Friends
// @Accept      json
// @Produce     json
// @Success     201  {object} domain.FriendRequest
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Receiver not found"
// @Failure     409  {object} handlers.ErrorResponse "Already friends or pending"
// @Router      /friends/requests [post]
func (h *Handlers) SendFriendRequest(c *gin.Context) {
	uid, okID := requireMember(c)
	if !okID {
		return
	}
	var req FriendRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "receiver_id required")
		return
	}

	fr, err := h.friendSvc.Request(c.Request.Context(), uid, req.ReceiverID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSelfFriend):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "cannot befriend yourself")
		case errors.Is(err, services.ErrMemberNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "member not found")
		case errors.Is(err, services.ErrAlreadyFriends):
			fail(c, http.StatusConflict, ErrCodeConflict, "already friends")
		case errors.Is(err, services.ErrRequestPending):
			fail(c, http.StatusConflict, ErrCodeConflict, "request already pending")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		}
		return
	}
	ok(c, http.StatusCreated, fr)
}

// ListFriendRequests godoc
// @ID          listFriendRequests
// @Summary     List incoming pending requests
// @Tags        Friends
// @Produce     json
// @Success     200  {array} domain.FriendRequest
// @Router      /friends/requests [get]
func (h *Handlers) ListFriendRequests(c *gin.Context) {
	uid, okID := requireMember(c)
	if !okID {
		return
	}
	out, err := h.friendSvc.Incoming(c.Request.Context(), uid)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, out)
}

// AcceptFriendRequest godoc
// @ID          acceptFriendRequest
// @Summary     Accept a friend request
// @Tags        Friends
// @Produce     json
// @Success     204  {string} string "No Content"
// @Failure     404  {object} handlers.ErrorResponse "Request not found"
// @Router      /friends/requests/{id}/accept [post]
func (h *Handlers) AcceptFriendRequest(c *gin.Context) {
	uid, okID := requireMember(c)
	if !okID {
		return
	}
	if err := h.friendSvc.Accept(c.Request.Context(), uid, c.Param("id")); err != nil {
		switch {
		case errors.Is(err, services.ErrRequestNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "friend request not found")
		case errors.Is(err, services.ErrAlreadyFriends):
			fail(c, http.StatusConflict, ErrCodeConflict, "already friends")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	noContent(c)
}

// RejectFriendRequest godoc
// @ID          rejectFriendRequest
// @Summary     Reject a friend request
// @Tags        Friends
// @Produce     json
// @Success     204  {string} string "No Content"
// @Failure     404  {object} handlers.ErrorResponse "Request not found"
// @Router      /friends/requests/{id}/reject [post]
func (h *Handlers) RejectFriendRequest(c *gin.Context) {
	uid, okID := requireMember(c)
	if !okID {
		return
	}
	if err := h.friendSvc.Reject(c.Request.Context(), uid, c.Param("id")); err != nil {
		if errors.Is(err, services.ErrRequestNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "friend request not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	noContent(c)
}

// ListFriends godoc
// @ID          listFriends
// @Summary     List friends with their current caffeine level
// @Tags        Friends
// @Produce     json
// @Success     200  {array} services.FriendView
// @Router      /friends [get]
func (h *Handlers) ListFriends(c *gin.Context) {
	uid, okID := requireMember(c)
	if !okID {
		return
	}
	out, err := h.friendSvc.List(c.Request.Context(), uid)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, out)
}

// RemoveFriend godoc
// @ID          removeFriend
// @Summary     Unfriend a member
// @Tags        Friends
// @Produce     json
// @Success     204  {string} string "No Content"
// @Failure     404  {object} handlers.ErrorResponse "Not friends"
// @Router      /friends/{id} [delete]
func (h *Handlers) RemoveFriend(c *gin.Context) {
	uid, okID := requireMember(c)
	if !okID {
		return
	}
	if err := h.friendSvc.Remove(c.Request.Context(), uid, c.Param("id")); err != nil {
		if errors.Is(err, services.ErrNotFriends) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "not friends")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	noContent(c)
}
