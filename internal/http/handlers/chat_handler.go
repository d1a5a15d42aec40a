// Chat HTTP handlers.
//
// This file exposes REST endpoints for 1:1 chat between friends:
//   - POST /chat/rooms                (open the room shared with a friend)
//   - GET  /chat/rooms                (conversation list with peers)
//   - POST /chat/rooms/{id}/messages  (send a message)
//   - GET  /chat/rooms/{id}/messages  (list, paginated, ETag support)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses (including conditional responses).
package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jeiu/caffeine-backend/internal/domain"
	"github.com/jeiu/caffeine-backend/internal/repo"
	"github.com/jeiu/caffeine-backend/internal/services"
)

//
// DTOs
//

// OpenRoomRequest is the JSON payload for opening a room with a friend.
type OpenRoomRequest struct {
	PeerID string `json:"peer_id" binding:"required" example:"141add05-4415-4938-b5a1-17e0d3171aff"`
}

// SendMessageRequest is the JSON payload for sending a chat message.
type SendMessageRequest struct {
	Content string `json:"content" binding:"required,min=1" example:"coffee at 3?"`
}

// ListMessagesResponse contains a page of chat messages and pagination metadata.
type ListMessagesResponse struct {
	Messages   []domain.ChatMessage `json:"messages"`
	Pagination Pagination           `json:"pagination"`
}

// chatDB exposes the concrete service's DB handle for ETag lookups; nil when
// the handler is wired with a test double.
func (h *Handlers) chatDB() *gorm.DB {
	if svc, ok := h.chatSvc.(*services.ChatService); ok {
		return svc.DB
	}
	return nil
}

//
// Handlers
//

// OpenRoom godoc
// @ID          openRoom
// @Summary     Open the 1:1 room with a friend
// @Description Returns the shared room, creating it on first use. Rooms exist only between friends.
// @Tags        Chat
// @Accept      json
// @Produce     json
// @Success     200  {object} domain.ChatRoom
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     403  {object} handlers.ErrorResponse "Not friends"
// @Router      /chat/rooms [post]
func (h *Handlers) OpenRoom(c *gin.Context) {
	uid, okID := requireMember(c)
	if !okID {
		return
	}
	var req OpenRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "peer_id required")
		return
	}

	room, err := h.chatSvc.OpenRoom(c.Request.Context(), uid, req.PeerID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSelfFriend):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "cannot chat with yourself")
		case errors.Is(err, services.ErrNotFriends):
			fail(c, http.StatusForbidden, ErrCodeForbidden, "rooms exist only between friends")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, room)
}

// ListRooms godoc
// @ID          listRooms
// @Summary     List conversations
// @Tags        Chat
// @Produce     json
// @Success     200  {array} services.RoomView
// @Router      /chat/rooms [get]
func (h *Handlers) ListRooms(c *gin.Context) {
	uid, okID := requireMember(c)
	if !okID {
		return
	}
	rooms, err := h.chatSvc.Rooms(c.Request.Context(), uid)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, rooms)
}

// SendMessage godoc
// @ID          sendMessage
// @Summary     Send a message
// @Tags        Chat
// @Accept      json
// @Produce     json
// @Success     201  {object} domain.ChatMessage
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Room not found"
// @Router      /chat/rooms/{id}/messages [post]
func (h *Handlers) SendMessage(c *gin.Context) {
	uid, okID := requireMember(c)
	if !okID {
		return
	}
	roomID := c.Param("id")
	if _, err := uuid.Parse(roomID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "room id must be a UUID")
		return
	}
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "content required")
		return
	}

	msg, err := h.chatSvc.Send(c.Request.Context(), uid, roomID, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyMessage):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "content required")
		case errors.Is(err, services.ErrTooLong):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "content too long")
		case errors.Is(err, services.ErrRoomNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "chat room not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		}
		return
	}
	ok(c, http.StatusCreated, msg)
}

// ListRoomMessages godoc
// @ID          listRoomMessages
// @Summary     List messages in a room
// @Description Returns a paginated list of a room's messages, oldest first. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Chat
// @Produce     json
// @Success     200  {object} handlers.ListMessagesResponse
// @Success     304  {string} string "Not Modified"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Room not found"
// @Router      /chat/rooms/{id}/messages [get]
func (h *Handlers) ListRoomMessages(c *gin.Context) {
	ctx := c.Request.Context()
	uid, okID := requireMember(c)
	if !okID {
		return
	}
	roomID := c.Param("id")
	if _, err := uuid.Parse(roomID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "room id must be a UUID")
		return
	}

	// ETag pre-check (best effort).
	if db := h.chatDB(); db != nil {
		count, maxTS, err := repo.RoomMessagesStats(ctx, db, roomID)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"messages:%s:%d:%d"`, roomID, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	page, pageSize := clampPagination(c)
	items, total, err := h.chatSvc.Messages(ctx, uid, roomID, page, pageSize)
	if err != nil {
		if errors.Is(err, services.ErrRoomNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "chat room not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListMessagesResponse{
		Messages: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}
