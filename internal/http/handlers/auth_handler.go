// Auth HTTP handlers.
//
// This file exposes the REST endpoints for account creation and login:
//   - POST /auth/signup  (create account + default caffeine profile)
//   - POST /auth/login   (verify credentials, issue JWT)
//
// Handlers are transport-thin: they validate input, delegate to AuthService,
// and translate service errors into HTTP results. The token returned by login
// is a bearer token for the Authorization header.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jeiu/caffeine-backend/internal/domain"
	"github.com/jeiu/caffeine-backend/internal/services"
)

// SignupRequest is the JSON payload for creating an account.
type SignupRequest struct {
	// Username is the unique login handle.
	Username string `json:"username" binding:"required,min=3,max=64" example:"coffeecat"`
	// Name optionally sets the display name; defaults to the username.
	Name string `json:"name" example:"Coffee Cat"`
	// Password is the plaintext password, stored only as a bcrypt hash.
	Password string `json:"password" binding:"required,min=8,max=72" example:"hunter2hunter2"`
}

// LoginRequest is the JSON payload for logging in.
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"coffeecat"`
	Password string `json:"password" binding:"required" example:"hunter2hunter2"`
}

// LoginResponse carries the bearer token and the member it belongs to.
type LoginResponse struct {
	Token  string         `json:"token"`
	Member *domain.Member `json:"member"`
}

// Signup godoc
// @ID          signup
// @Summary     Create an account
// @Description Registers a member and their default caffeine profile.
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Success     201  {object} domain.Member
// @Failure     400  {object} handlers.ErrorResponse "Invalid payload"
// @Failure     409  {object} handlers.ErrorResponse "Username taken"
// @Router      /auth/signup [post]
func (h *Handlers) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "username (3-64 chars) and password (8-72 chars) required")
		return
	}

	m, err := h.authSvc.Signup(c.Request.Context(), req.Username, req.Name, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUsernameTaken):
			fail(c, http.StatusConflict, ErrCodeConflict, "username already taken")
		case errors.Is(err, services.ErrInvalidCredentials):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "username and password required")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		}
		return
	}
	ok(c, http.StatusCreated, m)
}

// Login godoc
// @ID          login
// @Summary     Log in
// @Description Verifies credentials and returns a bearer token.
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Success     200  {object} handlers.LoginResponse
// @Failure     400  {object} handlers.ErrorResponse "Invalid payload"
// @Failure     401  {object} handlers.ErrorResponse "Bad credentials"
// @Router      /auth/login [post]
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "username and password required")
		return
	}

	token, m, err := h.authSvc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "invalid credentials")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, LoginResponse{Token: token, Member: m})
}
