// Authentication HTTP handlers.
//
// This file exposes the account endpoints:
//   - POST /auth/register  (create an account)
//   - POST /auth/login     (exchange credentials for a bearer token)
//
// Handlers are transport-thin: they validate input, call application
// services, and translate service errors into the HTTP error taxonomy.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/medassist/llm-chat-backend/internal/domain"
	"github.com/medassist/llm-chat-backend/internal/services"
)

// AuthService defines the account operations consumed by HTTP handlers.
// Implementations must be safe for concurrent use and honor the context.
type AuthService interface {
	// Register creates a non-admin account.
	Register(ctx context.Context, username, password string) (*domain.User, error)
	// Login verifies credentials and mints an access token.
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
}

// RegisterRequest is the JSON payload for account creation.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginRequest is the JSON payload for credential exchange.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the bearer token and the profile it grants.
type LoginResponse struct {
	Token    string    `json:"token"`
	UserID   string    `json:"user_id"`
	Username string    `json:"username"`
	Role     string    `json:"role"`
	IssuedAt time.Time `json:"issued_at"`
}

// Register handles POST /auth/register.
func (h *Handlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "username (3-64 chars) and password (min 6 chars) required")
		return
	}

	user, err := h.authSvc.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUsernameTaken):
			fail(c, http.StatusConflict, ErrCodeUsernameTaken, "username already taken")
		case errors.Is(err, services.ErrInvalidCredentials):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "username or password does not meet requirements")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		}
		return
	}
	ok(c, http.StatusCreated, user)
}

// Login handles POST /auth/login.
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "username and password required")
		return
	}

	token, user, err := h.authSvc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserBanned):
			fail(c, http.StatusForbidden, ErrCodeAccountBanned, "account is banned")
		case errors.Is(err, services.ErrInvalidCredentials):
			fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "invalid username or password")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}

	ok(c, http.StatusOK, LoginResponse{
		Token:    token,
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		IssuedAt: time.Now().UTC(),
	})
}
