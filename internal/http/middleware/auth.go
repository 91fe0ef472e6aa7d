// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// Bearer-token authentication. RequireAuth resolves the Authorization header
// into a user and stores identity in the Gin context; RequireAdmin gates
// operator routes on top of it.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/medassist/llm-chat-backend/internal/domain"
)

const (
	// userIDKey and userRoleKey hold the authenticated identity in the Gin
	// context; currentUserKey holds the full record.
	userIDKey      = "userID"
	userRoleKey    = "userRole"
	currentUserKey = "currentUser"
)

// TokenResolver validates a bearer token and returns the account it belongs
// to. Implementations reject expired tokens and banned users.
type TokenResolver interface {
	ResolveToken(ctx context.Context, token string) (*domain.User, error)
}

// RequireAuth extracts the Bearer token, resolves it, and stores the user in
// the context. Missing, malformed, or invalid credentials abort with 401; the
// body carries a stable code so clients can distinguish auth failures from
// other errors.
func RequireAuth(resolver TokenResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			abortUnauthorized(c, "missing bearer token")
			return
		}

		user, err := resolver.ResolveToken(c.Request.Context(), token)
		if err != nil {
			abortUnauthorized(c, "invalid or expired token")
			return
		}

		c.Set(userIDKey, user.ID)
		c.Set(userRoleKey, user.Role)
		c.Set(currentUserKey, user)
		c.Next()
	}
}

// RequireAdmin aborts with 403 unless RequireAuth stored an admin role
// earlier in the chain.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get(userRoleKey)
		if s, ok := role.(string); !ok || s != domain.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"request_id": c.Writer.Header().Get(requestIDHeader),
				"code":       "forbidden",
				"message":    "administrator access required",
			})
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated user's ID from the context, or "".
func UserID(c *gin.Context) string {
	v, _ := c.Get(userIDKey)
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// CurrentUser returns the authenticated user record, or nil.
func CurrentUser(c *gin.Context) *domain.User {
	v, _ := c.Get(currentUserKey)
	if u, ok := v.(*domain.User); ok {
		return u
	}
	return nil
}

// bearerToken extracts the credential from an "Authorization: Bearer <tok>"
// header; scheme matching is case-insensitive.
func bearerToken(header string) string {
	const prefix = "bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"request_id": c.Writer.Header().Get(requestIDHeader),
		"code":       "unauthorized",
		"message":    msg,
	})
}
