// Conversation HTTP handlers.
//
// This file exposes REST endpoints for conversation resources:
//   - POST   /conversations        (create)
//   - GET    /conversations        (list, paginated, weak ETag support)
//   - GET    /conversations/{id}   (fetch one)
//   - DELETE /conversations/{id}   (delete, messages included)
//
// Handlers are transport-thin: they validate input, call application
// services, and translate results into HTTP responses, including
// conditional 304s for unchanged lists.
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medassist/llm-chat-backend/internal/domain"
	"github.com/medassist/llm-chat-backend/internal/repo"
	"github.com/medassist/llm-chat-backend/internal/services"
)

// CreateConversationRequest is the JSON payload for creating a conversation.
type CreateConversationRequest struct {
	// Title optionally names the conversation; a default is used when empty.
	Title string `json:"title"`
}

// ListConversationsResponse wraps a page of conversations and pagination
// information.
type ListConversationsResponse struct {
	Conversations []domain.Conversation `json:"conversations"`
	Pagination    Pagination            `json:"pagination"`
}

// CreateConversation handles POST /conversations.
func (h *Handlers) CreateConversation(c *gin.Context) {
	var req CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	conv, err := h.convSvc.Create(c.Request.Context(), userID(c), strings.TrimSpace(req.Title))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		return
	}
	ok(c, http.StatusCreated, conv)
}

// ListConversations handles GET /conversations. Supports a weak ETag derived
// from the row count and newest update time; matching If-None-Match yields a
// 304 without touching the page query.
func (h *Handlers) ListConversations(c *gin.Context) {
	ctx := c.Request.Context()
	uid := userID(c)
	page, pageSize := clampPagination(c)

	// ETag pre-check (best effort).
	var db *gorm.DB
	if svc, okc := h.convSvc.(*services.ConversationService); okc {
		db = svc.DB
	}
	if db != nil {
		count, maxTS, err := repo.ConversationsStats(ctx, db, uid)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"conversations:%s:%d:%d"`, uid, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	items, total, err := h.convSvc.ListPage(ctx, uid, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	ok(c, http.StatusOK, ListConversationsResponse{
		Conversations: items,
		Pagination:    paginate(page, pageSize, total),
	})
}

// GetConversation handles GET /conversations/:id.
func (h *Handlers) GetConversation(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "conversation id must be a UUID")
		return
	}

	conv, err := h.convSvc.Get(c.Request.Context(), userID(c), id)
	if err != nil {
		failConversation(c, err)
		return
	}
	ok(c, http.StatusOK, conv)
}

// DeleteConversation handles DELETE /conversations/:id.
func (h *Handlers) DeleteConversation(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "conversation id must be a UUID")
		return
	}

	if err := h.convSvc.Delete(c.Request.Context(), userID(c), id); err != nil {
		failConversation(c, err)
		return
	}
	noContent(c)
}

// failConversation maps conversation-access errors onto the HTTP taxonomy.
func failConversation(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrConversationNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "conversation not found")
	case errors.Is(err, services.ErrConversationForbidden):
		fail(c, http.StatusForbidden, ErrCodeForbidden, "conversation belongs to another user")
	case errors.Is(err, services.ErrConversationFrozen):
		fail(c, http.StatusForbidden, ErrCodeConversationFrozen, err.Error())
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}
