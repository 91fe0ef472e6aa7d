// Message HTTP handlers.
//
// This file exposes the chat-turn endpoints:
//   - GET  /conversations/{id}/messages  (list, paginated, weak ETag)
//   - POST /conversations/{id}/messages  (send a prompt, streamed reply)
//
// The POST endpoint streams the assistant reply as incremental text/plain
// chunks, flushed as they arrive from the model. Pre-stream failures (frozen
// conversation, missing credentials, validation) surface as regular JSON
// errors; once streaming has begun, provider failures arrive in-band as a
// trailing error marker inside the body.
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

// SendMessageRequest is the JSON payload for posting a prompt.
type SendMessageRequest struct {
	// Content is the user's prompt text.
	Content string `json:"content" binding:"required"`
	// UserInfo optionally carries profile context the model should see,
	// prepended to the prompt under a labeled block.
	UserInfo string `json:"user_info"`
}

// ListMessagesResponse wraps a page of messages and pagination information.
type ListMessagesResponse struct {
	Messages   []domain.Message `json:"messages"`
	Pagination Pagination       `json:"pagination"`
}

// ListMessages handles GET /conversations/:id/messages.
func (h *Handlers) ListMessages(c *gin.Context) {
	ctx := c.Request.Context()
	conversationID := c.Param("id")
	if _, err := uuid.Parse(conversationID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "conversation id must be a UUID")
		return
	}
	page, pageSize := clampPagination(c)

	// ETag pre-check (best effort).
	var db *gorm.DB
	if svc, okc := h.msgSvc.(*services.MessageService); okc {
		db = svc.DB
	}
	if db != nil {
		count, maxTS, err := repo.MessagesStats(ctx, db, conversationID)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"messages:%s:%d:%d"`, conversationID, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	items, total, err := h.msgSvc.ListPage(ctx, userID(c), conversationID, page, pageSize)
	if err != nil {
		failConversation(c, err)
		return
	}

	ok(c, http.StatusOK, ListMessagesResponse{
		Messages:   items,
		Pagination: paginate(page, pageSize, total),
	})
}

// SendMessage handles POST /conversations/:id/messages. The response body is
// the assistant reply streamed as plain text; each model fragment is written
// and flushed immediately. Client disconnects cancel the upstream call and
// leave no assistant turn behind.
func (h *Handlers) SendMessage(c *gin.Context) {
	conversationID := c.Param("id")
	if _, err := uuid.Parse(conversationID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "conversation id must be a UUID")
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Content) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "content required")
		return
	}

	flusher, canFlush := c.Writer.(http.Flusher)
	started := false

	err := h.msgSvc.StreamReply(c.Request.Context(), userID(c), conversationID, req.Content, req.UserInfo,
		func(fragment string) error {
			if !started {
				// Headers go out with the first fragment so pre-stream
				// failures can still use the JSON error envelope.
				c.Header("Content-Type", "text/plain; charset=utf-8")
				c.Header("Cache-Control", "no-store")
				c.Header("X-Accel-Buffering", "no")
				c.Status(http.StatusOK)
				started = true
			}
			if _, werr := c.Writer.WriteString(fragment); werr != nil {
				return werr
			}
			if canFlush {
				flusher.Flush()
			}
			return nil
		})
	if err != nil && !started {
		switch {
		case errors.Is(err, services.ErrEmptyPrompt), errors.Is(err, services.ErrTooLong):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		case errors.Is(err, services.ErrAPIKeyMissing):
			fail(c, http.StatusInternalServerError, ErrCodeModelUnconfigured, "no model credentials configured")
		default:
			failConversation(c, err)
		}
		return
	}
	if err != nil {
		// Mid-stream write failure or client cancellation: the status line is
		// already on the wire, nothing more to send.
		c.Abort()
	}
}
