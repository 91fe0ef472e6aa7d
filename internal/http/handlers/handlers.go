// Handler wiring and shared helpers.
//
// Handlers groups every HTTP endpoint and depends on abstract service
// interfaces so transport concerns stay separate from business logic. The
// interfaces are declared here, on the consumer side, and are implemented by
// the concrete services wired in by the router.
package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/medassist/llm-chat-backend/internal/domain"
	"github.com/medassist/llm-chat-backend/internal/llm"
	"github.com/medassist/llm-chat-backend/internal/services"
	"github.com/medassist/llm-chat-backend/internal/utils"
)

// ConversationService defines conversation lifecycle operations consumed by
// HTTP handlers. Implementations must be safe for concurrent use and honor
// the provided context for cancellation and timeouts.
type ConversationService interface {
	// Create starts a new conversation for userID with an optional title.
	Create(ctx context.Context, userID, title string) (*domain.Conversation, error)
	// Get returns a conversation owned by userID.
	Get(ctx context.Context, userID, id string) (*domain.Conversation, error)
	// ListPage returns a page of the user's conversations and the total count.
	ListPage(ctx context.Context, userID string, page, pageSize int) ([]domain.Conversation, int64, error)
	// Delete removes a conversation owned by userID along with its messages.
	Delete(ctx context.Context, userID, id string) error
}

// MessageService defines message retrieval and streamed reply generation.
type MessageService interface {
	// StreamReply persists the user turn and streams the assistant reply,
	// forwarding each fragment to write.
	StreamReply(ctx context.Context, userID, conversationID, content, userInfo string, write services.FragmentWriter) error
	// ListPage returns a page of messages within a conversation, oldest first.
	ListPage(ctx context.Context, userID, conversationID string, page, pageSize int) ([]domain.Message, int64, error)
}

// SuggestionService produces follow-up question suggestions.
type SuggestionService interface {
	Suggest(ctx context.Context, userID, conversationID string) ([]string, error)
}

// SettingsStore exposes system settings to the public and admin endpoints.
type SettingsStore interface {
	Get(ctx context.Context, key string) (string, error)
	All(ctx context.Context) (map[string]string, error)
	// Update persists settings and returns how many conversations were
	// frozen as a result of model-affecting changes.
	Update(ctx context.Context, values map[string]string) (int64, error)
}

// AdminService defines operator actions over users, conversations, and model
// connectivity.
type AdminService interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
	SetUserBan(ctx context.Context, userID string, banned bool) error
	DeleteUser(ctx context.Context, userID string) error
	ListAllConversations(ctx context.Context) ([]domain.Conversation, error)
	DeleteConversation(ctx context.Context, conversationID string) error
	TestConnection(ctx context.Context, provider, apiKey, model, baseURL string) error
	ListModels(ctx context.Context, provider, apiKey, baseURL string) ([]llm.ModelInfo, error)
}

// Handlers groups the HTTP endpoints for the whole API surface.
type Handlers struct {
	authSvc     AuthService
	convSvc     ConversationService
	msgSvc      MessageService
	sugSvc      SuggestionService
	settingsSvc SettingsStore
	adminSvc    AdminService
}

// New constructs a Handlers instance bound to the given services.
func New(authSvc AuthService, convSvc ConversationService, msgSvc MessageService, sugSvc SuggestionService, settingsSvc SettingsStore, adminSvc AdminService) *Handlers {
	return &Handlers{
		authSvc:     authSvc,
		convSvc:     convSvc,
		msgSvc:      msgSvc,
		sugSvc:      sugSvc,
		settingsSvc: settingsSvc,
		adminSvc:    adminSvc,
	}
}

// userID extracts the authenticated user id from the Gin context, set by the
// auth middleware. Empty when unauthenticated.
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// paginate builds the metadata block for a page of total items.
func paginate(page, pageSize int, total int64) Pagination {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

// clampPagination parses and bounds page and page_size query params.
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	return utils.ClampPage(page, pageSize, defaultPageSize, maxPageSize)
}
