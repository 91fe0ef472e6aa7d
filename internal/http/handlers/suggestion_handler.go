// Suggested-question HTTP handler.
//
// GET /conversations/{id}/suggestions returns follow-up questions for the
// conversation. The feature is best-effort: a disabled feature or a model
// failure still answers 200 with whatever the service could produce.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SuggestionsResponse wraps the suggested follow-up questions.
type SuggestionsResponse struct {
	Questions []string `json:"questions"`
}

// GetSuggestions handles GET /conversations/:id/suggestions.
func (h *Handlers) GetSuggestions(c *gin.Context) {
	conversationID := c.Param("id")
	if _, err := uuid.Parse(conversationID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "conversation id must be a UUID")
		return
	}

	questions, err := h.sugSvc.Suggest(c.Request.Context(), userID(c), conversationID)
	if err != nil {
		failConversation(c, err)
		return
	}
	ok(c, http.StatusOK, SuggestionsResponse{Questions: questions})
}
