// Package services – SuggestionService
//
// Produces follow-up question suggestions for a conversation. The feature is
// best-effort by contract: any extraction or transport failure falls back to
// sampling the configured template pool, and a disabled feature yields an
// empty list. Callers never see a provider error from this path.
package services

import (
	"context"
	"math/rand"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/medassist/llm-chat-backend/internal/llm"
	"github.com/medassist/llm-chat-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// suggestionMaxRetries bounds the extra extraction attempts after the first.
const suggestionMaxRetries = 2

// QuestionSuggester is the gateway contract for structured question
// extraction.
type QuestionSuggester interface {
	SuggestQuestions(ctx context.Context, req llm.Request, desiredCount, maxRetries int) ([]string, error)
}

// SuggestionService generates suggested follow-up questions from recent
// conversation history.
type SuggestionService struct {
	DB       *gorm.DB
	Gateway  QuestionSuggester
	Settings *SettingsService
}

// Suggest returns up to the configured number of follow-up questions for a
// conversation owned by userID. A disabled feature returns an empty slice.
// Model failures degrade to templates; only ownership and storage problems
// surface as errors.
func (s *SuggestionService) Suggest(ctx context.Context, userID, conversationID string) ([]string, error) {
	tr := otel.Tracer("services/SuggestionService")
	ctx, span := tr.Start(ctx, "Suggest",
		trace.WithAttributes(attribute.String("conversation.id", conversationID)),
	)
	defer span.End()

	conv, err := repo.GetConversation(ctx, s.DB, conversationID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	if conv.UserID != userID {
		return nil, ErrConversationForbidden
	}

	cfg, err := s.Settings.Suggestions(ctx)
	if err != nil {
		return nil, err
	}
	if !cfg.Enabled {
		return []string{}, nil
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return sampleTemplates(cfg.Templates, cfg.Count), nil
	}

	// Recent history only, capped at MaxRounds exchanges (two turns each).
	history, err := repo.ListMessages(s.DB.WithContext(ctx), conversationID, 0)
	if err != nil {
		return nil, err
	}
	maxTurns := cfg.MaxRounds * 2
	if len(history) > maxTurns {
		history = history[len(history)-maxTurns:]
	}
	turns := make([]llm.Turn, 0, len(history))
	for _, m := range history {
		turns = append(turns, llm.Turn{Role: m.Role, Content: m.Content})
	}

	questions, err := s.Gateway.SuggestQuestions(ctx, llm.Request{
		Provider:     cfg.Provider,
		APIKey:       cfg.APIKey,
		Model:        cfg.Model,
		BaseURL:      cfg.BaseURL,
		SystemPrompt: cfg.SystemPrompt,
		Turns:        turns,
	}, cfg.Count, suggestionMaxRetries)
	if err != nil {
		log.Warn().
			Err(err).
			Str("conversation_id", conversationID).
			Msg("question extraction failed, using templates")
		return sampleTemplates(cfg.Templates, cfg.Count), nil
	}
	return questions, nil
}

// sampleTemplates draws up to count distinct entries from the template pool,
// in random order.
func sampleTemplates(pool []string, count int) []string {
	if count <= 0 || len(pool) == 0 {
		return []string{}
	}
	if count > len(pool) {
		count = len(pool)
	}
	idx := rand.Perm(len(pool))
	out := make([]string, 0, count)
	for _, i := range idx[:count] {
		out = append(out, pool[i])
	}
	return out
}
