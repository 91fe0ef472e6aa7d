// Package services – MessageService
//
// This file implements MessageService, the application-level component that
// owns chat turns. It validates input, enforces the frozen-conversation rule,
// persists the user turn (with the optional labeled user-info block), streams
// the assistant reply through the LLM gateway while forwarding fragments to
// the transport, and persists the accumulated reply once the fragment
// sequence is exhausted.
//
// Persistence contract: the full concatenation of every yielded fragment is
// stored as the assistant turn, including an in-band error marker, so
// partial/error responses are recorded verbatim. The single exception is
// consumer cancellation (client disconnect): the in-flight provider call is
// cancelled and no assistant turn is written.
//
// Optional enhancement: the first user prompt auto-generates a conversation
// title when the stored title is still a placeholder.
//
// Observability: public methods are OpenTelemetry-instrumented; spans include
// conversation/user identifiers and pagination parameters where applicable.
package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/medassist/llm-chat-backend/internal/domain"
	"github.com/medassist/llm-chat-backend/internal/llm"
	"github.com/medassist/llm-chat-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ChatStreamer is the gateway contract required for live chat. The returned
// channel is a lazy, finite fragment sequence; failures appear as one in-band
// marker fragment before the channel closes.
type ChatStreamer interface {
	StreamChat(ctx context.Context, req llm.Request) <-chan string
}

// FragmentWriter receives each fragment as it is emitted; returning an error
// stops the stream (treated as consumer cancellation).
type FragmentWriter func(fragment string) error

// MessageService coordinates chat-turn persistence and streamed replies.
type MessageService struct {
	DB       *gorm.DB
	Gateway  ChatStreamer
	Settings *SettingsService

	// Optional guards
	MaxPromptRunes int

	// Title generation config
	TitleLocale language.Tag
	TitleMaxLen int
}

// StreamReply validates the prompt, verifies the conversation is owned and
// active, persists the user turn, and streams the assistant reply. Each
// fragment is forwarded to write in emission order; after natural exhaustion
// the concatenated reply (error marker included, if any) is persisted as the
// assistant turn. If write fails or ctx is cancelled, the provider call is
// released and no assistant turn is persisted.
func (s *MessageService) StreamReply(ctx context.Context, userID, conversationID, content, userInfo string, write FragmentWriter) error {
	tr := otel.Tracer("services/MessageService")
	ctx, span := tr.Start(ctx, "StreamReply",
		trace.WithAttributes(
			attribute.String("conversation.id", conversationID),
			attribute.String("user.id", userID),
		),
	)
	defer span.End()

	// Normalize & validate prompt
	content = strings.TrimSpace(content)
	if content == "" {
		return ErrEmptyPrompt
	}
	if s.MaxPromptRunes > 0 && utf8.RuneCountInString(content) > s.MaxPromptRunes {
		return ErrTooLong
	}

	// Ownership and lifecycle checks, before any provider interaction.
	conv, err := s.loadOwned(ctx, userID, conversationID)
	if err != nil {
		return err
	}
	if !conv.IsActive {
		return ErrConversationFrozen
	}

	// Resolve the primary model configuration; a missing credential blocks
	// the turn before anything is persisted.
	cfg, err := s.Settings.Chat(ctx)
	if err != nil {
		return err
	}

	userContent := content
	if strings.TrimSpace(userInfo) != "" {
		userContent = fmt.Sprintf("[User Info]\n%s\n\n[Question]\n%s", strings.TrimSpace(userInfo), content)
	}

	// Persist the user turn (and maybe update the title) in one transaction.
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repo.CreateMessage(tx, conversationID, llm.RoleUser, userContent); err != nil {
			return err
		}
		if s.shouldAutoTitle(conv.Title) {
			if gen := s.generateTitleFromPrompt(content); gen != "" {
				if uerr := tx.Model(&domain.Conversation{}).Where("id = ?", conversationID).Update("title", s.clipTitle(gen)).Error; uerr == nil {
					conv.Title = gen
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	// Load the transcript (the just-persisted user turn included) as the
	// prior-turns list for the provider.
	history, err := repo.ListMessages(s.DB.WithContext(ctx), conversationID, 0)
	if err != nil {
		return err
	}
	turns := make([]llm.Turn, 0, len(history))
	for _, m := range history {
		turns = append(turns, llm.Turn{Role: m.Role, Content: m.Content})
	}

	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	fragments := s.Gateway.StreamChat(streamCtx, llm.Request{
		Provider:     cfg.Provider,
		APIKey:       cfg.APIKey,
		Model:        cfg.Model,
		BaseURL:      cfg.BaseURL,
		SystemPrompt: cfg.SystemPrompt,
		Turns:        turns,
	})

	var full strings.Builder
	for fragment := range fragments {
		full.WriteString(fragment)
		if werr := write(fragment); werr != nil {
			// Consumer went away: release the transport, drain the channel so
			// the producer goroutine exits, and skip persistence.
			cancel()
			for range fragments {
			}
			return werr
		}
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	// Natural exhaustion: persist everything that was produced, marker text
	// included.
	_, err = repo.CreateMessage(s.DB.WithContext(ctx), conversationID, llm.RoleAssistant, full.String())
	return err
}

// ListPage returns paginated messages for a conversation owned by userID,
// oldest first.
func (s *MessageService) ListPage(ctx context.Context, userID, conversationID string, page, pageSize int) ([]domain.Message, int64, error) {
	tr := otel.Tracer("services/MessageService")
	ctx, span := tr.Start(ctx, "ListPage",
		trace.WithAttributes(
			attribute.String("conversation.id", conversationID),
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	if _, err := s.loadOwned(ctx, userID, conversationID); err != nil {
		return nil, 0, err
	}

	total, err := repo.CountMessages(s.DB.WithContext(ctx), conversationID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Message{}, 0, nil
	}

	items, err := repo.ListMessagesPage(s.DB.WithContext(ctx), conversationID, offset, pageSize)
	return items, total, err
}

// loadOwned fetches a conversation and maps missing/foreign rows to the
// service error vocabulary.
func (s *MessageService) loadOwned(ctx context.Context, userID, conversationID string) (*domain.Conversation, error) {
	conv, err := repo.GetConversation(ctx, s.DB, conversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	if conv.UserID != userID {
		return nil, ErrConversationForbidden
	}
	return conv, nil
}

// shouldAutoTitle reports whether the current title is a placeholder.
func (s *MessageService) shouldAutoTitle(current string) bool {
	t := strings.TrimSpace(strings.ToLower(current))
	return t == "" || t == strings.ToLower(domain.DefaultConversationTitle)
}

// generateTitleFromPrompt derives a concise title from the prompt.
func (s *MessageService) generateTitleFromPrompt(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return ""
	}
	toks := titleWordRE.FindAllString(strings.ToLower(prompt), -1)
	if len(toks) == 0 {
		return ""
	}

	titleCaser := cases.Title(s.titleLocaleOrDefault())
	out := make([]string, 0, 8)

	for _, w := range toks {
		if _, skip := titleStopWords[w]; skip {
			continue
		}
		out = append(out, titleCaser.String(w))
		if len(out) >= 8 {
			break
		}
	}
	if len(out) == 0 {
		return ""
	}
	return strings.Join(out, " ")
}

// clipTitle truncates a generated title to the configured maximum rune length.
func (s *MessageService) clipTitle(title string) string {
	max := s.TitleMaxLen
	if max <= 0 {
		max = 60
	}
	if utf8.RuneCountInString(title) > max {
		return string([]rune(title)[:max])
	}
	return title
}

// titleLocaleOrDefault returns the configured locale for casing or English if unset.
func (s *MessageService) titleLocaleOrDefault() language.Tag {
	if s.TitleLocale == language.Und {
		return language.English
	}
	return s.TitleLocale
}

// --- Title generation helpers ---

// Extract Unicode letters with optional trailing numbers (e.g., "vitb12").
var titleWordRE = regexp.MustCompile(`[\p{L}]+[\p{N}]*`)

// Minimal English stop-words set for compact titles.
var titleStopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "of": {}, "to": {}, "in": {},
	"is": {}, "are": {}, "for": {}, "on": {}, "with": {}, "by": {}, "from": {},
	"at": {}, "as": {}, "that": {}, "this": {}, "it": {}, "be": {}, "was": {}, "were": {},
}
