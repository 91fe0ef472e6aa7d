// Package services – SettingsService
//
// This file implements the runtime configuration surface. The settings store
// is deliberately a flat key/value table; this service adds the two behaviors
// the raw store lacks:
//
//   - Typed views over the primary chat configuration and the
//     suggested-questions configuration, so callers never touch raw keys.
//   - The conversation freeze sweep: when an update changes the stored value
//     of any primary model-affecting key, every conversation in the system is
//     frozen in the same transaction, with a single UPDATE statement. A
//     changed model may behave or price differently, so mixing turns from
//     different model identities inside one transcript is disallowed;
//     existing transcripts are sealed rather than silently continued.
//
// No in-process caching: admin writes must be visible to the very next chat
// turn, and the store is read-mostly anyway.
package services

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/medassist/llm-chat-backend/internal/domain"
	"github.com/medassist/llm-chat-backend/internal/repo"
	"github.com/medassist/llm-chat-backend/internal/sysutil"
	"github.com/medassist/llm-chat-backend/internal/utils"
)

// ChatConfig is the resolved primary model configuration for a chat turn.
type ChatConfig struct {
	Provider     string
	APIKey       string
	Model        string
	BaseURL      string
	SystemPrompt string
}

// SuggestionConfig is the resolved configuration for the suggested-questions
// feature, including its degradation material (the template pool).
type SuggestionConfig struct {
	Enabled      bool
	Provider     string
	APIKey       string
	Model        string
	BaseURL      string
	SystemPrompt string
	Count        int
	MaxRounds    int
	Templates    []string
}

// SettingsService reads and writes the system settings store.
type SettingsService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// Get returns the value for key, or "" when absent.
func (s *SettingsService) Get(ctx context.Context, key string) (string, error) {
	v, _, err := repo.GetSetting(ctx, s.DB, key)
	return v, err
}

// All returns the full settings map.
func (s *SettingsService) All(ctx context.Context) (map[string]string, error) {
	return repo.GetAllSettings(ctx, s.DB)
}

// Update applies the given key/value pairs. When the update changes the
// stored value of at least one primary model-affecting key, all conversations
// are frozen inside the same transaction. It returns the number of
// conversations frozen (0 when the sweep did not trigger).
func (s *SettingsService) Update(ctx context.Context, values map[string]string) (int64, error) {
	if len(values) == 0 {
		return 0, nil
	}

	var frozen int64
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		modelChanged := false
		for _, key := range domain.ModelAffectingSettingKeys {
			newValue, touched := values[key]
			if !touched {
				continue
			}
			current, _, err := repo.GetSetting(ctx, tx, key)
			if err != nil {
				return err
			}
			if current != newValue {
				modelChanged = true
				break
			}
		}

		if err := repo.SetSettings(ctx, tx, values); err != nil {
			return err
		}

		if modelChanged {
			n, err := repo.FreezeAllConversations(ctx, tx)
			if err != nil {
				return err
			}
			frozen = n
			log.Info().Int64("conversations", n).Msg("model configuration changed; froze all conversations")
		}
		return nil
	})
	return frozen, err
}

// Chat returns the primary model configuration. ErrAPIKeyMissing is returned
// when no credential is stored; the remaining fields fall back to sane
// defaults so a half-configured system still fails in exactly one way.
func (s *SettingsService) Chat(ctx context.Context) (ChatConfig, error) {
	all, err := repo.GetAllSettings(ctx, s.DB)
	if err != nil {
		return ChatConfig{}, err
	}

	cfg := ChatConfig{
		Provider:     sysutil.FirstNonEmpty(all[domain.SettingLLMProvider], "deepseek"),
		APIKey:       strings.TrimSpace(all[domain.SettingLLMAPIKey]),
		BaseURL:      strings.TrimSpace(all[domain.SettingLLMBaseURL]),
		SystemPrompt: sysutil.FirstNonEmpty(all[domain.SettingSystemPrompt], "You are a helpful assistant."),
	}
	cfg.Model = sysutil.FirstNonEmpty(
		strings.TrimSpace(all[domain.SettingLLMModelID]),
		strings.TrimSpace(all[domain.SettingLLMModelName]),
		"deepseek-chat",
	)
	if cfg.APIKey == "" {
		return ChatConfig{}, ErrAPIKeyMissing
	}
	return cfg, nil
}

// Suggestions returns the suggested-questions configuration. Unlike Chat, a
// missing API key is not an error here: the caller degrades to the template
// pool, which this config also carries.
func (s *SettingsService) Suggestions(ctx context.Context) (SuggestionConfig, error) {
	all, err := repo.GetAllSettings(ctx, s.DB)
	if err != nil {
		return SuggestionConfig{}, err
	}

	cfg := SuggestionConfig{
		Enabled:      strings.EqualFold(strings.TrimSpace(all[domain.SettingSuggestionsEnabled]), "true"),
		Provider:     sysutil.FirstNonEmpty(all[domain.SettingSuggestionsProvider], "deepseek"),
		APIKey:       strings.TrimSpace(all[domain.SettingSuggestionsAPIKey]),
		Model:        strings.TrimSpace(all[domain.SettingSuggestionsModelID]),
		BaseURL:      strings.TrimSpace(all[domain.SettingSuggestionsBaseURL]),
		SystemPrompt: all[domain.SettingSuggestionsSystemPrompt],
		Count:        utils.AtoiDefault(all[domain.SettingSuggestionsCount], 3),
		MaxRounds:    utils.AtoiDefault(all[domain.SettingSuggestionsMaxRounds], 5),
	}
	if cfg.Count < 1 {
		cfg.Count = 1
	}
	if cfg.MaxRounds < 1 {
		cfg.MaxRounds = 1
	}

	// The template pool is stored as a JSON array; a corrupt value degrades
	// to an empty pool rather than an error.
	if raw := strings.TrimSpace(all[domain.SettingSuggestionsTemplates]); raw != "" {
		var pool []string
		if err := json.Unmarshal([]byte(raw), &pool); err != nil {
			log.Warn().Err(err).Msg("template question pool is not valid JSON; ignoring")
		} else {
			cfg.Templates = pool
		}
	}
	return cfg, nil
}
