// Startup seeding: the default admin account and the default system
// settings. Seeding is idempotent; existing rows are never overwritten, so
// operator changes survive restarts.
package repo

import (
	"context"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/medassist/llm-chat-backend/internal/domain"
)

// Default admin credentials created when no admin account exists. Operators
// are expected to change the password immediately in production.
const (
	DefaultAdminUsername = "admin"
	defaultAdminPassword = "admin123"
)

// defaultSettings are inserted for any key not already present.
var defaultSettings = map[string]string{
	domain.SettingWebsiteName:    "LLM Chat",
	domain.SettingWebsiteLogo:    "",
	domain.SettingSystemPrompt:   "You are a helpful, knowledgeable assistant. Answer based on the information the user provides.",
	domain.SettingLLMProvider:    "deepseek",
	domain.SettingLLMBaseURL:     "https://api.deepseek.com/v1",
	domain.SettingLLMAPIKey:      "",
	domain.SettingLLMModelID:     "deepseek-chat",
	domain.SettingLargeFontScale: "1.5",

	domain.SettingSuggestionsEnabled:  "false",
	domain.SettingSuggestionsProvider: "deepseek",
	domain.SettingSuggestionsBaseURL:  "",
	domain.SettingSuggestionsAPIKey:   "",
	domain.SettingSuggestionsModelID:  "",
	domain.SettingSuggestionsSystemPrompt: "You are an assistant that predicts what the user may want to ask next. " +
		"Analyze the conversation and produce 3 concise follow-up questions that are closely related to the topic " +
		"and deepen the discussion. Reply with a JSON array of strings, for example: " +
		`["Question 1", "Question 2", "Question 3"] ` +
		"or with a numbered list (1. … 2. … 3. …).",
	domain.SettingSuggestionsCount:     "3",
	domain.SettingSuggestionsMaxRounds: "5",
	domain.SettingSuggestionsTemplates: `["How can I improve my symptoms?", "What should I watch in my diet?", "What exercise do you recommend?", "What are the side effects of the medication?", "How long will recovery take?"]`,
}

// Seed ensures the default admin account and default settings exist.
func Seed(ctx context.Context, db *gorm.DB) error {
	if _, err := GetUserByUsername(ctx, db, DefaultAdminUsername); err != nil {
		if err != gorm.ErrRecordNotFound {
			return err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(defaultAdminPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		if _, err := CreateUser(ctx, db, DefaultAdminUsername, string(hash), domain.RoleAdmin); err != nil {
			return err
		}
		log.Info().Str("username", DefaultAdminUsername).Msg("seeded default admin account; change the password")
	}

	for key, value := range defaultSettings {
		if _, ok, err := GetSetting(ctx, db, key); err != nil {
			return err
		} else if !ok {
			if err := SetSetting(ctx, db, key, value); err != nil {
				return err
			}
		}
	}
	return nil
}
