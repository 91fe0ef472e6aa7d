// System-setting keys. The settings table itself is schema-less, but the
// application only ever reads and writes this fixed set.
package domain

// Branding and presentation keys.
const (
	SettingWebsiteName    = "website_name"
	SettingWebsiteLogo    = "website_logo"
	SettingLargeFontScale = "large_font_scale"
)

// Primary chat model configuration keys. Changing the stored value of any of
// these freezes every conversation in the system (see services.SettingsService).
const (
	SettingSystemPrompt = "system_prompt"
	SettingLLMProvider  = "llm_provider"
	SettingLLMBaseURL   = "llm_base_url"
	SettingLLMAPIKey    = "llm_api_key"
	SettingLLMModelID   = "llm_model_id"
	SettingLLMModelName = "llm_model_name"
)

// Suggested-questions feature keys. This secondary model configuration is
// independent of the primary one and does not participate in the freeze sweep.
const (
	SettingSuggestionsEnabled      = "suggested_questions_enabled"
	SettingSuggestionsProvider     = "suggested_questions_provider"
	SettingSuggestionsBaseURL      = "suggested_questions_base_url"
	SettingSuggestionsAPIKey       = "suggested_questions_api_key"
	SettingSuggestionsModelID      = "suggested_questions_model_id"
	SettingSuggestionsSystemPrompt = "suggested_questions_system_prompt"
	SettingSuggestionsCount        = "suggested_questions_count"
	SettingSuggestionsMaxRounds    = "suggested_questions_max_rounds"
	SettingSuggestionsTemplates    = "suggested_questions_template_questions"
)

// ModelAffectingSettingKeys lists the primary-configuration keys whose change
// triggers the global conversation freeze.
var ModelAffectingSettingKeys = []string{
	SettingLLMProvider,
	SettingLLMBaseURL,
	SettingLLMAPIKey,
	SettingLLMModelID,
	SettingLLMModelName,
}

// knownSettingKeys is the closed set of keys the API accepts for writes.
var knownSettingKeys = map[string]struct{}{
	SettingWebsiteName:             {},
	SettingWebsiteLogo:             {},
	SettingLargeFontScale:          {},
	SettingSystemPrompt:            {},
	SettingLLMProvider:             {},
	SettingLLMBaseURL:              {},
	SettingLLMAPIKey:               {},
	SettingLLMModelID:              {},
	SettingLLMModelName:            {},
	SettingSuggestionsEnabled:      {},
	SettingSuggestionsProvider:     {},
	SettingSuggestionsBaseURL:      {},
	SettingSuggestionsAPIKey:       {},
	SettingSuggestionsModelID:      {},
	SettingSuggestionsSystemPrompt: {},
	SettingSuggestionsCount:        {},
	SettingSuggestionsMaxRounds:    {},
	SettingSuggestionsTemplates:    {},
}

// IsKnownSettingKey reports whether key belongs to the accepted settings set.
func IsKnownSettingKey(key string) bool {
	_, ok := knownSettingKeys[key]
	return ok
}
