package services

import (
	"context"
	"errors"
	"testing"

	"github.com/medassist/llm-chat-backend/internal/domain"
	"github.com/medassist/llm-chat-backend/internal/repo"
)

func TestSettingsUpdate_ModelChangeFreezesConversations(t *testing.T) {
	db := newTestDB(t, &domain.SystemSetting{}, &domain.Conversation{})
	svc := &SettingsService{DB: db}
	ctx := context.Background()

	mustSetSettings(t, db, map[string]string{
		domain.SettingLLMProvider: "deepseek",
		domain.SettingLLMModelID:  "deepseek-chat",
	})
	c1 := mustCreateConversation(t, db, "u1")
	c2 := mustCreateConversation(t, db, "u2")

	frozen, err := svc.Update(ctx, map[string]string{
		domain.SettingLLMModelID: "deepseek-reasoner",
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if frozen != 2 {
		t.Fatalf("expected 2 frozen conversations, got %d", frozen)
	}

	for _, id := range []string{c1.ID, c2.ID} {
		got, err := repo.GetConversation(ctx, db, id)
		if err != nil {
			t.Fatalf("GetConversation %s: %v", id, err)
		}
		if got.IsActive {
			t.Fatalf("conversation %s should be frozen", id)
		}
	}

	// The new value was persisted too.
	v, _, err := repo.GetSetting(ctx, db, domain.SettingLLMModelID)
	if err != nil || v != "deepseek-reasoner" {
		t.Fatalf("setting not persisted: v=%q err=%v", v, err)
	}
}

func TestSettingsUpdate_NonModelKeyDoesNotFreeze(t *testing.T) {
	db := newTestDB(t, &domain.SystemSetting{}, &domain.Conversation{})
	svc := &SettingsService{DB: db}
	ctx := context.Background()

	conv := mustCreateConversation(t, db, "u1")

	frozen, err := svc.Update(ctx, map[string]string{
		domain.SettingWebsiteName: "MedAssist",
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if frozen != 0 {
		t.Fatalf("branding change must not freeze, got %d", frozen)
	}

	got, _ := repo.GetConversation(ctx, db, conv.ID)
	if !got.IsActive {
		t.Fatal("conversation should still be active")
	}
}

func TestSettingsUpdate_SameModelValueDoesNotFreeze(t *testing.T) {
	db := newTestDB(t, &domain.SystemSetting{}, &domain.Conversation{})
	svc := &SettingsService{DB: db}
	ctx := context.Background()

	mustSetSettings(t, db, map[string]string{domain.SettingLLMModelID: "deepseek-chat"})
	mustCreateConversation(t, db, "u1")

	frozen, err := svc.Update(ctx, map[string]string{domain.SettingLLMModelID: "deepseek-chat"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if frozen != 0 {
		t.Fatalf("no-op write must not freeze, got %d", frozen)
	}
}

func TestSettingsUpdate_EmptyMapIsNoop(t *testing.T) {
	db := newTestDB(t, &domain.SystemSetting{}, &domain.Conversation{})
	svc := &SettingsService{DB: db}

	frozen, err := svc.Update(context.Background(), map[string]string{})
	if err != nil || frozen != 0 {
		t.Fatalf("empty update: frozen=%d err=%v", frozen, err)
	}
}

func TestSettingsChat_DefaultsAndMissingKey(t *testing.T) {
	db := newTestDB(t, &domain.SystemSetting{})
	svc := &SettingsService{DB: db}
	ctx := context.Background()

	if _, err := svc.Chat(ctx); !errors.Is(err, ErrAPIKeyMissing) {
		t.Fatalf("expected ErrAPIKeyMissing, got %v", err)
	}

	mustSetSettings(t, db, map[string]string{domain.SettingLLMAPIKey: "sk-test"})
	cfg, err := svc.Chat(ctx)
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if cfg.Provider != "deepseek" || cfg.Model != "deepseek-chat" {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if cfg.SystemPrompt == "" {
		t.Fatal("expected a default system prompt")
	}
}

func TestSettingsChat_ModelIDWinsOverModelName(t *testing.T) {
	db := newTestDB(t, &domain.SystemSetting{})
	svc := &SettingsService{DB: db}

	mustSetSettings(t, db, map[string]string{
		domain.SettingLLMAPIKey:    "sk-test",
		domain.SettingLLMModelID:   "model-id",
		domain.SettingLLMModelName: "model-name",
	})
	cfg, err := svc.Chat(context.Background())
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if cfg.Model != "model-id" {
		t.Fatalf("model id should take precedence, got %q", cfg.Model)
	}
}

func TestSettingsSuggestions_ParsesAndClamps(t *testing.T) {
	db := newTestDB(t, &domain.SystemSetting{})
	svc := &SettingsService{DB: db}

	mustSetSettings(t, db, map[string]string{
		domain.SettingSuggestionsEnabled:   "TRUE",
		domain.SettingSuggestionsCount:     "0",
		domain.SettingSuggestionsMaxRounds: "not-a-number",
		domain.SettingSuggestionsTemplates: `["What next?","Any risks?"]`,
	})
	cfg, err := svc.Suggestions(context.Background())
	if err != nil {
		t.Fatalf("Suggestions: %v", err)
	}
	if !cfg.Enabled {
		t.Fatal("case-insensitive truthy flag not recognized")
	}
	if cfg.Count != 1 {
		t.Fatalf("count should clamp to 1, got %d", cfg.Count)
	}
	if cfg.MaxRounds != 5 {
		t.Fatalf("unparsable max rounds should default to 5, got %d", cfg.MaxRounds)
	}
	if len(cfg.Templates) != 2 || cfg.Templates[0] != "What next?" {
		t.Fatalf("template pool not decoded: %v", cfg.Templates)
	}
}

func TestSettingsSuggestions_CorruptTemplatePool(t *testing.T) {
	db := newTestDB(t, &domain.SystemSetting{})
	svc := &SettingsService{DB: db}

	mustSetSettings(t, db, map[string]string{
		domain.SettingSuggestionsEnabled:   "true",
		domain.SettingSuggestionsTemplates: "{not json",
	})
	cfg, err := svc.Suggestions(context.Background())
	if err != nil {
		t.Fatalf("corrupt pool must not be an error: %v", err)
	}
	if len(cfg.Templates) != 0 {
		t.Fatalf("corrupt pool should degrade to empty, got %v", cfg.Templates)
	}
}
