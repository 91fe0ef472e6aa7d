// Package services – AdminService
//
// Administrative operations over users and conversations, plus connectivity
// probes against the configured model. The seeded administrator account is
// immutable: it can be neither banned nor deleted.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/medassist/llm-chat-backend/internal/domain"
	"github.com/medassist/llm-chat-backend/internal/llm"
	"github.com/medassist/llm-chat-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ModelProber is the gateway contract for admin-side model diagnostics.
type ModelProber interface {
	TestConnection(ctx context.Context, req llm.Request) error
	ListModels(ctx context.Context, req llm.Request) ([]llm.ModelInfo, error)
}

// AdminService exposes operator actions. All methods assume the caller has
// already been authorized as an administrator.
type AdminService struct {
	DB       *gorm.DB
	Gateway  ModelProber
	Settings *SettingsService
}

// ListUsers returns all accounts, newest first.
func (s *AdminService) ListUsers(ctx context.Context) ([]domain.User, error) {
	tr := otel.Tracer("services/AdminService")
	ctx, span := tr.Start(ctx, "ListUsers")
	defer span.End()

	return repo.ListUsers(ctx, s.DB)
}

// SetUserBan toggles the banned flag for a user. The seeded administrator
// cannot be banned.
func (s *AdminService) SetUserBan(ctx context.Context, userID string, banned bool) error {
	tr := otel.Tracer("services/AdminService")
	ctx, span := tr.Start(ctx, "SetUserBan",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.Bool("banned", banned),
		),
	)
	defer span.End()

	u, err := repo.GetUserByID(ctx, s.DB, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if u.Username == repo.DefaultAdminUsername {
		return ErrAdminImmutable
	}
	if err := repo.UpdateUserBan(ctx, s.DB, userID, banned); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

// DeleteUser removes an account and, through the schema's cascade rules, its
// conversations and messages. The seeded administrator cannot be deleted.
func (s *AdminService) DeleteUser(ctx context.Context, userID string) error {
	tr := otel.Tracer("services/AdminService")
	ctx, span := tr.Start(ctx, "DeleteUser",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	u, err := repo.GetUserByID(ctx, s.DB, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if u.Username == repo.DefaultAdminUsername {
		return ErrAdminImmutable
	}
	return repo.DeleteUser(ctx, s.DB, userID)
}

// ListAllConversations returns every conversation in the system, newest first.
func (s *AdminService) ListAllConversations(ctx context.Context) ([]domain.Conversation, error) {
	tr := otel.Tracer("services/AdminService")
	ctx, span := tr.Start(ctx, "ListAllConversations")
	defer span.End()

	return repo.ListAllConversations(ctx, s.DB)
}

// DeleteConversation removes any conversation regardless of owner.
func (s *AdminService) DeleteConversation(ctx context.Context, conversationID string) error {
	tr := otel.Tracer("services/AdminService")
	ctx, span := tr.Start(ctx, "DeleteConversation",
		trace.WithAttributes(attribute.String("conversation.id", conversationID)),
	)
	defer span.End()

	if err := repo.DeleteConversation(ctx, s.DB, conversationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrConversationNotFound
		}
		return err
	}
	return nil
}

// TestConnection issues a minimal completion against the supplied credentials
// to verify they work end to end. A nil error means the probe round-tripped.
func (s *AdminService) TestConnection(ctx context.Context, provider, apiKey, model, baseURL string) error {
	tr := otel.Tracer("services/AdminService")
	ctx, span := tr.Start(ctx, "TestConnection",
		trace.WithAttributes(attribute.String("llm.provider", provider)),
	)
	defer span.End()

	if apiKey == "" {
		return ErrAPIKeyMissing
	}
	return s.Gateway.TestConnection(ctx, llm.Request{
		Provider: provider,
		APIKey:   apiKey,
		Model:    model,
		BaseURL:  baseURL,
	})
}

// ListModels enumerates the models visible to the supplied credentials.
func (s *AdminService) ListModels(ctx context.Context, provider, apiKey, baseURL string) ([]llm.ModelInfo, error) {
	tr := otel.Tracer("services/AdminService")
	ctx, span := tr.Start(ctx, "ListModels",
		trace.WithAttributes(attribute.String("llm.provider", provider)),
	)
	defer span.End()

	if apiKey == "" {
		return nil, ErrAPIKeyMissing
	}
	return s.Gateway.ListModels(ctx, llm.Request{
		Provider: provider,
		APIKey:   apiKey,
		BaseURL:  baseURL,
	})
}
