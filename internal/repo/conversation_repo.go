// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// Conversation model.
//
// Functions:
//
//   - CreateConversation(ctx, db, userID, title) -> *domain.Conversation, error
//     Inserts a new Conversation row with UUID primary key, active flag set,
//     and UTC timestamp.
//
//   - GetConversation(ctx, db, id) -> *domain.Conversation, error
//     Fetches a conversation by ID regardless of owner (ownership is a
//     service-level concern), or ErrNotFound if missing.
//
//   - CountConversations / ListConversationsPage(ctx, db, userID, …)
//     Pagination pair for a user's conversations, newest first.
//
//   - ListAllConversations(ctx, db) -> []domain.Conversation, error
//     Admin view over every user's conversations, newest first.
//
//   - FreezeAllConversations(ctx, db) -> (int64, error)
//     Single UPDATE statement flipping is_active to false on every row.
//
//   - DeleteConversation(ctx, db, id) -> error
//     Removes a conversation and, explicitly, its messages.
//
// This repository is designed to be wrapped by a higher-level service
// (see services.ConversationService) which enforces ownership and the
// frozen-conversation rules.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medassist/llm-chat-backend/internal/domain"
)

// CreateConversation inserts a new Conversation owned by userID. The row
// starts active; CreatedAt is set to UTC.
func CreateConversation(ctx context.Context, db *gorm.DB, userID, title string) (*domain.Conversation, error) {
	c := &domain.Conversation{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// GetConversation fetches a conversation by ID. Ownership checks belong to
// the service layer so that "not found" and "forbidden" stay distinguishable.
func GetConversation(ctx context.Context, db *gorm.DB, id string) (*domain.Conversation, error) {
	var c domain.Conversation
	if err := db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// CountConversations returns the total number of conversations owned by userID.
func CountConversations(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Conversation{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	return total, err
}

// ListConversationsPage returns a paginated slice of a user's conversations,
// ordered by creation time descending.
func ListConversationsPage(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.Conversation, error) {
	var out []domain.Conversation
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// ListAllConversations returns every conversation in the system, newest
// first. Admin-only code paths use this.
func ListAllConversations(ctx context.Context, db *gorm.DB) ([]domain.Conversation, error) {
	var out []domain.Conversation
	err := db.WithContext(ctx).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// FreezeAllConversations flips is_active to false on every conversation in
// one UPDATE statement, so a concurrent active-check can never observe the
// sweep mid-flight. It returns the number of rows affected.
func FreezeAllConversations(ctx context.Context, db *gorm.DB) (int64, error) {
	res := db.WithContext(ctx).
		Model(&domain.Conversation{}).
		Where("is_active = ?", true).
		Update("is_active", false)
	return res.RowsAffected, res.Error
}

// DeleteConversation removes a conversation and its messages. Messages are
// deleted explicitly first so the cascade holds even if the SQLite foreign
// key pragma was not applied.
func DeleteConversation(ctx context.Context, db *gorm.DB, id string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("conversation_id = ?", id).Delete(&domain.Message{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&domain.Conversation{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
