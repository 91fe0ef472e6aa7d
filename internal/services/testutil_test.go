package services

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/medassist/llm-chat-backend/internal/domain"
	"github.com/medassist/llm-chat-backend/internal/repo"
)

func newTestDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("svc_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if len(migrate) > 0 {
		if err := db.AutoMigrate(migrate...); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

func mustSetSettings(t *testing.T, db *gorm.DB, values map[string]string) {
	t.Helper()
	if err := repo.SetSettings(context.Background(), db, values); err != nil {
		t.Fatalf("seed settings: %v", err)
	}
}

func mustCreateConversation(t *testing.T, db *gorm.DB, userID string) *domain.Conversation {
	t.Helper()
	conv, err := repo.CreateConversation(context.Background(), db, userID, "chat")
	if err != nil {
		t.Fatalf("seed conversation: %v", err)
	}
	return conv
}
