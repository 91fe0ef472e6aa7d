package repo

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/medassist/llm-chat-backend/internal/domain"
)

func TestCreateMessage_And_ListOrdering(t *testing.T) {
	db := newTestDB(t, &domain.Conversation{}, &domain.Message{})
	ctx := context.Background()

	conv, err := CreateConversation(ctx, db, "u1", "chat")
	if err != nil {
		t.Fatalf("CreateConversation: %v", err)
	}

	// Deterministic timestamps.
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		m := domain.Message{
			ID:             fmt.Sprintf("m-%d", i),
			ConversationID: conv.ID,
			Role:           role,
			Content:        fmt.Sprintf("turn %d", i),
			CreatedAt:      base.Add(time.Duration(i) * time.Minute),
			UpdatedAt:      base.Add(time.Duration(i) * time.Minute),
		}
		if err := db.Create(&m).Error; err != nil {
			t.Fatalf("seed message: %v", err)
		}
	}

	msgs, err := ListMessages(db, conv.ID, 0)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(msgs) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(msgs))
	}
	for i, m := range msgs {
		if m.Content != fmt.Sprintf("turn %d", i) {
			t.Fatalf("ordering broken at %d: %+v", i, m)
		}
	}

	// Limit applies after ordering.
	limited, err := ListMessages(db, conv.ID, 2)
	if err != nil || len(limited) != 2 {
		t.Fatalf("limited list: n=%d err=%v", len(limited), err)
	}
	if limited[0].Content != "turn 0" {
		t.Fatalf("limit should keep oldest-first order, got %q", limited[0].Content)
	}

	total, err := CountMessages(db, conv.ID)
	if err != nil || total != 4 {
		t.Fatalf("CountMessages: total=%d err=%v", total, err)
	}

	page, err := ListMessagesPage(db, conv.ID, 2, 2)
	if err != nil {
		t.Fatalf("ListMessagesPage: %v", err)
	}
	if len(page) != 2 || page[0].Content != "turn 2" {
		t.Fatalf("unexpected page: %+v", page)
	}
}

func TestCreateMessage_PersistsFields(t *testing.T) {
	db := newTestDB(t, &domain.Conversation{}, &domain.Message{})
	ctx := context.Background()

	conv, err := CreateConversation(ctx, db, "u1", "chat")
	if err != nil {
		t.Fatalf("CreateConversation: %v", err)
	}

	msg, err := CreateMessage(db, conv.ID, "assistant", "hello there")
	if err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}
	if msg.ID == "" || msg.Role != "assistant" || msg.Content != "hello there" {
		t.Fatalf("unexpected message: %+v", msg)
	}

	var got domain.Message
	if err := db.First(&got, "id = ?", msg.ID).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.ConversationID != conv.ID {
		t.Fatalf("round-trip mismatch: %+v", got)
	}
}

func TestStats(t *testing.T) {
	db := newTestDB(t, &domain.Conversation{}, &domain.Message{})
	ctx := context.Background()

	count, maxTS, err := ConversationsStats(ctx, db, "u1")
	if err != nil {
		t.Fatalf("empty stats: %v", err)
	}
	if count != 0 || maxTS != nil {
		t.Fatalf("empty stats should be (0, nil), got (%d, %v)", count, maxTS)
	}

	conv, err := CreateConversation(ctx, db, "u1", "chat")
	if err != nil {
		t.Fatalf("CreateConversation: %v", err)
	}
	if _, err := CreateMessage(db, conv.ID, "user", "hi"); err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}

	count, maxTS, err = ConversationsStats(ctx, db, "u1")
	if err != nil || count != 1 || maxTS == nil {
		t.Fatalf("stats after insert: count=%d ts=%v err=%v", count, maxTS, err)
	}

	mcount, mts, err := MessagesStats(ctx, db, conv.ID)
	if err != nil || mcount != 1 || mts == nil {
		t.Fatalf("message stats: count=%d ts=%v err=%v", mcount, mts, err)
	}
}
