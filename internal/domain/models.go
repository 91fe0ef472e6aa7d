// Package domain defines the persistence models for users, conversations,
// messages, and system settings. These types are mapped with GORM and form
// the core data layer of the chat backend.
package domain

import (
	"time"
)

// Role values stored on User rows.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// DefaultConversationTitle is the placeholder title applied when a client
// creates a conversation without one; the first prompt replaces it.
const DefaultConversationTitle = "New conversation"

// User represents an account that can authenticate and own conversations.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - Username: unique login name.
//   - HashedPassword: bcrypt hash; never serialized to JSON.
//   - Role: "user" or "admin" (enforced by DB constraint).
//   - IsBanned: banned users cannot log in or call authenticated endpoints.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
type User struct {
	ID             string    `json:"id"         gorm:"type:char(36);primaryKey"`
	Username       string    `json:"username"   gorm:"type:varchar(64);not null;uniqueIndex"`
	HashedPassword string    `json:"-"          gorm:"type:varchar(128);not null"`
	Role           string    `json:"role"       gorm:"type:varchar(16);not null;default:'user';check:role IN ('user','admin')"`
	IsBanned       bool      `json:"is_banned"  gorm:"not null;default:false"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Conversation represents a transcript owned by a user. Each conversation
// contains an ordered list of messages exchanged between the user and the
// assistant.
//
// IsActive starts true and flips to false, permanently, when any primary
// model-affecting setting changes. A frozen conversation is read-only; the
// only way forward is starting a new conversation.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - UserID: identifier of the owner; indexed for efficient retrieval.
//   - Title: human-readable title (auto-generated from the first prompt
//     when the client leaves it as a placeholder).
//   - IsActive: false once the conversation is frozen.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
type Conversation struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	UserID    string    `json:"user_id"    gorm:"type:char(36);not null;index:idx_user_conversations"`
	Title     string    `json:"title"      gorm:"type:varchar(255);not null;default:'New conversation'"`
	IsActive  bool      `json:"is_active"  gorm:"not null;default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// User is the owning account. Conversations are cascade-deleted
	// if their user is removed.
	User User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Conversation.
func (Conversation) TableName() string { return "conversations" }

// Message represents a single turn within a conversation. Messages are
// append-only: they are created in timestamp order, never updated, and only
// removed through cascading conversation deletion.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - ConversationID: foreign key to the owning conversation (indexed).
//   - Role: "user" or "assistant" (enforced by DB constraint).
//   - Content: full text content of the turn.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
type Message struct {
	ID             string    `json:"id"              gorm:"type:char(36);primaryKey"`
	ConversationID string    `json:"conversation_id" gorm:"type:char(36);not null;index:idx_conversation_msgs,priority:1"`
	Role           string    `json:"role"            gorm:"type:varchar(16);not null;check:role IN ('user','assistant')"`
	Content        string    `json:"content"         gorm:"type:text;not null"`
	CreatedAt      time.Time `json:"created_at"      gorm:"index:idx_conversation_msgs,priority:2"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Conversation is the parent transcript. Messages are cascade-deleted
	// if their conversation is removed.
	Conversation Conversation `json:"-" gorm:"foreignKey:ConversationID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Message.
func (Message) TableName() string { return "messages" }

// SystemSetting is one entry in the schema-less runtime configuration store.
// Keys form a fixed known set (see the settings service) but the table itself
// is a plain string → string map with no foreign keys. Entries are read by
// every chat turn and written only by admin action.
type SystemSetting struct {
	Key       string    `json:"key"        gorm:"type:varchar(128);primaryKey"`
	Value     string    `json:"value"      gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for SystemSetting.
func (SystemSetting) TableName() string { return "system_settings" }
