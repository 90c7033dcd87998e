package domain

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MessageRole represents the sender of a message
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

// ValidRole reports whether the role is one of the accepted values.
func ValidRole(r MessageRole) bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// Source is a provenance record attached to assistant turns produced by
// the agent's web-search path.
type Source struct {
	Title      string  `bson:"title,omitempty" json:"title,omitempty"`
	URL        string  `bson:"url,omitempty" json:"url,omitempty"`
	Confidence float64 `bson:"confidence,omitempty" json:"confidence,omitempty"`
}

// AgentReply is a completed answer delivered by the agent service for a
// previously forwarded user query.
type AgentReply struct {
	Content    string
	Sources    []Source
	Confidence float64
	Method     string
}

// Message represents one turn in a conversation
type Message struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	ConversationID primitive.ObjectID  `bson:"conversation_id" json:"conversationId"`
	SenderID       *primitive.ObjectID `bson:"sender_id,omitempty" json:"senderId,omitempty"` // unset for assistant turns
	Role           MessageRole         `bson:"role" json:"role"`
	Content        string              `bson:"content" json:"content"`
	Sources        []Source            `bson:"sources,omitempty" json:"sources,omitempty"`
	Confidence     float64             `bson:"confidence,omitempty" json:"confidence,omitempty"`
	Method         string              `bson:"method,omitempty" json:"method,omitempty"`
	CreatedAt      time.Time           `bson:"created_at" json:"createdAt"`
}

// MessageCreate represents the append-message request body
type MessageCreate struct {
	ConversationID string      `json:"conversationId" validate:"required"`
	Role           MessageRole `json:"role" validate:"required,oneof=user assistant system"`
	Content        string      `json:"content" validate:"required"`
	AgentID        string      `json:"agentId"`
}

// MessagePage is one page of a conversation's history. Messages are
// oldest-first within the page; NextCursor is the oldest timestamp of the
// page and nil once the walk is exhausted.
type MessagePage struct {
	Messages   []Message  `json:"messages"`
	NextCursor *time.Time `json:"nextCursor"`
}

// MessageRepository defines the interface for message storage
type MessageRepository interface {
	Create(ctx context.Context, message *Message) error
	// Page returns up to limit messages of the conversation created
	// strictly before the cursor (or the newest ones when before is nil),
	// ordered oldest-first.
	Page(ctx context.Context, conversationID primitive.ObjectID, limit int, before *time.Time) ([]Message, error)
	CountByConversations(ctx context.Context, conversationIDs []primitive.ObjectID) (int64, error)
	// CreatedAts returns every message timestamp of the conversation in
	// ascending order. Used for dashboard gap statistics.
	CreatedAts(ctx context.Context, conversationID primitive.ObjectID) ([]time.Time, error)
}
