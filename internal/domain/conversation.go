package domain

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Conversation represents a chat thread owned by exactly one user
type Conversation struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        primitive.ObjectID `bson:"user_id" json:"userId"`
	Title         string             `bson:"title" json:"title"`
	AgentID       string             `bson:"agent_id" json:"agentId"`
	CreatedAt     time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updatedAt"`
	LastMessageAt time.Time          `bson:"last_message_at" json:"lastMessageAt"`
}

// ConversationCreate represents the create-conversation request body.
// Title wins when both title and firstMessage are present; otherwise the
// title is derived from the first message text.
type ConversationCreate struct {
	Title        string `json:"title" validate:"max=200"`
	FirstMessage string `json:"firstMessage"`
	AgentID      string `json:"agentId"`
}

// ConversationRepository defines the interface for conversation storage.
// Every lookup and mutation is scoped by the owning user id; a
// conversation that exists but belongs to someone else is reported the
// same way as one that does not exist at all.
type ConversationRepository interface {
	Create(ctx context.Context, conv *Conversation) error
	// GetOwned returns (nil, nil) when the conversation is absent or not
	// owned by ownerID.
	GetOwned(ctx context.Context, id, ownerID primitive.ObjectID) (*Conversation, error)
	// ListByOwner returns the owner's conversations ordered by most
	// recent activity first. limit <= 0 means no limit.
	ListByOwner(ctx context.Context, ownerID primitive.ObjectID, limit int) ([]Conversation, error)
	// Touch refreshes last_message_at and updated_at after an append.
	Touch(ctx context.Context, id, ownerID primitive.ObjectID, at time.Time) error
	CountByOwner(ctx context.Context, ownerID primitive.ObjectID) (int64, error)
	// IDsByOwner returns the ids of every conversation owned by ownerID.
	IDsByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]primitive.ObjectID, error)
	// CreatedSince returns creation timestamps of the owner's
	// conversations created at or after the given instant.
	CreatedSince(ctx context.Context, ownerID primitive.ObjectID, since time.Time) ([]time.Time, error)
}
