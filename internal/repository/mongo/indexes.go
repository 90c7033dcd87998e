package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names used across the repositories.
const (
	usersCollection         = "users"
	conversationsCollection = "conversations"
	messagesCollection      = "messages"
)

// EnsureIndexes creates the indexes the repositories rely on. Creating an
// index that already exists is a no-op, so this is safe to run on every
// startup.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	users := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := db.Collection(usersCollection).Indexes().CreateMany(ctx, users); err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}

	conversations := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "last_message_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
	}
	if _, err := db.Collection(conversationsCollection).Indexes().CreateMany(ctx, conversations); err != nil {
		return fmt.Errorf("failed to create conversation indexes: %w", err)
	}

	messages := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "conversation_id", Value: 1}, {Key: "created_at", Value: 1}},
		},
	}
	if _, err := db.Collection(messagesCollection).Indexes().CreateMany(ctx, messages); err != nil {
		return fmt.Errorf("failed to create message indexes: %w", err)
	}

	return nil
}
