package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/nvoss/agent-chat/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MessageRepository implements domain.MessageRepository
type MessageRepository struct {
	messages *mongo.Collection
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *mongo.Database) *MessageRepository {
	return &MessageRepository{messages: db.Collection(messagesCollection)}
}

func (r *MessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	res, err := r.messages.InsertOne(ctx, msg)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		msg.ID = id
	}
	return nil
}

// Page returns up to limit messages of a conversation ordered oldest first.
// When before is set, only messages created strictly before that instant are
// considered, which makes repeated calls walk backwards through history.
func (r *MessageRepository) Page(ctx context.Context, conversationID primitive.ObjectID, limit int, before *time.Time) ([]domain.Message, error) {
	filter := bson.M{"conversation_id": conversationID}
	if before != nil {
		filter["created_at"] = bson.M{"$lt": *before}
	}

	// Newest-first with a limit selects the page closest to the cursor;
	// the caller-facing order is oldest first, restored below.
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.messages.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to page messages: %w", err)
	}
	defer cursor.Close(ctx)

	var messages []domain.Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (r *MessageRepository) CountByConversations(ctx context.Context, conversationIDs []primitive.ObjectID) (int64, error) {
	if len(conversationIDs) == 0 {
		return 0, nil
	}
	count, err := r.messages.CountDocuments(ctx, bson.M{"conversation_id": bson.M{"$in": conversationIDs}})
	if err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return count, nil
}

// CreatedAts returns every message creation timestamp of a conversation in
// ascending order.
func (r *MessageRepository) CreatedAts(ctx context.Context, conversationID primitive.ObjectID) ([]time.Time, error) {
	opts := options.Find().
		SetProjection(bson.M{"created_at": 1}).
		SetSort(bson.D{{Key: "created_at", Value: 1}})

	cursor, err := r.messages.Find(ctx, bson.M{"conversation_id": conversationID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list message creations: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []struct {
		CreatedAt time.Time `bson:"created_at"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode message creations: %w", err)
	}

	times := make([]time.Time, 0, len(docs))
	for _, d := range docs {
		times = append(times, d.CreatedAt)
	}
	return times, nil
}
