package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nvoss/agent-chat/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConversationRepository implements domain.ConversationRepository
type ConversationRepository struct {
	conversations *mongo.Collection
}

// NewConversationRepository creates a new conversation repository
func NewConversationRepository(db *mongo.Database) *ConversationRepository {
	return &ConversationRepository{conversations: db.Collection(conversationsCollection)}
}

func (r *ConversationRepository) Create(ctx context.Context, conv *domain.Conversation) error {
	res, err := r.conversations.InsertOne(ctx, conv)
	if err != nil {
		return fmt.Errorf("failed to create conversation: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		conv.ID = id
	}
	return nil
}

// GetOwned returns the conversation only when it exists and belongs to
// ownerID. Both "absent" and "owned by someone else" come back as (nil, nil)
// so callers cannot tell the two apart.
func (r *ConversationRepository) GetOwned(ctx context.Context, id, ownerID primitive.ObjectID) (*domain.Conversation, error) {
	var c domain.Conversation
	err := r.conversations.FindOne(ctx, bson.M{"_id": id, "user_id": ownerID}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	return &c, nil
}

func (r *ConversationRepository) ListByOwner(ctx context.Context, ownerID primitive.ObjectID, limit int) ([]domain.Conversation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "last_message_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.conversations.Find(ctx, bson.M{"user_id": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer cursor.Close(ctx)

	var conversations []domain.Conversation
	if err := cursor.All(ctx, &conversations); err != nil {
		return nil, fmt.Errorf("failed to decode conversations: %w", err)
	}
	return conversations, nil
}

// Touch advances the conversation's activity timestamps after a message
// is appended.
func (r *ConversationRepository) Touch(ctx context.Context, id, ownerID primitive.ObjectID, at time.Time) error {
	update := bson.M{"$set": bson.M{"last_message_at": at, "updated_at": at}}
	_, err := r.conversations.UpdateOne(ctx, bson.M{"_id": id, "user_id": ownerID}, update)
	if err != nil {
		return fmt.Errorf("failed to touch conversation: %w", err)
	}
	return nil
}

func (r *ConversationRepository) CountByOwner(ctx context.Context, ownerID primitive.ObjectID) (int64, error) {
	count, err := r.conversations.CountDocuments(ctx, bson.M{"user_id": ownerID})
	if err != nil {
		return 0, fmt.Errorf("failed to count conversations: %w", err)
	}
	return count, nil
}

func (r *ConversationRepository) IDsByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]primitive.ObjectID, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cursor, err := r.conversations.Find(ctx, bson.M{"user_id": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversation ids: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode conversation ids: %w", err)
	}

	ids := make([]primitive.ObjectID, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	return ids, nil
}

// CreatedSince returns creation timestamps of the owner's conversations
// created at or after the given instant.
func (r *ConversationRepository) CreatedSince(ctx context.Context, ownerID primitive.ObjectID, since time.Time) ([]time.Time, error) {
	filter := bson.M{"user_id": ownerID, "created_at": bson.M{"$gte": since}}
	opts := options.Find().SetProjection(bson.M{"created_at": 1})

	cursor, err := r.conversations.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversation creations: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []struct {
		CreatedAt time.Time `bson:"created_at"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode conversation creations: %w", err)
	}

	times := make([]time.Time, 0, len(docs))
	for _, d := range docs {
		times = append(times, d.CreatedAt)
	}
	return times, nil
}
