package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/nvoss/agent-chat/internal/domain"
)

// MockUserRepository mocks the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockConversationRepository mocks the ConversationRepository interface
type MockConversationRepository struct {
	mock.Mock
}

func (m *MockConversationRepository) Create(ctx context.Context, conv *domain.Conversation) error {
	args := m.Called(ctx, conv)
	return args.Error(0)
}

func (m *MockConversationRepository) GetOwned(ctx context.Context, id, ownerID primitive.ObjectID) (*domain.Conversation, error) {
	args := m.Called(ctx, id, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Conversation), args.Error(1)
}

func (m *MockConversationRepository) ListByOwner(ctx context.Context, ownerID primitive.ObjectID, limit int) ([]domain.Conversation, error) {
	args := m.Called(ctx, ownerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Conversation), args.Error(1)
}

func (m *MockConversationRepository) Touch(ctx context.Context, id, ownerID primitive.ObjectID, at time.Time) error {
	args := m.Called(ctx, id, ownerID, at)
	return args.Error(0)
}

func (m *MockConversationRepository) CountByOwner(ctx context.Context, ownerID primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockConversationRepository) IDsByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]primitive.ObjectID, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]primitive.ObjectID), args.Error(1)
}

func (m *MockConversationRepository) CreatedSince(ctx context.Context, ownerID primitive.ObjectID, since time.Time) ([]time.Time, error) {
	args := m.Called(ctx, ownerID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]time.Time), args.Error(1)
}

// MockMessageRepository mocks the MessageRepository interface
type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) Create(ctx context.Context, message *domain.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockMessageRepository) Page(ctx context.Context, conversationID primitive.ObjectID, limit int, before *time.Time) ([]domain.Message, error) {
	args := m.Called(ctx, conversationID, limit, before)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Message), args.Error(1)
}

func (m *MockMessageRepository) CountByConversations(ctx context.Context, conversationIDs []primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, conversationIDs)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMessageRepository) CreatedAts(ctx context.Context, conversationID primitive.ObjectID) ([]time.Time, error) {
	args := m.Called(ctx, conversationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]time.Time), args.Error(1)
}

// MockAgentSender mocks the AgentSender interface
type MockAgentSender struct {
	mock.Mock
}

func (m *MockAgentSender) Connected() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockAgentSender) Send(conversationID, ownerID primitive.ObjectID, query, agentID string) bool {
	args := m.Called(conversationID, ownerID, query, agentID)
	return args.Bool(0)
}
