package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nvoss/agent-chat/internal/domain"
	"github.com/nvoss/agent-chat/internal/repository/redis"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const defaultPageSize = 50

// AgentSender forwards user queries to the external agent service. Send
// reports false when no agent connection is available; the message is
// persisted either way and simply gets no reply.
type AgentSender interface {
	Connected() bool
	Send(conversationID, ownerID primitive.ObjectID, query, agentID string) bool
}

// ChatService handles conversations and message history
type ChatService struct {
	conversationRepo domain.ConversationRepository
	messageRepo      domain.MessageRepository
	statsCache       *redis.StatsCache
	agent            AgentSender
	defaultAgentID   string
}

// NewChatService creates a new chat service
func NewChatService(
	conversationRepo domain.ConversationRepository,
	messageRepo domain.MessageRepository,
	statsCache *redis.StatsCache,
	defaultAgentID string,
) *ChatService {
	return &ChatService{
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
		statsCache:       statsCache,
		defaultAgentID:   defaultAgentID,
	}
}

// SetAgent wires the agent bridge in. Done after construction because the
// bridge itself needs the service as its reply sink.
func (s *ChatService) SetAgent(agent AgentSender) {
	s.agent = agent
}

// CreateConversation creates a new conversation for the user. When the
// request carries a first message it is appended and forwarded to the
// agent in the same call.
func (s *ChatService) CreateConversation(ctx context.Context, ownerID primitive.ObjectID, input domain.ConversationCreate) (*domain.Conversation, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = deriveTitle(input.FirstMessage)
	}

	agentID := input.AgentID
	if agentID == "" {
		agentID = s.defaultAgentID
	}

	now := time.Now().UTC()
	conv := &domain.Conversation{
		UserID:        ownerID,
		Title:         title,
		AgentID:       agentID,
		CreatedAt:     now,
		UpdatedAt:     now,
		LastMessageAt: now,
	}

	if err := s.conversationRepo.Create(ctx, conv); err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}

	if msg := strings.TrimSpace(input.FirstMessage); msg != "" {
		if _, err := s.appendUserMessage(ctx, conv, ownerID, msg, agentID); err != nil {
			return nil, err
		}
	}

	s.invalidateStats(ctx, ownerID)

	return conv, nil
}

// ListConversations returns the user's conversations, most recent activity
// first. limit <= 0 returns all of them.
func (s *ChatService) ListConversations(ctx context.Context, ownerID primitive.ObjectID, limit int) ([]domain.Conversation, error) {
	conversations, err := s.conversationRepo.ListByOwner(ctx, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	if conversations == nil {
		conversations = []domain.Conversation{}
	}
	return conversations, nil
}

// AppendMessage persists a message in one of the user's conversations.
// Appending never creates a conversation; the target must already exist
// and belong to the caller. User messages are forwarded to the agent when
// a connection is available.
func (s *ChatService) AppendMessage(ctx context.Context, ownerID primitive.ObjectID, input domain.MessageCreate) (*domain.Message, error) {
	convID, err := primitive.ObjectIDFromHex(input.ConversationID)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	conv, err := s.conversationRepo.GetOwned(ctx, convID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	if conv == nil {
		return nil, domain.ErrConversationNotOwned
	}

	if input.Role == domain.RoleUser {
		agentID := input.AgentID
		if agentID == "" {
			agentID = conv.AgentID
		}
		return s.appendUserMessage(ctx, conv, ownerID, input.Content, agentID)
	}

	now := time.Now().UTC()
	msg := &domain.Message{
		ConversationID: conv.ID,
		Role:           input.Role,
		Content:        input.Content,
		CreatedAt:      now,
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}
	if err := s.conversationRepo.Touch(ctx, conv.ID, ownerID, now); err != nil {
		log.Error().Err(err).Str("conversation_id", conv.ID.Hex()).Msg("failed to touch conversation")
	}

	s.invalidateStats(ctx, ownerID)

	return msg, nil
}

// PageMessages returns one page of a conversation's history, oldest first.
// The cursor walks backwards: pass the previous page's nextCursor to fetch
// the page of older messages before it.
func (s *ChatService) PageMessages(ctx context.Context, ownerID primitive.ObjectID, conversationID string, limit int, cursor *time.Time) (*domain.MessagePage, error) {
	convID, err := primitive.ObjectIDFromHex(conversationID)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	conv, err := s.conversationRepo.GetOwned(ctx, convID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	if conv == nil {
		return nil, domain.ErrConversationNotOwned
	}

	if limit <= 0 {
		limit = defaultPageSize
	}

	messages, err := s.messageRepo.Page(ctx, convID, limit, cursor)
	if err != nil {
		return nil, fmt.Errorf("failed to page messages: %w", err)
	}
	if messages == nil {
		messages = []domain.Message{}
	}

	page := &domain.MessagePage{Messages: messages}
	if len(messages) > 0 {
		oldest := messages[0].CreatedAt
		page.NextCursor = &oldest
	}
	return page, nil
}

// AppendAgentReply persists an assistant turn delivered by the agent
// bridge for a previously forwarded query.
func (s *ChatService) AppendAgentReply(ctx context.Context, conversationID, ownerID primitive.ObjectID, reply domain.AgentReply) error {
	now := time.Now().UTC()
	msg := &domain.Message{
		ConversationID: conversationID,
		Role:           domain.RoleAssistant,
		Content:        reply.Content,
		Sources:        reply.Sources,
		Confidence:     reply.Confidence,
		Method:         reply.Method,
		CreatedAt:      now,
	}

	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return fmt.Errorf("failed to create agent message: %w", err)
	}
	if err := s.conversationRepo.Touch(ctx, conversationID, ownerID, now); err != nil {
		log.Error().Err(err).Str("conversation_id", conversationID.Hex()).Msg("failed to touch conversation")
	}

	s.invalidateStats(ctx, ownerID)

	return nil
}

func (s *ChatService) appendUserMessage(ctx context.Context, conv *domain.Conversation, ownerID primitive.ObjectID, content, agentID string) (*domain.Message, error) {
	if agentID == "" {
		agentID = s.defaultAgentID
	}

	now := time.Now().UTC()
	msg := &domain.Message{
		ConversationID: conv.ID,
		SenderID:       &ownerID,
		Role:           domain.RoleUser,
		Content:        content,
		CreatedAt:      now,
	}

	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}
	if err := s.conversationRepo.Touch(ctx, conv.ID, ownerID, now); err != nil {
		log.Error().Err(err).Str("conversation_id", conv.ID.Hex()).Msg("failed to touch conversation")
	}

	s.invalidateStats(ctx, ownerID)

	if s.agent != nil {
		if ok := s.agent.Send(conv.ID, ownerID, content, agentID); !ok {
			log.Warn().
				Str("conversation_id", conv.ID.Hex()).
				Str("agent_id", agentID).
				Msg("agent unavailable, message stored without reply")
		}
	}

	return msg, nil
}

func (s *ChatService) invalidateStats(ctx context.Context, ownerID primitive.ObjectID) {
	if s.statsCache == nil {
		return
	}
	if err := s.statsCache.Invalidate(ctx, ownerID.Hex()); err != nil {
		log.Error().Err(err).Msg("failed to invalidate dashboard cache")
	}
}

// deriveTitle builds a conversation title from its first message, capped
// at 30 characters.
func deriveTitle(firstMessage string) string {
	title := strings.TrimSpace(firstMessage)
	if title == "" {
		return "New Conversation"
	}
	if runes := []rune(title); len(runes) > 30 {
		return string(runes[:30]) + "..."
	}
	return title
}
