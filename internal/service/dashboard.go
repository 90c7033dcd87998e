package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/nvoss/agent-chat/internal/domain"
	"github.com/nvoss/agent-chat/internal/repository/redis"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// weekDays is the dashboard's fixed histogram order. Go numbers weekdays
// Sunday=0; the remap in weekdayIndex keeps that convention off the wire.
var weekDays = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

const recentConversationCount = 5

// DashboardService computes per-user usage aggregates
type DashboardService struct {
	conversationRepo domain.ConversationRepository
	messageRepo      domain.MessageRepository
	statsCache       *redis.StatsCache
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	conversationRepo domain.ConversationRepository,
	messageRepo domain.MessageRepository,
	statsCache *redis.StatsCache,
) *DashboardService {
	return &DashboardService{
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
		statsCache:       statsCache,
	}
}

// Stats aggregates the caller's dashboard numbers. Any store failure fails
// the whole call so the dashboard never renders a mix of computed and zero
// fields.
func (s *DashboardService) Stats(ctx context.Context, ownerID primitive.ObjectID) (*domain.DashboardStats, error) {
	if s.statsCache != nil {
		cached, err := s.statsCache.Get(ctx, ownerID.Hex())
		if err == nil && cached != nil {
			return cached, nil
		}
	}

	totalConversations, err := s.conversationRepo.CountByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count conversations: %w", err)
	}

	conversationIDs, err := s.conversationRepo.IDsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	totalMessages, err := s.messageRepo.CountByConversations(ctx, conversationIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to count messages: %w", err)
	}

	avgGap, err := s.averageGapMinutes(ctx, conversationIDs)
	if err != nil {
		return nil, err
	}

	weekly, err := s.weeklyActivity(ctx, ownerID, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	recent, err := s.conversationRepo.ListByOwner(ctx, ownerID, recentConversationCount)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent conversations: %w", err)
	}
	if recent == nil {
		recent = []domain.Conversation{}
	}

	stats := &domain.DashboardStats{
		TotalConversations:  totalConversations,
		TotalMessages:       totalMessages,
		AvgGapMinutes:       avgGap,
		WeeklyActivity:      weekly,
		RecentConversations: recent,
	}

	if s.statsCache != nil {
		if err := s.statsCache.Set(ctx, ownerID.Hex(), stats); err != nil {
			log.Error().Err(err).Msg("failed to cache dashboard stats")
		}
	}

	return stats, nil
}

// averageGapMinutes pools the gaps between successive messages within each
// conversation and returns their mean in minutes. Conversations with fewer
// than two messages contribute nothing.
func (s *DashboardService) averageGapMinutes(ctx context.Context, conversationIDs []primitive.ObjectID) (float64, error) {
	var total time.Duration
	var gaps int

	for _, id := range conversationIDs {
		times, err := s.messageRepo.CreatedAts(ctx, id)
		if err != nil {
			return 0, fmt.Errorf("failed to list message timestamps: %w", err)
		}
		for i := 1; i < len(times); i++ {
			total += times[i].Sub(times[i-1])
			gaps++
		}
	}

	if gaps == 0 {
		return 0, nil
	}

	minutes := total.Minutes() / float64(gaps)
	return math.Round(minutes*100) / 100, nil
}

// weeklyActivity buckets conversations created in the trailing 7 days by
// calendar weekday, zero-filled and ordered Monday through Sunday.
func (s *DashboardService) weeklyActivity(ctx context.Context, ownerID primitive.ObjectID, now time.Time) ([]domain.DayCount, error) {
	dayStart := now.Truncate(24 * time.Hour)
	since := dayStart.AddDate(0, 0, -6)

	created, err := s.conversationRepo.CreatedSince(ctx, ownerID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversation creations: %w", err)
	}

	counts := make([]int, 7)
	for _, t := range created {
		counts[weekdayIndex(t.UTC())]++
	}

	activity := make([]domain.DayCount, 7)
	for i, day := range weekDays {
		activity[i] = domain.DayCount{Day: day, Count: counts[i]}
	}
	return activity, nil
}

// weekdayIndex maps a timestamp to its Monday=0..Sunday=6 bucket.
func weekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
