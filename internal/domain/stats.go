package domain

// DayCount is one weekday bucket of the dashboard activity histogram.
// Buckets are always emitted Monday through Sunday, zero-filled.
type DayCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// DashboardStats aggregates a single user's activity. Either every field
// is computed or the request fails; partial stats are never returned.
type DashboardStats struct {
	TotalConversations  int64          `json:"totalConversations"`
	TotalMessages       int64          `json:"totalMessages"`
	AvgGapMinutes       float64        `json:"avgGapMinutes"`
	WeeklyActivity      []DayCount     `json:"weeklyActivity"`
	RecentConversations []Conversation `json:"recentConversations"`
}
