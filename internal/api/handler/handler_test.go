package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/nvoss/agent-chat/internal/api/handler"
	"github.com/nvoss/agent-chat/internal/api/middleware"
	"github.com/nvoss/agent-chat/internal/domain"
	"github.com/nvoss/agent-chat/internal/security"
	"github.com/nvoss/agent-chat/internal/service"
)

// In-memory repositories so handler tests run the full stack without a
// database.

type fakeUserRepo struct {
	byEmail map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: map[string]*domain.User{}}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	if _, ok := f.byEmail[user.Email]; ok {
		return domain.ErrEmailTaken
	}
	user.ID = primitive.NewObjectID()
	stored := *user
	f.byEmail[user.Email] = &stored
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, nil
	}
	found := *u
	return &found, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			found := *u
			return &found, nil
		}
	}
	return nil, nil
}

type fakeConversationRepo struct {
	conversations []*domain.Conversation
}

func (f *fakeConversationRepo) Create(ctx context.Context, conv *domain.Conversation) error {
	conv.ID = primitive.NewObjectID()
	stored := *conv
	f.conversations = append(f.conversations, &stored)
	return nil
}

func (f *fakeConversationRepo) GetOwned(ctx context.Context, id, ownerID primitive.ObjectID) (*domain.Conversation, error) {
	for _, c := range f.conversations {
		if c.ID == id && c.UserID == ownerID {
			found := *c
			return &found, nil
		}
	}
	return nil, nil
}

func (f *fakeConversationRepo) ListByOwner(ctx context.Context, ownerID primitive.ObjectID, limit int) ([]domain.Conversation, error) {
	var owned []domain.Conversation
	for _, c := range f.conversations {
		if c.UserID == ownerID {
			owned = append(owned, *c)
		}
	}
	sort.Slice(owned, func(i, j int) bool {
		return owned[i].LastMessageAt.After(owned[j].LastMessageAt)
	})
	if limit > 0 && len(owned) > limit {
		owned = owned[:limit]
	}
	return owned, nil
}

func (f *fakeConversationRepo) Touch(ctx context.Context, id, ownerID primitive.ObjectID, at time.Time) error {
	for _, c := range f.conversations {
		if c.ID == id && c.UserID == ownerID {
			c.LastMessageAt = at
			c.UpdatedAt = at
		}
	}
	return nil
}

func (f *fakeConversationRepo) CountByOwner(ctx context.Context, ownerID primitive.ObjectID) (int64, error) {
	var n int64
	for _, c := range f.conversations {
		if c.UserID == ownerID {
			n++
		}
	}
	return n, nil
}

func (f *fakeConversationRepo) IDsByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]primitive.ObjectID, error) {
	var ids []primitive.ObjectID
	for _, c := range f.conversations {
		if c.UserID == ownerID {
			ids = append(ids, c.ID)
		}
	}
	return ids, nil
}

func (f *fakeConversationRepo) CreatedSince(ctx context.Context, ownerID primitive.ObjectID, since time.Time) ([]time.Time, error) {
	var times []time.Time
	for _, c := range f.conversations {
		if c.UserID == ownerID && !c.CreatedAt.Before(since) {
			times = append(times, c.CreatedAt)
		}
	}
	return times, nil
}

type fakeMessageRepo struct {
	messages []*domain.Message
}

func (f *fakeMessageRepo) Create(ctx context.Context, message *domain.Message) error {
	message.ID = primitive.NewObjectID()
	stored := *message
	f.messages = append(f.messages, &stored)
	return nil
}

func (f *fakeMessageRepo) Page(ctx context.Context, conversationID primitive.ObjectID, limit int, before *time.Time) ([]domain.Message, error) {
	var matched []domain.Message
	for _, m := range f.messages {
		if m.ConversationID != conversationID {
			continue
		}
		if before != nil && !m.CreatedAt.Before(*before) {
			continue
		}
		matched = append(matched, *m)
	}
	if len(matched) > limit {
		matched = matched[len(matched)-limit:]
	}
	return matched, nil
}

func (f *fakeMessageRepo) CountByConversations(ctx context.Context, conversationIDs []primitive.ObjectID) (int64, error) {
	var n int64
	for _, m := range f.messages {
		for _, id := range conversationIDs {
			if m.ConversationID == id {
				n++
				break
			}
		}
	}
	return n, nil
}

func (f *fakeMessageRepo) CreatedAts(ctx context.Context, conversationID primitive.ObjectID) ([]time.Time, error) {
	var times []time.Time
	for _, m := range f.messages {
		if m.ConversationID == conversationID {
			times = append(times, m.CreatedAt)
		}
	}
	return times, nil
}

// newTestRouter wires handlers against the in-memory repositories with no
// agent bridge attached, so user messages are stored without replies.
func newTestRouter() http.Handler {
	users := newFakeUserRepo()
	convs := &fakeConversationRepo{}
	msgs := &fakeMessageRepo{}

	jwtManager := security.NewJWTManager("handler-test-secret", time.Hour)
	authService := service.NewAuthService(users, jwtManager)
	chatService := service.NewChatService(convs, msgs, nil, "general")
	dashboardService := service.NewDashboardService(convs, msgs, nil)

	authHandler := handler.NewAuthHandler(authService, time.Hour, false)
	conversationHandler := handler.NewConversationHandler(chatService)
	messageHandler := handler.NewMessageHandler(chatService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)

	authMiddleware := middleware.NewAuthMiddleware(jwtManager)

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", handler.HealthCheck)

		r.Post("/signup", authHandler.Signup)
		r.Post("/signin", authHandler.Signin)
		r.Post("/signout", authHandler.Signout)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/me", authHandler.Me)

			r.Route("/conversations", func(r chi.Router) {
				r.Get("/", conversationHandler.List)
				r.Post("/", conversationHandler.Create)
			})

			r.Route("/messages", func(r chi.Router) {
				r.Get("/", messageHandler.Page)
				r.Post("/", messageHandler.Append)
			})

			r.Get("/dashboard", dashboardHandler.Stats)
		})
	})
	return r
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   any             `json:"error"`
}

// Helper to make JSON request
func makeJSONRequest(method, path string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func serve(router http.Handler, req *http.Request, cookie *http.Cookie) *httptest.ResponseRecorder {
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return env
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	env := decodeEnvelope(t, rec)
	if !env.Success {
		t.Fatalf("expected success response, got error: %v", env.Error)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == security.SessionCookieName {
			return c
		}
	}
	t.Fatal("expected a session cookie")
	return nil
}

func signup(t *testing.T, router http.Handler, name, email string) *http.Cookie {
	t.Helper()
	rec := serve(router, makeJSONRequest(http.MethodPost, "/api/v1/signup", map[string]string{
		"fullName": name,
		"email":    email,
		"password": "secret-password",
	}), nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup: expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}
	return sessionCookie(t, rec)
}

func TestHealthCheck(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()

	handler.HealthCheck(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	env := decodeEnvelope(t, rec)
	if !env.Success {
		t.Error("expected success to be true")
	}

	var data map[string]string
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
	if data["status"] != "ok" {
		t.Errorf("expected status 'ok', got %v", data["status"])
	}
}

func TestSignupAndSignin(t *testing.T) {
	router := newTestRouter()

	// Sign up
	rec := serve(router, makeJSONRequest(http.MethodPost, "/api/v1/signup", map[string]string{
		"fullName": "Ann",
		"email":    "ann@example.com",
		"password": "secret-password",
	}), nil)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	var user domain.UserSummary
	decodeData(t, rec, &user)
	if user.Username != "Ann" {
		t.Errorf("expected username 'Ann', got %q", user.Username)
	}
	if user.Email != "ann@example.com" {
		t.Errorf("expected email 'ann@example.com', got %q", user.Email)
	}
	if user.ID == "" {
		t.Error("expected a user id")
	}

	cookie := sessionCookie(t, rec)
	if !cookie.HttpOnly {
		t.Error("session cookie must be HttpOnly")
	}

	// Duplicate signup
	rec = serve(router, makeJSONRequest(http.MethodPost, "/api/v1/signup", map[string]string{
		"fullName": "Ann Again",
		"email":    "ann@example.com",
		"password": "other-password",
	}), nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("expected status %d for duplicate email, got %d", http.StatusConflict, rec.Code)
	}

	// Sign in
	rec = serve(router, makeJSONRequest(http.MethodPost, "/api/v1/signin", map[string]string{
		"email":    "ann@example.com",
		"password": "secret-password",
	}), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	decodeData(t, rec, &user)
	if user.Username != "Ann" {
		t.Errorf("expected username 'Ann', got %q", user.Username)
	}
	sessionCookie(t, rec)

	// Wrong password and unknown email must fail identically
	rec = serve(router, makeJSONRequest(http.MethodPost, "/api/v1/signin", map[string]string{
		"email":    "ann@example.com",
		"password": "wrong-password",
	}), nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d for wrong password, got %d", http.StatusUnauthorized, rec.Code)
	}
	wrongPassword := decodeEnvelope(t, rec).Error

	rec = serve(router, makeJSONRequest(http.MethodPost, "/api/v1/signin", map[string]string{
		"email":    "ghost@example.com",
		"password": "secret-password",
	}), nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d for unknown email, got %d", http.StatusUnauthorized, rec.Code)
	}
	if unknownEmail := decodeEnvelope(t, rec).Error; unknownEmail != wrongPassword {
		t.Errorf("credential errors must be indistinguishable: %v vs %v", wrongPassword, unknownEmail)
	}
}

func TestSignupValidation(t *testing.T) {
	router := newTestRouter()

	tests := []struct {
		name string
		body map[string]string
	}{
		{"missing email", map[string]string{"fullName": "Ann", "password": "secret-password"}},
		{"bad email", map[string]string{"fullName": "Ann", "email": "nope", "password": "secret-password"}},
		{"short password", map[string]string{"fullName": "Ann", "email": "ann@example.com", "password": "short"}},
		{"missing name", map[string]string{"email": "ann@example.com", "password": "secret-password"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(router, makeJSONRequest(http.MethodPost, "/api/v1/signup", tt.body), nil)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
			}
		})
	}
}

func TestMe(t *testing.T) {
	router := newTestRouter()
	cookie := signup(t, router, "Ann", "ann@example.com")

	// With cookie
	rec := serve(router, makeJSONRequest(http.MethodGet, "/api/v1/me", nil), cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	var user domain.UserSummary
	decodeData(t, rec, &user)
	if user.Email != "ann@example.com" {
		t.Errorf("expected email 'ann@example.com', got %q", user.Email)
	}

	// Bearer token works as a fallback
	req := makeJSONRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+cookie.Value)
	rec = serve(router, req, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d with bearer token, got %d", http.StatusOK, rec.Code)
	}

	// No credentials
	rec = serve(router, makeJSONRequest(http.MethodGet, "/api/v1/me", nil), nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d without cookie, got %d", http.StatusUnauthorized, rec.Code)
	}

	// Tampered token
	tampered := &http.Cookie{Name: security.SessionCookieName, Value: cookie.Value + "x"}
	rec = serve(router, makeJSONRequest(http.MethodGet, "/api/v1/me", nil), tampered)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d with tampered token, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestSignout(t *testing.T) {
	router := newTestRouter()
	signup(t, router, "Ann", "ann@example.com")

	rec := serve(router, makeJSONRequest(http.MethodPost, "/api/v1/signout", nil), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	cleared := sessionCookie(t, rec)
	if cleared.MaxAge >= 0 {
		t.Errorf("expected clearing cookie with negative MaxAge, got %d", cleared.MaxAge)
	}
}

func TestMessageFlow(t *testing.T) {
	router := newTestRouter()
	cookie := signup(t, router, "Ann", "ann@example.com")

	// Start a conversation
	rec := serve(router, makeJSONRequest(http.MethodPost, "/api/v1/conversations", map[string]string{}), cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	var conv domain.Conversation
	decodeData(t, rec, &conv)
	if conv.Title != "New Conversation" {
		t.Errorf("expected default title, got %q", conv.Title)
	}
	if conv.AgentID != "general" {
		t.Errorf("expected default agent, got %q", conv.AgentID)
	}

	// Append a user turn and an assistant turn
	rec = serve(router, makeJSONRequest(http.MethodPost, "/api/v1/messages", map[string]string{
		"conversationId": conv.ID.Hex(),
		"role":           "user",
		"content":        "Hi",
	}), cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	rec = serve(router, makeJSONRequest(http.MethodPost, "/api/v1/messages", map[string]string{
		"conversationId": conv.ID.Hex(),
		"role":           "assistant",
		"content":        "Hello! How can I help you today?",
	}), cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	// Read the history back, oldest first
	rec = serve(router, makeJSONRequest(http.MethodGet, "/api/v1/messages?conversationId="+conv.ID.Hex(), nil), cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	var page domain.MessagePage
	decodeData(t, rec, &page)
	if len(page.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(page.Messages))
	}
	if page.Messages[0].Content != "Hi" || page.Messages[1].Content != "Hello! How can I help you today?" {
		t.Errorf("messages out of order: %q, %q", page.Messages[0].Content, page.Messages[1].Content)
	}
	if page.Messages[0].SenderID == nil {
		t.Error("user turn should carry the sender id")
	}
	if page.Messages[1].SenderID != nil {
		t.Error("assistant turn should not carry a sender id")
	}
	if page.NextCursor == nil {
		t.Fatal("expected a next cursor")
	}
	if !page.NextCursor.Equal(page.Messages[0].CreatedAt) {
		t.Errorf("next cursor should equal the oldest message timestamp: %v vs %v",
			page.NextCursor, page.Messages[0].CreatedAt)
	}

	// Walk backwards with limit=1: newest page first, then the older one
	rec = serve(router, makeJSONRequest(http.MethodGet, "/api/v1/messages?conversationId="+conv.ID.Hex()+"&limit=1", nil), cookie)
	decodeData(t, rec, &page)
	if len(page.Messages) != 1 || page.Messages[0].Content != "Hello! How can I help you today?" {
		t.Fatalf("expected newest message page, got %+v", page.Messages)
	}

	cursor := url.QueryEscape(page.NextCursor.Format(time.RFC3339Nano))
	rec = serve(router, makeJSONRequest(http.MethodGet, "/api/v1/messages?conversationId="+conv.ID.Hex()+"&limit=1&cursor="+cursor, nil), cookie)
	decodeData(t, rec, &page)
	if len(page.Messages) != 1 || page.Messages[0].Content != "Hi" {
		t.Fatalf("expected older message page, got %+v", page.Messages)
	}
}

func TestMessageValidation(t *testing.T) {
	router := newTestRouter()
	cookie := signup(t, router, "Ann", "ann@example.com")

	// Missing conversationId on read
	rec := serve(router, makeJSONRequest(http.MethodGet, "/api/v1/messages", nil), cookie)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}

	// Malformed conversation id
	rec = serve(router, makeJSONRequest(http.MethodGet, "/api/v1/messages?conversationId=zzz", nil), cookie)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}

	// Malformed cursor
	rec = serve(router, makeJSONRequest(http.MethodGet,
		"/api/v1/messages?conversationId="+primitive.NewObjectID().Hex()+"&cursor=yesterday", nil), cookie)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}

	// Append without content
	rec = serve(router, makeJSONRequest(http.MethodPost, "/api/v1/messages", map[string]string{
		"conversationId": primitive.NewObjectID().Hex(),
		"role":           "user",
	}), cookie)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}

	// Append with an unknown role
	rec = serve(router, makeJSONRequest(http.MethodPost, "/api/v1/messages", map[string]string{
		"conversationId": primitive.NewObjectID().Hex(),
		"role":           "robot",
		"content":        "Hi",
	}), cookie)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestConversationIsolation(t *testing.T) {
	router := newTestRouter()
	annCookie := signup(t, router, "Ann", "ann@example.com")
	benCookie := signup(t, router, "Ben", "ben@example.com")

	rec := serve(router, makeJSONRequest(http.MethodPost, "/api/v1/conversations", map[string]string{
		"firstMessage": "Hi",
	}), annCookie)
	var conv domain.Conversation
	decodeData(t, rec, &conv)

	// Ben cannot read Ann's history
	rec = serve(router, makeJSONRequest(http.MethodGet, "/api/v1/messages?conversationId="+conv.ID.Hex(), nil), benCookie)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected status %d, got %d", http.StatusForbidden, rec.Code)
	}

	// Ben cannot append into it either
	rec = serve(router, makeJSONRequest(http.MethodPost, "/api/v1/messages", map[string]string{
		"conversationId": conv.ID.Hex(),
		"role":           "user",
		"content":        "mine now",
	}), benCookie)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected status %d, got %d", http.StatusForbidden, rec.Code)
	}

	// Ben's own listing stays empty
	rec = serve(router, makeJSONRequest(http.MethodGet, "/api/v1/conversations", nil), benCookie)
	var list []domain.Conversation
	decodeData(t, rec, &list)
	if len(list) != 0 {
		t.Errorf("expected no conversations for Ben, got %d", len(list))
	}
}

func TestConversationList(t *testing.T) {
	router := newTestRouter()
	cookie := signup(t, router, "Ann", "ann@example.com")

	serve(router, makeJSONRequest(http.MethodPost, "/api/v1/conversations", map[string]string{
		"title": "First",
	}), cookie)
	serve(router, makeJSONRequest(http.MethodPost, "/api/v1/conversations", map[string]string{
		"title": "Second",
	}), cookie)

	rec := serve(router, makeJSONRequest(http.MethodGet, "/api/v1/conversations", nil), cookie)
	var list []domain.Conversation
	decodeData(t, rec, &list)
	if len(list) != 2 {
		t.Fatalf("expected 2 conversations, got %d", len(list))
	}
	if list[0].Title != "Second" {
		t.Errorf("expected most recent conversation first, got %q", list[0].Title)
	}

	rec = serve(router, makeJSONRequest(http.MethodGet, "/api/v1/conversations?limit=1", nil), cookie)
	decodeData(t, rec, &list)
	if len(list) != 1 {
		t.Errorf("expected 1 conversation with limit=1, got %d", len(list))
	}

	rec = serve(router, makeJSONRequest(http.MethodGet, "/api/v1/conversations?limit=abc", nil), cookie)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d for bad limit, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestDashboard(t *testing.T) {
	router := newTestRouter()
	cookie := signup(t, router, "Ann", "ann@example.com")

	serve(router, makeJSONRequest(http.MethodPost, "/api/v1/conversations", map[string]string{
		"firstMessage": "Hi",
	}), cookie)
	serve(router, makeJSONRequest(http.MethodPost, "/api/v1/conversations", map[string]string{
		"title": "Empty one",
	}), cookie)

	rec := serve(router, makeJSONRequest(http.MethodGet, "/api/v1/dashboard", nil), cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var stats domain.DashboardStats
	decodeData(t, rec, &stats)
	if stats.TotalConversations != 2 {
		t.Errorf("expected 2 conversations, got %d", stats.TotalConversations)
	}
	if stats.TotalMessages != 1 {
		t.Errorf("expected 1 message, got %d", stats.TotalMessages)
	}
	if stats.AvgGapMinutes != 0 {
		t.Errorf("expected zero gap average with a single message, got %f", stats.AvgGapMinutes)
	}
	if len(stats.WeeklyActivity) != 7 {
		t.Fatalf("expected 7 histogram buckets, got %d", len(stats.WeeklyActivity))
	}

	var total int
	for _, day := range stats.WeeklyActivity {
		total += day.Count
	}
	if total != 2 {
		t.Errorf("expected both conversations in this week's histogram, got %d", total)
	}
	if len(stats.RecentConversations) != 2 {
		t.Errorf("expected 2 recent conversations, got %d", len(stats.RecentConversations))
	}
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	router := newTestRouter()

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/me"},
		{http.MethodGet, "/api/v1/conversations"},
		{http.MethodPost, "/api/v1/conversations"},
		{http.MethodGet, "/api/v1/messages"},
		{http.MethodPost, "/api/v1/messages"},
		{http.MethodGet, "/api/v1/dashboard"},
	}

	for _, p := range paths {
		rec := serve(router, makeJSONRequest(p.method, p.path, nil), nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected status %d, got %d", p.method, p.path, http.StatusUnauthorized, rec.Code)
		}
	}
}
