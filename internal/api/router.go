package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/nvoss/agent-chat/internal/agent"
	"github.com/nvoss/agent-chat/internal/api/handler"
	customMiddleware "github.com/nvoss/agent-chat/internal/api/middleware"
	"github.com/nvoss/agent-chat/internal/config"
	"github.com/nvoss/agent-chat/internal/rag"
	"github.com/nvoss/agent-chat/internal/repository/mongo"
	"github.com/nvoss/agent-chat/internal/repository/redis"
	"github.com/nvoss/agent-chat/internal/security"
	"github.com/nvoss/agent-chat/internal/service"
)

// NewRouter creates and configures the HTTP router. The returned bridge is
// not yet running; the caller starts its Run loop and owns its lifetime.
func NewRouter(cfg *config.Config, db *mongo.DB, redisClient *redis.Client) (http.Handler, *agent.Bridge) {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS. Origins must be listed explicitly because the session cookie
	// rides on credentialed requests.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize security components
	jwtManager := security.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	// Initialize repositories
	userRepo := mongo.NewUserRepository(db.Database())
	conversationRepo := mongo.NewConversationRepository(db.Database())
	messageRepo := mongo.NewMessageRepository(db.Database())

	// Initialize rate limiter and dashboard cache
	rateLimiter := redis.NewRateLimiter(
		redisClient,
		cfg.Security.RateLimit.RequestsPerMinute,
		cfg.Security.RateLimit.Burst,
	)
	statsCache := redis.NewStatsCache(redisClient)

	// External clients
	ragClient := rag.NewClient(cfg.RAG)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtManager)
	chatService := service.NewChatService(conversationRepo, messageRepo, statsCache, cfg.Agent.DefaultID)
	dashboardService := service.NewDashboardService(conversationRepo, messageRepo, statsCache)

	// The bridge delivers agent replies into the chat service, and the chat
	// service forwards user messages through the bridge.
	bridge := agent.NewBridge(cfg.Agent, chatService)
	chatService.SetAgent(bridge)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService, cfg.Auth.TokenTTL, cfg.IsProduction())
	conversationHandler := handler.NewConversationHandler(chatService)
	messageHandler := handler.NewMessageHandler(chatService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)
	documentHandler := handler.NewDocumentHandler(ragClient, cfg.Upload.Dir, cfg.Upload.MaxBytes())

	// Auth middleware
	authMiddleware := customMiddleware.NewAuthMiddleware(jwtManager)
	rateLimitMiddleware := customMiddleware.NewRateLimitMiddleware(rateLimiter)

	r.Route("/api/v1", func(r chi.Router) {
		// Health check
		r.Get("/health", handler.HealthCheck)
		r.Get("/ready", handler.ReadyCheck(db, bridge))

		// Auth routes (public)
		r.Post("/signup", authHandler.Signup)
		r.Post("/signin", authHandler.Signin)
		r.Post("/signout", authHandler.Signout)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Use(rateLimitMiddleware.Limit)

			r.Get("/me", authHandler.Me)

			r.Get("/agents", handler.ListAgents(cfg))

			r.Route("/conversations", func(r chi.Router) {
				r.Get("/", conversationHandler.List)
				r.Post("/", conversationHandler.Create)
			})

			r.Route("/messages", func(r chi.Router) {
				r.Get("/", messageHandler.Page)
				r.Post("/", messageHandler.Append)
			})

			r.Get("/dashboard", dashboardHandler.Stats)

			r.Route("/documents", func(r chi.Router) {
				r.Post("/", documentHandler.Upload)
				r.Get("/stats", documentHandler.Stats)
			})
		})
	})

	return r, bridge
}
