package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leadsync/internal/ai"
	"leadsync/internal/auth"
	"leadsync/internal/bot"
	"leadsync/internal/config"
	"leadsync/internal/database"
	"leadsync/internal/handlers"
	"leadsync/internal/middleware"
	"leadsync/internal/realtime"
	"leadsync/internal/repositories"
	"leadsync/internal/services"
	"leadsync/internal/telegram"
	"leadsync/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// =========================================================================
	// Load configuration
	// =========================================================================
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// =========================================================================
	// Khởi tạo Logger
	// =========================================================================
	log, err := logger.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("starting server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.Int("port", cfg.App.Port),
	)

	// =========================================================================
	// Kết nối Database
	// =========================================================================
	db, err := database.NewConnection(&cfg.Database, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	// Auto migrate trong development mode
	if cfg.App.IsDevelopment() {
		if err := database.AutoMigrate(db); err != nil {
			log.Warn("auto migrate failed", zap.Error(err))
		} else {
			log.Info("database auto migration completed")
		}
	}

	// =========================================================================
	// Khởi tạo Repositories
	// =========================================================================
	companyRepo := repositories.NewCompanyRepository(db)
	userRepo := repositories.NewUserRepository(db)
	leadRepo := repositories.NewLeadRepository(db)
	conversationRepo := repositories.NewConversationRepository(db)
	messageRepo := repositories.NewMessageRepository(db)
	webhookEventRepo := repositories.NewWebhookEventRepository(db)

	log.Info("repositories initialized")

	// =========================================================================
	// Khởi tạo Bot Engine (conversation state machine)
	// =========================================================================
	intentDetector := bot.NewKeywordIntentDetector()
	botEngine := bot.NewEngine(intentDetector, log)

	log.Info("bot engine initialized")

	// =========================================================================
	// Khởi tạo Telegram Sender và AI Client
	// =========================================================================
	telegramSender := telegram.NewSender(log)
	aiClient := ai.NewClient(cfg.AI.APIKey, cfg.AI.Model, log)

	// =========================================================================
	// Khởi tạo Realtime Publisher (Centrifugo)
	// =========================================================================
	var publisher realtime.Publisher
	if cfg.Centrifugo.URL != "" && cfg.Centrifugo.APIKey != "" {
		publisher = realtime.NewCentrifugoClient(cfg.Centrifugo.URL, cfg.Centrifugo.APIKey, log)
		log.Info("centrifugo publisher initialized", zap.String("url", cfg.Centrifugo.URL))
	} else {
		publisher = realtime.NewNoopPublisher()
		log.Warn("centrifugo not configured, using noop publisher")
	}

	// =========================================================================
	// Khởi tạo Services
	// =========================================================================
	messageService := services.NewMessageService(
		companyRepo,
		leadRepo,
		conversationRepo,
		messageRepo,
		botEngine,
		telegramSender,
		publisher,
		log,
	)
	assistService := services.NewAssistService(
		conversationRepo,
		messageRepo,
		aiClient,
		log,
	)

	jwtService := auth.NewJWTService(cfg.JWT)
	authService := services.NewAuthService(userRepo, companyRepo, jwtService, log)

	log.Info("services initialized")

	// =========================================================================
	// Khởi tạo Handlers
	// =========================================================================
	authMiddleware := middleware.AuthMiddleware(jwtService)

	authHandler := handlers.NewAuthHandler(authService, log)
	leadHandler := handlers.NewLeadHandler(leadRepo, messageService, log)
	conversationHandler := handlers.NewConversationHandler(
		conversationRepo,
		messageRepo,
		messageService,
		assistService,
		log,
	)
	webhookHandler := handlers.NewWebhookHandler(messageService, webhookEventRepo, log)
	integrationHandler := handlers.NewIntegrationHandler(
		companyRepo,
		telegramSender,
		cfg.Telegram.WebhookBaseURL,
		log,
	)

	log.Info("handlers initialized")

	// =========================================================================
	// Thiết lập Gin Router
	// =========================================================================
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery(log))
	router.Use(middleware.Logging(log))
	router.Use(middleware.CORS([]string{"*"}))
	// CSRF protection - exempt auth, webhook và public routes
	router.Use(middleware.CSRFMiddlewareWithExempt([]string{
		"/api/v1/auth/",     // Signup, login, refresh không cần CSRF ban đầu
		"/api/v1/telegram/", // Webhook từ Telegram
		"/api/v1/public/",   // Public lead form
		"/health",           // Health check
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "healthy",
			"service":    cfg.App.Name,
			"version":    "1.0.0",
			"ai_enabled": aiClient.Enabled(),
		})
	})

	// =========================================================================
	// API Routes
	// =========================================================================
	api := router.Group("/api/v1")
	{
		// Ping endpoint (public)
		api.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "pong"})
		})

		// Auth routes (signup, login, refresh: public | me, logout: protected)
		authHandler.RegisterRoutes(api, authMiddleware)

		// Telegram webhook routes (public - Telegram gọi vào)
		webhookHandler.RegisterRoutes(api)

		// Lead routes (dashboard protected + public form)
		leadHandler.RegisterRoutes(api, authMiddleware)

		// Integration routes (OWNER only)
		integrationHandler.RegisterRoutes(api, authMiddleware)

		// =====================================================================
		// Protected routes - Require authentication
		// =====================================================================
		protected := api.Group("")
		protected.Use(authMiddleware)
		{
			// Conversation, message & AI assist routes
			conversationHandler.RegisterRoutes(protected)
		}
	}

	log.Info("routes registered",
		zap.Strings("endpoints", []string{
			"/api/v1/telegram/webhook/:token",
			"/api/v1/leads",
			"/api/v1/public/leads",
			"/api/v1/conversations",
			"/api/v1/conversations/:id/suggest",
			"/api/v1/integrations/telegram",
		}),
	)

	// =========================================================================
	// Khởi động HTTP Server
	// =========================================================================
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.Int("port", cfg.App.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// =========================================================================
	// Graceful Shutdown
	// =========================================================================
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited")
}
