package main

import (
	"agenthub/internal/config"
	"agenthub/internal/database"
	"agenthub/internal/engine"
	"agenthub/internal/handlers"
	"agenthub/internal/logging"
	"agenthub/internal/middleware"
	"agenthub/internal/repositories"
	"agenthub/internal/services"
	"agenthub/internal/tools"
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Initialize structured logging (JSON in production, text in dev)
	logging.Init()

	log.Println("🚀 Starting AgentHub Server...")

	// Load .env file (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  No .env file found or error loading it: %v", err)
	} else {
		log.Println("✅ .env file loaded successfully")
	}

	// Load configuration
	cfg := config.Load()
	log.Printf("📋 Configuration loaded (Port: %s)", cfg.Port)

	// Initialize MongoDB
	log.Println("🔗 Connecting to MongoDB...")
	db, err := database.NewMongoDB(cfg.MongoURI)
	if err != nil {
		log.Fatalf("❌ Failed to connect to MongoDB: %v", err)
	}
	defer db.Close(context.Background())
	log.Println("✅ MongoDB connected successfully")

	initCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	if err := db.Initialize(initCtx); err != nil {
		cancel()
		log.Fatalf("❌ Failed to initialize database indexes: %v", err)
	}
	cancel()

	// Repositories
	agentRepo := repositories.NewAgentRepository(db)
	sessionRepo := repositories.NewSessionRepository(db)
	checkpointRepo := repositories.NewCheckpointRepository(db)

	// Tool registry with built-in tools
	registry := tools.NewRegistry(tools.Options{
		SearxngURL: cfg.SearxngURL,
		SandboxURL: cfg.SandboxURL,
	})
	log.Printf("🔧 Tool registry initialized (%d tools)", registry.Count())

	// Engine factory resolves provider endpoints per agent config
	factory := engine.NewProviderFactory(registry, checkpointRepo, cfg)

	// Services
	agentService := services.NewAgentService(agentRepo)
	chatService := services.NewChatService(
		sessionRepo, agentRepo, checkpointRepo, factory,
		cfg.EngineCacheTTL, cfg.EngineCacheCleanup,
	)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "AgentHub v1.0",
		ReadTimeout:  300 * time.Second, // model providers can take minutes on long tool loops
		WriteTimeout: 300 * time.Second,
		IdleTimeout:  300 * time.Second,
		BodyLimit:    10 * 1024 * 1024,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())

	// Prometheus metrics middleware
	prometheus := fiberprometheus.New("agenthub")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)
	services.InitMetrics()
	log.Println("📊 Prometheus metrics endpoint enabled at /metrics")

	// CORS configuration with environment-based origins
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:5173,http://localhost:3000"
		log.Println("⚠️  ALLOWED_ORIGINS not set, using development defaults")
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,X-Owner-ID",
		AllowCredentials: allowedOrigins != "*",
	}))

	// Rate limiting
	rateLimitConfig := middleware.LoadRateLimitConfig()
	log.Printf("🛡️  [RATE-LIMIT] Loaded config: Global=%d/min, Messages=%d/min",
		rateLimitConfig.GlobalAPIMax, rateLimitConfig.MessageMax)
	app.Use("/agents", middleware.GlobalAPIRateLimiter(rateLimitConfig))
	app.Use("/chats", middleware.GlobalAPIRateLimiter(rateLimitConfig))

	// Request principal
	app.Use(middleware.Identity())

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db)
	agentHandler := handlers.NewAgentHandler(agentService)
	chatHandler := handlers.NewChatHandler(chatService)
	utilsHandler := handlers.NewUtilsHandler()

	// Routes
	app.Get("/health", healthHandler.Check)

	// Static option routes must be registered before parameterized ones,
	// Fiber matches in registration order.
	app.Get("/agents/config/options", agentHandler.ConfigOptions)
	app.Post("/agents", agentHandler.Create)
	app.Get("/agents", agentHandler.List)
	app.Get("/agents/:id", agentHandler.Get)
	app.Put("/agents/:id", agentHandler.Update)
	app.Delete("/agents/:id", agentHandler.Delete)

	app.Post("/chats/message/:session_id", middleware.MessageRateLimiter(rateLimitConfig), chatHandler.SendMessage)
	app.Get("/chats/:session_id/history", chatHandler.GetHistory)
	app.Patch("/chats/:session_id/title", chatHandler.RenameSession)
	app.Post("/chats/:agent_id", chatHandler.CreateSession)
	app.Get("/chats/:agent_id", chatHandler.ListSessions)
	app.Delete("/chats/:session_id", chatHandler.DeleteSession)

	app.Post("/utils/db/schema", utilsHandler.InspectSchema)

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("\n🛑 Shutting down server...")
		if err := app.Shutdown(); err != nil {
			log.Printf("⚠️ Error shutting down server: %v", err)
		}
	}()

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}
