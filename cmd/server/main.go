package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"truthscan/internal/agent"
	"truthscan/internal/analysis"
	"truthscan/internal/config"
	"truthscan/internal/database"
	"truthscan/internal/evidence"
	"truthscan/internal/handlers"
	"truthscan/internal/services"
	"truthscan/internal/stream"
	"truthscan/internal/worker"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Connect to database
	if err := database.Connect(cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer database.Close()

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// Build the verification pipeline
	verificationAgent := buildAgent(cfg)

	// Start background persistence and the live stream hub
	resultsService := services.NewResultsService(database.DB)
	hub := stream.NewHub()
	workerService := worker.NewService(resultsService, hub, cfg.Worker.QueueSize, cfg.Worker.Workers)
	workerService.Start()

	setupGracefulShutdown(workerService, hub)

	setupServer(cfg, verificationAgent, resultsService, workerService, hub)
}

// buildAgent wires the evidence providers and analyzer into the aggregator
func buildAgent(cfg *config.Config) *agent.Agent {
	maxItems := cfg.Scoring.MaxEvidenceItems

	discussion := evidence.NewDiscussionProvider(cfg.Reddit, maxItems)
	reference := evidence.NewReferenceProvider(cfg.Wikipedia, maxItems)
	news := evidence.NewNewsProvider(cfg.News, maxItems)

	client := analysis.NewClient(cfg.LLM)
	if client == nil {
		log.Println("⚠️  No LLM API key configured; factuality analysis will run degraded")
	}
	analyzer := analysis.NewAnalyzer(client)

	return agent.New(discussion, reference, news, analyzer, cfg.Scoring)
}

func setupGracefulShutdown(workerService *worker.Service, hub *stream.Hub) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Received shutdown signal, gracefully shutting down...")

		workerService.Stop()
		hub.Shutdown()
		database.Close()

		log.Println("Shutdown complete")
		os.Exit(0)
	}()
}

func setupServer(
	cfg *config.Config,
	verificationAgent *agent.Agent,
	resultsService *services.ResultsService,
	workerService *worker.Service,
	hub *stream.Hub,
) {
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	// CORS middleware
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Initialize handlers
	verifyHandler := handlers.NewVerifyHandler(verificationAgent, workerService)
	resultsHandler := handlers.NewResultsHandler(resultsService)
	adminHandler := handlers.NewAdminHandler(resultsService, cfg.Auth)
	liveHandler := handlers.NewLiveHandler(hub)
	docsHandler := handlers.NewDocsHandler()

	// Health check
	r.GET("/health", verifyHandler.HealthCheck)

	// Serve Markdown documentation as HTML
	r.GET("/doc/:doc", docsHandler.ServeMarkdownAsHTML)

	// Live verification stream
	r.GET("/ws/live", liveHandler.Subscribe)

	// API routes
	api := r.Group("/api")
	{
		api.POST("/verify", verifyHandler.Verify)
		api.POST("/feedback", resultsHandler.SubmitFeedback)
		api.GET("/history", resultsHandler.GetHistory)
		api.GET("/worker/status", verifyHandler.WorkerStatus)
		api.GET("/stream/status", liveHandler.StreamStatus)
	}

	// Admin routes (token protected)
	r.POST("/admin/login", adminHandler.Login)
	admin := r.Group("/admin", adminHandler.AuthRequired())
	{
		admin.GET("/stats", adminHandler.GetStats)
	}

	log.Printf("Server starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
