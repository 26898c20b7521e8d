package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"safebill-backend/internal/ai"
	"safebill-backend/internal/config"
	"safebill-backend/internal/logger"
	"safebill-backend/internal/store"
	"safebill-backend/internal/telemetry"
	"safebill-backend/middleware"
	"safebill-backend/routes"
	"safebill-backend/services"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	logger.InitLogger(cfg)

	// Telemetry
	shutdownTracer, err := telemetry.InitTracer("safebill-api", cfg.OTLPEndpoint)
	if err != nil {
		log.Fatal("Failed to init tracer:", err)
	}
	defer shutdownTracer()

	metrics, err := telemetry.InitMetrics()
	if err != nil {
		log.Fatal("Failed to init metrics:", err)
	}

	// MongoDB is optional: without it the in-memory store serves
	// development and tests.
	mongoClient, err := connectMongo(cfg)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	if mongoClient != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			mongoClient.Disconnect(ctx)
		}()
	}

	st := store.NewStore(cfg, mongoClient)
	vectorIndex := store.NewVectorIndex(cfg, mongoClient)

	// Redis backs rate limiting and the task queue; both degrade when
	// unavailable.
	rdb, err := config.NewRedisClient(cfg)
	if err != nil {
		logger.Warn("Redis unavailable; rate limiting and background ingestion disabled", "error", err)
		rdb = nil
	}

	var asynqClient *asynq.Client
	if rdb != nil {
		asynqClient = asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.RedisURL,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer asynqClient.Close()
	}

	// Gemini client
	geminiClient, err := ai.NewGeminiClient(cfg)
	if err != nil {
		log.Fatal("Failed to initialize Gemini client:", err)
	}
	defer geminiClient.Close()

	// Graph backend is optional
	graphService, err := services.NewGraphService(cfg)
	if err != nil {
		log.Fatal("Failed to initialize graph service:", err)
	}
	defer graphService.Close(context.Background())

	// Domain services
	parser := services.NewParserService()
	extraction := services.NewExtractionService(parser, geminiClient, st, cfg.EnrichmentTimeout)
	embeddings := services.NewEmbeddingService(geminiClient, vectorIndex, cfg.SimilarityTopK)
	chat := services.NewChatService(embeddings, graphService, geminiClient)
	reminders := services.NewReminderService(st, cfg.ReminderOffsets)
	claims := services.NewClaimService(st)
	denials := services.NewDenialService(st)
	export := services.NewExportService(st, vectorIndex)
	chunker := services.NewChunkerService(cfg.ChunkSize, cfg.ChunkOverlap)

	// Initialize Gin router
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(otelgin.Middleware("safebill-api"))
	router.Use(middleware.RequestMetrics(metrics))
	router.Use(middleware.RateLimitMiddleware(rdb, cfg))

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"}
	corsConfig.AllowCredentials = true
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now()})
	})

	// Setup routes
	authMiddleware := middleware.NewAuthMiddleware(cfg)
	routes.SetupDocumentRoutes(router, extraction, reminders, st, asynqClient, metrics, authMiddleware)
	routes.SetupIngestRoutes(router, chunker, asynqClient, authMiddleware)
	routes.SetupChatRoutes(router, chat, metrics, authMiddleware)
	routes.SetupReminderRoutes(router, reminders, authMiddleware)
	routes.SetupClaimRoutes(router, claims, st, authMiddleware)
	routes.SetupDenialRoutes(router, denials, authMiddleware)
	routes.SetupDataRoutes(router, export, authMiddleware)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}

func connectMongo(cfg *config.Config) (*mongo.Client, error) {
	if cfg.MongoURI == "" {
		return nil, nil
	}
	return config.ConnectMongoDB(cfg)
}
