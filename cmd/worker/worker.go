package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"go.mongodb.org/mongo-driver/mongo"

	"safebill-backend/internal/ai"
	"safebill-backend/internal/config"
	"safebill-backend/internal/logger"
	"safebill-backend/internal/queue"
	"safebill-backend/internal/scheduler"
	"safebill-backend/internal/store"
	"safebill-backend/internal/telemetry"
	"safebill-backend/services"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	logger.InitLogger(cfg)

	shutdownTracer, err := telemetry.InitTracer("safebill-worker", cfg.OTLPEndpoint)
	if err != nil {
		log.Fatal("Failed to init tracer:", err)
	}
	defer shutdownTracer()

	metrics, err := telemetry.InitMetrics()
	if err != nil {
		log.Fatal("Failed to init metrics:", err)
	}

	// Connect to MongoDB (optional, same fallback as the API)
	client, err := connectMongo(cfg)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	if client != nil {
		defer client.Disconnect(context.Background())
	}

	st := store.NewStore(cfg, client)
	vectorIndex := store.NewVectorIndex(cfg, client)

	// Initialize Gemini client
	geminiClient, err := ai.NewGeminiClient(cfg)
	if err != nil {
		log.Fatal("Failed to initialize Gemini client:", err)
	}
	defer geminiClient.Close()

	chunker := services.NewChunkerService(cfg.ChunkSize, cfg.ChunkOverlap)
	embeddings := services.NewEmbeddingService(geminiClient, vectorIndex, cfg.SimilarityTopK)
	reminders := services.NewReminderService(st, cfg.ReminderOffsets)

	// Reminder due-scan runs on an interval alongside the queue worker
	jobs := scheduler.NewScheduler()
	err = jobs.ScheduleInterval("reminder-due-scan", cfg.ReminderScanEvery, func() error {
		attempted, err := reminders.RunDueScan(context.Background())
		if err != nil {
			logger.Error("Reminder due scan failed", "error", err)
			return err
		}
		if attempted > 0 {
			metrics.RecordRemindersDue(int64(attempted))
			logger.Info("Reminder due scan complete", "attempted", attempted)
		}
		return nil
	})
	if err != nil {
		log.Fatal("Failed to schedule due scan:", err)
	}
	jobs.Start()
	defer jobs.Stop()

	// Redis options for Asynq
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}

	// Create Asynq server
	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			StrictPriority: true,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Error("Task failed", "type", task.Type(), "error", err)
			}),
		},
	)

	// Create task processor
	processor := queue.NewTaskProcessor(chunker, embeddings, metrics)

	// Create mux and register handlers
	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TaskIngestEmbed, processor.ProcessIngestEmbed)

	logger.Info("Starting worker",
		"concurrency", 10,
		"redis", redisOpt.Addr,
		"due_scan_every", cfg.ReminderScanEvery,
	)

	// Run until signalled
	if err := server.Start(mux); err != nil {
		log.Fatal("Failed to start worker:", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down worker...")
	server.Shutdown()
}

func connectMongo(cfg *config.Config) (*mongo.Client, error) {
	if cfg.MongoURI == "" {
		return nil, nil
	}
	return config.ConnectMongoDB(cfg)
}
