package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"safebill-backend/internal/config"
	"safebill-backend/internal/logger"
	"safebill-backend/models"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// Store is the durable persistence boundary for documents, reminders,
// claims and denials. Both backends satisfy it; callers never know which
// one they got.
type Store interface {
	UpsertDocument(ctx context.Context, doc *models.DocumentRecord) (*models.DocumentRecord, error)
	GetDocument(ctx context.Context, docID string) (*models.DocumentRecord, error)
	ListDocuments(ctx context.Context, userID string) ([]models.DocumentRecord, error)
	DeleteUserData(ctx context.Context, userID string) (int64, error)

	UpsertReminder(ctx context.Context, reminder *models.ReminderConfig) error
	ListReminders(ctx context.Context, userID string) ([]models.ReminderConfig, error)
	DueReminders(ctx context.Context, before time.Time, limit int64) ([]models.ReminderConfig, error)
	MarkReminderAttempt(ctx context.Context, reminderID string, at time.Time) error

	UpsertClaim(ctx context.Context, claim *models.ClaimRecord) error
	UpsertDenial(ctx context.Context, denial *models.DenialRecord) error
}

// VectorIndex is the similarity-index boundary. A nil VectorIndex means
// retrieval is unconfigured; callers degrade to empty results.
type VectorIndex interface {
	Upsert(ctx context.Context, vectors []models.ChunkVector) error
	ByUser(ctx context.Context, userID string) ([]models.ChunkVector, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

// NewStore picks the Mongo store when MONGO_URI is configured and falls back
// to the in-memory store otherwise.
func NewStore(cfg *config.Config, client *mongo.Client) Store {
	if cfg.MongoURI != "" && client != nil {
		logger.Info("Using MongoDB store", "db", cfg.DBName)
		return NewMongoStore(client.Database(cfg.DBName))
	}
	logger.Warn("MONGO_URI not configured; using in-memory store")
	return NewMemoryStore()
}

// NewVectorIndex follows the same backend choice as NewStore.
func NewVectorIndex(cfg *config.Config, client *mongo.Client) VectorIndex {
	if cfg.MongoURI != "" && client != nil {
		return NewMongoVectorIndex(client.Database(cfg.DBName))
	}
	return NewMemoryVectorIndex()
}
