package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"safebill-backend/internal/logger"
	"safebill-backend/internal/telemetry"
	"safebill-backend/services"
)

const (
	TaskIngestEmbed = "ingest:embed"
)

// IngestEmbedPayload carries a stored document into the embedding pipeline.
type IngestEmbedPayload struct {
	DocID  string `json:"doc_id"`
	UserID string `json:"user_id"`
	Text   string `json:"text"`
}

func NewIngestEmbedTask(docID, userID, text string) (*asynq.Task, error) {
	payload, err := json.Marshal(IngestEmbedPayload{
		DocID:  docID,
		UserID: userID,
		Text:   text,
	})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskIngestEmbed,
		payload,
		asynq.MaxRetry(3),
		asynq.Timeout(5*time.Minute),
		asynq.Queue("default"),
	), nil
}

// TaskProcessor runs queued ingestion work.
type TaskProcessor struct {
	chunker    *services.ChunkerService
	embeddings *services.EmbeddingService
	metrics    *telemetry.Metrics
}

func NewTaskProcessor(chunker *services.ChunkerService, embeddings *services.EmbeddingService, metrics *telemetry.Metrics) *TaskProcessor {
	return &TaskProcessor{chunker: chunker, embeddings: embeddings, metrics: metrics}
}

// ProcessIngestEmbed redacts, chunks and embeds a stored document. Chunk
// embedding failures are absorbed downstream; only a malformed payload
// skips retry.
func (p *TaskProcessor) ProcessIngestEmbed(ctx context.Context, t *asynq.Task) error {
	var payload IngestEmbedPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal failed: %w", asynq.SkipRetry)
	}

	logger.Info("Processing ingest task", "doc_id", payload.DocID, "chars", len(payload.Text))

	// PII never reaches the embedding model or the vector index.
	redacted := services.RedactPII(payload.Text)

	chunks := p.chunker.ChunkText(payload.DocID, redacted)
	vectors, err := p.embeddings.UpsertChunks(ctx, payload.DocID, payload.UserID, chunks)
	if err != nil {
		return fmt.Errorf("embed chunks for doc %s: %w", payload.DocID, err)
	}

	if p.metrics != nil {
		p.metrics.RecordChunksEmbedded(int64(len(vectors)))
	}

	logger.Info("Ingest task complete", "doc_id", payload.DocID, "chunks", len(chunks), "embedded", len(vectors))
	return nil
}
