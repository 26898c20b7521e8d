package services

import (
	"context"
	"math"
	"sort"
	"time"

	"safebill-backend/internal/logger"
	"safebill-backend/internal/store"
	"safebill-backend/models"
)

// Embedder turns text into a vector. Empty input yields an empty vector,
// never an error.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// snippetMaxLen bounds the text preview carried in vector metadata.
const snippetMaxLen = 400

// EmbeddingService maintains the per-user similarity index. A nil vector
// index means retrieval is unconfigured; every operation degrades to a
// logged no-op so ingestion and chat keep working.
type EmbeddingService struct {
	embedder Embedder
	index    store.VectorIndex
	topK     int
}

func NewEmbeddingService(embedder Embedder, index store.VectorIndex, topK int) *EmbeddingService {
	if topK <= 0 {
		topK = 3
	}
	return &EmbeddingService{
		embedder: embedder,
		index:    index,
		topK:     topK,
	}
}

// UpsertChunks embeds each chunk and writes its vector record, scoped by
// user and document, with a bounded snippet for display. Chunks whose
// embedding fails are skipped, not fatal.
func (es *EmbeddingService) UpsertChunks(ctx context.Context, docID, userID string, chunks []models.Chunk) ([]models.ChunkVector, error) {
	if es.index == nil {
		logger.Warn("Vector index not configured; skipping upsert", "doc_id", docID)
		return []models.ChunkVector{}, nil
	}

	now := time.Now()
	vectors := make([]models.ChunkVector, 0, len(chunks))
	for _, chunk := range chunks {
		embedding, err := es.embedder.EmbedText(ctx, chunk.Text)
		if err != nil {
			logger.Warn("Failed to embed chunk", "chunk_id", chunk.ID, "error", err)
			continue
		}
		vectors = append(vectors, models.ChunkVector{
			ChunkID:    chunk.ID,
			DocID:      docID,
			UserID:     userID,
			ChunkIndex: chunk.Index,
			Snippet:    truncate(chunk.Text, snippetMaxLen),
			Vector:     embedding,
			CreatedAt:  now,
		})
	}

	if err := es.index.Upsert(ctx, vectors); err != nil {
		return nil, err
	}
	return vectors, nil
}

// SimilaritySearch embeds the query and returns the topK nearest chunks for
// the user, ordered by descending similarity. Backend trouble yields empty
// results, never an error surfaced to the chat caller.
func (es *EmbeddingService) SimilaritySearch(ctx context.Context, userID, query string, topK int) []models.ChatSource {
	if es.index == nil {
		logger.Warn("Vector index not configured; returning empty search results")
		return []models.ChatSource{}
	}
	if topK <= 0 {
		topK = es.topK
	}

	queryVector, err := es.embedder.EmbedText(ctx, query)
	if err != nil {
		logger.Warn("Failed to embed query", "error", err)
		return []models.ChatSource{}
	}
	if len(queryVector) == 0 {
		return []models.ChatSource{}
	}

	vectors, err := es.index.ByUser(ctx, userID)
	if err != nil {
		logger.Warn("Vector index query failed", "user_id", userID, "error", err)
		return []models.ChatSource{}
	}

	return rankBySimilarity(vectors, queryVector, topK)
}

// rankBySimilarity scores each stored vector against the query by cosine
// similarity and keeps the topK best.
func rankBySimilarity(vectors []models.ChunkVector, query []float32, topK int) []models.ChatSource {
	sources := make([]models.ChatSource, 0, len(vectors))
	for _, vector := range vectors {
		sources = append(sources, models.ChatSource{
			DocID:       vector.DocID,
			Chunk:       vector.ChunkID,
			Score:       cosineSimilarity(vector.Vector, query),
			TextSnippet: vector.Snippet,
		})
	}

	sort.SliceStable(sources, func(i, j int) bool {
		return sources[i].Score > sources[j].Score
	})

	if len(sources) > topK {
		sources = sources[:topK]
	}
	return sources
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func truncate(text string, max int) string {
	if len(text) <= max {
		return text
	}
	return text[:max]
}
