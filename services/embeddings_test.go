package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"safebill-backend/models"
)

// fakeEmbedder maps known words onto fixed axis-aligned vectors so cosine
// ranking is predictable.
type fakeEmbedder struct {
	fail bool
}

func (fe *fakeEmbedder) EmbedText(_ context.Context, text string) ([]float32, error) {
	if fe.fail {
		return nil, fmt.Errorf("embedder unavailable")
	}
	if strings.TrimSpace(text) == "" {
		return []float32{}, nil
	}
	vec := []float32{0, 0, 0}
	if strings.Contains(text, "laptop") {
		vec[0] = 1
	}
	if strings.Contains(text, "fridge") {
		vec[1] = 1
	}
	if strings.Contains(text, "warranty") {
		vec[2] = 1
	}
	return vec, nil
}

type fakeVectorIndex struct {
	stored  []models.ChunkVector
	failAll bool
}

func (fi *fakeVectorIndex) Upsert(_ context.Context, vectors []models.ChunkVector) error {
	if fi.failAll {
		return fmt.Errorf("index unavailable")
	}
	fi.stored = append(fi.stored, vectors...)
	return nil
}

func (fi *fakeVectorIndex) ByUser(_ context.Context, userID string) ([]models.ChunkVector, error) {
	if fi.failAll {
		return nil, fmt.Errorf("index unavailable")
	}
	out := []models.ChunkVector{}
	for _, v := range fi.stored {
		if v.UserID == userID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (fi *fakeVectorIndex) DeleteByUser(_ context.Context, userID string) (int64, error) {
	return 0, nil
}

func TestUpsertChunksNilIndexDegrades(t *testing.T) {
	es := NewEmbeddingService(&fakeEmbedder{}, nil, 3)

	vectors, err := es.UpsertChunks(context.Background(), "doc1", "user-1", []models.Chunk{
		{ID: "doc1_chunk_0", Text: "laptop warranty", Index: 0},
	})
	if err != nil {
		t.Fatalf("expected no error for unconfigured index, got %v", err)
	}
	if len(vectors) != 0 {
		t.Errorf("expected empty result, got %d vectors", len(vectors))
	}
}

func TestUpsertChunksStoresMetadata(t *testing.T) {
	index := &fakeVectorIndex{}
	es := NewEmbeddingService(&fakeEmbedder{}, index, 3)

	long := strings.Repeat("laptop warranty terms ", 30)
	vectors, err := es.UpsertChunks(context.Background(), "doc1", "user-1", []models.Chunk{
		{ID: "doc1_chunk_0", Text: long, Index: 0},
		{ID: "doc1_chunk_1", Text: "fridge coverage", Index: 1},
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if len(vectors) != 2 || len(index.stored) != 2 {
		t.Fatalf("expected 2 stored vectors, got %d", len(index.stored))
	}

	first := index.stored[0]
	if first.UserID != "user-1" || first.DocID != "doc1" || first.ChunkIndex != 0 {
		t.Errorf("scoping metadata wrong: %+v", first)
	}
	if len(first.Snippet) > 400 {
		t.Errorf("snippet length %d exceeds bound", len(first.Snippet))
	}
	if first.CreatedAt.IsZero() {
		t.Errorf("createdAt not set")
	}
}

func TestSimilaritySearchRanksAndScopes(t *testing.T) {
	index := &fakeVectorIndex{}
	es := NewEmbeddingService(&fakeEmbedder{}, index, 3)
	ctx := context.Background()

	es.UpsertChunks(ctx, "doc1", "user-1", []models.Chunk{
		{ID: "doc1_chunk_0", Text: "laptop warranty details", Index: 0},
		{ID: "doc1_chunk_1", Text: "fridge compressor", Index: 1},
	})
	es.UpsertChunks(ctx, "doc2", "user-2", []models.Chunk{
		{ID: "doc2_chunk_0", Text: "laptop warranty details", Index: 0},
	})

	results := es.SimilaritySearch(ctx, "user-1", "laptop warranty", 3)
	if len(results) != 2 {
		t.Fatalf("expected 2 results for user-1, got %d", len(results))
	}
	if results[0].Chunk != "doc1_chunk_0" {
		t.Errorf("best match = %s, want doc1_chunk_0", results[0].Chunk)
	}
	if results[0].Score <= results[1].Score {
		t.Errorf("results not ordered by descending score: %v", results)
	}
	for _, r := range results {
		if r.DocID == "doc2" {
			t.Errorf("result leaked across users: %+v", r)
		}
	}
}

func TestSimilaritySearchTopKBound(t *testing.T) {
	index := &fakeVectorIndex{}
	es := NewEmbeddingService(&fakeEmbedder{}, index, 3)
	ctx := context.Background()

	var chunks []models.Chunk
	for i := 0; i < 5; i++ {
		chunks = append(chunks, models.Chunk{
			ID:    fmt.Sprintf("doc1_chunk_%d", i),
			Text:  "laptop warranty",
			Index: i,
		})
	}
	es.UpsertChunks(ctx, "doc1", "user-1", chunks)

	results := es.SimilaritySearch(ctx, "user-1", "laptop", 2)
	if len(results) != 2 {
		t.Errorf("topK not applied: got %d results", len(results))
	}

	// topK <= 0 falls back to the configured default.
	results = es.SimilaritySearch(ctx, "user-1", "laptop", 0)
	if len(results) != 3 {
		t.Errorf("default topK not applied: got %d results", len(results))
	}
}

func TestSimilaritySearchDegradation(t *testing.T) {
	es := NewEmbeddingService(&fakeEmbedder{}, nil, 3)
	if got := es.SimilaritySearch(context.Background(), "user-1", "laptop", 3); len(got) != 0 {
		t.Errorf("nil index should yield empty results")
	}

	es = NewEmbeddingService(&fakeEmbedder{fail: true}, &fakeVectorIndex{}, 3)
	if got := es.SimilaritySearch(context.Background(), "user-1", "laptop", 3); len(got) != 0 {
		t.Errorf("embedder failure should yield empty results")
	}

	es = NewEmbeddingService(&fakeEmbedder{}, &fakeVectorIndex{failAll: true}, 3)
	if got := es.SimilaritySearch(context.Background(), "user-1", "laptop", 3); len(got) != 0 {
		t.Errorf("index failure should yield empty results")
	}
}

func TestCosineSimilarity(t *testing.T) {
	if got := cosineSimilarity([]float32{1, 0}, []float32{1, 0}); got < 0.999 {
		t.Errorf("identical vectors should score ~1, got %f", got)
	}
	if got := cosineSimilarity([]float32{1, 0}, []float32{0, 1}); got != 0 {
		t.Errorf("orthogonal vectors should score 0, got %f", got)
	}
	if got := cosineSimilarity(nil, []float32{1}); got != 0 {
		t.Errorf("empty vector should score 0, got %f", got)
	}
	if got := cosineSimilarity([]float32{1, 1}, []float32{1}); got != 0 {
		t.Errorf("mismatched lengths should score 0, got %f", got)
	}
}
