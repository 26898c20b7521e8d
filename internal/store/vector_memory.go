package store

import (
	"context"
	"sync"

	"safebill-backend/models"
)

// MemoryVectorIndex mirrors MemoryStore: the similarity index used when
// Mongo is unconfigured.
type MemoryVectorIndex struct {
	mu      sync.RWMutex
	vectors map[string]models.ChunkVector
}

func NewMemoryVectorIndex() *MemoryVectorIndex {
	return &MemoryVectorIndex{vectors: make(map[string]models.ChunkVector)}
}

func (mv *MemoryVectorIndex) Upsert(_ context.Context, vectors []models.ChunkVector) error {
	mv.mu.Lock()
	defer mv.mu.Unlock()

	for _, vector := range vectors {
		mv.vectors[vector.ChunkID] = vector
	}
	return nil
}

func (mv *MemoryVectorIndex) ByUser(_ context.Context, userID string) ([]models.ChunkVector, error) {
	mv.mu.RLock()
	defer mv.mu.RUnlock()

	out := []models.ChunkVector{}
	for _, vector := range mv.vectors {
		if vector.UserID == userID {
			out = append(out, vector)
		}
	}
	return out, nil
}

func (mv *MemoryVectorIndex) DeleteByUser(_ context.Context, userID string) (int64, error) {
	mv.mu.Lock()
	defer mv.mu.Unlock()

	var deleted int64
	for id, vector := range mv.vectors {
		if vector.UserID == userID {
			delete(mv.vectors, id)
			deleted++
		}
	}
	return deleted, nil
}
