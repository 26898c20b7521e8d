package services

import (
	"fmt"
	"strings"

	"safebill-backend/models"
)

// ChunkerService splits raw document text into overlapping word windows for
// retrieval indexing. Windows overlap so context split across a boundary is
// present in both neighbors.
type ChunkerService struct {
	chunkSize int // window length in words
	overlap   int // words shared between consecutive windows
}

// NewChunkerService creates a chunker. Non-positive or inconsistent inputs
// fall back to the 900/80 defaults.
func NewChunkerService(chunkSize, overlap int) *ChunkerService {
	if chunkSize <= 0 {
		chunkSize = 900
	}
	if overlap < 0 {
		overlap = 80
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 10
	}
	return &ChunkerService{
		chunkSize: chunkSize,
		overlap:   overlap,
	}
}

// ChunkText produces consecutive windows of chunkSize words, each advancing
// by chunkSize-overlap. Chunk ids are {docId}_chunk_{index}, indexed from 0.
// A window that reaches the end of the text is the last one; no empty
// trailing chunk is emitted.
func (cs *ChunkerService) ChunkText(docID, text string) []models.Chunk {
	words := strings.Fields(text)

	var chunks []models.Chunk
	start := 0
	for start < len(words) {
		end := start + cs.chunkSize
		if end > len(words) {
			end = len(words)
		}

		index := len(chunks)
		chunks = append(chunks, models.Chunk{
			ID:    fmt.Sprintf("%s_chunk_%d", docID, index),
			Text:  strings.Join(words[start:end], " "),
			Index: index,
		})

		if end >= len(words) {
			break
		}
		start += cs.chunkSize - cs.overlap
	}

	return chunks
}
