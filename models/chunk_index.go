package models

import "time"

// Chunk is one overlapping word window of a document's raw text.
type Chunk struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Index int    `json:"index"`
}

// ChunkVector is a denormalized chunk embedding stored in its own collection
// so similarity queries can filter on user scope without touching documents.
type ChunkVector struct {
	ChunkID    string    `json:"chunk_id" bson:"chunk_id"`
	DocID      string    `json:"doc_id" bson:"doc_id"`
	UserID     string    `json:"user_id" bson:"user_id"`
	ChunkIndex int       `json:"chunk_index" bson:"chunk_index"`
	Snippet    string    `json:"snippet" bson:"snippet"`
	Vector     []float32 `json:"vector" bson:"vector"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}
