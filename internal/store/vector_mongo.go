package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"safebill-backend/models"
)

// MongoVectorIndex keeps chunk embeddings in a denormalized collection so
// similarity queries can filter by user without loading documents.
type MongoVectorIndex struct {
	collection *mongo.Collection
}

func NewMongoVectorIndex(db *mongo.Database) *MongoVectorIndex {
	return &MongoVectorIndex{collection: db.Collection("chunk_vectors")}
}

func (vi *MongoVectorIndex) Upsert(ctx context.Context, vectors []models.ChunkVector) error {
	if len(vectors) == 0 {
		return nil
	}

	batch := make([]mongo.WriteModel, 0, len(vectors))
	for _, vector := range vectors {
		doc := bson.M{
			"chunk_id":    vector.ChunkID,
			"doc_id":      vector.DocID,
			"user_id":     vector.UserID,
			"chunk_index": vector.ChunkIndex,
			"snippet":     vector.Snippet,
			"vector":      vector.Vector,
			"created_at":  vector.CreatedAt,
		}
		batch = append(batch, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"chunk_id": vector.ChunkID}).
			SetUpdate(bson.M{"$set": doc}).
			SetUpsert(true))
	}

	_, err := vi.collection.BulkWrite(ctx, batch, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return fmt.Errorf("bulk upsert %d chunk vectors: %w", len(vectors), err)
	}
	return nil
}

func (vi *MongoVectorIndex) ByUser(ctx context.Context, userID string) ([]models.ChunkVector, error) {
	cursor, err := vi.collection.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("find chunk vectors for %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	out := []models.ChunkVector{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (vi *MongoVectorIndex) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	result, err := vi.collection.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, fmt.Errorf("delete chunk vectors for %s: %w", userID, err)
	}
	return result.DeletedCount, nil
}
