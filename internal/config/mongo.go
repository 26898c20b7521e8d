package config

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func ConnectMongoDB(cfg *Config) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %v", err)
	}

	// Test connection
	err = client.Ping(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %v", err)
	}

	// Create indexes
	err = createIndexes(client, cfg.DBName)
	if err != nil {
		return nil, fmt.Errorf("failed to create indexes: %v", err)
	}

	return client, nil
}

func createIndexes(client *mongo.Client, dbName string) error {
	db := client.Database(dbName)

	// Documents: listed per user, looked up by id (_id index is implicit)
	documentsCollection := db.Collection("documents")
	documentIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "updated_at", Value: -1}},
		},
	}
	_, err := documentsCollection.Indexes().CreateMany(context.Background(), documentIndexes)
	if err != nil {
		return err
	}

	// Reminders: listed per user; the due-scan filters on status + trigger time
	remindersCollection := db.Collection("reminders")
	reminderIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}, {Key: "trigger_at", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "doc_id", Value: 1}},
		},
	}
	_, err = remindersCollection.Indexes().CreateMany(context.Background(), reminderIndexes)
	if err != nil {
		return err
	}

	// Chunk vectors: similarity queries are scoped by user, upserts by chunk id
	chunkVectorsCollection := db.Collection("chunk_vectors")
	chunkVectorIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "doc_id", Value: 1}},
		},
		{
			Keys:    bson.D{{Key: "chunk_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err = chunkVectorsCollection.Indexes().CreateMany(context.Background(), chunkVectorIndexes)
	if err != nil {
		return err
	}

	// Claims and denials
	claimsCollection := db.Collection("claims")
	claimIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "doc_id", Value: 1}},
		},
	}
	_, err = claimsCollection.Indexes().CreateMany(context.Background(), claimIndexes)
	if err != nil {
		return err
	}

	denialsCollection := db.Collection("denials")
	denialIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "claim_id", Value: 1}},
		},
	}
	_, err = denialsCollection.Indexes().CreateMany(context.Background(), denialIndexes)
	if err != nil {
		return err
	}

	return nil
}
