package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"safebill-backend/models"
	"safebill-backend/utils"
)

// MongoStore persists records in MongoDB. Raw document text is gzipped at
// rest and restored transparently on read.
type MongoStore struct {
	documents *mongo.Collection
	reminders *mongo.Collection
	claims    *mongo.Collection
	denials   *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		documents: db.Collection("documents"),
		reminders: db.Collection("reminders"),
		claims:    db.Collection("claims"),
		denials:   db.Collection("denials"),
	}
}

// documentDoc is the persisted shape of a DocumentRecord.
type documentDoc struct {
	DocID     string                `bson:"_id"`
	UserID    string                `bson:"user_id"`
	Title     string                `bson:"title,omitempty"`
	RawTextGz []byte                `bson:"raw_text_gz"`
	Items     []models.WarrantyItem `bson:"items"`
	Status    string                `bson:"status"`
	CreatedAt time.Time             `bson:"created_at"`
	UpdatedAt time.Time             `bson:"updated_at"`
}

func (d *documentDoc) toRecord() (*models.DocumentRecord, error) {
	rawText, err := utils.DecompressText(d.RawTextGz)
	if err != nil {
		return nil, fmt.Errorf("decompress raw text for %s: %w", d.DocID, err)
	}
	return &models.DocumentRecord{
		DocID:     d.DocID,
		UserID:    d.UserID,
		Title:     d.Title,
		RawText:   rawText,
		Items:     d.Items,
		Status:    d.Status,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}, nil
}

func (ms *MongoStore) UpsertDocument(ctx context.Context, doc *models.DocumentRecord) (*models.DocumentRecord, error) {
	compressed, err := utils.CompressText(doc.RawText)
	if err != nil {
		return nil, fmt.Errorf("compress raw text: %w", err)
	}

	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"user_id":     doc.UserID,
			"title":       doc.Title,
			"raw_text_gz": compressed,
			"items":       doc.Items,
			"status":      doc.Status,
			"updated_at":  now,
		},
		// created_at is written once and never touched again
		"$setOnInsert": bson.M{"created_at": now},
	}

	var stored documentDoc
	err = ms.documents.FindOneAndUpdate(
		ctx,
		bson.M{"_id": doc.DocID},
		update,
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&stored)
	if err != nil {
		return nil, fmt.Errorf("upsert document %s: %w", doc.DocID, err)
	}

	return stored.toRecord()
}

func (ms *MongoStore) GetDocument(ctx context.Context, docID string) (*models.DocumentRecord, error) {
	var stored documentDoc
	err := ms.documents.FindOne(ctx, bson.M{"_id": docID}).Decode(&stored)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get document %s: %w", docID, err)
	}
	return stored.toRecord()
}

func (ms *MongoStore) ListDocuments(ctx context.Context, userID string) ([]models.DocumentRecord, error) {
	cursor, err := ms.documents.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list documents for %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	out := []models.DocumentRecord{}
	for cursor.Next(ctx) {
		var stored documentDoc
		if err := cursor.Decode(&stored); err != nil {
			return nil, err
		}
		record, err := stored.toRecord()
		if err != nil {
			return nil, err
		}
		out = append(out, *record)
	}
	return out, cursor.Err()
}

func (ms *MongoStore) DeleteUserData(ctx context.Context, userID string) (int64, error) {
	filter := bson.M{"user_id": userID}
	var deleted int64

	for _, col := range []*mongo.Collection{ms.documents, ms.reminders, ms.claims} {
		result, err := col.DeleteMany(ctx, filter)
		if err != nil {
			return deleted, fmt.Errorf("delete user data from %s: %w", col.Name(), err)
		}
		deleted += result.DeletedCount
	}
	return deleted, nil
}

func (ms *MongoStore) UpsertReminder(ctx context.Context, reminder *models.ReminderConfig) error {
	fields := bson.M{
		"user_id":           reminder.UserID,
		"doc_id":            reminder.DocID,
		"trigger_type":      reminder.TriggerType,
		"trigger_at":        reminder.TriggerAt,
		"delivery_channels": reminder.DeliveryChannels,
		"status":            reminder.Status,
	}
	if reminder.ItemID != nil {
		fields["item_id"] = *reminder.ItemID
	}
	if reminder.LastAttempt != nil {
		fields["last_attempt"] = *reminder.LastAttempt
	}
	if reminder.SnoozeUntil != nil {
		fields["snooze_until"] = *reminder.SnoozeUntil
	}

	_, err := ms.reminders.UpdateOne(
		ctx,
		bson.M{"_id": reminder.ReminderID},
		bson.M{"$set": fields},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert reminder %s: %w", reminder.ReminderID, err)
	}
	return nil
}

func (ms *MongoStore) ListReminders(ctx context.Context, userID string) ([]models.ReminderConfig, error) {
	cursor, err := ms.reminders.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("list reminders for %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	out := []models.ReminderConfig{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (ms *MongoStore) DueReminders(ctx context.Context, before time.Time, limit int64) ([]models.ReminderConfig, error) {
	findOpts := options.Find().SetSort(bson.D{{Key: "trigger_at", Value: 1}})
	if limit > 0 {
		findOpts.SetLimit(limit)
	}

	cursor, err := ms.reminders.Find(ctx, bson.M{
		"status":     models.ReminderScheduled,
		"trigger_at": bson.M{"$lt": before},
	}, findOpts)
	if err != nil {
		return nil, fmt.Errorf("find due reminders: %w", err)
	}
	defer cursor.Close(ctx)

	out := []models.ReminderConfig{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (ms *MongoStore) MarkReminderAttempt(ctx context.Context, reminderID string, at time.Time) error {
	result, err := ms.reminders.UpdateOne(
		ctx,
		bson.M{"_id": reminderID},
		bson.M{"$set": bson.M{"last_attempt": at}},
	)
	if err != nil {
		return fmt.Errorf("mark reminder attempt %s: %w", reminderID, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (ms *MongoStore) UpsertClaim(ctx context.Context, claim *models.ClaimRecord) error {
	fields := bson.M{
		"user_id":   claim.UserID,
		"doc_id":    claim.DocID,
		"item_id":   claim.ItemID,
		"stage":     claim.Stage,
		"artifacts": claim.Artifacts,
		"history":   claim.History,
	}
	if claim.DenialReason != nil {
		fields["denial_reason"] = *claim.DenialReason
	}

	_, err := ms.claims.UpdateOne(
		ctx,
		bson.M{"_id": claim.ClaimID},
		bson.M{"$set": fields},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert claim %s: %w", claim.ClaimID, err)
	}
	return nil
}

func (ms *MongoStore) UpsertDenial(ctx context.Context, denial *models.DenialRecord) error {
	fields := bson.M{
		"claim_id":       denial.ClaimID,
		"raw_text":       denial.RawText,
		"classification": denial.Classification,
		"next_steps":     denial.NextSteps,
		"created_at":     denial.CreatedAt,
	}
	if denial.AppealLetter != nil {
		fields["appeal_letter"] = *denial.AppealLetter
	}

	_, err := ms.denials.UpdateOne(
		ctx,
		bson.M{"_id": denial.DenialID},
		bson.M{"$set": fields},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert denial %s: %w", denial.DenialID, err)
	}
	return nil
}
