package store

import (
	"context"
	"sync"
	"time"

	"safebill-backend/models"
)

// MemoryStore is the development/test fallback when Mongo is unconfigured.
type MemoryStore struct {
	mu        sync.RWMutex
	documents map[string]models.DocumentRecord
	reminders map[string]models.ReminderConfig
	claims    map[string]models.ClaimRecord
	denials   map[string]models.DenialRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		documents: make(map[string]models.DocumentRecord),
		reminders: make(map[string]models.ReminderConfig),
		claims:    make(map[string]models.ClaimRecord),
		denials:   make(map[string]models.DenialRecord),
	}
}

func (ms *MemoryStore) UpsertDocument(_ context.Context, doc *models.DocumentRecord) (*models.DocumentRecord, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := time.Now()
	next := *doc
	next.CreatedAt = now
	if existing, ok := ms.documents[doc.DocID]; ok {
		next.CreatedAt = existing.CreatedAt
	}
	next.UpdatedAt = now

	ms.documents[doc.DocID] = next
	return &next, nil
}

func (ms *MemoryStore) GetDocument(_ context.Context, docID string) (*models.DocumentRecord, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	doc, ok := ms.documents[docID]
	if !ok {
		return nil, ErrNotFound
	}
	return &doc, nil
}

func (ms *MemoryStore) ListDocuments(_ context.Context, userID string) ([]models.DocumentRecord, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	out := []models.DocumentRecord{}
	for _, doc := range ms.documents {
		if doc.UserID == userID {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (ms *MemoryStore) DeleteUserData(_ context.Context, userID string) (int64, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	var deleted int64
	for id, doc := range ms.documents {
		if doc.UserID == userID {
			delete(ms.documents, id)
			deleted++
		}
	}
	for id, reminder := range ms.reminders {
		if reminder.UserID == userID {
			delete(ms.reminders, id)
			deleted++
		}
	}
	for id, claim := range ms.claims {
		if claim.UserID == userID {
			delete(ms.claims, id)
			deleted++
		}
	}
	return deleted, nil
}

func (ms *MemoryStore) UpsertReminder(_ context.Context, reminder *models.ReminderConfig) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.reminders[reminder.ReminderID] = *reminder
	return nil
}

func (ms *MemoryStore) ListReminders(_ context.Context, userID string) ([]models.ReminderConfig, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	out := []models.ReminderConfig{}
	for _, reminder := range ms.reminders {
		if reminder.UserID == userID {
			out = append(out, reminder)
		}
	}
	return out, nil
}

func (ms *MemoryStore) DueReminders(_ context.Context, before time.Time, limit int64) ([]models.ReminderConfig, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	out := []models.ReminderConfig{}
	for _, reminder := range ms.reminders {
		if reminder.Status == models.ReminderScheduled && reminder.TriggerAt.Before(before) {
			out = append(out, reminder)
			if limit > 0 && int64(len(out)) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (ms *MemoryStore) MarkReminderAttempt(_ context.Context, reminderID string, at time.Time) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	reminder, ok := ms.reminders[reminderID]
	if !ok {
		return ErrNotFound
	}
	reminder.LastAttempt = &at
	ms.reminders[reminderID] = reminder
	return nil
}

func (ms *MemoryStore) UpsertClaim(_ context.Context, claim *models.ClaimRecord) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.claims[claim.ClaimID] = *claim
	return nil
}

func (ms *MemoryStore) UpsertDenial(_ context.Context, denial *models.DenialRecord) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.denials[denial.DenialID] = *denial
	return nil
}
