package services

import (
	"context"
	"testing"
	"time"

	"safebill-backend/internal/store"
	"safebill-backend/models"
	"safebill-backend/utils"
)

func TestScheduleExpiryRemindersFullSchedule(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewReminderService(st, nil)

	end := time.Now().AddDate(0, 0, 60).Format(utils.ISODate)
	itemID := "item-abc"
	reminders, err := svc.ScheduleExpiryReminders(context.Background(), "user-1", "doc-1", &itemID, &end)
	if err != nil {
		t.Fatalf("ScheduleExpiryReminders: %v", err)
	}
	if len(reminders) != 4 {
		t.Fatalf("reminders = %d, want 4 (offsets 30,7,3,1)", len(reminders))
	}
	for i, r := range reminders {
		if r.TriggerType != models.TriggerExpiry {
			t.Errorf("reminder %d trigger_type = %q", i, r.TriggerType)
		}
		if r.Status != models.ReminderScheduled {
			t.Errorf("reminder %d status = %q", i, r.Status)
		}
		if len(r.DeliveryChannels) != 2 || r.DeliveryChannels[0] != models.ChannelLocal {
			t.Errorf("reminder %d channels = %v", i, r.DeliveryChannels)
		}
		if r.ItemID == nil || *r.ItemID != itemID {
			t.Errorf("reminder %d item_id = %v", i, r.ItemID)
		}
		if !r.TriggerAt.After(time.Now()) {
			t.Errorf("reminder %d trigger_at in the past: %v", i, r.TriggerAt)
		}
	}

	stored, err := st.ListReminders(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ListReminders: %v", err)
	}
	if len(stored) != 4 {
		t.Errorf("persisted reminders = %d, want 4", len(stored))
	}
}

func TestScheduleExpiryRemindersDropsPastSlots(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewReminderService(st, nil)

	// Warranty ends in 2 days: only the 1-day-before slot is in the future.
	end := time.Now().AddDate(0, 0, 2).Format(utils.ISODate)
	reminders, err := svc.ScheduleExpiryReminders(context.Background(), "user-1", "doc-1", nil, &end)
	if err != nil {
		t.Fatalf("ScheduleExpiryReminders: %v", err)
	}
	if len(reminders) != 1 {
		t.Fatalf("reminders = %d, want 1", len(reminders))
	}
}

func TestScheduleExpiryRemindersNilEnd(t *testing.T) {
	svc := NewReminderService(store.NewMemoryStore(), nil)
	reminders, err := svc.ScheduleExpiryReminders(context.Background(), "user-1", "doc-1", nil, nil)
	if err != nil {
		t.Fatalf("nil end should not error: %v", err)
	}
	if len(reminders) != 0 {
		t.Errorf("reminders = %d, want 0", len(reminders))
	}
}

func TestScheduleExpiryRemindersBadDate(t *testing.T) {
	svc := NewReminderService(store.NewMemoryStore(), nil)
	bad := "15/01/2025"
	if _, err := svc.ScheduleExpiryReminders(context.Background(), "user-1", "doc-1", nil, &bad); err == nil {
		t.Fatal("expected error for non-ISO warranty end")
	}
}

func TestRunDueScan(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewReminderService(st, nil)

	past := models.ReminderConfig{
		ReminderID:  "rem_past",
		UserID:      "user-1",
		DocID:       "doc-1",
		TriggerType: models.TriggerExpiry,
		TriggerAt:   time.Now().Add(-time.Hour),
		Status:      models.ReminderScheduled,
	}
	future := models.ReminderConfig{
		ReminderID:  "rem_future",
		UserID:      "user-1",
		DocID:       "doc-1",
		TriggerType: models.TriggerExpiry,
		TriggerAt:   time.Now().Add(time.Hour),
		Status:      models.ReminderScheduled,
	}
	for _, r := range []models.ReminderConfig{past, future} {
		if err := st.UpsertReminder(context.Background(), &r); err != nil {
			t.Fatalf("seed reminder: %v", err)
		}
	}

	attempted, err := svc.RunDueScan(context.Background())
	if err != nil {
		t.Fatalf("RunDueScan: %v", err)
	}
	if attempted != 1 {
		t.Fatalf("attempted = %d, want 1", attempted)
	}

	list, _ := st.ListReminders(context.Background(), "user-1")
	for _, r := range list {
		switch r.ReminderID {
		case "rem_past":
			if r.LastAttempt == nil {
				t.Error("past reminder missing lastAttempt stamp")
			}
		case "rem_future":
			if r.LastAttempt != nil {
				t.Error("future reminder should not be attempted")
			}
		}
	}
}

func TestScheduleOneOff(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewReminderService(st, nil)

	at := time.Now().Add(48 * time.Hour)
	reminder, err := svc.ScheduleOneOff(context.Background(), "user-1", "doc-1", nil, models.TriggerFollowup, at)
	if err != nil {
		t.Fatalf("ScheduleOneOff: %v", err)
	}
	if reminder.TriggerType != models.TriggerFollowup {
		t.Errorf("trigger_type = %q", reminder.TriggerType)
	}
	if len(reminder.DeliveryChannels) != 1 || reminder.DeliveryChannels[0] != models.ChannelLocal {
		t.Errorf("channels = %v, want [local]", reminder.DeliveryChannels)
	}

	if _, err := svc.ScheduleOneOff(context.Background(), "user-1", "doc-1", nil, models.TriggerExpiry, at); err == nil {
		t.Error("expiry type should be rejected for one-off scheduling")
	}
}
