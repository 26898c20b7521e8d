package services

import (
	"context"
	"fmt"
	"time"

	"safebill-backend/internal/logger"
	"safebill-backend/internal/store"
	"safebill-backend/models"
	"safebill-backend/utils"
)

// ReminderService builds and persists reminder schedules for warranty
// expiries and one-off followups.
type ReminderService struct {
	store   store.Store
	offsets []int
}

func NewReminderService(st store.Store, offsets []int) *ReminderService {
	if len(offsets) == 0 {
		offsets = []int{30, 7, 3, 1}
	}
	return &ReminderService{store: st, offsets: offsets}
}

// ScheduleExpiryReminders creates one reminder per configured offset ahead
// of the warranty end date, skipping any slot already in the past. A nil
// warranty end yields an empty schedule, not an error.
func (rs *ReminderService) ScheduleExpiryReminders(ctx context.Context, userID, docID string, itemID, warrantyEnd *string) ([]models.ReminderConfig, error) {
	if warrantyEnd == nil {
		return []models.ReminderConfig{}, nil
	}

	end, err := time.Parse(utils.ISODate, *warrantyEnd)
	if err != nil {
		end, err = time.Parse(time.RFC3339, *warrantyEnd)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid warranty end date %q: %w", *warrantyEnd, err)
	}

	reminders := make([]models.ReminderConfig, 0, len(rs.offsets))
	for _, triggerAt := range utils.ReminderDates(end, rs.offsets) {
		reminder := models.ReminderConfig{
			ReminderID:       utils.GenerateID("rem"),
			UserID:           userID,
			DocID:            docID,
			ItemID:           itemID,
			TriggerType:      models.TriggerExpiry,
			TriggerAt:        triggerAt,
			DeliveryChannels: []string{models.ChannelLocal, models.ChannelPush},
			Status:           models.ReminderScheduled,
		}
		if err := rs.store.UpsertReminder(ctx, &reminder); err != nil {
			return nil, fmt.Errorf("persist reminder for doc %s: %w", docID, err)
		}
		reminders = append(reminders, reminder)
	}

	logger.Info("Scheduled expiry reminders", "doc_id", docID, "count", len(reminders))
	return reminders, nil
}

// ScheduleOneOff creates a single followup or custom reminder at the given
// trigger time.
func (rs *ReminderService) ScheduleOneOff(ctx context.Context, userID, docID string, itemID *string, triggerType string, triggerAt time.Time) (*models.ReminderConfig, error) {
	if triggerType != models.TriggerFollowup && triggerType != models.TriggerCustom {
		return nil, fmt.Errorf("unsupported trigger type %q", triggerType)
	}

	reminder := models.ReminderConfig{
		ReminderID:       utils.GenerateID("rem"),
		UserID:           userID,
		DocID:            docID,
		ItemID:           itemID,
		TriggerType:      triggerType,
		TriggerAt:        triggerAt,
		DeliveryChannels: []string{models.ChannelLocal},
		Status:           models.ReminderScheduled,
	}
	if err := rs.store.UpsertReminder(ctx, &reminder); err != nil {
		return nil, fmt.Errorf("persist %s reminder for doc %s: %w", triggerType, docID, err)
	}
	return &reminder, nil
}

// ListReminders returns every reminder owned by the user.
func (rs *ReminderService) ListReminders(ctx context.Context, userID string) ([]models.ReminderConfig, error) {
	return rs.store.ListReminders(ctx, userID)
}

// dueScanBatch bounds one due-scan pass.
const dueScanBatch = 200

// RunDueScan finds scheduled reminders whose trigger time has passed and
// stamps a delivery attempt on each. Actual delivery happens on-device; the
// backend records that the reminder fired.
func (rs *ReminderService) RunDueScan(ctx context.Context) (int, error) {
	now := time.Now()
	due, err := rs.store.DueReminders(ctx, now, dueScanBatch)
	if err != nil {
		return 0, fmt.Errorf("scan due reminders: %w", err)
	}

	attempted := 0
	for _, reminder := range due {
		if err := rs.store.MarkReminderAttempt(ctx, reminder.ReminderID, now); err != nil {
			logger.Warn("Failed to mark reminder attempt", "reminder_id", reminder.ReminderID, "error", err)
			continue
		}
		logger.Info("Reminder due",
			"reminder_id", reminder.ReminderID,
			"user_id", reminder.UserID,
			"trigger_type", reminder.TriggerType,
			"channels", reminder.DeliveryChannels,
		)
		attempted++
	}
	return attempted, nil
}
