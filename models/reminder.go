package models

import "time"

// Reminder trigger types.
const (
	TriggerExpiry   = "expiry"
	TriggerFollowup = "followup"
	TriggerCustom   = "custom"
)

// Reminder statuses. Transitions past "scheduled" belong to the delivery
// worker, not to this service.
const (
	ReminderScheduled = "scheduled"
	ReminderSent      = "sent"
	ReminderSnoozed   = "snoozed"
)

// Delivery channels.
const (
	ChannelLocal = "local"
	ChannelPush  = "push"
	ChannelEmail = "email"
)

// ReminderConfig is one scheduled reminder for a warranty deadline.
type ReminderConfig struct {
	ReminderID       string     `json:"reminderId" bson:"_id"`
	UserID           string     `json:"userId" bson:"user_id"`
	DocID            string     `json:"docId" bson:"doc_id"`
	ItemID           *string    `json:"itemId,omitempty" bson:"item_id,omitempty"`
	TriggerType      string     `json:"triggerType" bson:"trigger_type"`
	TriggerAt        time.Time  `json:"triggerAt" bson:"trigger_at"`
	DeliveryChannels []string   `json:"deliveryChannels" bson:"delivery_channels"`
	Status           string     `json:"status" bson:"status"`
	LastAttempt      *time.Time `json:"lastAttempt,omitempty" bson:"last_attempt,omitempty"`
	SnoozeUntil      *time.Time `json:"snoozeUntil,omitempty" bson:"snooze_until,omitempty"`
}
