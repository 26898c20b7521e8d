package models

import "time"

// Document processing statuses.
const (
	StatusDraft       = "draft"
	StatusReady       = "ready"
	StatusNeedsReview = "needs_review"
)

// DocumentRecord owns the warranty items extracted from one raw invoice text.
// CreatedAt is set on first persistence and never changes afterwards;
// UpdatedAt refreshes on every write.
type DocumentRecord struct {
	DocID     string         `json:"docId" bson:"_id"`
	UserID    string         `json:"userId" bson:"user_id"`
	Title     string         `json:"title,omitempty" bson:"title,omitempty"`
	RawText   string         `json:"rawText" bson:"raw_text"`
	Items     []WarrantyItem `json:"items" bson:"items"`
	Status    string         `json:"status" bson:"status"`
	CreatedAt time.Time      `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time      `json:"updatedAt" bson:"updated_at"`
}
