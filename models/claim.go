package models

import "time"

// Claim stages.
const (
	ClaimDraft     = "draft"
	ClaimSubmitted = "submitted"
	ClaimAppeal    = "appeal"
)

// ClaimArtifact is a generated claim asset (email body, PDF, message draft).
type ClaimArtifact struct {
	Type string `json:"type" bson:"type"`
	Path string `json:"path,omitempty" bson:"path,omitempty"`
	Body string `json:"body" bson:"body"`
}

// ClaimEvent is one entry in a claim's history trail.
type ClaimEvent struct {
	Status string    `json:"status" bson:"status"`
	Note   string    `json:"note,omitempty" bson:"note,omitempty"`
	At     time.Time `json:"at" bson:"at"`
}

// ClaimRecord tracks a warranty claim raised against a stored item.
type ClaimRecord struct {
	ClaimID      string          `json:"claimId" bson:"_id"`
	UserID       string          `json:"userId" bson:"user_id"`
	DocID        string          `json:"docId" bson:"doc_id"`
	ItemID       string          `json:"itemId" bson:"item_id"`
	Stage        string          `json:"stage" bson:"stage"`
	DenialReason *string         `json:"denialReason,omitempty" bson:"denial_reason,omitempty"`
	Artifacts    []ClaimArtifact `json:"generatedArtifacts,omitempty" bson:"artifacts,omitempty"`
	History      []ClaimEvent    `json:"history" bson:"history"`
}

// DenialRecord is the analysis of a warranty claim denial letter.
type DenialRecord struct {
	DenialID       string    `json:"denialId" bson:"_id"`
	ClaimID        string    `json:"claimId" bson:"claim_id"`
	RawText        string    `json:"rawText" bson:"raw_text"`
	Classification string    `json:"classification" bson:"classification"`
	NextSteps      []string  `json:"suggestedNextSteps" bson:"next_steps"`
	AppealLetter   *string   `json:"appealLetter,omitempty" bson:"appeal_letter,omitempty"`
	CreatedAt      time.Time `json:"createdAt" bson:"created_at"`
}
