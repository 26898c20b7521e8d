package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"safebill-backend/internal/store"
	"safebill-backend/models"
	"safebill-backend/utils"
)

// ClaimService drafts warranty claims against stored documents.
type ClaimService struct {
	store store.Store
}

func NewClaimService(st store.Store) *ClaimService {
	return &ClaimService{store: st}
}

// CreateClaim drafts a claim for the given item and persists it. The
// generated email body is the first artifact; the history trail starts at
// draft_created.
func (cs *ClaimService) CreateClaim(ctx context.Context, userID string, document *models.DocumentRecord, item *models.WarrantyItem, issue string) (*models.ClaimRecord, error) {
	claim := &models.ClaimRecord{
		ClaimID: utils.GenerateID("claim"),
		UserID:  userID,
		DocID:   document.DocID,
		ItemID:  item.ItemID,
		Stage:   models.ClaimDraft,
		Artifacts: []models.ClaimArtifact{
			{Type: "email", Body: buildClaimLetter(userID, document, item, issue)},
		},
		History: []models.ClaimEvent{
			{Status: "draft_created", Note: issue, At: time.Now().UTC()},
		},
	}
	if err := cs.store.UpsertClaim(ctx, claim); err != nil {
		return nil, fmt.Errorf("persist claim for doc %s: %w", document.DocID, err)
	}
	return claim, nil
}

// buildClaimLetter renders the claim email. Missing item fields fall back
// to neutral placeholders so the draft is always sendable.
func buildClaimLetter(userID string, document *models.DocumentRecord, item *models.WarrantyItem, issue string) string {
	product := orDefault(item.ProductName, "the item")
	subjectProduct := orDefault(item.ProductName, "product")
	seller := orDefault(item.SellerName, "Seller")
	model := orDefault(item.Model, "N/A")
	purchaseDate := orDefault(item.PurchaseDate, "unknown date")
	invoice := orDefault(item.InvoiceNo, document.DocID)
	warrantyEnd := orDefault(item.WarrantyEnd, "unknown date")

	lines := []string{
		fmt.Sprintf("Subject: Warranty claim for %s", subjectProduct),
		"",
		fmt.Sprintf("Dear %s,", seller),
		"",
		fmt.Sprintf("I purchased %s (Model %s) on %s with invoice %s. The warranty is valid through %s.",
			product, model, purchaseDate, invoice, warrantyEnd),
		"",
		fmt.Sprintf("Issue reported: %s.", issue),
		"",
		"Please process this warranty claim within the timelines stipulated under the Consumer Protection Act 2019.",
		"",
		"Regards,",
		fmt.Sprintf("User %s", userID),
	}
	return strings.Join(lines, "\n")
}

func orDefault(value *string, fallback string) string {
	if value != nil && *value != "" {
		return *value
	}
	return fallback
}
