package services

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"safebill-backend/internal/store"
	"safebill-backend/models"
	"safebill-backend/utils"
)

// denialRule maps a denial-letter pattern to its classification. Rules are
// checked in order; the first match wins.
type denialRule struct {
	pattern        *regexp.Regexp
	classification string
}

var denialRules = []denialRule{
	{regexp.MustCompile(`(?i)physical damage`), "physical_damage"},
	{regexp.MustCompile(`(?i)water`), "water_damage"},
	{regexp.MustCompile(`(?i)late|delay`), "late_submission"},
	{regexp.MustCompile(`(?i)unauthorised|unauthorized`), "unauthorized_repair"},
}

var denialNextSteps = map[string][]string{
	"physical_damage": {
		"Request technician inspection report to dispute physical damage claim.",
		"Share purchase proof and photos showing no misuse.",
	},
	"water_damage": {
		"Reference moisture ingress clauses; highlight if water protection promised.",
		"Escalate to manufacturer service head with humidity logs if available.",
	},
	"late_submission": {
		"Explain delay with evidence (service center appointments, hospital records).",
		"Request exception citing Consumer Protection Act Section 17.",
	},
	"unauthorized_repair": {
		"Provide receipts from authorized service centers.",
		"Clarify diagnostics done only; no third-party repair performed.",
	},
}

var denialFallbackSteps = []string{
	"Escalate with full chronology and ask for written denial reason.",
}

// DenialService classifies claim denial letters and suggests next steps.
type DenialService struct {
	store store.Store
}

func NewDenialService(st store.Store) *DenialService {
	return &DenialService{store: st}
}

// AnalyzeDenial classifies the denial letter and persists the analysis.
func (ds *DenialService) AnalyzeDenial(ctx context.Context, claimID, rawText string) (*models.DenialRecord, error) {
	classification := classifyDenial(rawText)
	denial := &models.DenialRecord{
		DenialID:       utils.GenerateID("denial"),
		ClaimID:        claimID,
		RawText:        rawText,
		Classification: classification,
		NextSteps:      nextStepsFor(classification),
		CreatedAt:      time.Now().UTC(),
	}
	if err := ds.store.UpsertDenial(ctx, denial); err != nil {
		return nil, fmt.Errorf("persist denial analysis for claim %s: %w", claimID, err)
	}
	return denial, nil
}

func classifyDenial(text string) string {
	for _, rule := range denialRules {
		if rule.pattern.MatchString(text) {
			return rule.classification
		}
	}
	return "other"
}

func nextStepsFor(classification string) []string {
	if steps, ok := denialNextSteps[classification]; ok {
		return steps
	}
	return denialFallbackSteps
}
