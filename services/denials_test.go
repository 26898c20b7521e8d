package services

import (
	"context"
	"strings"
	"testing"

	"safebill-backend/internal/store"
)

func TestClassifyDenial(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{"physical damage", "Claim rejected due to Physical Damage observed on the chassis.", "physical_damage"},
		{"water damage", "Water ingress detected near the charging port.", "water_damage"},
		{"late submission", "Your claim was filed late, beyond the permitted window.", "late_submission"},
		{"delay wording", "There was an unexplained delay in reporting the fault.", "late_submission"},
		{"unauthorized repair", "Seal broken by an unauthorised third-party technician.", "unauthorized_repair"},
		{"unmatched", "The product serial number does not match our records.", "other"},
		// First matching rule wins when several apply.
		{"physical beats water", "Physical damage caused by water exposure.", "physical_damage"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := classifyDenial(tc.text); got != tc.want {
				t.Errorf("classifyDenial(%q) = %q, want %q", tc.text, got, tc.want)
			}
		})
	}
}

func TestAnalyzeDenial(t *testing.T) {
	svc := NewDenialService(store.NewMemoryStore())

	denial, err := svc.AnalyzeDenial(context.Background(), "claim_1", "Denied: unauthorized repair voided the warranty.")
	if err != nil {
		t.Fatalf("AnalyzeDenial: %v", err)
	}
	if denial.Classification != "unauthorized_repair" {
		t.Errorf("classification = %q", denial.Classification)
	}
	if len(denial.NextSteps) != 2 {
		t.Errorf("next steps = %d, want 2", len(denial.NextSteps))
	}
	if !strings.HasPrefix(denial.DenialID, "denial_") {
		t.Errorf("denialId = %q, want denial_ prefix", denial.DenialID)
	}
	if denial.CreatedAt.IsZero() {
		t.Error("createdAt not set")
	}
}

func TestAnalyzeDenialFallbackSteps(t *testing.T) {
	svc := NewDenialService(store.NewMemoryStore())
	denial, err := svc.AnalyzeDenial(context.Background(), "claim_2", "No reason given.")
	if err != nil {
		t.Fatalf("AnalyzeDenial: %v", err)
	}
	if denial.Classification != "other" {
		t.Errorf("classification = %q, want other", denial.Classification)
	}
	if len(denial.NextSteps) != 1 {
		t.Errorf("fallback steps = %d, want 1", len(denial.NextSteps))
	}
}
