package utils

import (
	"testing"
	"time"
)

func TestAddMonths(t *testing.T) {
	tests := []struct {
		name   string
		start  string
		months int
		want   string
	}{
		{"plain year", "2024-01-15", 12, "2025-01-15"},
		{"mid year", "2024-03-01", 6, "2024-09-01"},
		{"day overflow rolls forward", "2024-01-31", 1, "2024-03-02"},
		{"across year boundary", "2024-11-15", 3, "2025-02-15"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, err := time.Parse(ISODate, tt.start)
			if err != nil {
				t.Fatalf("parse start: %v", err)
			}
			got := AddMonths(start, tt.months).Format(ISODate)
			if got != tt.want {
				t.Errorf("AddMonths(%s, %d) = %s, want %s", tt.start, tt.months, got, tt.want)
			}
		})
	}
}

func TestToISODate(t *testing.T) {
	if got := ToISODate(nil); got != nil {
		t.Errorf("ToISODate(nil) = %v, want nil", *got)
	}

	ts := time.Date(2024, 1, 15, 18, 42, 3, 0, time.UTC)
	got := ToISODate(&ts)
	if got == nil || *got != "2024-01-15" {
		t.Errorf("ToISODate = %v, want 2024-01-15", got)
	}
}

func TestReminderDatesFiltersPast(t *testing.T) {
	base := time.Now().AddDate(0, 0, 40)
	offsets := []int{30, 7, 3, 1}

	dates := ReminderDates(base, offsets)
	if len(dates) != 4 {
		t.Fatalf("expected all 4 reminder dates for a base 40 days out, got %d", len(dates))
	}
	for i, d := range dates {
		if !d.After(time.Now()) {
			t.Errorf("date %d is not in the future: %v", i, d)
		}
	}

	base = time.Now().AddDate(0, 0, 2)
	dates = ReminderDates(base, offsets)
	if len(dates) != 1 {
		t.Fatalf("expected only the 1-day offset for a base 2 days out, got %d", len(dates))
	}
}

func TestReminderDatesPreservesOffsetOrder(t *testing.T) {
	base := time.Now().AddDate(0, 0, 60)
	offsets := []int{1, 30, 7}

	dates := ReminderDates(base, offsets)
	if len(dates) != 3 {
		t.Fatalf("expected 3 dates, got %d", len(dates))
	}
	// Offset order is preserved, so output is NOT chronological.
	if !dates[0].After(dates[1]) {
		t.Errorf("expected offset-order output (1-day before 30-day), got chronological")
	}
	if !dates[2].After(dates[1]) {
		t.Errorf("expected the 7-day offset after the 30-day offset in output order")
	}
}

func TestReminderDatesEmptyOffsets(t *testing.T) {
	if got := ReminderDates(time.Now().AddDate(0, 0, 10), nil); len(got) != 0 {
		t.Errorf("expected no dates for empty offsets, got %d", len(got))
	}
}
