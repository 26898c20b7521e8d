package services

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"safebill-backend/internal/store"
	"safebill-backend/models"
)

func seedExportData(t *testing.T, st store.Store, vectors store.VectorIndex) {
	t.Helper()
	ctx := context.Background()

	_, err := st.UpsertDocument(ctx, &models.DocumentRecord{
		DocID:  "doc-1",
		UserID: "user-1",
		Items: []models.WarrantyItem{{
			ItemID:      "item-1",
			ProductName: strPtr("Dell XPS 15 Laptop"),
			WarrantyEnd: strPtr("2025-01-15"),
		}},
		Status: models.StatusReady,
	})
	if err != nil {
		t.Fatalf("seed document: %v", err)
	}

	err = st.UpsertReminder(ctx, &models.ReminderConfig{
		ReminderID:       "rem_1",
		UserID:           "user-1",
		DocID:            "doc-1",
		TriggerType:      models.TriggerExpiry,
		TriggerAt:        time.Now().AddDate(0, 0, 30),
		DeliveryChannels: []string{models.ChannelLocal},
		Status:           models.ReminderScheduled,
	})
	if err != nil {
		t.Fatalf("seed reminder: %v", err)
	}

	if vectors != nil {
		err = vectors.Upsert(ctx, []models.ChunkVector{{
			ChunkID: "doc-1_chunk_0",
			DocID:   "doc-1",
			UserID:  "user-1",
			Vector:  []float32{1, 0, 0},
		}})
		if err != nil {
			t.Fatalf("seed vector: %v", err)
		}
	}
}

func TestExportJSON(t *testing.T) {
	st := store.NewMemoryStore()
	seedExportData(t, st, nil)
	svc := NewExportService(st, nil)

	raw, err := svc.ExportJSON(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}

	var export UserExport
	if err := json.Unmarshal(raw, &export); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if export.UserID != "user-1" {
		t.Errorf("userId = %q", export.UserID)
	}
	if len(export.Documents) != 1 || len(export.Reminders) != 1 {
		t.Errorf("documents = %d, reminders = %d, want 1 each", len(export.Documents), len(export.Reminders))
	}
}

func TestExportJSONScopedToUser(t *testing.T) {
	st := store.NewMemoryStore()
	seedExportData(t, st, nil)
	svc := NewExportService(st, nil)

	raw, err := svc.ExportJSON(context.Background(), "user-2")
	if err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	var export UserExport
	if err := json.Unmarshal(raw, &export); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(export.Documents) != 0 || len(export.Reminders) != 0 {
		t.Errorf("other user's export should be empty, got %d docs %d reminders",
			len(export.Documents), len(export.Reminders))
	}
}

func TestExportExcel(t *testing.T) {
	st := store.NewMemoryStore()
	seedExportData(t, st, nil)
	svc := NewExportService(st, nil)

	raw, err := svc.ExportExcel(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ExportExcel: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("export is not a readable workbook: %v", err)
	}
	defer f.Close()

	product, err := f.GetCellValue("Documents", "C2")
	if err != nil {
		t.Fatalf("read Documents sheet: %v", err)
	}
	if product != "Dell XPS 15 Laptop" {
		t.Errorf("Documents C2 = %q", product)
	}

	reminderID, err := f.GetCellValue("Reminders", "A2")
	if err != nil {
		t.Fatalf("read Reminders sheet: %v", err)
	}
	if reminderID != "rem_1" {
		t.Errorf("Reminders A2 = %q", reminderID)
	}
}

func TestDeleteUserData(t *testing.T) {
	st := store.NewMemoryStore()
	vectors := store.NewMemoryVectorIndex()
	seedExportData(t, st, vectors)
	svc := NewExportService(st, vectors)

	report, err := svc.DeleteUserData(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("DeleteUserData: %v", err)
	}
	// One document plus one reminder.
	if report.RecordsDeleted != 2 {
		t.Errorf("recordsDeleted = %d, want 2", report.RecordsDeleted)
	}
	if report.VectorsDeleted != 1 {
		t.Errorf("vectorsDeleted = %d, want 1", report.VectorsDeleted)
	}

	docs, _ := st.ListDocuments(context.Background(), "user-1")
	if len(docs) != 0 {
		t.Errorf("documents remain after deletion: %d", len(docs))
	}
	remaining, _ := vectors.ByUser(context.Background(), "user-1")
	if len(remaining) != 0 {
		t.Errorf("vectors remain after deletion: %d", len(remaining))
	}
}
