package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"safebill-backend/internal/logger"
	"safebill-backend/internal/store"
	"safebill-backend/models"
)

// UserExport is the portable snapshot of everything a user owns.
type UserExport struct {
	UserID     string                  `json:"userId"`
	ExportedAt time.Time               `json:"exportedAt"`
	Documents  []models.DocumentRecord `json:"documents"`
	Reminders  []models.ReminderConfig `json:"reminders"`
}

// DeletionReport summarizes a user-data wipe. RecordsDeleted counts
// documents, reminders and claims together.
type DeletionReport struct {
	RecordsDeleted int64 `json:"recordsDeleted"`
	VectorsDeleted int64 `json:"vectorsDeleted"`
}

// ExportService packages user data for takeout and handles full deletion.
type ExportService struct {
	store   store.Store
	vectors store.VectorIndex
}

func NewExportService(st store.Store, vectors store.VectorIndex) *ExportService {
	return &ExportService{store: st, vectors: vectors}
}

// BuildExport collects every record the user owns.
func (es *ExportService) BuildExport(ctx context.Context, userID string) (*UserExport, error) {
	documents, err := es.store.ListDocuments(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list documents for export: %w", err)
	}
	reminders, err := es.store.ListReminders(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list reminders for export: %w", err)
	}
	return &UserExport{
		UserID:     userID,
		ExportedAt: time.Now().UTC(),
		Documents:  documents,
		Reminders:  reminders,
	}, nil
}

// ExportJSON renders the snapshot as indented JSON.
func (es *ExportService) ExportJSON(ctx context.Context, userID string) ([]byte, error) {
	export, err := es.BuildExport(ctx, userID)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(export, "", "  ")
}

// ExportExcel renders the snapshot as a two-sheet workbook: one sheet per
// record type.
func (es *ExportService) ExportExcel(ctx context.Context, userID string) ([]byte, error) {
	export, err := es.BuildExport(ctx, userID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			logger.Warn("Failed to close Excel file", "error", err)
		}
	}()

	if err := writeDocumentsSheet(f, export.Documents); err != nil {
		return nil, err
	}
	if err := writeRemindersSheet(f, export.Reminders); err != nil {
		return nil, err
	}
	// excelize always creates a default sheet; drop it once ours exist.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		logger.Warn("Failed to remove default sheet", "error", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write Excel export: %w", err)
	}
	return buf.Bytes(), nil
}

func writeDocumentsSheet(f *excelize.File, documents []models.DocumentRecord) error {
	const sheet = "Documents"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}
	f.SetActiveSheet(index)

	headers := []string{
		"Doc ID", "Status", "Product", "Model", "Invoice No",
		"Purchase Date", "Purchase Price", "Seller", "Warranty End", "Created At",
	}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheet, cell, header)
	}

	row := 2
	for _, doc := range documents {
		for _, item := range doc.Items {
			f.SetCellValue(sheet, fmt.Sprintf("A%d", row), doc.DocID)
			f.SetCellValue(sheet, fmt.Sprintf("B%d", row), doc.Status)
			f.SetCellValue(sheet, fmt.Sprintf("C%d", row), orDefault(item.ProductName, ""))
			f.SetCellValue(sheet, fmt.Sprintf("D%d", row), orDefault(item.Model, ""))
			f.SetCellValue(sheet, fmt.Sprintf("E%d", row), orDefault(item.InvoiceNo, ""))
			f.SetCellValue(sheet, fmt.Sprintf("F%d", row), orDefault(item.PurchaseDate, ""))
			if item.PurchasePrice != nil {
				f.SetCellValue(sheet, fmt.Sprintf("G%d", row), *item.PurchasePrice)
			}
			f.SetCellValue(sheet, fmt.Sprintf("H%d", row), orDefault(item.SellerName, ""))
			f.SetCellValue(sheet, fmt.Sprintf("I%d", row), orDefault(item.WarrantyEnd, ""))
			f.SetCellValue(sheet, fmt.Sprintf("J%d", row), doc.CreatedAt.Format("2006-01-02 15:04:05"))
			row++
		}
	}

	f.SetColWidth(sheet, "A", "J", 18)
	return nil
}

func writeRemindersSheet(f *excelize.File, reminders []models.ReminderConfig) error {
	const sheet = "Reminders"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}

	headers := []string{"Reminder ID", "Doc ID", "Trigger Type", "Trigger At", "Channels", "Status"}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheet, cell, header)
	}

	for i, reminder := range reminders {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), reminder.ReminderID)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), reminder.DocID)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), reminder.TriggerType)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), reminder.TriggerAt.Format("2006-01-02 15:04:05"))
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), fmt.Sprintf("%v", reminder.DeliveryChannels))
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), reminder.Status)
	}

	f.SetColWidth(sheet, "A", "F", 20)
	return nil
}

// DeleteUserData wipes every record the user owns, including the
// similarity index.
func (es *ExportService) DeleteUserData(ctx context.Context, userID string) (*DeletionReport, error) {
	records, err := es.store.DeleteUserData(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("delete user data: %w", err)
	}

	var vectors int64
	if es.vectors != nil {
		vectors, err = es.vectors.DeleteByUser(ctx, userID)
		if err != nil {
			// The durable records are already gone; report and continue.
			logger.Error("Failed to delete user vectors", "user_id", userID, "error", err)
		}
	}

	logger.Info("User data deleted", "user_id", userID, "records", records, "vectors", vectors)
	return &DeletionReport{RecordsDeleted: records, VectorsDeleted: vectors}, nil
}
