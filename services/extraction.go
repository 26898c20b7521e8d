package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"safebill-backend/internal/logger"
	"safebill-backend/internal/store"
	"safebill-backend/models"
)

// ErrNoItems is the hard extraction failure: the parser produced nothing
// usable and the caller should retry with clearer input.
var ErrNoItems = errors.New("no warranty items found")

// StructuredExtractor is the LLM structured-extraction capability.
type StructuredExtractor interface {
	StructuredExtract(ctx context.Context, text string) (json.RawMessage, error)
}

// llmExtraction mirrors the JSON object the model is asked to return.
// Absent fields stay nil and never overwrite parser results.
type llmExtraction struct {
	ProductName      *string  `json:"product_name"`
	Model            *string  `json:"model"`
	InvoiceNo        *string  `json:"invoice_no"`
	PurchaseDate     *string  `json:"purchase_date"`
	PurchasePrice    *float64 `json:"purchase_price"`
	SellerName       *string  `json:"seller_name"`
	GSTIN            *string  `json:"gstin"`
	WarrantyMonths   *int     `json:"warranty_months"`
	WarrantyNotes    *string  `json:"warranty_notes"`
	ExtendedWarranty *bool    `json:"extended_warranty"`
	ServiceCenters   []string `json:"service_centers"`
}

// ExtractionService runs the document pipeline: deterministic parse, LLM
// enrichment under a bounded timeout, persistence.
type ExtractionService struct {
	parser    *ParserService
	extractor StructuredExtractor
	store     store.Store
	timeout   time.Duration
}

func NewExtractionService(parser *ParserService, extractor StructuredExtractor, st store.Store, timeout time.Duration) *ExtractionService {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ExtractionService{
		parser:    parser,
		extractor: extractor,
		store:     st,
		timeout:   timeout,
	}
}

// ExtractDocument parses rawText into a warranty item, enriches it and
// persists the resulting document. Only a hard extraction failure
// propagates; enrichment trouble silently falls back to the deterministic
// baseline.
func (es *ExtractionService) ExtractDocument(ctx context.Context, userID, docID, rawText string) (*models.DocumentRecord, error) {
	tracer := otel.Tracer("extraction")
	ctx, span := tracer.Start(ctx, "extraction.extract_document")
	defer span.End()
	span.SetAttributes(
		attribute.String("doc.id", docID),
		attribute.Int("doc.raw_chars", len(rawText)),
	)

	items := es.parser.ParseInvoiceText(rawText, userID)
	if len(items) == 0 {
		return nil, ErrNoItems
	}

	enriched := es.enrich(ctx, rawText, items[0])

	document := &models.DocumentRecord{
		DocID:   docID,
		UserID:  userID,
		RawText: rawText,
		Items:   []models.WarrantyItem{enriched},
		Status:  models.StatusReady,
	}

	stored, err := es.store.UpsertDocument(ctx, document)
	if err != nil {
		return nil, fmt.Errorf("persist document %s: %w", docID, err)
	}
	return stored, nil
}

// enrich calls the LLM under the configured timeout and merges its output
// over the baseline. Any failure — error, timeout, unparsable JSON — leaves
// the baseline untouched.
func (es *ExtractionService) enrich(ctx context.Context, rawText string, base models.WarrantyItem) models.WarrantyItem {
	if es.extractor == nil {
		return base
	}

	ctx, cancel := context.WithTimeout(ctx, es.timeout)
	defer cancel()

	raw, err := es.extractor.StructuredExtract(ctx, rawText)
	if err != nil {
		logger.Warn("LLM enrichment failed; using deterministic baseline", "error", err)
		return base
	}

	var extraction llmExtraction
	if err := json.Unmarshal(raw, &extraction); err != nil {
		logger.Warn("LLM enrichment returned unparsable JSON; using deterministic baseline", "error", err)
		return base
	}

	return mergeItem(base, &extraction)
}

// mergeItem overlays the LLM extraction on the baseline field by field,
// preferring an LLM value only when it is non-null. The field list is
// fixed; the LLM can never erase something the parser found.
func mergeItem(base models.WarrantyItem, llm *llmExtraction) models.WarrantyItem {
	merged := base
	merged.ProductName = coalesce(llm.ProductName, base.ProductName)
	merged.Model = coalesce(llm.Model, base.Model)
	merged.InvoiceNo = coalesce(llm.InvoiceNo, base.InvoiceNo)

	// Model-supplied dates arrive in arbitrary formats. Normalize to ISO
	// before the merge; an unparseable date never clobbers the parser's.
	llmDate := llm.PurchaseDate
	if llmDate != nil {
		llmDate = normalizeDate(*llmDate)
	}
	merged.PurchaseDate = coalesce(llmDate, base.PurchaseDate)
	merged.PurchasePrice = coalesce(llm.PurchasePrice, base.PurchasePrice)
	merged.SellerName = coalesce(llm.SellerName, base.SellerName)
	merged.GSTIN = coalesce(llm.GSTIN, base.GSTIN)
	merged.WarrantyMonths = coalesce(llm.WarrantyMonths, base.WarrantyMonths)
	merged.WarrantyNotes = coalesce(llm.WarrantyNotes, base.WarrantyNotes)
	merged.ExtendedWarrantyPurchased = coalesce(llm.ExtendedWarranty, base.ExtendedWarrantyPurchased)
	if llm.ServiceCenters != nil {
		merged.ServiceCenters = llm.ServiceCenters
	}

	// The warranty window follows whichever purchase date and duration
	// survived the merge.
	if merged.PurchaseDate != base.PurchaseDate || merged.WarrantyMonths != base.WarrantyMonths {
		start, end := ComputeWarrantyWindow(merged.PurchaseDate, merged.WarrantyMonths)
		merged.WarrantyStart = start
		merged.WarrantyEnd = end
	}
	return merged
}

// coalesce returns the first non-nil pointer.
func coalesce[T any](preferred, fallback *T) *T {
	if preferred != nil {
		return preferred
	}
	return fallback
}
