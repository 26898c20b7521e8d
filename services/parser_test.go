package services

import (
	"strings"
	"testing"
)

const sampleInvoice = "Invoice No: INV-2024-001\nSony Electronics India\nLaptop Model XPS-15\nPurchase Date: 15/01/2024\nAmount: Rs. 85,000\nWarranty: 12 months"

func strVal(t *testing.T, s *string, field string) string {
	t.Helper()
	if s == nil {
		t.Fatalf("%s is nil", field)
	}
	return *s
}

func TestParseInvoiceTextEndToEnd(t *testing.T) {
	parser := NewParserService()
	items := parser.ParseInvoiceText(sampleInvoice, "user-1")
	if len(items) != 1 {
		t.Fatalf("expected exactly 1 item, got %d", len(items))
	}
	item := items[0]

	if got := strVal(t, item.InvoiceNo, "invoice_no"); got != "INV-2024-001" {
		t.Errorf("invoice_no = %q, want INV-2024-001", got)
	}
	if item.PurchasePrice == nil || *item.PurchasePrice != 85000 {
		t.Errorf("purchase_price = %v, want 85000", item.PurchasePrice)
	}
	if got := strVal(t, item.PurchaseDate, "purchase_date"); got != "2024-01-15" {
		t.Errorf("purchase_date = %q, want 2024-01-15", got)
	}
	if item.WarrantyMonths == nil || *item.WarrantyMonths != 12 {
		t.Errorf("warranty_months = %v, want 12", item.WarrantyMonths)
	}
	if got := strVal(t, item.WarrantyEnd, "warranty_end"); got != "2025-01-15" {
		t.Errorf("warranty_end = %q, want 2025-01-15", got)
	}
	if got := strVal(t, item.ProductName, "product_name"); !strings.Contains(got, "Laptop Model XPS-15") {
		t.Errorf("product_name = %q, want it to contain the laptop line", got)
	}
	if got := strVal(t, item.SellerName, "seller_name"); !strings.Contains(got, "Sony Electronics India") {
		t.Errorf("seller_name = %q, want it to contain the seller line", got)
	}
	if got := strVal(t, item.Model, "model"); got != "XPS-15" {
		t.Errorf("model = %q, want XPS-15", got)
	}
}

func TestParseInvoiceTextDeterministic(t *testing.T) {
	parser := NewParserService()

	first := parser.ParseInvoiceText(sampleInvoice, "user-1")[0]
	second := parser.ParseInvoiceText(sampleInvoice, "user-1")[0]
	if first.ItemID != second.ItemID {
		t.Errorf("re-parse changed itemId: %s vs %s", first.ItemID, second.ItemID)
	}
	if *first.InvoiceNo != *second.InvoiceNo || *first.PurchaseDate != *second.PurchaseDate {
		t.Errorf("re-parse changed extracted fields")
	}

	otherUser := parser.ParseInvoiceText(sampleInvoice, "user-2")[0]
	if otherUser.ItemID == first.ItemID {
		t.Errorf("different users got the same itemId")
	}
}

func TestParseInvoiceTextBlankInput(t *testing.T) {
	parser := NewParserService()
	if items := parser.ParseInvoiceText("   \n\t  ", "user-1"); len(items) != 0 {
		t.Fatalf("blank input should yield no items, got %d", len(items))
	}
}

func TestParseInvoiceTextSparseDocument(t *testing.T) {
	parser := NewParserService()
	items := parser.ParseInvoiceText("Thanks for your purchase.\nHave a nice day.", "user-1")
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	item := items[0]

	if item.InvoiceNo != nil || item.GSTIN != nil || item.PurchasePrice != nil {
		t.Errorf("expected absent fields on a sparse document")
	}
	if item.ProductName != nil {
		t.Errorf("product_name has no fallback, got %q", *item.ProductName)
	}
	// Seller falls back to the first non-empty line.
	if got := strVal(t, item.SellerName, "seller_name"); got != "Thanks for your purchase." {
		t.Errorf("seller fallback = %q", got)
	}
	if item.WarrantyEnd != nil {
		t.Errorf("warranty_end should be nil without purchase date and months")
	}
}

func TestDetectWarrantyMonthsRuleOrder(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"Warranty: 18 months", 18},
		{"Warranty: 6 mos", 6},
		{"Covered for 1 year from purchase", 12},
		{"Covered for 2 years from purchase", 24},
		// The explicit-months rule outranks the textual year rules.
		{"Extended to 36 months (was 1 year)", 36},
	}

	for _, tt := range tests {
		got := detectWarrantyMonths(tt.text)
		if got == nil {
			t.Errorf("detectWarrantyMonths(%q) = nil, want %d", tt.text, tt.want)
			continue
		}
		if *got != tt.want {
			t.Errorf("detectWarrantyMonths(%q) = %d, want %d", tt.text, *got, tt.want)
		}
	}

	if got := detectWarrantyMonths("no duration here"); got != nil {
		t.Errorf("expected nil for text without a duration, got %d", *got)
	}
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"slash D/M/Y", "15/01/2024", "2024-01-15"},
		{"dash D-M-Y", "15-01-2024", "2024-01-15"},
		{"dotted D.M.Y", "15.01.2024", "2024-01-15"},
		{"year first", "2024-01-15", "2024-01-15"},
		{"two digit year", "15/01/24", "2024-01-15"},
		{"verbose month name", "January 15, 2024", "2024-01-15"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeDate(tt.input)
			if got == nil {
				t.Fatalf("normalizeDate(%q) = nil", tt.input)
			}
			if *got != tt.want {
				t.Errorf("normalizeDate(%q) = %q, want %q", tt.input, *got, tt.want)
			}
		})
	}

	if got := normalizeDate("99-99-9999"); got != nil {
		t.Errorf("expected nil for an impossible date, got %q", *got)
	}
	if got := normalizeDate("sometime soon"); got != nil {
		t.Errorf("expected nil for a non-date string, got %q", *got)
	}
}

func TestComputeWarrantyWindow(t *testing.T) {
	date := "2024-01-31"
	months := 1

	start, end := ComputeWarrantyWindow(&date, &months)
	if start == nil || *start != "2024-01-31" {
		t.Errorf("start = %v, want 2024-01-31", start)
	}
	// Native calendar rollover: Jan 31 + 1 month lands in early March.
	if end == nil || *end != "2024-03-02" {
		t.Errorf("end = %v, want 2024-03-02", end)
	}

	start, end = ComputeWarrantyWindow(&date, nil)
	if start == nil || *start != date {
		t.Errorf("start should default to purchase date when months is nil")
	}
	if end != nil {
		t.Errorf("end should be nil when months is nil, got %q", *end)
	}

	start, end = ComputeWarrantyWindow(nil, &months)
	if start != nil || end != nil {
		t.Errorf("both should be nil without a purchase date")
	}
}
