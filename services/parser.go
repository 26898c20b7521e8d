package services

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"safebill-backend/models"
	"safebill-backend/utils"
)

// Field extraction patterns. Each is searched independently over the whole
// text; a miss leaves the corresponding field absent.
var (
	invoiceNoRegex = regexp.MustCompile(`(?i)\binv(?:oice)?(?:\s*(?:no|num|number))?\.?\s*[#:]?\s*([A-Z0-9][A-Z0-9\-/]+)`)
	gstRegex       = regexp.MustCompile(`(?i)\bgstin?\b[\s#:]*([0-9A-Z]{15})`)
	currencyRegex  = regexp.MustCompile(`(?i)(?:₹|rs\.?|inr)\s?([\d,]+(?:\.\d{1,2})?)`)
	modelRegex     = regexp.MustCompile(`(?i)\b(?:model|variant)\b[\s#:]*([A-Z0-9][A-Z0-9\- ]*)`)
	dateRegex      = regexp.MustCompile(`\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4}|\d{4}[/\-.]\d{1,2}[/\-.]\d{1,2}`)

	sellerKeywordRegex  = regexp.MustCompile(`(?i)electronics|store|retail|india|shop`)
	productKeywordRegex = regexp.MustCompile(`(?i)\b(?:tv|laptop|phone|fridge|ac|camera|watch|device)\b`)
)

// monthsRule is one entry in the warranty-duration cascade. Rules are
// evaluated in order; the first hit wins.
type monthsRule struct {
	name    string
	pattern *regexp.Regexp
	resolve func(match []string) (int, bool)
}

var warrantyMonthsRules = []monthsRule{
	{
		name:    "explicit months",
		pattern: regexp.MustCompile(`(?i)(\d+)\s*(?:months?|mos?)\b`),
		resolve: func(match []string) (int, bool) {
			n, err := strconv.Atoi(match[1])
			return n, err == nil
		},
	},
	{
		name:    "one year",
		pattern: regexp.MustCompile(`(?i)1\s*(?:year|yr)\b`),
		resolve: func([]string) (int, bool) { return 12, true },
	},
	{
		name:    "two years",
		pattern: regexp.MustCompile(`(?i)2\s*(?:years|yrs)\b`),
		resolve: func([]string) (int, bool) { return 24, true },
	},
}

// ParserService performs deterministic, regex-driven extraction of warranty
// fields from raw invoice text.
type ParserService struct{}

func NewParserService() *ParserService {
	return &ParserService{}
}

// ParseInvoiceText extracts exactly one warranty item from the text. Fields
// the patterns cannot find stay nil; the item id is a content hash, so the
// same text and user always produce the same id.
func (ps *ParserService) ParseInvoiceText(text, userID string) []models.WarrantyItem {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	purchaseDate := detectPurchaseDate(text)
	warrantyMonths := detectWarrantyMonths(text)
	start, end := ComputeWarrantyWindow(purchaseDate, warrantyMonths)

	item := models.WarrantyItem{
		ItemID:         utils.ItemID(text, userID),
		ProductName:    detectProduct(text),
		Model:          matchGroup(modelRegex, text),
		InvoiceNo:      matchGroup(invoiceNoRegex, text),
		PurchaseDate:   purchaseDate,
		PurchasePrice:  detectPrice(text),
		GSTIN:          matchGroup(gstRegex, text),
		SellerName:     detectSeller(text),
		WarrantyMonths: warrantyMonths,
		WarrantyStart:  start,
		WarrantyEnd:    end,
	}

	return []models.WarrantyItem{item}
}

// ComputeWarrantyWindow derives the warranty start/end dates. With either
// input missing, start defaults to the purchase date (possibly nil) and end
// stays nil. Otherwise end is start advanced by the given calendar months.
func ComputeWarrantyWindow(purchaseDate *string, months *int) (start, end *string) {
	if purchaseDate == nil || months == nil {
		return purchaseDate, nil
	}

	startTime, err := time.Parse(utils.ISODate, *purchaseDate)
	if err != nil {
		return purchaseDate, nil
	}

	endTime := utils.AddMonths(startTime, *months)
	return utils.ToISODate(&startTime), utils.ToISODate(&endTime)
}

func detectPurchaseDate(text string) *string {
	matches := dateRegex.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}
	return normalizeDate(matches[0])
}

// normalizeDate accepts D/M/Y, D-M-Y, Y-M-D and generic parseable strings.
// A 4-digit first segment is year-first; otherwise the triplet is read as
// day-month-year and reversed. The D-M-Y reading is a deliberate domain
// decision for Indian invoices, not a bug to fix.
func normalizeDate(value string) *string {
	cleaned := strings.NewReplacer(".", "-", "/", "-").Replace(value)
	parts := strings.Split(cleaned, "-")

	if len(parts) == 3 {
		var candidate string
		if len(parts[0]) == 4 {
			candidate = parts[0] + "-" + parts[1] + "-" + parts[2]
		} else {
			year := parts[2]
			if len(year) == 2 {
				year = "20" + year
			}
			candidate = year + "-" + parts[1] + "-" + parts[0]
		}
		if t, err := time.Parse("2006-1-2", candidate); err == nil {
			return utils.ToISODate(&t)
		}
		return nil
	}

	t, err := dateparse.ParseAny(value)
	if err != nil {
		return nil
	}
	return utils.ToISODate(&t)
}

func detectWarrantyMonths(text string) *int {
	for _, rule := range warrantyMonthsRules {
		match := rule.pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		if n, ok := rule.resolve(match); ok {
			return &n
		}
	}
	return nil
}

func detectPrice(text string) *float64 {
	match := currencyRegex.FindStringSubmatch(text)
	if match == nil {
		return nil
	}
	sanitized := strings.ReplaceAll(match[1], ",", "")
	price, err := strconv.ParseFloat(sanitized, 64)
	if err != nil {
		return nil
	}
	return &price
}

// detectSeller returns the first line matching a retail keyword, falling
// back to the first non-empty line. The fallback is a heuristic, not an
// error path.
func detectSeller(text string) *string {
	var firstNonEmpty *string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if sellerKeywordRegex.MatchString(line) {
			return &line
		}
		if firstNonEmpty == nil {
			firstNonEmpty = &line
		}
	}
	return firstNonEmpty
}

// detectProduct returns the first line naming a known product category.
// No fallback: documents without one get no product name.
func detectProduct(text string) *string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && productKeywordRegex.MatchString(line) {
			return &line
		}
	}
	return nil
}

func matchGroup(pattern *regexp.Regexp, text string) *string {
	match := pattern.FindStringSubmatch(text)
	if match == nil {
		return nil
	}
	value := strings.TrimSpace(match[1])
	if value == "" {
		return nil
	}
	return &value
}
