package services

import "regexp"

// RedactionRule pairs a PII pattern with its fixed placeholder.
type RedactionRule struct {
	Name        string
	Pattern     *regexp.Regexp
	Replacement string
}

// redactionRules are applied in order on the full text each pass. Placeholder
// tokens contain no digit runs, so re-running the rules is a no-op.
var redactionRules = []RedactionRule{
	{
		Name:        "email",
		Pattern:     regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
		Replacement: "[EMAIL_REDACTED]",
	},
	{
		Name:        "indian_mobile",
		Pattern:     regexp.MustCompile(`(\+91[- ]?)?[6-9]\d{9}`),
		Replacement: "[PHONE_REDACTED]",
	},
	{
		Name:        "aadhaar",
		Pattern:     regexp.MustCompile(`\b\d{4}\s?\d{4}\s?\d{4}\b`),
		Replacement: "[AADHAAR_REDACTED]",
	},
	{
		Name:        "pan",
		Pattern:     regexp.MustCompile(`\b[A-Z]{5}\d{4}[A-Z]\b`),
		Replacement: "[PAN_REDACTED]",
	},
	{
		Name:        "card",
		Pattern:     regexp.MustCompile(`\b\d{4}[\s-]?\d{4}[\s-]?\d{4}[\s-]?\d{4}\b`),
		Replacement: "[CARD_REDACTED]",
	},
	{
		Name:        "bank_account",
		Pattern:     regexp.MustCompile(`\b\d{12,18}\b`),
		Replacement: "[ACCOUNT_REDACTED]",
	},
}

// RedactPII strips sensitive patterns from text. Pure; must run before any
// text leaves the process for embedding or persistent third-party storage.
func RedactPII(text string) string {
	redacted := text
	for _, rule := range redactionRules {
		redacted = rule.Pattern.ReplaceAllString(redacted, rule.Replacement)
	}
	return redacted
}

// ContainsPII reports whether any redaction rule would fire on the text.
func ContainsPII(text string) bool {
	for _, rule := range redactionRules {
		if rule.Pattern.MatchString(text) {
			return true
		}
	}
	return false
}
