package matching

import (
	"regexp"
	"strings"
)

// DefaultNoiseFilters are the substrings stripped from raw bank strings
// before matching. They cover the boilerplate Danish banks prepend to card
// and transfer postings.
var DefaultNoiseFilters = []string{
	"dankort-nota",
	"visa/dankort",
	"mobilepay",
	"betalingsservice",
	"pos payment",
	"card purchase",
	"nota",
}

var (
	cardSuffixPattern = regexp.MustCompile(`\*+\s?\d{2,4}`)
	referencePattern  = regexp.MustCompile(`\b\d{5,}\b`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Normalize reduces a raw source string to a best-effort matching key:
// lowercased, configured noise substrings removed, card suffixes and long
// reference numbers stripped, whitespace collapsed. The key is a matching
// aid only and is never stored. Idempotent: normalizing a normalized
// string is a no-op.
func Normalize(raw string, filters []string) string {
	s := strings.ToLower(strings.TrimSpace(raw))

	for _, f := range filters {
		s = strings.ReplaceAll(s, strings.ToLower(f), " ")
	}

	s = cardSuffixPattern.ReplaceAllString(s, " ")
	s = referencePattern.ReplaceAllString(s, " ")
	s = whitespacePattern.ReplaceAllString(s, " ")

	return strings.TrimSpace(s)
}
