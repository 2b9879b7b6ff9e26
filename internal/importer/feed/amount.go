package feed

import (
	"strings"

	"github.com/shopspring/decimal"
)

// parseAmountCents parses a feed amount string into signed cents. Both
// Danish/European formatting ("1.234,56") and plain decimal ("1234.56")
// appear in the wild, disambiguated by the presence of a comma.
func parseAmountCents(s string) (int64, error) {
	clean := strings.TrimSpace(s)

	if strings.Contains(clean, ",") {
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, err
	}

	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart(), nil
}
