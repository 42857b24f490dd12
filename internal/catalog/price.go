package catalog

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// spreadsheet prices come in local notation: "1 234,56", often with
// non-breaking or narrow spaces as group separators
var priceCleaner = strings.NewReplacer(
	" ", "",
	"\u00a0", "",
	"\u202f", "",
	",", ".",
)

// ParsePrice normalizes a price cell to a two-place decimal. An empty cell
// is a zero price.
func ParsePrice(raw string) (decimal.Decimal, error) {
	s := priceCleaner.Replace(strings.TrimSpace(raw))
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, errors.Errorf("invalid price %q", raw)
	}
	return d.Round(2), nil
}
