// Package normalize cleans the money and date strings that statement PDFs
// produce. Parsers keep transaction fields as display strings; this package
// owns the conversion between those strings and decimal values, and the
// canonical ISO date form used by exports.
package normalize

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const rupee = "₹"

var (
	symbolPattern     = regexp.MustCompile(`[₹$£€\s]`)
	ordinalPattern    = regexp.MustCompile(`(?i)(\d+)(st|nd|rd|th)`)
	multiSpacePattern = regexp.MustCompile(`\s+`)
	septPattern       = regexp.MustCompile(`\bSept\b`)
	nonNumericPattern = regexp.MustCompile(`[^\d.\-]`)
)

// dateLayouts are tried in order. Non-padded day and month tokens accept
// both "5/1/2025" and "05/01/2025" shaped input.
var dateLayouts = []string{
	"2006-01-02",
	"2/1/2006",
	"2-1-2006",
	"2.1.2006",
	"2/1/06",
	"2-1-06",
	"2.1.06",
	"Jan 2, 2006",
	"Jan 2,2006",
	"January 2, 2006",
	"January 2,2006",
	"2 Jan 2006",
	"2 January 2006",
	"2-Jan-2006",
	"2-Jan-06",
	"2/Jan/2006",
	"2/Jan/06",
}

// FormatAmount renders an amount string in the canonical display form:
// rupee symbol, comma-grouped integer part, two decimal places. Input that
// does not clean up to a number is returned unchanged.
func FormatAmount(s string) string {
	if s == "" || s == "N/A" {
		return s
	}
	d, err := ParseAmount(s)
	if err != nil {
		return s
	}
	return rupee + groupThousands(d.StringFixed(2))
}

// ParseAmount strips currency symbols, whitespace and comma grouping and
// parses what remains as a decimal value.
func ParseAmount(s string) (decimal.Decimal, error) {
	cleaned := symbolPattern.ReplaceAllString(s, "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	return decimal.NewFromString(cleaned)
}

// FormatValue renders a decimal as a comma-grouped two-decimal magnitude
// without a currency symbol, e.g. "45,260.00".
func FormatValue(d decimal.Decimal) string {
	return groupThousands(d.StringFixed(2))
}

// FormatDecimal renders a decimal in the canonical rupee display form.
func FormatDecimal(d decimal.Decimal) string {
	return rupee + groupThousands(d.StringFixed(2))
}

// AmountValue extracts a numeric value from free-form amount text, keeping
// only digits, the decimal point and a sign. The boolean reports whether a
// usable number remained. Values are rounded to two decimal places.
func AmountValue(s string) (decimal.Decimal, bool) {
	cleaned := nonNumericPattern.ReplaceAllString(s, "")
	switch cleaned {
	case "", "-", ".", "-.":
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d.Round(2), true
}

// Date normalizes a statement date string to YYYY-MM-DD. Ordinal suffixes
// ("5th") are stripped and the non-standard "Sept" month abbreviation is
// folded to "Sep" before layout matching. The boolean reports success.
func Date(s string) (string, bool) {
	cleaned := ordinalPattern.ReplaceAllString(s, "$1")
	cleaned = multiSpacePattern.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)
	cleaned = septPattern.ReplaceAllString(cleaned, "Sep")
	if cleaned == "" {
		return "", false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}

// groupThousands inserts comma separators into the integer part of a fixed
// two-decimal string such as "45260.00".
func groupThousands(fixed string) string {
	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign = "-"
		fixed = fixed[1:]
	}
	intPart, fracPart, _ := strings.Cut(fixed, ".")
	if len(intPart) > 3 {
		var b strings.Builder
		for i := 0; i < len(intPart); i++ {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				b.WriteByte(',')
			}
			b.WriteByte(intPart[i])
		}
		intPart = b.String()
	}
	return sign + intPart + "." + fracPart
}
