package parser

import (
	"regexp"
	"strings"

	"github.com/insightdelivered/statement-engine/internal/models"
)

// Patterns shared across dialects.
var (
	// DD/MM/YY, the deposit-account anchor date form.
	dateDDMMYY = regexp.MustCompile(`\d{2}/\d{2}/\d{2}`)
	// Amounts with a mandatory two-decimal paise part, e.g. "45,260.00".
	decimalAmountPattern = regexp.MustCompile(`[\d,]+\.\d{2}`)
	// Bank reference numbers: long digit runs, leading zeros allowed.
	referencePattern = regexp.MustCompile(`\b(0\d{12,}|\d{12,})\b`)
)

func containsAny(text string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(text, needle) {
			return true
		}
	}
	return false
}

// typeRule is one ordered debit/credit classification rule: if any of its
// keywords occurs in the lowercased narration the rule's type applies.
// Earlier rules shadow later ones.
type typeRule struct {
	name     string
	keywords []string
	txType   string
}

// classifyByRules walks the rule list in order and returns the transaction
// type together with the name of the rule that decided it. When nothing
// matches, the fallback type is returned with reason "default".
func classifyByRules(text string, rules []typeRule, fallback string) (txType, reason string) {
	lower := strings.ToLower(text)
	for _, rule := range rules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.txType, rule.name
			}
		}
	}
	return fallback, "default"
}

// detectScope returns INTERNATIONAL when any of the dialect's foreign-market
// keywords occurs in the uppercased text, DOMESTIC otherwise.
func detectScope(text string, keywords []string) string {
	upper := strings.ToUpper(text)
	for _, kw := range keywords {
		if strings.Contains(upper, kw) {
			return models.ScopeInternational
		}
	}
	return models.ScopeDomestic
}

// collapseSpaces squeezes runs of whitespace down to single spaces.
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
