package parser

import (
	"github.com/insightdelivered/statement-engine/internal/models"
)

// GenericParser handles statements whose dialect could not be identified.
// It reuses the deposit-account heuristics minus the interest override,
// which is statement wording specific to that dialect. It never fails: a
// page with no recognisable rows simply yields no transactions.
type GenericParser struct {
	account *HDFCAccountParser
}

func NewGenericParser(opts Options) *GenericParser {
	return &GenericParser{account: &HDFCAccountParser{opts: opts, rules: accountTypeRules[1:]}}
}

func (g *GenericParser) Format() models.Format { return models.FormatUnknown }

func (g *GenericParser) ParseLines(lines []string) ([]models.Transaction, error) {
	return g.account.parse(lines), nil
}
