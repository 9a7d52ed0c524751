package parser

import (
	"regexp"
	"strings"

	"github.com/insightdelivered/statement-engine/internal/models"
	"github.com/insightdelivered/statement-engine/internal/normalize"
)

// Deposit-account rows anchor on a DD/MM/YY date at the start of the line.
var accountAnchorPattern = regexp.MustCompile(`^(\d{2}/\d{2}/\d{2})\s+(.+)`)

// accountTypeRules decide debit vs credit for deposit-account rows. Order
// matters: the interest override must win over the outflow keywords because
// interest narrations routinely contain both ("INTEREST PAID ... AUTOPAY").
var accountTypeRules = []typeRule{
	{name: "interest-credit", keywords: []string{"interest paid", "interest credit"}, txType: models.TypeCredit},
	{name: "outflow-keyword", keywords: []string{"withdrawal", "ach d-", "autopay", "payment to"}, txType: models.TypeDebit},
	{name: "inflow-keyword", keywords: []string{"received", "deposit", "credit"}, txType: models.TypeCredit},
}

var accountScopeKeywords = []string{"INTERNATIONAL", "FOREIGN", "USD", "EUR", "GBP", "FOREX"}

// Page furniture that must never join a narration.
var narrationSkipMarkers = []string{"Page No", "--", "STATEMENT SUMMARY", "Generated On", "Generated By"}

var pageOfPattern = regexp.MustCompile(`^\d+ of \d+`)

func isNarrationSkipLine(line string) bool {
	return containsAny(line, narrationSkipMarkers) || pageOfPattern.MatchString(line)
}

// isSummaryNarration spots closing-summary rows that made it past the date
// anchor; those records are dropped whole.
func isSummaryNarration(narration string) bool {
	return containsAny(narration, []string{"STATEMENT SUMMARY", "Opening Balance", "Generated On"})
}

// HDFCAccountParser reads deposit-account statements: dated rows carrying a
// narration, an optional reference number and value date, withdrawal or
// deposit amount, and a running balance as the last number on the row.
// Undated follow-on lines extend the narration of the row above.
type HDFCAccountParser struct {
	opts  Options
	rules []typeRule
}

func NewHDFCAccountParser(opts Options) *HDFCAccountParser {
	return &HDFCAccountParser{opts: opts, rules: accountTypeRules}
}

func (p *HDFCAccountParser) Format() models.Format { return models.FormatHDFCAccount }

func (p *HDFCAccountParser) ParseLines(lines []string) ([]models.Transaction, error) {
	return p.parse(lines), nil
}

func (p *HDFCAccountParser) parse(lines []string) []models.Transaction {
	txns := make([]models.Transaction, 0)
	for i := 0; i < len(lines); i++ {
		m := accountAnchorPattern.FindStringSubmatch(strings.TrimSpace(lines[i]))
		if m == nil {
			continue
		}
		if tx, ok := p.readRecord(m[1], m[2], lines, i); ok {
			txns = append(txns, tx)
		}
	}
	return txns
}

// readRecord builds one transaction from an anchored row. All numeric fields
// come from the anchor line itself; continuation lines only ever extend the
// narration text.
func (p *HDFCAccountParser) readRecord(date, rest string, lines []string, i int) (models.Transaction, bool) {
	numbers := decimalAmountPattern.FindAllString(rest, -1)
	if len(numbers) == 0 {
		// No running balance, so this dated line is not a ledger row.
		return models.Transaction{}, false
	}
	balance := numbers[len(numbers)-1]
	amounts := numbers[:len(numbers)-1]

	head := rest
	if idx := strings.LastIndex(rest, balance); idx >= 0 {
		head = rest[:idx]
	}

	refNo := ""
	narration := strings.TrimSpace(head)
	if loc := referencePattern.FindStringIndex(head); loc != nil {
		refNo = head[loc[0]:loc[1]]
		narration = strings.TrimSpace(head[:loc[0]])
	}
	valueDate := dateDDMMYY.FindString(head)

	full := narration
	for j := i + 1; j < len(lines); j++ {
		cont := strings.TrimSpace(lines[j])
		if cont == "" || accountAnchorPattern.MatchString(cont) {
			break
		}
		if isNarrationSkipLine(cont) {
			continue
		}
		full += " " + cont
	}
	full = strings.TrimSpace(full)

	if full == "" || isSummaryNarration(full) {
		return models.Transaction{}, false
	}

	tx := models.Transaction{
		Date:            date,
		Narration:       full,
		Description:     full,
		ReferenceNumber: refNo,
		ValueDate:       valueDate,
		Balance:         normalize.FormatAmount(balance),
		TransactionType: detectScope(full, accountScopeKeywords),
	}

	if len(amounts) == 0 {
		// Balance-only rows (brought-forward markers) keep the balance but
		// cannot be classified.
		tx.Type = models.TypeUnknown
		tx.TypeReason = "no-amount"
		return tx, true
	}

	amount := amounts[len(amounts)-1]
	tx.Type, tx.TypeReason = classifyByRules(full, p.rules, p.opts.DefaultType)
	if tx.Type == models.TypeCredit {
		tx.Deposit = normalize.FormatAmount(amount)
	} else {
		tx.Withdrawal = normalize.FormatAmount(amount)
	}
	return tx, true
}
