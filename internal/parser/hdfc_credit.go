package parser

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-engine/internal/models"
	"github.com/insightdelivered/statement-engine/internal/normalize"
)

// Line-mode date anchors, tried in order. Card exports vary between
// "DD/MM/YYYY | HH:MM", a plain date with optional time, and "DD Mon YYYY".
var (
	creditDatePipeTime = regexp.MustCompile(`^(\d{2}[/\-]\d{2}[/\-]\d{4})\s*\|\s*(\d{2}:\d{2})`)
	creditDateOptTime  = regexp.MustCompile(`^(\d{2}[/\-]\d{2}[/\-]\d{4})\]?\s*(\d{2}:\d{2})?`)
	creditDateMonth    = regexp.MustCompile(`^(\d{2}\s+(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+\d{4})`)
)

// Row-mode date cells must look like one of the line-mode anchors; header
// rows and sub-total rows fail this test.
var creditRowDatePattern = regexp.MustCompile(`^(\d{2}[/\-]\d{2}[/\-]\d{4}|\d{2}\s+(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+\d{4})`)

// Amount shapes, tried in order; the first pattern with any matches claims
// the line. The split-paise form covers extractions that break "1,400.00"
// into "1,400 00".
var creditAmountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[₹$£€]\s*([\d,]+)\s+(\d{2})\b`),
	regexp.MustCompile(`[₹$£€]\s*([\d,]+\.\d{2})`),
	regexp.MustCompile(`[₹$£€]\s*([\d,]+)`),
	regexp.MustCompile(`\b([\d,]+\.\d{2})\b`),
	regexp.MustCompile(`\b(\d{6,})\b`),
}

var (
	creditAmountLine    = regexp.MustCompile(`[₹$£€]|\b[\d,]+\.\d{2}\b|\b\d{6,}\b`)
	creditInlineAmount  = regexp.MustCompile(`([\d,]+\.\d{2})`)
	creditUSDAmount     = regexp.MustCompile(`USD\s*([\d,]+\.?\d*)`)
	creditTimeRemnant   = regexp.MustCompile(`\]?\s*\d{2}:\d{2}`)
	creditTrailingName  = regexp.MustCompile(`\s*\|\s*[A-Z\s]+$`)
	trailingLetter      = regexp.MustCompile(`\s+[A-Za-z]$`)
	currencyCellPattern = regexp.MustCompile(`([A-Z]{3})\s*([\d,]+\.?\d*)`)
	// A table amount cell is nothing but an optionally signed, optionally
	// symbol-prefixed number; foreign-currency cells like "USD 12.99" fail
	// this shape and stay available for the forex scan.
	amountCellPattern = regexp.MustCompile(`^[₹$£€]?\s*-?[\d,]+(?:\.\d{1,2})?$`)
)

// Column headers repeated mid-page by some exports; never description text.
var creditHeaderWords = []string{"DATE", "TIME", "TRANSACTION", "DESCRIPTION", "AMOUNT", "DOMESTIC", "INTERNATIONAL"}

var creditTypeRules = []typeRule{
	{name: "outflow-keyword", keywords: []string{"debit", "withdrawal", "purchase", "payment", "autopay"}, txType: models.TypeDebit},
	{name: "inflow-keyword", keywords: []string{"credit", "deposit", "received", "refund"}, txType: models.TypeCredit},
}

var creditScopeKeywords = []string{"INTERNATIONAL", "FOREIGN", "USD", "EUR", "GBP", "FCY"}

// knownCurrencyCodes gates the foreign-currency cell match so arbitrary
// uppercase triples in descriptions cannot mark a row international.
var knownCurrencyCodes = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "AED": true, "SGD": true,
	"AUD": true, "CAD": true, "JPY": true, "CHF": true,
}

// HDFCCreditParser reads credit-card statements with two strategies. When
// the extractor recovered table rows, each row is validated and read
// directly; otherwise the line strategy anchors on transaction dates and
// looks ahead a bounded number of lines for the description and amounts.
type HDFCCreditParser struct {
	opts Options
}

func (p *HDFCCreditParser) Format() models.Format { return models.FormatHDFCCredit }

// ParseRows reads pre-segmented table rows of the shape
// [date, description, (forex cells...), amount, (trailer)].
func (p *HDFCCreditParser) ParseRows(rows [][]string) ([]models.Transaction, error) {
	txns := make([]models.Transaction, 0)
	for _, row := range rows {
		if tx, ok := p.readRow(row); ok {
			txns = append(txns, tx)
		}
	}
	return txns, nil
}

func (p *HDFCCreditParser) readRow(row []string) (models.Transaction, bool) {
	if len(row) < 3 {
		return models.Transaction{}, false
	}
	cells := make([]string, len(row))
	for i, c := range row {
		cells[i] = collapseSpaces(strings.TrimSpace(c))
	}

	date := strings.TrimSpace(strings.ReplaceAll(cells[0], "null", ""))
	desc := cells[1]
	if date == "" || desc == "" || !creditRowDatePattern.MatchString(date) {
		return models.Transaction{}, false
	}

	// Amount sits in the second-to-last cell, falling back to the last.
	amountIdx := len(cells) - 2
	if amountIdx < 2 {
		amountIdx = len(cells) - 1
	}
	txType, reason, amount, ok := parseAmountCell(cells[amountIdx])
	if !ok && amountIdx != len(cells)-1 {
		amountIdx = len(cells) - 1
		txType, reason, amount, ok = parseAmountCell(cells[amountIdx])
	}
	if !ok {
		return models.Transaction{}, false
	}
	if txType == "" {
		txType, reason = classifyByRules(desc, creditTypeRules, p.opts.DefaultType)
	}

	tx := models.Transaction{
		Date:            date,
		Description:     desc,
		Type:            txType,
		TypeReason:      reason,
		Amount:          normalize.FormatDecimal(amount),
		Currency:        p.opts.HomeCurrency,
		TransactionType: detectScope(desc, creditScopeKeywords),
		RawLine:         strings.Join(cells, " | "),
	}

	// Foreign-currency legs occupy the cells between description and amount.
	for _, cell := range cells[2:amountIdx] {
		m := currencyCellPattern.FindStringSubmatch(cell)
		if m == nil || !knownCurrencyCodes[m[1]] {
			continue
		}
		forex, err := normalize.ParseAmount(m[2])
		if err != nil {
			continue
		}
		tx.ForexCurrency = m[1]
		tx.ForexAmount = normalize.FormatValue(forex)
		tx.Currency = m[1]
		tx.TransactionType = models.ScopeInternational
		// Rate needs a non-zero divisor; zero foreign amounts keep the leg
		// but leave the rate unset.
		if forex.IsPositive() {
			tx.ForexRate, _ = amount.Div(forex).Round(2).Float64()
		}
		break
	}
	return tx, true
}

// ParseLines reads free-form card exports: a date anchor, then up to four
// lines of description until an amount-bearing line (or the next anchor)
// closes the record.
func (p *HDFCCreditParser) ParseLines(lines []string) ([]models.Transaction, error) {
	txns := make([]models.Transaction, 0)
	i := 0
	for i < len(lines) {
		line := strings.TrimSpace(lines[i])
		date, tstamp, rest, ok := matchCreditDate(line)
		if !ok {
			i++
			continue
		}

		consumed := []string{line}
		var descParts []string
		amountLine := ""
		j := i + 1
		for ; j < len(lines) && j < i+5; j++ {
			cand := strings.TrimSpace(lines[j])
			if cand == "" {
				continue
			}
			if _, _, _, nextDate := matchCreditDate(cand); nextDate {
				break
			}
			if creditAmountLine.MatchString(cand) {
				amountLine = cand
				consumed = append(consumed, cand)
				j++
				break
			}
			if !isCreditHeaderLine(cand) {
				descParts = append(descParts, cand)
				consumed = append(consumed, cand)
			}
		}

		if tx, ok := p.readLineRecord(date, tstamp, rest, descParts, amountLine, consumed); ok {
			txns = append(txns, tx)
		}
		i = j
	}
	return txns, nil
}

func (p *HDFCCreditParser) readLineRecord(date, tstamp, rest string, descParts []string, amountLine string, consumed []string) (models.Transaction, bool) {
	desc := ""
	if rest != "" {
		if loc := creditInlineAmount.FindStringIndex(rest); loc != nil {
			desc = trailingLetter.ReplaceAllString(strings.TrimSpace(rest[:loc[0]]), "")
		} else {
			desc = rest
		}
	}
	if len(descParts) > 0 {
		desc = strings.TrimSpace(desc + " " + strings.Join(descParts, " "))
	}
	desc = creditTimeRemnant.ReplaceAllString(desc, "")
	desc = creditTrailingName.ReplaceAllString(desc, "")
	desc = collapseSpaces(desc)

	searchText := amountLine
	if searchText == "" {
		searchText = rest
	}

	amounts := findCreditAmounts(searchText)
	amount, balance := "", ""
	switch {
	case len(amounts) >= 2:
		amount = amounts[len(amounts)-2]
		balance = amounts[len(amounts)-1]
	case len(amounts) == 1:
		amount = amounts[0]
	}

	if desc == "" && amount == "" {
		return models.Transaction{}, false
	}

	txType, reason := classifyByRules(desc, creditTypeRules, p.opts.DefaultType)
	tx := models.Transaction{
		Date:            date,
		Time:            tstamp,
		Description:     desc,
		Type:            txType,
		TypeReason:      reason,
		TransactionType: detectScope(desc+" "+searchText, creditScopeKeywords),
		RawLine:         strings.Join(consumed, " | "),
	}
	if amount != "" {
		tx.Amount = normalize.FormatAmount(amount)
	}
	if balance != "" {
		tx.Balance = normalize.FormatAmount(balance)
	}

	if m := creditUSDAmount.FindStringSubmatch(searchText); m != nil {
		if forex, err := normalize.ParseAmount(m[1]); err == nil {
			tx.ForexCurrency = "USD"
			tx.ForexAmount = normalize.FormatValue(forex)
			tx.Currency = "USD"
			tx.TransactionType = models.ScopeInternational
			if forex.IsPositive() {
				if amtD, err := normalize.ParseAmount(amount); err == nil {
					tx.ForexRate, _ = amtD.Div(forex).Round(2).Float64()
				}
			}
		}
	}
	return tx, true
}

// matchCreditDate tries the line-mode anchors in order and returns the
// date, the time when the layout carries one, and the rest of the line.
func matchCreditDate(line string) (date, tstamp, rest string, ok bool) {
	if m := creditDatePipeTime.FindStringSubmatch(line); m != nil {
		return m[1], m[2], strings.TrimSpace(line[len(m[0]):]), true
	}
	if m := creditDateMonth.FindStringSubmatch(line); m != nil {
		return m[1], "", strings.TrimSpace(line[len(m[0]):]), true
	}
	if m := creditDateOptTime.FindStringSubmatch(line); m != nil {
		return m[1], m[2], strings.TrimSpace(line[len(m[0]):]), true
	}
	return "", "", "", false
}

func isCreditHeaderLine(line string) bool {
	return containsAny(strings.ToUpper(line), creditHeaderWords)
}

// findCreditAmounts returns every amount matched by the first amount shape
// that occurs in the text, normalising split-paise pairs back together.
func findCreditAmounts(text string) []string {
	for _, pattern := range creditAmountPatterns {
		matches := pattern.FindAllStringSubmatch(text, -1)
		if len(matches) == 0 {
			continue
		}
		amounts := make([]string, 0, len(matches))
		for _, m := range matches {
			if len(m) > 2 && m[2] != "" {
				amounts = append(amounts, m[1]+"."+m[2])
			} else {
				amounts = append(amounts, m[1])
			}
		}
		return amounts
	}
	return nil
}

// parseAmountCell strips a Cr/Dr marker from a table amount cell and
// validates the remainder as a non-negative decimal.
func parseAmountCell(cell string) (txType, reason string, amount decimal.Decimal, ok bool) {
	cleaned := cell
	switch {
	case strings.Contains(cleaned, "Cr"):
		txType, reason = models.TypeCredit, "suffix-cr"
		cleaned = strings.ReplaceAll(cleaned, "Cr", "")
	case strings.Contains(cleaned, "Dr"):
		txType, reason = models.TypeDebit, "suffix-dr"
		cleaned = strings.ReplaceAll(cleaned, "Dr", "")
	}
	cleaned = strings.TrimSpace(cleaned)
	if !amountCellPattern.MatchString(cleaned) {
		return "", "", decimal.Decimal{}, false
	}
	d, err := normalize.ParseAmount(cleaned)
	if err != nil || d.IsNegative() {
		return "", "", decimal.Decimal{}, false
	}
	return txType, reason, d, true
}
