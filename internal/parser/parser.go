package parser

import (
	"strings"

	"github.com/insightdelivered/statement-engine/internal/models"
)

// Parser consumes the reconstructed line stream of one extracted page and
// returns the transactions it recognises. Parsers are pure: they never log
// and they skip malformed records instead of failing the page.
type Parser interface {
	ParseLines(lines []string) ([]models.Transaction, error)
	// Format returns the statement dialect this parser handles.
	Format() models.Format
}

// TableParser is implemented by dialects that can additionally consume
// pre-segmented table rows. Callers try rows first and fall back to the
// line stream when the row pass yields nothing.
type TableParser interface {
	ParseRows(rows [][]string) ([]models.Transaction, error)
}

// Options carry the tunables shared by every dialect.
type Options struct {
	// DefaultType is assigned when no classification rule decides whether
	// a record is a debit or a credit.
	DefaultType string
	// HomeCurrency is assumed for records without an explicit currency code.
	HomeCurrency string
}

// DefaultOptions mirror the behaviour of the issuing bank's own statements.
func DefaultOptions() Options {
	return Options{DefaultType: models.TypeDebit, HomeCurrency: "INR"}
}

// New returns the parser for the given statement format with default options.
func New(format models.Format) Parser {
	return NewWithOptions(format, DefaultOptions())
}

// NewWithOptions returns the parser for the given statement format. Unknown
// formats get the generic fallback parser; there is no error path.
func NewWithOptions(format models.Format, opts Options) Parser {
	if opts.DefaultType == "" {
		opts.DefaultType = models.TypeDebit
	}
	if opts.HomeCurrency == "" {
		opts.HomeCurrency = "INR"
	}
	switch format {
	case models.FormatPhonePe:
		return &PhonePeParser{opts: opts}
	case models.FormatHDFCAccount:
		return NewHDFCAccountParser(opts)
	case models.FormatHDFCCredit, models.FormatBankStatement:
		return &HDFCCreditParser{opts: opts}
	default:
		return NewGenericParser(opts)
	}
}

// Detect identifies the statement dialect from document text. Rules run in
// order and the first hit wins. An issuer name alone never decides: each
// rule pairs it with statement wording, so unrecognised layouts fall
// through to the generic tags.
func Detect(text string) models.Format {
	upper := strings.ToUpper(text)
	switch {
	case strings.Contains(upper, "TRANSACTION STATEMENT") && strings.Contains(upper, "PHONEPE"):
		return models.FormatPhonePe
	case strings.Contains(upper, "HDFC BANK") && strings.Contains(upper, "STATEMENT OF ACCOUNT") && dateDDMMYY.MatchString(text):
		return models.FormatHDFCAccount
	case strings.Contains(upper, "HDFC") && strings.Contains(upper, "CREDIT CARD"):
		return models.FormatHDFCCredit
	case containsAny(upper, []string{"STATEMENT", "ACCOUNT STATEMENT", "TRANSACTION HISTORY"}):
		return models.FormatBankStatement
	default:
		return models.FormatUnknown
	}
}
