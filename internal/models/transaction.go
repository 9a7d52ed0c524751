package models

import (
	"fmt"
	"strings"
)

// Transaction is a single statement record. Parsers populate the subset of
// fields their dialect carries; everything else stays empty and is omitted
// from the JSON envelope. Monetary fields hold display strings with the
// currency symbol retained (e.g. "₹1,400.00"), not parsed numbers.
type Transaction struct {
	Date        string `json:"date,omitempty"`
	Time        string `json:"time,omitempty"`
	Type        string `json:"type,omitempty"`       // DEBIT, CREDIT or UNKNOWN
	TypeReason  string `json:"typeReason,omitempty"` // which rule decided Type
	Amount      string `json:"amount,omitempty"`
	Currency    string `json:"currency,omitempty"`
	Description string `json:"description,omitempty"`
	Narration   string `json:"narration,omitempty"`

	// Peer-to-peer transfer fields.
	To            string `json:"to,omitempty"`
	PaidBy        string `json:"paidBy,omitempty"`
	TransactionID string `json:"transactionId,omitempty"`
	UTRNumber     string `json:"utrNo,omitempty"`

	// Deposit-account fields.
	ReferenceNumber string `json:"refNo,omitempty"`
	ValueDate       string `json:"valueDate,omitempty"`
	Withdrawal      string `json:"withdrawal,omitempty"`
	Deposit         string `json:"deposit,omitempty"`
	Balance         string `json:"balance,omitempty"`

	// Card fields.
	TransactionType string  `json:"transactionType,omitempty"` // DOMESTIC or INTERNATIONAL
	ForexAmount     string  `json:"forexAmount,omitempty"`
	ForexCurrency   string  `json:"forexCurrency,omitempty"`
	ForexRate       float64 `json:"forexRate,omitempty"`

	// Enrichment, set by the classifier when enabled.
	Category           string `json:"category,omitempty"`
	Subscription       bool   `json:"subscription,omitempty"`
	SubscriptionReason string `json:"subscriptionReason,omitempty"`

	RawLine string `json:"rawLine,omitempty"`
}

// Transaction type values.
const (
	TypeDebit   = "DEBIT"
	TypeCredit  = "CREDIT"
	TypeUnknown = "UNKNOWN"
)

// Transaction scope values.
const (
	ScopeDomestic      = "DOMESTIC"
	ScopeInternational = "INTERNATIONAL"
)

// Format identifies a supported statement dialect.
type Format string

const (
	FormatPhonePe       Format = "phonepe"
	FormatHDFCAccount   Format = "hdfc_account_statement"
	FormatHDFCCredit    Format = "hdfc_credit_statement"
	FormatBankStatement Format = "bank_statement"
	FormatUnknown       Format = "unknown"
)

// ParseFormat maps a user-supplied dialect name to its Format tag. The
// empty string means autodetect and maps to the empty Format.
func ParseFormat(v string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "":
		return "", nil
	case "phonepe":
		return FormatPhonePe, nil
	case "hdfc_account", "hdfc_account_statement", "account":
		return FormatHDFCAccount, nil
	case "hdfc_credit", "hdfc_credit_statement", "credit":
		return FormatHDFCCredit, nil
	case "bank_statement", "bank":
		return FormatBankStatement, nil
	default:
		return "", fmt.Errorf("unknown format %q; use phonepe, hdfc_account, hdfc_credit or bank_statement", v)
	}
}

// Page is one extracted document page. Text carries the reconstructed line
// layout; Rows carries pre-segmented table cells when the extractor could
// recover column structure, and is nil otherwise.
type Page struct {
	Number int
	Text   string
	Rows   [][]string
}

// Document is the extraction engine's input: an ordered set of pages plus
// provenance for the result envelope.
type Document struct {
	SourceFile string
	Method     string // how the text was recovered, e.g. "text-layout"
	Pages      []Page
}

// PageResult groups the transactions recovered from a single page together
// with that page's raw text for downstream debugging.
type PageResult struct {
	Page         int           `json:"page"`
	Transactions []Transaction `json:"transactions"`
	RawText      string        `json:"rawText"`
}

// Metadata summarises one extraction run.
type Metadata struct {
	TotalTransactions int    `json:"totalTransactions"`
	ExtractionMethod  string `json:"extractionMethod"`
	Format            Format `json:"format"`
	ExtractionID      string `json:"extractionId,omitempty"`
}

// ExtractionResult is the full result envelope for one document.
type ExtractionResult struct {
	SourceFile   string       `json:"sourceFile"`
	Timestamp    string       `json:"timestamp"`
	Transactions []PageResult `json:"transactions"`
	Metadata     Metadata     `json:"metadata"`
}
