// Package writer exports extraction results as JSON, CSV and XLSX.
package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/insightdelivered/statement-engine/internal/models"
	"github.com/insightdelivered/statement-engine/internal/normalize"
)

// record is one flattened spreadsheet row. dateIso and amountValue carry
// machine-friendly forms of the display fields so downstream tooling does
// not have to reparse Indian date and currency formats.
type record struct {
	Page               int    `csv:"page"`
	Date               string `csv:"date"`
	DateISO            string `csv:"dateIso"`
	Time               string `csv:"time"`
	Type               string `csv:"type"`
	TypeReason         string `csv:"typeReason"`
	Description        string `csv:"description"`
	Amount             string `csv:"amount"`
	AmountValue        string `csv:"amountValue"`
	Currency           string `csv:"currency"`
	Balance            string `csv:"balance"`
	TransactionType    string `csv:"transactionType"`
	Reference          string `csv:"reference"`
	Category           string `csv:"category"`
	Subscription       bool   `csv:"subscription"`
	SubscriptionReason string `csv:"subscriptionReason"`
}

// flatten turns the per-page envelope into one row per transaction.
func flatten(res *models.ExtractionResult) []record {
	records := make([]record, 0, res.Metadata.TotalTransactions)
	for _, page := range res.Transactions {
		for _, t := range page.Transactions {
			records = append(records, record{
				Page:               page.Page,
				Date:               t.Date,
				DateISO:            isoDate(t.Date),
				Time:               t.Time,
				Type:               t.Type,
				TypeReason:         t.TypeReason,
				Description:        description(t),
				Amount:             displayAmount(t),
				AmountValue:        amountValue(t),
				Currency:           t.Currency,
				Balance:            t.Balance,
				TransactionType:    t.TransactionType,
				Reference:          reference(t),
				Category:           t.Category,
				Subscription:       t.Subscription,
				SubscriptionReason: t.SubscriptionReason,
			})
		}
	}
	return records
}

// description prefers the card description, then the account narration,
// then the p2p counterparty.
func description(t models.Transaction) string {
	switch {
	case t.Description != "":
		return t.Description
	case t.Narration != "":
		return t.Narration
	default:
		return t.To
	}
}

// displayAmount is the transaction amount whichever column it landed in.
func displayAmount(t models.Transaction) string {
	switch {
	case t.Amount != "":
		return t.Amount
	case t.Withdrawal != "":
		return t.Withdrawal
	default:
		return t.Deposit
	}
}

func amountValue(t models.Transaction) string {
	d, ok := normalize.AmountValue(displayAmount(t))
	if !ok {
		return ""
	}
	return d.StringFixed(2)
}

func isoDate(s string) string {
	iso, ok := normalize.Date(s)
	if !ok {
		return ""
	}
	return iso
}

func reference(t models.Transaction) string {
	switch {
	case t.TransactionID != "":
		return t.TransactionID
	case t.UTRNumber != "":
		return t.UTRNumber
	default:
		return t.ReferenceNumber
	}
}

// CSVWriter writes one row per transaction. IncludeMetadata prepends
// "#"-commented provenance rows before the column header.
type CSVWriter struct {
	IncludeMetadata bool
}

// WriteToFile writes the result as CSV to the given path.
func (w *CSVWriter) WriteToFile(path string, res *models.ExtractionResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()

	return w.Write(f, res)
}

// Write writes the result as CSV to the given writer.
func (w *CSVWriter) Write(out io.Writer, res *models.ExtractionResult) error {
	cw := csv.NewWriter(out)

	if w.IncludeMetadata {
		meta := [][]string{
			{"# Source", res.SourceFile},
			{"# Extracted", res.Timestamp},
			{"# Format", string(res.Metadata.Format)},
			{"# Method", res.Metadata.ExtractionMethod},
		}
		for _, row := range meta {
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV metadata: %w", err)
			}
		}
	}

	records := flatten(res)
	if err := gocsv.MarshalCSV(&records, gocsv.NewSafeCSVWriter(cw)); err != nil {
		return fmt.Errorf("failed to write CSV rows: %w", err)
	}
	return nil
}
