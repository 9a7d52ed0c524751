package writer

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/insightdelivered/statement-engine/internal/models"
	"github.com/insightdelivered/statement-engine/internal/normalize"
)

var xlsxHeaders = []string{
	"Page", "Date", "Date ISO", "Time", "Type", "Type Reason", "Description",
	"Amount", "Amount Value", "Currency", "Balance", "Scope", "Reference",
	"Category", "Subscription", "Subscription Reason",
}

// XLSXWriter writes a workbook with a Transactions sheet and a Summary
// sheet holding provenance and per-type totals.
type XLSXWriter struct{}

// WriteToFile writes the result as a workbook to the given path.
func (w *XLSXWriter) WriteToFile(path string, res *models.ExtractionResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()

	return w.Write(f, res)
}

// Write writes the result as a workbook to the given writer.
func (w *XLSXWriter) Write(out io.Writer, res *models.ExtractionResult) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Transactions"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to prepare workbook: %w", err)
	}

	for col, h := range xlsxHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("failed to write workbook header: %w", err)
		}
	}

	for i, rec := range flatten(res) {
		values := []interface{}{
			rec.Page, rec.Date, rec.DateISO, rec.Time, rec.Type, rec.TypeReason,
			rec.Description, rec.Amount, numericOrBlank(rec.AmountValue),
			rec.Currency, rec.Balance, rec.TransactionType, rec.Reference,
			rec.Category, rec.Subscription, rec.SubscriptionReason,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("failed to write workbook row %d: %w", i+1, err)
			}
		}
	}

	if err := writeSummary(f, res); err != nil {
		return err
	}

	if err := f.Write(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// numericOrBlank keeps amount cells numeric when they parse so the sheet
// can be summed in place.
func numericOrBlank(s string) interface{} {
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v
	}
	return ""
}

func writeSummary(f *excelize.File, res *models.ExtractionResult) error {
	const sheet = "Summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to add summary sheet: %w", err)
	}

	debits, credits := decimal.Zero, decimal.Zero
	debitCount, creditCount := 0, 0
	for _, page := range res.Transactions {
		for _, t := range page.Transactions {
			d, ok := normalize.AmountValue(displayAmount(t))
			if !ok {
				continue
			}
			switch t.Type {
			case models.TypeDebit:
				debits = debits.Add(d)
				debitCount++
			case models.TypeCredit:
				credits = credits.Add(d)
				creditCount++
			}
		}
	}

	rows := [][]interface{}{
		{"Source File", res.SourceFile},
		{"Extracted At", res.Timestamp},
		{"Format", string(res.Metadata.Format)},
		{"Method", res.Metadata.ExtractionMethod},
		{"Total Transactions", res.Metadata.TotalTransactions},
		{"Debits", debitCount},
		{"Credits", creditCount},
		{"Total Debit Amount", debits.InexactFloat64()},
		{"Total Credit Amount", credits.InexactFloat64()},
	}
	for i, row := range rows {
		for col, v := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+1)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("failed to write summary row %d: %w", i+1, err)
			}
		}
	}
	return nil
}
