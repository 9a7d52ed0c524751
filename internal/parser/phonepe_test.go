package parser

import (
	"testing"

	"github.com/insightdelivered/statement-engine/internal/models"
)

func TestPhonePeParser_Parse(t *testing.T) {
	p := New(models.FormatPhonePe)

	lines := []string{
		"Oct 11, 2025",
		"14:30",
		"DEBIT ₹1,000.00 Paid to Merchant Name",
		"Transaction ID TXN123456",
		"UTR No. UTR789012",
		"Paid by UPI",
	}

	txns, err := p.ParseLines(lines)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txns) != 1 {
		t.Fatalf("transactions: got %d, want 1", len(txns))
	}

	txn := txns[0]
	if txn.Date != "Oct 11, 2025" {
		t.Errorf("Date: got %q, want %q", txn.Date, "Oct 11, 2025")
	}
	if txn.Time != "14:30" {
		t.Errorf("Time: got %q, want %q", txn.Time, "14:30")
	}
	if txn.Type != "DEBIT" {
		t.Errorf("Type: got %q, want %q", txn.Type, "DEBIT")
	}
	if txn.Amount != "₹1,000.00" {
		t.Errorf("Amount: got %q, want %q", txn.Amount, "₹1,000.00")
	}
	if txn.To != "Merchant Name" {
		t.Errorf("To: got %q, want %q", txn.To, "Merchant Name")
	}
	if txn.TransactionID != "TXN123456" {
		t.Errorf("TransactionID: got %q, want %q", txn.TransactionID, "TXN123456")
	}
	if txn.UTRNumber != "UTR789012" {
		t.Errorf("UTRNumber: got %q, want %q", txn.UTRNumber, "UTR789012")
	}
	if txn.PaidBy != "UPI" {
		t.Errorf("PaidBy: got %q, want %q", txn.PaidBy, "UPI")
	}
}

func TestPhonePeParser_InlineDetail(t *testing.T) {
	p := New(models.FormatPhonePe)

	// Some exports glue the type, amount and counterparty to the date line.
	lines := []string{
		"Oct 5, 2025 Paid to Coffee House DEBIT ₹240.50",
		"8:45 am",
		"Transaction ID TX99",
		"UTR No. U12345",
	}

	txns, err := p.ParseLines(lines)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txns) != 1 {
		t.Fatalf("transactions: got %d, want 1", len(txns))
	}

	txn := txns[0]
	if txn.Date != "Oct 5, 2025" {
		t.Errorf("Date: got %q, want %q", txn.Date, "Oct 5, 2025")
	}
	if txn.Time != "8:45 am" {
		t.Errorf("Time: got %q, want %q", txn.Time, "8:45 am")
	}
	if txn.Type != "DEBIT" {
		t.Errorf("Type: got %q, want %q", txn.Type, "DEBIT")
	}
	if txn.Amount != "₹240.50" {
		t.Errorf("Amount: got %q, want %q", txn.Amount, "₹240.50")
	}
	if txn.To != "Coffee House" {
		t.Errorf("To: got %q, want %q", txn.To, "Coffee House")
	}
	if txn.TransactionID != "TX99" {
		t.Errorf("TransactionID: got %q, want %q", txn.TransactionID, "TX99")
	}
	if txn.UTRNumber != "U12345" {
		t.Errorf("UTRNumber: got %q, want %q", txn.UTRNumber, "U12345")
	}
}

func TestPhonePeParser_CreditReceived(t *testing.T) {
	p := New(models.FormatPhonePe)

	lines := []string{
		"Sep 2, 2025",
		"11:05 AM",
		"CREDIT ₹2,000 Received from Ravi Kumar",
		"Transaction ID TID77",
	}

	txns, err := p.ParseLines(lines)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txns) != 1 {
		t.Fatalf("transactions: got %d, want 1", len(txns))
	}

	txn := txns[0]
	if txn.Type != "CREDIT" {
		t.Errorf("Type: got %q, want %q", txn.Type, "CREDIT")
	}
	if txn.Amount != "₹2,000.00" {
		t.Errorf("Amount: got %q, want %q", txn.Amount, "₹2,000.00")
	}
	if txn.To != "Ravi Kumar" {
		t.Errorf("To: got %q, want %q", txn.To, "Ravi Kumar")
	}
	if txn.TransactionID != "TID77" {
		t.Errorf("TransactionID: got %q, want %q", txn.TransactionID, "TID77")
	}
}

func TestPhonePeParser_DropAndResume(t *testing.T) {
	p := New(models.FormatPhonePe)

	// The first block is corrupted after the time line; it must be dropped
	// without desynchronising the block that follows.
	lines := []string{
		"Oct 11, 2025",
		"14:30",
		"garbage line without type",
		"Oct 12, 2025",
		"09:15",
		"CREDIT ₹500.00 Received from Alice",
		"Transaction ID T2",
	}

	txns, err := p.ParseLines(lines)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txns) != 1 {
		t.Fatalf("transactions: got %d, want 1", len(txns))
	}
	if txns[0].Date != "Oct 12, 2025" {
		t.Errorf("Date: got %q, want %q", txns[0].Date, "Oct 12, 2025")
	}
	if txns[0].To != "Alice" {
		t.Errorf("To: got %q, want %q", txns[0].To, "Alice")
	}
}

func TestPhonePeParser_DateAfterPartialBlock(t *testing.T) {
	p := New(models.FormatPhonePe)

	// A new date directly after a bare date must start a fresh record; the
	// failing line is re-examined, not skipped.
	lines := []string{
		"Oct 11, 2025",
		"Oct 12, 2025",
		"10:00",
		"DEBIT ₹50.00 Paid to Bob",
	}

	txns, err := p.ParseLines(lines)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txns) != 1 {
		t.Fatalf("transactions: got %d, want 1", len(txns))
	}
	if txns[0].Date != "Oct 12, 2025" {
		t.Errorf("Date: got %q, want %q", txns[0].Date, "Oct 12, 2025")
	}
}

func TestPhonePeParser_OptionalTrailingFields(t *testing.T) {
	p := New(models.FormatPhonePe)

	// No transaction id, UTR or instrument lines: still a valid record.
	lines := []string{
		"Oct 20, 2025",
		"18:02",
		"DEBIT ₹320.00 Payment to Grocery Store",
		"some unrelated footer",
	}

	txns, err := p.ParseLines(lines)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txns) != 1 {
		t.Fatalf("transactions: got %d, want 1", len(txns))
	}

	txn := txns[0]
	if txn.To != "Grocery Store" {
		t.Errorf("To: got %q, want %q", txn.To, "Grocery Store")
	}
	if txn.TransactionID != "" {
		t.Errorf("TransactionID: got %q, want empty", txn.TransactionID)
	}
	if txn.UTRNumber != "" {
		t.Errorf("UTRNumber: got %q, want empty", txn.UTRNumber)
	}
}

func TestPhonePeParser_IncompleteDropped(t *testing.T) {
	p := New(models.FormatPhonePe)

	// Date and time alone never form a record.
	lines := []string{
		"Oct 11, 2025",
		"14:30",
	}

	txns, err := p.ParseLines(lines)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txns) != 0 {
		t.Fatalf("transactions: got %d, want 0", len(txns))
	}
}

func TestPhonePeParser_RechargeKeepsDetail(t *testing.T) {
	p := New(models.FormatPhonePe)

	lines := []string{
		"Oct 7, 2025 Mobile recharged ₹199.00 DEBIT",
		"12:00",
	}

	txns, err := p.ParseLines(lines)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txns) != 1 {
		t.Fatalf("transactions: got %d, want 1", len(txns))
	}
	if txns[0].To != "Mobile recharged" {
		t.Errorf("To: got %q, want %q (recharge detail should be kept whole)", txns[0].To, "Mobile recharged")
	}
	if txns[0].Amount != "₹199.00" {
		t.Errorf("Amount: got %q, want %q", txns[0].Amount, "₹199.00")
	}
}

func TestPhonePeParser_UnknownTypeWithoutMarker(t *testing.T) {
	p := New(models.FormatPhonePe)

	lines := []string{
		"Nov 1, 2025 Wallet topup ₹75.00",
		"07:30",
	}

	txns, err := p.ParseLines(lines)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txns) != 1 {
		t.Fatalf("transactions: got %d, want 1", len(txns))
	}
	if txns[0].Type != "UNKNOWN" {
		t.Errorf("Type: got %q, want %q", txns[0].Type, "UNKNOWN")
	}
	if txns[0].Amount != "₹75.00" {
		t.Errorf("Amount: got %q, want %q", txns[0].Amount, "₹75.00")
	}
}

func TestPhonePeParser_MultipleBlocks(t *testing.T) {
	p := New(models.FormatPhonePe)

	lines := []string{
		"Oct 11, 2025",
		"14:30",
		"DEBIT ₹1,000.00 Paid to Merchant One",
		"Transaction ID A1",
		"UTR No. U1",
		"Paid by UPI",
		"Oct 12, 2025",
		"09:00",
		"CREDIT ₹250.00 Received from Merchant Two",
		"Transaction ID A2",
	}

	txns, err := p.ParseLines(lines)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txns) != 2 {
		t.Fatalf("transactions: got %d, want 2", len(txns))
	}
	if txns[0].To != "Merchant One" || txns[1].To != "Merchant Two" {
		t.Errorf("counterparties: got %q and %q", txns[0].To, txns[1].To)
	}
	if txns[1].Type != "CREDIT" {
		t.Errorf("txn[1].Type: got %q, want %q", txns[1].Type, "CREDIT")
	}
}
