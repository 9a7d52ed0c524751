package parser

import (
	"testing"

	"github.com/insightdelivered/statement-engine/internal/models"
)

func TestGenericParser_Parse(t *testing.T) {
	p := New(models.FormatUnknown)

	lines := []string{
		"05/10/25 CASH DEPOSIT BRANCH 100123456789012 3,000.00 12,000.00",
		"random page furniture",
		"06/10/25 ATM WITHDRAWAL 200123456789012 500.00 11,500.00",
	}

	txns, err := p.ParseLines(lines)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txns) != 2 {
		t.Fatalf("transactions: got %d, want 2", len(txns))
	}
	if txns[0].Type != "CREDIT" {
		t.Errorf("txn[0].Type: got %q, want %q", txns[0].Type, "CREDIT")
	}
	if txns[1].Type != "DEBIT" {
		t.Errorf("txn[1].Type: got %q, want %q", txns[1].Type, "DEBIT")
	}
}

func TestGenericParser_NoInterestOverride(t *testing.T) {
	// The interest wording is specific to the deposit-account dialect; the
	// generic heuristics must not inherit it.
	line := "30/09/25 INTEREST PAID TILL DATE 500123456789012 500.00 8,000.00"

	generic, err := New(models.FormatUnknown).ParseLines([]string{line})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	account, err := New(models.FormatHDFCAccount).ParseLines([]string{line})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(generic) != 1 || len(account) != 1 {
		t.Fatalf("transactions: got %d generic, %d account, want 1 each", len(generic), len(account))
	}
	if generic[0].Type != "DEBIT" || generic[0].TypeReason != "default" {
		t.Errorf("generic: got %s/%s, want DEBIT/default", generic[0].Type, generic[0].TypeReason)
	}
	if account[0].Type != "CREDIT" || account[0].TypeReason != "interest-credit" {
		t.Errorf("account: got %s/%s, want CREDIT/interest-credit", account[0].Type, account[0].TypeReason)
	}
}

func TestGenericParser_EmptyInput(t *testing.T) {
	p := New(models.FormatUnknown)

	txns, err := p.ParseLines(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txns) != 0 {
		t.Fatalf("transactions: got %d, want 0", len(txns))
	}
}
