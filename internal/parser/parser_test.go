package parser

import (
	"testing"

	"github.com/insightdelivered/statement-engine/internal/models"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		text string
		want models.Format
	}{
		{
			name: "detects PhonePe",
			text: "Transaction Statement\nPhonePe Private Limited\nOct 11, 2025",
			want: models.FormatPhonePe,
		},
		{
			name: "detects HDFC account statement",
			text: "HDFC BANK Ltd\nStatement of Account\n01/09/25 UPI-SOMESHOP 1,200.00",
			want: models.FormatHDFCAccount,
		},
		{
			name: "detects HDFC credit card",
			text: "HDFC Bank Credit Card Statement\n12/10/2025",
			want: models.FormatHDFCCredit,
		},
		{
			name: "account wording without dated rows falls through",
			text: "HDFC BANK Ltd\nStatement of Account",
			want: models.FormatBankStatement,
		},
		{
			name: "generic transaction history",
			text: "Your Transaction History\nJan to Mar",
			want: models.FormatBankStatement,
		},
		{
			name: "generic account statement",
			text: "Some Cooperative Bank\nAccount Statement",
			want: models.FormatBankStatement,
		},
		{
			name: "issuer name alone decides nothing",
			text: "HDFC BANK NetBanking\nWelcome",
			want: models.FormatUnknown,
		},
		{
			name: "unrelated text",
			text: "hello world",
			want: models.FormatUnknown,
		},
		{
			name: "phonepe wins over later rules",
			text: "Transaction Statement PhonePe\nHDFC BANK Statement of Account 01/01/25",
			want: models.FormatPhonePe,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Detect(tt.text)
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		format models.Format
		want   models.Format
	}{
		{models.FormatPhonePe, models.FormatPhonePe},
		{models.FormatHDFCAccount, models.FormatHDFCAccount},
		{models.FormatHDFCCredit, models.FormatHDFCCredit},
		// The generic bank-statement tag routes to the card parser, whose
		// anchors cover the widest range of layouts.
		{models.FormatBankStatement, models.FormatHDFCCredit},
		{models.FormatUnknown, models.FormatUnknown},
		{models.Format("bogus"), models.FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			p := New(tt.format)
			if p == nil {
				t.Fatal("got nil parser")
			}
			if p.Format() != tt.want {
				t.Errorf("got %q, want %q", p.Format(), tt.want)
			}
		})
	}
}

func TestNewWithOptions_DefaultType(t *testing.T) {
	p := NewWithOptions(models.FormatHDFCAccount, Options{DefaultType: models.TypeCredit})

	// No classification keyword fires, so the configured fallback applies.
	txns, err := p.ParseLines([]string{
		"03/10/25 UPI-SOMESHOP-COLLECT 800123456789012 1,200.00 14,800.00",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txns) != 1 {
		t.Fatalf("transactions: got %d, want 1", len(txns))
	}
	if txns[0].Type != "CREDIT" {
		t.Errorf("Type: got %q, want %q", txns[0].Type, "CREDIT")
	}
	if txns[0].TypeReason != "default" {
		t.Errorf("TypeReason: got %q, want %q", txns[0].TypeReason, "default")
	}
	if txns[0].Deposit == "" {
		t.Error("Deposit: empty, want amount (credit fallback fills the deposit column)")
	}
}

func TestTableParserSupport(t *testing.T) {
	if _, ok := New(models.FormatHDFCCredit).(TableParser); !ok {
		t.Error("credit parser should consume table rows")
	}
	if _, ok := New(models.FormatHDFCAccount).(TableParser); ok {
		t.Error("account parser should not consume table rows")
	}
	if _, ok := New(models.FormatPhonePe).(TableParser); ok {
		t.Error("phonepe parser should not consume table rows")
	}
}
