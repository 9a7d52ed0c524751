package parser

import (
	"testing"

	"github.com/insightdelivered/statement-engine/internal/models"
)

func TestClassifyByRules(t *testing.T) {
	rules := []typeRule{
		{name: "interest-credit", keywords: []string{"interest paid"}, txType: models.TypeCredit},
		{name: "outflow-keyword", keywords: []string{"withdrawal", "autopay"}, txType: models.TypeDebit},
		{name: "inflow-keyword", keywords: []string{"received"}, txType: models.TypeCredit},
	}

	tests := []struct {
		text   string
		typ    string
		reason string
	}{
		{"ATM WITHDRAWAL MG ROAD", "DEBIT", "outflow-keyword"},
		{"NEFT RECEIVED FROM ACME", "CREDIT", "inflow-keyword"},
		{"INTEREST PAID VIA AUTOPAY", "CREDIT", "interest-credit"},
		{"UPI-SOMESHOP-ORDER", "DEBIT", "default"},
		{"", "DEBIT", "default"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			typ, reason := classifyByRules(tt.text, rules, models.TypeDebit)
			if typ != tt.typ {
				t.Errorf("type: got %q, want %q", typ, tt.typ)
			}
			if reason != tt.reason {
				t.Errorf("reason: got %q, want %q", reason, tt.reason)
			}
		})
	}
}

func TestDetectScope(t *testing.T) {
	keywords := []string{"INTERNATIONAL", "USD", "FOREX"}

	tests := []struct {
		text     string
		expected string
	}{
		{"FOREX REMITTANCE WIRE", models.ScopeInternational},
		{"PAYMENT USD 12.99", models.ScopeInternational},
		{"UPI-SOMESHOP-ORDER", models.ScopeDomestic},
		{"", models.ScopeDomestic},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := detectScope(tt.text, keywords)
			if got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestContainsAny(t *testing.T) {
	tests := []struct {
		text     string
		needles  []string
		expected bool
	}{
		{"STATEMENT OF ACCOUNT", []string{"STATEMENT"}, true},
		{"STATEMENT OF ACCOUNT", []string{"HISTORY", "ACCOUNT"}, true},
		{"hello world", []string{"STATEMENT"}, false},
		{"anything", nil, false},
	}

	for _, tt := range tests {
		got := containsAny(tt.text, tt.needles)
		if got != tt.expected {
			t.Errorf("containsAny(%q, %v): got %v, want %v", tt.text, tt.needles, got, tt.expected)
		}
	}
}

func TestCollapseSpaces(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"a   b\t c", "a b c"},
		{"  padded  ", "padded"},
		{"single", "single"},
	}

	for _, tt := range tests {
		got := collapseSpaces(tt.input)
		if got != tt.expected {
			t.Errorf("collapseSpaces(%q): got %q, want %q", tt.input, got, tt.expected)
		}
	}
}
