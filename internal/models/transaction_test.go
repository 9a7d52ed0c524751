package models

import "testing"

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"", "", false},
		{"phonepe", FormatPhonePe, false},
		{"PhonePe", FormatPhonePe, false},
		{" phonepe ", FormatPhonePe, false},
		{"hdfc_account", FormatHDFCAccount, false},
		{"account", FormatHDFCAccount, false},
		{"hdfc_account_statement", FormatHDFCAccount, false},
		{"hdfc_credit", FormatHDFCCredit, false},
		{"credit", FormatHDFCCredit, false},
		{"bank_statement", FormatBankStatement, false},
		{"bank", FormatBankStatement, false},
		{"monzo", "", true},
		{"unknown", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseFormat(%q): expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseFormat(%q): unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q): got %q, want %q", tt.input, got, tt.want)
		}
	}
}
