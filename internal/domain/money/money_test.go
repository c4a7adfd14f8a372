package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"zero", "0", "$0.00"},
		{"cents only", "0.5", "$0.50"},
		{"whole dollars", "42", "$42.00"},
		{"thousands", "1234.56", "$1,234.56"},
		{"millions", "1234567.8", "$1,234,567.80"},
		{"negative uses minus glyph", "-1234.56", "−$1,234.56"},
		{"negative small", "-0.01", "−$0.01"},
		{"rounds to cents", "10.005", "$10.01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := decimal.RequireFromString(tt.input)
			if got := FormatCurrency(d); got != tt.expected {
				t.Errorf("FormatCurrency(%s) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"0.15", "15.00%"},
		{"0.4", "40.00%"},
		{"0.125", "12.50%"},
		{"0", "0.00%"},
		{"1", "100.00%"},
	}

	for _, tt := range tests {
		d := decimal.RequireFromString(tt.input)
		if got := FormatPercent(d); got != tt.expected {
			t.Errorf("FormatPercent(%s) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestFormatTierPercent(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"0.4", "40%"},
		{"0.125", "13%"},
		{"0.6", "60%"},
	}

	for _, tt := range tests {
		d := decimal.RequireFromString(tt.input)
		if got := FormatTierPercent(d); got != tt.expected {
			t.Errorf("FormatTierPercent(%s) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestCents(t *testing.T) {
	d := decimal.RequireFromString("10.004999")
	if got := Cents(d).String(); got != "10" {
		t.Errorf("Cents() = %q, want %q", got, "10")
	}
	d = decimal.RequireFromString("10.005")
	if got := Cents(d).String(); got != "10.01" {
		t.Errorf("Cents() = %q, want %q", got, "10.01")
	}
}
