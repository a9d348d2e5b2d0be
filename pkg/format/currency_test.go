package format

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCurrency(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Small amount", "5", "R$ 5,00"},
		{"Thousands", "1234.5", "R$ 1.234,50"},
		{"Millions", "1234567.891", "R$ 1.234.567,89"},
		{"Negative", "-8884.88", "-R$ 8.884,88"},
		{"Negative rounding to zero", "-0.001", "R$ 0,00"},
		{"Zero", "0", "R$ 0,00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Currency(decimal.RequireFromString(tt.input))
			if result != tt.expected {
				t.Errorf("Currency(%s) = %q, expected %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestNumericCurrency(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"100000", "100.000,00"},
		{"-12.345", "-12,35"},
		{"999", "999,00"},
	}

	for _, tt := range tests {
		if result := NumericCurrency(decimal.RequireFromString(tt.input)); result != tt.expected {
			t.Errorf("NumericCurrency(%s) = %q, expected %q", tt.input, result, tt.expected)
		}
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"12", "12,00%"},
		{"6.5", "6,50%"},
		{"12.6825030132", "12,6825%"},
		{"0.902", "0,902%"},
		{"-2", "-2,00%"},
	}

	for _, tt := range tests {
		if result := Percent(decimal.RequireFromString(tt.input)); result != tt.expected {
			t.Errorf("Percent(%s) = %q, expected %q", tt.input, result, tt.expected)
		}
	}
}
