package model

import (
	"testing"
)

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		name  string
		input int64
		want  string
	}{
		{"whole dollars", 3500, "$35.00"},
		{"with cents", 12345, "$123.45"},
		{"zero", 0, "$0.00"},
		{"single cent", 1, "$0.01"},
		{"large value", 123456789, "$1234567.89"},
		{"negative", -1250, "-$12.50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatPrice(tt.input)
			if got != tt.want {
				t.Errorf("FormatPrice(%d) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseCents(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int64
	}{
		{"whole number", "99.00", 9900},
		{"with cents", "123.45", 12345},
		{"zero", "0.00", 0},
		{"empty string", "", 0},
		{"large value", "1234567.89", 123456789},
		{"no decimals", "100", 10000},
		{"one decimal", "99.9", 9990},
		{"small value", "0.01", 1},
		{"rounds half up", "0.005", 1},
		{"invalid string", "abc", 0},
		{"negative (unusual)", "-10.00", -1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseCents(tt.input)
			if got != tt.want {
				t.Errorf("ParseCents(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}
