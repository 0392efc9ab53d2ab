package storage

import "testing"

func TestMoneyFromText(t *testing.T) {
	tests := []struct {
		text   string
		want   float64
		wantOK bool
	}{
		{"$12.95", 12.95, true},
		{"12.95", 12.95, true},
		{"1,234.56", 1234.56, true},
		{"USD 7", 7, true},
		{"", 0, false},
		{"no digits here", 0, false},
	}
	for _, tt := range tests {
		got, ok := moneyFromText(tt.text)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("moneyFromText(%q) = (%v, %v), want (%v, %v)", tt.text, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"2", 2},
		{"2.0", 2},
		{"1.5", 2},
		{"0.5", 1},
		{"", 1},
		{"x", 1},
	}
	for _, tt := range tests {
		if got := parseQuantity(tt.text); got != tt.want {
			t.Errorf("parseQuantity(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}
