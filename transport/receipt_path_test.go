package transport

import "testing"

func TestParseReceiptIDPath(t *testing.T) {
	tests := []struct {
		path   string
		wantID string
		wantOK bool
	}{
		{"/receipts/01ABC", "01ABC", true},
		{"/receipts/01ABC/", "01ABC", true},
		{"/receipts/", "", false},
		{"/receipts", "", false},
		{"/receipts/01ABC/settle", "", false},
		{"/other/01ABC", "", false},
	}
	for _, tt := range tests {
		gotID, gotOK := parseReceiptIDPath(tt.path)
		if gotID != tt.wantID || gotOK != tt.wantOK {
			t.Errorf("parseReceiptIDPath(%q) = (%q, %v), want (%q, %v)",
				tt.path, gotID, gotOK, tt.wantID, tt.wantOK)
		}
	}
}

func TestParseReceiptActionPath(t *testing.T) {
	tests := []struct {
		path   string
		action string
		wantID string
		wantOK bool
	}{
		{"/receipts/01ABC/settle", "settle", "01ABC", true},
		{"/receipts/01ABC/tip", "tip", "01ABC", true},
		{"/receipts/01ABC/settle", "tip", "", false},
		{"/receipts/01ABC", "settle", "", false},
		{"/receipts//settle", "settle", "", false},
	}
	for _, tt := range tests {
		gotID, gotOK := parseReceiptActionPath(tt.path, tt.action)
		if gotID != tt.wantID || gotOK != tt.wantOK {
			t.Errorf("parseReceiptActionPath(%q, %q) = (%q, %v), want (%q, %v)",
				tt.path, tt.action, gotID, gotOK, tt.wantID, tt.wantOK)
		}
	}
}
