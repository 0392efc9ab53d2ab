package transport

import "strings"

// pathParts returns the URL path split by "/" with leading/trailing slashes trimmed
func pathParts(path string) []string {
	return strings.Split(strings.Trim(path, "/"), "/")
}

// parseReceiptIDPath expects path like /receipts/{receipt_id}
// Returns receiptID and true if valid, empty string and false otherwise
func parseReceiptIDPath(path string) (receiptID string, ok bool) {
	parts := pathParts(path)
	if len(parts) != 2 || parts[0] != "receipts" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// parseReceiptActionPath expects path like /receipts/{receipt_id}/{action},
// e.g. /receipts/01H.../settle. Returns receiptID and true if the action
// segment matches.
func parseReceiptActionPath(path, action string) (receiptID string, ok bool) {
	parts := pathParts(path)
	if len(parts) != 3 || parts[0] != "receipts" || parts[1] == "" || parts[2] != action {
		return "", false
	}
	return parts[1], true
}
