package transport

import (
	"net/http"

	"tabsplit/money"
)

// GetReceiptHandler handles GET /receipts/{receipt_id} and returns the full
// stored state: parsed fields, items, participants, allocation, and any
// computed payments.
func (t *Transport) GetReceiptHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, NewInvalidMethodError(r.Method).Error(), http.StatusMethodNotAllowed)
		return
	}

	receiptID, ok := parseReceiptIDPath(r.URL.Path)
	if !ok {
		validationErr := NewValidationError("path", "expected /receipts/{receipt_id}")
		http.Error(w, validationErr.Error(), http.StatusBadRequest)
		return
	}

	receipt, err := t.persistenceClient.GetReceipt(r.Context(), receiptID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toGetReceiptResponse(receipt))
}

// ListReceiptsHandler handles GET /receipts. An optional ?search= keyword
// filters by merchant name, case-insensitively.
func (t *Transport) ListReceiptsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, NewInvalidMethodError(r.Method).Error(), http.StatusMethodNotAllowed)
		return
	}

	summaries, err := t.persistenceClient.SearchReceipts(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		writeError(w, err)
		return
	}

	response := ListReceiptsResponse{Receipts: make([]ReceiptSummaryResponse, len(summaries))}
	for i, s := range summaries {
		response.Receipts[i] = ReceiptSummaryResponse{
			ReceiptID: s.ID,
			CreatedAt: s.CreatedAt,
			Merchant:  s.Merchant,
			Currency:  s.Currency,
			Subtotal:  money.Ptr(s.Subtotal, s.Currency),
			Tax:       money.Ptr(s.Tax, s.Currency),
			ImageURL:  s.ImageURL,
			SettledAt: s.SettledAt,
		}
	}
	writeJSON(w, http.StatusOK, response)
}
