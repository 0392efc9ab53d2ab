package transport

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// SetSharedItemsResponse returns the item list after retagging
type SetSharedItemsResponse struct {
	Items []ReceiptItemResponse `json:"items"`
}

// SetSharedItemsHandler handles PUT /receipts/{receipt_id}/shared-items.
// The listed items become shared, every other item on the receipt becomes
// unshared.
func (t *Transport) SetSharedItemsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, NewInvalidMethodError(r.Method).Error(), http.StatusMethodNotAllowed)
		return
	}

	receiptID, ok := parseReceiptActionPath(r.URL.Path, "shared-items")
	if !ok {
		validationErr := NewValidationError("path", "expected /receipts/{receipt_id}/shared-items")
		http.Error(w, validationErr.Error(), http.StatusBadRequest)
		return
	}

	var request SetSharedItemsRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		validationErr := NewValidationError("body", fmt.Sprintf("invalid JSON: %v", err))
		http.Error(w, validationErr.Error(), http.StatusBadRequest)
		return
	}

	receipt, err := t.persistenceClient.GetReceipt(r.Context(), receiptID)
	if err != nil {
		writeError(w, err)
		return
	}

	known := make(map[string]bool, len(receipt.Items))
	for _, item := range receipt.Items {
		known[item.ID] = true
	}
	for _, itemID := range request.ItemIDs {
		if !known[itemID] {
			validationErr := NewValidationError("item_ids", fmt.Sprintf("item %s is not on this receipt", itemID))
			http.Error(w, validationErr.Error(), http.StatusBadRequest)
			return
		}
	}

	if err := t.persistenceClient.SetSharedItems(r.Context(), receiptID, request.ItemIDs); err != nil {
		writeError(w, err)
		return
	}

	items, err := t.persistenceClient.GetReceiptItems(r.Context(), receiptID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SetSharedItemsResponse{
		Items: toItemResponses(items, receipt.Currency),
	})
}
