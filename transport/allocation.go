package transport

import (
	"encoding/json"
	"fmt"
	"net/http"

	"tabsplit/split"
)

// SetAllocationHandler handles PUT /receipts/{receipt_id}/allocation. The
// submitted assignments replace the stored allocation wholesale. The
// settlement rules run first, so a rejected allocation leaves the stored one
// untouched; items left unassigned are stored anyway and reported back as
// orphaned.
func (t *Transport) SetAllocationHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, NewInvalidMethodError(r.Method).Error(), http.StatusMethodNotAllowed)
		return
	}

	receiptID, ok := parseReceiptActionPath(r.URL.Path, "allocation")
	if !ok {
		validationErr := NewValidationError("path", "expected /receipts/{receipt_id}/allocation")
		http.Error(w, validationErr.Error(), http.StatusBadRequest)
		return
	}

	var request SetAllocationRequest
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

	alloc := make(split.Allocation, len(request.Assignments))
	for i, assignment := range request.Assignments {
		alloc[i] = split.Assignment(assignment)
	}

	orphaned, err := split.Validate(engineReceipt(receipt), participantNames(receipt.Participants), alloc)
	if err != nil {
		writeError(w, err)
		return
	}

	entries, err := allocationEntries(receipt, request.Assignments)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := t.persistenceClient.SetAllocation(r.Context(), receiptID, entries); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SetAllocationResponse{
		Allocation:      request.Assignments,
		OrphanedItemIDs: orphaned,
	})
}
