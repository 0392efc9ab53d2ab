package transport

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// SetParticipantsHandler handles PUT /receipts/{receipt_id}/participants.
// The submitted list replaces the previous one entirely; dropping a
// participant also drops their allocations via the store's cascade.
func (t *Transport) SetParticipantsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, NewInvalidMethodError(r.Method).Error(), http.StatusMethodNotAllowed)
		return
	}

	receiptID, ok := parseReceiptActionPath(r.URL.Path, "participants")
	if !ok {
		validationErr := NewValidationError("path", "expected /receipts/{receipt_id}/participants")
		http.Error(w, validationErr.Error(), http.StatusBadRequest)
		return
	}

	var request SetParticipantsRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		validationErr := NewValidationError("body", fmt.Sprintf("invalid JSON: %v", err))
		http.Error(w, validationErr.Error(), http.StatusBadRequest)
		return
	}

	names := make([]string, 0, len(request.Names))
	seen := make(map[string]bool, len(request.Names))
	for _, name := range request.Names {
		name = strings.TrimSpace(name)
		if name == "" {
			validationErr := NewValidationError("names", "participant names must be non-empty")
			http.Error(w, validationErr.Error(), http.StatusBadRequest)
			return
		}
		if seen[name] {
			validationErr := NewValidationError("names", fmt.Sprintf("duplicate participant name: %s", name))
			http.Error(w, validationErr.Error(), http.StatusBadRequest)
			return
		}
		seen[name] = true
		names = append(names, name)
	}
	if len(names) == 0 {
		validationErr := NewValidationError("names", "at least one participant is required")
		http.Error(w, validationErr.Error(), http.StatusBadRequest)
		return
	}

	participants, err := t.persistenceClient.SetParticipants(r.Context(), receiptID, names)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SetParticipantsResponse{
		Participants: toParticipantResponses(participants),
	})
}
