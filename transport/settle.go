package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"tabsplit/persistence"
	"tabsplit/split"
)

// SetTipResponse echoes the stored tip percentage
type SetTipResponse struct {
	TipPercentage float64 `json:"tip_percentage"`
}

// SetTipHandler handles PUT /receipts/{receipt_id}/tip. The percentage is a
// fraction (0.18 for 18%) and resubmission overwrites the previous value.
func (t *Transport) SetTipHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, NewInvalidMethodError(r.Method).Error(), http.StatusMethodNotAllowed)
		return
	}

	receiptID, ok := parseReceiptActionPath(r.URL.Path, "tip")
	if !ok {
		validationErr := NewValidationError("path", "expected /receipts/{receipt_id}/tip")
		http.Error(w, validationErr.Error(), http.StatusBadRequest)
		return
	}

	var request SetTipRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		validationErr := NewValidationError("body", fmt.Sprintf("invalid JSON: %v", err))
		http.Error(w, validationErr.Error(), http.StatusBadRequest)
		return
	}
	if request.TipPercentage < 0 {
		validationErr := NewValidationError("tip_percentage", "must be non-negative")
		http.Error(w, validationErr.Error(), http.StatusBadRequest)
		return
	}

	if err := t.persistenceClient.SetTipPercentage(r.Context(), receiptID, request.TipPercentage); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SetTipResponse{TipPercentage: request.TipPercentage})
}

// SettleHandler handles POST /receipts/{receipt_id}/settle. It runs the
// settlement engine over the stored state, persists the computed payments, and
// returns the breakdown. The body may override the stored tip percentage; one
// of the two must be present. Settling again recomputes from scratch.
func (t *Transport) SettleHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, NewInvalidMethodError(r.Method).Error(), http.StatusMethodNotAllowed)
		return
	}

	receiptID, ok := parseReceiptActionPath(r.URL.Path, "settle")
	if !ok {
		validationErr := NewValidationError("path", "expected /receipts/{receipt_id}/settle")
		http.Error(w, validationErr.Error(), http.StatusBadRequest)
		return
	}

	var request SettleRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil && !errors.Is(err, io.EOF) {
		validationErr := NewValidationError("body", fmt.Sprintf("invalid JSON: %v", err))
		http.Error(w, validationErr.Error(), http.StatusBadRequest)
		return
	}

	receipt, err := t.persistenceClient.GetReceipt(r.Context(), receiptID)
	if err != nil {
		writeError(w, err)
		return
	}

	tipPercentage, err := resolveTipPercentage(receipt, request.TipPercentage)
	if err != nil {
		validationErr := NewValidationError("tip_percentage", err.Error())
		http.Error(w, validationErr.Error(), http.StatusBadRequest)
		return
	}

	names := participantNames(receipt.Participants)
	alloc := engineAllocation(receipt)
	engine := engineReceipt(receipt)

	result, err := split.Settle(engine, names, alloc, tipPercentage)
	if err != nil {
		writeError(w, err)
		return
	}

	if request.TipPercentage != nil {
		if err := t.persistenceClient.SetTipPercentage(r.Context(), receiptID, tipPercentage); err != nil {
			writeError(w, err)
			return
		}
	}

	payments := make([]persistence.NewPayment, len(receipt.Participants))
	for i, p := range receipt.Participants {
		payments[i] = persistence.NewPayment{
			ParticipantID: p.ID,
			Amount:        result.Payments[p.Name],
		}
	}
	if err := t.persistenceClient.SavePayments(r.Context(), receiptID, payments); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toSettleResponse(receipt, result, tipPercentage))
}

// resolveTipPercentage picks the request override when present, otherwise the
// stored value. Settling with neither is an error rather than an implied 0%.
func resolveTipPercentage(receipt *persistence.Receipt, override *float64) (float64, error) {
	if override != nil {
		if *override < 0 {
			return 0, errors.New("must be non-negative")
		}
		return *override, nil
	}
	if receipt.TipPercentage == nil {
		return 0, errors.New("no tip percentage set; supply one in the request body or via /tip")
	}
	return *receipt.TipPercentage, nil
}
