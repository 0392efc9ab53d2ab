package transport

import (
	"fmt"

	"tabsplit/money"
	"tabsplit/persistence"
	"tabsplit/split"
)

// engineReceipt converts the stored aggregate into the engine's view of the
// bill. Stored item ids are carried verbatim; the engine recomputes the
// authoritative subtotal from the items itself.
func engineReceipt(receipt *persistence.Receipt) split.Receipt {
	items := make([]split.LineItem, len(receipt.Items))
	for i, item := range receipt.Items {
		items[i] = split.LineItem{
			ID:          item.ID,
			Description: item.Description,
			Amount:      item.Amount,
			Shared:      item.IsShared,
		}
	}
	engine := split.Receipt{Items: items, Currency: receipt.Currency}
	if receipt.Subtotal != nil {
		engine.Subtotal = *receipt.Subtotal
	}
	if receipt.Tax != nil {
		engine.Tax = *receipt.Tax
	}
	return engine
}

func participantNames(participants []persistence.Participant) []string {
	names := make([]string, len(participants))
	for i, p := range participants {
		names[i] = p.Name
	}
	return names
}

// engineAllocation groups stored allocation rows into per-item assignments,
// in item print order.
func engineAllocation(receipt *persistence.Receipt) split.Allocation {
	nameByID := make(map[string]string, len(receipt.Participants))
	for _, p := range receipt.Participants {
		nameByID[p.ID] = p.Name
	}

	namesByItem := make(map[string][]string, len(receipt.Allocations))
	for _, row := range receipt.Allocations {
		namesByItem[row.ReceiptItemID] = append(namesByItem[row.ReceiptItemID], nameByID[row.ParticipantID])
	}

	alloc := make(split.Allocation, 0, len(namesByItem))
	for _, item := range receipt.Items {
		if names, ok := namesByItem[item.ID]; ok {
			alloc = append(alloc, split.Assignment{ItemID: item.ID, Participants: names})
		}
	}
	return alloc
}

// allocationEntries resolves an allocation request into stored rows. The
// engine's Validate runs before this, so a miss here means the receipt
// changed underneath the request.
func allocationEntries(receipt *persistence.Receipt, assignments []AssignmentPayload) ([]persistence.AllocationEntry, error) {
	idByName := make(map[string]string, len(receipt.Participants))
	for _, p := range receipt.Participants {
		idByName[p.Name] = p.ID
	}

	entries := make([]persistence.AllocationEntry, 0, len(assignments))
	for _, assignment := range assignments {
		for _, name := range assignment.Participants {
			participantID, ok := idByName[name]
			if !ok {
				return nil, fmt.Errorf("participant %q no longer on receipt", name)
			}
			entries = append(entries, persistence.AllocationEntry{
				ReceiptItemID: assignment.ItemID,
				ParticipantID: participantID,
			})
		}
	}
	return entries, nil
}

func toItemResponses(items []persistence.ReceiptItem, currency *string) []ReceiptItemResponse {
	responses := make([]ReceiptItemResponse, len(items))
	for i, item := range items {
		unitPrice := item.UnitPrice
		responses[i] = ReceiptItemResponse{
			ID:          item.ID,
			Description: item.Description,
			Quantity:    item.Quantity,
			Amount:      money.NewAmount(item.Amount, currency),
			UnitPrice:   money.Ptr(&unitPrice, currency),
			IsShared:    item.IsShared,
		}
	}
	return responses
}

func toParticipantResponses(participants []persistence.Participant) []ParticipantResponse {
	responses := make([]ParticipantResponse, len(participants))
	for i, p := range participants {
		responses[i] = ParticipantResponse{ID: p.ID, Name: p.Name}
	}
	return responses
}

func toAllocationPayloads(receipt *persistence.Receipt) []AssignmentPayload {
	alloc := engineAllocation(receipt)
	payloads := make([]AssignmentPayload, len(alloc))
	for i, assignment := range alloc {
		payloads[i] = AssignmentPayload(assignment)
	}
	return payloads
}

func toPaymentResponses(receipt *persistence.Receipt) []PaymentResponse {
	nameByID := make(map[string]string, len(receipt.Participants))
	for _, p := range receipt.Participants {
		nameByID[p.ID] = p.Name
	}
	responses := make([]PaymentResponse, len(receipt.Payments))
	for i, payment := range receipt.Payments {
		responses[i] = PaymentResponse{
			ParticipantID: payment.ParticipantID,
			Name:          nameByID[payment.ParticipantID],
			Amount:        money.NewAmount(payment.Amount, receipt.Currency),
		}
	}
	return responses
}

// toGetReceiptResponse builds the full receipt view.
func toGetReceiptResponse(receipt *persistence.Receipt) GetReceiptResponse {
	return GetReceiptResponse{
		ReceiptID:     receipt.ID,
		CreatedAt:     receipt.CreatedAt,
		ImageURL:      receipt.ImageURL,
		Merchant:      receipt.Merchant,
		Currency:      receipt.Currency,
		ReceiptDate:   receipt.ReceiptDate,
		Subtotal:      money.Ptr(receipt.Subtotal, receipt.Currency),
		Tax:           money.Ptr(receipt.Tax, receipt.Currency),
		TipAmount:     money.Ptr(receipt.TipAmount, receipt.Currency),
		TipPercentage: receipt.TipPercentage,
		SettledAt:     receipt.SettledAt,
		Items:         toItemResponses(receipt.Items, receipt.Currency),
		Participants:  toParticipantResponses(receipt.Participants),
		Allocation:    toAllocationPayloads(receipt),
		Payments:      toPaymentResponses(receipt),
	}
}

// toSettleResponse pairs the engine's payments with stored participant rows,
// preserving participant order.
func toSettleResponse(receipt *persistence.Receipt, result *split.Settlement, tipPercentage float64) SettleResponse {
	payments := make([]PaymentResponse, len(receipt.Participants))
	for i, p := range receipt.Participants {
		payments[i] = PaymentResponse{
			ParticipantID: p.ID,
			Name:          p.Name,
			Amount:        money.NewAmount(result.Payments[p.Name], receipt.Currency),
		}
	}
	return SettleResponse{
		ReceiptID:       receipt.ID,
		Payments:        payments,
		GrandTotal:      money.NewAmount(result.GrandTotal, receipt.Currency),
		TipPercentage:   tipPercentage,
		OrphanedItemIDs: result.OrphanedItems,
	}
}
