package transport

import (
	"time"

	"tabsplit/money"
)

// ReceiptItemResponse represents a single item in a receipt
type ReceiptItemResponse struct {
	ID          string        `json:"id"`
	Description string        `json:"description"`
	Quantity    int           `json:"quantity"`
	Amount      money.Amount  `json:"amount"`
	UnitPrice   *money.Amount `json:"unit_price,omitempty"`
	IsShared    bool          `json:"is_shared"`
}

// ParticipantResponse represents one diner on a receipt
type ParticipantResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AssignmentPayload maps one item to the participants splitting it. Used in
// both the allocation request and the receipt response.
type AssignmentPayload struct {
	ItemID       string   `json:"item_id"`
	Participants []string `json:"participants"`
}

// PaymentResponse is one participant's computed amount owed
type PaymentResponse struct {
	ParticipantID string       `json:"participant_id"`
	Name          string       `json:"name"`
	Amount        money.Amount `json:"amount"`
}

// UploadReceiptResponse represents the response for receipt image upload
type UploadReceiptResponse struct {
	ReceiptID string                `json:"receipt_id"`
	ImageURL  *string               `json:"image_url,omitempty"`
	Merchant  *string               `json:"merchant,omitempty"`
	Currency  *string               `json:"currency,omitempty"`
	Subtotal  *money.Amount         `json:"subtotal,omitempty"`
	Tax       *money.Amount         `json:"tax,omitempty"`
	Tip       *money.Amount         `json:"tip,omitempty"`
	Items     []ReceiptItemResponse `json:"items"`
	OCRText   *string               `json:"ocr_text,omitempty"`
}

// GetReceiptResponse represents the full receipt state
type GetReceiptResponse struct {
	ReceiptID     string                `json:"receipt_id"`
	CreatedAt     time.Time             `json:"created_at"`
	ImageURL      *string               `json:"image_url,omitempty"`
	Merchant      *string               `json:"merchant,omitempty"`
	Currency      *string               `json:"currency,omitempty"`
	ReceiptDate   *string               `json:"receipt_date,omitempty"`
	Subtotal      *money.Amount         `json:"subtotal,omitempty"`
	Tax           *money.Amount         `json:"tax,omitempty"`
	TipAmount     *money.Amount         `json:"tip_amount,omitempty"`
	TipPercentage *float64              `json:"tip_percentage,omitempty"`
	SettledAt     *time.Time            `json:"settled_at,omitempty"`
	Items         []ReceiptItemResponse `json:"items"`
	Participants  []ParticipantResponse `json:"participants"`
	Allocation    []AssignmentPayload   `json:"allocation"`
	Payments      []PaymentResponse     `json:"payments"`
}

// ReceiptSummaryResponse is one row of the history listing
type ReceiptSummaryResponse struct {
	ReceiptID string        `json:"receipt_id"`
	CreatedAt time.Time     `json:"created_at"`
	Merchant  *string       `json:"merchant,omitempty"`
	Currency  *string       `json:"currency,omitempty"`
	Subtotal  *money.Amount `json:"subtotal,omitempty"`
	Tax       *money.Amount `json:"tax,omitempty"`
	ImageURL  *string       `json:"image_url,omitempty"`
	SettledAt *time.Time    `json:"settled_at,omitempty"`
}

// ListReceiptsResponse represents the history listing
type ListReceiptsResponse struct {
	Receipts []ReceiptSummaryResponse `json:"receipts"`
}

// SetParticipantsRequest represents the request body for setting participants
type SetParticipantsRequest struct {
	Names []string `json:"names"`
}

// SetParticipantsResponse represents the stored participant list
type SetParticipantsResponse struct {
	Participants []ParticipantResponse `json:"participants"`
}

// SetSharedItemsRequest tags the listed items shared and all others unshared
type SetSharedItemsRequest struct {
	ItemIDs []string `json:"item_ids"`
}

// SetAllocationRequest replaces the receipt's item allocation
type SetAllocationRequest struct {
	Assignments []AssignmentPayload `json:"assignments"`
}

// SetAllocationResponse echoes the stored allocation plus orphan warnings
type SetAllocationResponse struct {
	Allocation      []AssignmentPayload `json:"allocation"`
	OrphanedItemIDs []string            `json:"orphaned_item_ids,omitempty"`
}

// SetTipRequest represents the request body for setting the tip percentage
type SetTipRequest struct {
	TipPercentage float64 `json:"tip_percentage"`
}

// SettleRequest optionally overrides the stored tip percentage
type SettleRequest struct {
	TipPercentage *float64 `json:"tip_percentage,omitempty"`
}

// SettleResponse is the computed payment breakdown
type SettleResponse struct {
	ReceiptID       string            `json:"receipt_id"`
	Payments        []PaymentResponse `json:"payments"`
	GrandTotal      money.Amount      `json:"grand_total"`
	TipPercentage   float64           `json:"tip_percentage"`
	OrphanedItemIDs []string          `json:"orphaned_item_ids,omitempty"`
}
