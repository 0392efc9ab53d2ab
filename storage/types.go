package storage

// ParsedItem is one line item extracted from a receipt image. Amount is the
// line's total cost with quantity already applied.
type ParsedItem struct {
	Description string
	Quantity    int
	Amount      float64
	UnitPrice   float64
}

// ParsedReceipt is the structured OCR result, whichever provider produced it.
// Optional fields are nil when the provider could not extract them.
type ParsedReceipt struct {
	Text        string
	Merchant    *string
	Currency    *string
	ReceiptDate *string
	Subtotal    *float64
	Tax         *float64
	Tip         *float64
	Total       *float64
	Items       []ParsedItem
}
