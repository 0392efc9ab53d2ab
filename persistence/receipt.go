package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
)

// Receipt is the stored aggregate: the parsed bill plus everything the users
// have supplied since (participants, shared tags, allocation, tip, payments).
// Items keep their print order via Position; item ids are assigned once at
// parse time and carried verbatim through the whole flow.
type Receipt struct {
	ID            string
	CreatedAt     time.Time
	ImageURL      *string
	OCRText       *string
	Merchant      *string
	Currency      *string
	ReceiptDate   *string
	Subtotal      *float64
	Tax           *float64
	TipAmount     *float64
	TipPercentage *float64
	SettledAt     *time.Time
	Items         []ReceiptItem
	Participants  []Participant
	Allocations   []ItemAllocation
	Payments      []Payment
}

// ReceiptItem is one stored line item.
type ReceiptItem struct {
	ID          string
	ReceiptID   string
	Position    int
	Description string
	Quantity    int
	Amount      float64
	UnitPrice   float64
	IsShared    bool
}

// GenerateReceiptID returns a new ULID for a receipt whose id is needed
// before its row exists (the image object is named after it).
func GenerateReceiptID() string {
	return ulid.Make().String()
}

// NewReceipt holds the OCR output to persist for a fresh upload. ID may be
// pre-generated with GenerateReceiptID; when empty, SaveReceipt assigns one.
type NewReceipt struct {
	ID          string
	ImageURL    *string
	OCRText     *string
	Merchant    *string
	Currency    *string
	ReceiptDate *string
	Subtotal    *float64
	Tax         *float64
	TipAmount   *float64
	Items       []NewReceiptItem
}

// NewReceiptItem is an item to persist, before it has an id.
type NewReceiptItem struct {
	Description string
	Quantity    int
	Amount      float64
	UnitPrice   float64
}

// ReceiptSummary is a history listing row.
type ReceiptSummary struct {
	ID        string
	CreatedAt time.Time
	Merchant  *string
	Currency  *string
	Subtotal  *float64
	Tax       *float64
	ImageURL  *string
	SettledAt *time.Time
}

// SaveReceipt stores a freshly parsed receipt with its items in one
// transaction and returns the stored aggregate with generated ids.
func (c *Client) SaveReceipt(ctx context.Context, receipt NewReceipt) (*Receipt, error) {
	receiptID := receipt.ID
	if receiptID == "" {
		receiptID = ulid.Make().String()
	}

	tx, err := c.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var createdAt time.Time
	err = tx.QueryRow(ctx, `
		INSERT INTO receipts (id, image_url, ocr_text, merchant, currency, receipt_date, subtotal, tax, tip_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`, receiptID, receipt.ImageURL, receipt.OCRText, receipt.Merchant, receipt.Currency,
		receipt.ReceiptDate, receipt.Subtotal, receipt.Tax, receipt.TipAmount).Scan(&createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert receipt: %w", err)
	}

	items := make([]ReceiptItem, 0, len(receipt.Items))
	for position, item := range receipt.Items {
		itemID := ulid.Make().String()
		quantity := item.Quantity
		if quantity < 1 {
			quantity = 1
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO receipt_items (id, receipt_id, position, description, quantity, amount, unit_price)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, itemID, receiptID, position, item.Description, quantity, item.Amount, item.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("failed to insert receipt item: %w", err)
		}
		items = append(items, ReceiptItem{
			ID:          itemID,
			ReceiptID:   receiptID,
			Position:    position,
			Description: item.Description,
			Quantity:    quantity,
			Amount:      item.Amount,
			UnitPrice:   item.UnitPrice,
		})
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &Receipt{
		ID:          receiptID,
		CreatedAt:   createdAt,
		ImageURL:    receipt.ImageURL,
		OCRText:     receipt.OCRText,
		Merchant:    receipt.Merchant,
		Currency:    receipt.Currency,
		ReceiptDate: receipt.ReceiptDate,
		Subtotal:    receipt.Subtotal,
		Tax:         receipt.Tax,
		TipAmount:   receipt.TipAmount,
		Items:       items,
	}, nil
}

// GetReceipt loads the full aggregate for a receipt id.
func (c *Client) GetReceipt(ctx context.Context, receiptID string) (*Receipt, error) {
	receipt := Receipt{ID: receiptID}
	err := c.db.QueryRow(ctx, `
		SELECT created_at, image_url, ocr_text, merchant, currency, receipt_date,
		       subtotal, tax, tip_amount, tip_percentage, settled_at
		FROM receipts
		WHERE id = $1
	`, receiptID).Scan(&receipt.CreatedAt, &receipt.ImageURL, &receipt.OCRText,
		&receipt.Merchant, &receipt.Currency, &receipt.ReceiptDate,
		&receipt.Subtotal, &receipt.Tax, &receipt.TipAmount,
		&receipt.TipPercentage, &receipt.SettledAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("receipt %s: %w", receiptID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}

	if receipt.Items, err = c.GetReceiptItems(ctx, receiptID); err != nil {
		return nil, err
	}
	if receipt.Participants, err = c.GetParticipants(ctx, receiptID); err != nil {
		return nil, err
	}
	if receipt.Allocations, err = c.GetAllocations(ctx, receiptID); err != nil {
		return nil, err
	}
	if receipt.Payments, err = c.GetPayments(ctx, receiptID); err != nil {
		return nil, err
	}
	return &receipt, nil
}

// GetReceiptItems returns a receipt's items in print order.
func (c *Client) GetReceiptItems(ctx context.Context, receiptID string) ([]ReceiptItem, error) {
	rows, err := c.db.Query(ctx, `
		SELECT id, receipt_id, position, description, quantity, amount, unit_price, is_shared
		FROM receipt_items
		WHERE receipt_id = $1
		ORDER BY position ASC
	`, receiptID)
	if err != nil {
		return nil, fmt.Errorf("failed to query receipt items: %w", err)
	}
	defer rows.Close()

	items := make([]ReceiptItem, 0)
	for rows.Next() {
		var item ReceiptItem
		err := rows.Scan(&item.ID, &item.ReceiptID, &item.Position, &item.Description,
			&item.Quantity, &item.Amount, &item.UnitPrice, &item.IsShared)
		if err != nil {
			return nil, fmt.Errorf("failed to scan receipt item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating receipt items: %w", err)
	}
	return items, nil
}

// SearchReceipts returns recent receipts, optionally filtered by a
// case-insensitive merchant keyword.
func (c *Client) SearchReceipts(ctx context.Context, keyword string) ([]ReceiptSummary, error) {
	query := `
		SELECT id, created_at, merchant, currency, subtotal, tax, image_url, settled_at
		FROM receipts
	`
	args := []any{}
	if keyword != "" {
		query += ` WHERE merchant ILIKE '%' || $1 || '%'`
		args = append(args, keyword)
	}
	query += ` ORDER BY created_at DESC LIMIT 50`

	rows, err := c.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query receipts: %w", err)
	}
	defer rows.Close()

	summaries := make([]ReceiptSummary, 0)
	for rows.Next() {
		var s ReceiptSummary
		err := rows.Scan(&s.ID, &s.CreatedAt, &s.Merchant, &s.Currency, &s.Subtotal,
			&s.Tax, &s.ImageURL, &s.SettledAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan receipt summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating receipts: %w", err)
	}
	return summaries, nil
}

// SetTipPercentage stores the tip percentage for a receipt. Resubmission
// overwrites the previous value.
func (c *Client) SetTipPercentage(ctx context.Context, receiptID string, tipPercentage float64) error {
	result, err := c.db.Exec(ctx,
		"UPDATE receipts SET tip_percentage = $2 WHERE id = $1", receiptID, tipPercentage)
	if err != nil {
		return fmt.Errorf("failed to update tip percentage: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("receipt %s: %w", receiptID, ErrNotFound)
	}
	return nil
}

// receiptExists reports whether the receipt row is present, for operations
// whose statements would otherwise silently affect zero rows.
func receiptExists(ctx context.Context, tx pgx.Tx, receiptID string) error {
	var exists bool
	if err := tx.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM receipts WHERE id = $1)", receiptID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check receipt existence: %w", err)
	}
	if !exists {
		return fmt.Errorf("receipt %s: %w", receiptID, ErrNotFound)
	}
	return nil
}
