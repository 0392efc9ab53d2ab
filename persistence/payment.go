package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

// Payment is one participant's stored settlement amount. Payments are derived
// data: every settle request deletes and rewrites them from scratch.
type Payment struct {
	ID            string
	ReceiptID     string
	ParticipantID string
	Amount        float64
	CreatedAt     time.Time
}

// NewPayment is a computed amount to persist.
type NewPayment struct {
	ParticipantID string
	Amount        float64
}

// SavePayments replaces the receipt's payments and stamps settled_at.
func (c *Client) SavePayments(ctx context.Context, receiptID string, payments []NewPayment) error {
	tx, err := c.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := receiptExists(ctx, tx, receiptID); err != nil {
		return err
	}

	_, err = tx.Exec(ctx, "DELETE FROM receipt_payments WHERE receipt_id = $1", receiptID)
	if err != nil {
		return fmt.Errorf("failed to clear payments: %w", err)
	}

	for _, payment := range payments {
		_, err := tx.Exec(ctx, `
			INSERT INTO receipt_payments (id, receipt_id, participant_id, amount)
			VALUES ($1, $2, $3, $4)
		`, ulid.Make().String(), receiptID, payment.ParticipantID, payment.Amount)
		if err != nil {
			return fmt.Errorf("failed to insert payment: %w", err)
		}
	}

	_, err = tx.Exec(ctx, "UPDATE receipts SET settled_at = now() WHERE id = $1", receiptID)
	if err != nil {
		return fmt.Errorf("failed to stamp settlement time: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetPayments returns the stored payments for a receipt.
func (c *Client) GetPayments(ctx context.Context, receiptID string) ([]Payment, error) {
	rows, err := c.db.Query(ctx, `
		SELECT p.id, p.receipt_id, p.participant_id, p.amount, p.created_at
		FROM receipt_payments p
		JOIN receipt_participants rp ON rp.id = p.participant_id
		WHERE p.receipt_id = $1
		ORDER BY rp.position ASC
	`, receiptID)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	payments := make([]Payment, 0)
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.ReceiptID, &p.ParticipantID, &p.Amount, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payments: %w", err)
	}
	return payments, nil
}
