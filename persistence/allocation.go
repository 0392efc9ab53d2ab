package persistence

import (
	"context"
	"fmt"

	"github.com/oklog/ulid/v2"
)

// ItemAllocation assigns one item to one participant. An item split three
// ways is three rows.
type ItemAllocation struct {
	ID            string
	ReceiptItemID string
	ParticipantID string
}

// SetSharedItems marks the given items shared and all the receipt's other
// items unshared, in one transaction. Items that just became shared lose any
// individual allocation rows; shared cost is split by the even-split rule
// only.
func (c *Client) SetSharedItems(ctx context.Context, receiptID string, itemIDs []string) error {
	tx, err := c.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := receiptExists(ctx, tx, receiptID); err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		UPDATE receipt_items
		SET is_shared = (id = ANY($2))
		WHERE receipt_id = $1
	`, receiptID, itemIDs)
	if err != nil {
		return fmt.Errorf("failed to update shared flags: %w", err)
	}

	_, err = tx.Exec(ctx, `
		DELETE FROM item_allocations a
		USING receipt_items i
		WHERE a.receipt_item_id = i.id AND i.receipt_id = $1 AND i.is_shared
	`, receiptID)
	if err != nil {
		return fmt.Errorf("failed to clear allocations of shared items: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// AllocationEntry is one item-to-participant pair to store.
type AllocationEntry struct {
	ReceiptItemID string
	ParticipantID string
}

// SetAllocation replaces the receipt's entire allocation (last write wins,
// never additive).
func (c *Client) SetAllocation(ctx context.Context, receiptID string, entries []AllocationEntry) error {
	tx, err := c.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := receiptExists(ctx, tx, receiptID); err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		DELETE FROM item_allocations a
		USING receipt_items i
		WHERE a.receipt_item_id = i.id AND i.receipt_id = $1
	`, receiptID)
	if err != nil {
		return fmt.Errorf("failed to clear allocations: %w", err)
	}

	for _, entry := range entries {
		_, err := tx.Exec(ctx, `
			INSERT INTO item_allocations (id, receipt_item_id, participant_id)
			VALUES ($1, $2, $3)
		`, ulid.Make().String(), entry.ReceiptItemID, entry.ParticipantID)
		if err != nil {
			return fmt.Errorf("failed to insert allocation: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetAllocations returns all allocation rows for a receipt.
func (c *Client) GetAllocations(ctx context.Context, receiptID string) ([]ItemAllocation, error) {
	rows, err := c.db.Query(ctx, `
		SELECT a.id, a.receipt_item_id, a.participant_id
		FROM item_allocations a
		JOIN receipt_items i ON i.id = a.receipt_item_id
		WHERE i.receipt_id = $1
		ORDER BY i.position ASC, a.id ASC
	`, receiptID)
	if err != nil {
		return nil, fmt.Errorf("failed to query allocations: %w", err)
	}
	defer rows.Close()

	allocations := make([]ItemAllocation, 0)
	for rows.Next() {
		var a ItemAllocation
		if err := rows.Scan(&a.ID, &a.ReceiptItemID, &a.ParticipantID); err != nil {
			return nil, fmt.Errorf("failed to scan allocation: %w", err)
		}
		allocations = append(allocations, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating allocations: %w", err)
	}
	return allocations, nil
}
