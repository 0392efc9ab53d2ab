package persistence

import (
	"context"
	"fmt"

	"github.com/oklog/ulid/v2"
)

// Participant is one diner on a receipt. Position preserves the order the
// names were submitted in; settlement tie-breaks depend on it.
type Participant struct {
	ID        string
	ReceiptID string
	Position  int
	Name      string
}

// SetParticipants replaces the participant list for a receipt. The overwrite
// cascades: allocations and payments reference participant rows, so
// resubmitting names resets the later steps of the flow (last write wins).
func (c *Client) SetParticipants(ctx context.Context, receiptID string, names []string) ([]Participant, error) {
	tx, err := c.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := receiptExists(ctx, tx, receiptID); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, "DELETE FROM receipt_participants WHERE receipt_id = $1", receiptID)
	if err != nil {
		return nil, fmt.Errorf("failed to clear participants: %w", err)
	}

	participants := make([]Participant, 0, len(names))
	for position, name := range names {
		participantID := ulid.Make().String()
		_, err := tx.Exec(ctx, `
			INSERT INTO receipt_participants (id, receipt_id, position, name)
			VALUES ($1, $2, $3, $4)
		`, participantID, receiptID, position, name)
		if err != nil {
			return nil, fmt.Errorf("failed to insert participant: %w", err)
		}
		participants = append(participants, Participant{
			ID:        participantID,
			ReceiptID: receiptID,
			Position:  position,
			Name:      name,
		})
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return participants, nil
}

// GetParticipants returns a receipt's participants in submission order.
func (c *Client) GetParticipants(ctx context.Context, receiptID string) ([]Participant, error) {
	rows, err := c.db.Query(ctx, `
		SELECT id, receipt_id, position, name
		FROM receipt_participants
		WHERE receipt_id = $1
		ORDER BY position ASC
	`, receiptID)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants: %w", err)
	}
	defer rows.Close()

	participants := make([]Participant, 0)
	for rows.Next() {
		var p Participant
		if err := rows.Scan(&p.ID, &p.ReceiptID, &p.Position, &p.Name); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating participants: %w", err)
	}
	return participants, nil
}
