package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabsplit/persistence"
	"tabsplit/split"
)

func storedReceipt() *persistence.Receipt {
	usd := "USD"
	subtotal := 30.0
	tax := 2.40
	return &persistence.Receipt{
		ID:       "r1",
		Currency: &usd,
		Subtotal: &subtotal,
		Tax:      &tax,
		Items: []persistence.ReceiptItem{
			{ID: "i1", Position: 0, Description: "Calamari", Amount: 10.00, IsShared: true},
			{ID: "i2", Position: 1, Description: "Burger", Amount: 20.00},
		},
		Participants: []persistence.Participant{
			{ID: "p1", Position: 0, Name: "Alice"},
			{ID: "p2", Position: 1, Name: "Bob"},
		},
		Allocations: []persistence.ItemAllocation{
			{ID: "a1", ReceiptItemID: "i2", ParticipantID: "p1"},
			{ID: "a2", ReceiptItemID: "i2", ParticipantID: "p2"},
		},
	}
}

func TestEngineReceipt(t *testing.T) {
	engine := engineReceipt(storedReceipt())

	assert.Equal(t, 30.0, engine.Subtotal)
	assert.Equal(t, 2.40, engine.Tax)
	require.Len(t, engine.Items, 2)
	assert.True(t, engine.Items[0].Shared)
	assert.Equal(t, "i2", engine.Items[1].ID)
	assert.Equal(t, 20.00, engine.Items[1].Amount)
}

func TestEngineAllocationGroupsByItem(t *testing.T) {
	alloc := engineAllocation(storedReceipt())

	require.Len(t, alloc, 1)
	assert.Equal(t, "i2", alloc[0].ItemID)
	assert.Equal(t, []string{"Alice", "Bob"}, alloc[0].Participants)
}

func TestEngineAllocationFollowsItemOrder(t *testing.T) {
	receipt := storedReceipt()
	receipt.Items[1].IsShared = false
	receipt.Allocations = []persistence.ItemAllocation{
		{ID: "a1", ReceiptItemID: "i2", ParticipantID: "p2"},
		{ID: "a2", ReceiptItemID: "i1", ParticipantID: "p1"},
	}
	receipt.Items[0].IsShared = false

	alloc := engineAllocation(receipt)

	require.Len(t, alloc, 2)
	assert.Equal(t, "i1", alloc[0].ItemID)
	assert.Equal(t, "i2", alloc[1].ItemID)
}

func TestAllocationEntriesResolvesNames(t *testing.T) {
	receipt := storedReceipt()
	entries, err := allocationEntries(receipt, []AssignmentPayload{
		{ItemID: "i2", Participants: []string{"Bob", "Alice"}},
	})

	require.NoError(t, err)
	assert.Equal(t, []persistence.AllocationEntry{
		{ReceiptItemID: "i2", ParticipantID: "p2"},
		{ReceiptItemID: "i2", ParticipantID: "p1"},
	}, entries)
}

func TestAllocationEntriesUnknownName(t *testing.T) {
	receipt := storedReceipt()
	_, err := allocationEntries(receipt, []AssignmentPayload{
		{ItemID: "i2", Participants: []string{"Mallory"}},
	})

	assert.Error(t, err)
}

func TestToSettleResponseKeepsParticipantOrder(t *testing.T) {
	receipt := storedReceipt()
	result := &split.Settlement{
		Payments:   map[string]float64{"Alice": 16.20, "Bob": 16.20},
		GrandTotal: 32.40,
	}

	response := toSettleResponse(receipt, result, 0.0)

	require.Len(t, response.Payments, 2)
	assert.Equal(t, "p1", response.Payments[0].ParticipantID)
	assert.Equal(t, "Alice", response.Payments[0].Name)
	assert.Equal(t, "p2", response.Payments[1].ParticipantID)
	assert.Equal(t, 32.40, response.GrandTotal.Value)
}
