package split_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabsplit/split"
)

func TestSettleSharedAndAllocatedWithTip(t *testing.T) {
	receipt := split.Receipt{
		Items: []split.LineItem{
			{ID: "1", Description: "Nachos", Amount: 10.00, Shared: true},
			{ID: "2", Description: "Steak", Amount: 20.00},
		},
		Subtotal: 30.00,
		Tax:      3.00,
	}
	participants := []string{"Alice", "Bob"}
	alloc := split.Allocation{{ItemID: "2", Participants: []string{"Bob"}}}

	result, err := split.Settle(receipt, participants, alloc, 0.10)
	require.NoError(t, err)

	// Shared split 5.00 each; Bob pre-tax 25.00, Alice 5.00.
	// Pool = 3.00 tax + 33.00 * 0.10 tip = 6.30.
	assert.Equal(t, 6.05, result.Payments["Alice"])
	assert.Equal(t, 30.25, result.Payments["Bob"])
	assert.Equal(t, 36.30, result.GrandTotal)
	assert.Empty(t, result.OrphanedItems)
}

func TestSettleItemSplitBetweenTwoAssignees(t *testing.T) {
	receipt := split.Receipt{
		Items:    []split.LineItem{{ID: "2", Description: "Platter", Amount: 20.00}},
		Subtotal: 20.00,
	}
	alloc := split.Allocation{{ItemID: "2", Participants: []string{"Alice", "Bob"}}}

	result, err := split.Settle(receipt, []string{"Alice", "Bob"}, alloc, 0)
	require.NoError(t, err)

	assert.Equal(t, 10.00, result.Payments["Alice"])
	assert.Equal(t, 10.00, result.Payments["Bob"])
	assert.Equal(t, 20.00, result.GrandTotal)
}

func TestSettleSingleAssigneeGetsFullAmount(t *testing.T) {
	receipt := split.Receipt{
		Items: []split.LineItem{
			{ID: "1", Amount: 12.50},
			{ID: "2", Amount: 7.50},
		},
		Subtotal: 20.00,
	}
	alloc := split.Allocation{
		{ItemID: "1", Participants: []string{"Alice"}},
		{ItemID: "2", Participants: []string{"Bob"}},
	}

	result, err := split.Settle(receipt, []string{"Alice", "Bob"}, alloc, 0)
	require.NoError(t, err)

	assert.Equal(t, 12.50, result.Payments["Alice"])
	assert.Equal(t, 7.50, result.Payments["Bob"])
}

func TestSettleNoTipPoolIsTaxOnly(t *testing.T) {
	receipt := split.Receipt{
		Items: []split.LineItem{
			{ID: "1", Amount: 30.00, Shared: true},
		},
		Subtotal: 30.00,
		Tax:      3.00,
	}

	result, err := split.Settle(receipt, []string{"Alice", "Bob", "Carol"}, nil, 0)
	require.NoError(t, err)

	// 33.00 split three ways: 11.00 each, no tip in the pool.
	assert.Equal(t, 33.00, result.GrandTotal)
	for _, name := range []string{"Alice", "Bob", "Carol"} {
		assert.Equal(t, 11.00, result.Payments[name])
	}
}

func TestSettleResidualGoesToLargestShare(t *testing.T) {
	receipt := split.Receipt{
		Items:    []split.LineItem{{ID: "1", Amount: 10.00, Shared: true}},
		Subtotal: 10.00,
	}
	participants := []string{"Alice", "Bob", "Carol"}

	result, err := split.Settle(receipt, participants, nil, 0)
	require.NoError(t, err)

	// 10.00 / 3 rounds to 3.33 each, leaving one cent. All shares tie, so the
	// first participant absorbs it.
	assert.Equal(t, 3.34, result.Payments["Alice"])
	assert.Equal(t, 3.33, result.Payments["Bob"])
	assert.Equal(t, 3.33, result.Payments["Carol"])
	assert.Equal(t, 10.00, result.GrandTotal)
}

func TestSettleZeroDecimalCurrency(t *testing.T) {
	jpy := "JPY"
	receipt := split.Receipt{
		Items:    []split.LineItem{{ID: "1", Amount: 1000, Shared: true}},
		Subtotal: 1000,
		Currency: &jpy,
	}

	result, err := split.Settle(receipt, []string{"Alice", "Bob", "Carol"}, nil, 0)
	require.NoError(t, err)

	assert.Equal(t, 334.0, result.Payments["Alice"])
	assert.Equal(t, 333.0, result.Payments["Bob"])
	assert.Equal(t, 333.0, result.Payments["Carol"])
	assert.Equal(t, 1000.0, result.GrandTotal)
}

func TestSettleSumInvariant(t *testing.T) {
	receipt := split.Receipt{
		Items: []split.LineItem{
			{ID: "1", Amount: 13.37, Shared: true},
			{ID: "2", Amount: 8.99},
			{ID: "3", Amount: 24.61},
			{ID: "4", Amount: 5.25},
		},
		Subtotal: 52.22,
		Tax:      4.63,
	}
	participants := []string{"Alice", "Bob", "Carol", "Dave"}
	alloc := split.Allocation{
		{ItemID: "2", Participants: []string{"Alice"}},
		{ItemID: "3", Participants: []string{"Bob", "Carol", "Dave"}},
		{ItemID: "4", Participants: []string{"Carol", "Dave"}},
	}

	for _, tip := range []float64{0, 0.10, 0.15, 0.1775, 0.22} {
		result, err := split.Settle(receipt, participants, alloc, tip)
		require.NoError(t, err)

		var sum float64
		for _, amount := range result.Payments {
			sum += amount
		}
		assert.InDelta(t, result.GrandTotal, sum, 1e-9, "tip %v", tip)
		assert.Empty(t, result.OrphanedItems)
	}
}

func TestSettleOrphanedItemExcluded(t *testing.T) {
	receipt := split.Receipt{
		Items: []split.LineItem{
			{ID: "1", Amount: 10.00, Shared: true},
			{ID: "2", Amount: 20.00},
		},
		Subtotal: 30.00,
		Tax:      3.00,
	}

	result, err := split.Settle(receipt, []string{"Alice", "Bob"}, nil, 0)
	require.NoError(t, err)

	// Item 2 was never allocated: its 20.00 and the matching share of the tax
	// pool land on nobody. Each person owes shared 5.00 plus 3.00 * (5/30).
	assert.Equal(t, []string{"2"}, result.OrphanedItems)
	assert.Equal(t, 5.50, result.Payments["Alice"])
	assert.Equal(t, 5.50, result.Payments["Bob"])
	assert.Equal(t, 33.00, result.GrandTotal)
}

func TestSettleZeroSubtotalEveryoneOwesNothing(t *testing.T) {
	receipt := split.Receipt{Tax: 5.00}

	result, err := split.Settle(receipt, []string{"Alice", "Bob"}, nil, 0.20)
	require.NoError(t, err)

	assert.Equal(t, 0.0, result.Payments["Alice"])
	assert.Equal(t, 0.0, result.Payments["Bob"])
}

func TestSettleZeroParticipants(t *testing.T) {
	_, err := split.Settle(testReceipt(), nil, nil, 0.10)

	var ruleErr *split.RuleError
	require.ErrorAs(t, err, &ruleErr)
	assert.Equal(t, split.KindZeroParticipants, ruleErr.Kind)
}

func TestSettleNegativeTip(t *testing.T) {
	_, err := split.Settle(testReceipt(), []string{"Alice"}, nil, -0.05)

	var ruleErr *split.RuleError
	require.ErrorAs(t, err, &ruleErr)
	assert.Equal(t, split.KindNegativeTip, ruleErr.Kind)
}

func TestSettleDuplicateAssigneesCountOnce(t *testing.T) {
	receipt := split.Receipt{
		Items:    []split.LineItem{{ID: "1", Amount: 20.00}},
		Subtotal: 20.00,
	}
	alloc := split.Allocation{{ItemID: "1", Participants: []string{"Alice", "Alice", "Bob"}}}

	result, err := split.Settle(receipt, []string{"Alice", "Bob"}, alloc, 0)
	require.NoError(t, err)

	assert.Equal(t, 10.00, result.Payments["Alice"])
	assert.Equal(t, 10.00, result.Payments["Bob"])
}
