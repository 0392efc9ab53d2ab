package split_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabsplit/split"
)

func testReceipt() split.Receipt {
	return split.Receipt{
		Items: []split.LineItem{
			{ID: "item-1", Description: "Calamari", Amount: 10.00, Shared: true},
			{ID: "item-2", Description: "Burger", Amount: 20.00},
			{ID: "item-3", Description: "Pasta", Amount: 15.00},
		},
		Subtotal: 45.00,
		Tax:      4.50,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name         string
		participants []string
		alloc        split.Allocation
		wantKind     split.Kind
		wantRef      string
		wantOrphans  []string
	}{
		{
			name:         "valid full allocation",
			participants: []string{"Alice", "Bob"},
			alloc: split.Allocation{
				{ItemID: "item-2", Participants: []string{"Bob"}},
				{ItemID: "item-3", Participants: []string{"Alice", "Bob"}},
			},
		},
		{
			name:         "empty participant set",
			participants: nil,
			alloc:        split.Allocation{{ItemID: "item-2", Participants: []string{"Bob"}}},
			wantKind:     split.KindEmptyParticipantSet,
		},
		{
			name:         "unknown item reference",
			participants: []string{"Alice", "Bob"},
			alloc: split.Allocation{
				{ItemID: "item-9", Participants: []string{"Bob"}},
			},
			wantKind: split.KindUnknownItemReference,
			wantRef:  "item-9",
		},
		{
			name:         "unknown participant",
			participants: []string{"Alice", "Bob"},
			alloc: split.Allocation{
				{ItemID: "item-2", Participants: []string{"Mallory"}},
			},
			wantKind: split.KindUnknownParticipant,
			wantRef:  "Mallory",
		},
		{
			name:         "shared item allocated individually",
			participants: []string{"Alice", "Bob"},
			alloc: split.Allocation{
				{ItemID: "item-1", Participants: []string{"Alice"}},
			},
			wantKind: split.KindSharedItemMisallocated,
			wantRef:  "item-1",
		},
		{
			name:         "duplicate item entry",
			participants: []string{"Alice", "Bob"},
			alloc: split.Allocation{
				{ItemID: "item-2", Participants: []string{"Alice"}},
				{ItemID: "item-2", Participants: []string{"Bob"}},
			},
			wantKind: split.KindDuplicateAllocation,
			wantRef:  "item-2",
		},
		{
			name:         "unallocated unshared item is a warning not an error",
			participants: []string{"Alice", "Bob"},
			alloc: split.Allocation{
				{ItemID: "item-2", Participants: []string{"Bob"}},
			},
			wantOrphans: []string{"item-3"},
		},
		{
			name:         "assignment with no participants counts as orphaned",
			participants: []string{"Alice", "Bob"},
			alloc: split.Allocation{
				{ItemID: "item-2", Participants: []string{"Bob"}},
				{ItemID: "item-3"},
			},
			wantOrphans: []string{"item-3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orphans, err := split.Validate(testReceipt(), tt.participants, tt.alloc)
			if tt.wantKind != "" {
				var ruleErr *split.RuleError
				require.ErrorAs(t, err, &ruleErr)
				assert.Equal(t, tt.wantKind, ruleErr.Kind)
				assert.Equal(t, tt.wantRef, ruleErr.Ref)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOrphans, orphans)
		})
	}
}

// The first broken rule wins even when several are broken at once: an unknown
// item reference outranks the unknown participant, shared misallocation and
// duplicate entry also present in this allocation.
func TestValidateShortCircuitsOnFirstFailure(t *testing.T) {
	alloc := split.Allocation{
		{ItemID: "item-1", Participants: []string{"Alice"}},
		{ItemID: "item-9", Participants: []string{"Mallory"}},
		{ItemID: "item-2", Participants: []string{"Alice"}},
		{ItemID: "item-2", Participants: []string{"Bob"}},
	}

	_, err := split.Validate(testReceipt(), []string{"Alice", "Bob"}, alloc)

	var ruleErr *split.RuleError
	require.True(t, errors.As(err, &ruleErr))
	assert.Equal(t, split.KindUnknownItemReference, ruleErr.Kind)
	assert.Equal(t, "item-9", ruleErr.Ref)
}
