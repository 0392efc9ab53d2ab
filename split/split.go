// Package split computes who owes what on a parsed receipt.
//
// The engine is pure: it takes an in-memory receipt, the participant list, an
// item allocation and a tip percentage, and returns each participant's total
// including a proportional share of tax and tip. It performs no I/O and holds
// no state, so it is safe to call concurrently for different receipts.
package split

import (
	"math"
	"strconv"

	"tabsplit/money"
)

// LineItem is one purchased item. Amount is the item's total cost, already
// reflecting quantity. ID is assigned once at parse time and never reused.
type LineItem struct {
	ID          string
	Description string
	Amount      float64
	Shared      bool
}

// Receipt is the engine's view of a parsed bill. Subtotal and Tax are the
// amounts printed on the receipt; the engine recomputes the pre-tax total
// from the items and treats that sum as authoritative for splitting.
type Receipt struct {
	Items    []LineItem
	Subtotal float64
	Tax      float64
	Currency *string
}

// ItemsTotal returns the sum of all item amounts, the authoritative pre-tax
// grand total.
func (r Receipt) ItemsTotal() float64 {
	var total float64
	for _, item := range r.Items {
		total += item.Amount
	}
	return total
}

// Assignment maps one unshared item to the participants splitting its cost.
type Assignment struct {
	ItemID       string
	Participants []string
}

// Allocation is the full set of item assignments for a receipt. It is a list
// rather than a map so a duplicate entry for the same item is representable
// and can be rejected instead of silently collapsed.
type Allocation []Assignment

// Settlement is the computed payment breakdown. Payments sums exactly to
// GrandTotal unless orphaned items exist, in which case the orphaned cost
// (and its share of tax and tip) belongs to no one and the difference is the
// caller's signal to surface.
type Settlement struct {
	Payments      map[string]float64
	GrandTotal    float64
	OrphanedItems []string
}

// Validate checks an allocation against the receipt and participant set.
// Checks run in a fixed order and stop at the first failure: non-empty
// participants, known item references, known participants, no shared item
// allocated individually, no duplicate item entry. Orphaned items (unshared
// and unallocated) are returned as a non-fatal warning list, never an error.
func Validate(receipt Receipt, participants []string, alloc Allocation) ([]string, error) {
	if len(participants) == 0 {
		return nil, newRuleError(KindEmptyParticipantSet, "")
	}

	itemByID := make(map[string]LineItem, len(receipt.Items))
	for _, item := range receipt.Items {
		itemByID[item.ID] = item
	}
	for _, a := range alloc {
		if _, ok := itemByID[a.ItemID]; !ok {
			return nil, newRuleError(KindUnknownItemReference, a.ItemID)
		}
	}

	known := make(map[string]bool, len(participants))
	for _, name := range participants {
		known[name] = true
	}
	for _, a := range alloc {
		for _, name := range a.Participants {
			if !known[name] {
				return nil, newRuleError(KindUnknownParticipant, name)
			}
		}
	}

	for _, a := range alloc {
		if itemByID[a.ItemID].Shared {
			return nil, newRuleError(KindSharedItemMisallocated, a.ItemID)
		}
	}

	seen := make(map[string]bool, len(alloc))
	for _, a := range alloc {
		if seen[a.ItemID] {
			return nil, newRuleError(KindDuplicateAllocation, a.ItemID)
		}
		seen[a.ItemID] = true
	}

	return orphanedItems(receipt.Items, alloc), nil
}

// Settle computes the final amount each participant owes.
//
// Shared items are split evenly across all participants. Each allocated item
// is split evenly across its assignees. Tax plus tip (tip is charged on
// subtotal + tax) is then distributed in proportion to each participant's
// pre-tax total, every final amount is rounded half-to-even at the currency's
// minor unit, and any leftover minor unit from rounding is applied to the
// participant with the largest pre-rounding share (first in participant order
// on a tie) so the payments sum exactly to the rounded total.
func Settle(receipt Receipt, participants []string, alloc Allocation, tipPercentage float64) (*Settlement, error) {
	if len(participants) == 0 {
		return nil, newRuleError(KindZeroParticipants, "")
	}
	if tipPercentage < 0 {
		return nil, newRuleError(KindNegativeTip, strconv.FormatFloat(tipPercentage, 'f', -1, 64))
	}

	itemByID := make(map[string]LineItem, len(receipt.Items))
	var itemsTotal, sharedTotal float64
	for _, item := range receipt.Items {
		itemByID[item.ID] = item
		itemsTotal += item.Amount
		if item.Shared {
			sharedTotal += item.Amount
		}
	}

	running := make(map[string]float64, len(participants))
	sharedPerPerson := sharedTotal / float64(len(participants))
	for _, name := range participants {
		running[name] = sharedPerPerson
	}

	for _, a := range alloc {
		item, ok := itemByID[a.ItemID]
		if !ok || item.Shared {
			// Validate already rejected these; skip rather than re-check.
			continue
		}
		assignees := dedupe(a.Participants)
		if len(assignees) == 0 {
			continue
		}
		perAssignee := item.Amount / float64(len(assignees))
		for _, name := range assignees {
			running[name] += perAssignee
		}
	}

	pool := receipt.Tax + (itemsTotal+receipt.Tax)*tipPercentage

	finals := make([]float64, len(participants))
	var unroundedSum float64
	for i, name := range participants {
		if itemsTotal > 0 {
			finals[i] = running[name] + pool*(running[name]/itemsTotal)
		}
		unroundedSum += finals[i]
	}

	grandTotal := money.RoundHalfEven(itemsTotal+pool, receipt.Currency)
	payments := make(map[string]float64, len(participants))
	var roundedSum float64
	for i, name := range participants {
		payments[name] = money.RoundHalfEven(finals[i], receipt.Currency)
		roundedSum += payments[name]
	}

	// The residual target is normally the full rounded bill. When orphaned
	// cost was excluded, the target shrinks to what was actually distributed
	// so the missing money stays visible instead of landing on one person.
	factor := money.MinorUnitFactor(receipt.Currency)
	target := grandTotal
	if unroundedSum < itemsTotal+pool-1/(2*factor) {
		target = money.RoundHalfEven(unroundedSum, receipt.Currency)
	}

	if residual := math.Round((target - roundedSum) * factor); residual != 0 {
		largest := 0
		for i := 1; i < len(finals); i++ {
			if finals[i] > finals[largest] {
				largest = i
			}
		}
		name := participants[largest]
		payments[name] = money.RoundHalfEven(payments[name]+residual/factor, receipt.Currency)
	}

	return &Settlement{
		Payments:      payments,
		GrandTotal:    grandTotal,
		OrphanedItems: orphanedItems(receipt.Items, alloc),
	}, nil
}

// orphanedItems lists unshared items with no assignees, in receipt order.
func orphanedItems(items []LineItem, alloc Allocation) []string {
	assigned := make(map[string]bool, len(alloc))
	for _, a := range alloc {
		if len(a.Participants) > 0 {
			assigned[a.ItemID] = true
		}
	}
	var orphaned []string
	for _, item := range items {
		if !item.Shared && !assigned[item.ID] {
			orphaned = append(orphaned, item.ID)
		}
	}
	return orphaned
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := names[:0:0]
	for _, name := range names {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}
