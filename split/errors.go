package split

import "fmt"

// Kind identifies which rule an allocation or settlement input violated.
type Kind string

const (
	KindEmptyParticipantSet    Kind = "empty_participant_set"
	KindZeroParticipants       Kind = "zero_participants"
	KindUnknownItemReference   Kind = "unknown_item_reference"
	KindUnknownParticipant     Kind = "unknown_participant"
	KindSharedItemMisallocated Kind = "shared_item_misallocated"
	KindDuplicateAllocation    Kind = "duplicate_allocation"
	KindNegativeTip            Kind = "negative_tip"
)

// RuleError reports the first rule the input broke. Ref names the offending
// item id, participant name, or value when one exists. Every RuleError is a
// caller-input problem: deterministic, never transient, never retryable.
type RuleError struct {
	Kind Kind
	Ref  string
}

func (e *RuleError) Error() string {
	if e.Ref == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Ref)
}

func newRuleError(kind Kind, ref string) *RuleError {
	return &RuleError{Kind: kind, Ref: ref}
}
