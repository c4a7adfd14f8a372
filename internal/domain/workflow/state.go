package workflow

// State is a composite workflow state: the outer status and the reviewer
// stage collapsed into one value, since the pair always moves together.
type State string

const (
	// StatePendingManager: status pending_review, sitting in the manager queue.
	StatePendingManager State = "PENDING_MANAGER"
	// StatePendingAccounting: manager approved, awaiting accounting review.
	StatePendingAccounting State = "PENDING_ACCOUNTING"
	// StatePendingAdmin: manager-submitted requests route here instead of
	// accounting after manager approval.
	StatePendingAdmin State = "PENDING_ADMIN"
	// StateRevisionRequired: a reviewer sent the request back; the submitter
	// may edit and resubmit.
	StateRevisionRequired State = "REVISION_REQUIRED"
	// StateApproved: final approval granted, pay date scheduled.
	StateApproved State = "APPROVED"
	// StateDenied: terminal rejection.
	StateDenied State = "DENIED"
	// StatePaid: payout recorded. Terminal.
	StatePaid State = "PAID"
)

var validStates = map[State]bool{
	StatePendingManager:    true,
	StatePendingAccounting: true,
	StatePendingAdmin:      true,
	StateRevisionRequired:  true,
	StateApproved:          true,
	StateDenied:            true,
	StatePaid:              true,
}

var terminalStates = map[State]bool{
	StateDenied: true,
	StatePaid:   true,
}

var pendingReviewStates = map[State]bool{
	StatePendingManager:    true,
	StatePendingAccounting: true,
	StatePendingAdmin:      true,
}

// IsTerminal returns true if no further transitions are allowed from s.
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// IsPendingReview returns true if s sits in a reviewer queue.
func (s State) IsPendingReview() bool {
	return pendingReviewStates[s]
}

// String returns the string representation of the state.
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is a valid workflow state.
func (s State) IsValid() bool {
	return validStates[s]
}
