// Package workflow wires the commission lifecycle onto the generic state
// machine: composite (status, approval_stage) states, reviewer triggers, and
// the routing guard for manager submissions.
package workflow

import (
	"context"
	"fmt"

	"github.com/crestline/roofops-commissions/internal/domain/entity"
	domainwf "github.com/crestline/roofops-commissions/internal/domain/workflow"
)

// BuildCommissionStateMachine creates a state machine positioned at the
// request's current composite state. Manager submissions route to the admin
// queue after manager approval; everything else goes to accounting.
func BuildCommissionStateMachine(req *entity.CommissionRequest) (domainwf.StateMachine, error) {
	current, err := StateOf(req)
	if err != nil {
		return nil, err
	}

	isManagerSubmission := req.IsManagerSubmission
	builder := domainwf.NewBuilder()

	builder.Configure(domainwf.StatePendingManager).
		PermitIf(domainwf.TriggerManagerApprove, domainwf.StatePendingAdmin,
			func(ctx context.Context) bool { return isManagerSubmission }).
		PermitIf(domainwf.TriggerManagerApprove, domainwf.StatePendingAccounting,
			func(ctx context.Context) bool { return !isManagerSubmission }).
		Permit(domainwf.TriggerRequestRevision, domainwf.StateRevisionRequired).
		Permit(domainwf.TriggerDeny, domainwf.StateDenied)

	builder.Configure(domainwf.StatePendingAccounting).
		Permit(domainwf.TriggerFinalApprove, domainwf.StateApproved).
		Permit(domainwf.TriggerRequestRevision, domainwf.StateRevisionRequired).
		Permit(domainwf.TriggerDeny, domainwf.StateDenied)

	builder.Configure(domainwf.StatePendingAdmin).
		Permit(domainwf.TriggerFinalApprove, domainwf.StateApproved).
		Permit(domainwf.TriggerRequestRevision, domainwf.StateRevisionRequired).
		Permit(domainwf.TriggerDeny, domainwf.StateDenied)

	builder.Configure(domainwf.StateRevisionRequired).
		Permit(domainwf.TriggerResubmit, domainwf.StatePendingManager)

	builder.Configure(domainwf.StateApproved).
		Permit(domainwf.TriggerMarkPaid, domainwf.StatePaid)

	// DENIED and PAID are terminal, no outgoing transitions.

	return builder.Build(current), nil
}

// StateOf collapses a request's (status, approval_stage) pair into its
// composite workflow state.
func StateOf(req *entity.CommissionRequest) (domainwf.State, error) {
	switch req.Status {
	case entity.StatusPendingReview:
		switch req.ApprovalStage {
		case entity.StagePendingManager:
			return domainwf.StatePendingManager, nil
		case entity.StagePendingAccounting:
			return domainwf.StatePendingAccounting, nil
		case entity.StagePendingAdmin:
			return domainwf.StatePendingAdmin, nil
		}
	case entity.StatusRevisionRequired:
		return domainwf.StateRevisionRequired, nil
	case entity.StatusApproved:
		return domainwf.StateApproved, nil
	case entity.StatusDenied:
		return domainwf.StateDenied, nil
	case entity.StatusPaid:
		return domainwf.StatePaid, nil
	}
	return "", fmt.Errorf("%w: status=%q stage=%q", domainwf.ErrInvalidState, req.Status, req.ApprovalStage)
}

// Apply writes a composite state back onto the request's (status, stage)
// pair. A revision always parks the stage at pending_manager so resubmission
// re-enters at the top of the chain; denial clears the stage.
func Apply(req *entity.CommissionRequest, s domainwf.State) {
	switch s {
	case domainwf.StatePendingManager:
		req.Status = entity.StatusPendingReview
		req.ApprovalStage = entity.StagePendingManager
	case domainwf.StatePendingAccounting:
		req.Status = entity.StatusPendingReview
		req.ApprovalStage = entity.StagePendingAccounting
	case domainwf.StatePendingAdmin:
		req.Status = entity.StatusPendingReview
		req.ApprovalStage = entity.StagePendingAdmin
	case domainwf.StateRevisionRequired:
		req.Status = entity.StatusRevisionRequired
		req.ApprovalStage = entity.StagePendingManager
	case domainwf.StateApproved:
		req.Status = entity.StatusApproved
		req.ApprovalStage = entity.StageCompleted
	case domainwf.StateDenied:
		req.Status = entity.StatusDenied
		req.ApprovalStage = ""
	case domainwf.StatePaid:
		req.Status = entity.StatusPaid
		req.ApprovalStage = entity.StageCompleted
	}
}
