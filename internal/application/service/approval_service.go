package service

import (
	"context"
	"time"

	"github.com/crestline/roofops-commissions/internal/application/dispatcher"
	"github.com/crestline/roofops-commissions/internal/application/port"
	appwf "github.com/crestline/roofops-commissions/internal/application/workflow"
	"github.com/crestline/roofops-commissions/internal/domain/entity"
	"github.com/crestline/roofops-commissions/internal/domain/event"
	"github.com/crestline/roofops-commissions/internal/domain/payrun"
	domainwf "github.com/crestline/roofops-commissions/internal/domain/workflow"
)

// ApprovalService executes the guarded workflow transitions on commission
// requests. Every transition re-reads current state, checks the actor's
// capability before any write, then applies a compare-and-swap update and the
// status-log append in one transaction. Events go out asynchronously after
// commit so notification failures cannot fail a transition.
type ApprovalService interface {
	ManagerApprove(ctx context.Context, id int64, actor entity.Actor, notes string) (*entity.CommissionRequest, error)
	FinalApprove(ctx context.Context, id int64, actor entity.Actor, notes string) (*entity.CommissionRequest, error)
	MarkPaid(ctx context.Context, id int64, actor entity.Actor) (*entity.CommissionRequest, error)
	RequestRevision(ctx context.Context, id int64, actor entity.Actor, reason string) (*entity.CommissionRequest, error)
	Deny(ctx context.Context, id int64, actor entity.Actor, reason string) (*entity.CommissionRequest, error)
}

type approvalServiceImpl struct {
	commissions port.CommissionRepository
	statusLog   port.StatusLogRepository
	overrides   port.OverrideRepository
	txManager   port.TransactionManager
	events      dispatcher.Dispatcher
	payLocation *time.Location
	clock       func() time.Time
	logger      Logger
}

// NewApprovalService creates a new ApprovalService. payLocation is the
// company's reference timezone for the pay-run cutoff rule.
func NewApprovalService(
	commissions port.CommissionRepository,
	statusLog port.StatusLogRepository,
	overrides port.OverrideRepository,
	txManager port.TransactionManager,
	events dispatcher.Dispatcher,
	payLocation *time.Location,
	logger Logger,
) ApprovalService {
	return &approvalServiceImpl{
		commissions: commissions,
		statusLog:   statusLog,
		overrides:   overrides,
		txManager:   txManager,
		events:      events,
		payLocation: payLocation,
		clock:       time.Now,
		logger:      logger,
	}
}

// ManagerApprove moves a request out of the manager queue, routing to
// accounting or, for manager submissions, to admin.
func (s *approvalServiceImpl) ManagerApprove(ctx context.Context, id int64, actor entity.Actor, notes string) (*entity.CommissionRequest, error) {
	if !actor.CanReviewAsManager() {
		return nil, &AuthorizationError{ActorID: actor.ID, Action: "approve at the manager stage"}
	}

	return s.transition(ctx, id, actor, domainwf.TriggerManagerApprove, event.TypeManagerApproved,
		func(req *entity.CommissionRequest, now time.Time) string {
			req.ManagerApprovedAt = &now
			req.ManagerApprovedBy = actor.ID
			if notes != "" {
				req.ReviewerNotes = notes
			}
			if req.ApprovalStage == entity.StagePendingAdmin {
				return "manager approved, sent to admin"
			}
			return "manager approved, sent to accounting"
		}, nil)
}

// FinalApprove grants accounting (or admin) approval, schedules the payable
// Friday, and credits the rep's override phase when it is still open.
func (s *approvalServiceImpl) FinalApprove(ctx context.Context, id int64, actor entity.Actor, notes string) (*entity.CommissionRequest, error) {
	req, err := s.commissions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrNotFound
	}
	if !actor.CanFinalApprove(req.ApprovalStage) {
		return nil, &AuthorizationError{ActorID: actor.ID, Action: "grant final approval"}
	}

	var earned *entity.OverrideCredit
	updated, err := s.transition(ctx, id, actor, domainwf.TriggerFinalApprove, event.TypeApproved,
		func(r *entity.CommissionRequest, now time.Time) string {
			r.ApprovedAt = &now
			r.ApprovedBy = actor.ID
			if notes != "" {
				r.ReviewerNotes = notes
			}
			payDate := payrun.NextPayDate(now, s.payLocation)
			r.ScheduledPayDate = &payDate
			return "approved, ready for payment"
		},
		func(txCtx context.Context, r *entity.CommissionRequest, now time.Time) error {
			c, err := s.creditOverride(txCtx, r, now)
			if err != nil {
				return err
			}
			earned = c
			return nil
		})
	if err != nil {
		return nil, err
	}

	if earned != nil {
		s.events.DispatchAsync(ctx, event.NewEvent(event.TypeOverrideEarned, updated.ID, actor.ID, map[string]interface{}{
			"rep_id":   earned.RepID,
			"amount":   earned.Amount.StringFixed(2),
			"sequence": earned.Sequence,
		}))
	}
	return updated, nil
}

// MarkPaid records the payout for an approved commission. Terminal.
func (s *approvalServiceImpl) MarkPaid(ctx context.Context, id int64, actor entity.Actor) (*entity.CommissionRequest, error) {
	if !actor.CanPayout() {
		return nil, &AuthorizationError{ActorID: actor.ID, Action: "mark a commission paid"}
	}

	return s.transition(ctx, id, actor, domainwf.TriggerMarkPaid, event.TypePaid,
		func(req *entity.CommissionRequest, now time.Time) string {
			req.PaidAt = &now
			req.PaidBy = actor.ID
			return "payment recorded"
		}, nil)
}

// RequestRevision sends a pending request back to the submitter with a
// reason. The stage resets to pending_manager and the revision count
// increments exactly once per cycle.
func (s *approvalServiceImpl) RequestRevision(ctx context.Context, id int64, actor entity.Actor, reason string) (*entity.CommissionRequest, error) {
	if !actor.CanReview() {
		return nil, &AuthorizationError{ActorID: actor.ID, Action: "request a revision"}
	}

	return s.transition(ctx, id, actor, domainwf.TriggerRequestRevision, event.TypeRevisionRequired,
		func(req *entity.CommissionRequest, now time.Time) string {
			req.RevisionCount++
			req.RejectionReason = reason
			return "revision requested: " + reason
		}, nil)
}

// Deny is a terminal rejection, distinct from a revision request.
func (s *approvalServiceImpl) Deny(ctx context.Context, id int64, actor entity.Actor, reason string) (*entity.CommissionRequest, error) {
	if !actor.CanReview() {
		return nil, &AuthorizationError{ActorID: actor.ID, Action: "deny a commission"}
	}

	return s.transition(ctx, id, actor, domainwf.TriggerDeny, event.TypeDenied,
		func(req *entity.CommissionRequest, now time.Time) string {
			req.DeniedAt = &now
			req.DeniedBy = actor.ID
			req.RejectionReason = reason
			return "denied: " + reason
		}, nil)
}

// transition is the shared read → guard → fire → conditional-write path.
// effect mutates the request after the state machine has moved and returns
// the status-log note; inTx, when set, runs inside the same transaction as
// the write and the log append.
func (s *approvalServiceImpl) transition(
	ctx context.Context,
	id int64,
	actor entity.Actor,
	trigger domainwf.Trigger,
	eventType event.Type,
	effect func(req *entity.CommissionRequest, now time.Time) string,
	inTx func(txCtx context.Context, req *entity.CommissionRequest, now time.Time) error,
) (*entity.CommissionRequest, error) {
	// Re-read immediately before the guard check; the version read here is
	// what the conditional write compares against.
	req, err := s.commissions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrNotFound
	}

	expectedVersion := req.Version
	prevStatus := req.Status
	now := s.clock()

	machine, err := appwf.BuildCommissionStateMachine(req)
	if err != nil {
		return nil, err
	}
	if err := machine.Fire(ctx, trigger); err != nil {
		return nil, err
	}

	appwf.Apply(req, machine.State())
	note := effect(req, now)
	req.UpdatedAt = now

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.commissions.Update(txCtx, req, expectedVersion); err != nil {
			return err
		}
		if err := s.statusLog.Append(txCtx, &entity.StatusLogEntry{
			RequestID:      req.ID,
			PreviousStatus: prevStatus,
			NewStatus:      req.Status,
			ChangedBy:      actor.ID,
			Notes:          note,
			Timestamp:      now,
		}); err != nil {
			return err
		}
		if inTx != nil {
			return inTx(txCtx, req, now)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Transition failed",
			"id", id, "trigger", trigger.String(), "actor_id", actor.ID, "error", err)
		return nil, err
	}

	s.logger.Info("Transition applied",
		"id", req.ID, "trigger", trigger.String(),
		"previous_status", prevStatus, "new_status", req.Status, "actor_id", actor.ID)
	s.events.DispatchAsync(ctx, event.NewEvent(eventType, req.ID, actor.ID, notificationPayload(req, prevStatus)))
	return req, nil
}

// creditOverride appends an override credit for a newly approved commission
// while the rep's phase is open. The ledger is keyed by request id, so a
// replayed approval cannot double-count; the 10th credit completes the phase
// permanently.
func (s *approvalServiceImpl) creditOverride(ctx context.Context, req *entity.CommissionRequest, now time.Time) (*entity.OverrideCredit, error) {
	phase, err := s.overrides.PhaseFor(ctx, req.RepID)
	if err != nil {
		return nil, err
	}
	if phase.Completed || phase.ApprovedCount >= entity.OverrideCreditLimit {
		return nil, nil
	}

	existing, err := s.overrides.CreditForRequest(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, nil
	}

	credit := &entity.OverrideCredit{
		RepID:     req.RepID,
		RequestID: req.ID,
		Amount:    entity.OverrideAmount(req.PayableAmount()),
		Sequence:  phase.ApprovedCount + 1,
		Timestamp: now,
	}
	if err := s.overrides.AppendCredit(ctx, credit); err != nil {
		return nil, err
	}

	if credit.Sequence >= entity.OverrideCreditLimit {
		if err := s.overrides.MarkPhaseCompleted(ctx, req.RepID, now); err != nil {
			return nil, err
		}
	}
	return credit, nil
}
