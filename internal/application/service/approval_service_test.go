package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crestline/roofops-commissions/internal/application/dispatcher"
	"github.com/crestline/roofops-commissions/internal/application/port"
	"github.com/crestline/roofops-commissions/internal/domain/entity"
	domainwf "github.com/crestline/roofops-commissions/internal/domain/workflow"
)

type approvalFixture struct {
	commissionSvc CommissionService
	approvalSvc   ApprovalService
	commissions   *memCommissionRepo
	statusLog     *memStatusLogRepo
	overrides     *memOverrideRepo
}

// Monday morning, well before the Tuesday 15:00 cutoff.
var approvalNow = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func newApprovalFixture(t *testing.T) *approvalFixture {
	t.Helper()
	commissions := newMemCommissionRepo()
	statusLog := newMemStatusLogRepo()
	overrides := newMemOverrideRepo()
	managers := &fakeManagerLookup{managers: map[string]string{
		repActor.ID:     managerActor.ID,
		managerActor.ID: adminActor.ID,
	}}
	d := dispatcher.NewDispatcher()
	t.Cleanup(func() { d.Close() })

	clock := func() time.Time { return approvalNow }

	commissionSvc := NewCommissionService(commissions, statusLog, managers, noopTxManager{}, d, nopLogger{})
	commissionSvc.(*commissionServiceImpl).clock = clock

	approvalSvc := NewApprovalService(commissions, statusLog, overrides, noopTxManager{}, d, time.UTC, nopLogger{})
	approvalSvc.(*approvalServiceImpl).clock = clock

	return &approvalFixture{
		commissionSvc: commissionSvc,
		approvalSvc:   approvalSvc,
		commissions:   commissions,
		statusLog:     statusLog,
		overrides:     overrides,
	}
}

func (f *approvalFixture) submit(t *testing.T, actor entity.Actor) *entity.CommissionRequest {
	t.Helper()
	draft := submissionDraft()
	draft.Rep.RepID = actor.ID
	req, err := f.commissionSvc.CreateSubmission(context.Background(), draft, actor)
	require.NoError(t, err)
	return req
}

func TestManagerApprove_RoutesToAccounting(t *testing.T) {
	f := newApprovalFixture(t)
	req := f.submit(t, repActor)

	updated, err := f.approvalSvc.ManagerApprove(context.Background(), req.ID, managerActor, "looks right")
	require.NoError(t, err)

	assert.Equal(t, entity.StatusPendingReview, updated.Status)
	assert.Equal(t, entity.StagePendingAccounting, updated.ApprovalStage)
	assert.Equal(t, managerActor.ID, updated.ManagerApprovedBy)
	require.NotNil(t, updated.ManagerApprovedAt)
	assert.Equal(t, int64(2), updated.Version)

	history, _ := f.statusLog.ListByRequestID(context.Background(), req.ID)
	require.Len(t, history, 2)
	assert.Contains(t, history[1].Notes, "sent to accounting")
}

func TestManagerApprove_ManagerSubmissionRoutesToAdmin(t *testing.T) {
	f := newApprovalFixture(t)
	req := f.submit(t, managerActor)
	require.True(t, req.IsManagerSubmission)

	updated, err := f.approvalSvc.ManagerApprove(context.Background(), req.ID, adminActor, "")
	require.NoError(t, err)
	assert.Equal(t, entity.StagePendingAdmin, updated.ApprovalStage)

	history, _ := f.statusLog.ListByRequestID(context.Background(), req.ID)
	assert.Contains(t, history[1].Notes, "sent to admin")
}

func TestManagerApprove_RequiresCapability(t *testing.T) {
	f := newApprovalFixture(t)
	req := f.submit(t, repActor)

	_, err := f.approvalSvc.ManagerApprove(context.Background(), req.ID, repActor, "")
	var authErr *AuthorizationError
	require.ErrorAs(t, err, &authErr)
}

func TestFinalApprove_AssignsPayDate(t *testing.T) {
	f := newApprovalFixture(t)
	req := f.submit(t, repActor)
	_, err := f.approvalSvc.ManagerApprove(context.Background(), req.ID, managerActor, "")
	require.NoError(t, err)

	updated, err := f.approvalSvc.FinalApprove(context.Background(), req.ID, acctActor, "")
	require.NoError(t, err)

	assert.Equal(t, entity.StatusApproved, updated.Status)
	assert.Equal(t, entity.StageCompleted, updated.ApprovalStage)
	assert.Equal(t, acctActor.ID, updated.ApprovedBy)
	require.NotNil(t, updated.ScheduledPayDate)
	// Monday before the cutoff pays out the same week's Friday.
	assert.Equal(t, time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC), *updated.ScheduledPayDate)
	assert.Equal(t, time.Friday, updated.ScheduledPayDate.Weekday())
}

func TestFinalApprove_AccountingCannotActOnAdminStage(t *testing.T) {
	f := newApprovalFixture(t)
	req := f.submit(t, managerActor)
	_, err := f.approvalSvc.ManagerApprove(context.Background(), req.ID, adminActor, "")
	require.NoError(t, err)

	_, err = f.approvalSvc.FinalApprove(context.Background(), req.ID, acctActor, "")
	var authErr *AuthorizationError
	require.ErrorAs(t, err, &authErr)

	updated, err := f.approvalSvc.FinalApprove(context.Background(), req.ID, adminActor, "")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusApproved, updated.Status)
}

func TestFinalApprove_ConcurrentApproversOneWins(t *testing.T) {
	f := newApprovalFixture(t)
	req := f.submit(t, repActor)
	_, err := f.approvalSvc.ManagerApprove(context.Background(), req.ID, managerActor, "")
	require.NoError(t, err)

	// Both reviewers read the same stored version.
	snapshot, err := f.commissions.GetByID(context.Background(), req.ID)
	require.NoError(t, err)

	_, err = f.approvalSvc.FinalApprove(context.Background(), req.ID, acctActor, "")
	require.NoError(t, err)

	// Replay the loser's half of the race: its read happened before the
	// winner's write.
	f.commissions.staleRead = snapshot
	_, err = f.approvalSvc.FinalApprove(context.Background(), req.ID, adminActor, "")
	assert.ErrorIs(t, err, port.ErrStaleState)
}

func TestRequestRevision_IncrementsCountAndResetsStage(t *testing.T) {
	f := newApprovalFixture(t)
	req := f.submit(t, repActor)

	updated, err := f.approvalSvc.RequestRevision(context.Background(), req.ID, managerActor, "labor cost missing")
	require.NoError(t, err)

	assert.Equal(t, entity.StatusRevisionRequired, updated.Status)
	assert.Equal(t, entity.StagePendingManager, updated.ApprovalStage)
	assert.Equal(t, 1, updated.RevisionCount)
	assert.Equal(t, "labor cost missing", updated.RejectionReason)
}

func TestRevisionCycle_CountsOncePerCycle(t *testing.T) {
	f := newApprovalFixture(t)
	req := f.submit(t, repActor)

	_, err := f.approvalSvc.RequestRevision(context.Background(), req.ID, managerActor, "wrong rate")
	require.NoError(t, err)

	resubmitted, err := f.commissionSvc.ResubmitSubmission(context.Background(), req.ID, submissionDraft().Inputs, repActor)
	require.NoError(t, err)
	assert.Equal(t, 1, resubmitted.RevisionCount)

	_, err = f.approvalSvc.RequestRevision(context.Background(), req.ID, managerActor, "still wrong")
	require.NoError(t, err)
	again, err := f.commissionSvc.ResubmitSubmission(context.Background(), req.ID, submissionDraft().Inputs, repActor)
	require.NoError(t, err)
	assert.Equal(t, 2, again.RevisionCount)
}

func TestDeny_IsTerminal(t *testing.T) {
	f := newApprovalFixture(t)
	req := f.submit(t, repActor)

	denied, err := f.approvalSvc.Deny(context.Background(), req.ID, managerActor, "duplicate entry")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusDenied, denied.Status)
	assert.Equal(t, "", denied.ApprovalStage)
	assert.Equal(t, managerActor.ID, denied.DeniedBy)

	_, err = f.approvalSvc.ManagerApprove(context.Background(), req.ID, managerActor, "")
	assert.ErrorIs(t, err, domainwf.ErrInvalidTransition)
	_, err = f.commissionSvc.ResubmitSubmission(context.Background(), req.ID, submissionDraft().Inputs, repActor)
	assert.ErrorIs(t, err, domainwf.ErrInvalidTransition)
}

func TestMarkPaid_RequiresPayoutCapabilityAndIsTerminal(t *testing.T) {
	f := newApprovalFixture(t)
	req := f.submit(t, repActor)
	_, err := f.approvalSvc.ManagerApprove(context.Background(), req.ID, managerActor, "")
	require.NoError(t, err)
	_, err = f.approvalSvc.FinalApprove(context.Background(), req.ID, acctActor, "")
	require.NoError(t, err)

	_, err = f.approvalSvc.MarkPaid(context.Background(), req.ID, managerActor)
	var authErr *AuthorizationError
	require.ErrorAs(t, err, &authErr)

	paid, err := f.approvalSvc.MarkPaid(context.Background(), req.ID, acctActor)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPaid, paid.Status)
	assert.Equal(t, acctActor.ID, paid.PaidBy)

	_, err = f.approvalSvc.Deny(context.Background(), req.ID, adminActor, "nope")
	assert.ErrorIs(t, err, domainwf.ErrInvalidTransition)
}

func TestOverridePhase_TenCreditsThenComplete(t *testing.T) {
	f := newApprovalFixture(t)
	ctx := context.Background()

	for i := 1; i <= 11; i++ {
		req := f.submit(t, repActor)
		_, err := f.approvalSvc.ManagerApprove(ctx, req.ID, managerActor, "")
		require.NoError(t, err)
		_, err = f.approvalSvc.FinalApprove(ctx, req.ID, acctActor, "")
		require.NoError(t, err)

		phase, err := f.overrides.PhaseFor(ctx, repActor.ID)
		require.NoError(t, err)
		switch {
		case i < 10:
			assert.Equal(t, i, phase.ApprovedCount)
			assert.False(t, phase.Completed)
		case i == 10:
			assert.Equal(t, 10, phase.ApprovedCount)
			assert.True(t, phase.Completed, "10th approval must complete the phase")
		default:
			assert.Equal(t, 10, phase.ApprovedCount, "no credit after the phase completes")
			assert.True(t, phase.Completed)
		}
	}

	credits, err := f.overrides.ListByRep(ctx, repActor.ID)
	require.NoError(t, err)
	require.Len(t, credits, 10)
	// Each credit is 10% of the net commission owed (3000 for the fixture).
	expected := decimal.NewFromInt(300)
	for _, c := range credits {
		assert.True(t, c.Amount.Equal(expected), "got %s", c.Amount)
	}
	assert.Equal(t, 1, credits[0].Sequence)
	assert.Equal(t, 10, credits[9].Sequence)
}

func TestOverridePhase_IdempotentPerRequest(t *testing.T) {
	f := newApprovalFixture(t)
	ctx := context.Background()

	req := f.submit(t, repActor)
	_, err := f.approvalSvc.ManagerApprove(ctx, req.ID, managerActor, "")
	require.NoError(t, err)
	_, err = f.approvalSvc.FinalApprove(ctx, req.ID, acctActor, "")
	require.NoError(t, err)

	// A replayed credit for the same request is a no-op, not a double count.
	svc := f.approvalSvc.(*approvalServiceImpl)
	stored, err := f.commissions.GetByID(ctx, req.ID)
	require.NoError(t, err)
	credit, err := svc.creditOverride(ctx, stored, approvalNow)
	require.NoError(t, err)
	assert.Nil(t, credit)

	count, err := f.overrides.CountByRep(ctx, repActor.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestTransition_NotFound(t *testing.T) {
	f := newApprovalFixture(t)
	_, err := f.approvalSvc.ManagerApprove(context.Background(), 404, managerActor, "")
	assert.ErrorIs(t, err, ErrNotFound)
}
