package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crestline/roofops-commissions/internal/application/dispatcher"
	"github.com/crestline/roofops-commissions/internal/domain/entity"
)

func newDrawFixture(t *testing.T) (DrawService, *memDrawRepo) {
	t.Helper()
	draws := newMemDrawRepo()
	d := dispatcher.NewDispatcher()
	t.Cleanup(func() { d.Close() })

	svc := NewDrawService(draws, noopTxManager{}, d, nopLogger{})
	svc.(*drawServiceImpl).clock = func() time.Time {
		return time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	}
	return svc, draws
}

func TestDrawRequest_RejectsNonPositiveAmount(t *testing.T) {
	svc, _ := newDrawFixture(t)

	_, err := svc.Request(context.Background(), "rep-1", decimal.Zero, "", repActor)
	assert.ErrorIs(t, err, ErrInvalidDrawAmount)
	_, err = svc.Request(context.Background(), "rep-1", decimal.NewFromInt(-100), "", repActor)
	assert.ErrorIs(t, err, ErrInvalidDrawAmount)
}

func TestDrawApprove_AppendsTakenLedgerEntry(t *testing.T) {
	svc, draws := newDrawFixture(t)
	ctx := context.Background()

	draw, err := svc.Request(ctx, "rep-1", decimal.NewFromInt(1000), "materials deposit", repActor)
	require.NoError(t, err)
	assert.Equal(t, entity.DrawRequested, draw.Status)

	approved, err := svc.Approve(ctx, draw.ID, acctActor)
	require.NoError(t, err)
	assert.Equal(t, entity.DrawApproved, approved.Status)
	assert.Equal(t, acctActor.ID, approved.DecidedBy)

	ledger, err := draws.LedgerByRep(ctx, "rep-1")
	require.NoError(t, err)
	require.Len(t, ledger, 1)
	assert.Equal(t, entity.DrawEntryTaken, ledger[0].Kind)
	require.NotNil(t, ledger[0].DrawID)
	assert.Equal(t, draw.ID, *ledger[0].DrawID)
}

func TestDrawDeny_NoLedgerEntry(t *testing.T) {
	svc, draws := newDrawFixture(t)
	ctx := context.Background()

	draw, err := svc.Request(ctx, "rep-1", decimal.NewFromInt(500), "", repActor)
	require.NoError(t, err)

	denied, err := svc.Deny(ctx, draw.ID, adminActor)
	require.NoError(t, err)
	assert.Equal(t, entity.DrawDenied, denied.Status)

	ledger, err := draws.LedgerByRep(ctx, "rep-1")
	require.NoError(t, err)
	assert.Empty(t, ledger)
}

func TestDrawDecide_RequiresApproverCapability(t *testing.T) {
	svc, _ := newDrawFixture(t)
	ctx := context.Background()

	draw, err := svc.Request(ctx, "rep-1", decimal.NewFromInt(500), "", repActor)
	require.NoError(t, err)

	_, err = svc.Approve(ctx, draw.ID, repActor)
	var authErr *AuthorizationError
	require.ErrorAs(t, err, &authErr)

	// Managers may decide draws.
	approved, err := svc.Approve(ctx, draw.ID, managerActor)
	require.NoError(t, err)
	assert.Equal(t, entity.DrawApproved, approved.Status)
}

func TestDrawDecide_OnlyOnce(t *testing.T) {
	svc, _ := newDrawFixture(t)
	ctx := context.Background()

	draw, err := svc.Request(ctx, "rep-1", decimal.NewFromInt(500), "", repActor)
	require.NoError(t, err)

	_, err = svc.Approve(ctx, draw.ID, acctActor)
	require.NoError(t, err)

	_, err = svc.Deny(ctx, draw.ID, acctActor)
	assert.ErrorIs(t, err, ErrDrawDecided)
	_, err = svc.Approve(ctx, draw.ID, acctActor)
	assert.ErrorIs(t, err, ErrDrawDecided)
}

func TestDrawBalance_SignedLedgerSum(t *testing.T) {
	svc, _ := newDrawFixture(t)
	ctx := context.Background()

	first, err := svc.Request(ctx, "rep-1", decimal.NewFromInt(1000), "", repActor)
	require.NoError(t, err)
	_, err = svc.Approve(ctx, first.ID, acctActor)
	require.NoError(t, err)

	second, err := svc.Request(ctx, "rep-1", decimal.NewFromInt(400), "", repActor)
	require.NoError(t, err)
	_, err = svc.Approve(ctx, second.ID, acctActor)
	require.NoError(t, err)

	require.NoError(t, svc.RecordPayback(ctx, "rep-1", decimal.NewFromInt(250), acctActor))

	balance, err := svc.Balance(ctx, "rep-1")
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(1150)), "got %s", balance)

	// Another rep's ledger is untouched.
	other, err := svc.Balance(ctx, "rep-2")
	require.NoError(t, err)
	assert.True(t, other.IsZero())
}

func TestDrawGet_NotFound(t *testing.T) {
	svc, _ := newDrawFixture(t)
	_, err := svc.Get(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)
}
