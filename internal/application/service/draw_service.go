package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/crestline/roofops-commissions/internal/application/dispatcher"
	"github.com/crestline/roofops-commissions/internal/application/port"
	"github.com/crestline/roofops-commissions/internal/domain/entity"
	"github.com/crestline/roofops-commissions/internal/domain/event"
)

// ErrDrawDecided is returned when approving or denying a draw that has
// already left the requested state.
var ErrDrawDecided = errors.New("draw has already been decided")

// ErrInvalidDrawAmount is returned for draw requests that are zero or
// negative.
var ErrInvalidDrawAmount = errors.New("draw amount must be positive")

// DrawService manages cash advances against future commissions. A draw is a
// two-state gate, not a full approval workflow: it is requested, then either
// approved or denied, and an approved draw lands in the rep's ledger as a
// "taken" entry.
type DrawService interface {
	Request(ctx context.Context, repID string, amount decimal.Decimal, notes string, actor entity.Actor) (*entity.Draw, error)
	Approve(ctx context.Context, id int64, actor entity.Actor) (*entity.Draw, error)
	Deny(ctx context.Context, id int64, actor entity.Actor) (*entity.Draw, error)
	RecordPayback(ctx context.Context, repID string, amount decimal.Decimal, actor entity.Actor) error
	Get(ctx context.Context, id int64) (*entity.Draw, error)
	ListByRep(ctx context.Context, repID string) ([]*entity.Draw, error)
	Balance(ctx context.Context, repID string) (decimal.Decimal, error)
}

type drawServiceImpl struct {
	draws     port.DrawRepository
	txManager port.TransactionManager
	events    dispatcher.Dispatcher
	clock     func() time.Time
	logger    Logger
}

func NewDrawService(
	draws port.DrawRepository,
	txManager port.TransactionManager,
	events dispatcher.Dispatcher,
	logger Logger,
) DrawService {
	return &drawServiceImpl{
		draws:     draws,
		txManager: txManager,
		events:    events,
		clock:     time.Now,
		logger:    logger,
	}
}

func (s *drawServiceImpl) Request(ctx context.Context, repID string, amount decimal.Decimal, notes string, actor entity.Actor) (*entity.Draw, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidDrawAmount
	}

	draw := &entity.Draw{
		RepID:       repID,
		Amount:      amount,
		RequestedBy: actor.ID,
		Status:      entity.DrawRequested,
		Reason:      notes,
		CreatedAt:   s.clock(),
	}
	if err := s.draws.Create(ctx, draw); err != nil {
		return nil, err
	}

	s.logger.Info("Draw requested", "id", draw.ID, "rep_id", repID, "amount", amount.StringFixed(2))
	s.events.DispatchAsync(ctx, event.NewEvent(event.TypeDrawRequested, draw.ID, actor.ID, map[string]interface{}{
		"rep_id": repID,
		"amount": amount.StringFixed(2),
	}))
	return draw, nil
}

// Approve grants a requested draw and appends the matching "taken" ledger
// entry in the same transaction. The decision write is conditional on the
// draw still being in the requested state, so racing approvers cannot both
// succeed.
func (s *drawServiceImpl) Approve(ctx context.Context, id int64, actor entity.Actor) (*entity.Draw, error) {
	return s.decide(ctx, id, actor, entity.DrawApproved)
}

func (s *drawServiceImpl) Deny(ctx context.Context, id int64, actor entity.Actor) (*entity.Draw, error) {
	return s.decide(ctx, id, actor, entity.DrawDenied)
}

func (s *drawServiceImpl) decide(ctx context.Context, id int64, actor entity.Actor, status string) (*entity.Draw, error) {
	if !actor.CanApproveDraw() {
		return nil, &AuthorizationError{ActorID: actor.ID, Action: "decide a draw request"}
	}

	draw, err := s.draws.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if draw == nil {
		return nil, ErrNotFound
	}
	if draw.Status != entity.DrawRequested {
		return nil, ErrDrawDecided
	}

	now := s.clock()
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.draws.Decide(txCtx, id, status, actor.ID, now); err != nil {
			return err
		}
		if status == entity.DrawApproved {
			return s.draws.AppendLedger(txCtx, &entity.DrawLedgerEntry{
				RepID:     draw.RepID,
				DrawID:    &draw.ID,
				Kind:      entity.DrawEntryTaken,
				Amount:    draw.Amount,
				Timestamp: now,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	draw.Status = status
	draw.DecidedBy = actor.ID
	draw.DecidedAt = &now

	s.logger.Info("Draw decided", "id", id, "status", status, "actor_id", actor.ID)
	s.events.DispatchAsync(ctx, event.NewEvent(event.TypeDrawDecided, draw.ID, actor.ID, map[string]interface{}{
		"rep_id": draw.RepID,
		"status": status,
		"amount": draw.Amount.StringFixed(2),
	}))
	return draw, nil
}

// RecordPayback appends a "paid back" ledger entry, reducing the rep's
// outstanding draw balance.
func (s *drawServiceImpl) RecordPayback(ctx context.Context, repID string, amount decimal.Decimal, actor entity.Actor) error {
	if !actor.CanApproveDraw() {
		return &AuthorizationError{ActorID: actor.ID, Action: "record a draw payback"}
	}
	if !amount.IsPositive() {
		return ErrInvalidDrawAmount
	}

	return s.draws.AppendLedger(ctx, &entity.DrawLedgerEntry{
		RepID:     repID,
		Kind:      entity.DrawEntryPaidBack,
		Amount:    amount,
		Timestamp: s.clock(),
	})
}

func (s *drawServiceImpl) Get(ctx context.Context, id int64) (*entity.Draw, error) {
	draw, err := s.draws.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if draw == nil {
		return nil, ErrNotFound
	}
	return draw, nil
}

func (s *drawServiceImpl) ListByRep(ctx context.Context, repID string) ([]*entity.Draw, error) {
	return s.draws.ListByRep(ctx, repID)
}

// Balance recomputes the outstanding balance from the ledger on every call
// rather than reading a stored total.
func (s *drawServiceImpl) Balance(ctx context.Context, repID string) (decimal.Decimal, error) {
	entries, err := s.draws.LedgerByRep(ctx, repID)
	if err != nil {
		return decimal.Zero, err
	}
	return entity.DrawBalance(entries), nil
}
