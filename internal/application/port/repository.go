package port

import (
	"context"
	"errors"
	"time"

	"github.com/crestline/roofops-commissions/internal/domain/entity"
)

// ErrStaleState is returned by conditional writes when the stored row no
// longer matches the expected prior state. The caller must re-fetch and
// retry, or tell the user the request already moved on.
var ErrStaleState = errors.New("stored state changed since last read")

// CommissionRepository defines persistence operations for CommissionRequest.
// Update is a compare-and-swap: it writes only if the stored version equals
// expectedVersion, bumping the version on success and returning ErrStaleState
// otherwise. Blind updates of workflow fields do not exist.
type CommissionRepository interface {
	Create(ctx context.Context, req *entity.CommissionRequest) error
	GetByID(ctx context.Context, id int64) (*entity.CommissionRequest, error)
	List(ctx context.Context, status string, limit, offset int) ([]*entity.CommissionRequest, error)
	ListByRep(ctx context.Context, repID string, limit, offset int) ([]*entity.CommissionRequest, error)
	Update(ctx context.Context, req *entity.CommissionRequest, expectedVersion int64) error
}

// StatusLogRepository defines the append-only audit trail store.
type StatusLogRepository interface {
	Append(ctx context.Context, e *entity.StatusLogEntry) error
	ListByRequestID(ctx context.Context, requestID int64) ([]*entity.StatusLogEntry, error)
}

// DrawRepository defines persistence for draws and the signed draw ledger.
// Decide is conditional on the draw still being in the requested state.
type DrawRepository interface {
	Create(ctx context.Context, d *entity.Draw) error
	GetByID(ctx context.Context, id int64) (*entity.Draw, error)
	ListByRep(ctx context.Context, repID string) ([]*entity.Draw, error)
	Decide(ctx context.Context, id int64, status, decidedBy string, decidedAt time.Time) error
	AppendLedger(ctx context.Context, e *entity.DrawLedgerEntry) error
	LedgerByRep(ctx context.Context, repID string) ([]entity.DrawLedgerEntry, error)
}

// OverrideRepository defines the append-only override credit ledger and the
// derived phase view. AppendCredit must reject a duplicate request id so a
// retried approval cannot double-count.
type OverrideRepository interface {
	AppendCredit(ctx context.Context, c *entity.OverrideCredit) error
	CreditForRequest(ctx context.Context, requestID int64) (*entity.OverrideCredit, error)
	CountByRep(ctx context.Context, repID string) (int, error)
	ListByRep(ctx context.Context, repID string) ([]*entity.OverrideCredit, error)
	PhaseFor(ctx context.Context, repID string) (*entity.OverridePhase, error)
	MarkPhaseCompleted(ctx context.Context, repID string, at time.Time) error
}

// TransactionManager executes a function within a database transaction
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
