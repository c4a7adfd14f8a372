package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/crestline/roofops-commissions/internal/application/port"
	"github.com/crestline/roofops-commissions/internal/domain/entity"
)

// In-memory fakes shared by the service tests. The commission repo enforces
// the same compare-and-swap contract as the sqlite implementation so the
// conflict paths are exercised for real.

type memCommissionRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*entity.CommissionRequest

	// staleRead, when set, is served by GetByID instead of the stored row.
	// Lets a test replay the second half of a read-then-write race.
	staleRead *entity.CommissionRequest
}

func newMemCommissionRepo() *memCommissionRepo {
	return &memCommissionRepo{nextID: 1, rows: make(map[int64]*entity.CommissionRequest)}
}

func (r *memCommissionRepo) Create(ctx context.Context, req *entity.CommissionRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req.ID = r.nextID
	r.nextID++
	req.Version = 1
	cp := *req
	r.rows[req.ID] = &cp
	return nil
}

func (r *memCommissionRepo) GetByID(ctx context.Context, id int64) (*entity.CommissionRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.staleRead != nil && r.staleRead.ID == id {
		cp := *r.staleRead
		return &cp, nil
	}
	row, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *row
	return &cp, nil
}

func (r *memCommissionRepo) List(ctx context.Context, status string, limit, offset int) ([]*entity.CommissionRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.CommissionRequest
	for _, row := range r.rows {
		if status == "" || row.Status == status {
			cp := *row
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memCommissionRepo) ListByRep(ctx context.Context, repID string, limit, offset int) ([]*entity.CommissionRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.CommissionRequest
	for _, row := range r.rows {
		if row.RepID == repID {
			cp := *row
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memCommissionRepo) Update(ctx context.Context, req *entity.CommissionRequest, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[req.ID]
	if !ok {
		return errors.New("row missing")
	}
	if row.Version != expectedVersion {
		return port.ErrStaleState
	}
	req.Version = expectedVersion + 1
	cp := *req
	r.rows[req.ID] = &cp
	return nil
}

type memStatusLogRepo struct {
	mu      sync.Mutex
	nextID  int64
	entries []*entity.StatusLogEntry
}

func newMemStatusLogRepo() *memStatusLogRepo {
	return &memStatusLogRepo{nextID: 1}
}

func (r *memStatusLogRepo) Append(ctx context.Context, e *entity.StatusLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.ID = r.nextID
	r.nextID++
	cp := *e
	r.entries = append(r.entries, &cp)
	return nil
}

func (r *memStatusLogRepo) ListByRequestID(ctx context.Context, requestID int64) ([]*entity.StatusLogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.StatusLogEntry
	for _, e := range r.entries {
		if e.RequestID == requestID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memDrawRepo struct {
	mu     sync.Mutex
	nextID int64
	draws  map[int64]*entity.Draw
	ledger []entity.DrawLedgerEntry
}

func newMemDrawRepo() *memDrawRepo {
	return &memDrawRepo{nextID: 1, draws: make(map[int64]*entity.Draw)}
}

func (r *memDrawRepo) Create(ctx context.Context, d *entity.Draw) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d.ID = r.nextID
	r.nextID++
	cp := *d
	r.draws[d.ID] = &cp
	return nil
}

func (r *memDrawRepo) GetByID(ctx context.Context, id int64) (*entity.Draw, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.draws[id]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (r *memDrawRepo) ListByRep(ctx context.Context, repID string) ([]*entity.Draw, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Draw
	for _, d := range r.draws {
		if d.RepID == repID {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memDrawRepo) Decide(ctx context.Context, id int64, status, decidedBy string, decidedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.draws[id]
	if !ok || d.Status != entity.DrawRequested {
		return port.ErrStaleState
	}
	d.Status = status
	d.DecidedBy = decidedBy
	at := decidedAt
	d.DecidedAt = &at
	return nil
}

func (r *memDrawRepo) AppendLedger(ctx context.Context, e *entity.DrawLedgerEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.ID = int64(len(r.ledger) + 1)
	r.ledger = append(r.ledger, *e)
	return nil
}

func (r *memDrawRepo) LedgerByRep(ctx context.Context, repID string) ([]entity.DrawLedgerEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.DrawLedgerEntry
	for _, e := range r.ledger {
		if e.RepID == repID {
			out = append(out, e)
		}
	}
	return out, nil
}

type memOverrideRepo struct {
	mu        sync.Mutex
	nextID    int64
	credits   []*entity.OverrideCredit
	completed map[string]*time.Time
}

func newMemOverrideRepo() *memOverrideRepo {
	return &memOverrideRepo{nextID: 1, completed: make(map[string]*time.Time)}
}

func (r *memOverrideRepo) AppendCredit(ctx context.Context, c *entity.OverrideCredit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.credits {
		if existing.RequestID == c.RequestID {
			return errors.New("duplicate request id")
		}
	}
	c.ID = r.nextID
	r.nextID++
	cp := *c
	r.credits = append(r.credits, &cp)
	return nil
}

func (r *memOverrideRepo) CreditForRequest(ctx context.Context, requestID int64) (*entity.OverrideCredit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.credits {
		if c.RequestID == requestID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memOverrideRepo) CountByRep(ctx context.Context, repID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.countLocked(repID), nil
}

func (r *memOverrideRepo) countLocked(repID string) int {
	n := 0
	for _, c := range r.credits {
		if c.RepID == repID {
			n++
		}
	}
	return n
}

func (r *memOverrideRepo) ListByRep(ctx context.Context, repID string) ([]*entity.OverrideCredit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.OverrideCredit
	for _, c := range r.credits {
		if c.RepID == repID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memOverrideRepo) PhaseFor(ctx context.Context, repID string) (*entity.OverridePhase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	at := r.completed[repID]
	return &entity.OverridePhase{
		RepID:         repID,
		ApprovedCount: r.countLocked(repID),
		Completed:     at != nil,
		CompletedAt:   at,
	}, nil
}

func (r *memOverrideRepo) MarkPhaseCompleted(ctx context.Context, repID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := at
	r.completed[repID] = &t
	return nil
}

type fakeManagerLookup struct {
	managers map[string]string
}

func (f *fakeManagerLookup) ResolveManager(ctx context.Context, submitterID string) (string, bool, error) {
	id, ok := f.managers[submitterID]
	return id, ok, nil
}

// noopTxManager runs the function directly; transactional atomicity is the
// sqlite layer's concern and is tested there.
type noopTxManager struct{}

func (noopTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type nopLogger struct{}

func (nopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Error(msg string, keysAndValues ...interface{}) {}
