package statement

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/crestline/roofops-commissions/internal/domain/entity"
)

type stubCommissionRepo struct {
	byID map[int64]*entity.CommissionRequest
}

func (r *stubCommissionRepo) Create(ctx context.Context, req *entity.CommissionRequest) error {
	return nil
}

func (r *stubCommissionRepo) GetByID(ctx context.Context, id int64) (*entity.CommissionRequest, error) {
	return r.byID[id], nil
}

func (r *stubCommissionRepo) List(ctx context.Context, status string, limit, offset int) ([]*entity.CommissionRequest, error) {
	return nil, nil
}

func (r *stubCommissionRepo) ListByRep(ctx context.Context, repID string, limit, offset int) ([]*entity.CommissionRequest, error) {
	return nil, nil
}

func (r *stubCommissionRepo) Update(ctx context.Context, req *entity.CommissionRequest, expectedVersion int64) error {
	return nil
}

type recordingStore struct {
	requestID int64
	path      string
	calls     int
}

func (s *recordingStore) Record(ctx context.Context, requestID int64, path string, generatedAt time.Time) error {
	s.requestID = requestID
	s.path = path
	s.calls++
	return nil
}

func newTestService(t *testing.T, reqs ...*entity.CommissionRequest) (*Service, *recordingStore) {
	t.Helper()

	gen, err := NewGenerator(t.TempDir(), "Crestline Roofing", zap.NewNop())
	require.NoError(t, err)

	repo := &stubCommissionRepo{byID: make(map[int64]*entity.CommissionRequest)}
	for _, r := range reqs {
		repo.byID[r.ID] = r
	}
	store := &recordingStore{}
	return NewService(repo, gen, store), store
}

func approvedSubmission(id int64) *entity.CommissionRequest {
	payDate := time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)
	return &entity.CommissionRequest{
		ID:                  id,
		Variant:             entity.VariantSubmission,
		Status:              entity.StatusApproved,
		JobName:             "Maple St re-roof",
		JobAddress:          "412 Maple St",
		RepName:             "Jordan Pike",
		ContractAmount:      decimal.NewFromInt(18000),
		SupplementsApproved: decimal.NewFromInt(2000),
		TotalJobRevenue:     decimal.NewFromInt(20000),
		CommissionRate:      decimal.NewFromInt(15),
		GrossCommission:     decimal.NewFromInt(3000),
		NetCommissionOwed:   decimal.NewFromInt(3000),
		ScheduledPayDate:    &payDate,
	}
}

func TestGenerate_WritesWorkbookAndRecordsIt(t *testing.T) {
	svc, store := newTestService(t, approvedSubmission(7))

	path, err := svc.Generate(context.Background(), 7)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	assert.Equal(t, 1, store.calls)
	assert.Equal(t, int64(7), store.requestID)
	assert.Equal(t, path, store.path)
}

func TestGenerate_RejectsUnapprovedCommission(t *testing.T) {
	pending := approvedSubmission(3)
	pending.Status = entity.StatusPendingReview
	svc, store := newTestService(t, pending)

	_, err := svc.Generate(context.Background(), 3)
	assert.ErrorIs(t, err, ErrNotPayable)
	assert.Zero(t, store.calls)
}

func TestGenerate_UnknownRequest(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Generate(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNotFound)
}
