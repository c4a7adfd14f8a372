package statement

import (
	"context"
	"errors"
	"time"

	"github.com/crestline/roofops-commissions/internal/application/port"
	"github.com/crestline/roofops-commissions/internal/domain/entity"
)

// ErrNotPayable is returned when a statement is requested for a commission
// that has not been approved yet (or was denied).
var ErrNotPayable = errors.New("commission is not approved for payout")

// ErrNotFound is returned when the commission request does not exist.
var ErrNotFound = errors.New("commission request not found")

// Store records generated statements.
type Store interface {
	Record(ctx context.Context, requestID int64, path string, generatedAt time.Time) error
}

// Service generates and records payout statements.
type Service struct {
	commissions port.CommissionRepository
	generator   *Generator
	store       Store
	clock       func() time.Time
}

// NewService creates a new statement service
func NewService(commissions port.CommissionRepository, generator *Generator, store Store) *Service {
	return &Service{
		commissions: commissions,
		generator:   generator,
		store:       store,
		clock:       time.Now,
	}
}

// Generate renders a statement for an approved or paid commission and records
// it. Returns the file path.
func (s *Service) Generate(ctx context.Context, requestID int64) (string, error) {
	req, err := s.commissions.GetByID(ctx, requestID)
	if err != nil {
		return "", err
	}
	if req == nil {
		return "", ErrNotFound
	}
	if req.Status != entity.StatusApproved && req.Status != entity.StatusPaid {
		return "", ErrNotPayable
	}

	path, err := s.generator.Generate(req)
	if err != nil {
		return "", err
	}

	if err := s.store.Record(ctx, requestID, path, s.clock()); err != nil {
		return "", err
	}
	return path, nil
}
