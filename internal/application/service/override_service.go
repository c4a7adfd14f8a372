package service

import (
	"context"

	"github.com/crestline/roofops-commissions/internal/application/port"
	"github.com/crestline/roofops-commissions/internal/domain/entity"
)

// OverrideService is the read side of the override bonus phase. Credits are
// written by the approval flow; this only reports them.
type OverrideService interface {
	Phase(ctx context.Context, repID string) (*entity.OverridePhase, error)
	Credits(ctx context.Context, repID string) ([]*entity.OverrideCredit, error)
}

type overrideServiceImpl struct {
	overrides port.OverrideRepository
}

func NewOverrideService(overrides port.OverrideRepository) OverrideService {
	return &overrideServiceImpl{overrides: overrides}
}

func (s *overrideServiceImpl) Phase(ctx context.Context, repID string) (*entity.OverridePhase, error) {
	return s.overrides.PhaseFor(ctx, repID)
}

func (s *overrideServiceImpl) Credits(ctx context.Context, repID string) ([]*entity.OverrideCredit, error) {
	return s.overrides.ListByRep(ctx, repID)
}
