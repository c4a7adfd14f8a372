package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/crestline/roofops-commissions/internal/application/port"
	"github.com/crestline/roofops-commissions/internal/domain/entity"
	"github.com/crestline/roofops-commissions/internal/infrastructure/persistence/sqlite"
)

// OverrideRepository implements the override credit ledger. Credits are
// append-only with a unique request id, and the phase view is derived by
// counting them rather than reading a stored counter.
type OverrideRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewOverrideRepository creates a new override repository
func NewOverrideRepository(db *sqlite.DB, logger *zap.Logger) port.OverrideRepository {
	return &OverrideRepository{
		db:     db,
		logger: logger,
	}
}

// AppendCredit writes one override credit. The unique index on request_id
// makes a replayed approval fail here instead of double-counting.
func (r *OverrideRepository) AppendCredit(ctx context.Context, c *entity.OverrideCredit) error {
	query := `
		INSERT INTO override_credits (rep_id, request_id, amount, sequence, timestamp)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		c.RepID, c.RequestID, c.Amount, c.Sequence, c.Timestamp)
	if err != nil {
		r.logger.Error("Failed to append override credit",
			zap.String("rep_id", c.RepID),
			zap.Int64("request_id", c.RequestID),
			zap.Error(err))
		return fmt.Errorf("failed to append override credit: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	c.ID = id
	return nil
}

// CreditForRequest returns the credit earned by a commission request, nil
// when none was.
func (r *OverrideRepository) CreditForRequest(ctx context.Context, requestID int64) (*entity.OverrideCredit, error) {
	query := `
		SELECT id, rep_id, request_id, amount, sequence, timestamp
		FROM override_credits WHERE request_id = ?
	`

	var c entity.OverrideCredit
	err := r.db.Executor(ctx).QueryRowContext(ctx, query, requestID).Scan(
		&c.ID, &c.RepID, &c.RequestID, &c.Amount, &c.Sequence, &c.Timestamp)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get override credit: %w", err)
	}
	return &c, nil
}

// CountByRep counts a rep's earned credits.
func (r *OverrideRepository) CountByRep(ctx context.Context, repID string) (int, error) {
	var count int
	err := r.db.Executor(ctx).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM override_credits WHERE rep_id = ?`, repID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count override credits: %w", err)
	}
	return count, nil
}

// ListByRep returns a rep's credits in earning order.
func (r *OverrideRepository) ListByRep(ctx context.Context, repID string) ([]*entity.OverrideCredit, error) {
	query := `
		SELECT id, rep_id, request_id, amount, sequence, timestamp
		FROM override_credits WHERE rep_id = ? ORDER BY sequence ASC
	`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, repID)
	if err != nil {
		return nil, fmt.Errorf("failed to list override credits: %w", err)
	}
	defer rows.Close()

	var out []*entity.OverrideCredit
	for rows.Next() {
		var c entity.OverrideCredit
		if err := rows.Scan(&c.ID, &c.RepID, &c.RequestID, &c.Amount, &c.Sequence, &c.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan override credit: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

// PhaseFor derives the rep's phase: credit count plus the permanent
// completion marker.
func (r *OverrideRepository) PhaseFor(ctx context.Context, repID string) (*entity.OverridePhase, error) {
	count, err := r.CountByRep(ctx, repID)
	if err != nil {
		return nil, err
	}

	var completedAt sql.NullTime
	err = r.db.Executor(ctx).QueryRowContext(ctx,
		`SELECT completed_at FROM override_phases WHERE rep_id = ?`, repID).Scan(&completedAt)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to get override phase: %w", err)
	}

	return &entity.OverridePhase{
		RepID:         repID,
		ApprovedCount: count,
		Completed:     completedAt.Valid,
		CompletedAt:   timePtr(completedAt),
	}, nil
}

// MarkPhaseCompleted records the permanent completion marker. Idempotent.
func (r *OverrideRepository) MarkPhaseCompleted(ctx context.Context, repID string, at time.Time) error {
	query := `
		INSERT INTO override_phases (rep_id, completed_at) VALUES (?, ?)
		ON CONFLICT(rep_id) DO NOTHING
	`

	if _, err := r.db.Executor(ctx).ExecContext(ctx, query, repID, at); err != nil {
		r.logger.Error("Failed to mark override phase completed",
			zap.String("rep_id", repID),
			zap.Error(err))
		return fmt.Errorf("failed to mark override phase completed: %w", err)
	}
	return nil
}

// Verify interface compliance
var _ port.OverrideRepository = (*OverrideRepository)(nil)
