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

// DrawRepository implements draw persistence. The decision write is
// conditional on the draw still being requested, and the signed ledger is
// append-only.
type DrawRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewDrawRepository creates a new draw repository
func NewDrawRepository(db *sqlite.DB, logger *zap.Logger) port.DrawRepository {
	return &DrawRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new draw in the requested state.
func (r *DrawRepository) Create(ctx context.Context, d *entity.Draw) error {
	query := `
		INSERT INTO draws (rep_id, requested_by, amount, reason, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		d.RepID, d.RequestedBy, d.Amount, d.Reason, d.Status, d.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to create draw",
			zap.String("rep_id", d.RepID),
			zap.Error(err))
		return fmt.Errorf("failed to create draw: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	d.ID = id
	return nil
}

// GetByID retrieves a draw, nil when absent.
func (r *DrawRepository) GetByID(ctx context.Context, id int64) (*entity.Draw, error) {
	query := `
		SELECT id, rep_id, requested_by, amount, reason, status, decided_by, decided_at, created_at
		FROM draws WHERE id = ?
	`

	d, err := scanDraw(r.db.Executor(ctx).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get draw: %w", err)
	}
	return d, nil
}

// ListByRep returns a rep's draws, newest first.
func (r *DrawRepository) ListByRep(ctx context.Context, repID string) ([]*entity.Draw, error) {
	query := `
		SELECT id, rep_id, requested_by, amount, reason, status, decided_by, decided_at, created_at
		FROM draws WHERE rep_id = ? ORDER BY created_at DESC, id DESC
	`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, repID)
	if err != nil {
		return nil, fmt.Errorf("failed to list draws: %w", err)
	}
	defer rows.Close()

	var out []*entity.Draw
	for rows.Next() {
		d, err := scanDraw(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan draw: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Decide records the approval or denial, but only while the draw is still
// requested. A zero-row update means it was already decided.
func (r *DrawRepository) Decide(ctx context.Context, id int64, status, decidedBy string, decidedAt time.Time) error {
	query := `
		UPDATE draws SET status = ?, decided_by = ?, decided_at = ?
		WHERE id = ? AND status = ?
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		status, decidedBy, decidedAt, id, entity.DrawRequested)
	if err != nil {
		r.logger.Error("Failed to decide draw",
			zap.Int64("id", id),
			zap.String("status", status),
			zap.Error(err))
		return fmt.Errorf("failed to decide draw: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return port.ErrStaleState
	}
	return nil
}

// AppendLedger writes one signed ledger row.
func (r *DrawRepository) AppendLedger(ctx context.Context, e *entity.DrawLedgerEntry) error {
	query := `
		INSERT INTO draw_ledger (rep_id, draw_id, kind, amount, timestamp)
		VALUES (?, ?, ?, ?, ?)
	`

	var drawID sql.NullInt64
	if e.DrawID != nil {
		drawID = sql.NullInt64{Int64: *e.DrawID, Valid: true}
	}

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		e.RepID, drawID, e.Kind, e.Amount, e.Timestamp)
	if err != nil {
		r.logger.Error("Failed to append draw ledger entry",
			zap.String("rep_id", e.RepID),
			zap.Error(err))
		return fmt.Errorf("failed to append draw ledger entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	e.ID = id
	return nil
}

// LedgerByRep returns a rep's ledger entries, oldest first.
func (r *DrawRepository) LedgerByRep(ctx context.Context, repID string) ([]entity.DrawLedgerEntry, error) {
	query := `
		SELECT id, rep_id, draw_id, kind, amount, timestamp
		FROM draw_ledger WHERE rep_id = ? ORDER BY id ASC
	`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, repID)
	if err != nil {
		return nil, fmt.Errorf("failed to list draw ledger: %w", err)
	}
	defer rows.Close()

	var out []entity.DrawLedgerEntry
	for rows.Next() {
		var e entity.DrawLedgerEntry
		var drawID sql.NullInt64
		if err := rows.Scan(&e.ID, &e.RepID, &drawID, &e.Kind, &e.Amount, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan draw ledger entry: %w", err)
		}
		if drawID.Valid {
			v := drawID.Int64
			e.DrawID = &v
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanDraw(s scanner) (*entity.Draw, error) {
	var d entity.Draw
	var decidedBy sql.NullString
	var decidedAt sql.NullTime

	if err := s.Scan(&d.ID, &d.RepID, &d.RequestedBy, &d.Amount, &d.Reason,
		&d.Status, &decidedBy, &decidedAt, &d.CreatedAt); err != nil {
		return nil, err
	}

	d.DecidedBy = decidedBy.String
	d.DecidedAt = timePtr(decidedAt)
	return &d, nil
}

// Verify interface compliance
var _ port.DrawRepository = (*DrawRepository)(nil)
