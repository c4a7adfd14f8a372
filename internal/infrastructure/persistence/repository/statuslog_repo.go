package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/crestline/roofops-commissions/internal/application/port"
	"github.com/crestline/roofops-commissions/internal/domain/entity"
	"github.com/crestline/roofops-commissions/internal/infrastructure/persistence/sqlite"
)

// StatusLogRepository implements the append-only audit trail. There is no
// update or delete path on purpose.
type StatusLogRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewStatusLogRepository creates a new status log repository
func NewStatusLogRepository(db *sqlite.DB, logger *zap.Logger) port.StatusLogRepository {
	return &StatusLogRepository{
		db:     db,
		logger: logger,
	}
}

// Append writes one transition record. Called inside the same transaction as
// the state change it describes.
func (r *StatusLogRepository) Append(ctx context.Context, e *entity.StatusLogEntry) error {
	query := `
		INSERT INTO status_log (request_id, previous_status, new_status, changed_by, notes, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		e.RequestID, e.PreviousStatus, e.NewStatus, e.ChangedBy, e.Notes, e.Timestamp)
	if err != nil {
		r.logger.Error("Failed to append status log entry",
			zap.Int64("request_id", e.RequestID),
			zap.Error(err))
		return fmt.Errorf("failed to append status log entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	e.ID = id
	return nil
}

// ListByRequestID returns a request's full history, oldest first.
func (r *StatusLogRepository) ListByRequestID(ctx context.Context, requestID int64) ([]*entity.StatusLogEntry, error) {
	query := `
		SELECT id, request_id, previous_status, new_status, changed_by, notes, timestamp
		FROM status_log WHERE request_id = ? ORDER BY id ASC
	`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list status log: %w", err)
	}
	defer rows.Close()

	var out []*entity.StatusLogEntry
	for rows.Next() {
		var e entity.StatusLogEntry
		if err := rows.Scan(&e.ID, &e.RequestID, &e.PreviousStatus, &e.NewStatus,
			&e.ChangedBy, &e.Notes, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan status log entry: %w", err)
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

// Verify interface compliance
var _ port.StatusLogRepository = (*StatusLogRepository)(nil)
