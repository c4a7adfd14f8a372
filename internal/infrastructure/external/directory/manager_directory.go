package directory

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/crestline/roofops-commissions/internal/application/port"
	"github.com/crestline/roofops-commissions/internal/infrastructure/persistence/sqlite"
)

// ManagerDirectory resolves a submitter's manager from the assignment table.
// Assignments are maintained by an outside admin process; the workflow only
// reads them, and a missing row is the "manager required" condition upstream.
type ManagerDirectory struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewManagerDirectory creates a new manager directory
func NewManagerDirectory(db *sqlite.DB, logger *zap.Logger) *ManagerDirectory {
	return &ManagerDirectory{
		db:     db,
		logger: logger,
	}
}

// ResolveManager implements port.ManagerLookup.
func (d *ManagerDirectory) ResolveManager(ctx context.Context, submitterID string) (string, bool, error) {
	var managerID string
	err := d.db.Executor(ctx).QueryRowContext(ctx,
		`SELECT manager_id FROM manager_assignments WHERE submitter_id = ?`, submitterID).Scan(&managerID)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		d.logger.Error("Failed to resolve manager",
			zap.String("submitter_id", submitterID),
			zap.Error(err))
		return "", false, fmt.Errorf("failed to resolve manager: %w", err)
	}
	return managerID, true, nil
}

// Assign upserts a submitter's manager assignment.
func (d *ManagerDirectory) Assign(ctx context.Context, submitterID, managerID string) error {
	_, err := d.db.Executor(ctx).ExecContext(ctx, `
		INSERT INTO manager_assignments (submitter_id, manager_id) VALUES (?, ?)
		ON CONFLICT(submitter_id) DO UPDATE SET manager_id = excluded.manager_id
	`, submitterID, managerID)
	if err != nil {
		return fmt.Errorf("failed to assign manager: %w", err)
	}
	return nil
}

// Verify interface compliance
var _ port.ManagerLookup = (*ManagerDirectory)(nil)
