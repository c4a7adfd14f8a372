package repository

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/crestline/roofops-commissions/internal/infrastructure/persistence/sqlite"
	"github.com/crestline/roofops-commissions/internal/statement"
)

// StatementRepository records generated payout statements.
type StatementRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewStatementRepository creates a new statement repository
func NewStatementRepository(db *sqlite.DB, logger *zap.Logger) *StatementRepository {
	return &StatementRepository{
		db:     db,
		logger: logger,
	}
}

// Record implements statement.Store.
func (r *StatementRepository) Record(ctx context.Context, requestID int64, path string, generatedAt time.Time) error {
	_, err := r.db.Executor(ctx).ExecContext(ctx,
		`INSERT INTO payout_statements (request_id, file_path, generated_at) VALUES (?, ?, ?)`,
		requestID, path, generatedAt)
	if err != nil {
		r.logger.Error("Failed to record payout statement",
			zap.Int64("request_id", requestID),
			zap.Error(err))
		return fmt.Errorf("failed to record payout statement: %w", err)
	}
	return nil
}

// Verify interface compliance
var _ statement.Store = (*StatementRepository)(nil)
