package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/crestline/roofops-commissions/internal/application/port"
	"github.com/crestline/roofops-commissions/internal/domain/entity"
	"github.com/crestline/roofops-commissions/internal/infrastructure/persistence/sqlite"
)

// CommissionRepository implements port.CommissionRepository on sqlite.
// Decimal columns are TEXT and go through decimal's Scanner/Valuer, so
// amounts stay exact; version is the compare-and-swap token and only Update
// may bump it.
type CommissionRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewCommissionRepository creates a new commission repository
func NewCommissionRepository(db *sqlite.DB, logger *zap.Logger) port.CommissionRepository {
	return &CommissionRepository{
		db:     db,
		logger: logger,
	}
}

const commissionColumns = `
	id, submitter_id, kind, variant, created_at, updated_at,
	job_name, job_address, job_reference, job_type, roof_type,
	contract_date, completion_date,
	rep_id, rep_name, rep_role, tier_label, override_percent,
	gross_contract_total, op_percent, material_cost, labor_cost,
	neg_expense_1, neg_expense_2, neg_expense_3, neg_expense_4,
	pos_expense_1, pos_expense_2, pos_expense_3, pos_expense_4,
	rep_profit_percent,
	contract_amount, supplements_approved, commission_rate, advances_paid,
	is_flat_fee, flat_fee_amount,
	op_amount, contract_net, net_profit, rep_commission, company_profit,
	total_job_revenue, gross_commission, net_commission_owed,
	status, approval_stage, revision_count, is_manager_submission,
	scheduled_pay_date, rejection_reason, reviewer_notes, version,
	manager_approved_at, manager_approved_by, approved_at, approved_by,
	denied_at, denied_by, paid_at, paid_by`

// Create inserts a new commission request with version 1.
func (r *CommissionRepository) Create(ctx context.Context, req *entity.CommissionRequest) error {
	query := `
		INSERT INTO commission_requests (
			submitter_id, kind, variant, created_at, updated_at,
			job_name, job_address, job_reference, job_type, roof_type,
			contract_date, completion_date,
			rep_id, rep_name, rep_role, tier_label, override_percent,
			gross_contract_total, op_percent, material_cost, labor_cost,
			neg_expense_1, neg_expense_2, neg_expense_3, neg_expense_4,
			pos_expense_1, pos_expense_2, pos_expense_3, pos_expense_4,
			rep_profit_percent,
			contract_amount, supplements_approved, commission_rate, advances_paid,
			is_flat_fee, flat_fee_amount,
			op_amount, contract_net, net_profit, rep_commission, company_profit,
			total_job_revenue, gross_commission, net_commission_owed,
			status, approval_stage, revision_count, is_manager_submission,
			rejection_reason, reviewer_notes, version
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
		          ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
		          ?, ?, ?, ?, ?, ?, ?, ?, 1)
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		req.SubmitterID, req.Kind, req.Variant, req.CreatedAt, req.UpdatedAt,
		req.JobName, req.JobAddress, req.JobReference, req.JobType, req.RoofType,
		nullTime(req.ContractDate), nullTime(req.CompletionDate),
		req.RepID, req.RepName, req.RepRole, req.TierLabel, nullDecimal(req.OverridePercent),
		req.GrossContractTotal, req.OPPercent, req.MaterialCost, req.LaborCost,
		req.NegExpense1, req.NegExpense2, req.NegExpense3, req.NegExpense4,
		req.PosExpense1, req.PosExpense2, req.PosExpense3, req.PosExpense4,
		req.RepProfitPercent,
		req.ContractAmount, req.SupplementsApproved, req.CommissionRate, req.AdvancesPaid,
		req.IsFlatFee, req.FlatFeeAmount,
		req.OPAmount, req.ContractNet, req.NetProfit, req.RepCommission, req.CompanyProfit,
		req.TotalJobRevenue, req.GrossCommission, req.NetCommissionOwed,
		req.Status, req.ApprovalStage, req.RevisionCount, req.IsManagerSubmission,
		req.RejectionReason, req.ReviewerNotes,
	)
	if err != nil {
		r.logger.Error("Failed to create commission request",
			zap.String("submitter_id", req.SubmitterID),
			zap.Error(err))
		return fmt.Errorf("failed to create commission request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	req.ID = id
	req.Version = 1
	return nil
}

// GetByID retrieves a commission request, nil when absent.
func (r *CommissionRepository) GetByID(ctx context.Context, id int64) (*entity.CommissionRequest, error) {
	query := `SELECT ` + commissionColumns + ` FROM commission_requests WHERE id = ?`

	row := r.db.Executor(ctx).QueryRowContext(ctx, query, id)
	req, err := scanCommission(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get commission request: %w", err)
	}
	return req, nil
}

// List retrieves requests newest first, optionally filtered by status.
func (r *CommissionRepository) List(ctx context.Context, status string, limit, offset int) ([]*entity.CommissionRequest, error) {
	query := `SELECT ` + commissionColumns + ` FROM commission_requests`
	args := []interface{}{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, normalizeLimit(limit), offset)

	return r.queryMany(ctx, query, args...)
}

// ListByRep retrieves a rep's requests newest first.
func (r *CommissionRepository) ListByRep(ctx context.Context, repID string, limit, offset int) ([]*entity.CommissionRequest, error) {
	query := `SELECT ` + commissionColumns + ` FROM commission_requests
		WHERE rep_id = ? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	return r.queryMany(ctx, query, repID, normalizeLimit(limit), offset)
}

// Update is the conditional write: it succeeds only when the stored version
// still equals expectedVersion, bumping it by one. A zero-row update means
// another writer got there first.
func (r *CommissionRepository) Update(ctx context.Context, req *entity.CommissionRequest, expectedVersion int64) error {
	query := `
		UPDATE commission_requests SET
			updated_at = ?,
			gross_contract_total = ?, op_percent = ?, material_cost = ?, labor_cost = ?,
			neg_expense_1 = ?, neg_expense_2 = ?, neg_expense_3 = ?, neg_expense_4 = ?,
			pos_expense_1 = ?, pos_expense_2 = ?, pos_expense_3 = ?, pos_expense_4 = ?,
			rep_profit_percent = ?,
			contract_amount = ?, supplements_approved = ?, commission_rate = ?, advances_paid = ?,
			is_flat_fee = ?, flat_fee_amount = ?,
			op_amount = ?, contract_net = ?, net_profit = ?, rep_commission = ?, company_profit = ?,
			total_job_revenue = ?, gross_commission = ?, net_commission_owed = ?,
			status = ?, approval_stage = ?, revision_count = ?,
			scheduled_pay_date = ?, rejection_reason = ?, reviewer_notes = ?,
			manager_approved_at = ?, manager_approved_by = ?,
			approved_at = ?, approved_by = ?,
			denied_at = ?, denied_by = ?,
			paid_at = ?, paid_by = ?,
			version = version + 1
		WHERE id = ? AND version = ?
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		req.UpdatedAt,
		req.GrossContractTotal, req.OPPercent, req.MaterialCost, req.LaborCost,
		req.NegExpense1, req.NegExpense2, req.NegExpense3, req.NegExpense4,
		req.PosExpense1, req.PosExpense2, req.PosExpense3, req.PosExpense4,
		req.RepProfitPercent,
		req.ContractAmount, req.SupplementsApproved, req.CommissionRate, req.AdvancesPaid,
		req.IsFlatFee, req.FlatFeeAmount,
		req.OPAmount, req.ContractNet, req.NetProfit, req.RepCommission, req.CompanyProfit,
		req.TotalJobRevenue, req.GrossCommission, req.NetCommissionOwed,
		req.Status, req.ApprovalStage, req.RevisionCount,
		nullTime(req.ScheduledPayDate), req.RejectionReason, req.ReviewerNotes,
		nullTime(req.ManagerApprovedAt), req.ManagerApprovedBy,
		nullTime(req.ApprovedAt), req.ApprovedBy,
		nullTime(req.DeniedAt), req.DeniedBy,
		nullTime(req.PaidAt), req.PaidBy,
		req.ID, expectedVersion,
	)
	if err != nil {
		r.logger.Error("Failed to update commission request",
			zap.Int64("id", req.ID),
			zap.Int64("expected_version", expectedVersion),
			zap.Error(err))
		return fmt.Errorf("failed to update commission request: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		r.logger.Info("Conditional update lost the race",
			zap.Int64("id", req.ID),
			zap.Int64("expected_version", expectedVersion))
		return port.ErrStaleState
	}

	req.Version = expectedVersion + 1
	return nil
}

func (r *CommissionRepository) queryMany(ctx context.Context, query string, args ...interface{}) ([]*entity.CommissionRequest, error) {
	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list commission requests: %w", err)
	}
	defer rows.Close()

	var out []*entity.CommissionRequest
	for rows.Next() {
		req, err := scanCommission(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan commission request: %w", err)
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

// scanner covers both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanCommission(s scanner) (*entity.CommissionRequest, error) {
	var req entity.CommissionRequest
	var contractDate, completionDate, scheduledPayDate sql.NullTime
	var managerApprovedAt, approvedAt, deniedAt, paidAt sql.NullTime
	var overridePercent decimal.NullDecimal

	err := s.Scan(
		&req.ID, &req.SubmitterID, &req.Kind, &req.Variant, &req.CreatedAt, &req.UpdatedAt,
		&req.JobName, &req.JobAddress, &req.JobReference, &req.JobType, &req.RoofType,
		&contractDate, &completionDate,
		&req.RepID, &req.RepName, &req.RepRole, &req.TierLabel, &overridePercent,
		&req.GrossContractTotal, &req.OPPercent, &req.MaterialCost, &req.LaborCost,
		&req.NegExpense1, &req.NegExpense2, &req.NegExpense3, &req.NegExpense4,
		&req.PosExpense1, &req.PosExpense2, &req.PosExpense3, &req.PosExpense4,
		&req.RepProfitPercent,
		&req.ContractAmount, &req.SupplementsApproved, &req.CommissionRate, &req.AdvancesPaid,
		&req.IsFlatFee, &req.FlatFeeAmount,
		&req.OPAmount, &req.ContractNet, &req.NetProfit, &req.RepCommission, &req.CompanyProfit,
		&req.TotalJobRevenue, &req.GrossCommission, &req.NetCommissionOwed,
		&req.Status, &req.ApprovalStage, &req.RevisionCount, &req.IsManagerSubmission,
		&scheduledPayDate, &req.RejectionReason, &req.ReviewerNotes, &req.Version,
		&managerApprovedAt, &req.ManagerApprovedBy, &approvedAt, &req.ApprovedBy,
		&deniedAt, &req.DeniedBy, &paidAt, &req.PaidBy,
	)
	if err != nil {
		return nil, err
	}

	if overridePercent.Valid {
		d := overridePercent.Decimal
		req.OverridePercent = &d
	}

	req.ContractDate = timePtr(contractDate)
	req.CompletionDate = timePtr(completionDate)
	req.ScheduledPayDate = timePtr(scheduledPayDate)
	req.ManagerApprovedAt = timePtr(managerApprovedAt)
	req.ApprovedAt = timePtr(approvedAt)
	req.DeniedAt = timePtr(deniedAt)
	req.PaidAt = timePtr(paidAt)

	return &req, nil
}

// Verify interface compliance
var _ port.CommissionRepository = (*CommissionRepository)(nil)
