package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// CommissionRequest is the canonical commission entity. It appears in two
// variants sharing one lifecycle: the submission worksheet (contract +
// supplements − advances) and the document O&P worksheet. Workflow fields are
// mutated only through approval transitions, never free-form.
type CommissionRequest struct {
	ID          int64     `json:"id"`
	SubmitterID string    `json:"submitter_id"`
	Kind        string    `json:"kind"`    // employee | subcontractor
	Variant     string    `json:"variant"` // submission | document
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Job facts
	JobName        string     `json:"job_name"`
	JobAddress     string     `json:"job_address"`
	JobReference   string     `json:"job_reference"`
	JobType        string     `json:"job_type"`
	RoofType       string     `json:"roof_type"`
	ContractDate   *time.Time `json:"contract_date,omitempty"`
	CompletionDate *time.Time `json:"completion_date,omitempty"`

	// Rep facts
	RepID           string           `json:"rep_id"`
	RepName         string           `json:"rep_name"`
	RepRole         string           `json:"rep_role"` // setter | closer | hybrid
	TierLabel       string           `json:"tier_label"`
	OverridePercent *decimal.Decimal `json:"override_percent,omitempty"`

	// Financial inputs for the document worksheet
	GrossContractTotal decimal.Decimal `json:"gross_contract_total"`
	OPPercent          decimal.Decimal `json:"op_percent"`
	MaterialCost       decimal.Decimal `json:"material_cost"`
	LaborCost          decimal.Decimal `json:"labor_cost"`
	NegExpense1        decimal.Decimal `json:"neg_expense_1"`
	NegExpense2        decimal.Decimal `json:"neg_expense_2"`
	NegExpense3        decimal.Decimal `json:"neg_expense_3"`
	NegExpense4        decimal.Decimal `json:"neg_expense_4"`
	PosExpense1        decimal.Decimal `json:"pos_expense_1"`
	PosExpense2        decimal.Decimal `json:"pos_expense_2"`
	PosExpense3        decimal.Decimal `json:"pos_expense_3"`
	PosExpense4        decimal.Decimal `json:"pos_expense_4"`
	RepProfitPercent   decimal.Decimal `json:"rep_profit_percent"`

	// Financial inputs for the submission worksheet
	ContractAmount      decimal.Decimal `json:"contract_amount"`
	SupplementsApproved decimal.Decimal `json:"supplements_approved"`
	CommissionRate      decimal.Decimal `json:"commission_rate"` // whole-number percent
	AdvancesPaid        decimal.Decimal `json:"advances_paid"`
	IsFlatFee           bool            `json:"is_flat_fee"`
	FlatFeeAmount       decimal.Decimal `json:"flat_fee_amount"`

	// Derived outputs for the document worksheet. Computed from inputs, never
	// hand-edited.
	OPAmount      decimal.Decimal `json:"op_amount"`
	ContractNet   decimal.Decimal `json:"contract_net"`
	NetProfit     decimal.Decimal `json:"net_profit"`
	RepCommission decimal.Decimal `json:"rep_commission"`
	CompanyProfit decimal.Decimal `json:"company_profit"`

	// Derived outputs for the submission worksheet
	TotalJobRevenue   decimal.Decimal `json:"total_job_revenue"`
	GrossCommission   decimal.Decimal `json:"gross_commission"`
	NetCommissionOwed decimal.Decimal `json:"net_commission_owed"`

	// Workflow state
	Status              string     `json:"status"`
	ApprovalStage       string     `json:"approval_stage"`
	RevisionCount       int        `json:"revision_count"`
	IsManagerSubmission bool       `json:"is_manager_submission"`
	ScheduledPayDate    *time.Time `json:"scheduled_pay_date,omitempty"`
	RejectionReason     string     `json:"rejection_reason,omitempty"`
	ReviewerNotes       string     `json:"reviewer_notes,omitempty"`

	// Version is the optimistic-concurrency token; every workflow write is
	// conditional on it.
	Version int64 `json:"version"`

	// Audit stamps
	ManagerApprovedAt *time.Time `json:"manager_approved_at,omitempty"`
	ManagerApprovedBy string     `json:"manager_approved_by,omitempty"`
	ApprovedAt        *time.Time `json:"approved_at,omitempty"`
	ApprovedBy        string     `json:"approved_by,omitempty"`
	DeniedAt          *time.Time `json:"denied_at,omitempty"`
	DeniedBy          string     `json:"denied_by,omitempty"`
	PaidAt            *time.Time `json:"paid_at,omitempty"`
	PaidBy            string     `json:"paid_by,omitempty"`
}

// IsTerminal reports whether the request can accept no further transitions.
func (c *CommissionRequest) IsTerminal() bool {
	return c.Status == StatusDenied || c.Status == StatusPaid
}

// PayableAmount is the amount owed to the rep for this request's variant.
func (c *CommissionRequest) PayableAmount() decimal.Decimal {
	if c.Variant == VariantDocument {
		return c.RepCommission
	}
	return c.NetCommissionOwed
}
