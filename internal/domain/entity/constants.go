package entity

// Status values for CommissionRequest
const (
	StatusPendingReview    = "pending_review"
	StatusRevisionRequired = "revision_required"
	StatusApproved         = "approved"
	StatusDenied           = "denied"
	StatusPaid             = "paid"
)

// Approval stage values; empty means no stage applies (terminal statuses)
const (
	StagePendingManager    = "pending_manager"
	StagePendingAccounting = "pending_accounting"
	StagePendingAdmin      = "pending_admin"
	StageCompleted         = "completed"
)

// Worksheet variants
const (
	VariantSubmission = "submission"
	VariantDocument   = "document"
)

// Submission kinds
const (
	KindEmployee      = "employee"
	KindSubcontractor = "subcontractor"
)

// Rep roles
const (
	RepRoleSetter = "setter"
	RepRoleCloser = "closer"
	RepRoleHybrid = "hybrid"
)

// Draw statuses
const (
	DrawRequested = "requested"
	DrawApproved  = "approved"
	DrawDenied    = "denied"
)

// Draw ledger entry kinds
const (
	DrawEntryTaken    = "taken"
	DrawEntryPaidBack = "paid_back"
)
