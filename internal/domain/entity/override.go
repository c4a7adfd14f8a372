package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OverrideCreditLimit is how many approved commissions earn the override
// bonus before a rep's phase completes, permanently.
const OverrideCreditLimit = 10

// OverrideRate is the fixed bonus rate applied to each qualifying commission.
var OverrideRate = decimal.RequireFromString("0.10")

// OverrideCredit is one row of a rep's override ledger: a bonus earned on a
// newly approved commission. The ledger is append-only and keyed by request
// id, so a retried approval cannot double-count.
type OverrideCredit struct {
	ID        int64           `json:"id"`
	RepID     string          `json:"rep_id"`
	RequestID int64           `json:"request_id"`
	Amount    decimal.Decimal `json:"amount"`
	Sequence  int             `json:"sequence"` // 1-based position within the phase
	Timestamp time.Time       `json:"timestamp"`
}

// OverridePhase is the derived view of a rep's override progress. The count
// is an aggregate over the credit ledger, not a hand-incremented field.
type OverridePhase struct {
	RepID         string     `json:"rep_id"`
	ApprovedCount int        `json:"approved_count"`
	Completed     bool       `json:"completed"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

// OverrideAmount returns the bonus a qualifying commission earns.
func OverrideAmount(netCommission decimal.Decimal) decimal.Decimal {
	return netCommission.Mul(OverrideRate)
}
