package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Draw is a cash advance against a rep's future commissions. It runs a
// simpler two-state gate (requested → approved|denied) and does not use the
// full approval workflow.
type Draw struct {
	ID          int64           `json:"id"`
	RepID       string          `json:"rep_id"`
	RequestedBy string          `json:"requested_by"`
	Amount      decimal.Decimal `json:"amount"`
	Reason      string          `json:"reason,omitempty"`
	Status      string          `json:"status"` // requested | approved | denied
	DecidedBy   string          `json:"decided_by,omitempty"`
	DecidedAt   *time.Time      `json:"decided_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// DrawLedgerEntry is one signed row of a rep's draw ledger. The running
// balance is always derived by summing entries, never stored.
type DrawLedgerEntry struct {
	ID        int64           `json:"id"`
	RepID     string          `json:"rep_id"`
	DrawID    *int64          `json:"draw_id,omitempty"`
	Kind      string          `json:"kind"` // taken | paid_back
	Amount    decimal.Decimal `json:"amount"`
	Timestamp time.Time       `json:"timestamp"`
}

// DrawBalance computes taken minus paid-back over a rep's ledger entries.
func DrawBalance(entries []DrawLedgerEntry) decimal.Decimal {
	balance := decimal.Zero
	for _, e := range entries {
		switch e.Kind {
		case DrawEntryTaken:
			balance = balance.Add(e.Amount)
		case DrawEntryPaidBack:
			balance = balance.Sub(e.Amount)
		}
	}
	return balance
}
