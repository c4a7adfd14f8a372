package entity

import "time"

// StatusLogEntry is one row of the append-only audit trail. A row is written
// in the same transaction as its transition; the compliance exporter consumes
// this log read-only.
type StatusLogEntry struct {
	ID             int64     `json:"id"`
	RequestID      int64     `json:"request_id"`
	PreviousStatus string    `json:"previous_status"`
	NewStatus      string    `json:"new_status"`
	ChangedBy      string    `json:"changed_by"`
	Notes          string    `json:"notes"`
	Timestamp      time.Time `json:"timestamp"`
}
