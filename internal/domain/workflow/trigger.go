package workflow

// Trigger represents a reviewer or submitter action that can cause a state
// transition.
type Trigger string

const (
	TriggerManagerApprove  Trigger = "MANAGER_APPROVE"
	TriggerFinalApprove    Trigger = "FINAL_APPROVE"
	TriggerMarkPaid        Trigger = "MARK_PAID"
	TriggerRequestRevision Trigger = "REQUEST_REVISION"
	TriggerDeny            Trigger = "DENY"
	TriggerResubmit        Trigger = "RESUBMIT"
)

// String returns the string representation of the trigger.
func (t Trigger) String() string {
	return string(t)
}
