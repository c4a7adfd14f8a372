package event

// Type identifies the type of domain event
type Type string

const (
	TypeSubmitted        Type = "commission.submitted"
	TypeManagerApproved  Type = "commission.manager_approved"
	TypeApproved         Type = "commission.approved"
	TypePaid             Type = "commission.paid"
	TypeRevisionRequired Type = "commission.revision_required"
	TypeDenied           Type = "commission.denied"
	TypeDrawRequested    Type = "draw.requested"
	TypeDrawDecided      Type = "draw.decided"
	TypeOverrideEarned   Type = "override.earned"
)

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypeSubmitted,
		TypeManagerApproved,
		TypeApproved,
		TypePaid,
		TypeRevisionRequired,
		TypeDenied,
		TypeDrawRequested,
		TypeDrawDecided,
		TypeOverrideEarned:
		return true
	default:
		return false
	}
}
