package entity

// Role is the actor role supplied by the identity provider. The engine
// trusts it and performs no authentication of its own.
type Role string

const (
	RoleEmployee     Role = "employee"
	RoleManager      Role = "manager"
	RoleAccounting   Role = "accounting"
	RoleAdmin        Role = "admin"
	RoleSalesRep     Role = "sales_rep"
	RoleSalesManager Role = "sales_manager"
)

// Actor is the current authenticated user as an opaque fact: id, display
// name, and role.
type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// CanReviewAsManager reports whether the actor may act on the manager stage.
func (a Actor) CanReviewAsManager() bool {
	switch a.Role {
	case RoleManager, RoleSalesManager, RoleAdmin:
		return true
	}
	return false
}

// CanFinalApprove reports whether the actor may act on the given final review
// stage. Accounting owns the accounting queue; admins own the admin queue and
// may also cover accounting.
func (a Actor) CanFinalApprove(stage string) bool {
	switch stage {
	case StagePendingAccounting:
		return a.Role == RoleAccounting || a.Role == RoleAdmin
	case StagePendingAdmin:
		return a.Role == RoleAdmin
	}
	return false
}

// CanReview reports whether the actor may request a revision or deny from any
// pending stage.
func (a Actor) CanReview() bool {
	switch a.Role {
	case RoleManager, RoleSalesManager, RoleAccounting, RoleAdmin:
		return true
	}
	return false
}

// CanPayout reports whether the actor may mark an approved commission paid.
func (a Actor) CanPayout() bool {
	return a.Role == RoleAccounting || a.Role == RoleAdmin
}

// CanApproveDraw reports whether the actor may decide a draw request.
func (a Actor) CanApproveDraw() bool {
	switch a.Role {
	case RoleManager, RoleSalesManager, RoleAccounting, RoleAdmin:
		return true
	}
	return false
}
