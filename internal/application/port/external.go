package port

import (
	"context"

	"github.com/crestline/roofops-commissions/internal/domain/event"
)

// ManagerLookup resolves whether a submitter has an assigned manager, either
// through a direct profile link or a team assignment. Consulted only at
// creation time as a hard precondition.
type ManagerLookup interface {
	ResolveManager(ctx context.Context, submitterID string) (managerID string, ok bool, err error)
}

// Notifier delivers a domain event to the external notification dispatcher.
// Delivery is best-effort: errors are logged by the caller and never
// propagate into a transition's result.
type Notifier interface {
	Notify(ctx context.Context, evt *event.Event) error
}
