package ports

import (
	"context"
	"convoy-route-service/internal/domain"
)

// Emitted when re-evaluation produced a suggested replacement route for a
// transport whose approved route is affected by an infrastructure change.
// The suggestion always requires explicit external approval.
type RouteSuggestedEvent struct {
	TransportID                int64
	OriginalProposalID         string
	NewProposal                domain.RouteProposal
	Reason                     string
	TriggeringInfrastructureID int64
}

// Port: boundary for delivering re-evaluation notifications.
type Notifier interface {
	RouteSuggested(ctx context.Context, event RouteSuggestedEvent) error
}
