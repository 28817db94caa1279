package notify

import (
	"context"
	"convoy-route-service/internal/ports"
	"log"
)

// LogNotifier writes RouteSuggested events to the process log. It stands in
// for the external notification delivery channel.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier { return &LogNotifier{} }

func (n *LogNotifier) RouteSuggested(ctx context.Context, event ports.RouteSuggestedEvent) error {
	log.Printf(
		"event=RouteSuggested transport=%d original_proposal=%s new_proposal=%s infrastructure=%d reason=%q",
		event.TransportID,
		event.OriginalProposalID,
		event.NewProposal.ID,
		event.TriggeringInfrastructureID,
		event.Reason,
	)
	return nil
}
