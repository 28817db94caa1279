package services

import (
	"context"
	"convoy-route-service/internal/domain"
	"convoy-route-service/internal/platform/obs"
	"convoy-route-service/internal/ports"
	"fmt"
	"log"
	"sync"
)

// Proximity threshold between a changed infrastructure record and an
// approved route's segments before the route is considered affected.
const DefaultReevalRadiusKm = 5.0

// Reevaluator reacts to infrastructure status changes by regenerating routes
// for affected transports and emitting replacement suggestions.
//
// It never replaces an approved route itself; approval stays an explicit
// external action on the suggested proposal.
type Reevaluator struct {
	Assembler *Assembler
	Missions  ports.MissionStore
	Proposals ports.ProposalRepository
	Notifier  ports.Notifier
	RadiusKm  float64
}

func NewReevaluator(
	assembler *Assembler,
	missions ports.MissionStore,
	proposals ports.ProposalRepository,
	notifier ports.Notifier,
	radiusKm float64,
) *Reevaluator {
	if radiusKm <= 0 {
		radiusKm = DefaultReevalRadiusKm
	}
	return &Reevaluator{
		Assembler: assembler,
		Missions:  missions,
		Proposals: proposals,
		Notifier:  notifier,
		RadiusKm:  radiusKm,
	}
}

// InfrastructureChanged locates transports whose approved route passes near
// the changed record, regenerates proposals for each and emits a
// RouteSuggested event per affected transport.
//
// Failures are isolated per transport: one transport's error is logged and
// skipped so the rest of the batch still gets evaluated.
func (r *Reevaluator) InfrastructureChanged(ctx context.Context, record domain.InfrastructureRecord) (err error) {
	defer obs.Time(ctx, "reevaluator.InfrastructureChanged")(&err)

	transports, err := r.Missions.ListTransports(ctx)
	if err != nil {
		return fmt.Errorf("reevaluate infrastructure %d: list transports: %w", record.ID, err)
	}

	sem := make(chan struct{}, 4)
	var wg sync.WaitGroup

	for _, transport := range transports {
		if transport.ApprovedProposalID == nil {
			continue
		}

		wg.Add(1)
		go func(t domain.Transport) {
			sem <- struct{}{}
			defer wg.Done()
			defer func() { <-sem }()

			if err := r.reevaluateTransport(ctx, t, record); err != nil {
				log.Printf("op=reevaluateTransport transport=%d infrastructure=%d err=%v", t.ID, record.ID, err)
			}
		}(transport)
	}

	wg.Wait()
	return nil
}

func (r *Reevaluator) reevaluateTransport(
	ctx context.Context,
	transport domain.Transport,
	record domain.InfrastructureRecord,
) error {
	approved, err := r.Proposals.GetProposal(ctx, *transport.ApprovedProposalID)
	if err != nil {
		return fmt.Errorf("load approved proposal %s: %w", *transport.ApprovedProposalID, err)
	}

	if !routePassesNear(approved, record.Location(), r.RadiusKm) {
		return nil
	}

	mission, err := r.Missions.GetMission(ctx, transport.MissionID)
	if err != nil {
		return fmt.Errorf("load mission %d: %w", transport.MissionID, err)
	}

	proposals, err := r.Assembler.GenerateRoutes(ctx, GenerateRequest{
		MissionID:  mission.ID,
		Start:      mission.Start,
		End:        mission.End,
		VehicleIDs: transport.VehicleIDs,
	})
	if err != nil {
		return fmt.Errorf("regenerate routes: %w", err)
	}

	suggestion := pickSuggestion(proposals)

	event := ports.RouteSuggestedEvent{
		TransportID:                transport.ID,
		OriginalProposalID:         approved.ID,
		NewProposal:                suggestion,
		Reason:                     fmt.Sprintf("infrastructure %q changed", record.Name),
		TriggeringInfrastructureID: record.ID,
	}
	if err := r.Notifier.RouteSuggested(ctx, event); err != nil {
		return fmt.Errorf("notify suggestion for transport %d: %w", transport.ID, err)
	}

	return nil
}

// routePassesNear reports whether any segment endpoint or midpoint of the
// proposal lies within radiusKm (haversine) of the point.
func routePassesNear(p domain.RouteProposal, point domain.Coordinates, radiusKm float64) bool {
	for _, s := range p.Segments {
		if domain.HaversineKm(s.From, point) <= radiusKm ||
			domain.HaversineKm(s.To, point) <= radiusKm ||
			domain.HaversineKm(s.Midpoint(), point) <= radiusKm {
			return true
		}
	}
	return false
}

// pickSuggestion selects the replacement candidate among freshly generated
// variants: fewest obstacles first, then shortest distance.
func pickSuggestion(proposals []domain.RouteProposal) domain.RouteProposal {
	best := proposals[0]
	for _, p := range proposals[1:] {
		if len(p.Obstacles) < len(best.Obstacles) ||
			(len(p.Obstacles) == len(best.Obstacles) && p.TotalDistanceKm < best.TotalDistanceKm) {
			best = p
		}
	}
	return best
}
