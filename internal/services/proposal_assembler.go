package services

import (
	"context"
	"convoy-route-service/internal/domain"
	"convoy-route-service/internal/platform/obs"
	"convoy-route-service/internal/ports"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Bounded improvement factors applied by the declared optimization pass.
const (
	optimizeDistanceFactor = 0.95
	optimizeTimeFactor     = 0.92
	optimizeFuelFactor     = 0.93
)

// Assembler composes provider geometry, obstacle matching and fuel
// estimation into persisted route proposals.
//
// Requests are independent and stateless with respect to each other; the
// only shared state is the read-only spatial index snapshot inside the
// matcher and the entities written through the repositories.
type Assembler struct {
	Provider  ports.GeometryProvider
	Matcher   *ObstacleMatcher
	Proposals ports.ProposalRepository
	Vehicles  ports.VehicleRepository
	Missions  ports.MissionStore

	// Now is the clock for GeneratedAt stamps; defaults to time.Now.
	Now func() time.Time
}

func NewAssembler(
	provider ports.GeometryProvider,
	matcher *ObstacleMatcher,
	proposals ports.ProposalRepository,
	vehicles ports.VehicleRepository,
	missions ports.MissionStore,
) *Assembler {
	return &Assembler{
		Provider:  provider,
		Matcher:   matcher,
		Proposals: proposals,
		Vehicles:  vehicles,
		Missions:  missions,
		Now:       time.Now,
	}
}

type GenerateRequest struct {
	MissionID  int64
	Start      domain.Coordinates
	End        domain.Coordinates
	VehicleIDs []int64
}

// GenerateRoutes produces and persists one proposal per generated variant
// (OPTIMAL, SAFE, ALTERNATIVE) for the given mission and vehicle set.
//
// Variants are computed concurrently; each proposal is committed as one
// atomic unit. A persistence failure fails the request, but variants already
// committed remain valid and retrievable.
func (a *Assembler) GenerateRoutes(ctx context.Context, req GenerateRequest) (_ []domain.RouteProposal, err error) {
	defer obs.Time(ctx, "assembler.GenerateRoutes")(&err)

	if !req.Start.Valid() || !req.End.Valid() {
		return nil, fmt.Errorf("generate routes: malformed coordinates: %w", domain.ErrInvalidRequest)
	}
	if len(req.VehicleIDs) == 0 {
		return nil, fmt.Errorf("generate routes: vehicle set is empty: %w", domain.ErrInvalidRequest)
	}

	if _, err := a.Missions.GetMission(ctx, req.MissionID); err != nil {
		return nil, fmt.Errorf("generate routes: mission %d: %w", req.MissionID, err)
	}

	vehicles, err := a.Vehicles.GetVehicles(ctx, req.VehicleIDs)
	if err != nil {
		return nil, fmt.Errorf("generate routes: %w", err)
	}

	env, err := ComputeEnvelope(vehicles)
	if err != nil {
		return nil, fmt.Errorf("generate routes: %w", err)
	}

	results := make([]domain.RouteProposal, len(domain.GeneratedVariants))

	g, gctx := errgroup.WithContext(ctx)
	for i, variant := range domain.GeneratedVariants {
		g.Go(func() error {
			proposal, err := a.assembleVariant(gctx, req, env, variant)
			if err != nil {
				return err
			}
			results[i] = proposal
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("generate routes: %w", err)
	}

	return results, nil
}

// assembleVariant runs the full pipeline for one variant: geometry, obstacle
// matching, totals, fuel, atomic persistence.
func (a *Assembler) assembleVariant(
	ctx context.Context,
	req GenerateRequest,
	env domain.Envelope,
	variant domain.RouteVariant,
) (domain.RouteProposal, error) {
	hints := ports.RouteHints{
		MaxHeightCm:       env.MaxHeightCm,
		TotalWeightKg:     env.TotalWeightKg,
		MaxAxleLoadKg:     env.MaxAxleLoadKg,
		VehicleType:       "truck",
		AvoidRestrictions: variant == domain.VariantSafe,
	}

	raw, err := a.Provider.GetRoute(ctx, req.Start, req.End, hints, variant)
	if err != nil || len(raw) == 0 {
		// Provider failures never fail the request; fall back to the
		// direct-line segment and keep planning.
		if err != nil {
			log.Printf("op=assembleVariant variant=%s provider unavailable, using direct route: %v", variant, err)
		}
		raw = nil
	}

	var segments []domain.RouteSegment
	if len(raw) == 0 {
		segments = []domain.RouteSegment{domain.DirectSegment(req.Start, req.End)}
	} else {
		segments = make([]domain.RouteSegment, 0, len(raw))
		for i, r := range raw {
			segments = append(segments, domain.RouteSegment{
				SequenceOrder:    i,
				From:             r.From,
				To:               r.To,
				DistanceKm:       r.DistanceKm,
				EstimatedTimeMin: r.EstimatedTimeMin,
				RoadCondition:    r.RoadCondition,
				RoadName:         r.RoadName,
				Geometry:         r.Geometry,
			})
		}
	}

	obstacles := a.Matcher.Match(segments, env)

	// Totals are recomputed from the segment list, never entered independently.
	var totalDistanceKm, totalTimeMin float64
	for _, s := range segments {
		totalDistanceKm += s.DistanceKm
		totalTimeMin += s.EstimatedTimeMin
	}

	proposal := domain.RouteProposal{
		ID:                    uuid.NewString(),
		MissionID:             req.MissionID,
		Variant:               variant,
		TotalDistanceKm:       totalDistanceKm,
		EstimatedTimeMinutes:  totalTimeMin,
		FuelConsumptionLiters: EstimateFuel(totalDistanceKm, env.TotalWeightKg),
		Approved:              false,
		GeneratedAt:           a.Now(),
		Segments:              segments,
		Obstacles:             obstacles,
	}

	if err := a.Proposals.SaveProposal(ctx, &proposal); err != nil {
		return domain.RouteProposal{}, fmt.Errorf("persist %s proposal: %w", variant, err)
	}

	return proposal, nil
}

// OptimizeProposal persists a new OPTIMIZED proposal for the same mission
// with bounded improvements over an existing proposal: distance x0.95, time
// x0.92, fuel x0.93. The original is left untouched.
//
// This is a declared optimization pass, not a physical recomputation; a real
// optimizer may replace it as long as the improvement stays bounded and
// monotonic and the original proposal is never modified.
func (a *Assembler) OptimizeProposal(ctx context.Context, proposalID string) (_ domain.RouteProposal, err error) {
	defer obs.Time(ctx, "assembler.OptimizeProposal")(&err)

	original, err := a.Proposals.GetProposal(ctx, proposalID)
	if err != nil {
		return domain.RouteProposal{}, fmt.Errorf("optimize proposal %s: %w", proposalID, err)
	}

	segments := make([]domain.RouteSegment, len(original.Segments))
	copy(segments, original.Segments)
	// Scale per segment so the totals invariant keeps holding.
	var totalDistanceKm, totalTimeMin float64
	for i := range segments {
		segments[i].DistanceKm *= optimizeDistanceFactor
		segments[i].EstimatedTimeMin *= optimizeTimeFactor
		totalDistanceKm += segments[i].DistanceKm
		totalTimeMin += segments[i].EstimatedTimeMin
	}

	obstacles := make([]domain.RouteObstacle, len(original.Obstacles))
	copy(obstacles, original.Obstacles)

	optimized := domain.RouteProposal{
		ID:                    uuid.NewString(),
		MissionID:             original.MissionID,
		Variant:               domain.VariantOptimized,
		TotalDistanceKm:       totalDistanceKm,
		EstimatedTimeMinutes:  totalTimeMin,
		FuelConsumptionLiters: original.FuelConsumptionLiters * optimizeFuelFactor,
		Approved:              false,
		GeneratedAt:           a.Now(),
		Segments:              segments,
		Obstacles:             obstacles,
	}

	if err := a.Proposals.SaveProposal(ctx, &optimized); err != nil {
		return domain.RouteProposal{}, fmt.Errorf("optimize proposal %s: persist: %w", proposalID, err)
	}

	return optimized, nil
}

// ApproveRoute flips the approved flag on. No recomputation happens.
func (a *Assembler) ApproveRoute(ctx context.Context, proposalID string) error {
	if err := a.Proposals.SetApproved(ctx, proposalID, true); err != nil {
		return fmt.Errorf("approve route %s: %w", proposalID, err)
	}
	return nil
}

// RejectRoute flips the approved flag off. No recomputation happens.
func (a *Assembler) RejectRoute(ctx context.Context, proposalID string) error {
	if err := a.Proposals.SetApproved(ctx, proposalID, false); err != nil {
		return fmt.Errorf("reject route %s: %w", proposalID, err)
	}
	return nil
}

// GetObstacles returns the obstacle list of a persisted proposal.
func (a *Assembler) GetObstacles(ctx context.Context, proposalID string) ([]domain.RouteObstacle, error) {
	p, err := a.Proposals.GetProposal(ctx, proposalID)
	if err != nil {
		return nil, fmt.Errorf("get obstacles %s: %w", proposalID, err)
	}
	return p.Obstacles, nil
}

// ValidateRoute loads a persisted proposal and checks it for internal
// consistency.
func (a *Assembler) ValidateRoute(ctx context.Context, proposalID string) (ValidationResult, error) {
	p, err := a.Proposals.GetProposal(ctx, proposalID)
	if err != nil {
		return ValidationResult{}, fmt.Errorf("validate route %s: %w", proposalID, err)
	}
	return ValidateProposal(p), nil
}
