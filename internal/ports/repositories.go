package ports

import (
	"context"
	"convoy-route-service/internal/domain"
)

// Port: boundary for retrieving vehicle specifications.
type VehicleRepository interface {
	// Return the specifications for the given ids.
	// Returns domain.ErrNotFound if any id is unknown.
	GetVehicles(ctx context.Context, ids []int64) ([]domain.VehicleSpecification, error)
}

// Port: boundary for mission and transport state.
type MissionStore interface {
	// Returns domain.ErrNotFound for unknown missions.
	GetMission(ctx context.Context, id int64) (domain.Mission, error)

	ListTransports(ctx context.Context) ([]domain.Transport, error)

	// Point the transport's approved-route reference at a proposal.
	SetApprovedProposal(ctx context.Context, transportID int64, proposalID string) error
}

// Port: boundary for persisting and retrieving route proposals.
// A proposal owns its segments and obstacles; SaveProposal commits all three
// as one atomic unit so a partially written proposal is never visible.
type ProposalRepository interface {
	SaveProposal(ctx context.Context, p *domain.RouteProposal) error

	// Returns the proposal with segments (ordered) and obstacles loaded.
	// Returns domain.ErrNotFound for unknown ids.
	GetProposal(ctx context.Context, id string) (domain.RouteProposal, error)

	ListByMission(ctx context.Context, missionID int64) ([]domain.RouteProposal, error)

	// Flip the approved flag without recomputation.
	SetApproved(ctx context.Context, id string, approved bool) error

	// Remove a proposal and its owned segments and obstacles.
	DeleteProposal(ctx context.Context, id string) error
}
