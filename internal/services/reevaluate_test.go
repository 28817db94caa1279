package services

import (
	"context"
	"sync"
	"testing"

	"convoy-route-service/internal/adapters/geometry"
	"convoy-route-service/internal/adapters/repositories"
	"convoy-route-service/internal/domain"
	"convoy-route-service/internal/ports"
)

type captureNotifier struct {
	mu     sync.Mutex
	events []ports.RouteSuggestedEvent
}

func (n *captureNotifier) RouteSuggested(ctx context.Context, event ports.RouteSuggestedEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return nil
}

func (n *captureNotifier) captured() []ports.RouteSuggestedEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]ports.RouteSuggestedEvent, len(n.events))
	copy(out, n.events)
	return out
}

func strp(s string) *string { return &s }

type reevalFixture struct {
	reevaluator *Reevaluator
	notifier    *captureNotifier
	proposals   *repositories.MemoryProposalRepository
}

// One transport on the Poznan-Wroclaw corridor with an approved direct route.
func newReevalFixture(t *testing.T, transports []domain.Transport) reevalFixture {
	t.Helper()

	provider := geometry.NewMockGeometryProvider(testRoutes())
	proposals := repositories.NewMemoryProposalRepository()
	vehicles := repositories.NewMemoryVehicleRepository(testVehicles())
	missions := repositories.NewMemoryMissionStore(
		[]domain.Mission{{ID: 1, Name: "Convoy Poznan-Wroclaw", Start: poznan, End: wroclaw}},
		transports,
	)

	approved := domain.RouteProposal{
		ID:                   "approved-1",
		MissionID:            1,
		Variant:              domain.VariantOptimal,
		TotalDistanceKm:      160,
		EstimatedTimeMinutes: 150,
		Approved:             true,
		Segments:             []domain.RouteSegment{domain.DirectSegment(poznan, wroclaw)},
	}
	if err := proposals.SaveProposal(context.Background(), &approved); err != nil {
		t.Fatalf("seed approved proposal: %v", err)
	}

	matcher := NewObstacleMatcher(newTestIndex(t, nil), 2.0)
	assembler := NewAssembler(provider, matcher, proposals, vehicles, missions)

	notifier := &captureNotifier{}
	reevaluator := NewReevaluator(assembler, missions, proposals, notifier, 5.0)

	return reevalFixture{reevaluator: reevaluator, notifier: notifier, proposals: proposals}
}

func TestReevaluateNearbyChangeSuggestsRoute(t *testing.T) {
	fx := newReevalFixture(t, []domain.Transport{
		{ID: 10, MissionID: 1, VehicleIDs: []int64{1, 2}, ApprovedProposalID: strp("approved-1")},
	})

	// Right on the corridor midpoint.
	record := domain.InfrastructureRecord{
		ID:        21,
		Name:      "Warta River Bridge",
		Type:      domain.InfraBridge,
		Latitude:  (poznan.Lat + wroclaw.Lat) / 2,
		Longitude: (poznan.Lon + wroclaw.Lon) / 2,
		IsActive:  true,
	}

	if err := fx.reevaluator.InfrastructureChanged(context.Background(), record); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	events := fx.notifier.captured()
	if len(events) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(events))
	}

	e := events[0]
	if e.TransportID != 10 {
		t.Errorf("transport = %d, want 10", e.TransportID)
	}
	if e.OriginalProposalID != "approved-1" {
		t.Errorf("original proposal = %s, want approved-1", e.OriginalProposalID)
	}
	if e.TriggeringInfrastructureID != 21 {
		t.Errorf("triggering infrastructure = %d, want 21", e.TriggeringInfrastructureID)
	}
	if e.NewProposal.ID == "" || e.NewProposal.ID == "approved-1" {
		t.Errorf("suggestion must be a freshly generated proposal, got id %q", e.NewProposal.ID)
	}
	if len(e.NewProposal.Segments) == 0 {
		t.Errorf("suggested proposal carries no segments")
	}

	// The approved route itself is not replaced.
	stored, err := fx.proposals.GetProposal(context.Background(), "approved-1")
	if err != nil || !stored.Approved {
		t.Errorf("approved proposal must stay approved, err=%v approved=%v", err, stored.Approved)
	}
}

func TestReevaluateFarChangeIsIgnored(t *testing.T) {
	fx := newReevalFixture(t, []domain.Transport{
		{ID: 10, MissionID: 1, VehicleIDs: []int64{1, 2}, ApprovedProposalID: strp("approved-1")},
	})

	// Gdansk, hundreds of kilometers off the corridor.
	record := domain.InfrastructureRecord{
		ID:        22,
		Name:      "Remote Bridge",
		Type:      domain.InfraBridge,
		Latitude:  54.3520,
		Longitude: 18.6466,
		IsActive:  true,
	}

	if err := fx.reevaluator.InfrastructureChanged(context.Background(), record); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if events := fx.notifier.captured(); len(events) != 0 {
		t.Fatalf("expected no suggestions, got %d", len(events))
	}
}

func TestReevaluateSkipsTransportsWithoutApprovedRoute(t *testing.T) {
	fx := newReevalFixture(t, []domain.Transport{
		{ID: 10, MissionID: 1, VehicleIDs: []int64{1, 2}},
	})

	record := domain.InfrastructureRecord{
		ID:        23,
		Name:      "Corridor Bridge",
		Type:      domain.InfraBridge,
		Latitude:  (poznan.Lat + wroclaw.Lat) / 2,
		Longitude: (poznan.Lon + wroclaw.Lon) / 2,
		IsActive:  true,
	}

	if err := fx.reevaluator.InfrastructureChanged(context.Background(), record); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if events := fx.notifier.captured(); len(events) != 0 {
		t.Fatalf("expected no suggestions for unapproved transports, got %d", len(events))
	}
}

func TestReevaluateIsolatesTransportFailures(t *testing.T) {
	// Transport 11 references a proposal that no longer exists; transport 10
	// must still be evaluated.
	fx := newReevalFixture(t, []domain.Transport{
		{ID: 10, MissionID: 1, VehicleIDs: []int64{1, 2}, ApprovedProposalID: strp("approved-1")},
		{ID: 11, MissionID: 1, VehicleIDs: []int64{1}, ApprovedProposalID: strp("gone")},
	})

	record := domain.InfrastructureRecord{
		ID:        24,
		Name:      "Corridor Bridge",
		Type:      domain.InfraBridge,
		Latitude:  (poznan.Lat + wroclaw.Lat) / 2,
		Longitude: (poznan.Lon + wroclaw.Lon) / 2,
		IsActive:  true,
	}

	if err := fx.reevaluator.InfrastructureChanged(context.Background(), record); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	events := fx.notifier.captured()
	if len(events) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(events))
	}
	if events[0].TransportID != 10 {
		t.Fatalf("suggestion for transport %d, want 10", events[0].TransportID)
	}
}
