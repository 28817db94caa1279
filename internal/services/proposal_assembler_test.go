package services

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"convoy-route-service/internal/adapters/geometry"
	"convoy-route-service/internal/adapters/repositories"
	"convoy-route-service/internal/domain"
	"convoy-route-service/internal/ports"
)

var (
	poznan  = domain.Coordinates{Lat: 52.4064, Lon: 16.9252}
	wroclaw = domain.Coordinates{Lat: 51.1079, Lon: 17.0385}
)

func testVehicles() []domain.VehicleSpecification {
	return []domain.VehicleSpecification{
		{ID: 1, Model: "HX81", HeightCm: intp(380), TotalWeightKg: intp(12000), MaxAxleLoadKg: intp(9000), Active: true},
		{ID: 2, Model: "M1070", HeightCm: intp(410), TotalWeightKg: intp(25000), MaxAxleLoadKg: intp(11000), Active: true},
	}
}

func testRoutes() map[domain.RouteVariant][]ports.RawSegment {
	mk := func(distances ...float64) []ports.RawSegment {
		segs := make([]ports.RawSegment, 0, len(distances))
		from := poznan
		for _, d := range distances {
			segs = append(segs, ports.RawSegment{
				From:             from,
				To:               wroclaw,
				DistanceKm:       d,
				EstimatedTimeMin: d * 1.1,
				RoadCondition:    "NORMAL",
				RoadName:         "S5",
			})
			from = wroclaw
		}
		return segs
	}
	return map[domain.RouteVariant][]ports.RawSegment{
		domain.VariantOptimal:     mk(80, 60),
		domain.VariantSafe:        mk(160),
		domain.VariantAlternative: mk(175),
	}
}

type assemblerFixture struct {
	assembler *Assembler
	proposals *repositories.MemoryProposalRepository
	provider  *geometry.MockGeometryProvider
	missions  *repositories.MemoryMissionStore
}

func newTestAssembler(t *testing.T, records []domain.InfrastructureRecord) assemblerFixture {
	t.Helper()

	provider := geometry.NewMockGeometryProvider(testRoutes())
	proposals := repositories.NewMemoryProposalRepository()
	vehicles := repositories.NewMemoryVehicleRepository(testVehicles())
	missions := repositories.NewMemoryMissionStore(
		[]domain.Mission{{ID: 1, Name: "Convoy Poznan-Wroclaw", Start: poznan, End: wroclaw}},
		nil,
	)

	matcher := NewObstacleMatcher(newTestIndex(t, records), 2.0)
	assembler := NewAssembler(provider, matcher, proposals, vehicles, missions)
	assembler.Now = func() time.Time { return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC) }

	return assemblerFixture{assembler: assembler, proposals: proposals, provider: provider, missions: missions}
}

func defaultRequest() GenerateRequest {
	return GenerateRequest{MissionID: 1, Start: poznan, End: wroclaw, VehicleIDs: []int64{1, 2}}
}

func TestGenerateRoutesVariants(t *testing.T) {
	fx := newTestAssembler(t, nil)

	got, err := fx.assembler.GenerateRoutes(context.Background(), defaultRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 proposals, got %d", len(got))
	}

	byVariant := map[domain.RouteVariant]domain.RouteProposal{}
	for _, p := range got {
		byVariant[p.Variant] = p
	}
	for _, v := range domain.GeneratedVariants {
		p, ok := byVariant[v]
		if !ok {
			t.Fatalf("missing %s proposal", v)
		}

		var sumKm, sumMin float64
		for _, s := range p.Segments {
			sumKm += s.DistanceKm
			sumMin += s.EstimatedTimeMin
		}
		if math.Abs(p.TotalDistanceKm-sumKm) > 1e-6 {
			t.Errorf("%s: total distance %f != segment sum %f", v, p.TotalDistanceKm, sumKm)
		}
		if math.Abs(p.EstimatedTimeMinutes-sumMin) > 1e-6 {
			t.Errorf("%s: total time %f != segment sum %f", v, p.EstimatedTimeMinutes, sumMin)
		}

		wantFuel := EstimateFuel(p.TotalDistanceKm, 37000)
		if math.Abs(p.FuelConsumptionLiters-wantFuel) > 1e-6 {
			t.Errorf("%s: fuel %f, want %f", v, p.FuelConsumptionLiters, wantFuel)
		}

		// Persisted as committed.
		stored, err := fx.proposals.GetProposal(context.Background(), p.ID)
		if err != nil {
			t.Errorf("%s proposal not persisted: %v", v, err)
		} else if stored.Variant != v {
			t.Errorf("stored variant = %s, want %s", stored.Variant, v)
		}
	}

	if byVariant[domain.VariantOptimal].TotalDistanceKm != 140 {
		t.Errorf("optimal distance = %f, want 140", byVariant[domain.VariantOptimal].TotalDistanceKm)
	}
}

func TestGenerateRoutesProviderFailureFallsBack(t *testing.T) {
	fx := newTestAssembler(t, nil)
	fx.provider.Err = errors.New("routing service down")

	got, err := fx.assembler.GenerateRoutes(context.Background(), defaultRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 fallback proposals, got %d", len(got))
	}

	wantKm := domain.HaversineKm(poznan, wroclaw)
	for _, p := range got {
		if len(p.Segments) != 1 {
			t.Fatalf("%s: expected 1 fallback segment, got %d", p.Variant, len(p.Segments))
		}
		seg := p.Segments[0]
		if seg.RoadName != domain.DirectRouteName {
			t.Errorf("%s: road name = %q, want %q", p.Variant, seg.RoadName, domain.DirectRouteName)
		}
		if math.Abs(seg.DistanceKm-wantKm) > 0.01 {
			t.Errorf("%s: distance = %f, want %f", p.Variant, seg.DistanceKm, wantKm)
		}
	}
}

func TestGenerateRoutesRejectsBadInput(t *testing.T) {
	fx := newTestAssembler(t, nil)

	req := defaultRequest()
	req.VehicleIDs = nil
	if _, err := fx.assembler.GenerateRoutes(context.Background(), req); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Errorf("empty vehicles: error = %v, want ErrInvalidRequest", err)
	}

	req = defaultRequest()
	req.Start.Lat = 99
	if _, err := fx.assembler.GenerateRoutes(context.Background(), req); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Errorf("bad coordinates: error = %v, want ErrInvalidRequest", err)
	}

	req = defaultRequest()
	req.MissionID = 42
	if _, err := fx.assembler.GenerateRoutes(context.Background(), req); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown mission: error = %v, want ErrNotFound", err)
	}

	req = defaultRequest()
	req.VehicleIDs = []int64{1, 99}
	if _, err := fx.assembler.GenerateRoutes(context.Background(), req); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown vehicle: error = %v, want ErrNotFound", err)
	}
}

func TestGenerateRoutesPersistenceFailure(t *testing.T) {
	fx := newTestAssembler(t, nil)
	fx.proposals.SaveErr = errors.New("disk full")

	if _, err := fx.assembler.GenerateRoutes(context.Background(), defaultRequest()); err == nil {
		t.Fatalf("expected error when persistence fails")
	}
}

func TestGenerateRoutesObstacleFlags(t *testing.T) {
	// A tunnel lower than the convoy sits right on the direct line.
	tunnel := domain.InfrastructureRecord{
		ID:          11,
		Name:        "Low Tunnel",
		Type:        domain.InfraTunnel,
		Latitude:    (poznan.Lat + wroclaw.Lat) / 2,
		Longitude:   (poznan.Lon + wroclaw.Lon) / 2,
		MaxHeightCm: intp(400),
		IsActive:    true,
	}

	fx := newTestAssembler(t, []domain.InfrastructureRecord{tunnel})
	fx.provider.Err = errors.New("offline")

	got, err := fx.assembler.GenerateRoutes(context.Background(), defaultRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, p := range got {
		if len(p.Obstacles) != 1 {
			t.Fatalf("%s: expected 1 obstacle, got %d", p.Variant, len(p.Obstacles))
		}
		for _, o := range p.Obstacles {
			if o.CanPass {
				t.Errorf("%s: matched obstacle must have canPass=false", p.Variant)
			}
			if !o.AlternativeRouteNeeded {
				t.Errorf("%s: blocked obstacle must request an alternative", p.Variant)
			}
		}
	}

	obstacles, err := fx.assembler.GetObstacles(context.Background(), got[0].ID)
	if err != nil {
		t.Fatalf("get obstacles: %v", err)
	}
	if len(obstacles) != 1 || obstacles[0].InfrastructureID != 11 {
		t.Fatalf("persisted obstacles = %+v", obstacles)
	}
}

func TestOptimizeProposal(t *testing.T) {
	fx := newTestAssembler(t, nil)

	generated, err := fx.assembler.GenerateRoutes(context.Background(), defaultRequest())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	original := generated[0]

	optimized, err := fx.assembler.OptimizeProposal(context.Background(), original.ID)
	if err != nil {
		t.Fatalf("optimize: %v", err)
	}

	if optimized.Variant != domain.VariantOptimized {
		t.Errorf("variant = %s, want OPTIMIZED", optimized.Variant)
	}
	if optimized.ID == original.ID {
		t.Errorf("optimized proposal must get a new id")
	}
	if math.Abs(optimized.TotalDistanceKm-original.TotalDistanceKm*0.95) > 1e-6 {
		t.Errorf("distance = %f, want %f", optimized.TotalDistanceKm, original.TotalDistanceKm*0.95)
	}
	if math.Abs(optimized.EstimatedTimeMinutes-original.EstimatedTimeMinutes*0.92) > 1e-6 {
		t.Errorf("time = %f, want %f", optimized.EstimatedTimeMinutes, original.EstimatedTimeMinutes*0.92)
	}
	if math.Abs(optimized.FuelConsumptionLiters-original.FuelConsumptionLiters*0.93) > 1e-6 {
		t.Errorf("fuel = %f, want %f", optimized.FuelConsumptionLiters, original.FuelConsumptionLiters*0.93)
	}

	var sumKm float64
	for _, s := range optimized.Segments {
		sumKm += s.DistanceKm
	}
	if math.Abs(optimized.TotalDistanceKm-sumKm) > 1e-6 {
		t.Errorf("optimized totals out of sync with segments: %f vs %f", optimized.TotalDistanceKm, sumKm)
	}

	// The source proposal stays as persisted.
	stored, err := fx.proposals.GetProposal(context.Background(), original.ID)
	if err != nil {
		t.Fatalf("reload original: %v", err)
	}
	if stored.TotalDistanceKm != original.TotalDistanceKm {
		t.Errorf("original mutated: %f vs %f", stored.TotalDistanceKm, original.TotalDistanceKm)
	}
}

func TestApproveAndRejectRoute(t *testing.T) {
	fx := newTestAssembler(t, nil)

	generated, err := fx.assembler.GenerateRoutes(context.Background(), defaultRequest())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	id := generated[0].ID

	if err := fx.assembler.ApproveRoute(context.Background(), id); err != nil {
		t.Fatalf("approve: %v", err)
	}
	p, _ := fx.proposals.GetProposal(context.Background(), id)
	if !p.Approved {
		t.Fatalf("expected approved=true")
	}

	if err := fx.assembler.RejectRoute(context.Background(), id); err != nil {
		t.Fatalf("reject: %v", err)
	}
	p, _ = fx.proposals.GetProposal(context.Background(), id)
	if p.Approved {
		t.Fatalf("expected approved=false after reject")
	}

	if err := fx.assembler.ApproveRoute(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("approve missing: error = %v, want ErrNotFound", err)
	}
}

func TestValidateRoute(t *testing.T) {
	fx := newTestAssembler(t, nil)

	generated, err := fx.assembler.GenerateRoutes(context.Background(), defaultRequest())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	res, err := fx.assembler.ValidateRoute(context.Background(), generated[0].ID)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !res.Valid {
		t.Fatalf("expected valid proposal, errors = %v", res.Errors)
	}

	if _, err := fx.assembler.ValidateRoute(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("validate missing: error = %v, want ErrNotFound", err)
	}
}
