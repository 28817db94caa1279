package services

import (
	"convoy-route-service/internal/domain"
	"testing"
)

func TestValidateProposalZeroDistance(t *testing.T) {
	res := ValidateProposal(domain.RouteProposal{TotalDistanceKm: 0, EstimatedTimeMinutes: 10})

	if res.Valid {
		t.Fatalf("expected invalid proposal")
	}

	found := false
	for _, e := range res.Errors {
		if e == "Invalid route distance" {
			found = true
		}
	}
	if !found {
		t.Fatalf("errors = %v, want to contain %q", res.Errors, "Invalid route distance")
	}
}

func TestValidateProposalZeroDuration(t *testing.T) {
	res := ValidateProposal(domain.RouteProposal{TotalDistanceKm: 12, EstimatedTimeMinutes: 0})

	if res.Valid {
		t.Fatalf("expected invalid proposal")
	}
	if len(res.Errors) != 1 || res.Errors[0] != "Invalid route duration" {
		t.Fatalf("errors = %v, want [Invalid route duration]", res.Errors)
	}
}

func TestValidateProposalWarnings(t *testing.T) {
	p := domain.RouteProposal{
		TotalDistanceKm:      620,
		EstimatedTimeMinutes: 540,
		Obstacles: []domain.RouteObstacle{
			{RestrictionType: domain.RestrictionHeight, CanPass: false, AlternativeRouteNeeded: true},
		},
	}

	res := ValidateProposal(p)

	// Obstacles and route length are warnings, not errors.
	if !res.Valid {
		t.Fatalf("expected valid proposal, errors = %v", res.Errors)
	}
	if len(res.Warnings) != 2 {
		t.Fatalf("warnings = %v, want 2 entries", res.Warnings)
	}
}

func TestValidateProposalClean(t *testing.T) {
	res := ValidateProposal(domain.RouteProposal{TotalDistanceKm: 140, EstimatedTimeMinutes: 130})

	if !res.Valid || len(res.Warnings) != 0 || len(res.Errors) != 0 {
		t.Fatalf("expected clean result, got %+v", res)
	}
}
