package services

import (
	"convoy-route-service/internal/domain"
	"fmt"
)

// Distance beyond which a route draws a long-haul warning.
const longRouteThresholdKm = 500.0

// Outcome of a proposal validation. Errors mark internal inconsistency and
// make the proposal invalid; warnings flag conditions worth operator
// attention (obstacles, very long routes) without rejecting the route.
type ValidationResult struct {
	Valid    bool
	Warnings []string
	Errors   []string
}

// ValidateProposal checks a proposal for internal consistency.
// Validity is about consistency, not regulatory certainty.
func ValidateProposal(p domain.RouteProposal) ValidationResult {
	res := ValidationResult{Warnings: []string{}, Errors: []string{}}

	if p.TotalDistanceKm <= 0 {
		res.Errors = append(res.Errors, "Invalid route distance")
	}
	if p.EstimatedTimeMinutes <= 0 {
		res.Errors = append(res.Errors, "Invalid route duration")
	}

	if n := len(p.Obstacles); n > 0 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("route has %d obstacle(s) requiring attention", n))
	}
	if p.TotalDistanceKm > longRouteThresholdKm {
		res.Warnings = append(res.Warnings, fmt.Sprintf("route length %.1f km exceeds %.0f km", p.TotalDistanceKm, longRouteThresholdKm))
	}

	res.Valid = len(res.Errors) == 0
	return res
}
