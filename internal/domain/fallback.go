package domain

const (
	// Assumed average speed on the straight-line fallback leg.
	FallbackSpeedKmh = 60.0

	DirectRouteName     = "Direct Route"
	RoadConditionNormal = "NORMAL"
)

// DirectSegment returns the single straight-line leg used when no provider
// geometry is available: great-circle distance between the endpoints and an
// estimated time at FallbackSpeedKmh. Route generation always succeeds with
// this answer, at reduced fidelity.
func DirectSegment(start, end Coordinates) RouteSegment {
	distanceKm := HaversineKm(start, end)

	return RouteSegment{
		SequenceOrder:    0,
		From:             start,
		To:               end,
		DistanceKm:       distanceKm,
		EstimatedTimeMin: distanceKm / FallbackSpeedKmh * 60,
		RoadCondition:    RoadConditionNormal,
		RoadName:         DirectRouteName,
	}
}
