package ports

import (
	"context"
	"convoy-route-service/internal/domain"
)

// Routing hints passed to the external geometry provider, derived from the
// convoy envelope.
type RouteHints struct {
	MaxHeightCm       int
	TotalWeightKg     int
	MaxAxleLoadKg     int
	VehicleType       string
	AvoidRestrictions bool
}

// One ordered leg of a provider route before it becomes a persisted segment.
type RawSegment struct {
	From             domain.Coordinates
	To               domain.Coordinates
	DistanceKm       float64
	EstimatedTimeMin float64
	RoadName         string
	RoadCondition    string
	Geometry         string
}

// Contract for retrieving candidate route geometry between two points.
type GeometryProvider interface {
	// Return the ordered segments of a route for the requested variant.
	// Implementations are expected to recover provider failures locally
	// (direct-line fallback); callers still guard against an error or an
	// empty segment list and substitute the fallback themselves.
	GetRoute(
		ctx context.Context,
		start domain.Coordinates,
		end domain.Coordinates,
		hints RouteHints,
		variant domain.RouteVariant,
	) ([]RawSegment, error)
}
