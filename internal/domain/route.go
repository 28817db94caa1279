package domain

import "time"

// RouteVariant names a route generation strategy.
type RouteVariant string

const (
	VariantOptimal     RouteVariant = "OPTIMAL"
	VariantSafe        RouteVariant = "SAFE"
	VariantAlternative RouteVariant = "ALTERNATIVE"
	VariantOptimized   RouteVariant = "OPTIMIZED"
)

// GeneratedVariants are the strategies produced for every route request,
// in response order.
var GeneratedVariants = []RouteVariant{VariantOptimal, VariantSafe, VariantAlternative}

// RestrictionType classifies the limit an obstacle exceeds.
type RestrictionType string

const (
	RestrictionHeight     RestrictionType = "HEIGHT"
	RestrictionWeight     RestrictionType = "WEIGHT"
	RestrictionAxleWeight RestrictionType = "AXLE_WEIGHT"
	RestrictionOther      RestrictionType = "OTHER"
)

// One ordered leg of a route proposal.
// Segments are owned by exactly one RouteProposal, created at generation
// time and immutable thereafter. SequenceOrder increases from 0.
type RouteSegment struct {
	SequenceOrder    int
	From             Coordinates
	To               Coordinates
	DistanceKm       float64
	EstimatedTimeMin float64
	RoadCondition    string
	RoadName         string
	Geometry         string
}

// Midpoint of the segment, used for proximity queries against the
// infrastructure index.
func (s RouteSegment) Midpoint() Coordinates {
	return Coordinates{
		Lat: (s.From.Lat + s.To.Lat) / 2,
		Lon: (s.From.Lon + s.To.Lon) / 2,
	}
}

// Links a proposal to an infrastructure record the convoy envelope violates.
// Obstacles are never mutated after creation; a new evaluation produces new
// obstacle rows. CanPass=false always implies AlternativeRouteNeeded=true.
type RouteObstacle struct {
	InfrastructureID       int64
	InfrastructureName     string
	RestrictionType        RestrictionType
	CanPass                bool
	AlternativeRouteNeeded bool
	Notes                  string
}

// A persisted, approvable candidate route for a mission.
// TotalDistanceKm and EstimatedTimeMinutes are recomputed from the segment
// list at creation time, never entered independently.
type RouteProposal struct {
	ID                    string
	MissionID             int64
	Variant               RouteVariant
	TotalDistanceKm       float64
	EstimatedTimeMinutes  float64
	FuelConsumptionLiters float64
	Approved              bool
	GeneratedAt           time.Time
	Segments              []RouteSegment
	Obstacles             []RouteObstacle
}
