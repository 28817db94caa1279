package services

import (
	"convoy-route-service/internal/domain"
	"fmt"
)

// Default buffer radius around each segment midpoint when scanning for
// nearby infrastructure.
const DefaultObstacleRadiusKm = 2.0

// ObstacleMatcher cross-references route segments against the spatial
// infrastructure index and decides pass/fail per record for a given convoy
// envelope.
//
// The index over-selects with a coarse proximity predicate; the matcher is
// the precise second phase that checks each candidate's numeric limits.
type ObstacleMatcher struct {
	Index    *SpatialIndex
	RadiusKm float64
}

func NewObstacleMatcher(index *SpatialIndex, radiusKm float64) *ObstacleMatcher {
	if radiusKm <= 0 {
		radiusKm = DefaultObstacleRadiusKm
	}
	return &ObstacleMatcher{Index: index, RadiusKm: radiusKm}
}

// Match evaluates every segment against the infrastructure near its midpoint
// and returns one obstacle per violated record.
//
// A record near multiple segments produces a single obstacle. Records whose
// limits the envelope respects are silently skipped. Each call produces a
// fresh obstacle list; results are never deduplicated across runs.
func (m *ObstacleMatcher) Match(segments []domain.RouteSegment, env domain.Envelope) []domain.RouteObstacle {
	obstacles := make([]domain.RouteObstacle, 0, 4)
	seen := make(map[int64]struct{})

	for _, seg := range segments {
		mid := seg.Midpoint()
		for _, record := range m.Index.FindNear(mid.Lat, mid.Lon, m.RadiusKm) {
			if _, ok := seen[record.ID]; ok {
				continue
			}

			restriction, notes, violated := evaluateRecord(record, env)
			if !violated {
				continue
			}

			seen[record.ID] = struct{}{}
			obstacles = append(obstacles, domain.RouteObstacle{
				InfrastructureID:       record.ID,
				InfrastructureName:     record.Name,
				RestrictionType:        restriction,
				CanPass:                false,
				AlternativeRouteNeeded: true,
				Notes:                  notes,
			})
		}
	}

	return obstacles
}

// evaluateRecord checks the envelope against a record's limits.
//
// Precedence: HEIGHT, then WEIGHT, then AXLE_WEIGHT. A record may violate
// more than one limit but only the first matching rule is recorded. Height
// only applies to height-relevant infrastructure types. OTHER is reserved
// for externally flagged records and never produced by the numeric checks.
func evaluateRecord(record domain.InfrastructureRecord, env domain.Envelope) (domain.RestrictionType, string, bool) {
	if record.Type.HeightRelevant() && record.MaxHeightCm != nil && env.MaxHeightCm > *record.MaxHeightCm {
		notes := fmt.Sprintf("%s: envelope %dcm exceeds limit %dcm", record.Name, env.MaxHeightCm, *record.MaxHeightCm)
		return domain.RestrictionHeight, notes, true
	}

	if record.MaxWeightKg != nil && env.TotalWeightKg > *record.MaxWeightKg {
		notes := fmt.Sprintf("%s: envelope %dkg exceeds limit %dkg", record.Name, env.TotalWeightKg, *record.MaxWeightKg)
		return domain.RestrictionWeight, notes, true
	}

	if record.MaxAxleWeightKg != nil && env.MaxAxleLoadKg > *record.MaxAxleWeightKg {
		notes := fmt.Sprintf("%s: envelope axle %dkg exceeds limit %dkg", record.Name, env.MaxAxleLoadKg, *record.MaxAxleWeightKg)
		return domain.RestrictionAxleWeight, notes, true
	}

	return "", "", false
}
