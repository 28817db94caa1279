package services

import (
	"convoy-route-service/internal/domain"
	"fmt"
)

// ComputeEnvelope derives the combined physical limits of a convoy from its
// vehicle set.
//
// Height and axle load take the maximum over member vehicles, weight the
// sum, so the result is invariant under permutation of the set. A missing
// weight counts as 0 for the sum; a missing height or axle load is ignored
// for the max rather than counted as 0, so an absent dimension never drags
// the limit down.
func ComputeEnvelope(vehicles []domain.VehicleSpecification) (domain.Envelope, error) {
	if len(vehicles) == 0 {
		return domain.Envelope{}, fmt.Errorf("compute envelope: vehicle set is empty: %w", domain.ErrInvalidRequest)
	}

	var env domain.Envelope
	for _, v := range vehicles {
		if v.HeightCm != nil && *v.HeightCm > env.MaxHeightCm {
			env.MaxHeightCm = *v.HeightCm
		}
		if v.TotalWeightKg != nil {
			env.TotalWeightKg += *v.TotalWeightKg
		}
		if v.MaxAxleLoadKg != nil && *v.MaxAxleLoadKg > env.MaxAxleLoadKg {
			env.MaxAxleLoadKg = *v.MaxAxleLoadKg
		}
	}

	return env, nil
}
