package services

// Base consumption of a loaded convoy truck in liters per kilometer.
const baseConsumptionLPerKm = 0.35

// EstimateFuel returns the fuel consumption in liters for a route of the
// given length driven by a convoy of the given total weight.
//
// The model is linear in distance with a weight surcharge of 10% per 1000 kg.
// It can be replaced by a richer model without changing the assembler's
// contract (single scalar output).
func EstimateFuel(distanceKm float64, totalWeightKg int) float64 {
	return distanceKm * baseConsumptionLPerKm * (1 + float64(totalWeightKg)/10000)
}
