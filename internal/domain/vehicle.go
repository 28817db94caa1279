package domain

// Represents the physical specification of a single convoy vehicle.
// Records are created and maintained by fleet management; the routing engine
// treats them as immutable once referenced by a transport.
// Nil dimension fields mean "not recorded", not zero.
type VehicleSpecification struct {
	ID            int64
	Model         string
	HeightCm      *int
	TotalWeightKg *int
	AxleCount     int
	MaxAxleLoadKg *int
	Active        bool
}

// Envelope holds the combined physical limits of a convoy's vehicle set.
// Height and axle load are maxima over the member vehicles, weight is the
// sum. Derived fresh per request and never mutated in place.
type Envelope struct {
	MaxHeightCm   int
	TotalWeightKg int
	MaxAxleLoadKg int
}
