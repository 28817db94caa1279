package domain

// InfraType classifies a physical infrastructure object on the road network.
type InfraType string

const (
	InfraBridge        InfraType = "BRIDGE"
	InfraTunnel        InfraType = "TUNNEL"
	InfraWeightStation InfraType = "WEIGHT_STATION"
)

// HeightRelevant reports whether a height limit on this infrastructure type
// physically constrains passage. Weight stations carry weight limits only.
func (t InfraType) HeightRelevant() bool {
	return t == InfraBridge || t == InfraTunnel
}

// A known infrastructure object with its legal limits.
// Records are created and updated by the periodic external sync and are
// read-only to the routing engine. Nil limits mean unconstrained.
type InfrastructureRecord struct {
	ID              int64
	ExternalID      *string
	Name            string
	Type            InfraType
	Latitude        float64
	Longitude       float64
	MaxHeightCm     *int
	MaxWeightKg     *int
	MaxAxleWeightKg *int
	IsActive        bool
}

func (r InfrastructureRecord) Location() Coordinates {
	return Coordinates{Lat: r.Latitude, Lon: r.Longitude}
}
