package domain

// A planned convoy movement between two points.
type Mission struct {
	ID    int64
	Name  string
	Start Coordinates
	End   Coordinates
}

// A transport executing a mission with a concrete vehicle set.
// ApprovedProposalID references the route approved by the external workflow;
// nil while no route has been approved.
type Transport struct {
	ID                 int64
	MissionID          int64
	VehicleIDs         []int64
	ApprovedProposalID *string
}
