package ports

import (
	"context"
	"convoy-route-service/internal/domain"
)

// Port: boundary for reading and syncing infrastructure records.
// The routing engine only reads; Save exists for the periodic sync task.
type InfrastructureStore interface {
	// Return active records within radiusKm of the given point.
	// Implementations may over-select with a coarse predicate; callers
	// re-check limits precisely.
	FindNear(ctx context.Context, lat, lon, radiusKm float64) ([]domain.InfrastructureRecord, error)

	// Look up a record by its external sync identifier.
	// Returns domain.ErrNotFound when no record matches.
	FindByExternalID(ctx context.Context, externalID string) (domain.InfrastructureRecord, error)

	// Insert or update a record (last-writer-wins, keyed on external id).
	Save(ctx context.Context, record domain.InfrastructureRecord) (domain.InfrastructureRecord, error)

	// Return all active records, for snapshot loading.
	ListActive(ctx context.Context) ([]domain.InfrastructureRecord, error)
}
