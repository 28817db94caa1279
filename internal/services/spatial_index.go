package services

import (
	"context"
	"convoy-route-service/internal/domain"
	"convoy-route-service/internal/platform/obs"
	"convoy-route-service/internal/ports"
	"fmt"
	"sort"
	"sync"
)

// SpatialIndex is a read-only proximity lookup over a snapshot of active
// infrastructure records.
//
// The snapshot is loaded from the store with Reload and held in memory; the
// routing engine never mutates it. Distance is the cheap Euclidean degree
// approximation (see domain.DegreeDistanceKm), good enough at the 1-10 km
// radii obstacle matching operates at.
//
// Safe for concurrent use.
type SpatialIndex struct {
	store ports.InfrastructureStore

	mu      sync.RWMutex
	records []domain.InfrastructureRecord
}

func NewSpatialIndex(store ports.InfrastructureStore) *SpatialIndex {
	return &SpatialIndex{store: store}
}

// Reload replaces the snapshot with the store's current active records.
func (i *SpatialIndex) Reload(ctx context.Context) (err error) {
	defer obs.Time(ctx, "spatial.index.Reload")(&err)

	records, err := i.store.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("reload spatial index: %w", err)
	}

	i.mu.Lock()
	i.records = records
	i.mu.Unlock()

	return nil
}

// FindNear returns the active records within radiusKm of the given point,
// nearest first. Ties break on record id for deterministic output.
func (i *SpatialIndex) FindNear(lat, lon, radiusKm float64) []domain.InfrastructureRecord {
	point := domain.Coordinates{Lat: lat, Lon: lon}

	i.mu.RLock()
	defer i.mu.RUnlock()

	type candidate struct {
		record     domain.InfrastructureRecord
		distanceKm float64
	}

	hits := make([]candidate, 0, 4)
	for _, r := range i.records {
		if !r.IsActive {
			continue
		}

		d := domain.DegreeDistanceKm(point, r.Location())
		if d <= radiusKm {
			hits = append(hits, candidate{record: r, distanceKm: d})
		}
	}

	sort.Slice(hits, func(a, b int) bool {
		if hits[a].distanceKm != hits[b].distanceKm {
			return hits[a].distanceKm < hits[b].distanceKm
		}
		return hits[a].record.ID < hits[b].record.ID
	})

	out := make([]domain.InfrastructureRecord, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.record)
	}

	return out
}
