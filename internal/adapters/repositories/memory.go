package repositories

import (
	"context"
	"convoy-route-service/internal/domain"
	"fmt"
	"sort"
	"sync"
)

// In-memory implementations of the store ports, used by service tests and
// local runs without a database. All are safe for concurrent use.

type MemoryVehicleRepository struct {
	mu       sync.RWMutex
	vehicles map[int64]domain.VehicleSpecification
}

func NewMemoryVehicleRepository(vehicles []domain.VehicleSpecification) *MemoryVehicleRepository {
	m := make(map[int64]domain.VehicleSpecification, len(vehicles))
	for _, v := range vehicles {
		m[v.ID] = v
	}
	return &MemoryVehicleRepository{vehicles: m}
}

func (r *MemoryVehicleRepository) GetVehicles(ctx context.Context, ids []int64) ([]domain.VehicleSpecification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.VehicleSpecification, 0, len(ids))
	for _, id := range ids {
		v, ok := r.vehicles[id]
		if !ok {
			return nil, fmt.Errorf("get vehicles: vehicle %d: %w", id, domain.ErrNotFound)
		}
		out = append(out, v)
	}

	return out, nil
}

type MemoryInfrastructureStore struct {
	mu      sync.RWMutex
	nextID  int64
	records map[int64]domain.InfrastructureRecord
}

func NewMemoryInfrastructureStore(records []domain.InfrastructureRecord) *MemoryInfrastructureStore {
	s := &MemoryInfrastructureStore{records: make(map[int64]domain.InfrastructureRecord, len(records))}
	for _, r := range records {
		if r.ID > s.nextID {
			s.nextID = r.ID
		}
		s.records[r.ID] = r
	}
	return s
}

func (s *MemoryInfrastructureStore) FindNear(ctx context.Context, lat, lon, radiusKm float64) ([]domain.InfrastructureRecord, error) {
	point := domain.Coordinates{Lat: lat, Lon: lon}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.InfrastructureRecord, 0, 4)
	for _, r := range s.records {
		if r.IsActive && domain.DegreeDistanceKm(point, r.Location()) <= radiusKm {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })

	return out, nil
}

func (s *MemoryInfrastructureStore) FindByExternalID(ctx context.Context, externalID string) (domain.InfrastructureRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.records {
		if r.ExternalID != nil && *r.ExternalID == externalID {
			return r, nil
		}
	}

	return domain.InfrastructureRecord{}, fmt.Errorf("find infrastructure external_id=%q: %w", externalID, domain.ErrNotFound)
}

func (s *MemoryInfrastructureStore) Save(ctx context.Context, record domain.InfrastructureRecord) (domain.InfrastructureRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record.ExternalID != nil {
		for _, existing := range s.records {
			if existing.ExternalID != nil && *existing.ExternalID == *record.ExternalID {
				record.ID = existing.ID
				break
			}
		}
	}

	if record.ID == 0 {
		s.nextID++
		record.ID = s.nextID
	}
	s.records[record.ID] = record

	return record, nil
}

func (s *MemoryInfrastructureStore) ListActive(ctx context.Context) ([]domain.InfrastructureRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.InfrastructureRecord, 0, len(s.records))
	for _, r := range s.records {
		if r.IsActive {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })

	return out, nil
}

type MemoryMissionStore struct {
	mu         sync.RWMutex
	missions   map[int64]domain.Mission
	transports map[int64]domain.Transport
}

func NewMemoryMissionStore(missions []domain.Mission, transports []domain.Transport) *MemoryMissionStore {
	s := &MemoryMissionStore{
		missions:   make(map[int64]domain.Mission, len(missions)),
		transports: make(map[int64]domain.Transport, len(transports)),
	}
	for _, m := range missions {
		s.missions[m.ID] = m
	}
	for _, t := range transports {
		s.transports[t.ID] = t
	}
	return s
}

func (s *MemoryMissionStore) GetMission(ctx context.Context, id int64) (domain.Mission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.missions[id]
	if !ok {
		return domain.Mission{}, fmt.Errorf("get mission %d: %w", id, domain.ErrNotFound)
	}
	return m, nil
}

func (s *MemoryMissionStore) ListTransports(ctx context.Context) ([]domain.Transport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Transport, 0, len(s.transports))
	for _, t := range s.transports {
		out = append(out, t)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })

	return out, nil
}

func (s *MemoryMissionStore) SetApprovedProposal(ctx context.Context, transportID int64, proposalID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.transports[transportID]
	if !ok {
		return fmt.Errorf("set approved proposal: transport %d: %w", transportID, domain.ErrNotFound)
	}

	t.ApprovedProposalID = &proposalID
	s.transports[transportID] = t

	return nil
}

type MemoryProposalRepository struct {
	mu        sync.RWMutex
	proposals map[string]domain.RouteProposal

	// SaveErr, when set, fails every SaveProposal. Used to exercise
	// persistence-failure paths in tests.
	SaveErr error
}

func NewMemoryProposalRepository() *MemoryProposalRepository {
	return &MemoryProposalRepository{proposals: make(map[string]domain.RouteProposal)}
}

func (r *MemoryProposalRepository) SaveProposal(ctx context.Context, p *domain.RouteProposal) error {
	if r.SaveErr != nil {
		return r.SaveErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.proposals[p.ID] = *p

	return nil
}

func (r *MemoryProposalRepository) GetProposal(ctx context.Context, id string) (domain.RouteProposal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.proposals[id]
	if !ok {
		return domain.RouteProposal{}, fmt.Errorf("get proposal %s: %w", id, domain.ErrNotFound)
	}
	return p, nil
}

func (r *MemoryProposalRepository) ListByMission(ctx context.Context, missionID int64) ([]domain.RouteProposal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.RouteProposal, 0, 4)
	for _, p := range r.proposals {
		if p.MissionID == missionID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(a, b int) bool {
		if !out[a].GeneratedAt.Equal(out[b].GeneratedAt) {
			return out[a].GeneratedAt.Before(out[b].GeneratedAt)
		}
		return out[a].ID < out[b].ID
	})

	return out, nil
}

func (r *MemoryProposalRepository) SetApproved(ctx context.Context, id string, approved bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.proposals[id]
	if !ok {
		return fmt.Errorf("set approved %s: %w", id, domain.ErrNotFound)
	}

	p.Approved = approved
	r.proposals[id] = p

	return nil
}

func (r *MemoryProposalRepository) DeleteProposal(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.proposals[id]; !ok {
		return fmt.Errorf("delete proposal %s: %w", id, domain.ErrNotFound)
	}
	delete(r.proposals, id)

	return nil
}
