package infrasync

import (
	"context"
	"convoy-route-service/internal/domain"
	"convoy-route-service/internal/platform/obs"
	"convoy-route-service/internal/ports"
	"convoy-route-service/internal/services"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"
)

// Syncer periodically pulls infrastructure records from an external JSON
// feed and upserts them through the same store interface the routing engine
// reads from. No in-process state is shared with route generation beyond the
// spatial index snapshot, which is reloaded after each pass.
//
// Records whose limits or active flag changed are forwarded to the
// re-evaluation trigger.
type Syncer struct {
	Session     *http.Client
	FeedURL     string
	Store       ports.InfrastructureStore
	Index       *services.SpatialIndex
	Reevaluator *services.Reevaluator
	Interval    time.Duration
}

func NewSyncer(
	feedURL string,
	store ports.InfrastructureStore,
	index *services.SpatialIndex,
	reevaluator *services.Reevaluator,
	interval time.Duration,
) *Syncer {
	return &Syncer{
		Session:     &http.Client{Timeout: 30 * time.Second},
		FeedURL:     feedURL,
		Store:       store,
		Index:       index,
		Reevaluator: reevaluator,
		Interval:    interval,
	}
}

// Run executes sync passes on a fixed interval until the context is
// cancelled. A failed pass is logged and retried on the next tick; the
// routing engine keeps serving from the previous snapshot in the meantime.
func (s *Syncer) Run(ctx context.Context) {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.SyncOnce(ctx); err != nil {
				log.Printf("op=infrasync.SyncOnce err=%v", err)
			}
		}
	}
}

type feedRecord struct {
	ExternalID      string  `json:"external_id"`
	Name            string  `json:"name"`
	Type            string  `json:"type"`
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`
	MaxHeightCm     *int    `json:"max_height_cm"`
	MaxWeightKg     *int    `json:"max_weight_kg"`
	MaxAxleWeightKg *int    `json:"max_axle_weight_kg"`
	IsActive        bool    `json:"is_active"`
}

// SyncOnce fetches the feed, upserts every record (last-writer-wins keyed on
// external id), reloads the spatial index snapshot and triggers
// re-evaluation for records whose constraints changed.
func (s *Syncer) SyncOnce(ctx context.Context) (err error) {
	defer obs.Time(ctx, "infrasync.SyncOnce")(&err)

	records, err := s.fetchFeed(ctx)
	if err != nil {
		return fmt.Errorf("sync infrastructure: %w", err)
	}

	changed := make([]domain.InfrastructureRecord, 0, 4)
	for _, fr := range records {
		if fr.ExternalID == "" || fr.Name == "" {
			log.Printf("op=infrasync.SyncOnce skipping feed record with empty id or name")
			continue
		}

		incoming := domain.InfrastructureRecord{
			ExternalID:      &fr.ExternalID,
			Name:            fr.Name,
			Type:            domain.InfraType(fr.Type),
			Latitude:        fr.Latitude,
			Longitude:       fr.Longitude,
			MaxHeightCm:     fr.MaxHeightCm,
			MaxWeightKg:     fr.MaxWeightKg,
			MaxAxleWeightKg: fr.MaxAxleWeightKg,
			IsActive:        fr.IsActive,
		}

		existing, err := s.Store.FindByExternalID(ctx, fr.ExternalID)
		isNew := errors.Is(err, domain.ErrNotFound)
		if err != nil && !isNew {
			return fmt.Errorf("sync infrastructure: lookup %q: %w", fr.ExternalID, err)
		}

		saved, err := s.Store.Save(ctx, incoming)
		if err != nil {
			return fmt.Errorf("sync infrastructure: save %q: %w", fr.ExternalID, err)
		}

		if isNew || constraintsChanged(existing, saved) {
			changed = append(changed, saved)
		}
	}

	// Reload before re-evaluating so regenerated proposals see the fresh
	// snapshot.
	if err := s.Index.Reload(ctx); err != nil {
		return fmt.Errorf("sync infrastructure: %w", err)
	}

	for _, record := range changed {
		if err := s.Reevaluator.InfrastructureChanged(ctx, record); err != nil {
			log.Printf("op=infrasync.SyncOnce reevaluate infrastructure=%d err=%v", record.ID, err)
		}
	}

	return nil
}

func (s *Syncer) fetchFeed(ctx context.Context) ([]feedRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.FeedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create feed request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.Session.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch feed: unexpected status %d", resp.StatusCode)
	}

	var records []feedRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}

	return records, nil
}

// constraintsChanged reports whether a record update affects routing:
// the active flag flipped or a numeric limit moved.
func constraintsChanged(old, new domain.InfrastructureRecord) bool {
	return old.IsActive != new.IsActive ||
		!intPtrEqual(old.MaxHeightCm, new.MaxHeightCm) ||
		!intPtrEqual(old.MaxWeightKg, new.MaxWeightKg) ||
		!intPtrEqual(old.MaxAxleWeightKg, new.MaxAxleWeightKg)
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
