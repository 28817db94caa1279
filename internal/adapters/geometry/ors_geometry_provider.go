package geometry

import (
	"bytes"
	"context"
	"convoy-route-service/internal/adapters/cache"
	"convoy-route-service/internal/domain"
	"convoy-route-service/internal/platform/obs"
	"convoy-route-service/internal/ports"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// ORSGeometryProvider implements GeometryProvider against an
// OpenRouteService-style directions API.
//
// It coordinates:
//   - Envelope hints passed as heavy-goods-vehicle restrictions
//   - Persistent route caching in Redis
//   - External API calls with retry/backoff and a bounded timeout
//   - Local direct-line fallback on any provider failure
//
// The provider never returns an error for provider-side failures; route
// generation always succeeds with some answer. Safe for concurrent use.
type ORSGeometryProvider struct {
	session    *http.Client
	apiKey     string
	baseURL    string
	profile    string
	routeCache *cache.RedisRouteCache
}

// NewORSGeometryProvider builds a provider for the given base URL. An empty
// base URL puts the provider in degraded mode: every request yields the
// direct-line fallback without touching the network.
func NewORSGeometryProvider(apiKey, baseURL string, routeCache *cache.RedisRouteCache) *ORSGeometryProvider {
	return &ORSGeometryProvider{
		session:    &http.Client{Timeout: 60 * time.Second},
		apiKey:     apiKey,
		baseURL:    baseURL,
		profile:    "driving-hgv",
		routeCache: routeCache,
	}
}

type directionsRequest struct {
	Coordinates       [][]float64        `json:"coordinates"`
	AlternativeRoutes *alternativeRoutes `json:"alternative_routes,omitempty"`
	Options           directionsOptions  `json:"options"`
}

type alternativeRoutes struct {
	TargetCount int     `json:"target_count"`
	ShareFactor float64 `json:"share_factor"`
}

type directionsOptions struct {
	VehicleType   string        `json:"vehicle_type"`
	AvoidFeatures []string      `json:"avoid_features,omitempty"`
	ProfileParams profileParams `json:"profile_params"`
}

type profileParams struct {
	Restrictions restrictions `json:"restrictions"`
}

// Provider restriction units: meters and tonnes.
type restrictions struct {
	Height   float64 `json:"height"`
	Weight   float64 `json:"weight"`
	Axleload float64 `json:"axleload"`
}

type directionsResponse struct {
	Routes []providerRoute `json:"routes"`
}

type providerRoute struct {
	Segments []providerSegment `json:"segments"`
	Geometry string            `json:"geometry"`
}

type providerSegment struct {
	FromLat       float64 `json:"from_lat"`
	FromLon       float64 `json:"from_lon"`
	ToLat         float64 `json:"to_lat"`
	ToLon         float64 `json:"to_lon"`
	DistanceKm    float64 `json:"distance_km"`
	DurationMin   float64 `json:"duration_min"`
	RoadName      string  `json:"road_name"`
	RoadCondition string  `json:"road_condition"`
}

// GetRoute fetches ordered route geometry for one variant.
//
// Any provider failure (timeout, non-success status, malformed or empty
// response) is recovered locally with the single direct-line segment and is
// never propagated to the caller.
func (o *ORSGeometryProvider) GetRoute(
	ctx context.Context,
	start domain.Coordinates,
	end domain.Coordinates,
	hints ports.RouteHints,
	variant domain.RouteVariant,
) (_ []ports.RawSegment, err error) {
	defer obs.Time(ctx, "ors.GetRoute")(&err)

	if o.baseURL == "" {
		return directRoute(start, end), nil
	}

	key := cache.RouteKey(start, end, hints, variant)
	if cached, ok, cerr := o.routeCache.Get(ctx, key); cerr != nil {
		log.Printf("op=ors.GetRoute route cache read failed: %v", cerr)
	} else if ok {
		return cached, nil
	}

	segments, ferr := o.fetchRoute(ctx, start, end, hints, variant)
	if ferr != nil {
		log.Printf("op=ors.GetRoute variant=%s provider unavailable, using direct route: %v", variant, ferr)
		return directRoute(start, end), nil
	}

	if cerr := o.routeCache.Put(ctx, key, segments); cerr != nil {
		log.Printf("op=ors.GetRoute route cache write failed: %v", cerr)
	}

	return segments, nil
}

func (o *ORSGeometryProvider) fetchRoute(
	ctx context.Context,
	start domain.Coordinates,
	end domain.Coordinates,
	hints ports.RouteHints,
	variant domain.RouteVariant,
) ([]ports.RawSegment, error) {
	endpoint := fmt.Sprintf("%s/v2/directions/%s", o.baseURL, o.profile)

	bodyObj := directionsRequest{
		Coordinates: [][]float64{start.CoordsToList(), end.CoordsToList()},
		Options: directionsOptions{
			VehicleType: hints.VehicleType,
			ProfileParams: profileParams{
				Restrictions: restrictions{
					Height:   float64(hints.MaxHeightCm) / 100,
					Weight:   float64(hints.TotalWeightKg) / 1000,
					Axleload: float64(hints.MaxAxleLoadKg) / 1000,
				},
			},
		},
	}
	if hints.AvoidRestrictions {
		bodyObj.Options.AvoidFeatures = []string{"restrictions"}
	}
	if variant == domain.VariantAlternative {
		bodyObj.AlternativeRoutes = &alternativeRoutes{TargetCount: 2, ShareFactor: 0.6}
	}

	payload, err := json.Marshal(bodyObj)
	if err != nil {
		return nil, fmt.Errorf("marshal directions request: %w", err)
	}

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		body := bytes.NewReader(payload)
		return o.newRequest(ctx, http.MethodPost, endpoint, body)
	})
	if err != nil {
		return nil, fmt.Errorf("directions request failed: %w", err)
	}
	defer resp.Body.Close()

	var dr directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return nil, fmt.Errorf("decode directions response: %w", err)
	}

	if len(dr.Routes) == 0 {
		return nil, fmt.Errorf("directions response contains no routes")
	}

	// The alternatives feature returns the primary route first; the variant
	// wants a distinct path when the provider produced one.
	route := dr.Routes[0]
	if variant == domain.VariantAlternative && len(dr.Routes) > 1 {
		route = dr.Routes[1]
	}

	if len(route.Segments) == 0 {
		return nil, fmt.Errorf("directions route contains no segments")
	}

	out := make([]ports.RawSegment, 0, len(route.Segments))
	for i, s := range route.Segments {
		if s.DistanceKm < 0 || s.DurationMin < 0 {
			return nil, fmt.Errorf("directions segment %d has negative metrics", i)
		}

		condition := s.RoadCondition
		if condition == "" {
			condition = domain.RoadConditionNormal
		}

		out = append(out, ports.RawSegment{
			From:             domain.Coordinates{Lat: s.FromLat, Lon: s.FromLon},
			To:               domain.Coordinates{Lat: s.ToLat, Lon: s.ToLon},
			DistanceKm:       s.DistanceKm,
			EstimatedTimeMin: s.DurationMin,
			RoadName:         s.RoadName,
			RoadCondition:    condition,
			Geometry:         route.Geometry,
		})
	}

	return out, nil
}

// directRoute wraps the domain fallback segment as provider output.
func directRoute(start, end domain.Coordinates) []ports.RawSegment {
	s := domain.DirectSegment(start, end)

	return []ports.RawSegment{{
		From:             s.From,
		To:               s.To,
		DistanceKm:       s.DistanceKm,
		EstimatedTimeMin: s.EstimatedTimeMin,
		RoadName:         s.RoadName,
		RoadCondition:    s.RoadCondition,
	}}
}
