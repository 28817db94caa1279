package geometry

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"convoy-route-service/internal/domain"
	"convoy-route-service/internal/ports"
)

var (
	testStart = domain.Coordinates{Lat: 52.4064, Lon: 16.9252}
	testEnd   = domain.Coordinates{Lat: 51.1079, Lon: 17.0385}
)

func testHints() ports.RouteHints {
	return ports.RouteHints{
		MaxHeightCm:   410,
		TotalWeightKg: 37000,
		MaxAxleLoadKg: 11000,
		VehicleType:   "truck",
	}
}

func assertDirectFallback(t *testing.T, got []ports.RawSegment) {
	t.Helper()

	if len(got) != 1 {
		t.Fatalf("expected 1 fallback segment, got %d", len(got))
	}
	if got[0].RoadName != domain.DirectRouteName {
		t.Errorf("road name = %q, want %q", got[0].RoadName, domain.DirectRouteName)
	}
	wantKm := domain.HaversineKm(testStart, testEnd)
	if math.Abs(got[0].DistanceKm-wantKm) > 0.01 {
		t.Errorf("distance = %f, want %f", got[0].DistanceKm, wantKm)
	}
}

func TestGetRouteParsesProviderResponse(t *testing.T) {
	var gotReq directionsRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/directions/driving-hgv" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "test-key" {
			t.Errorf("authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}

		resp := directionsResponse{Routes: []providerRoute{{
			Geometry: "encoded-polyline",
			Segments: []providerSegment{
				{FromLat: 52.4064, FromLon: 16.9252, ToLat: 51.8, ToLon: 17.0, DistanceKm: 80, DurationMin: 70, RoadName: "S5"},
				{FromLat: 51.8, FromLon: 17.0, ToLat: 51.1079, ToLon: 17.0385, DistanceKm: 75, DurationMin: 68, RoadName: "A8", RoadCondition: "ROADWORKS"},
			},
		}}}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider := NewORSGeometryProvider("test-key", server.URL, nil)

	got, err := provider.GetRoute(context.Background(), testStart, testEnd, testHints(), domain.VariantOptimal)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(got))
	}

	if got[0].RoadName != "S5" || got[0].DistanceKm != 80 {
		t.Errorf("first segment = %+v", got[0])
	}
	// Missing road condition defaults.
	if got[0].RoadCondition != domain.RoadConditionNormal {
		t.Errorf("road condition = %q, want %q", got[0].RoadCondition, domain.RoadConditionNormal)
	}
	if got[1].RoadCondition != "ROADWORKS" {
		t.Errorf("road condition = %q, want ROADWORKS", got[1].RoadCondition)
	}
	if got[0].Geometry != "encoded-polyline" {
		t.Errorf("geometry = %q", got[0].Geometry)
	}

	// Envelope hints travel as meters and tonnes.
	r := gotReq.Options.ProfileParams.Restrictions
	if r.Height != 4.1 || r.Weight != 37 || r.Axleload != 11 {
		t.Errorf("restrictions = %+v, want 4.1/37/11", r)
	}
	if len(gotReq.Coordinates) != 2 || gotReq.Coordinates[0][0] != testStart.Lon {
		t.Errorf("coordinates = %v, want lon-first pairs", gotReq.Coordinates)
	}
}

func TestGetRouteAlternativePicksSecondRoute(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req directionsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.AlternativeRoutes == nil || req.AlternativeRoutes.TargetCount != 2 {
			t.Errorf("alternative_routes = %+v", req.AlternativeRoutes)
		}

		resp := directionsResponse{Routes: []providerRoute{
			{Segments: []providerSegment{{DistanceKm: 160, DurationMin: 150, RoadName: "S5"}}},
			{Segments: []providerSegment{{DistanceKm: 185, DurationMin: 170, RoadName: "DK15"}}},
		}}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider := NewORSGeometryProvider("test-key", server.URL, nil)

	got, err := provider.GetRoute(context.Background(), testStart, testEnd, testHints(), domain.VariantAlternative)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].RoadName != "DK15" {
		t.Fatalf("expected the second route, got %+v", got)
	}
}

func TestGetRouteMalformedResponseFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{not json"))
	}))
	defer server.Close()

	provider := NewORSGeometryProvider("test-key", server.URL, nil)

	got, err := provider.GetRoute(context.Background(), testStart, testEnd, testHints(), domain.VariantOptimal)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertDirectFallback(t, got)
}

func TestGetRouteServerErrorFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	provider := NewORSGeometryProvider("test-key", server.URL, nil)

	got, err := provider.GetRoute(context.Background(), testStart, testEnd, testHints(), domain.VariantOptimal)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertDirectFallback(t, got)
}

func TestGetRouteEmptyRoutesFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(directionsResponse{})
	}))
	defer server.Close()

	provider := NewORSGeometryProvider("test-key", server.URL, nil)

	got, err := provider.GetRoute(context.Background(), testStart, testEnd, testHints(), domain.VariantOptimal)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertDirectFallback(t, got)
}

func TestGetRouteDegradedModeWithoutBaseURL(t *testing.T) {
	provider := NewORSGeometryProvider("", "", nil)

	got, err := provider.GetRoute(context.Background(), testStart, testEnd, testHints(), domain.VariantSafe)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertDirectFallback(t, got)
}
