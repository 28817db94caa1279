package geometry

import (
	"context"
	"convoy-route-service/internal/domain"
	"convoy-route-service/internal/ports"
	"errors"
)

// MockGeometryProvider serves canned segments per variant, or a fixed error
// for every call when Err is set.
type MockGeometryProvider struct {
	Routes map[domain.RouteVariant][]ports.RawSegment
	Err    error
}

func NewMockGeometryProvider(routes map[domain.RouteVariant][]ports.RawSegment) *MockGeometryProvider {
	return &MockGeometryProvider{Routes: routes}
}

func (p *MockGeometryProvider) GetRoute(
	ctx context.Context,
	start domain.Coordinates,
	end domain.Coordinates,
	hints ports.RouteHints,
	variant domain.RouteVariant,
) ([]ports.RawSegment, error) {
	if p.Err != nil {
		return nil, p.Err
	}

	segments, ok := p.Routes[variant]
	if !ok {
		return nil, errors.New("no mock route for variant " + string(variant))
	}

	return segments, nil
}
