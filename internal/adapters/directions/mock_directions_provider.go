package directions

import (
	"context"
	"encoding/json"
	"sync"

	"journey-metrics-service/internal/ports"
)

// MockRoute is one canned response keyed by mode. A routed request
// (one with waypoints) looks up the "routed" variant first so tests
// can distinguish the direct and waypoint-chained driving lookups.
type MockRoute struct {
	Mode   string
	Routed bool
	Legs   []ports.RouteLeg
	Err    error
}

// MockDirectionsProvider serves canned routes and records every
// request it sees. Modes with no entry yield a nil route, matching
// the live provider's no-route behavior.
type MockDirectionsProvider struct {
	mu       sync.Mutex
	m        map[string]MockRoute
	requests []ports.RouteRequest
}

func NewMockDirectionsProvider(routes []MockRoute) *MockDirectionsProvider {
	m := make(map[string]MockRoute, len(routes))
	for _, r := range routes {
		m[mockKey(r.Mode, r.Routed)] = r
	}
	return &MockDirectionsProvider{m: m}
}

func mockKey(mode string, routed bool) string {
	if routed {
		return mode + "|routed"
	}
	return mode
}

func (p *MockDirectionsProvider) Routes(ctx context.Context, req ports.RouteRequest) (*ports.Route, error) {
	p.mu.Lock()
	p.requests = append(p.requests, req)
	r, ok := p.m[mockKey(req.Mode, len(req.Waypoints) > 0)]
	p.mu.Unlock()

	if !ok {
		return nil, nil
	}
	if r.Err != nil {
		return nil, r.Err
	}

	return &ports.Route{Legs: r.Legs, Raw: json.RawMessage(`{"summary":"mock"}`)}, nil
}

// Requests returns a copy of every request seen so far.
func (p *MockDirectionsProvider) Requests() []ports.RouteRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]ports.RouteRequest, len(p.requests))
	copy(out, p.requests)
	return out
}
