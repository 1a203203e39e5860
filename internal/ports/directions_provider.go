package ports

import (
	"context"
	"encoding/json"
	"time"
)

// RouteRequest describes one directions lookup. Waypoints carries the
// intermediate place ids and is only set for the routed driving task.
type RouteRequest struct {
	Origin      string
	Destination string
	Mode        string
	Waypoints   []string
	DepartAt    time.Time
}

// RouteLeg is one hop of a provider route with the endpoint addresses
// the provider reported for it.
type RouteLeg struct {
	StartAddress    string
	EndAddress      string
	DurationSeconds int
	DistanceMeters  int
}

// Route is a provider route: an ordered sequence of legs plus the raw
// payload retained for audit.
type Route struct {
	Legs []RouteLeg
	Raw  json.RawMessage
}

// Contract for retrieving a route from the external directions
// provider. A nil Route with a nil error means the provider found no
// route for the request; that is not an error condition.
// Implementations must be safe for concurrent use.
type DirectionsProvider interface {
	Routes(ctx context.Context, req RouteRequest) (*Route, error)
}
