package directions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"journey-metrics-service/internal/platform/obs"
	"journey-metrics-service/internal/ports"
)

// GoogleDirectionsProvider implements DirectionsProvider against the
// Google Directions API.
//
// It coordinates:
//   - Request construction (place-id locations, waypoint chains,
//     departure instants)
//   - External API calls with retry/backoff
//   - Response decoding into the port's route shape
//
// The provider is safe for concurrent use.
type GoogleDirectionsProvider struct {
	session *http.Client
	apiKey  string
	baseURL string
}

func NewGoogleDirectionsProvider(apiKey string) (*GoogleDirectionsProvider, error) {
	if apiKey == "" {
		return nil, errors.New("google maps api key is empty")
	}

	return &GoogleDirectionsProvider{
		session: &http.Client{Timeout: 15 * time.Second},
		apiKey:  apiKey,
		baseURL: "https://maps.googleapis.com",
	}, nil
}

type directionsResponse struct {
	Status       string     `json:"status"`
	ErrorMessage string     `json:"error_message"`
	Routes       []rawRoute `json:"routes"`
}

type rawRoute struct {
	Legs []rawLeg `json:"legs"`
}

type rawLeg struct {
	StartAddress string   `json:"start_address"`
	EndAddress   string   `json:"end_address"`
	Duration     rawValue `json:"duration"`
	Distance     rawValue `json:"distance"`
}

type rawValue struct {
	Value int `json:"value"`
}

// Routes fetches directions for one request. ZERO_RESULTS and an
// empty route list yield (nil, nil): no route is not an error.
func (g *GoogleDirectionsProvider) Routes(ctx context.Context, req ports.RouteRequest) (_ *ports.Route, err error) {
	defer obs.Time(ctx, "directions.Routes")(&err)

	if req.Origin == "" || req.Destination == "" {
		return nil, errors.New("get directions: origin and destination must be non-empty")
	}
	if req.Mode == "" {
		return nil, errors.New("get directions: mode must be non-empty")
	}

	endpoint := g.baseURL + "/maps/api/directions/json"

	query := url.Values{}
	query.Set("origin", req.Origin)
	query.Set("destination", req.Destination)
	query.Set("mode", req.Mode)
	query.Set("units", "metric")
	query.Set("key", g.apiKey)
	if !req.DepartAt.IsZero() {
		query.Set("departure_time", strconv.FormatInt(req.DepartAt.Unix(), 10))
	}
	if len(req.Waypoints) > 0 {
		query.Set("waypoints", strings.Join(req.Waypoints, "|"))
	}

	resp, err := g.doWithRetry(ctx, func() (*http.Request, error) {
		r, err := g.newRequest(ctx, http.MethodGet, endpoint)
		if err != nil {
			return nil, err
		}
		r.URL.RawQuery = query.Encode()
		return r, nil
	})
	if err != nil {
		return nil, fmt.Errorf("get directions %s %q -> %q: %w", req.Mode, req.Origin, req.Destination, err)
	}
	defer resp.Body.Close()

	var body json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode directions response: %w", err)
	}

	var decoded directionsResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decode directions response: %w", err)
	}

	switch decoded.Status {
	case "OK":
	case "ZERO_RESULTS":
		return nil, nil
	default:
		return nil, fmt.Errorf("directions status %s: %s", decoded.Status, decoded.ErrorMessage)
	}

	if len(decoded.Routes) == 0 {
		return nil, nil
	}

	// Only the first route is measured; keep its raw payload for
	// audit.
	first := decoded.Routes[0]
	legs := make([]ports.RouteLeg, 0, len(first.Legs))
	for _, leg := range first.Legs {
		legs = append(legs, ports.RouteLeg{
			StartAddress:    leg.StartAddress,
			EndAddress:      leg.EndAddress,
			DurationSeconds: leg.Duration.Value,
			DistanceMeters:  leg.Distance.Value,
		})
	}

	raw, err := firstRouteRaw(body)
	if err != nil {
		return nil, fmt.Errorf("extract raw route: %w", err)
	}

	return &ports.Route{Legs: legs, Raw: raw}, nil
}

// firstRouteRaw extracts the first route's raw JSON from the full
// response body.
func firstRouteRaw(body json.RawMessage) (json.RawMessage, error) {
	var envelope struct {
		Routes []json.RawMessage `json:"routes"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, err
	}
	if len(envelope.Routes) == 0 {
		return nil, nil
	}
	return envelope.Routes[0], nil
}
