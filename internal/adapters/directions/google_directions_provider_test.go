package directions

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"journey-metrics-service/internal/ports"
)

const okBody = `{
	"status": "OK",
	"routes": [{
		"legs": [
			{
				"start_address": "1 Origin St",
				"end_address": "2 Middle Ave",
				"duration": {"value": 300, "text": "5 mins"},
				"distance": {"value": 3000, "text": "3 km"}
			},
			{
				"start_address": "2 Middle Ave",
				"end_address": "3 End Rd",
				"duration": {"value": 600, "text": "10 mins"},
				"distance": {"value": 7000, "text": "7 km"}
			}
		]
	}]
}`

func mustParseInt(t *testing.T, s string) int64 {
	t.Helper()
	n, err := strconv.ParseInt(s, 10, 64)
	require.NoError(t, err)
	return n
}

func newTestProvider(t *testing.T, handler http.HandlerFunc) *GoogleDirectionsProvider {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p, err := NewGoogleDirectionsProvider("test-key")
	require.NoError(t, err)
	p.baseURL = srv.URL
	return p
}

func TestRoutesDecodesLegs(t *testing.T) {
	var gotQuery atomic.Value
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery.Store(r.URL.Query())
		w.Write([]byte(okBody))
	})

	depart := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)
	route, err := p.Routes(context.Background(), ports.RouteRequest{
		Origin:      "place_id:origin",
		Destination: "place_id:dest",
		Mode:        "driving",
		Waypoints:   []string{"place_id:mid1", "place_id:mid2"},
		DepartAt:    depart,
	})
	require.NoError(t, err)
	require.NotNil(t, route)

	require.Len(t, route.Legs, 2)
	assert.Equal(t, "1 Origin St", route.Legs[0].StartAddress)
	assert.Equal(t, 300, route.Legs[0].DurationSeconds)
	assert.Equal(t, 7000, route.Legs[1].DistanceMeters)
	assert.NotEmpty(t, route.Raw)

	q := gotQuery.Load().(url.Values)
	assert.Equal(t, "place_id:origin", q.Get("origin"))
	assert.Equal(t, "driving", q.Get("mode"))
	assert.Equal(t, "place_id:mid1|place_id:mid2", q.Get("waypoints"))
	assert.Equal(t, "metric", q.Get("units"))
	assert.Equal(t, depart.Unix(), mustParseInt(t, q.Get("departure_time")))
}

func TestRoutesZeroResultsIsNotAnError(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "ZERO_RESULTS", "routes": []}`))
	})

	route, err := p.Routes(context.Background(), ports.RouteRequest{
		Origin: "place_id:a", Destination: "place_id:b", Mode: "transit",
	})
	require.NoError(t, err)
	assert.Nil(t, route)
}

func TestRoutesAPIStatusError(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "REQUEST_DENIED", "error_message": "bad key", "routes": []}`))
	})

	_, err := p.Routes(context.Background(), ports.RouteRequest{
		Origin: "place_id:a", Destination: "place_id:b", Mode: "driving",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REQUEST_DENIED")
	assert.Contains(t, err.Error(), "bad key")
}

func TestRoutesRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(okBody))
	})

	route, err := p.Routes(context.Background(), ports.RouteRequest{
		Origin: "place_id:a", Destination: "place_id:b", Mode: "driving",
	})
	require.NoError(t, err)
	require.NotNil(t, route)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRoutesDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := p.Routes(context.Background(), ports.RouteRequest{
		Origin: "place_id:a", Destination: "place_id:b", Mode: "driving",
	})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRoutesValidatesRequest(t *testing.T) {
	p, err := NewGoogleDirectionsProvider("test-key")
	require.NoError(t, err)

	_, err = p.Routes(context.Background(), ports.RouteRequest{Mode: "driving"})
	assert.Error(t, err)

	_, err = p.Routes(context.Background(), ports.RouteRequest{
		Origin: "place_id:a", Destination: "place_id:b",
	})
	assert.Error(t, err)
}
