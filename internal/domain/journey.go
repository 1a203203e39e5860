package domain

// Journey lifecycle statuses, mirroring the journey_statuses reference
// table. Status transitions to error/disabled are operator actions;
// the measurement core only reads active journeys and records error
// messages.
type Status string

const (
	StatusActive   Status = "active"
	StatusError    Status = "error"
	StatusDisabled Status = "disabled"
)

// Journey is a named, ordered chain of waypoints measured repeatedly
// over time. Waypoint ordering defines origin (first), destination
// (last) and the routed intermediates (the rest).
type Journey struct {
	ID           int
	Name         string
	Description  string
	City         string
	State        string
	Country      string
	Timezone     string
	Status       Status
	ErrorMessage string
	Waypoints    []Waypoint
}

// Origin returns the first waypoint. Callers must check Measurable
// first.
func (j *Journey) Origin() Waypoint { return j.Waypoints[0] }

// Destination returns the last waypoint.
func (j *Journey) Destination() Waypoint { return j.Waypoints[len(j.Waypoints)-1] }

// Intermediates returns the waypoints strictly between origin and
// destination, in sequence order.
func (j *Journey) Intermediates() []Waypoint {
	if len(j.Waypoints) <= 2 {
		return nil
	}
	return j.Waypoints[1 : len(j.Waypoints)-1]
}

// Measurable reports whether the journey has a valid origin/destination
// pair. A single-waypoint journey is never measured.
func (j *Journey) Measurable() bool { return len(j.Waypoints) >= 2 }

// Waypoint is one stop in a journey's chain. Immutable once created;
// sequence numbers are 1-based and unique within the journey.
type Waypoint struct {
	ID               int
	JourneyID        int
	SequenceNumber   int
	PlaceID          string
	FormattedAddress string
	Latitude         float64
	Longitude        float64
}
