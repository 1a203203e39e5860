package domain

import "fmt"

// Mode is the closed set of transit means a journey is measured with.
// DrivingRouted is the driving variant forced through every intermediate
// waypoint in sequence; DrivingDirect is origin to destination only.
type Mode int

const (
	DrivingDirect Mode = iota + 1
	DrivingRouted
	Bicycling
	Walking
	Transit
)

// String returns the stable identifier used in the transit_modes
// reference table and in provider result maps.
func (m Mode) String() string {
	switch m {
	case DrivingDirect:
		return "driving"
	case DrivingRouted:
		return "driving_routed"
	case Bicycling:
		return "bicycling"
	case Walking:
		return "walking"
	case Transit:
		return "transit"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ProviderMode returns the travel mode parameter the directions
// provider understands. Both driving variants map to "driving"; they
// differ only in the waypoint chain sent with the request.
func (m Mode) ProviderMode() string {
	if m == DrivingRouted {
		return DrivingDirect.String()
	}
	return m.String()
}

// Routed reports whether the mode requires the intermediate waypoint
// chain on the provider request.
func (m Mode) Routed() bool { return m == DrivingRouted }

// DirectModes returns the modes measured origin-to-destination on
// every journey, in declaration order.
func DirectModes() []Mode {
	return []Mode{DrivingDirect, Bicycling, Walking, Transit}
}

// AllModes returns every member of the enumeration.
func AllModes() []Mode {
	return []Mode{DrivingDirect, DrivingRouted, Bicycling, Walking, Transit}
}

// ParseMode maps a reference-table mode string back to its Mode.
func ParseMode(s string) (Mode, error) {
	for _, m := range AllModes() {
		if m.String() == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("parse mode: unknown transit mode %q", s)
}
