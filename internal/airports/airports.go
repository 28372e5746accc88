// Package airports holds static reference data for the airports the
// concierge serves: gate coordinates, terminal centers, and geofences.
// The tables ship with the binary and are never mutated at runtime.
package airports

import (
	"strings"

	"github.com/example/voice-concierge/internal/geo"
)

// GateLocation is a resolved gate position. Approximate is set when the
// exact gate was unknown and the terminal center was used instead.
type GateLocation struct {
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Terminal    string  `json:"terminal"`
	Approximate bool    `json:"approximate"`
}

type TerminalLocation struct {
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Name string  `json:"name"`
}

// Geofence is a circular "is the passenger at this airport" region.
type Geofence struct {
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	RadiusKm float64 `json:"radius_km"`
	Name     string  `json:"name"`
}

// LookupGate resolves a gate to coordinates. Resolution order: exact id,
// id with leading zeros stripped, then the terminal center inferred from
// the gate's first character (flagged approximate). Returns false only
// when even the terminal is unknown.
func LookupGate(airportCode, gate string) (GateLocation, bool) {
	gates, ok := airportGates[strings.ToUpper(airportCode)]
	if ok {
		if loc, ok := gates[strings.ToUpper(gate)]; ok {
			return loc, true
		}
		stripped := strings.TrimLeft(strings.ToUpper(gate), "0")
		if loc, ok := gates[stripped]; ok {
			return loc, true
		}
	}
	if gate == "" {
		return GateLocation{}, false
	}
	terminal := strings.ToUpper(gate[:1])
	if term, ok := LookupTerminal(airportCode, terminal); ok {
		return GateLocation{Lat: term.Lat, Lng: term.Lng, Terminal: terminal, Approximate: true}, true
	}
	return GateLocation{}, false
}

func LookupTerminal(airportCode, terminal string) (TerminalLocation, bool) {
	terms, ok := airportTerminals[strings.ToUpper(airportCode)]
	if !ok {
		return TerminalLocation{}, false
	}
	t, ok := terms[strings.ToUpper(terminal)]
	return t, ok
}

func LookupGeofence(airportCode string) (Geofence, bool) {
	g, ok := airportGeofences[strings.ToUpper(airportCode)]
	return g, ok
}

// Nearest returns the closest known airport within 10 km of the point,
// with the distance in kilometers.
func Nearest(lat, lng float64) (string, float64, bool) {
	const maxKm = 10.0
	best := ""
	bestKm := maxKm
	for code, g := range airportGeofences {
		km := geo.Haversine(lat, lng, g.Lat, g.Lng) / 1000
		if km <= bestKm {
			bestKm = km
			best = code
		}
	}
	if best == "" {
		return "", 0, false
	}
	return best, bestKm, true
}

// Directions produces a coarse cardinal-direction hint from a point to a
// gate, localized to English or Spanish. When the gate cannot be resolved
// the caller gets a generic "check airport displays" line instead.
func Directions(fromLat, fromLng float64, gate, airportCode, language string) string {
	loc, ok := LookupGate(airportCode, gate)
	if !ok {
		if language == "es" {
			return "Dirijase a la puerta " + gate + ". Consulte las pantallas del aeropuerto."
		}
		return "Head towards gate " + gate + ". Check airport displays for directions."
	}

	latDiff := loc.Lat - fromLat
	lngDiff := loc.Lng - fromLng

	var dir, dirEs string
	if abs(latDiff) > abs(lngDiff) {
		if latDiff > 0 {
			dir, dirEs = "north", "norte"
		} else {
			dir, dirEs = "south", "sur"
		}
	} else {
		if lngDiff > 0 {
			dir, dirEs = "east", "este"
		} else {
			dir, dirEs = "west", "oeste"
		}
	}

	if language == "es" {
		if loc.Terminal != "" {
			return "Dirijase hacia el " + dirEs + " hacia la Terminal " + loc.Terminal + ". Su puerta " + gate + " esta en esa direccion."
		}
		return "Dirijase hacia el " + dirEs + " hacia la puerta " + gate + "."
	}
	if loc.Terminal != "" {
		return "Head " + dir + " towards Terminal " + loc.Terminal + ". Gate " + gate + " is in that direction."
	}
	return "Head " + dir + " towards gate " + gate + "."
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
