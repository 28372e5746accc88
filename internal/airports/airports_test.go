package airports

import (
	"strings"
	"testing"
)

func TestLookupGateExact(t *testing.T) {
	loc, ok := LookupGate("DFW", "B22")
	if !ok {
		t.Fatal("expected B22 at DFW")
	}
	if loc.Lat != 32.8986 || loc.Lng != -97.0363 || loc.Terminal != "B" || loc.Approximate {
		t.Fatalf("unexpected location: %+v", loc)
	}
}

func TestLookupGateCaseAndZeros(t *testing.T) {
	if _, ok := LookupGate("dfw", "b22"); !ok {
		t.Fatal("lookup should be case-insensitive")
	}
	// B05 should resolve to B5 after stripping leading zeros
	loc, ok := LookupGate("DFW", "B05")
	if !ok {
		t.Fatal("expected zero-stripped match")
	}
	if loc.Approximate {
		t.Fatal("zero-stripped match should be exact, not approximate")
	}
}

func TestLookupGateTerminalFallback(t *testing.T) {
	// B99 does not exist; fall back to Terminal B center
	loc, ok := LookupGate("DFW", "B99")
	if !ok {
		t.Fatal("expected terminal fallback")
	}
	if !loc.Approximate {
		t.Fatal("fallback must be flagged approximate")
	}
	if loc.Terminal != "B" {
		t.Fatalf("expected terminal B, got %s", loc.Terminal)
	}
}

func TestLookupGateUnknown(t *testing.T) {
	if _, ok := LookupGate("DFW", "Z1"); ok {
		t.Fatal("unknown terminal should not resolve")
	}
	if _, ok := LookupGate("XXX", "Z1"); ok {
		t.Fatal("unknown airport with unknown terminal should not resolve")
	}
	if _, ok := LookupGate("DFW", ""); ok {
		t.Fatal("empty gate should not resolve")
	}
}

func TestLookupGeofence(t *testing.T) {
	g, ok := LookupGeofence("dfw")
	if !ok {
		t.Fatal("expected DFW geofence")
	}
	if g.RadiusKm != 5 || g.Name == "" {
		t.Fatalf("unexpected geofence: %+v", g)
	}
	if _, ok := LookupGeofence("XXX"); ok {
		t.Fatal("unknown airport should have no geofence")
	}
}

func TestNearest(t *testing.T) {
	code, km, ok := Nearest(32.8968, -97.0380)
	if !ok || code != "DFW" {
		t.Fatalf("expected DFW, got %s ok=%v", code, ok)
	}
	if km > 0.1 {
		t.Fatalf("expected near-zero distance, got %f", km)
	}
	// middle of the Atlantic
	if _, _, ok := Nearest(30.0, -45.0); ok {
		t.Fatal("expected no airport within 10km")
	}
}

func TestDirectionsCardinal(t *testing.T) {
	// fix south-west of B22: gate is to the north-east, lat delta dominates
	msg := Directions(32.8958, -97.0385, "B22", "DFW", "en")
	if !strings.Contains(msg, "north") {
		t.Fatalf("expected northbound hint, got %q", msg)
	}
	if !strings.Contains(msg, "Terminal B") {
		t.Fatalf("expected terminal name, got %q", msg)
	}
}

func TestDirectionsSpanish(t *testing.T) {
	msg := Directions(32.8958, -97.0385, "B22", "DFW", "es")
	if !strings.Contains(msg, "norte") {
		t.Fatalf("expected localized hint, got %q", msg)
	}
}

func TestDirectionsUnresolvableGate(t *testing.T) {
	msg := Directions(32.8958, -97.0385, "Z9", "DFW", "en")
	if !strings.Contains(msg, "Check airport displays") {
		t.Fatalf("expected generic fallback, got %q", msg)
	}
	es := Directions(32.8958, -97.0385, "Z9", "DFW", "es")
	if !strings.Contains(es, "pantallas") {
		t.Fatalf("expected Spanish fallback, got %q", es)
	}
}
