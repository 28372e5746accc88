package geo

import (
	"math"
	"testing"
)

func TestHaversineZeroIdentity(t *testing.T) {
	if d := Haversine(32.8986, -97.0363, 32.8986, -97.0363); d != 0 {
		t.Fatalf("expected 0, got %f", d)
	}
}

func TestHaversineSymmetry(t *testing.T) {
	points := [][4]float64{
		{32.8958, -97.0385, 32.8986, -97.0363},
		{40.6413, -73.7781, 33.9425, -118.4081},
		{-33.8688, 151.2093, 51.5074, -0.1278},
	}
	for _, p := range points {
		ab := Haversine(p[0], p[1], p[2], p[3])
		ba := Haversine(p[2], p[3], p[0], p[1])
		if math.Abs(ab-ba) > 1e-9 {
			t.Fatalf("asymmetric: %f vs %f", ab, ba)
		}
	}
}

func TestHaversineAirportScale(t *testing.T) {
	// DFW gate B22 to a fix in Terminal C, roughly 373 m
	d := Haversine(32.8958, -97.0385, 32.8986, -97.0363)
	if d < 370 || d > 376 {
		t.Fatalf("expected ~373m, got %f", d)
	}
}

func TestWalkingTimeFloor(t *testing.T) {
	for _, dist := range []float64{1, 10, 24.9, 49} {
		if m := WalkingTimeMinutes(dist, PaceElderly); m < 1 {
			t.Fatalf("distance %f: expected >= 1 minute, got %d", dist, m)
		}
	}
}

func TestWalkingTimePaces(t *testing.T) {
	cases := []struct {
		dist float64
		pace Pace
		want int
	}{
		{400, PaceElderly, 8},
		{400, PaceNormal, 5},
		{400, PaceRushed, 4},
		{373, PaceElderly, 7},
		{373, Pace("unknown"), 7}, // falls back to elderly
	}
	for _, c := range cases {
		if got := WalkingTimeMinutes(c.dist, c.pace); got != c.want {
			t.Fatalf("WalkingTimeMinutes(%f, %s) = %d, want %d", c.dist, c.pace, got, c.want)
		}
	}
}
