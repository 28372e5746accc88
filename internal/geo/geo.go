package geo

import "math"

// Pace selects a walking-speed profile for time estimates.
type Pace string

const (
	PaceNormal  Pace = "normal"
	PaceElderly Pace = "elderly"
	PaceRushed  Pace = "rushed"
)

// walking speeds in meters per minute
var speeds = map[Pace]float64{
	PaceNormal:  80,  // ~5 km/h
	PaceElderly: 50,  // ~3 km/h
	PaceRushed:  100, // ~6 km/h
}

// Haversine distance in meters
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	const R = 6371000.0
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return R * c
}

// WalkingTimeMinutes estimates how long distanceMeters takes at the given
// pace, never reporting less than one minute for a non-zero distance.
// An unknown pace falls back to elderly, the profile this system targets.
func WalkingTimeMinutes(distanceMeters float64, pace Pace) int {
	speed, ok := speeds[pace]
	if !ok {
		speed = speeds[PaceElderly]
	}
	minutes := int(math.Round(distanceMeters / speed))
	if minutes < 1 {
		return 1
	}
	return minutes
}
