package models

import "time"

type Coord struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Passenger carries the contact and preference fields the alerting flow
// reads. Records are owned by the reservation CRUD layer and never
// written here.
type Passenger struct {
	ID                 string `json:"id"`
	FirstName          string `json:"first_name"`
	LastName           string `json:"last_name"`
	Email              string `json:"email"`
	Phone              string `json:"phone,omitempty"` // E.164
	LanguagePreference string `json:"language_preference"`
}

func (p Passenger) FullName() string { return p.FirstName + " " + p.LastName }

type Flight struct {
	ID            string    `json:"id"`
	FlightNumber  string    `json:"flight_number"`
	Origin        string    `json:"origin"` // IATA code
	Destination   string    `json:"destination"`
	DepartureTime time.Time `json:"departure_time"`
	ArrivalTime   time.Time `json:"arrival_time"`
	Gate          string    `json:"gate,omitempty"`
	Status        string    `json:"status"` // scheduled, delayed, cancelled, boarding, departed
}

type FlightSegment struct {
	ID           string  `json:"id"`
	Flight       *Flight `json:"flight"`
	Seat         string  `json:"seat,omitempty"`
	SegmentOrder int     `json:"segment_order"`
}

type Reservation struct {
	ID               string          `json:"id"`
	ConfirmationCode string          `json:"confirmation_code"`
	Passenger        *Passenger      `json:"passenger"`
	Segments         []FlightSegment `json:"flight_segments"`
	Status           string          `json:"status"`
}

// FirstSegment returns the segment used for gate and departure resolution,
// or nil when the reservation has none.
func (r *Reservation) FirstSegment() *FlightSegment {
	if r == nil || len(r.Segments) == 0 {
		return nil
	}
	return &r.Segments[0]
}

// SessionContext replaces the original free-form context blob with the
// fields the alerting flow actually reads and writes. Extra carries
// anything else that must round-trip.
type SessionContext struct {
	HelperEmail      string            `json:"helper_email,omitempty"`
	DetectedLanguage string            `json:"detected_language,omitempty"`
	LastAlert        *AlertSummary     `json:"location_alert,omitempty"`
	Extra            map[string]string `json:"extra,omitempty"`
}

// AlertSummary is the dashboard-facing digest written into session context
// each time an alert fires.
type AlertSummary struct {
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Metrics   Metrics   `json:"metrics"`
}

type Metrics struct {
	DistanceMeters         int `json:"distance_meters"`
	WalkingTimeMinutes     int `json:"walking_time_minutes"`
	TimeToDepartureMinutes int `json:"time_to_departure_minutes"`
}

type Session struct {
	ID          string         `json:"id"`
	State       string         `json:"state"`
	Reservation *Reservation   `json:"reservation,omitempty"`
	HelperLink  string         `json:"helper_link,omitempty"`
	Context     SessionContext `json:"context"`
	CreatedAt   time.Time      `json:"created_at"`
	ExpiresAt   time.Time      `json:"expires_at"`
}

// LocationFix is one GPS observation for a session. Fixes are append-only;
// the store drops pushes that moved less than the significance threshold.
type LocationFix struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"session_id"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Accuracy   *float64  `json:"accuracy,omitempty"` // meters
	CapturedAt time.Time `json:"captured_at"`
}

// Alert types. OffCourse and Arrived are declared in the schema but no
// dispatcher path produces them.
const (
	AlertRunningLate = "running_late"
	AlertUrgent      = "urgent"
	AlertOffCourse   = "off_course"
	AlertArrived     = "arrived"
)

type LocationAlert struct {
	ID                   string    `json:"id"`
	SessionID            string    `json:"session_id"`
	AlertType            string    `json:"alert_type"`
	Message              string    `json:"message"`
	DistanceToGate       *float64  `json:"distance_to_gate,omitempty"`
	EstimatedWalkingTime *int      `json:"estimated_walking_time,omitempty"`
	TimeToDeparture      *int      `json:"time_to_departure,omitempty"`
	Acknowledged         bool      `json:"acknowledged"`
	VoiceCallSent        bool      `json:"voice_call_sent"`
	EmailSent            bool      `json:"email_sent"`
	CreatedAt            time.Time `json:"created_at"`
}

// AlertStatus classifies a session's position against its departure time.
type AlertStatus string

const (
	StatusSafe    AlertStatus = "safe"
	StatusWarning AlertStatus = "warning"
	StatusUrgent  AlertStatus = "urgent"
	StatusArrived AlertStatus = "arrived"
)

// StatusReport is the evaluator's output. Numeric fields are nil when a
// precondition short-circuits; Message then explains why.
type StatusReport struct {
	Status                 AlertStatus `json:"alert_status"`
	DistanceMeters         *int        `json:"distance_meters,omitempty"`
	WalkingTimeMinutes     *int        `json:"walking_time_minutes,omitempty"`
	TimeToDepartureMinutes *int        `json:"time_to_departure_minutes,omitempty"`
	Message                string      `json:"message"`
	Directions             string      `json:"directions,omitempty"`
}

// DispatchResult reports which notification channels succeeded for one alert.
type DispatchResult struct {
	AlertID       string `json:"alert_id"`
	AlertType     string `json:"alert_type"`
	Message       string `json:"message"`
	VoiceCallSent bool   `json:"voice_call_sent"`
	EmailSent     bool   `json:"email_sent"`
	CallID        string `json:"call_id,omitempty"`
}
