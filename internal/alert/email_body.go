package alert

import (
	"bytes"
	"html/template"

	"github.com/example/voice-concierge/internal/models"
)

var helperEmailTmpl = template.Must(template.New("helper_alert").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <div style="background: #dc3545; color: white; padding: 20px; border-radius: 10px 10px 0 0; text-align: center;">
    <h1 style="margin: 0;">Location Alert</h1>
  </div>
  <div style="background: white; padding: 30px; border: 1px solid #e0e0e0; border-top: none; border-radius: 0 0 10px 10px;">
    <p style="font-size: 18px;"><strong>{{.PassengerName}}</strong> may be running late for their flight.</p>
    <div style="background: #fff3cd; border-left: 4px solid #ffc107; padding: 15px; margin: 20px 0;">
      <h3 style="margin: 0 0 10px 0; color: #856404;">Current Status</h3>
      <ul style="margin: 0; color: #856404;">
        <li>Distance to gate: <strong>{{.Metrics.DistanceMeters}} meters</strong></li>
        <li>Estimated walking time: <strong>{{.Metrics.WalkingTimeMinutes}} minutes</strong></li>
        <li>Time until departure: <strong>{{.Metrics.TimeToDepartureMinutes}} minutes</strong></li>
        <li>Gate: <strong>{{.Gate}}</strong></li>
      </ul>
    </div>
    <div style="background: #e7f1ff; padding: 15px; border-radius: 8px; margin: 20px 0;">
      <h3 style="margin: 0 0 10px 0; color: #0d6efd;">Directions</h3>
      <p style="margin: 0;">{{.Directions}}</p>
    </div>
    <div style="background: #f8f9fa; padding: 15px; border-radius: 8px; margin: 20px 0;">
      <h3 style="margin: 0 0 10px 0;">Flight Details</h3>
      <p style="margin: 5px 0;"><strong>{{.FlightNumber}}</strong></p>
      <p style="margin: 5px 0;">{{.Origin}} &rarr; {{.Destination}}</p>
      <p style="margin: 5px 0;">Departure: {{.Departure}}</p>
    </div>
    <p style="color: #666;">You can monitor their progress on the Family Helper dashboard.</p>
  </div>
</body>
</html>`))

func helperEmailBody(passengerName string, flight *models.Flight, gate string, metrics models.Metrics, directions string) string {
	var buf bytes.Buffer
	_ = helperEmailTmpl.Execute(&buf, struct {
		PassengerName string
		Metrics       models.Metrics
		Gate          string
		Directions    string
		FlightNumber  string
		Origin        string
		Destination   string
		Departure     string
	}{
		PassengerName: passengerName,
		Metrics:       metrics,
		Gate:          gate,
		Directions:    directions,
		FlightNumber:  flight.FlightNumber,
		Origin:        flight.Origin,
		Destination:   flight.Destination,
		Departure:     flight.DepartureTime.Format("3:04 PM"),
	})
	return buf.String()
}
