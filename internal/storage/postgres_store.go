package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	_ "github.com/lib/pq"

	"github.com/example/voice-concierge/internal/models"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	// quick ping
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

func (p *PostgresStore) GetSession(ctx context.Context, id string) (*models.Session, error) {
	s := &models.Session{}
	var (
		reservationID sql.NullString
		helperLink    sql.NullString
		rawContext    []byte
	)
	err := p.db.QueryRowContext(ctx,
		`SELECT id, state, reservation_id, helper_link, context, created_at, expires_at FROM sessions WHERE id=$1`, id).
		Scan(&s.ID, &s.State, &reservationID, &helperLink, &rawContext, &s.CreatedAt, &s.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	s.HelperLink = helperLink.String
	if len(rawContext) > 0 {
		if err := json.Unmarshal(rawContext, &s.Context); err != nil {
			return nil, err
		}
	}
	if reservationID.Valid {
		res, err := p.loadReservation(ctx, reservationID.String)
		if err != nil {
			return nil, err
		}
		s.Reservation = res
	}
	return s, nil
}

func (p *PostgresStore) loadReservation(ctx context.Context, id string) (*models.Reservation, error) {
	res := &models.Reservation{Passenger: &models.Passenger{}}
	err := p.db.QueryRowContext(ctx,
		`SELECT r.id, r.confirmation_code, r.status,
		        pa.id, pa.first_name, pa.last_name, pa.email, COALESCE(pa.phone, ''), pa.language_preference
		 FROM reservations r JOIN passengers pa ON pa.id = r.passenger_id
		 WHERE r.id=$1`, id).
		Scan(&res.ID, &res.ConfirmationCode, &res.Status,
			&res.Passenger.ID, &res.Passenger.FirstName, &res.Passenger.LastName,
			&res.Passenger.Email, &res.Passenger.Phone, &res.Passenger.LanguagePreference)
	if err != nil {
		return nil, err
	}

	rows, err := p.db.QueryContext(ctx,
		`SELECT s.id, COALESCE(s.seat, ''), s.segment_order,
		        f.id, f.flight_number, f.origin, f.destination, f.departure_time, f.arrival_time,
		        COALESCE(f.gate, ''), f.status
		 FROM flight_segments s JOIN flights f ON f.id = s.flight_id
		 WHERE s.reservation_id=$1 ORDER BY s.segment_order`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		seg := models.FlightSegment{Flight: &models.Flight{}}
		if err := rows.Scan(&seg.ID, &seg.Seat, &seg.SegmentOrder,
			&seg.Flight.ID, &seg.Flight.FlightNumber, &seg.Flight.Origin, &seg.Flight.Destination,
			&seg.Flight.DepartureTime, &seg.Flight.ArrivalTime, &seg.Flight.Gate, &seg.Flight.Status); err != nil {
			return nil, err
		}
		res.Segments = append(res.Segments, seg)
	}
	return res, rows.Err()
}

func (p *PostgresStore) UpdateSessionContext(ctx context.Context, id string, sc models.SessionContext) error {
	b, err := json.Marshal(sc)
	if err != nil {
		return err
	}
	result, err := p.db.ExecContext(ctx, `UPDATE sessions SET context=$1 WHERE id=$2`, b, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (p *PostgresStore) SaveFix(ctx context.Context, fix *models.LocationFix) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO passenger_locations(id, session_id, latitude, longitude, accuracy, captured_at) VALUES($1,$2,$3,$4,$5,$6)`,
		fix.ID, fix.SessionID, fix.Latitude, fix.Longitude, fix.Accuracy, fix.CapturedAt)
	return err
}

func (p *PostgresStore) LatestFix(ctx context.Context, sessionID string) (*models.LocationFix, error) {
	fix := &models.LocationFix{}
	err := p.db.QueryRowContext(ctx,
		`SELECT id, session_id, latitude, longitude, accuracy, captured_at
		 FROM passenger_locations WHERE session_id=$1 ORDER BY captured_at DESC LIMIT 1`, sessionID).
		Scan(&fix.ID, &fix.SessionID, &fix.Latitude, &fix.Longitude, &fix.Accuracy, &fix.CapturedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return fix, nil
}

func (p *PostgresStore) SaveAlert(ctx context.Context, a *models.LocationAlert) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO location_alerts(id, session_id, alert_type, message, distance_to_gate, estimated_walking_time,
		                             time_to_departure, acknowledged, voice_call_sent, email_sent, created_at)
		 VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		a.ID, a.SessionID, a.AlertType, a.Message, a.DistanceToGate, a.EstimatedWalkingTime,
		a.TimeToDeparture, a.Acknowledged, a.VoiceCallSent, a.EmailSent, a.CreatedAt)
	return err
}

func (p *PostgresStore) UpdateAlertFlags(ctx context.Context, a *models.LocationAlert) error {
	result, err := p.db.ExecContext(ctx,
		`UPDATE location_alerts SET acknowledged=$1, voice_call_sent=$2, email_sent=$3 WHERE id=$4`,
		a.Acknowledged, a.VoiceCallSent, a.EmailSent, a.ID)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAlertNotFound
	}
	return nil
}

func (p *PostgresStore) GetAlert(ctx context.Context, id string) (*models.LocationAlert, error) {
	a, err := p.scanAlert(p.db.QueryRowContext(ctx,
		`SELECT id, session_id, alert_type, message, distance_to_gate, estimated_walking_time,
		        time_to_departure, acknowledged, voice_call_sent, email_sent, created_at
		 FROM location_alerts WHERE id=$1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAlertNotFound
	}
	return a, err
}

func (p *PostgresStore) LatestAlert(ctx context.Context, sessionID, alertType string) (*models.LocationAlert, error) {
	a, err := p.scanAlert(p.db.QueryRowContext(ctx,
		`SELECT id, session_id, alert_type, message, distance_to_gate, estimated_walking_time,
		        time_to_departure, acknowledged, voice_call_sent, email_sent, created_at
		 FROM location_alerts WHERE session_id=$1 AND alert_type=$2 ORDER BY created_at DESC LIMIT 1`,
		sessionID, alertType))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

func (p *PostgresStore) LatestUnacknowledged(ctx context.Context, sessionID string) (*models.LocationAlert, error) {
	a, err := p.scanAlert(p.db.QueryRowContext(ctx,
		`SELECT id, session_id, alert_type, message, distance_to_gate, estimated_walking_time,
		        time_to_departure, acknowledged, voice_call_sent, email_sent, created_at
		 FROM location_alerts WHERE session_id=$1 AND acknowledged=false ORDER BY created_at DESC LIMIT 1`,
		sessionID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

func (p *PostgresStore) scanAlert(row *sql.Row) (*models.LocationAlert, error) {
	a := &models.LocationAlert{}
	var created time.Time
	err := row.Scan(&a.ID, &a.SessionID, &a.AlertType, &a.Message, &a.DistanceToGate, &a.EstimatedWalkingTime,
		&a.TimeToDeparture, &a.Acknowledged, &a.VoiceCallSent, &a.EmailSent, &created)
	if err != nil {
		return nil, err
	}
	a.CreatedAt = created
	return a, nil
}

func (p *PostgresStore) Close() error { return p.db.Close() }
