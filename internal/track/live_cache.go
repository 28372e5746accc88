package track

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/example/voice-concierge/internal/models"
)

// LiveCache mirrors each session's latest fix into Redis so dashboard
// polling does not hit Postgres. Entries expire on their own once a
// session goes quiet.
type LiveCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewLiveCache(addr, password string, ttl time.Duration) *LiveCache {
	c := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	return &LiveCache{client: c, ttl: ttl}
}

func liveKey(sessionID string) string { return "location:live:" + sessionID }

func (l *LiveCache) SetLatest(ctx context.Context, fix *models.LocationFix) error {
	values := map[string]interface{}{
		"lat":         strconv.FormatFloat(fix.Latitude, 'f', 6, 64),
		"lng":         strconv.FormatFloat(fix.Longitude, 'f', 6, 64),
		"captured_at": fix.CapturedAt.Format(time.RFC3339),
	}
	if fix.Accuracy != nil {
		values["accuracy"] = strconv.FormatFloat(*fix.Accuracy, 'f', 1, 64)
	}
	key := liveKey(fix.SessionID)
	if err := l.client.HSet(ctx, key, values).Err(); err != nil {
		return err
	}
	return l.client.Expire(ctx, key, l.ttl).Err()
}

// Latest returns the cached fix for a session, or nil on a miss.
func (l *LiveCache) Latest(ctx context.Context, sessionID string) (*CurrentLocation, error) {
	m, err := l.client.HGetAll(ctx, liveKey(sessionID)).Result()
	if err != nil {
		return nil, err
	}
	if len(m) == 0 {
		return nil, nil
	}
	loc := &CurrentLocation{}
	if v, ok := m["lat"]; ok {
		loc.Lat, _ = strconv.ParseFloat(v, 64)
	}
	if v, ok := m["lng"]; ok {
		loc.Lng, _ = strconv.ParseFloat(v, 64)
	}
	if v, ok := m["accuracy"]; ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			loc.Accuracy = &f
		}
	}
	if v, ok := m["captured_at"]; ok {
		loc.Timestamp, _ = time.Parse(time.RFC3339, v)
	}
	return loc, nil
}

func (l *LiveCache) Ping(ctx context.Context) error { return l.client.Ping(ctx).Err() }

func (l *LiveCache) Close() error { return l.client.Close() }
