package notify

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/example/voice-concierge/internal/models"
)

// wsPair upgrades one connection through a test server and returns both
// ends: the server side goes into the registry, the client side reads
// what Push delivers.
func wsPair(t *testing.T) (server, client *websocket.Conn) {
	t.Helper()
	upgrader := websocket.Upgrader{}
	conns := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		conns <- c
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	server = <-conns
	t.Cleanup(func() { server.Close() })
	return server, client
}

func testSummary(msg string) models.AlertSummary {
	return models.AlertSummary{
		Type:      models.AlertUrgent,
		Message:   msg,
		Timestamp: time.Now(),
		Metrics:   models.Metrics{DistanceMeters: 373, WalkingTimeMinutes: 7, TimeToDepartureMinutes: 20},
	}
}

func readSummary(t *testing.T, c *websocket.Conn) models.AlertSummary {
	t.Helper()
	_ = c.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got models.AlertSummary
	if err := c.ReadJSON(&got); err != nil {
		t.Fatalf("read: %v", err)
	}
	return got
}

func TestPushDeliversToRegisteredLink(t *testing.T) {
	reg := NewWSRegistry()
	server, client := wsPair(t)
	reg.Add("link-1", server)

	if err := reg.Push("link-1", testSummary("hurry up")); err != nil {
		t.Fatalf("push: %v", err)
	}
	got := readSummary(t, client)
	if got.Message != "hurry up" || got.Type != models.AlertUrgent {
		t.Fatalf("unexpected summary %+v", got)
	}
	if got.Metrics.WalkingTimeMinutes != 7 {
		t.Errorf("walking = %d, want 7", got.Metrics.WalkingTimeMinutes)
	}
}

func TestPushUnregisteredLink(t *testing.T) {
	reg := NewWSRegistry()
	if err := reg.Push("nobody", testSummary("x")); !errors.Is(err, ErrNoDashboard) {
		t.Fatalf("err = %v, want ErrNoDashboard", err)
	}
}

func TestRemoveStopsDelivery(t *testing.T) {
	reg := NewWSRegistry()
	server, _ := wsPair(t)
	reg.Add("link-1", server)
	reg.Remove("link-1", server)

	if err := reg.Push("link-1", testSummary("x")); !errors.Is(err, ErrNoDashboard) {
		t.Fatalf("err = %v, want ErrNoDashboard", err)
	}
}

func TestAddDisplacesOldConnection(t *testing.T) {
	reg := NewWSRegistry()
	first, firstClient := wsPair(t)
	second, secondClient := wsPair(t)

	reg.Add("link-1", first)
	reg.Add("link-1", second)

	// the displaced connection is closed, so its client read fails
	_ = firstClient.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := firstClient.ReadMessage(); err == nil {
		t.Fatal("displaced connection should be closed")
	}

	// the stale reader removing itself must not evict the replacement
	reg.Remove("link-1", first)
	if err := reg.Push("link-1", testSummary("still here")); err != nil {
		t.Fatalf("push after stale remove: %v", err)
	}
	if got := readSummary(t, secondClient); got.Message != "still here" {
		t.Fatalf("unexpected summary %+v", got)
	}
}
