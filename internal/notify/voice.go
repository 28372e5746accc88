// Package notify wraps the outbound collaborators: the voice-call
// platform, the transactional email provider, and the helper-dashboard
// websocket push. All of them are best-effort.
package notify

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// FlightInfo is the context handed to the voice agent for a reminder call.
type FlightInfo struct {
	FlightNumber  string `json:"flight_number"`
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureTime string `json:"departure_time"` // RFC 3339
	Gate          string `json:"gate"`
	Seat          string `json:"seat,omitempty"`
}

var ErrNotConfigured = errors.New("notify: provider not configured")

// VoiceClient initiates outbound reminder calls through a Retell-style
// voice agent API.
type VoiceClient struct {
	Endpoint   string
	APIKey     string
	AgentID    string
	FromNumber string
	Client     *http.Client
}

func NewVoiceClient(endpoint, apiKey, agentID, fromNumber string) *VoiceClient {
	return &VoiceClient{
		Endpoint:   endpoint,
		APIKey:     apiKey,
		AgentID:    agentID,
		FromNumber: fromNumber,
		Client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (v *VoiceClient) Configured() bool { return v != nil && v.APIKey != "" && v.Endpoint != "" }

// CreateReminderCall places an outbound call and returns the provider's
// call id. The alert kind and flight context ride along as agent metadata.
func (v *VoiceClient) CreateReminderCall(phone, passengerName string, info FlightInfo, kind, language string) (string, error) {
	if !v.Configured() {
		return "", ErrNotConfigured
	}
	payload := map[string]any{
		"agent_id":    v.AgentID,
		"from_number": v.FromNumber,
		"to_number":   phone,
		"metadata": map[string]any{
			"message_type":   "outbound_reminder",
			"reminder_type":  kind,
			"passenger_name": passengerName,
			"flight_number":  info.FlightNumber,
			"origin":         info.Origin,
			"destination":    info.Destination,
			"departure_time": info.DepartureTime,
			"gate":           info.Gate,
			"seat":           info.Seat,
			"language":       language,
		},
	}
	b, _ := json.Marshal(payload)
	req, err := http.NewRequest(http.MethodPost, v.Endpoint+"/create-phone-call", bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+v.APIKey)

	resp, err := v.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("voice call rejected: status %d", resp.StatusCode)
	}
	var out struct {
		CallID string `json:"call_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.CallID, nil
}
