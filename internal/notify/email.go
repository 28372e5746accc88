package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// EmailClient sends transactional HTML email through a Resend-style API.
type EmailClient struct {
	Endpoint  string
	APIKey    string
	FromEmail string
	Client    *http.Client
}

func NewEmailClient(endpoint, apiKey, fromEmail string) *EmailClient {
	return &EmailClient{
		Endpoint:  endpoint,
		APIKey:    apiKey,
		FromEmail: fromEmail,
		Client:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (e *EmailClient) Configured() bool { return e != nil && e.APIKey != "" && e.Endpoint != "" }

// SendHTML delivers one message and returns the provider's message id.
func (e *EmailClient) SendHTML(to, subject, htmlBody string) (string, error) {
	if !e.Configured() {
		return "", ErrNotConfigured
	}
	payload := map[string]any{
		"from":    e.FromEmail,
		"to":      []string{to},
		"subject": subject,
		"html":    htmlBody,
	}
	b, _ := json.Marshal(payload)
	req, err := http.NewRequest(http.MethodPost, e.Endpoint+"/emails", bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.APIKey)

	resp, err := e.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("email rejected: status %d", resp.StatusCode)
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.ID, nil
}
