// Package sender is a small webhook client used by `beacon send` to push
// notifications into a running beacon.
package sender

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/btouchard/beacon/internal/hub"
	"github.com/btouchard/beacon/internal/notification"
)

const webhookPath = "/webhook/notifications"

// Client posts submissions to a beacon webhook.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the beacon at baseURL
// (e.g. http://localhost:5001).
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    httpClient,
	}
}

// StatusError is returned when the webhook rejects a submission.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("webhook returned %d: %s", e.Code, e.Message)
}

// Send posts one submission and returns the stored notification.
func (c *Client) Send(ctx context.Context, s hub.Submission) (notification.Notification, error) {
	body, err := json.Marshal(s)
	if err != nil {
		return notification.Notification{}, fmt.Errorf("encoding submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+webhookPath, bytes.NewReader(body))
	if err != nil {
		return notification.Notification{}, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return notification.Notification{}, fmt.Errorf("posting notification: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return notification.Notification{}, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusCreated {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(raw, &e)
		if e.Error == "" {
			e.Error = strings.TrimSpace(string(raw))
		}
		return notification.Notification{}, &StatusError{Code: resp.StatusCode, Message: e.Error}
	}

	var out struct {
		Success      bool                      `json:"success"`
		Notification notification.Notification `json:"notification"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return notification.Notification{}, fmt.Errorf("decoding response: %w", err)
	}
	return out.Notification, nil
}
