package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultEventName = "Render Inactivity Alert"
	DefaultUsername  = "Render Monitor"
)

var ErrNoDestination = errors.New("webhook destination is empty")

// Webhook posts Telex-style JSON to the job's destination URL.
type Webhook struct {
	EventName string
	Username  string
	Client    *http.Client
}

func NewWebhook(eventName, username string, timeout time.Duration) *Webhook {
	if eventName == "" {
		eventName = DefaultEventName
	}
	if username == "" {
		username = DefaultUsername
	}
	return &Webhook{
		EventName: eventName,
		Username:  username,
		Client:    newPostClient(timeout),
	}
}

func (w *Webhook) Channel() string { return ChannelWebhook }

type webhookPayload struct {
	EventName string `json:"event_name"`
	Message   string `json:"message"`
	Status    string `json:"status"`
	Username  string `json:"username"`
}

func (w *Webhook) Notify(ctx context.Context, dest string, a Alert) error {
	if strings.TrimSpace(dest) == "" {
		return ErrNoDestination
	}
	body, err := json.Marshal(webhookPayload{
		EventName: w.EventName,
		Message:   a.Message,
		Status:    string(a.Severity),
		Username:  w.Username,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, dest, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.Client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook post: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("webhook returned %s", resp.Status)
	}
	return nil
}
