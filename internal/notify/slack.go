package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Slack mirrors alerts to an operator channel. It ignores the job destination.
type Slack struct {
	Webhook string
	Client  *http.Client
}

// NewSlack returns nil when no webhook is configured.
func NewSlack(webhook string, timeout time.Duration) Notifier {
	if webhook == "" {
		return nil
	}
	return &Slack{
		Webhook: webhook,
		Client:  newPostClient(timeout),
	}
}

func (s *Slack) Channel() string { return ChannelSlack }

type slackPayload struct {
	Text string `json:"text"`
}

func (s *Slack) Notify(ctx context.Context, _ string, a Alert) error {
	text := "*" + a.Title + "*\n" + a.Message
	if a.Detail != "" {
		text += "\n" + a.Detail
	}
	body, _ := json.Marshal(slackPayload{Text: text})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Webhook, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("slack post: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("slack returned %s", resp.Status)
	}
	return nil
}
