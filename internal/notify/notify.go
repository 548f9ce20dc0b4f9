package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/multierr"
)

// Severity is carried to the destination as the "status" field.
type Severity string

const (
	SeverityError   Severity = "error"
	SeveritySuccess Severity = "success"
)

// Channel names reported in delivery errors and logs.
const (
	ChannelWebhook  = "webhook"
	ChannelSlack    = "slack"
	ChannelTelegram = "telegram"
)

// Alert is one notification. Message is what the job destination receives
// verbatim; Detail is extra diagnostics for operator channels.
type Alert struct {
	Title     string
	Message   string
	Detail    string
	Severity  Severity
	TargetURL string
	At        time.Time
}

// Notifier delivers one alert. dest is the job's destination URL; channels
// configured per process (Slack, Telegram) ignore it.
type Notifier interface {
	Notify(ctx context.Context, dest string, a Alert) error
}

// ChannelError names the channel a delivery failure came from.
type ChannelError struct {
	Channel string
	Err     error
}

func (e *ChannelError) Error() string { return e.Channel + ": " + e.Err.Error() }
func (e *ChannelError) Unwrap() error { return e.Err }

// ChannelOf reports the channel name of n.
func ChannelOf(n Notifier) string {
	if c, ok := n.(interface{ Channel() string }); ok {
		return c.Channel()
	}
	return fmt.Sprintf("%T", n)
}

// Multi fans out to every notifier and combines their errors. Each failure
// is a *ChannelError; use multierr.Errors to take them apart.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, dest string, a Alert) error {
	var err error
	for _, n := range m {
		if n == nil {
			continue
		}
		if e := n.Notify(ctx, dest, a); e != nil {
			err = multierr.Append(err, &ChannelError{Channel: ChannelOf(n), Err: e})
		}
	}
	return err
}

// Compact drops nil entries so a disabled channel can be listed unconditionally.
func Compact(ns ...Notifier) Multi {
	out := make(Multi, 0, len(ns))
	for _, n := range ns {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

// newPostClient does not follow redirects: a 3xx on a POST would be replayed
// as a GET and its 200 mistaken for delivery.
func newPostClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{
		Timeout:       timeout,
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}
}
