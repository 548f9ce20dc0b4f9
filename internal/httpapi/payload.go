package httpapi

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/hamed0406/renderwatch/internal/domain"
)

// setting is one entry of a Telex integration payload.
type setting struct {
	Label    string `json:"label"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
	Default  any    `json:"default"`
}

// startPayload accepts both the direct form and the Telex tick form. Direct
// fields win over settings; return_url is the destination of last resort.
type startPayload struct {
	AppURL              string      `json:"app_url"`
	AppURLs             []string    `json:"app_urls"`
	WebhookURL          string      `json:"webhook_url"`
	InactivityThreshold json.Number `json:"inactivity_threshold"`
	Interval            string      `json:"interval"`

	ChannelID string    `json:"channel_id"`
	ReturnURL string    `json:"return_url"`
	Settings  []setting `json:"settings"`
}

func (p startPayload) settingValue(label string) string {
	for _, s := range p.Settings {
		if strings.EqualFold(strings.TrimSpace(s.Label), label) {
			switch v := s.Default.(type) {
			case nil:
				return ""
			case string:
				return strings.TrimSpace(v)
			case float64:
				return strconv.FormatFloat(v, 'f', -1, 64)
			default:
				return strings.TrimSpace(fmt.Sprint(v))
			}
		}
	}
	return ""
}

func (p startPayload) toJob() (domain.Job, error) {
	var urls []string
	add := func(raw string) {
		for _, u := range strings.Split(raw, ",") {
			if u = strings.TrimSpace(u); u != "" {
				urls = append(urls, normalizeHTTPURL(u))
			}
		}
	}
	add(p.AppURL)
	for _, u := range p.AppURLs {
		add(u)
	}
	if len(urls) == 0 {
		add(p.settingValue("app_url"))
	}
	for _, u := range urls {
		if !isValidHTTPURL(u) {
			return domain.Job{}, fmt.Errorf("%w: %q is not an http(s) url", domain.ErrInvalidJob, u)
		}
	}

	webhook := firstNonEmpty(p.WebhookURL, p.settingValue("webhook_url"), p.ReturnURL)

	thr := strings.TrimSpace(p.InactivityThreshold.String())
	if thr == "" {
		thr = p.settingValue("inactivity_threshold")
	}
	var threshold time.Duration
	if thr != "" {
		var err error
		if threshold, err = parseThreshold(thr); err != nil {
			return domain.Job{}, err
		}
	}

	return domain.Job{
		URLs:       urls,
		WebhookURL: strings.TrimSpace(webhook),
		Threshold:  threshold,
		Schedule:   firstNonEmpty(p.Interval, p.settingValue("interval")),
		ChannelID:  p.ChannelID,
	}, nil
}

// maxThresholdMinutes is the largest threshold a time.Duration can hold.
const maxThresholdMinutes = float64(math.MaxInt64 / int64(time.Minute))

// parseThreshold reads a threshold in minutes. An absent threshold is left to
// the caller's default; an explicit one must be a positive, finite number.
func parseThreshold(raw string) (time.Duration, error) {
	minutes, err := strconv.ParseFloat(raw, 64)
	switch {
	case err != nil, math.IsNaN(minutes), math.IsInf(minutes, 0):
		return 0, fmt.Errorf("%w: inactivity_threshold %q is not a number of minutes", domain.ErrInvalidJob, raw)
	case minutes <= 0:
		return 0, fmt.Errorf("%w: inactivity_threshold %q must be greater than zero", domain.ErrInvalidJob, raw)
	case minutes > maxThresholdMinutes:
		return 0, fmt.Errorf("%w: inactivity_threshold %q exceeds %.0f minutes", domain.ErrInvalidJob, raw, maxThresholdMinutes)
	}
	d := time.Duration(minutes * float64(time.Minute))
	if d <= 0 {
		return 0, fmt.Errorf("%w: inactivity_threshold %q must be greater than zero", domain.ErrInvalidJob, raw)
	}
	return d, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
