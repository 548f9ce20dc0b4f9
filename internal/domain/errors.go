package domain

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

var (
	ErrAlreadyMonitored = errors.New("app is already being monitored")
	ErrNotFound         = errors.New("app not found in monitoring list")
	ErrInvalidJob       = errors.New("invalid monitoring job")
)

// Validate reports ErrInvalidJob when the job has nothing to probe or nowhere
// to deliver alerts. It does not touch the registry.
func (j Job) Validate() error {
	if len(j.URLs) == 0 {
		return fmt.Errorf("%w: no app_url given", ErrInvalidJob)
	}
	seen := make(map[string]struct{}, len(j.URLs))
	for _, u := range j.URLs {
		if !IsHTTPURL(u) {
			return fmt.Errorf("%w: %q is not an http(s) url", ErrInvalidJob, u)
		}
		if _, dup := seen[u]; dup {
			return fmt.Errorf("%w: %q listed twice", ErrInvalidJob, u)
		}
		seen[u] = struct{}{}
	}
	if strings.TrimSpace(j.WebhookURL) == "" {
		return fmt.Errorf("%w: webhook_url is required", ErrInvalidJob)
	}
	if !IsHTTPURL(j.WebhookURL) {
		return fmt.Errorf("%w: webhook_url %q is not an http(s) url", ErrInvalidJob, j.WebhookURL)
	}
	if j.Threshold < 0 {
		return fmt.Errorf("%w: inactivity_threshold must not be negative", ErrInvalidJob)
	}
	return nil
}

// WithDefaults fills the threshold when the caller left it out.
func (j Job) WithDefaults(now time.Time) Job {
	if j.Threshold == 0 {
		j.Threshold = DefaultThreshold
	}
	if j.CreatedAt.IsZero() {
		j.CreatedAt = now
	}
	return j
}

// IsHTTPURL accepts absolute http/https URLs with a host.
func IsHTTPURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != "" && u.Hostname() != ""
}

// NormalizeURL gives every target a single identity: lowercase scheme and
// host, no default port, and no bare trailing "/" on the root path.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	u.Scheme = strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	port := u.Port()
	if (u.Scheme == "http" && port == "80") || (u.Scheme == "https" && port == "443") {
		port = ""
	}
	if port != "" {
		host = host + ":" + port
	}
	u.Host = host
	if u.Path == "/" && u.RawQuery == "" && u.Fragment == "" {
		u.Path = ""
	}
	return u.String()
}
