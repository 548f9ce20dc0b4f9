package domain

import "time"

// Status is the externally visible liveness of a target.
type Status string

const (
	StatusStarting Status = "starting"
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

const (
	DefaultThreshold      = 15 * time.Minute
	DefaultActiveInterval = 15 * time.Minute
)

// TargetState is the record kept for one monitored URL.
type TargetState struct {
	URL           string     `json:"app_url"`
	JobID         string     `json:"job_id"`
	IsActive      bool       `json:"is_active"`
	LastActive    time.Time  `json:"last_active"`
	DownSince     *time.Time `json:"down_since,omitempty"`
	NextCheckTime time.Time  `json:"next_check_time"`
	CurrentStatus Status     `json:"current_status"`

	RegisteredAt   time.Time `json:"registered_at"`
	LastChecked    time.Time `json:"last_checked"`
	LastStatusCode int       `json:"last_status_code,omitempty"`
	LastError      string    `json:"last_error,omitempty"`
	Checks         int       `json:"checks"`
	Failures       int       `json:"failures"`
}

// NewTargetState returns the record inserted when a job is registered.
// LastActive starts at registration time, which gives a freshly added
// target a full threshold of grace before it can be reported inactive.
func NewTargetState(url, jobID string, now time.Time) *TargetState {
	return &TargetState{
		URL:           url,
		JobID:         jobID,
		IsActive:      true,
		LastActive:    now,
		NextCheckTime: now,
		CurrentStatus: StatusStarting,
		RegisteredAt:  now,
	}
}

// Job is a batch of targets sharing one notification destination and one
// inactivity threshold.
type Job struct {
	ID         string        `json:"job_id"`
	URLs       []string      `json:"apps"`
	WebhookURL string        `json:"webhook_url"`
	Threshold  time.Duration `json:"-"`
	Schedule   string        `json:"interval,omitempty"`
	ChannelID  string        `json:"channel_id,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
}

// ThresholdMinutes is the threshold as reported to API clients.
func (j Job) ThresholdMinutes() float64 {
	return j.Threshold.Minutes()
}

// CheckResult is one probe outcome as kept in a target's history.
type CheckResult struct {
	URL        string    `json:"app_url"`
	Up         bool      `json:"up"`
	HTTPStatus int       `json:"http_status,omitempty"`
	LatencyMS  float64   `json:"latency_ms"`
	Reason     string    `json:"reason,omitempty"`
	Status     Status    `json:"status"`
	CheckedAt  time.Time `json:"checked_at"`
}
