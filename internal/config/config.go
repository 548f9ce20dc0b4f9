package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/multierr"
)

// DefaultAllowedOrigins are the Telex front-ends that call the monitor.
var DefaultAllowedOrigins = []string{
	"http://staging.telextest.im",
	"http://telextest.im",
	"https://staging.telex.im",
	"https://telex.im",
}

type Config struct {
	Addr       string // API bind address, e.g., "127.0.0.1:8080" (Windows) or ":8080" (Docker)
	LogDir     string // logs directory
	LogLevel   string // debug | info | warn | error
	LogConsole bool   // tee logs to stderr
	PublicURL  string // base URL advertised in integration.json

	AllowedOrigins []string
	PublicAPIKeys  []string // empty disables auth on public routes
	AdminAPIKeys   []string
	PublicRPM      int
	PublicBurst    int
	AdminRPM       int
	AdminBurst     int

	ProbeTimeout     time.Duration
	NotifyTimeout    time.Duration
	TickInterval     time.Duration // per-job cadence when no interval is given
	ActiveInterval   time.Duration // throttle for healthy targets
	DefaultThreshold time.Duration
	RetryAttempts    int           // how many times to try a probe within its timeout
	RetryBackoff     time.Duration // backoff between retries
	AlertOnRecovery  bool
	HistorySize      int
	UserAgent        string

	EventName      string
	NotifyUsername string
	SlackWebhook   string
	TelegramToken  string
	TelegramChatID int64

	SeedFile string // optional YAML file of jobs started at boot
}

func FromEnv() Config {
	// Bind address (Windows-friendly default); API_ADDR kept as an alias
	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = os.Getenv("API_ADDR")
	}
	if addr == "" {
		addr = "127.0.0.1:8080"
	}

	origins := csv("ALLOWED_ORIGINS")
	if len(origins) == 0 {
		origins = DefaultAllowedOrigins
	}

	chatID, _ := strconv.ParseInt(strings.TrimSpace(os.Getenv("TELEGRAM_CHAT_ID")), 10, 64)

	return Config{
		Addr:       addr,
		LogDir:     str("LOG_DIR", "logs"),
		LogLevel:   str("LOG_LEVEL", "info"),
		LogConsole: boolean("LOG_CONSOLE", true),
		PublicURL:  strings.TrimRight(os.Getenv("PUBLIC_URL"), "/"),

		AllowedOrigins: origins,
		PublicAPIKeys:  csv("PUBLIC_API_KEYS"),
		AdminAPIKeys:   csv("ADMIN_API_KEYS"),
		PublicRPM:      positive("PUBLIC_RPM", 120),
		PublicBurst:    positive("PUBLIC_BURST", 30),
		AdminRPM:       positive("ADMIN_RPM", 60),
		AdminBurst:     positive("ADMIN_BURST", 10),

		ProbeTimeout:     millis("PROBE_TIMEOUT_MS", 5*time.Second),
		NotifyTimeout:    millis("NOTIFY_TIMEOUT_MS", 10*time.Second),
		TickInterval:     millis("TICK_INTERVAL_MS", 60*time.Second),
		ActiveInterval:   millis("ACTIVE_INTERVAL_MS", 15*time.Minute),
		DefaultThreshold: time.Duration(positive("DEFAULT_THRESHOLD_MIN", 15)) * time.Minute,
		RetryAttempts:    positive("RETRY_ATTEMPTS", 1),
		RetryBackoff:     millis("RETRY_BACKOFF_MS", 300*time.Millisecond),
		AlertOnRecovery:  boolean("ALERT_ON_RECOVERY", false),
		HistorySize:      positive("HISTORY_SIZE", 50),
		UserAgent:        str("USER_AGENT", "renderwatch/1.0 (+https://telex.im)"),

		EventName:      str("EVENT_NAME", "Render Inactivity Alert"),
		NotifyUsername: str("NOTIFY_USERNAME", "Render Monitor"),
		SlackWebhook:   os.Getenv("SLACK_WEBHOOK_URL"),
		TelegramToken:  os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID: chatID,

		SeedFile: os.Getenv("SEED_FILE"),
	}
}

// Validate checks settings that only make sense together. Each job loop waits
// on its probes and notifications, so neither may outlast one tick.
func (c Config) Validate() error {
	var err error
	if c.NotifyTimeout > c.TickInterval {
		err = multierr.Append(err, fmt.Errorf("config: NOTIFY_TIMEOUT_MS (%s) exceeds TICK_INTERVAL_MS (%s)", c.NotifyTimeout, c.TickInterval))
	}
	if c.ProbeTimeout > c.TickInterval {
		err = multierr.Append(err, fmt.Errorf("config: PROBE_TIMEOUT_MS (%s) exceeds TICK_INTERVAL_MS (%s)", c.ProbeTimeout, c.TickInterval))
	}
	if c.RetryAttempts > 1 && time.Duration(c.RetryAttempts-1)*c.RetryBackoff >= c.ProbeTimeout {
		err = multierr.Append(err, fmt.Errorf("config: RETRY_BACKOFF_MS (%s) x %d retries leaves no room inside PROBE_TIMEOUT_MS (%s)", c.RetryBackoff, c.RetryAttempts-1, c.ProbeTimeout))
	}
	return err
}

func str(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func csv(key string) []string {
	var out []string
	for _, p := range strings.Split(os.Getenv(key), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func positive(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func millis(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return def
}

func boolean(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
