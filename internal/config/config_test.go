package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/hamed0406/renderwatch/internal/domain"
)

func TestFromEnv_ParsesAndDefaults(t *testing.T) {
	t.Setenv("ADDR", ":9090")
	t.Setenv("LOG_DIR", "./_testlogs")
	t.Setenv("PUBLIC_API_KEYS", "pub_a, pub_b")
	t.Setenv("ADMIN_API_KEYS", "adm_x")
	t.Setenv("PROBE_TIMEOUT_MS", "1234")
	t.Setenv("RETRY_ATTEMPTS", "5")
	t.Setenv("RETRY_BACKOFF_MS", "250")
	t.Setenv("TICK_INTERVAL_MS", "0")
	t.Setenv("PUBLIC_RPM", "111")
	t.Setenv("PUBLIC_BURST", "22")
	t.Setenv("ADMIN_RPM", "33")
	t.Setenv("ADMIN_BURST", "44")
	t.Setenv("DEFAULT_THRESHOLD_MIN", "20")
	t.Setenv("ALERT_ON_RECOVERY", "true")
	t.Setenv("TELEGRAM_CHAT_ID", "-1001234")
	t.Setenv("PUBLIC_URL", "https://monitor.example/")

	cfg := FromEnv()

	if cfg.Addr != ":9090" || cfg.LogDir != "./_testlogs" {
		t.Fatalf("addr/logdir wrong: %+v", cfg)
	}
	if len(cfg.PublicAPIKeys) != 2 || cfg.PublicAPIKeys[1] != "pub_b" {
		t.Fatalf("public keys wrong: %+v", cfg.PublicAPIKeys)
	}
	if len(cfg.AdminAPIKeys) != 1 || cfg.AdminAPIKeys[0] != "adm_x" {
		t.Fatalf("admin keys wrong: %+v", cfg.AdminAPIKeys)
	}
	if cfg.ProbeTimeout != 1234*time.Millisecond || cfg.RetryAttempts != 5 || cfg.RetryBackoff != 250*time.Millisecond {
		t.Fatalf("probe tuning wrong: %+v", cfg)
	}
	if cfg.TickInterval != 60*time.Second {
		t.Fatalf("zero interval should fall back to default, got %v", cfg.TickInterval)
	}
	if cfg.PublicRPM != 111 || cfg.PublicBurst != 22 || cfg.AdminRPM != 33 || cfg.AdminBurst != 44 {
		t.Fatalf("rate limits wrong: %+v", cfg)
	}
	if cfg.DefaultThreshold != 20*time.Minute || !cfg.AlertOnRecovery {
		t.Fatalf("alert policy wrong: %+v", cfg)
	}
	if cfg.TelegramChatID != -1001234 {
		t.Fatalf("chat id wrong: %d", cfg.TelegramChatID)
	}
	if cfg.PublicURL != "https://monitor.example" {
		t.Fatalf("public url should lose trailing slash: %q", cfg.PublicURL)
	}
	if len(cfg.AllowedOrigins) != len(DefaultAllowedOrigins) {
		t.Fatalf("expected default origins, got %v", cfg.AllowedOrigins)
	}

	// ensure defaults don’t crash if missing env
	os.Unsetenv("ADDR")
	t.Setenv("API_ADDR", ":7070")
	if got := FromEnv().Addr; got != ":7070" {
		t.Fatalf("API_ADDR alias ignored: %q", got)
	}
}

func TestParseSeed(t *testing.T) {
	jobs, err := ParseSeed([]byte(`
jobs:
  - app_url: https://A.onrender.com/
    webhook_url: https://ping.telex.im/v1/webhooks/abc
    inactivity_threshold: 5
  - app_urls:
      - https://b.onrender.com
      - https://c.onrender.com/health
    webhook_url: https://hooks.example/x
    interval: "*/2 * * * *"
`))
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	require.Equal(t, []string{"https://a.onrender.com"}, jobs[0].URLs)
	require.Equal(t, 5*time.Minute, jobs[0].Threshold)
	require.Empty(t, jobs[0].Schedule)

	require.Equal(t, []string{"https://b.onrender.com", "https://c.onrender.com/health"}, jobs[1].URLs)
	require.Zero(t, jobs[1].Threshold, "left for the engine default")
	require.Equal(t, "*/2 * * * *", jobs[1].Schedule)
}

func TestParseSeed_Rejects(t *testing.T) {
	cases := map[string]string{
		"missing webhook": "jobs:\n  - app_url: https://a.example\n",
		"bad scheme":      "jobs:\n  - app_url: ftp://a.example\n    webhook_url: https://h.example\n",
		"negative":        "jobs:\n  - app_url: https://a.example\n    webhook_url: https://h.example\n    inactivity_threshold: -1\n",
	}
	for name, doc := range cases {
		_, err := ParseSeed([]byte(doc))
		require.ErrorIs(t, err, domain.ErrInvalidJob, name)
	}

	_, err := ParseSeed([]byte("jobs:\n  - app_url: https://a.example\n    webhook: typo\n"))
	require.Error(t, err, "unknown keys are rejected")
}

func TestLoadSeed_File(t *testing.T) {
	p := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(p, []byte("jobs: []\n"), 0o600))
	jobs, err := LoadSeed(p)
	require.NoError(t, err)
	require.Empty(t, jobs)

	_, err = LoadSeed(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestValidate_TimeoutsFitTheTick(t *testing.T) {
	require.NoError(t, FromEnv().Validate(), "defaults must be valid")

	t.Setenv("TICK_INTERVAL_MS", "5000")
	t.Setenv("NOTIFY_TIMEOUT_MS", "10000")
	err := FromEnv().Validate()
	require.Error(t, err)
	require.Len(t, multierr.Errors(err), 1)
	require.ErrorContains(t, err, "NOTIFY_TIMEOUT_MS")

	t.Setenv("PROBE_TIMEOUT_MS", "6000")
	require.Len(t, multierr.Errors(FromEnv().Validate()), 2)

	t.Setenv("TICK_INTERVAL_MS", "60000")
	t.Setenv("PROBE_TIMEOUT_MS", "1000")
	t.Setenv("RETRY_ATTEMPTS", "3")
	t.Setenv("RETRY_BACKOFF_MS", "500")
	require.ErrorContains(t, FromEnv().Validate(), "RETRY_BACKOFF_MS")
}
