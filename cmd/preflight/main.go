// cmd/preflight/main.go
package main

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"

	"github.com/hamed0406/renderwatch/internal/config"
	"github.com/hamed0406/renderwatch/internal/scheduler"
)

func main() {
	_ = godotenv.Load()

	failed := false
	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
		failed = true
	}
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	cfg := config.FromEnv()
	ok("ADDR=" + cfg.Addr)

	if len(cfg.AdminAPIKeys) == 0 {
		warn("ADMIN_API_KEYS is empty; start/stop routes are open to anyone.")
	}
	if len(cfg.PublicAPIKeys) == 0 {
		warn("PUBLIC_API_KEYS is empty; status routes are open to anyone.")
	}
	for _, name := range []string{"ADMIN_API_KEYS", "PUBLIC_API_KEYS"} {
		if strings.Contains(os.Getenv(name), " ") {
			warn(name + " contains spaces; use comma-separated with no spaces, e.g. key1,key2")
		}
	}

	if cfg.PublicURL == "" {
		warn("PUBLIC_URL empty; integration.json will advertise the request host.")
	} else if u, err := url.Parse(cfg.PublicURL); err != nil || u.Host == "" {
		fail("PUBLIC_URL is not an absolute URL: " + cfg.PublicURL)
	} else {
		ok("PUBLIC_URL=" + cfg.PublicURL)
	}

	ok("ALLOWED_ORIGINS=" + strings.Join(cfg.AllowedOrigins, ","))

	if err := cfg.Validate(); err != nil {
		for _, e := range multierr.Errors(err) {
			fail(e.Error())
		}
	} else {
		ok(fmt.Sprintf("timeouts fit the tick: probe %s, notify %s, tick %s", cfg.ProbeTimeout, cfg.NotifyTimeout, cfg.TickInterval))
	}

	if cfg.SlackWebhook != "" {
		ok("Slack operator channel enabled")
	}
	if cfg.TelegramToken != "" && cfg.TelegramChatID == 0 {
		fail("TELEGRAM_BOT_TOKEN set but TELEGRAM_CHAT_ID is missing or not a number.")
	} else if cfg.TelegramToken != "" {
		ok("Telegram operator channel enabled")
	}

	if cfg.SeedFile != "" {
		jobs, err := config.LoadSeed(cfg.SeedFile)
		if err != nil {
			fail(err.Error())
		} else {
			for i, j := range jobs {
				if _, err := scheduler.ParseSchedule(j.Schedule, cfg.TickInterval); err != nil {
					fail(fmt.Sprintf("seed job %d: %v", i, err))
				}
			}
			ok(fmt.Sprintf("SEED_FILE=%s (%d job(s))", cfg.SeedFile, len(jobs)))
		}
	}

	if failed {
		os.Exit(1)
	}
	ok("preflight passed")
}
