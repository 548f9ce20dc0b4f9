package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hamed0406/renderwatch/internal/config"
	"github.com/hamed0406/renderwatch/internal/httpapi"
	apimw "github.com/hamed0406/renderwatch/internal/httpapi/middleware"
	"github.com/hamed0406/renderwatch/internal/hub"
	"github.com/hamed0406/renderwatch/internal/logging"
	"github.com/hamed0406/renderwatch/internal/notify"
	"github.com/hamed0406/renderwatch/internal/probe"
	"github.com/hamed0406/renderwatch/internal/repo/memory"
	"github.com/hamed0406/renderwatch/internal/scheduler"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()
	logger, err := logging.NewLogger(cfg.LogDir, cfg.LogLevel, cfg.LogConsole)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()
	if err := cfg.Validate(); err != nil {
		logger.Fatal("config_invalid", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	telegram, err := notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID)
	if err != nil {
		logger.Warn("telegram_disabled", zap.Error(err))
	}
	notifier := notify.Compact(
		notify.NewWebhook(cfg.EventName, cfg.NotifyUsername, cfg.NotifyTimeout),
		notify.NewSlack(cfg.SlackWebhook, cfg.NotifyTimeout),
		telegram,
	)

	live := hub.New(logger, cfg.AllowedOrigins)
	go live.Run(ctx)

	checker := probe.WithRetries(
		probe.NewHTTPChecker(cfg.ProbeTimeout, cfg.UserAgent),
		cfg.RetryAttempts,
		cfg.RetryBackoff,
	)
	store := memory.New(cfg.HistorySize)
	alerter := scheduler.NewAlerter(logger, notifier, scheduler.AlerterConfig{
		AlertOnRecovery: cfg.AlertOnRecovery,
		Timeout:         cfg.NotifyTimeout,
	})
	engine := scheduler.New(store, checker, alerter, scheduler.Config{
		Interval:         cfg.TickInterval,
		ProbeTimeout:     cfg.ProbeTimeout,
		ActiveInterval:   cfg.ActiveInterval,
		DefaultThreshold: cfg.DefaultThreshold,
	},
		scheduler.WithLogger(logger),
		scheduler.WithBroadcaster(live),
		scheduler.WithDiagnoser(probe.NewDNSChecker()),
	)

	if cfg.SeedFile != "" {
		jobs, err := config.LoadSeed(cfg.SeedFile)
		if err != nil {
			logger.Fatal("seed_load_failed", zap.String("path", cfg.SeedFile), zap.Error(err))
		}
		for _, j := range jobs {
			if _, err := engine.Start(ctx, j); err != nil {
				logger.Warn("seed_job_skipped", zap.Strings("apps", j.URLs), zap.Error(err))
			}
		}
	}

	api := httpapi.NewServer(logger, engine, http.HandlerFunc(live.HandleConnect), cfg.PublicURL)
	keys := apimw.Keys{Public: cfg.PublicAPIKeys, Admin: cfg.AdminAPIKeys}
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Router(keys, cfg.AllowedOrigins, cfg.PublicRPM, cfg.PublicBurst, cfg.AdminRPM, cfg.AdminBurst),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("api_listen", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("api_listen_failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting_down")

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		logger.Warn("http_shutdown", zap.Error(err))
	}
	if err := engine.Shutdown(sctx); err != nil {
		logger.Warn("engine_shutdown", zap.Error(err))
	}
}
