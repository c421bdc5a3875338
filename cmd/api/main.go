package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/robfig/cron/v3"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/teamspace/guardrail/internal/config"
	"github.com/teamspace/guardrail/internal/database"
	"github.com/teamspace/guardrail/internal/logger"
	"github.com/teamspace/guardrail/internal/ratelimit"
	"github.com/teamspace/guardrail/internal/server"
	"github.com/teamspace/guardrail/internal/services"
	"github.com/teamspace/guardrail/internal/spamcheck"
	"github.com/teamspace/guardrail/internal/version"
)

func main() {
	// Setup logging with rotation
	logDir := "data/logs"
	_ = os.MkdirAll(logDir, 0755)

	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "guardrail.log"),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger.Init(cfg.Environment == "development", io.MultiWriter(os.Stdout, rotator))
	logger.Log().Infof("starting %s %s", version.Name, version.Full())

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}

	limiter := ratelimit.New()

	srv, err := server.New(db, cfg, limiter)
	if err != nil {
		log.Fatalf("setup server: %v", err)
	}

	// Background maintenance: the limiter sweep keeps the window map from
	// growing unbounded, the nightly scan surfaces spam that slipped past
	// the signup guard. The nightly scan is report-only; flagging stays a
	// human decision.
	alerts := services.NewAlertService(db)
	detector := spamcheck.New(alerts.Sink())
	moderation := services.NewModerationService(
		db, services.NewGormStatusStore(db), detector, limiter, alerts)

	jobs := cron.New()
	jobs.AddFunc("@every 5m", func() {
		if removed := limiter.Sweep(); removed > 0 {
			logger.Log().WithField("removed", removed).Debug("rate limit windows swept")
		}
	})
	jobs.AddFunc("@daily", func() {
		report, err := moderation.BulkScanAndFlag(false, "system")
		if err != nil {
			logger.Log().WithError(err).Warn("nightly spam scan failed")
			return
		}
		logger.WithFields(map[string]interface{}{
			"total_scanned": report.TotalScanned,
			"needs_review":  report.NeedsReview,
		}).Info("nightly spam scan complete")
	})
	jobs.Start()
	defer jobs.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Log().WithField("port", cfg.HTTPPort).Info("listening")
	if err := srv.Run(ctx); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
