package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/smtp"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Schera-ole/agentmon/internal/config"
	"github.com/Schera-ole/agentmon/internal/handler"
	"github.com/Schera-ole/agentmon/internal/journal"
	"github.com/Schera-ole/agentmon/internal/migration"
	"github.com/Schera-ole/agentmon/internal/monitor"
	"github.com/Schera-ole/agentmon/internal/notify"
)

// buildSinks assembles the notification sinks enabled by configuration.
func buildSinks(cfg *config.MonitorConfig) []notify.Sink {
	var sinks []notify.Sink
	if cfg.SlackWebhookURL != "" {
		sinks = append(sinks, notify.NewSlackSink(cfg.SlackWebhookURL))
	}
	if cfg.NotifyURL != "" {
		sinks = append(sinks, notify.NewWebhookSink(cfg.NotifyURL, cfg.Key))
	}
	if addr := os.Getenv("SMTP_ADDR"); addr != "" {
		sinks = append(sinks, notify.NewEmailSink(addr, os.Getenv("SMTP_FROM"),
			[]string{os.Getenv("SMTP_TO")}, smtp.Auth(nil)))
	}
	return sinks
}

func main() {
	monitorConfig, err := config.NewMonitorConfig()
	if err != nil {
		log.Fatal("Failed to parse configuration: ", err)
	}

	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to create logger: ", err)
	}
	defer zapLogger.Sync()
	logger := zapLogger.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The journal backs the recent-alerts view: PostgreSQL when a DSN is
	// configured, a bounded in-memory ring otherwise.
	var jrnl journal.Journal
	if monitorConfig.DatabaseDSN != "" {
		if err := migration.RunMigrations(ctx, monitorConfig.DatabaseDSN, logger); err != nil {
			logger.Fatalf("migrations failed: %v", err)
		}
		dbJournal, err := journal.NewDBJournal(monitorConfig.DatabaseDSN)
		if err != nil {
			logger.Fatalf("failed to open alert journal: %v", err)
		}
		jrnl = dbJournal
	} else {
		jrnl = journal.NewMemJournal(256)
	}
	defer jrnl.Close()

	mon := monitor.New(monitorConfig, logger, jrnl, buildSinks(monitorConfig)...)

	// Alert configuration errors fail fast at startup, before live evaluation.
	specs, err := config.LoadAlertSpecs(monitorConfig.AlertsFile)
	if err != nil {
		logger.Fatalf("failed to load alert rules: %v", err)
	}
	for _, spec := range specs {
		ruleID, err := mon.AddRuleSpec(spec)
		if err != nil {
			logger.Fatalf("invalid alert rule for metric %s: %v", spec.Metric, err)
		}
		logger.Infof("registered alert rule %s on %s", ruleID, spec.Metric)
	}

	mon.Start(ctx)
	defer mon.Stop()

	server := &http.Server{
		Addr:    monitorConfig.Address,
		Handler: handler.Router(mon, logger, monitorConfig),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("serving dashboards on %s", monitorConfig.Address)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Errorf("server error: %v", err)
	}
	logger.Info("Shutting down...")
}
