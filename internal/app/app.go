package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"parcel-code-relay-go/internal/config"
	"parcel-code-relay-go/internal/db"
	"parcel-code-relay-go/internal/handlers"
	"parcel-code-relay-go/internal/metrics"
	"parcel-code-relay-go/internal/notify"
	"parcel-code-relay-go/internal/reconcile"
	"parcel-code-relay-go/internal/registry"
	"parcel-code-relay-go/internal/scanner"
	"parcel-code-relay-go/internal/scheduler"
	"parcel-code-relay-go/internal/server"
)

// Run initializes and starts the application
func Run() error {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.InfoLevel)

	logrus.Info("Starting Parcel Code Relay Service")

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	dbConn, err := db.Init(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	m := metrics.NewMetrics(prometheus.DefaultRegisterer)

	reg := registry.New(dbConn)

	notifier := notify.NewTelegramNotifier(&cfg.Telegram)
	probeCtx, probeCancel := context.WithTimeout(context.Background(), cfg.Telegram.Timeout)
	if err := notifier.TestConnection(probeCtx); err != nil {
		// Deliveries will fail and be retried, so a dead bot token at
		// startup is loud but not fatal.
		logrus.Warnf("Telegram bot connection check failed: %v", err)
	}
	probeCancel()

	engine := reconcile.NewEngine(reg, notifier, m)
	scan := scanner.NewScanner(cfg.Mailboxes, &cfg.Scanner, engine, reg, m)
	sched := scheduler.NewScheduler(&cfg.Scanner, scan, m)

	h := handlers.NewHandlers(dbConn, sched, m)
	router := server.SetupRouter(h)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	go func() {
		logrus.Infof("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := sched.Stop(); err != nil {
		logrus.Errorf("Failed to stop scheduler: %v", err)
	}
	sched.Wait()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("HTTP server shutdown error: %v", err)
	}

	logrus.Info("Server stopped gracefully")
	return nil
}
