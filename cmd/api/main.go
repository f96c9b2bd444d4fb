// Package main is the entry point for the TaskStudy notification engine.
//
// It loads configuration, connects the database pool, wires the channel
// clients and scheduler jobs, and runs two workers side by side: the HTTP
// API (health, notification center, and the cron trigger endpoint) and the
// built-in scheduler loop that executes a pass every tick.
//
// Graceful shutdown is handled via OS signal interception (SIGINT, SIGTERM).
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"taskstudy/internal/api/handlers"
	"taskstudy/internal/config"
	"taskstudy/internal/core"
	"taskstudy/internal/db"
	"taskstudy/internal/external"
	"taskstudy/internal/notifications/email"
	"taskstudy/internal/scheduler"
	"taskstudy/internal/types"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// run encapsulates the startup lifecycle so that main() can cleanly exit on
// error.
func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg)
	logger.Info("taskstudy notification engine starting",
		"environment", cfg.Environment,
		"port", cfg.Server.Port,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := newPool(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	// Repositories.
	tasks := db.NewTaskRepository(pool)
	users := db.NewUserRepository(pool)
	notifications := db.NewNotificationRepository(pool)

	// Email rendering and channel clients.
	renderer, err := email.NewRenderer()
	if err != nil {
		return fmt.Errorf("initializing email renderer: %w", err)
	}

	httpClient := external.DefaultHTTPClient()
	brevo, err := external.NewBrevoClient(httpClient, cfg.Email.BrevoAPIKey.Unmask(), cfg.Email.From)
	if err != nil {
		return fmt.Errorf("initializing email client: %w", err)
	}
	telegram := external.NewTelegramClient(httpClient, cfg.Telegram.BotToken.Unmask(), cfg.Telegram.DefaultChatID)
	whatsapp := external.NewWhatsAppClient(httpClient, cfg.WhatsApp.WebhookURL, cfg.WhatsApp.AuthToken.Unmask())

	// Scheduler jobs and orchestrator.
	urgent := scheduler.NewUrgentChecker(tasks, users, notifications, brevo, renderer, logger)
	daily := scheduler.NewDailyDigestJob(tasks, users, notifications, brevo, telegram, whatsapp, renderer, logger)
	weekly := scheduler.NewWeeklyReportJob(tasks, users, notifications, brevo, renderer, logger)
	monthly := scheduler.NewMonthlyReportJob(tasks, users, notifications, brevo, renderer, logger)
	service := scheduler.NewService(urgent, daily, weekly, monthly, types.RealClock{}, logger)

	// HTTP chassis and domain routes.
	srv, err := core.NewServer(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	srv.HealthProbes = []core.HealthProbe{dbProbe{pool: pool}}

	schedulerHandler := handlers.NewSchedulerHandler(service, logger)
	notificationsHandler := handlers.NewNotificationsHandler(notifications, users, telegram, logger)

	srv.RegisterV1(func(r chi.Router) {
		schedulerHandler.RegisterRoutes(r, cfg.Scheduler.CronSecret)
		notificationsHandler.RegisterRoutes(r)
	})
	srv.MountRoutes()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return runHTTPServer(gCtx, srv, cfg, logger)
	})

	g.Go(func() error {
		return runSchedulerLoop(gCtx, service, cfg, logger)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Info("engine stopped cleanly")
	return nil
}

// newPool creates the pgx connection pool with the configured tuning
// parameters and verifies connectivity.
func newPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.Database.URL.Unmask())
	if err != nil {
		return nil, fmt.Errorf("parsing database url: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.Database.MaxConns)
	poolCfg.MinConns = int32(cfg.Database.MinConns)
	poolCfg.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolCfg.HealthCheckPeriod = cfg.Database.HealthCheckPeriod

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating database pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Database.AcquireTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return pool, nil
}

// runHTTPServer serves the API until the context is cancelled, then shuts
// down gracefully with a 10-second deadline.
func runHTTPServer(ctx context.Context, srv *core.Server, cfg *config.Config, logger *slog.Logger) error {
	addr := ":" + cfg.Server.Port

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.Server.RequestTimeout + 5*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	logger.Info("initiating graceful shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}
	return srv.Shutdown(shutdownCtx)
}

// runSchedulerLoop executes a scheduler pass every tick until the context
// is cancelled. A zero tick interval disables the loop, leaving the HTTP
// trigger as the only entry point.
func runSchedulerLoop(ctx context.Context, service *scheduler.Service, cfg *config.Config, logger *slog.Logger) error {
	interval := cfg.Scheduler.TickInterval
	if interval <= 0 {
		logger.Info("scheduler loop disabled")
		<-ctx.Done()
		return ctx.Err()
	}

	logger.Info("scheduler loop started", "interval", interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("scheduler loop stopped")
			return ctx.Err()
		case <-ticker.C:
			passCtx, cancel := context.WithTimeout(ctx, cfg.Scheduler.PassTimeout)
			service.Run(passCtx, types.RunOptions{})
			cancel()
		}
	}
}

// dbProbe checks database connectivity for the health endpoint.
type dbProbe struct {
	pool *pgxpool.Pool
}

func (p dbProbe) Name() string { return "database" }

func (p dbProbe) Check(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// newLogger creates the application-wide structured JSON logger.
func newLogger(cfg *config.Config) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})
	return slog.New(handler)
}
