package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"builderops-notify/internal/config"
	"builderops-notify/internal/database"
	"builderops-notify/internal/digest"
	"builderops-notify/internal/email"
	"builderops-notify/internal/handler"
	"builderops-notify/internal/logging"
	"builderops-notify/internal/metrics"
	"builderops-notify/internal/notify"
	"builderops-notify/internal/repository"
	"builderops-notify/internal/router"
	"builderops-notify/internal/runstore"
	"builderops-notify/internal/scheduler"
)

const shutdownTimeout = 30 * time.Second

// Run initializes and starts the application
func Run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logCloser, err := logging.Setup(cfg.Log)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	logrus.Info("Starting BuilderOps notification service")

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	if cfg.Scheduler.Secret == "" {
		logrus.Warn("Scheduler secret is not set, every trigger request will be rejected")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.InitDatabase(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying SQL DB: %w", err)
	}
	defer sqlDB.Close()

	runs, err := newRunStore(ctx, cfg.Redis)
	if err != nil {
		return err
	}

	sender, err := email.NewSender(ctx, cfg.Email)
	if err != nil {
		return fmt.Errorf("failed to create email sender: %w", err)
	}
	logrus.WithField("provider", cfg.Email.Provider).Info("Email sender ready")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(reg)

	repo := repository.New(db)
	dispatcher := notify.NewDispatcher(repo, digest.NewAssembler(repo), sender, runs, m, cfg.Digest)

	if cfg.Email.Provider == config.ProviderGmail && cfg.Email.Gmail.WatchTopic != "" {
		service, err := email.NewGmailService(ctx, cfg.Email.Gmail)
		if err != nil {
			return err
		}
		dispatcher.SetWatcher(email.NewGmailWatcher(service, cfg.Email.Gmail.UserEmail, cfg.Email.Gmail.WatchTopic))
		logrus.WithField("topic", cfg.Email.Gmail.WatchTopic).Info("Gmail watch renewal enabled")
	}

	sched := scheduler.NewScheduler(&cfg.Scheduler, dispatcher)
	if cfg.Scheduler.Enabled {
		if err := sched.Start(); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
	}

	h := handler.NewHandlers(sqlDB, dispatcher, sched, runs, cfg.Scheduler.Secret)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router.SetupRouter(h, reg),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logrus.Infof("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logrus.Info("Shutting down server...")

		// Drain manual trigger requests first, then scheduled jobs
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		shutdownErr := srv.Shutdown(shutdownCtx)

		if err := sched.Stop(); err != nil {
			logrus.Errorf("Failed to stop scheduler: %v", err)
		}
		sched.Wait()

		if shutdownErr != nil {
			return fmt.Errorf("HTTP server shutdown error: %w", shutdownErr)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logrus.Info("Server stopped gracefully")
	return nil
}

// newRunStore connects to redis when configured and falls back to memory
func newRunStore(ctx context.Context, cfg config.RedisConfig) (runstore.Store, error) {
	if cfg.Addr == "" {
		logrus.Info("Redis not configured, keeping run reports in memory")
		return runstore.NewMemoryStore(), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	logrus.WithField("addr", cfg.Addr).Info("Run reports stored in redis")
	return runstore.NewRedisStore(client, cfg.RunTTL), nil
}
