package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"moneytracker/internal/amqp"
	"moneytracker/internal/backend"
	"moneytracker/internal/config"
	"moneytracker/internal/kv"
	"moneytracker/internal/ledger"
	"moneytracker/internal/limits"
	"moneytracker/internal/log"
	"moneytracker/internal/services"
)

// SetupLogger builds the process logger at the given LOG_LEVEL and makes it
// the slog default.
func SetupLogger(level string) *log.Logger {
	logger := log.New(log.Config{
		Level:     log.ParseLevel(level),
		Component: log.ComponentApp,
		Output:    os.Stderr,
	})
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads a .env file for local development. A missing file is
// not an error.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig reads the configuration, with configFile taking
// precedence over CONFIG_FILE.
func LoadAndValidateConfig(configFile string) (*config.Config, error) {
	if configFile != "" {
		if err := os.Setenv("CONFIG_FILE", configFile); err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// App is a tracker wired to its storage backend and, optionally, the
// alert broker.
type App struct {
	Config  *config.Config
	Logger  *log.Logger
	Store   kv.Store
	AMQP    *amqp.Client
	Tracker *services.TrackerService
}

// Bootstrap opens the configured backend and builds the tracker service.
// When withAMQP is set and AMQP_URL is configured, advisories are
// published to the broker; a broker that cannot be reached is logged and
// skipped.
func Bootstrap(ctx context.Context, cfg *config.Config, logger *log.Logger, withAMQP bool) (*App, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s backend: %w", bcfg.Type, err)
	}

	app := &App{Config: cfg, Logger: logger, Store: res.Store}

	opts := services.Options{
		Retention: ledger.Retention{Months: cfg.RetentionMonths},
		Logger:    logger,
		Closer:    res,
	}
	opts.Thresholds.DailyWarning, opts.Thresholds.MonthlyWarning = cfg.Warnings()

	if withAMQP && cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, alerts will not be published", log.FieldError, err)
		} else {
			app.AMQP = client
			opts.Publisher = client
		}
	}

	app.Tracker = services.NewTrackerService(ledger.New(res.Store, logger), opts)
	return app, nil
}

// Thresholds returns the warning ratios in effect.
func (a *App) Thresholds() limits.Thresholds {
	return a.Tracker.Evaluator().Thresholds
}

// Close releases the broker connection and the storage backend.
func (a *App) Close() error {
	return a.Tracker.Close()
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM. Once
// the signal arrives cleanup runs with a deadline of timeout, and done is
// closed when it returns.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func(context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
		case <-ctx.Done():
		}
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()
		if cleanup != nil {
			cleanup(shutdownCtx)
		}
		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
			return
		}
		logger.Info("Shutdown complete")
	}()

	return ctx, done
}
