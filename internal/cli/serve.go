package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	apphttp "moneytracker/internal/http"
	"moneytracker/internal/log"
	"moneytracker/internal/worker"
)

const shutdownTimeout = 30 * time.Second

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (overrides PORT)")
	serveCmd.Flags().Bool("consume-alerts", true, "Record alerts from the broker when AMQP_URL is set")
	serveCmd.Flags().Bool("prune", false, "Also run the retention prune on PRUNE_SCHEDULE")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	app, err := openApp(cmd, true)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			app.Logger.Error("Failed to close tracker", log.FieldError, err)
		}
	}()

	cfg := app.Config
	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.Port = port
	}

	alerts := worker.NewAlertWorker(app.Store, 0, app.Logger)
	srv := apphttp.NewServer(":"+cfg.Port, app.Tracker, app.Logger, apphttp.WithAlertHistory(alerts))
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	var scheduler *worker.PruneScheduler
	if prune, _ := cmd.Flags().GetBool("prune"); prune {
		scheduler, err = worker.NewPruneScheduler(cfg.PruneSchedule, app.Tracker, app.Logger)
		if err != nil {
			return err
		}
		scheduler.Start()
	}

	ctx, done := GracefulShutdown(app.Logger, shutdownTimeout, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			app.Logger.Error("Server shutdown error", log.FieldError, err)
		}
		if scheduler != nil {
			if err := scheduler.Stop(ctx); err != nil {
				app.Logger.Warn("Prune scheduler did not stop in time", log.FieldError, err)
			}
		}
	})

	if consume, _ := cmd.Flags().GetBool("consume-alerts"); consume && app.AMQP != nil {
		go func() {
			if err := app.AMQP.ConsumeAlerts(ctx, alerts.HandleAlert); err != nil && !errors.Is(err, context.Canceled) {
				app.Logger.Error("Alert consumption stopped", log.FieldError, err)
			}
		}()
	}

	th := app.Thresholds()
	app.Logger.Info("Starting moneytracker server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"amqp", app.AMQP != nil,
		"daily_warning", th.DailyWarning.String(),
		"monthly_warning", th.MonthlyWarning.String())

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	<-done
	app.Logger.Info("Server stopped gracefully")
	return nil
}
