package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"moneytracker/internal/log"
	"moneytracker/internal/worker"
)

func init() {
	rootCmd.AddCommand(alertsCmd)
	alertsCmd.AddCommand(alertsConsumeCmd)
	alertsCmd.AddCommand(alertsListCmd)
	alertsConsumeCmd.Flags().Int("keep", 50, "Number of alerts kept in the history")
}

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Consume and list spending alerts",
}

var alertsConsumeCmd = &cobra.Command{
	Use:   "consume",
	Short: "Record alerts from the broker into the alert history",
	Args:  cobra.NoArgs,
	RunE:  runAlertsConsume,
}

func runAlertsConsume(cmd *cobra.Command, args []string) error {
	app, err := openApp(cmd, true)
	if err != nil {
		return err
	}
	defer app.Close()

	if app.AMQP == nil {
		return errors.New("AMQP_URL is not set or the broker is unreachable")
	}
	keep, _ := cmd.Flags().GetInt("keep")
	w := worker.NewAlertWorker(app.Store, keep, app.Logger)

	ctx, done := GracefulShutdown(app.Logger, shutdownTimeout, nil)
	app.Logger.Info("Consuming spending alerts", "queue", app.Config.AMQPQueue)
	if err := app.AMQP.ConsumeAlerts(ctx, w.HandleAlert); err != nil && !errors.Is(err, context.Canceled) {
		app.Logger.Error("Alert consumption failed", log.FieldError, err)
		return err
	}
	<-done
	return nil
}

var alertsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the recorded alert history",
	Args:  cobra.NoArgs,
	RunE:  runAlertsList,
}

func runAlertsList(cmd *cobra.Command, args []string) error {
	app, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer app.Close()

	alerts, err := worker.NewAlertWorker(app.Store, 0, app.Logger).Recent(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(alerts) == 0 {
		fmt.Fprintln(out, "No alerts recorded")
		return nil
	}
	for _, a := range alerts {
		fmt.Fprintf(out, "%s  %-7s  %-7s  %s\n", a.Timestamp.Local().Format(time.DateTime), a.Level, a.Source, a.Message)
	}
	return nil
}
