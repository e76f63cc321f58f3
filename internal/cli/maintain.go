package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"moneytracker/internal/log"
	"moneytracker/internal/worker"
)

func init() {
	rootCmd.AddCommand(pruneCmd)
	rootCmd.AddCommand(maintainCmd)
	rootCmd.AddCommand(resetCmd)

	maintainCmd.Flags().String("schedule", "", "Cron schedule (overrides PRUNE_SCHEDULE)")
	maintainCmd.Flags().Bool("now", false, "Prune once at startup before waiting for the schedule")
	resetCmd.Flags().Bool("yes", false, "Confirm deleting every transaction and goal")
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete transactions older than the retention window",
	Args:  cobra.NoArgs,
	RunE:  runPrune,
}

func runPrune(cmd *cobra.Command, args []string) error {
	app, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer app.Close()

	res, err := app.Tracker.Prune(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d expenses and %d income entries dated on or before %s\n",
		res.Expenses, res.Income, res.Cutoff)
	return nil
}

var maintainCmd = &cobra.Command{
	Use:   "maintain",
	Short: "Run the retention prune on a cron schedule",
	Args:  cobra.NoArgs,
	RunE:  runMaintain,
}

func runMaintain(cmd *cobra.Command, args []string) error {
	app, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer app.Close()

	schedule := app.Config.PruneSchedule
	if s, _ := cmd.Flags().GetString("schedule"); s != "" {
		schedule = s
	}
	scheduler, err := worker.NewPruneScheduler(schedule, app.Tracker, app.Logger)
	if err != nil {
		return err
	}

	ctx, done := GracefulShutdown(app.Logger, shutdownTimeout, func(ctx context.Context) {
		if err := scheduler.Stop(ctx); err != nil {
			app.Logger.Warn("Prune scheduler did not stop in time", log.FieldError, err)
		}
	})

	if now, _ := cmd.Flags().GetBool("now"); now {
		if _, err := scheduler.RunOnce(ctx); err != nil {
			app.Logger.Error("Startup prune failed", log.FieldError, err)
		}
	}
	scheduler.Start()
	app.Logger.Info("Maintenance scheduler running", "schedule", schedule, "retention_months", app.Config.RetentionMonths)

	<-ctx.Done()
	<-done
	return nil
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all transactions and goals, keeping limits",
	Args:  cobra.NoArgs,
	RunE:  runReset,
}

func runReset(cmd *cobra.Command, args []string) error {
	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		return errors.New("refusing to reset without --yes")
	}
	app, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.Tracker.Reset(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "All transactions and goals deleted")
	return nil
}
