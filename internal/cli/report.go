package cli

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"moneytracker/internal/core"
	"moneytracker/internal/report"
)

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().Bool("csv", false, "Write the CSV export instead of a summary")
	reportCmd.Flags().StringP("out", "o", "", "Write to this file instead of stdout")
}

var reportCmd = &cobra.Command{
	Use:   "report YYYY-MM",
	Short: "Print or export the report for a month",
	Args:  cobra.ExactArgs(1),
	RunE:  runReport,
}

func runReport(cmd *cobra.Command, args []string) error {
	p, err := core.ParsePeriod(args[0])
	if err != nil {
		return err
	}
	asCSV, _ := cmd.Flags().GetBool("csv")
	outPath, _ := cmd.Flags().GetString("out")

	app, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer app.Close()

	rep, err := app.Tracker.Report(cmd.Context(), p)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create %s: %w", outPath, err)
		}
		defer f.Close()
		out = f
	}

	if asCSV {
		if err := report.WriteCSV(out, rep); err != nil {
			return err
		}
	} else if err := writeSummary(out, rep); err != nil {
		return err
	}
	if outPath != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Report for %s written to %s\n", p, outPath)
	}
	return nil
}

// writeSummary prints the totals and category breakdown as aligned text.
func writeSummary(w io.Writer, rep report.Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Financial Report - %s\n\n", rep.Period)
	fmt.Fprintf(tw, "Total Income\t%s\n", core.FormatMoney(rep.TotalIncome))
	fmt.Fprintf(tw, "Total Expenses\t%s\n", core.FormatMoney(rep.TotalExpenses))
	fmt.Fprintf(tw, "Balance\t%s\n", core.FormatMoney(rep.Balance))

	if rep.IsEmpty() {
		fmt.Fprintf(tw, "\nNo transactions for this period\n")
		return tw.Flush()
	}
	if len(rep.CategoryTotals) > 0 {
		fmt.Fprintf(tw, "\nExpenses by category\n")
		for _, c := range rep.CategoryTotals {
			fmt.Fprintf(tw, "  %s\t%s\n", c.Name, core.FormatMoney(c.Amount))
		}
	}
	fmt.Fprintf(tw, "\n%d income, %d expense transactions\n", len(rep.IncomeRows), len(rep.ExpenseRows))
	return tw.Flush()
}
