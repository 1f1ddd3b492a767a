package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harrison/chocotest/internal/config"
	"github.com/harrison/chocotest/internal/history"
	"github.com/harrison/chocotest/internal/models"
)

// NewHistoryCommand creates the 'chocotest history' command
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded suite runs",
		Long: `Display suite runs recorded with --history (or history.enabled in config):
  - Recent runs with pass/fail totals
  - Per-case results of one run (--run)
  - Flaky cases that both passed and failed recently (--flaky)`,
		Args: cobra.NoArgs,
		RunE: runHistory,
	}

	cmd.Flags().Int("limit", 10, "Number of recent runs to show (0 = all)")
	cmd.Flags().String("run", "", "Show the case results of this run ID")
	cmd.Flags().Bool("flaky", false, "List cases with both passing and failing results")
	cmd.Flags().Int("window", 0, "Number of recent runs considered by --flaky (0 = all retained)")
	cmd.Flags().String("config", "", "Path to config file (default: .chocotest/config.yaml)")

	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	output := cmd.OutOrStdout()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	dbPath, err := config.GetHistoryDBPath(cfg.History.DBPath)
	if err != nil {
		return fmt.Errorf("failed to get history database path: %w", err)
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Fprintf(output, "No history recorded yet.\n")
		fmt.Fprintf(output, "Database path: %s\n", dbPath)
		return nil
	}

	store, err := history.NewStore(dbPath)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer store.Close()

	ctx := cmd.Context()
	if runID, _ := cmd.Flags().GetString("run"); runID != "" {
		records, err := store.CaseResults(ctx, runID)
		if err != nil {
			return err
		}
		printCaseResults(output, runID, records)
		return nil
	}

	if flaky, _ := cmd.Flags().GetBool("flaky"); flaky {
		window, _ := cmd.Flags().GetInt("window")
		cases, err := store.FlakyCases(ctx, window)
		if err != nil {
			return err
		}
		printFlaky(output, cases)
		return nil
	}

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.RecentRuns(ctx, limit)
	if err != nil {
		return err
	}
	printRuns(output, runs)
	return nil
}

func printRuns(w io.Writer, runs []history.RunRecord) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}

	bold := color.New(color.Bold)
	fmt.Fprintln(w, bold.Sprint("=== Recent Runs ==="))
	for _, r := range runs {
		status := color.GreenString("%d/%d passed", r.Passed, r.Total)
		if r.Failed() > 0 {
			status = color.RedString("%d/%d passed", r.Passed, r.Total)
		}
		fmt.Fprintf(w, "%s  %s  %s  (%s)\n",
			r.ID, r.StartedAt.Local().Format("2006-01-02 15:04:05"), status, r.Duration)
	}
}

func printCaseResults(w io.Writer, runID string, records []history.CaseRecord) {
	if len(records) == 0 {
		fmt.Fprintf(w, "No results for run %s.\n", runID)
		return
	}

	fmt.Fprintln(w, color.New(color.Bold).Sprintf("=== Run %s ===", runID))
	for _, c := range records {
		if c.Outcome == models.OutcomePass {
			fmt.Fprintf(w, "%s %s\n", color.GreenString("Pass:"), c.Source)
			continue
		}
		fmt.Fprintf(w, "%s %s (%s)\n", color.RedString("Fail:"), c.Source, c.Kind)
	}
}

func printFlaky(w io.Writer, cases []history.FlakyCase) {
	if len(cases) == 0 {
		fmt.Fprintln(w, "No flaky cases found.")
		return
	}

	fmt.Fprintln(w, color.New(color.Bold).Sprint("=== Flaky Cases ==="))
	for _, f := range cases {
		fmt.Fprintf(w, "%s  %s passes, %s failures\n",
			f.Source, color.GreenString("%d", f.Passes), color.RedString("%d", f.Fails))
	}
}
