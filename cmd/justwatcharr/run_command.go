package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"justwatcharr/internal/logging"
	"justwatcharr/internal/reconcile"
	"justwatcharr/internal/runner"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Reconcile every configured library once",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("initialize logging: %w", err)
			}

			r, err := runner.New(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			summary, err := r.Run(cmd.Context(), dryRun)
			if err != nil {
				if errors.Is(err, runner.ErrAlreadyRunning) {
					return errors.New("a reconciliation run is already in progress; try again once it finishes")
				}
				return err
			}

			out := cmd.OutOrStdout()
			if dryRun {
				fmt.Fprintln(out, "Dry run: no library changes were made")
			}
			fmt.Fprintln(out, renderSummary(out, summary))
			totals := summary.Totals()
			if totals.Errors > 0 {
				return fmt.Errorf("run completed with %d error(s); see the log for details", totals.Errors)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Evaluate decisions without changing libraries or notifying")
	return cmd
}

func renderSummary(out io.Writer, summary *runner.Summary) string {
	headers := []string{"Library", "Checked", "Skipped", "Demoted", "Promoted", "Errors"}
	aligns := []columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight}

	rows := make([][]string, 0, len(summary.Libraries)+1)
	for _, stats := range summary.Libraries {
		rows = append(rows, statsRow(stats))
	}
	if len(summary.Libraries) > 1 {
		rows = append(rows, statsRow(summary.Totals()))
	}
	return renderTable(out, headers, rows, aligns)
}

func statsRow(stats reconcile.Stats) []string {
	return []string{
		stats.Kind,
		strconv.Itoa(stats.Checked),
		strconv.Itoa(stats.Skipped),
		strconv.Itoa(stats.Demoted),
		strconv.Itoa(stats.Promoted),
		strconv.Itoa(stats.Errors),
	}
}
