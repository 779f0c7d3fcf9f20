package commands

import (
	"log/slog"

	"city-scrapers-det/lib/notify"
	"city-scrapers-det/lib/telemetry"

	"github.com/spf13/cobra"
)

var runAllExclude *[]string
var runAllArchive *bool

func init() {
	runAllExclude = runAllCmd.Flags().StringSlice(
		"exclude", nil, "Scrapers to skip this run.")
	runAllArchive = runAllCmd.Flags().Bool(
		"archive", false, "Keep meetings older than a year in the output.")
	rootCmd.AddCommand(runAllCmd)
}

var runAllCmd = &cobra.Command{
	Use:   "run-all [--exclude <scraper>,...] [--archive]",
	Short: "Runs every scraper at once and persists the results.",
	Long: `Runs every registered scraper concurrently, waits for all of
them to finish, writes feed files and the sqlite archive, and emails a
failure summary when smtp is configured. The exit code is always zero:
individual scraper failures are expected day to day and are reported
through run records and notifications instead.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		telemetry.InstrumentPerfStats(ctx)

		cfg := readConfig()
		service, cleanup := newService(cfg)
		defer cleanup()
		service.Archive = *runAllArchive

		outcomes, err := service.Harvest(ctx, *runAllExclude...)
		if err != nil {
			slog.ErrorContext(ctx, "some results could not be persisted", "err", err)
		}

		failed := 0
		for _, outcome := range outcomes {
			if outcome.Err != nil {
				failed++
			}
		}
		slog.InfoContext(ctx, "run complete",
			"scrapers", len(outcomes), "failed", failed)

		err = notify.NewNotifier(cfg.Smtp).SendFailureSummary(ctx, outcomes)
		if err != nil {
			slog.ErrorContext(ctx, "failed to send failure summary", "err", err)
		}
	},
}
