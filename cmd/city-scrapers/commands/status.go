package commands

import (
	"os"
	"time"

	"city-scrapers-det/lib/osutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var statusLimit *int64

func init() {
	statusLimit = statusCmd.Flags().Int64(
		"limit", 30, "The maximum number of runs to show.")
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status [--limit <n>]",
	Short: "Prints the most recent run of each scraper.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()
		service, cleanup := newService(cfg)
		defer cleanup()

		runs, err := service.RecentRuns(cmd.Context(), *statusLimit)
		if err != nil {
			osutil.Fatal("failed to list runs", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Scraper", "Started", "Duration", "Meetings", "Feed", "Error"})

		for _, run := range runs {
			t.AppendRow(table.Row{
				run.Scraper,
				time.Unix(run.StartedAt, 0).Format(time.RFC3339),
				(time.Duration(run.DurationMs) * time.Millisecond).String(),
				run.MeetingCount,
				run.FeedPath,
				run.Error,
			})
		}

		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
