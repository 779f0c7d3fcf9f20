package commands

import (
	"fmt"
	"os"

	"city-scrapers-det/lib/meeting"
	"city-scrapers-det/lib/osutil"
	"city-scrapers-det/lib/runner"
	"city-scrapers-det/lib/timezone"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(crawlCmd)
}

var crawlCmd = &cobra.Command{
	Use:   "crawl <scraper>...",
	Short: "Runs the named scrapers and prints their events as jsonlines.",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range args {
			s, ok := registry().Get(name)
			if !ok {
				osutil.Fatal("unknown scraper", fmt.Errorf("%q is not registered", name))
			}

			outcome := runner.RunOne(cmd.Context(), s)
			if outcome.Err != nil {
				osutil.Fatal("scrape failed", outcome.Err)
			}

			events := make([]meeting.Event, 0, len(outcome.Meetings))
			for _, m := range outcome.Meetings {
				events = append(events, meeting.ToEvent(m, s.Agency(), timezone.Location))
			}
			err := meeting.WriteEvents(os.Stdout, events)
			if err != nil {
				osutil.Fatal("failed to encode events", err)
			}
		}
	},
}
