package commands

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Prints every registered scraper.",
	Run: func(cmd *cobra.Command, args []string) {
		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Scraper", "Agency"})

		for _, s := range registry().All() {
			t.AppendRow(table.Row{s.Name(), s.Agency()})
		}

		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
