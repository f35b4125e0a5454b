package commands

import (
	"fmt"
	"os"

	"challanup-backend/lib/util/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var historyLimit *int

func init() {
	historyLimit = historyCmd.Flags().Int("limit", 20, "Maximum number of entries to show.")
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Prints the most recent successful uploads.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		if cfg.HistoryDb == "" {
			fmt.Fprintln(os.Stderr, "no history_db configured")
			os.Exit(1)
		}
		service := buildService(cfg)

		records, err := service.History(cmd.Context(), *historyLimit)
		if err != nil {
			serviceutil.Fatal("failed to list history", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Challan", "System ID", "Company", "Line", "Color", "Qty", "Issue Date", "Uploaded"})
		for _, rec := range records {
			t.AppendRow(table.Row{
				rec.ChallanNo, rec.SystemId, rec.CompanyName, rec.LineNo,
				rec.Color, rec.TotalQuantity, rec.IssueDate,
				rec.CreatedAt.Format("02-Jan-2006 15:04"),
			})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
	},
}
