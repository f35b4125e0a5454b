package commands

import (
	"log/slog"
	"os"

	"challanup-backend/lib/restyutil"
	"challanup-backend/lib/scrapers/erp"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	processDownload  *bool
	processReportDir *string
	processDebugHttp *bool
)

func init() {
	processDownload = processCmd.Flags().Bool(
		"download", false, "Download the two print reports instead of only printing their URLs.")
	processReportDir = processCmd.Flags().String(
		"report-dir", "reports", "Directory to write downloaded reports to.")
	processDebugHttp = processCmd.Flags().Bool(
		"debug-http", false, "Dump every ERP request/response to .dev/resty/erp.")
	rootCmd.AddCommand(processCmd)
}

var processCmd = &cobra.Command{
	Use:   "process <challan no> [<challan no> ...]",
	Short: "Runs the full transfer workflow for each given challan number.",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		if *processDownload {
			cfg.Erp.Reports = erp.ReportDownload
			cfg.Erp.ReportDir = *processReportDir
		}
		if *processDebugHttp {
			erp.SetRestyInstrumentOutput(restyutil.NewFilesystemOutput(".dev/resty/erp"))
		}
		service := buildService(cfg)

		failed := 0
		for _, challanNo := range args {
			result := service.Run(cmd.Context(), challanNo)
			if result.Status != "success" {
				failed++
				slog.Error("challan failed", "challan_no", challanNo, "message", result.Message)
				continue
			}

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.AppendRow(table.Row{"Challan", result.ChallanNo})
			t.AppendRow(table.Row{"System ID", result.SystemId})
			t.AppendRow(table.Row{"Bundle Report", result.Report1Url})
			t.AppendRow(table.Row{"Challan Report", result.Report2Url})
			if result.Report1File != "" {
				t.AppendRow(table.Row{"Saved Reports", result.Report1File + ", " + result.Report2File})
			}
			t.SetStyle(table.StyleRounded)
			t.Render()
		}
		if failed > 0 {
			os.Exit(1)
		}
	},
}
