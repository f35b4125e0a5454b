package commands

import (
	"context"
	"fmt"
	"os"

	"challanup-backend/lib/challanstore"
	"challanup-backend/lib/configutil"
	"challanup-backend/lib/scrapers/erp"
	"challanup-backend/lib/util/serviceutil"
	"challanup-backend/services/challan"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "challan-cli",
	Short: "challan-cli uploads cutting-to-sewing transfer challans to the garments ERP.",
}

var configPath *string

func init() {
	configPath = rootCmd.PersistentFlags().String(
		"config", "config.json5", "Path to the ERP config file.")
}

type Config struct {
	Erp       erp.Options `json:"erp"`
	HistoryDb string      `json:"history_db"`
}

func loadConfig() Config {
	cfg, err := configutil.ReadConfig[Config](*configPath)
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	return cfg
}

func openStore(cfg Config) *challanstore.Store {
	if cfg.HistoryDb == "" {
		return nil
	}
	store, err := challanstore.Open(cfg.HistoryDb)
	if err != nil {
		serviceutil.Fatal("failed to open history db", err)
	}
	return store
}

func buildService(cfg Config) challan.Service {
	return challan.NewService(cfg.Erp, openStore(cfg))
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
