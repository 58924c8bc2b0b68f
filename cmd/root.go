package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gavelworks/auction-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "auction-cli",
	Short: "Auction lot harvesting pipeline",
	Long:  "Scans auction listing pages, extracts structured lot records with image assets, and appends them to a fixed-schema CSV store with per-field completeness tracking.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
