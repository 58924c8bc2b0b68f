package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gavelworks/auction-cli/internal/assets"
	"github.com/gavelworks/auction-cli/internal/fetcher"
	"github.com/gavelworks/auction-cli/internal/pipeline"
	"github.com/gavelworks/auction-cli/internal/store"
)

var (
	harvestMaxLots   int
	harvestDelaySecs int
	harvestOutputDir string
)

var harvestCmd = &cobra.Command{
	Use:   "harvest <auction-url>",
	Short: "Harvest every lot in an auction",
	Long:  "Fetches the auction listing page, discovers its lots, and runs each through fetch, extract, enrich, persist, image retrieval, and the completeness audit.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		auctionURL := args[0]

		// Flags override config.
		if cmd.Flags().Changed("max-lots") {
			cfg.Harvest.MaxLots = harvestMaxLots
		}
		if cmd.Flags().Changed("delay") {
			cfg.Harvest.DelaySecs = harvestDelaySecs
		}
		if cmd.Flags().Changed("output-dir") {
			cfg.Harvest.OutputDir = harvestOutputDir
		}

		// Ctrl-C stops cleanly between records, keeping partial results.
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		f := fetcher.New(fetcher.Options{
			UserAgent:    cfg.Fetch.UserAgent,
			PageTimeout:  time.Duration(cfg.Fetch.PageTimeoutSecs) * time.Second,
			AssetTimeout: time.Duration(cfg.Assets.TimeoutSecs) * time.Second,
			MaxAttempts:  cfg.Fetch.MaxAttempts,
			RatePerSec:   cfg.Fetch.RatePerSec,
		})
		downloader := assets.NewDownloader(f, cfg.Assets.Workers)

		ledger := openLedger(ctx)
		if ledger != nil {
			defer func() { _ = ledger.Close() }()
		}

		p := pipeline.New(cfg, f, downloader, ledger)
		summary, err := p.Run(ctx, auctionURL)

		// The summary is printed even on partial completion.
		if summary != nil {
			printSummary(summary)
		}
		return err
	},
}

// openLedger opens the run ledger, downgrading any failure to a warning:
// run tracking is a convenience, not a requirement.
func openLedger(ctx context.Context) *store.RunLedger {
	ledger, err := store.OpenLedger(cfg.Store.LedgerPath)
	if err != nil {
		zap.L().Warn("run ledger disabled", zap.Error(err))
		return nil
	}
	if err := ledger.Migrate(ctx); err != nil {
		zap.L().Warn("run ledger disabled", zap.Error(err))
		_ = ledger.Close()
		return nil
	}
	return ledger
}

func printSummary(s *pipeline.Summary) {
	fmt.Printf("\nAuction: %s (%s)\n", s.Auction.Title, s.Auction.Date)
	fmt.Printf("Lots discovered: %d, processed: %d, succeeded: %d, failed: %d\n",
		s.Discovered, s.Processed, s.Succeeded, s.Failed)
	if s.Interrupted {
		fmt.Println("Run interrupted; partial results kept.")
	}
	fmt.Printf("Store: %s\nImages: %s\n\n", s.CSVPath, s.ImagesDir)
	fmt.Print(s.Audit.String())
}

func init() {
	harvestCmd.Flags().IntVar(&harvestMaxLots, "max-lots", 0, "cap on lots processed (0 = all)")
	harvestCmd.Flags().IntVar(&harvestDelaySecs, "delay", 2, "seconds to wait between lots")
	harvestCmd.Flags().StringVar(&harvestOutputDir, "output-dir", ".", "directory for run output")
	rootCmd.AddCommand(harvestCmd)
}
