package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/gavelworks/auction-cli/internal/store"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List past harvest runs from the ledger",
	RunE: func(cmd *cobra.Command, args []string) error {
		ledger, err := store.OpenLedger(cfg.Store.LedgerPath)
		if err != nil {
			return eris.Wrap(err, "runs: open ledger")
		}
		defer func() { _ = ledger.Close() }()

		if err := ledger.Migrate(cmd.Context()); err != nil {
			return eris.Wrap(err, "runs: migrate ledger")
		}

		runs, err := ledger.ListRuns(cmd.Context(), runsLimit)
		if err != nil {
			return eris.Wrap(err, "runs: list")
		}

		if len(runs) == 0 {
			fmt.Println("no runs recorded")
			return nil
		}

		fmt.Printf("%-36s %-12s %-11s %5s %5s %5s  %s\n",
			"ID", "STATUS", "DATE", "TOTAL", "OK", "FAIL", "AUCTION")
		for _, r := range runs {
			fmt.Printf("%-36s %-12s %-11s %5d %5d %5d  %s\n",
				r.ID, r.Status, r.AuctionDate, r.LotsTotal, r.LotsOK, r.LotsFailed,
				truncate(r.AuctionTitle, 40))
		}
		return nil
	},
}

func init() {
	runsCmd.Flags().IntVar(&runsLimit, "limit", 50, "maximum runs to list")
	rootCmd.AddCommand(runsCmd)
}
