package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/gavelworks/auction-cli/internal/discovery"
	"github.com/gavelworks/auction-cli/internal/fetcher"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find auctions and lots without harvesting",
}

var discoverAuctionsCmd = &cobra.Command{
	Use:   "auctions",
	Short: "List upcoming auctions from the house landing pages",
	RunE: func(cmd *cobra.Command, args []string) error {
		f := newPageFetcher()

		auctions, err := discovery.FindUpcoming(cmd.Context(), f, nil)
		if err != nil && len(auctions) == 0 {
			return eris.Wrap(err, "discover auctions")
		}

		for _, a := range auctions {
			date := a.Date
			if date == "" {
				date = "-"
			}
			fmt.Printf("%-8s %-12s %-50s %s\n", a.ID, date, truncate(a.Title, 50), a.URL)
		}
		fmt.Printf("%d auctions found\n", len(auctions))
		return nil
	},
}

var discoverLotsCmd = &cobra.Command{
	Use:   "lots <auction-url>",
	Short: "List the lots on an auction listing page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f := newPageFetcher()

		body, err := f.FetchPage(cmd.Context(), args[0])
		if err != nil {
			return eris.Wrap(err, "discover lots: fetch listing")
		}
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
		if err != nil {
			return eris.Wrap(err, "discover lots: parse listing")
		}

		lots := discovery.LotLinks(doc, cfg.Harvest.BaseURL)
		for _, lot := range lots {
			fmt.Printf("%-8s %-60s %s\n", lot.ID, truncate(lot.Preview, 60), lot.URL)
		}
		fmt.Printf("%d lots found\n", len(lots))
		return nil
	},
}

func newPageFetcher() *fetcher.HTTPFetcher {
	return fetcher.New(fetcher.Options{
		UserAgent:   cfg.Fetch.UserAgent,
		PageTimeout: time.Duration(cfg.Fetch.PageTimeoutSecs) * time.Second,
		MaxAttempts: cfg.Fetch.MaxAttempts,
		RatePerSec:  cfg.Fetch.RatePerSec,
	})
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func init() {
	discoverCmd.AddCommand(discoverAuctionsCmd)
	discoverCmd.AddCommand(discoverLotsCmd)
	rootCmd.AddCommand(discoverCmd)
}
