// Package pipeline sequences the harvest for one auction: discover lots,
// then per lot fetch, extract, enrich, persist, retrieve assets, and audit.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/gavelworks/auction-cli/internal/assets"
	"github.com/gavelworks/auction-cli/internal/audit"
	"github.com/gavelworks/auction-cli/internal/config"
	"github.com/gavelworks/auction-cli/internal/discovery"
	"github.com/gavelworks/auction-cli/internal/extract"
	"github.com/gavelworks/auction-cli/internal/model"
	"github.com/gavelworks/auction-cli/internal/store"
)

// State names a record's position in the per-lot state machine.
type State string

const (
	StateDiscovered      State = "discovered"
	StateFetched         State = "fetched"
	StateExtracted       State = "extracted"
	StateEnriched        State = "enriched"
	StatePersisted       State = "persisted"
	StateAssetsRetrieved State = "assets_retrieved"
	StateAudited         State = "audited"
	StateFailed          State = "failed"
)

// PageFetcher retrieves page bodies. Satisfied by fetcher.HTTPFetcher.
type PageFetcher interface {
	FetchPage(ctx context.Context, url string) ([]byte, error)
}

// Pipeline drives the sequential record loop. Concurrency lives only inside
// the asset downloader; the store and auditor are touched from this loop
// alone.
type Pipeline struct {
	cfg        *config.Config
	fetcher    PageFetcher
	downloader *assets.Downloader
	ledger     *store.RunLedger // optional
}

// New creates a Pipeline. ledger may be nil when run tracking is disabled.
func New(cfg *config.Config, f PageFetcher, d *assets.Downloader, ledger *store.RunLedger) *Pipeline {
	return &Pipeline{cfg: cfg, fetcher: f, downloader: d, ledger: ledger}
}

// Summary is the run-end result, reported even on interruption.
type Summary struct {
	RunID       string
	Auction     model.AuctionContext
	Discovered  int
	Processed   int
	Succeeded   int
	Failed      int
	Interrupted bool
	Audit       audit.Report
	CSVPath     string
	ImagesDir   string
}

// Run harvests one auction. Per-record failures are logged and counted; only
// listing-fetch and storage-write failures abort the run.
func (p *Pipeline) Run(ctx context.Context, auctionURL string) (*Summary, error) {
	log := zap.L().With(zap.String("auction_url", auctionURL))
	log.Info("pipeline: scanning auction")

	body, err := p.fetcher.FetchPage(ctx, auctionURL)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: fetch listing page")
	}
	listingDoc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: parse listing page")
	}

	extractor := extract.New(p.cfg.Assets.BaseURL, p.cfg.Harvest.DefaultDate)
	auction := extractor.AuctionContext(listingDoc, auctionURL)

	lots := discovery.LotLinks(listingDoc, p.cfg.Harvest.BaseURL)
	if len(lots) == 0 {
		return nil, eris.Errorf("pipeline: no lots found at %s", auctionURL)
	}
	discovered := len(lots)
	if max := p.cfg.Harvest.MaxLots; max > 0 && len(lots) > max {
		lots = lots[:max]
		log.Info("pipeline: truncating lot list",
			zap.Int("discovered", discovered),
			zap.Int("max_lots", max),
		)
	}

	workDir, imagesDir, csvPath, err := p.preparePaths(auction)
	if err != nil {
		return nil, err
	}
	log.Info("pipeline: output directory ready", zap.String("dir", workDir))

	csv, err := store.OpenCSV(csvPath)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: open store")
	}
	defer func() { _ = csv.Close() }()

	summary := &Summary{
		Auction:    auction,
		Discovered: discovered,
		CSVPath:    csvPath,
		ImagesDir:  imagesDir,
	}

	if p.ledger != nil {
		run, ledgerErr := p.ledger.CreateRun(ctx, auctionURL, auction.Title, auction.Date, csvPath)
		if ledgerErr != nil {
			log.Warn("pipeline: run ledger unavailable", zap.Error(ledgerErr))
		} else {
			summary.RunID = run.ID
		}
	}

	auditor := audit.New(p.cfg.Harvest.FillRateThreshold)
	delay := time.Duration(p.cfg.Harvest.DelaySecs) * time.Second

	for i, lot := range lots {
		if ctx.Err() != nil {
			summary.Interrupted = true
			log.Warn("pipeline: interrupted, keeping partial results",
				zap.Int("processed", summary.Processed),
				zap.Int("total", len(lots)),
			)
			break
		}

		summary.Processed++
		state, fatalErr := p.processLot(ctx, lot, auction, extractor, csv, auditor, imagesDir)
		if fatalErr != nil {
			p.finishLedger(summary, store.RunStatusFailed)
			return summary, fatalErr
		}
		if state == StateFailed {
			summary.Failed++
		} else {
			summary.Succeeded++
		}

		if (i+1)%10 == 0 {
			log.Info("pipeline: progress",
				zap.Int("processed", i+1),
				zap.Int("total", len(lots)),
				zap.Int("succeeded", summary.Succeeded),
				zap.Int("failed", summary.Failed),
			)
		}

		// Inter-record delay throttles load on the source. Not applied
		// after the last record; a cancellation during the wait ends the
		// run at the next loop check.
		if delay > 0 && i < len(lots)-1 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
			case <-timer.C:
			}
		}
	}

	summary.Audit = auditor.Report()

	status := store.RunStatusComplete
	if summary.Interrupted {
		status = store.RunStatusInterrupted
	}
	p.finishLedger(summary, status)

	log.Info("pipeline: run finished",
		zap.Int("discovered", summary.Discovered),
		zap.Int("processed", summary.Processed),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
		zap.Bool("interrupted", summary.Interrupted),
	)
	return summary, nil
}

// processLot walks one record through the state machine. The returned error
// is non-nil only for storage-write failures, which are fatal to the run.
func (p *Pipeline) processLot(
	ctx context.Context,
	lot discovery.LotRef,
	auction model.AuctionContext,
	extractor *extract.Extractor,
	csv *store.CSVStore,
	auditor *audit.Auditor,
	imagesDir string,
) (State, error) {
	log := zap.L().With(zap.String("lot_id", lot.ID), zap.String("url", lot.URL))
	state := StateDiscovered

	body, err := p.fetcher.FetchPage(ctx, lot.URL)
	if err != nil {
		log.Warn("pipeline: lot fetch failed, skipping",
			zap.String("state", string(state)),
			zap.Error(err),
		)
		return StateFailed, nil
	}
	state = StateFetched

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		log.Warn("pipeline: lot parse failed, skipping",
			zap.String("state", string(state)),
			zap.Error(err),
		)
		return StateFailed, nil
	}

	// Extraction and enrichment are total: they cannot fail a record.
	rec := extractor.Lot(doc, lot.URL, time.Now())
	state = StateEnriched

	// The run-wide auction identity wins over per-page extraction.
	if auction.ID != "" {
		rec.AuctionID = auction.ID
	}
	if auction.Title != "" {
		rec.AuctionTitle = auction.Title
	}
	if auction.Date != "" {
		rec.AuctionDate = auction.Date
	}
	rec.ComposeFullInfo()

	if err := csv.Append(rec); err != nil {
		// Partial persistence would corrupt the append-only log: abort loudly.
		return StateFailed, eris.Wrap(err, "pipeline: store write")
	}
	state = StatePersisted

	p.downloader.DownloadAll(ctx, rec, imagesDir)
	state = StateAssetsRetrieved

	if !auditor.Observe(rec) {
		log.Warn("pipeline: lot has empty required fields", zap.String("lot_number", rec.LotNumber))
	}
	state = StateAudited

	log.Info("pipeline: lot processed",
		zap.String("state", string(state)),
		zap.String("lot_number", rec.LotNumber),
		zap.String("estimate", rec.LotEstimate),
	)
	return state, nil
}

// preparePaths creates the run's working directory tree and returns
// (workDir, imagesDir, csvPath).
func (p *Pipeline) preparePaths(auction model.AuctionContext) (string, string, string, error) {
	title := assets.CleanFilename(auction.Title)
	if title == "" {
		title = "Unknown_Auction"
	}
	date := auction.Date
	if date == "" {
		date = "Unknown_Date"
	}
	stamp := time.Now().Format("2006-01-02_15-04")

	workDir := filepath.Join(p.cfg.Harvest.OutputDir, fmt.Sprintf("%s_%s_parsed_%s", title, date, stamp))
	imagesDir := filepath.Join(workDir, "images")
	if err := os.MkdirAll(imagesDir, 0o755); err != nil {
		return "", "", "", eris.Wrap(err, "pipeline: create output directories")
	}

	csvPath := filepath.Join(workDir, fmt.Sprintf("%s_%s_%s.csv", title, date, stamp))
	return workDir, imagesDir, csvPath, nil
}

func (p *Pipeline) finishLedger(summary *Summary, status store.RunStatus) {
	if p.ledger == nil || summary.RunID == "" {
		return
	}
	err := p.ledger.CompleteRun(context.Background(), summary.RunID, status,
		summary.Processed, summary.Succeeded, summary.Failed)
	if err != nil {
		zap.L().Warn("pipeline: failed to finalize run ledger", zap.Error(err))
	}
}
