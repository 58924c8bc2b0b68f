// Package assets retrieves a record's image files concurrently through a
// bounded worker pool. One failed image never fails the record or its
// siblings; the saved files on disk are the durable artifact.
package assets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gavelworks/auction-cli/internal/model"
)

// AssetFetcher downloads a single URL to a file. Satisfied by
// fetcher.HTTPFetcher.
type AssetFetcher interface {
	DownloadToFile(ctx context.Context, url, path string) (int64, error)
}

// Downloader fans a record's images out across a fixed-size worker pool.
// The bound protects the source server and the local filesystem; it is not a
// throughput knob.
type Downloader struct {
	fetcher AssetFetcher
	workers int
}

// NewDownloader creates a Downloader with the given concurrency ceiling
// (default 6).
func NewDownloader(f AssetFetcher, workers int) *Downloader {
	if workers <= 0 {
		workers = 6
	}
	return &Downloader{fetcher: f, workers: workers}
}

// Tasks builds the retrieval batch for a record: the primary image first,
// then the additional images in list order. Filenames are deterministic from
// (lot id, primary flag, ordinal).
func Tasks(rec *model.LotRecord, dir string) []model.ImageAsset {
	var tasks []model.ImageAsset

	if rec.ImageURL != "" {
		tasks = append(tasks, model.ImageAsset{
			URL:     rec.ImageURL,
			Path:    filepath.Join(dir, fmt.Sprintf("lot_%s_main%s", rec.LotSystemID, extensionFor(rec.ImageURL))),
			Primary: true,
			Index:   0,
		})
	}

	if rec.AdditionalImagesURLs != "" {
		for i, u := range strings.Split(rec.AdditionalImagesURLs, " | ") {
			u = strings.TrimSpace(u)
			if u == "" {
				continue
			}
			idx := i + 1
			tasks = append(tasks, model.ImageAsset{
				URL:   u,
				Path:  filepath.Join(dir, fmt.Sprintf("lot_%s_additional_%d%s", rec.LotSystemID, idx, extensionFor(u))),
				Index: idx,
			})
		}
	}

	return tasks
}

// DownloadAll fetches every image for a record into its per-lot directory
// under imagesRoot and returns the saved paths. Dispatch order is primary
// first then additional; completion order is whatever the pool yields.
// Individual failures are logged and skipped.
func (d *Downloader) DownloadAll(ctx context.Context, rec *model.LotRecord, imagesRoot string) []string {
	dir := filepath.Join(imagesRoot, LotDirName(rec))
	tasks := Tasks(rec, dir)
	if len(tasks) == 0 {
		zap.L().Debug("assets: no images for lot", zap.String("lot", rec.LotNumber))
		return nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		zap.L().Warn("assets: create lot directory",
			zap.String("dir", dir),
			zap.Error(err),
		)
		return nil
	}

	var (
		mu    sync.Mutex
		saved []string
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)

	for _, task := range tasks {
		g.Go(func() error {
			if _, err := d.fetcher.DownloadToFile(gCtx, task.URL, task.Path); err != nil {
				zap.L().Warn("assets: image download failed",
					zap.String("url", task.URL),
					zap.Bool("primary", task.Primary),
					zap.Error(err),
				)
				return nil // isolated: never propagate
			}
			mu.Lock()
			saved = append(saved, task.Path)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	zap.L().Info("assets: batch complete",
		zap.String("lot", rec.LotNumber),
		zap.Int("saved", len(saved)),
		zap.Int("requested", len(tasks)),
	)
	return saved
}

// LotDirName names the per-lot image directory from the lot number and a
// cleaned slice of the description, falling back to the system id.
func LotDirName(rec *model.LotRecord) string {
	if rec.LotNumber != "" {
		return "Lot_" + rec.LotNumber + "_" + CleanFilename(rec.LotDescription)
	}
	return "Lot_ID_" + rec.LotSystemID
}

var (
	reUnsafeChars = regexp.MustCompile(`[^\w\s-]`)
	reSeparators  = regexp.MustCompile(`[-\s]+`)
)

// CleanFilename makes text safe for file and directory names: drop special
// characters, collapse separators to underscores, cap at 50 characters.
func CleanFilename(text string) string {
	clean := reUnsafeChars.ReplaceAllString(text, "")
	clean = reSeparators.ReplaceAllString(clean, "_")
	if len(clean) > 50 {
		clean = clean[:50]
	}
	return clean
}

// extensionFor derives the file extension from the URL, defaulting to .jpg.
func extensionFor(url string) string {
	if strings.Contains(url, ".png") {
		return ".png"
	}
	return ".jpg"
}
