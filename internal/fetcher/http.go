// Package fetcher implements the HTTP fetch client for lot pages and image
// assets: pooled connections, bounded retry on transient failures, fixed
// identification headers.
package fetcher

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/gavelworks/auction-cli/internal/resilience"
)

// Options configures the HTTP fetcher.
type Options struct {
	UserAgent    string
	PageTimeout  time.Duration // page fetches, retried on transient failures
	AssetTimeout time.Duration // image fetches, never retried
	MaxAttempts  int
	RatePerSec   float64 // request rate against the source host
}

func (o Options) withDefaults() Options {
	if o.UserAgent == "" {
		o.UserAgent = "auction-cli/1.0"
	}
	if o.PageTimeout == 0 {
		o.PageTimeout = 30 * time.Second
	}
	if o.AssetTimeout == 0 {
		o.AssetTimeout = 10 * time.Second
	}
	if o.MaxAttempts == 0 {
		o.MaxAttempts = 3
	}
	if o.RatePerSec == 0 {
		o.RatePerSec = 5
	}
	return o
}

// HTTPFetcher fetches pages and assets over a shared pooled transport.
type HTTPFetcher struct {
	pageClient  *http.Client
	assetClient *http.Client
	opts        Options
	limiter     *rate.Limiter
	retry       resilience.RetryConfig
}

// New creates an HTTPFetcher with the given options.
func New(opts Options) *HTTPFetcher {
	opts = opts.withDefaults()

	transport := &http.Transport{
		MaxIdleConnsPerHost: 20,
		MaxConnsPerHost:     20,
		IdleConnTimeout:     90 * time.Second,
	}

	retry := resilience.DefaultRetryConfig()
	retry.MaxAttempts = opts.MaxAttempts
	retry.OnRetry = resilience.RetryLogger("page fetch")

	return &HTTPFetcher{
		pageClient:  &http.Client{Timeout: opts.PageTimeout, Transport: transport},
		assetClient: &http.Client{Timeout: opts.AssetTimeout, Transport: transport},
		opts:        opts,
		limiter:     rate.NewLimiter(rate.Limit(opts.RatePerSec), 1),
		retry:       retry,
	}
}

func (f *HTTPFetcher) newRequest(ctx context.Context, rawURL string) (*http.Request, error) {
	if _, err := url.ParseRequestURI(rawURL); err != nil {
		return nil, resilience.NewPermanentError(eris.Wrapf(err, "fetch: malformed url %q", rawURL), 0)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, resilience.NewPermanentError(eris.Wrap(err, "fetch: create request"), 0)
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	return req, nil
}

// classifyStatus turns a non-2xx response into a transient or permanent error.
func classifyStatus(status int, rawURL string) error {
	err := eris.Errorf("fetch: http %d from %s", status, rawURL)
	if resilience.IsTransientHTTPStatus(status) {
		return resilience.NewTransientError(err, status)
	}
	return resilience.NewPermanentError(err, status)
}

// FetchPage retrieves a page body, retrying transient failures up to the
// configured attempt bound. Both transient (after exhaustion) and permanent
// errors mean "skip this item"; the caller decides whether to log or count.
func (f *HTTPFetcher) FetchPage(ctx context.Context, rawURL string) ([]byte, error) {
	body, err := resilience.DoVal(ctx, f.retry, func(ctx context.Context) ([]byte, error) {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "fetch: rate limiter wait")
		}

		req, err := f.newRequest(ctx, rawURL)
		if err != nil {
			return nil, err
		}

		resp, err := f.pageClient.Do(req)
		if err != nil {
			return nil, eris.Wrap(err, "fetch: request")
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusOK {
			return nil, classifyStatus(resp.StatusCode, rawURL)
		}

		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, eris.Wrap(err, "fetch: read body")
		}
		return b, nil
	})
	if err != nil {
		return nil, eris.Wrapf(err, "fetch: %s", rawURL)
	}
	return body, nil
}

// DownloadToFile streams an asset to path with the short asset timeout.
// Assets are never retried: a failed image is skipped, not escalated.
func (f *HTTPFetcher) DownloadToFile(ctx context.Context, rawURL, path string) (int64, error) {
	req, err := f.newRequest(ctx, rawURL)
	if err != nil {
		return 0, err
	}

	resp, err := f.assetClient.Do(req)
	if err != nil {
		return 0, eris.Wrapf(err, "download: %s", rawURL)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return 0, classifyStatus(resp.StatusCode, rawURL)
	}

	file, err := os.Create(path)
	if err != nil {
		return 0, eris.Wrap(err, "download: create file")
	}
	defer func() { _ = file.Close() }()

	n, err := io.Copy(file, resp.Body)
	if err != nil {
		return n, eris.Wrap(err, "download: write file")
	}

	zap.L().Debug("asset saved",
		zap.String("url", rawURL),
		zap.String("path", path),
		zap.Int64("bytes", n),
	)
	return n, nil
}
