// Package discovery finds candidate record URLs: lot links on an auction
// listing page, and upcoming auctions on the house landing pages.
package discovery

import (
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// LotRef is a discovered lot link, pre-fetch.
type LotRef struct {
	ID      string
	URL     string
	Preview string
}

// AuctionRef is a discovered auction, pre-fetch.
type AuctionRef struct {
	ID    string
	Title string
	Date  string
	URL   string
}

// lotPathSegment is the path-shape predicate for lot links.
const lotPathSegment = "/auction/lot/"

var (
	reLotID       = regexp.MustCompile(`lot=(\d+)`)
	reAuctionPath = regexp.MustCompile(`/auction/(\d+)`)
	reNearbyDate  = regexp.MustCompile(`\d{1,2}(?:st|nd|rd|th)?\s+\w+,?\s+20\d{2}`)
)

// LotLinks collects unique lot links from a listing page, in document order.
// Relative hrefs are absolutized against baseURL; links without a lot id are
// skipped, duplicates collapse onto their first occurrence.
func LotLinks(doc *goquery.Document, baseURL string) []LotRef {
	var lots []LotRef
	seen := make(map[string]bool)

	doc.Find(`a[href*='` + lotPathSegment + `']`).Each(func(_ int, link *goquery.Selection) {
		href := link.AttrOr("href", "")
		if href == "" {
			return
		}
		if !strings.HasPrefix(href, "http") {
			href = strings.TrimSuffix(baseURL, "/") + href
		}

		m := reLotID.FindStringSubmatch(href)
		if m == nil {
			return
		}
		id := m[1]
		if seen[id] {
			return
		}
		seen[id] = true

		lots = append(lots, LotRef{
			ID:      id,
			URL:     href,
			Preview: strings.TrimSpace(link.Text()),
		})
	})

	return lots
}

// Auctions collects auction links from a landing page. Any anchor whose
// absolute URL contains "/auction/" qualifies; titles under three characters
// are noise and dropped. A date-shaped string in the link's parent text is
// carried along when present.
func Auctions(doc *goquery.Document, pageURL string) []AuctionRef {
	var auctions []AuctionRef
	seen := make(map[string]bool)

	doc.Find("a[href]").Each(func(_ int, link *goquery.Selection) {
		href := link.AttrOr("href", "")
		if href == "" {
			return
		}

		switch {
		case strings.HasPrefix(href, "/"):
			href = strings.TrimSuffix(pageURL, "/") + href
		case !strings.HasPrefix(href, "http"):
			return
		}

		if !strings.Contains(strings.ToLower(href), "/auction/") {
			return
		}
		if seen[href] {
			return
		}
		seen[href] = true

		title := strings.TrimSpace(link.Text())
		if len(title) < 3 {
			return
		}

		var id string
		if m := reAuctionPath.FindStringSubmatch(href); m != nil {
			id = m[1]
		}

		var date string
		if parent := link.Parent(); parent.Length() > 0 {
			date = reNearbyDate.FindString(parent.Text())
		}

		auctions = append(auctions, AuctionRef{
			ID:    id,
			Title: title,
			Date:  date,
			URL:   href,
		})
	})

	return auctions
}

// PageFetcher retrieves a page body. Satisfied by fetcher.HTTPFetcher.
type PageFetcher interface {
	FetchPage(ctx context.Context, url string) ([]byte, error)
}

// DefaultLandingURLs are the landing pages tried, in order, when hunting for
// upcoming auctions.
var DefaultLandingURLs = []string{
	"https://auctions.tennants.co.uk/",
	"https://auctions.tennants.co.uk/forthcoming-auctions/",
	"https://auctions.tennants.co.uk/live-auctions/",
	"https://auctions.tennants.co.uk/current-auctions/",
	"https://www.tennants.co.uk/auctions/",
	"https://www.tennants.co.uk/",
}

// FindUpcoming tries each landing URL in order and returns the auctions from
// the first page that yields any. Fetch failures skip to the next candidate.
func FindUpcoming(ctx context.Context, f PageFetcher, landingURLs []string) ([]AuctionRef, error) {
	if len(landingURLs) == 0 {
		landingURLs = DefaultLandingURLs
	}

	var lastErr error
	for _, u := range landingURLs {
		body, err := f.FetchPage(ctx, u)
		if err != nil {
			zap.L().Debug("discovery: landing page fetch failed",
				zap.String("url", u),
				zap.Error(err),
			)
			lastErr = err
			continue
		}

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
		if err != nil {
			lastErr = err
			continue
		}

		if auctions := Auctions(doc, u); len(auctions) > 0 {
			return auctions, nil
		}
	}

	return nil, lastErr
}
