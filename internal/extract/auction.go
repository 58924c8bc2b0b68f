package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/gavelworks/auction-cli/internal/model"
)

var reListingDate = regexp.MustCompile(`(\d+)\w+\s+(\w+),?\s+(\d{4})`)

var monthNumbers = map[string]string{
	"Jan": "01", "Feb": "02", "Mar": "03", "Apr": "04",
	"May": "05", "Jun": "06", "Jul": "07", "Aug": "08",
	"Sep": "09", "Oct": "10", "Nov": "11", "Dec": "12",
}

// AuctionContext builds the per-run auction identity from a fetched listing
// page. Missing pieces fall back to the supplied defaults; the result is
// created once and never mutated.
func (e *Extractor) AuctionContext(doc *goquery.Document, listingURL string) model.AuctionContext {
	ctx := model.AuctionContext{Date: e.defaultDate}

	if m := reAuctionID.FindStringSubmatch(listingURL); m != nil {
		ctx.ID = m[1]
	}

	// Page title reads "<auction name> - <house name>".
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		if name, _, found := strings.Cut(title, " - "); found {
			ctx.Title = strings.TrimSpace(name)
		} else {
			ctx.Title = title
		}
	}

	// Date banner reads "18th Jul, 2025".
	dateText := strings.TrimSpace(doc.Find("p.date-title").First().Text())
	if m := reListingDate.FindStringSubmatch(dateText); m != nil {
		day, month, year := m[1], m[2], m[3]
		num, ok := monthNumbers[month]
		if !ok {
			num = "07"
		}
		if len(day) == 1 {
			day = "0" + day
		}
		ctx.Date = fmt.Sprintf("%s-%s-%s", year, num, day)
	}

	return ctx
}
