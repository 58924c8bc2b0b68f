package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/gavelworks/auction-cli/internal/enrich"
	"github.com/gavelworks/auction-cli/internal/model"
)

// DefaultBuyerPremium is written when no percentage appears anywhere on the
// page. A house-standard rate beats an empty column; it is a policy value,
// not a guess at the true premium.
const DefaultBuyerPremium = "22.00%"

// NoConditionReportSentence is the fixed text for lots that explicitly state
// they carry no condition report.
const NoConditionReportSentence = "There is no condition report for this lot. Click the 'Ask a question' button below to request further information."

// DefaultConditionDisclaimer terminates the condition-report chain when no
// condition text of any kind is found.
const DefaultConditionDisclaimer = "We are happy to provide Condition Reports to Prospective Buyers, but would welcome your request as soon as possible, preferably at least 48 hours before the Day of Sale."

var (
	reAuctionID     = regexp.MustCompile(`au=(\d+)`)
	reLotSystemID   = regexp.MustCompile(`lot=(\d+)`)
	reLotNumber     = regexp.MustCompile(`Lot\s+(\d+)`)
	reAppendText    = regexp.MustCompile(`\(([^,]+,[^)]+)\)`)
	reYear          = regexp.MustCompile(`20\d{2}`)
	reMetaLotPrefix = regexp.MustCompile(`^Lot\s+\d+\s*[-:]?\s*`)
	reEstimateLabel = regexp.MustCompile(`(?i)^Estimate\s*`)
	reEstimateText  = regexp.MustCompile(`(?i)Estimate[:\s]*£[\d,\s-]+`)
	rePercentage    = regexp.MustCompile(`(\d+(?:\.\d+)?)%`)
	reConditionSent = regexp.MustCompile(`(?i)[^.]*condition report[^.]*\.`)
)

// conditionBoilerplate marks disclaimer paragraphs to skip inside the
// condition tab.
var conditionBoilerplate = []string{
	"We are happy to provide",
	"We cannot guarantee",
}

// Extractor holds the per-field chains. Construct with New.
type Extractor struct {
	assetBaseURL string
	defaultDate  string

	auctionTitle Chain
	lotNumber    Chain
	description  Chain
	estimate     Chain
	buyerPremium Chain
	condition    Chain
}

// New builds an Extractor. assetBaseURL absolutizes root-relative image URLs;
// defaultDate terminates the auction-date chain.
func New(assetBaseURL, defaultDate string) *Extractor {
	e := &Extractor{
		assetBaseURL: assetBaseURL,
		defaultDate:  defaultDate,
	}

	e.auctionTitle = Chain{
		Field: "auction_title",
		Strategies: []Strategy{
			func(doc *goquery.Document) string {
				return doc.Find("h4.auction-title a").First().Text()
			},
			func(doc *goquery.Document) string {
				return doc.Find(`#auctiondetails a[href*='auction/search?au=']`).First().Text()
			},
			func(doc *goquery.Document) string {
				return doc.Find(`ol.breadcrumb a[href*='auction/details']`).First().Text()
			},
			func(doc *goquery.Document) string {
				value := doc.Find("input#AppendText").AttrOr("value", "")
				if m := reAppendText.FindStringSubmatch(value); m != nil {
					return strings.ReplaceAll(m[1], "&amp;", "&")
				}
				return ""
			},
		},
	}

	e.lotNumber = Chain{
		Field: "lot_number",
		Strategies: []Strategy{
			func(doc *goquery.Document) string {
				text := doc.Find("span.lot-number").First().Text()
				if m := reLotNumber.FindStringSubmatch(text); m != nil {
					return m[1]
				}
				return ""
			},
			func(doc *goquery.Document) string {
				return doc.Find("h3.lot-a-t").First().Text()
			},
			func(doc *goquery.Document) string {
				title := doc.Find("title").First().Text()
				if m := reLotNumber.FindStringSubmatch(title); m != nil {
					return m[1]
				}
				return ""
			},
		},
	}

	e.description = Chain{
		Field: "lot_description",
		Strategies: []Strategy{
			func(doc *goquery.Document) string {
				desc := doc.Find("div.lot-desc").First()
				if desc.Length() == 0 {
					return ""
				}
				paragraphs := desc.Find("p")
				if paragraphs.Length() == 0 {
					return desc.Text()
				}
				var parts []string
				paragraphs.Each(func(_ int, p *goquery.Selection) {
					if text := strings.TrimSpace(p.Text()); text != "" {
						parts = append(parts, text)
					}
				})
				return strings.Join(parts, " ")
			},
			func(doc *goquery.Document) string {
				content := doc.Find(`meta[name='description']`).AttrOr("content", "")
				return reMetaLotPrefix.ReplaceAllString(content, "")
			},
		},
	}

	e.estimate = Chain{
		Field: "lot_estimate",
		Strategies: []Strategy{
			func(doc *goquery.Document) string {
				text := strings.TrimSpace(doc.Find("div.estimate").First().Text())
				if text == "" {
					return ""
				}
				text = reEstimateLabel.ReplaceAllString(text, "")
				return strings.ReplaceAll(text, "&#163;", "£")
			},
			func(doc *goquery.Document) string {
				if m := reEstimateText.FindString(doc.Text()); m != "" {
					m = strings.ReplaceAll(m, "Estimate", "")
					return strings.Trim(m, " :")
				}
				return ""
			},
		},
	}

	e.buyerPremium = Chain{
		Field: "buyer_premium",
		Strategies: []Strategy{
			func(doc *goquery.Document) string {
				text := doc.Find("div.buyers-premium").First().Text()
				if m := rePercentage.FindStringSubmatch(text); m != nil {
					return m[1] + "%"
				}
				return ""
			},
			func(doc *goquery.Document) string {
				if m := rePercentage.FindStringSubmatch(doc.Text()); m != nil {
					return m[1] + "%"
				}
				return ""
			},
		},
		Default: DefaultBuyerPremium,
	}

	e.condition = Chain{
		Field: "condition_report",
		Strategies: []Strategy{
			func(doc *goquery.Document) string {
				var report string
				doc.Find("#condition p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
					text := strings.TrimSpace(p.Text())
					if text == "" || isConditionBoilerplate(text) {
						return true
					}
					report = text
					return false
				})
				return report
			},
			func(doc *goquery.Document) string {
				if strings.Contains(strings.ToLower(doc.Text()), "no condition report") {
					return NoConditionReportSentence
				}
				return ""
			},
			func(doc *goquery.Document) string {
				text := doc.Text()
				if !strings.Contains(strings.ToLower(text), "condition report") {
					return ""
				}
				if m := reConditionSent.FindString(text); m != "" {
					return m
				}
				return DefaultConditionDisclaimer
			},
		},
		Default: DefaultConditionDisclaimer,
	}

	return e
}

func isConditionBoilerplate(text string) bool {
	for _, prefix := range conditionBoilerplate {
		if strings.HasPrefix(text, prefix) {
			return true
		}
	}
	return false
}

// Lot extracts a full record from a parsed lot page. Every chain terminates
// with a value or "", so the record is always complete enough to persist; the
// auditor surfaces whatever stayed empty.
func (e *Extractor) Lot(doc *goquery.Document, lotURL string, now time.Time) *model.LotRecord {
	rec := &model.LotRecord{
		Timestamp: now.UTC().Format(time.RFC3339),
		LotURL:    lotURL,
	}

	if m := reAuctionID.FindStringSubmatch(lotURL); m != nil {
		rec.AuctionID = m[1]
	}
	if m := reLotSystemID.FindStringSubmatch(lotURL); m != nil {
		rec.LotSystemID = m[1]
	}

	rec.AuctionTitle = strings.ReplaceAll(e.auctionTitle.Extract(doc), "&amp;", "&")
	rec.AuctionDate = e.extractAuctionYear(doc)

	rec.LotNumber = e.lotNumber.Extract(doc)
	rec.LotTitle = rec.LotNumber

	rec.LotDescription = e.description.Extract(doc)
	rec.LotEstimate = e.estimate.Extract(doc)
	rec.BuyerPremium = e.buyerPremium.Extract(doc)
	rec.ConditionReport = e.condition.Extract(doc)

	rec.ImageURL = e.PrimaryImage(doc)
	rec.ImageHighResURL = HighResVariant(rec.ImageURL)

	additional := e.AdditionalImages(doc)
	rec.AdditionalImagesCount = len(additional)
	rec.AdditionalImagesURLs = strings.Join(additional, " | ")

	// Sold price and status stay empty pre-sale.

	rec.Dimensions = enrich.Dimensions(rec.LotDescription)
	rec.Materials = enrich.Materials(rec.LotDescription)
	rec.PeriodDating = enrich.PeriodDating(rec.LotDescription)
	rec.ArtistMaker = enrich.ArtistMaker(rec.LotDescription)
	rec.OriginCountry = enrich.OriginCountry(rec.LotDescription)
	rec.LotCategory = Category(doc)

	rec.ComposeFullInfo()
	return rec
}

// extractAuctionYear scans the page text for the first plausible auction year.
func (e *Extractor) extractAuctionYear(doc *goquery.Document) string {
	if m := reYear.FindString(doc.Text()); m != "" {
		return m
	}
	return e.defaultDate
}
