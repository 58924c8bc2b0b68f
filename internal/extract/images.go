package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var reStockMedium = regexp.MustCompile(`stock.*medium`)

// PrimaryImage locates the main lot image: by element id, then by class, then
// by a filename-pattern match. The result is absolutized; "" when no candidate
// exists.
func (e *Extractor) PrimaryImage(doc *goquery.Document) string {
	if src := doc.Find("img#lot-image").AttrOr("src", ""); src != "" {
		return e.absolutize(src)
	}
	if src := doc.Find("img.main-image").AttrOr("src", ""); src != "" {
		return e.absolutize(src)
	}

	var found string
	doc.Find("img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		src := img.AttrOr("src", "")
		if src != "" && reStockMedium.MatchString(src) {
			found = src
			return false
		}
		return true
	})
	if found != "" {
		return e.absolutize(found)
	}
	return ""
}

// HighResVariant derives the high-resolution URL by stripping the size suffix
// from the filename. The derived URL is never verified; the source site's
// naming convention is the contract.
func HighResVariant(imageURL string) string {
	if imageURL == "" {
		return ""
	}
	return strings.ReplaceAll(imageURL, "-medium", "")
}

// AdditionalImages collects the extra lot images referenced from the condition
// tab, upgraded to their full-size variants and absolutized, in document order.
func (e *Extractor) AdditionalImages(doc *goquery.Document) []string {
	var urls []string
	doc.Find("#condition img").Each(func(_ int, img *goquery.Selection) {
		src := img.AttrOr("src", "")
		if src == "" || !strings.Contains(src, "stock") {
			return
		}
		src = strings.ReplaceAll(src, "-small", "")
		src = strings.ReplaceAll(src, "-medium", "")
		urls = append(urls, e.absolutize(src))
	})
	return urls
}

// absolutize normalizes protocol-relative and root-relative URLs against the
// asset host.
func (e *Extractor) absolutize(src string) string {
	switch {
	case strings.HasPrefix(src, "//"):
		return "https:" + src
	case strings.HasPrefix(src, "/"):
		return e.assetBaseURL + src
	default:
		return src
	}
}
