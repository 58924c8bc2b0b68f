package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var reCategoryClass = regexp.MustCompile(`lot-title.*cat-\d+`)

// categoryKeywords identify a category-bearing dropdown option.
var categoryKeywords = []string{"ceramics", "glass", "furniture", "art", "jewelry"}

// Category reads the lot category from the structured class token on the lot
// heading, falling back to the first dropdown option that names a category.
// Returns "" when neither is present.
func Category(doc *goquery.Document) string {
	var token string
	doc.Find("h1").EachWithBreak(func(_ int, h *goquery.Selection) bool {
		class := h.AttrOr("class", "")
		if !reCategoryClass.MatchString(class) {
			return true
		}
		for _, cls := range strings.Fields(class) {
			if strings.HasPrefix(cls, "cat-") {
				token = cls
				return false
			}
		}
		return true
	})
	if token != "" {
		return token
	}

	var option string
	doc.Find("option").EachWithBreak(func(_ int, opt *goquery.Selection) bool {
		text := strings.TrimSpace(opt.Text())
		lower := strings.ToLower(text)
		for _, kw := range categoryKeywords {
			if strings.Contains(lower, kw) {
				option = text
				return false
			}
		}
		return true
	})
	return option
}
