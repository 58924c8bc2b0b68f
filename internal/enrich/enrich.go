// Package enrich derives secondary lot attributes from free-text descriptions.
// Every function is pure: description in, joined matches out, "" when nothing
// matches. The pattern libraries are fixed; matching order is vocabulary
// order, not input order.
package enrich

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Single-axis dimension patterns: a number with a cm/inch suffix and an axis word.
var dimensionSingle = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*cm\s+(?:high|height|h)\b`),
	regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*cm\s+(?:wide|width|w)\b`),
	regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*cm\s+(?:deep|depth|d)\b`),
	regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*cm\s+(?:long|length|l)\b`),
	regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*cm\s+(?:diameter|diam)\b`),
}

// Multi-axis form "A x B cm" or "A x B x C cm".
var dimensionMulti = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*x\s*(\d+(?:\.\d+)?)(?:\s*x\s*(\d+(?:\.\d+)?))?\s*cm`)

// Imperial forms. Rendered with a cm suffix like everything else; the source
// behavior is the contract here, unit conversion is not.
var dimensionImperial = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*inches?\s+(?:high|wide|deep|long)`),
	regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*"\s+(?:high|wide|deep|long)`),
}

// Dimensions extracts size statements from a description, joined with "; ".
// Multi-axis matches render as "A x B x C cm" with missing axes omitted.
func Dimensions(description string) string {
	var dims []string

	for _, re := range dimensionSingle {
		for _, m := range re.FindAllStringSubmatch(description, -1) {
			dims = append(dims, m[1]+" cm")
		}
	}

	for _, m := range dimensionMulti.FindAllStringSubmatch(description, -1) {
		var axes []string
		for _, axis := range m[1:] {
			if axis != "" {
				axes = append(axes, axis)
			}
		}
		dims = append(dims, strings.Join(axes, " x ")+" cm")
	}

	for _, re := range dimensionImperial {
		for _, m := range re.FindAllStringSubmatch(description, -1) {
			dims = append(dims, m[1]+" cm")
		}
	}

	return strings.Join(dims, "; ")
}

// materialVocabulary lists material terms in reporting order.
var materialVocabulary = []string{
	"brass", "bronze", "copper", "silver", "gold", "platinum",
	"wood", "oak", "mahogany", "walnut", "pine", "teak", "ebony",
	"glass", "crystal", "ceramic", "porcelain", "earthenware", "stoneware", "jasper",
	"marble", "stone", "granite", "slate",
	"fabric", "silk", "cotton", "wool", "linen", "velvet", "leather",
	"plastic", "resin", "bakelite",
	"ivory", "bone", "mother of pearl",
	"enamel", "lacquer", "gilt", "gilded",
}

// Materials reports vocabulary terms present in the description
// (case-insensitive substring test), title-cased, joined with ", ".
func Materials(description string) string {
	lower := strings.ToLower(description)
	titler := cases.Title(language.English)

	var found []string
	for _, m := range materialVocabulary {
		if strings.Contains(lower, m) {
			found = append(found, titler.String(m))
		}
	}
	return strings.Join(found, ", ")
}

var centuryPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d+(?:st|nd|rd|th))\s+century`),
	regexp.MustCompile(`(?i)(\d+(?:st|nd|rd|th))\s+c\.`),
}

var yearPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)circa\s+(\d{4})`),
	regexp.MustCompile(`(?i)c\.\s*(\d{4})`),
	regexp.MustCompile(`\b(\d{4})\b`),
	regexp.MustCompile(`(\d{4})\s*-\s*(\d{4})`),
}

// PeriodDating extracts century ordinals and year forms, joined with ", ".
// Duplicates are not suppressed: a year inside a range surfaces twice.
func PeriodDating(description string) string {
	var periods []string

	for _, re := range centuryPatterns {
		for _, m := range re.FindAllStringSubmatch(description, -1) {
			periods = append(periods, m[1]+" century")
		}
	}

	for _, re := range yearPatterns {
		for _, m := range re.FindAllStringSubmatch(description, -1) {
			if len(m) > 2 && m[2] != "" {
				periods = append(periods, m[1]+"-"+m[2])
			} else {
				periods = append(periods, m[1])
			}
		}
	}

	return strings.Join(periods, ", ")
}

var makerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`by\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)`),
	regexp.MustCompile(`([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*),\s+(?:Paris|London|Berlin|Vienna)`),
	regexp.MustCompile(`(?:signed|attributed to|after)\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)`),
}

// ArtistMaker extracts name-shaped attributions, deduplicated in first-seen
// order, joined with ", ".
func ArtistMaker(description string) string {
	var makers []string
	seen := make(map[string]bool)

	for _, re := range makerPatterns {
		for _, m := range re.FindAllStringSubmatch(description, -1) {
			name := m[1]
			if !seen[name] {
				seen[name] = true
				makers = append(makers, name)
			}
		}
	}

	return strings.Join(makers, ", ")
}

// nationalityVocabulary lists origin adjectives in reporting order.
var nationalityVocabulary = []string{
	"French", "English", "British", "German", "Italian", "Spanish",
	"Chinese", "Japanese", "American", "Austrian", "Dutch", "Belgian",
	"Russian", "Scandinavian", "European",
}

var nationalityPatterns = func() []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(nationalityVocabulary))
	for i, n := range nationalityVocabulary {
		res[i] = regexp.MustCompile(`\b` + n + `\b`)
	}
	return res
}()

// OriginCountry reports nationality adjectives present as whole words,
// in vocabulary order, joined with ", ".
func OriginCountry(description string) string {
	var found []string
	for i, re := range nationalityPatterns {
		if re.MatchString(description) {
			found = append(found, nationalityVocabulary[i])
		}
	}
	return strings.Join(found, ", ")
}
