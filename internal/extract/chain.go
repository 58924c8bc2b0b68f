// Package extract implements the field-extraction engine: per-field ordered
// fallback chains of independent strategies over a parsed lot page.
package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Strategy is one extraction attempt. Strategies are pure (document in,
// candidate string out), share no state, and return "" when they find nothing.
type Strategy func(doc *goquery.Document) string

// Chain evaluates strategies in priority order; the first non-empty trimmed
// result wins. Chains are total: when every strategy misses, the configured
// default (usually "") is returned, never an error.
type Chain struct {
	Field      string
	Strategies []Strategy
	Default    string
}

// Extract runs the chain against a document.
func (c Chain) Extract(doc *goquery.Document) string {
	for _, s := range c.Strategies {
		if v := strings.TrimSpace(s(doc)); v != "" {
			return v
		}
	}
	return c.Default
}
