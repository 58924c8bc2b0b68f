package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractorAuctionContext(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		html       string
		listingURL string
		wantID     string
		wantTitle  string
		wantDate   string
	}{
		{
			name:       "full listing page",
			html:       `<html><head><title>Spring Fine Sale - Tennants Auctioneers</title></head><body><p class="date-title">18th Jul, 2025</p></body></html>`,
			listingURL: "https://auctions.tennants.co.uk/auction/details/spring?au=5577",
			wantID:     "5577",
			wantTitle:  "Spring Fine Sale",
			wantDate:   "2025-07-18",
		},
		{
			name:       "single digit day is padded",
			html:       `<html><head><title>Interiors - Tennants</title></head><body><p class="date-title">5th Mar, 2026</p></body></html>`,
			listingURL: "https://auctions.tennants.co.uk/auction/details/interiors?au=12",
			wantID:     "12",
			wantTitle:  "Interiors",
			wantDate:   "2026-03-05",
		},
		{
			name:       "title without house suffix",
			html:       `<html><head><title>Modern Pictures</title></head><body></body></html>`,
			listingURL: "https://auctions.tennants.co.uk/auction/details/pics",
			wantID:     "",
			wantTitle:  "Modern Pictures",
			wantDate:   "2025",
		},
		{
			name:       "empty page falls back to defaults",
			html:       `<html><body></body></html>`,
			listingURL: "https://auctions.tennants.co.uk/",
			wantID:     "",
			wantTitle:  "",
			wantDate:   "2025",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := newTestExtractor()
			ctx := e.AuctionContext(mustDoc(t, tt.html), tt.listingURL)
			assert.Equal(t, tt.wantID, ctx.ID)
			assert.Equal(t, tt.wantTitle, ctx.Title)
			assert.Equal(t, tt.wantDate, ctx.Date)
		})
	}
}
