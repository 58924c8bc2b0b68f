package discovery

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

const baseURL = "https://auctions.tennants.co.uk"

func TestLotLinks(t *testing.T) {
	t.Parallel()

	html := `<html><body>
		<a href="/auction/lot/detail?au=1&lot=100">Lot 1</a>
		<a href="/auction/lot/detail?au=1&lot=101">Lot 2</a>
		<a href="/auction/lot/detail?au=1&lot=100">Lot 1 again</a>
		<a href="https://auctions.tennants.co.uk/auction/lot/detail?au=1&lot=102">Lot 3</a>
		<a href="/auction/lot/gallery">no id</a>
		<a href="/about">unrelated</a>
	</body></html>`

	lots := LotLinks(mustDoc(t, html), baseURL)
	require.Len(t, lots, 3)

	assert.Equal(t, "100", lots[0].ID)
	assert.Equal(t, baseURL+"/auction/lot/detail?au=1&lot=100", lots[0].URL)
	assert.Equal(t, "Lot 1", lots[0].Preview)
	assert.Equal(t, "101", lots[1].ID)
	assert.Equal(t, "102", lots[2].ID)
	assert.Equal(t, baseURL+"/auction/lot/detail?au=1&lot=102", lots[2].URL)
}

func TestLotLinks_Empty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, LotLinks(mustDoc(t, `<html><body><a href="/about">about</a></body></html>`), baseURL))
}

func TestAuctions(t *testing.T) {
	t.Parallel()

	html := `<html><body>
		<div><a href="/auction/5577">Spring Fine Sale</a> <span>18th July 2025</span></div>
		<div><a href="https://auctions.tennants.co.uk/auction/5578">Interiors</a></div>
		<a href="/auction/5579">ok</a>
		<a href="mailto:info@example.com">write to us</a>
		<a href="/contact">Contact page</a>
	</body></html>`

	auctions := Auctions(mustDoc(t, html), baseURL)
	require.Len(t, auctions, 2)

	assert.Equal(t, "5577", auctions[0].ID)
	assert.Equal(t, "Spring Fine Sale", auctions[0].Title)
	assert.Equal(t, "18th July 2025", auctions[0].Date)
	assert.Equal(t, baseURL+"/auction/5577", auctions[0].URL)

	assert.Equal(t, "5578", auctions[1].ID)
	assert.Empty(t, auctions[1].Date)
}

func TestAuctions_DedupeByURL(t *testing.T) {
	t.Parallel()

	html := `<html><body>
		<a href="/auction/1">First Sale</a>
		<a href="/auction/1">First Sale repeated</a>
	</body></html>`

	auctions := Auctions(mustDoc(t, html), baseURL)
	require.Len(t, auctions, 1)
	assert.Equal(t, "First Sale", auctions[0].Title)
}

type scriptedFetcher struct {
	pages map[string]string
	calls []string
}

func (s *scriptedFetcher) FetchPage(_ context.Context, url string) ([]byte, error) {
	s.calls = append(s.calls, url)
	body, ok := s.pages[url]
	if !ok {
		return nil, errors.New("fetch failed")
	}
	return []byte(body), nil
}

func TestFindUpcoming(t *testing.T) {
	t.Parallel()

	landing := []string{
		"https://a.example.com/",
		"https://b.example.com/",
		"https://c.example.com/",
	}
	f := &scriptedFetcher{pages: map[string]string{
		// first fails, second has no auctions, third wins
		"https://b.example.com/": `<html><body><a href="/news">News</a></body></html>`,
		"https://c.example.com/": `<html><body><a href="/auction/9">Autumn Sale</a></body></html>`,
	}}

	auctions, err := FindUpcoming(context.Background(), f, landing)
	require.NoError(t, err)
	require.Len(t, auctions, 1)
	assert.Equal(t, "Autumn Sale", auctions[0].Title)
	assert.Equal(t, landing, f.calls, "candidates tried in order")
}

func TestFindUpcoming_AllFail(t *testing.T) {
	t.Parallel()

	f := &scriptedFetcher{}
	auctions, err := FindUpcoming(context.Background(), f, []string{"https://a.example.com/"})
	require.Error(t, err)
	assert.Empty(t, auctions)
}
