// Package model defines the record types shared across the harvest pipeline.
package model

import "fmt"

// AuctionContext is the per-run auction identity. It is built once when the
// listing page is first fetched (or from supplied defaults) and never mutated.
type AuctionContext struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Date  string `json:"date"` // ISO-8601 date, or a bare year when that is all the page yields
}

// LotRecord is one row of the output store. The csv tags define the fixed
// 25-column schema; field order here is the column order.
type LotRecord struct {
	Timestamp             string `csv:"timestamp"`
	AuctionID             string `csv:"auction_id"`
	AuctionTitle          string `csv:"auction_title"`
	AuctionDate           string `csv:"auction_date"`
	LotSystemID           string `csv:"lot_system_id"`
	LotNumber             string `csv:"lot_number"`
	LotTitle              string `csv:"lot_title"`
	LotDescription        string `csv:"lot_description"`
	LotURL                string `csv:"lot_url"`
	ImageURL              string `csv:"image_url"`
	ImageHighResURL       string `csv:"image_high_res_url"`
	AdditionalImagesCount int    `csv:"additional_images_count"`
	AdditionalImagesURLs  string `csv:"additional_images_urls"`
	LotEstimate           string `csv:"lot_estimate"`
	LotSoldPrice          string `csv:"lot_sold_price"`
	LotStatus             string `csv:"lot_status"`
	BuyerPremium          string `csv:"buyer_premium"`
	ConditionReport       string `csv:"condition_report"`
	Dimensions            string `csv:"dimensions"`
	Materials             string `csv:"materials"`
	PeriodDating          string `csv:"period_dating"`
	ArtistMaker           string `csv:"artist_maker"`
	OriginCountry         string `csv:"origin_country"`
	LotCategory           string `csv:"lot_category"`
	FullLotInfo           string `csv:"full_lot_info"`
}

// ComposeFullInfo builds the full-text summary column from the other fields.
// Call it last, after extraction and enrichment have populated the record.
func (r *LotRecord) ComposeFullInfo() {
	number := r.LotNumber
	if number == "" {
		number = "N/A"
	}
	title := r.AuctionTitle
	if title == "" {
		title = "Unknown Auction"
	}
	date := r.AuctionDate
	if date == "" {
		date = "Unknown Date"
	}

	info := fmt.Sprintf("Lot %s (%s, %s)\n", number, title, date)
	info += r.LotDescription
	if r.LotEstimate != "" {
		info += "\nEstimate: " + r.LotEstimate
	}
	if r.Dimensions != "" {
		info += "\nDimensions: " + r.Dimensions
	}
	if r.Materials != "" {
		info += "\nMaterials: " + r.Materials
	}
	if r.PeriodDating != "" {
		info += "\nPeriod: " + r.PeriodDating
	}
	r.FullLotInfo = info
}

// ImageAsset is one binary asset referenced by a record. It lives for a single
// retrieval batch; the file on disk is the durable artifact.
type ImageAsset struct {
	URL     string
	Path    string
	Primary bool
	Index   int
}
