package audit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gavelworks/auction-cli/internal/model"
)

func fullRecord() *model.LotRecord {
	return &model.LotRecord{
		AuctionID:             "5577",
		LotNumber:             "42",
		LotTitle:              "42",
		LotDescription:        "A 19th century brass clock, 30 cm high, by John Smith, French.",
		LotEstimate:           "£200 - £300",
		BuyerPremium:          "22.00%",
		ImageURL:              "https://cdn.example.com/stock/42-medium.jpg",
		ImageHighResURL:       "https://cdn.example.com/stock/42.jpg",
		ConditionReport:       "Minor wear.",
		Dimensions:            "30 cm",
		Materials:             "Brass",
		PeriodDating:          "19th century",
		ArtistMaker:           "John Smith",
		OriginCountry:         "French",
		LotCategory:           "cat-12",
		AdditionalImagesCount: 2,
	}
}

func fieldRate(t *testing.T, rep Report, name string) FieldRate {
	t.Helper()
	for _, f := range rep.Fields {
		if f.Field == name {
			return f
		}
	}
	t.Fatalf("field %q not in report", name)
	return FieldRate{}
}

func TestObserve(t *testing.T) {
	t.Parallel()

	a := New(0)
	assert.True(t, a.Observe(fullRecord()))

	rec := fullRecord()
	rec.LotEstimate = ""
	assert.False(t, a.Observe(rec), "empty required field fails the record")

	rec = fullRecord()
	rec.Materials = ""
	rec.LotSoldPrice = ""
	assert.True(t, a.Observe(rec), "derived and post-sale fields never fail the record")

	rec = fullRecord()
	rec.ConditionReport = "   "
	assert.False(t, a.Observe(rec), "whitespace counts as empty")

	assert.Equal(t, 4, a.Total())
}

func TestReport_FlagsLowFillFields(t *testing.T) {
	t.Parallel()

	a := New(95.0)
	for i := 0; i < 10; i++ {
		rec := fullRecord()
		if i == 0 {
			rec.LotEstimate = ""
		}
		a.Observe(rec)
	}

	rep := a.Report()
	assert.Equal(t, 10, rep.TotalRecords)

	estimate := fieldRate(t, rep, "lot_estimate")
	assert.Equal(t, 9, estimate.Filled)
	assert.InDelta(t, 90.0, estimate.Rate, 0.001)
	assert.True(t, estimate.Flagged)
	assert.Equal(t, []string{"lot_estimate"}, rep.LowFill)

	number := fieldRate(t, rep, "lot_number")
	assert.InDelta(t, 100.0, number.Rate, 0.001)
	assert.False(t, number.Flagged)
}

func TestReport_PostSaleNeverFlagged(t *testing.T) {
	t.Parallel()

	a := New(95.0)
	for i := 0; i < 5; i++ {
		a.Observe(fullRecord()) // sold price and status stay empty
	}

	rep := a.Report()
	price := fieldRate(t, rep, "lot_sold_price")
	assert.InDelta(t, 0.0, price.Rate, 0.001)
	assert.False(t, price.Flagged)
	status := fieldRate(t, rep, "lot_status")
	assert.False(t, status.Flagged)
	assert.NotContains(t, rep.LowFill, "lot_sold_price")
	assert.NotContains(t, rep.LowFill, "lot_status")
}

func TestReport_AdditionalImagesCountZeroIsEmpty(t *testing.T) {
	t.Parallel()

	a := New(95.0)
	rec := fullRecord()
	rec.AdditionalImagesCount = 0
	a.Observe(rec)

	rep := a.Report()
	count := fieldRate(t, rep, "additional_images_count")
	assert.Equal(t, 0, count.Filled)
}

func TestReport_Empty(t *testing.T) {
	t.Parallel()

	rep := New(95.0).Report()
	assert.Equal(t, 0, rep.TotalRecords)
	assert.Empty(t, rep.LowFill, "no records means nothing to flag")
	for _, f := range rep.Fields {
		assert.False(t, f.Flagged)
	}
}

func TestReportString(t *testing.T) {
	t.Parallel()

	a := New(95.0)
	rec := fullRecord()
	rec.OriginCountry = ""
	a.Observe(rec)

	out := a.Report().String()
	assert.Contains(t, out, "over 1 records")
	assert.Contains(t, out, "! origin_country")
	assert.Contains(t, out, "fields below threshold: ")

	require.True(t, strings.Contains(out, "lot_number"))
}
