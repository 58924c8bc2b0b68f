// Package audit tracks per-field fill-rate across a harvest run and reports
// fields falling below the completeness threshold. It is a diagnostic only:
// a weak field never blocks persistence or stops the run.
package audit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gavelworks/auction-cli/internal/model"
)

// FieldClass groups schema fields by extraction expectation.
type FieldClass int

const (
	// Required fields have full fallback chains; emptiness is a weakness.
	Required FieldClass = iota
	// Derived fields are best-effort enrichment; tracked but held to the
	// same threshold.
	Derived
	// PostSale fields are expected empty before the sale and never flagged.
	PostSale
)

// DefaultThreshold is the fill-rate (percent) below which a field is flagged.
const DefaultThreshold = 95.0

type fieldSpec struct {
	name  string
	class FieldClass
	value func(*model.LotRecord) string
}

// auditedFields lists the tracked schema fields in reporting order.
var auditedFields = []fieldSpec{
	{"auction_id", Required, func(r *model.LotRecord) string { return r.AuctionID }},
	{"lot_number", Required, func(r *model.LotRecord) string { return r.LotNumber }},
	{"lot_title", Required, func(r *model.LotRecord) string { return r.LotTitle }},
	{"lot_description", Required, func(r *model.LotRecord) string { return r.LotDescription }},
	{"lot_estimate", Required, func(r *model.LotRecord) string { return r.LotEstimate }},
	{"buyer_premium", Required, func(r *model.LotRecord) string { return r.BuyerPremium }},
	{"image_url", Required, func(r *model.LotRecord) string { return r.ImageURL }},
	{"image_high_res_url", Required, func(r *model.LotRecord) string { return r.ImageHighResURL }},
	{"condition_report", Required, func(r *model.LotRecord) string { return r.ConditionReport }},
	{"dimensions", Derived, func(r *model.LotRecord) string { return r.Dimensions }},
	{"materials", Derived, func(r *model.LotRecord) string { return r.Materials }},
	{"period_dating", Derived, func(r *model.LotRecord) string { return r.PeriodDating }},
	{"artist_maker", Derived, func(r *model.LotRecord) string { return r.ArtistMaker }},
	{"origin_country", Derived, func(r *model.LotRecord) string { return r.OriginCountry }},
	{"lot_category", Derived, func(r *model.LotRecord) string { return r.LotCategory }},
	{"additional_images_count", Derived, func(r *model.LotRecord) string {
		if r.AdditionalImagesCount == 0 {
			return ""
		}
		return strconv.Itoa(r.AdditionalImagesCount)
	}},
	{"lot_sold_price", PostSale, func(r *model.LotRecord) string { return r.LotSoldPrice }},
	{"lot_status", PostSale, func(r *model.LotRecord) string { return r.LotStatus }},
}

// Stats counts fill outcomes for one field.
type Stats struct {
	Filled int
	Empty  int
}

// Auditor accumulates field statistics for one pipeline run. It is touched
// only from the sequential record loop; no locking needed.
type Auditor struct {
	threshold float64
	stats     map[string]*Stats
	total     int
}

// New creates an Auditor with the given flag threshold (percent). Zero or
// negative means DefaultThreshold.
func New(threshold float64) *Auditor {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Auditor{
		threshold: threshold,
		stats:     make(map[string]*Stats, len(auditedFields)),
	}
}

// Observe classifies every audited field of a persisted record as filled or
// empty and updates the run-wide counters. It returns true when all required
// fields are filled.
func (a *Auditor) Observe(rec *model.LotRecord) bool {
	a.total++
	allRequired := true

	for _, f := range auditedFields {
		st, ok := a.stats[f.name]
		if !ok {
			st = &Stats{}
			a.stats[f.name] = st
		}
		if strings.TrimSpace(f.value(rec)) != "" {
			st.Filled++
		} else {
			st.Empty++
			if f.class == Required {
				allRequired = false
			}
		}
	}

	return allRequired
}

// Total returns the number of records observed.
func (a *Auditor) Total() int {
	return a.total
}

// FieldRate is one line of the run-end report.
type FieldRate struct {
	Field   string
	Class   FieldClass
	Filled  int
	Total   int
	Rate    float64 // percent
	Flagged bool
}

// Report is the run-end completeness summary.
type Report struct {
	TotalRecords int
	Fields       []FieldRate
	LowFill      []string
}

// Report computes fill-rates over everything observed so far and flags any
// non-post-sale field under the threshold.
func (a *Auditor) Report() Report {
	rep := Report{TotalRecords: a.total}

	for _, f := range auditedFields {
		st := a.stats[f.name]
		if st == nil {
			st = &Stats{}
		}
		var rate float64
		if a.total > 0 {
			rate = float64(st.Filled) / float64(a.total) * 100
		}
		flagged := f.class != PostSale && a.total > 0 && rate < a.threshold
		rep.Fields = append(rep.Fields, FieldRate{
			Field:   f.name,
			Class:   f.class,
			Filled:  st.Filled,
			Total:   a.total,
			Rate:    rate,
			Flagged: flagged,
		})
		if flagged {
			rep.LowFill = append(rep.LowFill, f.name)
		}
	}

	return rep
}

// String renders the report as a fixed-width table.
func (r Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Field fill-rate over %d records:\n", r.TotalRecords)
	for _, f := range r.Fields {
		mark := " "
		if f.Flagged {
			mark = "!"
		}
		fmt.Fprintf(&b, "%s %-24s %4d/%-4d %5.1f%%\n", mark, f.Field, f.Filled, f.Total, f.Rate)
	}
	if len(r.LowFill) > 0 {
		fmt.Fprintf(&b, "fields below threshold: %s\n", strings.Join(r.LowFill, ", "))
	} else {
		b.WriteString("all tracked fields above threshold\n")
	}
	return b.String()
}
