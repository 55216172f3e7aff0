// Package ranking orders sites by a metric and summarizes them.
//
// Every metric is ranked ascending, best first, because lower cost, lower
// carbon and a lower combined score are all preferable. Sorting is stable:
// sites with equal values keep their input order. Extremal picks (minimum,
// maximum, least cost, least carbon, best combined) keep the first matching
// site in input order.
package ranking

import (
	"cmp"
	"errors"
	"math"
	"slices"

	"github.com/couchcryptid/hydrogen-sites/internal/domain"
)

// DefaultTopN is the size of the presentation shortlist when none is given.
const DefaultTopN = 5

// ErrNoData is returned by Summarize when there is nothing to summarize.
var ErrNoData = errors.New("no data: the selected view contains no sites")

// Extreme pairs a metric value with the site that produced it.
type Extreme struct {
	Value int         `json:"value"`
	Site  domain.Site `json:"site"`
}

// Stats summarizes a non-empty site list for one metric.
// Averages are rounded to one decimal place.
type Stats struct {
	Count     int     `json:"count"`
	Min       Extreme `json:"min"`
	Max       Extreme `json:"max"`
	AvgCost   float64 `json:"avg_cost"`
	AvgCarbon float64 `json:"avg_carbon"`
	AvgMetric float64 `json:"avg_metric"`

	LeastCost    domain.Site `json:"least_cost"`
	LeastCarbon  domain.Site `json:"least_carbon"`
	BestCombined domain.Site `json:"best_combined"`
}

// Ranking is the result of ranking one site list by one metric.
type Ranking struct {
	Metric domain.Metric `json:"metric"`
	Sorted []domain.Site `json:"sorted"`
	Top    []domain.Site `json:"top"`

	// Stats is nil when the input was empty.
	Stats *Stats `json:"stats"`
}

// HasData reports whether the ranking carries summary statistics.
func (r Ranking) HasData() bool {
	return r.Stats != nil
}

// Rank sorts a copy of sites ascending by metric, keeps the first topN as a
// shortlist and summarizes the input. The input slice is not modified. A
// topN of zero or less uses DefaultTopN.
func Rank(sites []domain.Site, metric domain.Metric, topN int) Ranking {
	if topN <= 0 {
		topN = DefaultTopN
	}

	sorted := Sort(sites, metric)
	r := Ranking{
		Metric: metric,
		Sorted: sorted,
		Top:    sorted[:min(topN, len(sorted))],
	}

	if stats, err := Summarize(sites, metric); err == nil {
		r.Stats = &stats
	}
	return r
}

// Sort returns a copy of sites stably ordered ascending by metric.
func Sort(sites []domain.Site, metric domain.Metric) []domain.Site {
	sorted := make([]domain.Site, len(sites))
	copy(sorted, sites)
	slices.SortStableFunc(sorted, func(a, b domain.Site) int {
		return cmp.Compare(metric.Value(a), metric.Value(b))
	})
	return sorted
}

// Summarize computes statistics over sites in input order. It returns
// ErrNoData for an empty list.
func Summarize(sites []domain.Site, metric domain.Metric) (Stats, error) {
	if len(sites) == 0 {
		return Stats{}, ErrNoData
	}

	first := sites[0]
	st := Stats{
		Count:        len(sites),
		Min:          Extreme{Value: metric.Value(first), Site: first},
		Max:          Extreme{Value: metric.Value(first), Site: first},
		LeastCost:    first,
		LeastCarbon:  first,
		BestCombined: first,
	}

	var sumCost, sumCarbon, sumMetric int
	for _, s := range sites {
		v := metric.Value(s)
		sumCost += s.Cost
		sumCarbon += s.Carbon
		sumMetric += v

		// Strict comparisons keep the earliest site on ties.
		if v < st.Min.Value {
			st.Min = Extreme{Value: v, Site: s}
		}
		if v > st.Max.Value {
			st.Max = Extreme{Value: v, Site: s}
		}
		if s.Cost < st.LeastCost.Cost {
			st.LeastCost = s
		}
		if s.Carbon < st.LeastCarbon.Carbon {
			st.LeastCarbon = s
		}
		if s.Combined() < st.BestCombined.Combined() {
			st.BestCombined = s
		}
	}

	n := float64(len(sites))
	st.AvgCost = round1(float64(sumCost) / n)
	st.AvgCarbon = round1(float64(sumCarbon) / n)
	st.AvgMetric = round1(float64(sumMetric) / n)
	return st, nil
}

// round1 rounds to one decimal place, halves away from zero.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
