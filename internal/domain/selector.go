package domain

import "strings"

// View names a subset of the record store.
type View string

const (
	ViewExisting    View = "existing"
	ViewPredictions View = "predictions"
	ViewAll         View = "all"
)

// Views lists every view in display order.
var Views = []View{ViewExisting, ViewPredictions, ViewAll}

// ParseView maps a user-supplied view identifier to a View.
// "plants" and "prediction" are accepted as aliases. Anything unrecognized,
// including the empty string, selects ViewAll.
func ParseView(s string) View {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "existing", "plants":
		return ViewExisting
	case "predictions", "prediction":
		return ViewPredictions
	case "all":
		return ViewAll
	default:
		return ViewAll
	}
}

// Label is the human-readable name used in report headers.
func (v View) Label() string {
	switch v {
	case ViewExisting:
		return "Existing plants"
	case ViewPredictions:
		return "Predicted optimal sites"
	default:
		return "All sites"
	}
}

// Metric selects the value sites are ranked by. Lower is better for all of them.
type Metric string

const (
	MetricCost     Metric = "cost"
	MetricCarbon   Metric = "carbon"
	MetricCombined Metric = "combined"
)

// Metrics lists every metric in display order.
var Metrics = []Metric{MetricCost, MetricCarbon, MetricCombined}

// ParseMetric maps a user-supplied metric selector to a Metric. Anything
// unrecognized selects MetricCombined.
func ParseMetric(s string) Metric {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cost":
		return MetricCost
	case "carbon":
		return MetricCarbon
	case "combined":
		return MetricCombined
	default:
		return MetricCombined
	}
}

// Value extracts the metric value from a site.
func (m Metric) Value(s Site) int {
	switch m {
	case MetricCost:
		return s.Cost
	case MetricCarbon:
		return s.Carbon
	default:
		return s.Combined()
	}
}

// Label is the human-readable metric name used in reports.
func (m Metric) Label() string {
	switch m {
	case MetricCost:
		return "cost index"
	case MetricCarbon:
		return "carbon index"
	default:
		return "combined score (cost + carbon)"
	}
}
