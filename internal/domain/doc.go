// Package domain models green-hydrogen site records and the selectors used to
// slice and rank them.
//
// # Records
//
// A [Site] is either an existing plant (operational, under construction or
// announced) or a predicted optimal site produced by an offline siting model.
// Both carry two dimensionless indices on a 0-100 scale:
//
//	cost     relative development cost, lower is cheaper
//	carbon   relative lifecycle emissions, lower is cleaner
//	combined cost + carbon, lower is better
//
// Capacity and status are free text because the source data mixes units
// ("20 MW", "5.0 GW Potential", "Demo Scale"). Only some predicted sites carry
// a precomputed analysis note, so [Site.Analysis] is a pointer and
// [Site.AnalysisNote] reports whether it is set.
//
// # Selectors
//
// [View] and [Metric] are closed enums parsed at the boundary. Parsing never
// fails: an unknown view selects [ViewAll] and an unknown metric selects
// [MetricCombined].
package domain
