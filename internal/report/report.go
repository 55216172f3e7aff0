// Package report turns a ranking into labelled text sections and table rows.
// It only formats values already computed by the ranking package.
package report

import (
	"fmt"
	"strings"

	"github.com/couchcryptid/hydrogen-sites/internal/domain"
	"github.com/couchcryptid/hydrogen-sites/internal/ranking"
)

// Section titles, in report order.
const (
	SectionScope           = "Scope"
	SectionRanking         = "Ranking"
	SectionSummary         = "Summary"
	SectionRecommendations = "Recommendations"
)

// NoDataLine is the summary shown when the selected view is empty.
const NoDataLine = "No data: the selected view contains no sites."

// Section is one labelled block of report text.
type Section struct {
	Title string   `json:"title"`
	Lines []string `json:"lines"`
}

// Row is one ranked site in tabular form.
type Row struct {
	Rank     int    `json:"rank" parquet:"rank"`
	ID       int    `json:"id" parquet:"id"`
	Name     string `json:"name" parquet:"name"`
	City     string `json:"city" parquet:"city"`
	Type     string `json:"type" parquet:"type"`
	Status   string `json:"status" parquet:"status"`
	Cost     int    `json:"cost" parquet:"cost"`
	Carbon   int    `json:"carbon" parquet:"carbon"`
	Combined int    `json:"combined" parquet:"combined"`
}

// Report is the formatted output of one analysis.
type Report struct {
	View     domain.View   `json:"view"`
	Metric   domain.Metric `json:"metric"`
	Sections []Section     `json:"sections"`
	Rows     []Row         `json:"rows"`
}

// Build formats a ranking of the sites selected by view. The section order is
// fixed: scope, ranking, summary, recommendations. An empty ranking yields
// the scope and a single no-data summary.
func Build(view domain.View, r ranking.Ranking) Report {
	rep := Report{
		View:     view,
		Metric:   r.Metric,
		Sections: []Section{scopeSection(view, r)},
		Rows:     make([]Row, 0, len(r.Sorted)),
	}

	if !r.HasData() {
		rep.Sections = append(rep.Sections, Section{Title: SectionSummary, Lines: []string{NoDataLine}})
		return rep
	}

	for i, s := range r.Sorted {
		rep.Rows = append(rep.Rows, Row{
			Rank:     i + 1,
			ID:       s.ID,
			Name:     s.Name,
			City:     s.City,
			Type:     string(s.Type),
			Status:   s.Status,
			Cost:     s.Cost,
			Carbon:   s.Carbon,
			Combined: s.Combined(),
		})
	}

	rep.Sections = append(rep.Sections,
		rankingSection(r),
		summarySection(r.Metric, r.Stats),
		recommendationSection(r.Stats),
	)
	return rep
}

// Section returns the section with the given title, if present.
func (r Report) Section(title string) (Section, bool) {
	for _, s := range r.Sections {
		if s.Title == title {
			return s, true
		}
	}
	return Section{}, false
}

// Text renders the sections as plain text, one underlined heading per section.
func (r Report) Text() string {
	var b strings.Builder
	for i, s := range r.Sections {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(s.Title)
		b.WriteString("\n")
		b.WriteString(strings.Repeat("-", len(s.Title)))
		b.WriteString("\n")
		for _, line := range s.Lines {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func scopeSection(view domain.View, r ranking.Ranking) Section {
	noun := "sites"
	if len(r.Sorted) == 1 {
		noun = "site"
	}
	return Section{
		Title: SectionScope,
		Lines: []string{
			fmt.Sprintf("View: %s (%d %s)", view.Label(), len(r.Sorted), noun),
			fmt.Sprintf("Ranked by: %s, lowest first", r.Metric.Label()),
		},
	}
}

func rankingSection(r ranking.Ranking) Section {
	lines := make([]string, 0, len(r.Top))
	for i, s := range r.Top {
		lines = append(lines, fmt.Sprintf("%d. %s, %s | cost %d | carbon %d | combined %d",
			i+1, s.Name, s.City, s.Cost, s.Carbon, s.Combined()))
	}
	return Section{Title: SectionRanking, Lines: lines}
}

func summarySection(metric domain.Metric, st *ranking.Stats) Section {
	lines := []string{
		fmt.Sprintf("Lowest %s: %d (%s)", metric.Label(), st.Min.Value, st.Min.Site.Name),
		fmt.Sprintf("Highest %s: %d (%s)", metric.Label(), st.Max.Value, st.Max.Site.Name),
		fmt.Sprintf("Average cost index: %.1f", st.AvgCost),
		fmt.Sprintf("Average carbon index: %.1f", st.AvgCarbon),
	}
	if metric == domain.MetricCombined {
		lines = append(lines, fmt.Sprintf("Average %s: %.1f", metric.Label(), st.AvgMetric))
	}
	return Section{Title: SectionSummary, Lines: lines}
}

func recommendationSection(st *ranking.Stats) Section {
	lines := []string{
		fmt.Sprintf("Least cost site: %s (cost %d)", st.LeastCost.Name, st.LeastCost.Cost),
		fmt.Sprintf("Least carbon site: %s (carbon %d)", st.LeastCarbon.Name, st.LeastCarbon.Carbon),
		fmt.Sprintf("Best cost-carbon balance: %s (combined %d)", st.BestCombined.Name, st.BestCombined.Combined()),
	}
	if note, ok := st.Min.Site.AnalysisNote(); ok {
		lines = append(lines, fmt.Sprintf("Model note for %s: %s", st.Min.Site.Name, note))
	}
	return Section{Title: SectionRecommendations, Lines: lines}
}
