package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/couchcryptid/hydrogen-sites/internal/domain"
	"github.com/couchcryptid/hydrogen-sites/internal/observability"
	"github.com/couchcryptid/hydrogen-sites/internal/ranking"
	"github.com/couchcryptid/hydrogen-sites/internal/report"
	"github.com/couchcryptid/hydrogen-sites/internal/store"
)

// Analysis is the outcome of one select-rank-format pass.
type Analysis struct {
	View    domain.View
	Metric  domain.Metric
	Ranking ranking.Ranking
	Report  report.Report
}

// Analyzer runs analyses over a read-only site store. It holds no per-request
// state and is safe for concurrent use.
type Analyzer struct {
	store   *store.Store
	topN    int
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewAnalyzer creates an Analyzer. A topN of zero or less uses ranking.DefaultTopN.
func NewAnalyzer(s *store.Store, topN int, logger *slog.Logger, metrics *observability.Metrics) *Analyzer {
	if topN <= 0 {
		topN = ranking.DefaultTopN
	}
	return &Analyzer{
		store:   s,
		topN:    topN,
		logger:  logger,
		metrics: metrics,
	}
}

// Analyze selects the view, ranks it by metric and formats the report.
func (a *Analyzer) Analyze(view domain.View, metric domain.Metric) Analysis {
	start := time.Now()

	sites := a.store.Select(view)
	r := ranking.Rank(sites, metric, a.topN)
	rep := report.Build(view, r)

	a.metrics.Analyses.WithLabelValues(string(view), string(r.Metric)).Inc()
	a.metrics.AnalysisDuration.Observe(time.Since(start).Seconds())
	if !r.HasData() {
		a.metrics.EmptyAnalyses.Inc()
		a.logger.Warn("analysis over empty view", "view", view, "metric", metric)
	} else {
		a.logger.Debug("analysis complete", "view", view, "metric", metric, "count", len(sites))
	}

	return Analysis{View: view, Metric: r.Metric, Ranking: r, Report: rep}
}

// Export runs an analysis, stamps it as a document and encodes it to w.
func (a *Analyzer) Export(w io.Writer, view domain.View, metric domain.Metric, f report.Format, compress bool) (report.Document, error) {
	doc := report.NewDocument(a.Analyze(view, metric).Report)
	if err := report.Export(w, doc, f, compress); err != nil {
		return report.Document{}, fmt.Errorf("export %s report: %w", f, err)
	}
	a.metrics.Exports.WithLabelValues(string(f)).Inc()
	return doc, nil
}

// Sites returns the records selected by view, in store order.
func (a *Analyzer) Sites(view domain.View) []domain.Site {
	return a.store.Select(view)
}

// Site looks up a single record by id.
func (a *Analyzer) Site(id int) (domain.Site, bool) {
	return a.store.Site(id)
}

// EnergyMix returns the static energy mix shipped with the dataset.
func (a *Analyzer) EnergyMix() []domain.EnergyShare {
	return a.store.EnergyMix()
}

// CheckReadiness returns nil once the store holds at least one site.
func (a *Analyzer) CheckReadiness(_ context.Context) error {
	if a.store.Len() == 0 {
		return errors.New("site store is empty")
	}
	return nil
}
