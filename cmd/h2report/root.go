package main

import (
	"errors"
	"log/slog"

	"github.com/couchcryptid/hydrogen-sites/internal/domain"
	"github.com/couchcryptid/hydrogen-sites/internal/observability"
	"github.com/couchcryptid/hydrogen-sites/internal/pipeline"
	"github.com/couchcryptid/hydrogen-sites/internal/ranking"
	"github.com/couchcryptid/hydrogen-sites/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// options are the persistent flags shared by every subcommand.
type options struct {
	view      string
	metric    string
	top       int
	sitesFile string
	logLevel  string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:          "h2report",
		Short:        "Rank green-hydrogen sites and render analysis reports",
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if opts.top < 1 {
				return errors.New("--top must be at least 1")
			}
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.view, "view", string(domain.ViewAll), "site view: existing, predictions or all")
	pf.StringVar(&opts.metric, "metric", string(domain.MetricCombined), "ranking metric: cost, carbon or combined")
	pf.IntVar(&opts.top, "top", ranking.DefaultTopN, "number of sites in the ranking shortlist")
	pf.StringVar(&opts.sitesFile, "sites-file", "", "YAML dataset to load instead of the bundled one")
	pf.StringVar(&opts.logLevel, "log-level", "warn", "log level written to stderr")

	root.AddCommand(reportCmd(opts))
	root.AddCommand(sitesCmd(opts))
	root.AddCommand(exportCmd(opts))
	root.AddCommand(validateCmd(opts))

	return root
}

func (o *options) selection() (domain.View, domain.Metric) {
	return domain.ParseView(o.view), domain.ParseMetric(o.metric)
}

func (o *options) logger(cmd *cobra.Command) *slog.Logger {
	return observability.NewLoggerTo(cmd.ErrOrStderr(), o.logLevel, "text")
}

func (o *options) loadStore() (*store.Store, error) {
	return store.Load(o.sitesFile)
}

// analyzer loads the dataset and wraps it for one CLI invocation. Metrics go
// to a private registry since nothing scrapes a one-shot process.
func (o *options) analyzer(cmd *cobra.Command) (*pipeline.Analyzer, error) {
	s, err := o.loadStore()
	if err != nil {
		return nil, err
	}
	metrics := observability.NewMetricsWith(prometheus.NewRegistry())
	return pipeline.NewAnalyzer(s, o.top, o.logger(cmd), metrics), nil
}
