package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/hydrogen-sites/internal/domain"
	"github.com/couchcryptid/hydrogen-sites/internal/observability"
)

// BatchExtractor reads up to batchSize raw requests from the source.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawMessage, error)
}

// Handler renders one raw request into an output message.
type Handler interface {
	Handle(ctx context.Context, raw domain.RawMessage) (domain.OutputMessage, error)
}

// BatchLoader writes multiple output messages to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, msgs []domain.OutputMessage) error
}

// Pipeline runs the consume-render-publish loop for analysis requests.
type Pipeline struct {
	extractor BatchExtractor
	handler   Handler
	loader    BatchLoader
	logger    *slog.Logger
	metrics   *observability.Metrics
	batchSize int
}

// New creates a Pipeline with the given stages and observability.
func New(e BatchExtractor, h Handler, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Pipeline {
	return &Pipeline{
		extractor: e,
		handler:   h,
		loader:    l,
		logger:    logger,
		metrics:   metrics,
		batchSize: batchSize,
	}
}

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// Run consumes request batches until the context is cancelled. A batch is
// acknowledged only after every rendered report in it has been published;
// requests that cannot be rendered are acknowledged with the rest of their
// batch, never ahead of it.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	retry := newRetrier(initialBackoff, maxBackoff)

	for ctx.Err() == nil {
		batch, err := p.extractor.ExtractBatch(ctx, p.batchSize)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			p.logger.Error("extract batch failed", "error", err)
			if !retry.wait(ctx) {
				break
			}
			continue
		}
		retry.reset()
		if len(batch) == 0 {
			continue
		}

		p.metrics.RequestsConsumed.Add(float64(len(batch)))
		p.metrics.BatchSize.Observe(float64(len(batch)))

		reports := p.render(ctx, batch)
		if !p.publish(ctx, reports, retry) {
			break
		}
		p.acknowledge(ctx, batch)
	}

	p.logger.Info("pipeline stopping", "reason", ctx.Err())
	return nil
}

// render turns each request into a report. Failed requests are logged and
// counted; they are acknowledged later with the batch.
func (p *Pipeline) render(ctx context.Context, batch []domain.RawMessage) []domain.OutputMessage {
	reports := make([]domain.OutputMessage, 0, len(batch))
	for _, raw := range batch {
		out, err := p.handler.Handle(ctx, raw)
		if err != nil {
			p.logger.Warn("analysis request failed, skipping message",
				"error", err,
				"topic", raw.Topic,
				"partition", raw.Partition,
				"offset", raw.Offset,
			)
			p.metrics.RequestErrors.Inc()
			continue
		}
		reports = append(reports, out)
	}
	return reports
}

// publish writes reports, retrying the same slice under backoff until it
// succeeds. Returns false if the context ended first.
func (p *Pipeline) publish(ctx context.Context, reports []domain.OutputMessage, retry *retrier) bool {
	if len(reports) == 0 {
		return true
	}
	for {
		err := p.loader.LoadBatch(ctx, reports)
		if err == nil {
			p.metrics.ReportsProduced.Add(float64(len(reports)))
			retry.reset()
			return true
		}
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("publish reports failed, retrying", "error", err, "batch_size", len(reports), "backoff", retry.current)
		if !retry.wait(ctx) {
			return false
		}
	}
}

// acknowledge commits every message of a fully handled batch in fetch order.
func (p *Pipeline) acknowledge(ctx context.Context, batch []domain.RawMessage) {
	for _, raw := range batch {
		if raw.Commit == nil {
			continue
		}
		if err := raw.Commit(ctx); err != nil {
			p.logger.Warn("commit offset failed", "error", err,
				"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
		}
	}
}

// retrier is an exponential backoff that doubles up to a ceiling.
type retrier struct {
	initial, ceiling, current time.Duration
}

func newRetrier(initial, ceiling time.Duration) *retrier {
	return &retrier{initial: initial, ceiling: ceiling, current: initial}
}

func (r *retrier) reset() { r.current = r.initial }

// wait sleeps for the current delay and then doubles it. Returns false if
// the context ends first.
func (r *retrier) wait(ctx context.Context) bool {
	timer := time.NewTimer(r.current)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
	}
	r.current = min(r.current*2, r.ceiling)
	return true
}
