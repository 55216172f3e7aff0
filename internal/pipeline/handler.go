package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/couchcryptid/hydrogen-sites/internal/domain"
	"github.com/couchcryptid/hydrogen-sites/internal/report"
)

// ErrMalformedRequest wraps any request payload that cannot be decoded.
var ErrMalformedRequest = errors.New("malformed analysis request")

// RequestHandler turns analysis requests from the request topic into
// rendered report messages.
type RequestHandler struct {
	analyzer *Analyzer
	logger   *slog.Logger
}

// NewRequestHandler creates a RequestHandler backed by analyzer.
func NewRequestHandler(analyzer *Analyzer, logger *slog.Logger) *RequestHandler {
	return &RequestHandler{
		analyzer: analyzer,
		logger:   logger,
	}
}

// Handle decodes one request and renders the requested document. An empty
// format means JSON; unknown views and metrics fall back like everywhere else.
func (h *RequestHandler) Handle(_ context.Context, raw domain.RawMessage) (domain.OutputMessage, error) {
	var req domain.AnalysisRequest
	if err := json.Unmarshal(raw.Value, &req); err != nil {
		return domain.OutputMessage{}, fmt.Errorf("%w: %w", ErrMalformedRequest, err)
	}

	f := report.FormatJSON
	if strings.TrimSpace(req.Format) != "" {
		var err error
		if f, err = report.ParseFormat(req.Format); err != nil {
			return domain.OutputMessage{}, fmt.Errorf("%w: %w", ErrMalformedRequest, err)
		}
	}

	view := domain.ParseView(req.View)
	metric := domain.ParseMetric(req.Metric)

	var buf bytes.Buffer
	doc, err := h.analyzer.Export(&buf, view, metric, f, false)
	if err != nil {
		return domain.OutputMessage{}, err
	}

	key := req.RequestID
	if key == "" {
		key = doc.ID
	}

	h.logger.Debug("analysis request rendered",
		"request_id", key,
		"view", view,
		"metric", metric,
		"format", f,
		"bytes", buf.Len(),
	)

	return domain.OutputMessage{
		Key:   []byte(key),
		Value: buf.Bytes(),
		Headers: map[string]string{
			"view":         string(doc.View),
			"metric":       string(doc.Metric),
			"format":       string(f),
			"generated_at": doc.GeneratedAt.Format(time.RFC3339),
		},
	}, nil
}
