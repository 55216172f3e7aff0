package domain

import (
	"context"
	"time"
)

// AnalysisRequest is the JSON payload read from the request topic.
type AnalysisRequest struct {
	RequestID string `json:"request_id"`
	View      string `json:"view"`
	Metric    string `json:"metric"`
	Format    string `json:"format,omitempty"`
}

// RawMessage represents an unprocessed message from the request topic.
type RawMessage struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// OutputMessage is a rendered report destined for the report topic.
type OutputMessage struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}
