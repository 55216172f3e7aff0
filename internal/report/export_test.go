package report_test

import (
	"bytes"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/couchcryptid/hydrogen-sites/internal/domain"
	"github.com/couchcryptid/hydrogen-sites/internal/ranking"
	"github.com/couchcryptid/hydrogen-sites/internal/report"
	"github.com/couchcryptid/hydrogen-sites/internal/store"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/klauspost/pgzip"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, time.March, 2, 9, 30, 0, 0, time.UTC)

func freezeClock(t *testing.T) {
	t.Helper()
	domain.SetClock(clockwork.NewFakeClockAt(fixedNow))
	t.Cleanup(func() { domain.SetClock(nil) })
}

func bundledDocument(t *testing.T) report.Document {
	t.Helper()
	freezeClock(t)
	sites := store.Default().Select(domain.ViewAll)
	rep := report.Build(domain.ViewAll, ranking.Rank(sites, domain.MetricCombined, 0))
	return report.NewDocument(rep)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected report.Format
	}{
		{"txt", report.FormatText},
		{"TEXT", report.FormatText},
		{"json", report.FormatJSON},
		{" parquet ", report.FormatParquet},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			f, err := report.ParseFormat(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, f)
		})
	}

	_, err := report.ParseFormat("pdf")
	require.ErrorIs(t, err, report.ErrUnknownFormat)
	_, err = report.ParseFormat("")
	require.ErrorIs(t, err, report.ErrUnknownFormat)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "Hydrogen_Analysis_Report.txt", report.FileName(report.FormatText, false))
	assert.Equal(t, "Hydrogen_Analysis_Report.parquet.gz", report.FileName(report.FormatParquet, true))
}

func TestNewDocument(t *testing.T) {
	doc := bundledDocument(t)

	_, err := uuid.Parse(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, report.DocumentTitle, doc.Title)
	assert.Equal(t, fixedNow, doc.GeneratedAt)
	assert.Equal(t, domain.ViewAll, doc.View)
	assert.Equal(t, domain.MetricCombined, doc.Metric)
	assert.Len(t, doc.Rows, 23)
}

func TestExport_Text(t *testing.T) {
	doc := bundledDocument(t)

	var buf bytes.Buffer
	require.NoError(t, report.Export(&buf, doc, report.FormatText, false))

	out := buf.String()
	assert.Contains(t, out, "Hydrogen Land Analysis Report\nReport ID: "+doc.ID+"\nGenerated: 2026-03-02T09:30:00Z\n\nScope\n-----\n")
	assert.Contains(t, out, "View: All sites (23 sites)")
	assert.Contains(t, out, "Least cost site: Barmer Solar Hydrogen Zone (cost 62)")
}

func TestExport_JSON(t *testing.T) {
	doc := bundledDocument(t)

	var buf bytes.Buffer
	require.NoError(t, report.Export(&buf, doc, report.FormatJSON, false))

	var decoded report.Document
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	if diff := cmp.Diff(doc, decoded); diff != "" {
		t.Fatalf("json document mismatch (-want +got):\n%s", diff)
	}
}

func TestExport_Parquet(t *testing.T) {
	doc := bundledDocument(t)

	var buf bytes.Buffer
	require.NoError(t, report.Export(&buf, doc, report.FormatParquet, false))

	rows, err := parquet.Read[report.Row](bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	if diff := cmp.Diff(doc.Rows, rows); diff != "" {
		t.Fatalf("parquet rows mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 22, rows[0].ID)
}

func TestExport_ParquetEmpty(t *testing.T) {
	freezeClock(t)
	doc := report.NewDocument(report.Build(domain.ViewAll, ranking.Rank(nil, domain.MetricCost, 0)))

	var buf bytes.Buffer
	require.NoError(t, report.Export(&buf, doc, report.FormatParquet, false))

	rows, err := parquet.Read[report.Row](bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestExport_Gzip(t *testing.T) {
	doc := bundledDocument(t)

	var plain, compressed bytes.Buffer
	require.NoError(t, report.Export(&plain, doc, report.FormatText, false))
	require.NoError(t, report.Export(&compressed, doc, report.FormatText, true))

	gz, err := pgzip.NewReader(&compressed)
	require.NoError(t, err)
	defer gz.Close()
	inflated, err := io.ReadAll(gz)
	require.NoError(t, err)

	assert.Equal(t, plain.String(), string(inflated))
}

func TestExport_UnknownFormat(t *testing.T) {
	doc := bundledDocument(t)

	err := report.Export(io.Discard, doc, report.Format("pdf"), false)
	require.ErrorIs(t, err, report.ErrUnknownFormat)
}
