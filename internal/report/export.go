package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/couchcryptid/hydrogen-sites/internal/domain"
	"github.com/google/uuid"
	"github.com/klauspost/pgzip"
	"github.com/parquet-go/parquet-go"
)

// DocumentTitle heads every exported document.
const DocumentTitle = "Hydrogen Land Analysis Report"

// fileStem is the base name of downloaded exports.
const fileStem = "Hydrogen_Analysis_Report"

// ErrUnknownFormat is returned for an export format that is not supported.
var ErrUnknownFormat = errors.New("unknown export format")

// Format is an export encoding.
type Format string

const (
	FormatText    Format = "txt"
	FormatJSON    Format = "json"
	FormatParquet Format = "parquet"
)

// ParseFormat validates an export format name. Unlike views and metrics there
// is no fallback: a caller asking for an unsupported file type gets an error.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "txt", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "parquet":
		return FormatParquet, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// ContentType returns the MIME type of an uncompressed export.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatParquet:
		return "application/vnd.apache.parquet"
	default:
		return "text/plain; charset=utf-8"
	}
}

// FileName returns the download name for an export.
func FileName(f Format, compress bool) string {
	name := fileStem + "." + string(f)
	if compress {
		name += ".gz"
	}
	return name
}

// Document is a report stamped for export.
type Document struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	GeneratedAt time.Time     `json:"generated_at"`
	View        domain.View   `json:"view"`
	Metric      domain.Metric `json:"metric"`
	Sections    []Section     `json:"sections"`
	Rows        []Row         `json:"rows"`
}

// NewDocument stamps a report with a fresh id and the current time.
func NewDocument(rep Report) Document {
	return Document{
		ID:          uuid.NewString(),
		Title:       DocumentTitle,
		GeneratedAt: domain.Clock().Now().UTC(),
		View:        rep.View,
		Metric:      rep.Metric,
		Sections:    rep.Sections,
		Rows:        rep.Rows,
	}
}

// Export encodes doc to w. When compress is set the stream is gzip-compressed.
func Export(w io.Writer, doc Document, f Format, compress bool) error {
	if !compress {
		return encode(w, doc, f)
	}

	gz := pgzip.NewWriter(w)
	if err := encode(gz, doc, f); err != nil {
		_ = gz.Close()
		return err
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("close gzip stream: %w", err)
	}
	return nil
}

func encode(w io.Writer, doc Document, f Format) error {
	switch f {
	case FormatText:
		return writeText(w, doc)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode json document: %w", err)
		}
		return nil
	case FormatParquet:
		return writeParquet(w, doc.Rows)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}
}

func writeText(w io.Writer, doc Document) error {
	rep := Report{Sections: doc.Sections}
	_, err := fmt.Fprintf(w, "%s\nReport ID: %s\nGenerated: %s\n\n%s",
		doc.Title, doc.ID, doc.GeneratedAt.Format(time.RFC3339), rep.Text())
	if err != nil {
		return fmt.Errorf("write text document: %w", err)
	}
	return nil
}

func writeParquet(w io.Writer, rows []Row) error {
	pw := parquet.NewGenericWriter[Row](w)
	if len(rows) > 0 {
		if _, err := pw.Write(rows); err != nil {
			return fmt.Errorf("write parquet rows: %w", err)
		}
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return nil
}
