// Package output renders search results for people and for other programs.
//
// Structured formats (json, yaml, markdown, html) are produced by an
// Exporter from a complete Report. The text format is also available as a
// streaming TextPrinter so the CLI can show matches as they are found.
package output

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/harrison/fsearch/internal/filelock"
	"github.com/harrison/fsearch/internal/models"
)

// Format names an output format.
type Format string

// Supported formats
const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// ParseFormat normalizes s. Accepts the aliases "md", "yml" and "txt";
// an empty string means text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("unsupported format: %s (supported: text, json, yaml, markdown, html)", s)
	}
}

// Report is everything an exporter renders: the session outcome and the
// matches delivered to the caller.
type Report struct {
	Summary models.SessionSummary
	Results []models.MatchResult
}

// Exporter converts a Report to its textual representation.
type Exporter interface {
	Export(report Report) (string, error)
}

// NewExporter returns the exporter for format.
func NewExporter(format Format) (Exporter, error) {
	switch format {
	case FormatText:
		return &TextExporter{Long: true}, nil
	case FormatJSON:
		return &JSONExporter{Pretty: true}, nil
	case FormatYAML:
		return &YAMLExporter{}, nil
	case FormatMarkdown:
		return &MarkdownExporter{IncludeTimestamp: true}, nil
	case FormatHTML:
		return &HTMLExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// ExportToString renders report in format.
func ExportToString(report Report, format Format) (string, error) {
	exporter, err := NewExporter(format)
	if err != nil {
		return "", err
	}
	content, err := exporter.Export(report)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}
	return content, nil
}

// ExportToFile renders report and writes it to path atomically while holding
// the path's lock file.
func ExportToFile(ctx context.Context, report Report, path string, format Format) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}
	content, err := ExportToString(report, format)
	if err != nil {
		return err
	}
	if err := filelock.WriteLocked(ctx, path, []byte(content)); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// sessionDoc and resultDoc are the serialized shapes shared by the JSON and
// YAML exporters.
type sessionDoc struct {
	ID              string    `json:"id" yaml:"id"`
	Root            string    `json:"root" yaml:"root"`
	Pattern         string    `json:"pattern" yaml:"pattern"`
	State           string    `json:"state" yaml:"state"`
	Matched         int       `json:"matched" yaml:"matched"`
	Delivered       int       `json:"delivered" yaml:"delivered"`
	CapReached      bool      `json:"cap_reached" yaml:"cap_reached"`
	TraversalErrors int       `json:"traversal_errors" yaml:"traversal_errors"`
	StartedAt       time.Time `json:"started_at" yaml:"started_at"`
	DurationMS      int64     `json:"duration_ms" yaml:"duration_ms"`
	Error           string    `json:"error,omitempty" yaml:"error,omitempty"`
}

type resultDoc struct {
	Path        string    `json:"path" yaml:"path"`
	Name        string    `json:"name" yaml:"name"`
	IsDirectory bool      `json:"is_directory" yaml:"is_directory"`
	Size        int64     `json:"size" yaml:"size"`
	ModifiedAt  time.Time `json:"modified_at" yaml:"modified_at"`
}

type reportDoc struct {
	Session sessionDoc  `json:"session" yaml:"session"`
	Results []resultDoc `json:"results" yaml:"results"`
}

func newReportDoc(r Report) reportDoc {
	s := r.Summary
	doc := reportDoc{
		Session: sessionDoc{
			ID:              s.ID,
			Root:            s.Root,
			Pattern:         s.Pattern,
			State:           s.State.String(),
			Matched:         s.Matched,
			Delivered:       s.Delivered,
			CapReached:      s.CapReached,
			TraversalErrors: s.TraversalErrors,
			StartedAt:       s.StartedAt,
			DurationMS:      s.Duration.Milliseconds(),
			Error:           s.Error,
		},
		Results: make([]resultDoc, 0, len(r.Results)),
	}
	for _, m := range r.Results {
		doc.Results = append(doc.Results, resultDoc{
			Path:        m.Path,
			Name:        m.Name,
			IsDirectory: m.IsDirectory,
			Size:        m.Size,
			ModifiedAt:  m.ModifiedAt,
		})
	}
	return doc
}
