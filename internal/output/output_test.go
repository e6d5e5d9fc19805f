package output

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/harrison/fsearch/internal/models"
)

func sampleReport() Report {
	mod := time.Date(2024, 3, 9, 14, 30, 0, 0, time.UTC)
	return Report{
		Summary: models.SessionSummary{
			ID:              "5f1c7a1e-0000-4000-8000-000000000001",
			Root:            "/srv/data",
			Pattern:         "*.csv",
			Matched:         2,
			Delivered:       2,
			State:           models.StateCancelled,
			CapReached:      true,
			TraversalErrors: 1,
			StartedAt:       mod,
			Duration:        1234 * time.Millisecond,
		},
		Results: []models.MatchResult{
			{Path: "/srv/data/a.csv", Name: "a.csv", Size: 2048, ModifiedAt: mod},
			{Path: "/srv/data/x|y/b.csv", Name: "b.csv", Size: 10, ModifiedAt: mod},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"", FormatText},
		{"TEXT", FormatText},
		{"json", FormatJSON},
		{"yml", FormatYAML},
		{"md", FormatMarkdown},
		{" Markdown ", FormatMarkdown},
		{"html", FormatHTML},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseFormat("pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestJSONExporter(t *testing.T) {
	out, err := (&JSONExporter{Pretty: true}).Export(sampleReport())
	require.NoError(t, err)

	var doc reportDoc
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "cancelled", doc.Session.State)
	assert.Equal(t, int64(1234), doc.Session.DurationMS)
	assert.True(t, doc.Session.CapReached)
	require.Len(t, doc.Results, 2)
	assert.Equal(t, "/srv/data/a.csv", doc.Results[0].Path)
	assert.Equal(t, int64(2048), doc.Results[0].Size)
	assert.NotContains(t, out, `"error"`, "empty error is omitted")
}

func TestJSONExporterEmptyResultsIsArray(t *testing.T) {
	out, err := (&JSONExporter{}).Export(Report{Summary: models.SessionSummary{State: models.StateCompleted}})
	require.NoError(t, err)
	assert.Contains(t, out, `"results":[]`)
}

func TestYAMLExporter(t *testing.T) {
	out, err := (&YAMLExporter{}).Export(sampleReport())
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	session, ok := doc["session"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "*.csv", session["pattern"])
	results, ok := doc["results"].([]any)
	require.True(t, ok)
	assert.Len(t, results, 2)
}

func TestMarkdownExporter(t *testing.T) {
	out, err := (&MarkdownExporter{}).Export(sampleReport())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "# Search Results\n"))
	assert.NotContains(t, out, "**Generated**")
	assert.Contains(t, out, "- **State**: cancelled")
	assert.Contains(t, out, "- **Result cap reached**: yes")
	assert.Contains(t, out, "- **Skipped paths**: 1")
	assert.Contains(t, out, "| /srv/data/a.csv | file | 2.0 KiB | ")
	// Pipes inside paths must not break the table.
	assert.Contains(t, out, `/srv/data/x\|y/b.csv`)
}

func TestMarkdownExporterNoMatches(t *testing.T) {
	out, err := (&MarkdownExporter{}).Export(Report{Summary: models.SessionSummary{State: models.StateCompleted}})
	require.NoError(t, err)
	assert.Contains(t, out, "_No matches._")
	assert.NotContains(t, out, "| Path |")
}

func TestHTMLExporter(t *testing.T) {
	out, err := (&HTMLExporter{}).Export(sampleReport())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, "<h1>Search Results</h1>")
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<td>/srv/data/a.csv</td>")
	assert.True(t, strings.HasSuffix(out, "</html>\n"))
}

func TestTextPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := NewTextPrinter(&buf, false, false)

	require.NoError(t, p.PrintMatch(models.MatchResult{Path: "/r/a.txt"}))
	require.NoError(t, p.PrintMatch(models.MatchResult{Path: "/r/logs", IsDirectory: true}))

	assert.Equal(t, "/r/a.txt\n/r/logs/\n", buf.String())
	assert.Equal(t, 2, p.Count())
}

func TestTextPrinterLong(t *testing.T) {
	var buf bytes.Buffer
	p := NewTextPrinter(&buf, true, false)

	require.NoError(t, p.PrintMatch(models.MatchResult{Path: "/r/big.bin", Size: 5 * 1024 * 1024}))
	line := buf.String()
	assert.Contains(t, line, "5.0 MiB")
	assert.True(t, strings.HasSuffix(line, "/r/big.bin\n"))
}

func TestTextPrinterSummary(t *testing.T) {
	tests := []struct {
		name    string
		summary models.SessionSummary
		want    string
	}{
		{
			name:    "completed",
			summary: models.SessionSummary{Delivered: 3, State: models.StateCompleted, Duration: 12 * time.Millisecond},
			want:    "3 matches in 12ms (completed)\n",
		},
		{
			name:    "single match with cap",
			summary: models.SessionSummary{Delivered: 1, State: models.StateCancelled, CapReached: true},
			want:    "1 match in 0s (cancelled, result cap reached)\n",
		},
		{
			name: "failed with error",
			summary: models.SessionSummary{
				Delivered: 1200, State: models.StateFailed, TraversalErrors: 2, Duration: 2 * time.Second,
				Error: "scheduling error: shutdown timed out",
			},
			want: "1,200 matches in 2s (failed, 2 path(s) skipped)\nerror: scheduling error: shutdown timed out\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, NewTextPrinter(&buf, false, false).PrintSummary(tt.summary))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestTextExporter(t *testing.T) {
	out, err := (&TextExporter{}).Export(sampleReport())
	require.NoError(t, err)
	assert.Equal(t,
		"/srv/data/a.csv\n/srv/data/x|y/b.csv\n2 matches in 1.234s (cancelled, result cap reached, 1 path(s) skipped)\n",
		out)
}

func TestExportToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exports", "results.json")

	require.NoError(t, ExportToFile(context.Background(), sampleReport(), path, FormatJSON))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc reportDoc
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Len(t, doc.Results, 2)
}

func TestExportToFileErrors(t *testing.T) {
	err := ExportToFile(context.Background(), sampleReport(), "", FormatJSON)
	assert.Error(t, err)

	err = ExportToFile(context.Background(), sampleReport(), filepath.Join(t.TempDir(), "x"), Format("pdf"))
	assert.Error(t, err)
}
