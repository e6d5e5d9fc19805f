package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"
)

// JSONExporter exports a report as JSON
type JSONExporter struct {
	Pretty bool // Enable pretty printing with indentation
}

// Export converts the report to a JSON document
func (je *JSONExporter) Export(report Report) (string, error) {
	doc := newReportDoc(report)

	var data []byte
	var err error
	if je.Pretty {
		data, err = json.MarshalIndent(doc, "", "  ")
	} else {
		data, err = json.Marshal(doc)
	}
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data) + "\n", nil
}

// YAMLExporter exports a report as YAML
type YAMLExporter struct{}

// Export converts the report to a YAML document
func (ye *YAMLExporter) Export(report Report) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(newReportDoc(report)); err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return buf.String(), nil
}

// MarkdownExporter exports a report as a Markdown document with a results table
type MarkdownExporter struct {
	IncludeTimestamp bool // Include export timestamp in header
}

// Export converts the report to Markdown
func (me *MarkdownExporter) Export(report Report) (string, error) {
	s := report.Summary
	var sb strings.Builder

	sb.WriteString("# Search Results\n\n")
	if me.IncludeTimestamp {
		sb.WriteString(fmt.Sprintf("**Generated**: %s\n\n", time.Now().Format("2006-01-02 15:04:05")))
	}

	sb.WriteString("## Summary\n\n")
	sb.WriteString(fmt.Sprintf("- **Pattern**: `%s`\n", s.Pattern))
	sb.WriteString(fmt.Sprintf("- **Root**: `%s`\n", s.Root))
	sb.WriteString(fmt.Sprintf("- **State**: %s\n", s.State))
	sb.WriteString(fmt.Sprintf("- **Matches**: %s\n", humanize.Comma(int64(len(report.Results)))))
	if s.CapReached {
		sb.WriteString("- **Result cap reached**: yes\n")
	}
	if s.TraversalErrors > 0 {
		sb.WriteString(fmt.Sprintf("- **Skipped paths**: %d\n", s.TraversalErrors))
	}
	sb.WriteString(fmt.Sprintf("- **Duration**: %s\n", s.Duration.Round(time.Millisecond)))
	if s.Error != "" {
		sb.WriteString(fmt.Sprintf("- **Error**: %s\n", escapeMarkdown(s.Error)))
	}
	sb.WriteString("\n")

	if len(report.Results) == 0 {
		sb.WriteString("_No matches._\n")
		return sb.String(), nil
	}

	sb.WriteString("## Matches\n\n")
	sb.WriteString("| Path | Type | Size | Modified |\n")
	sb.WriteString("|------|------|------|----------|\n")
	for _, m := range report.Results {
		kind, size := "file", humanize.IBytes(uint64(m.Size))
		if m.IsDirectory {
			kind, size = "dir", "-"
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
			escapeMarkdown(m.Path),
			kind,
			size,
			formatModTime(m.ModifiedAt),
		))
	}
	return sb.String(), nil
}

// escapeMarkdown keeps table cells intact for paths containing markup.
func escapeMarkdown(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		"|", `\|`,
		"*", `\*`,
		"_", `\_`,
		"`", "\\`",
		"<", "&lt;",
		">", "&gt;",
		"\n", " ",
	)
	return r.Replace(s)
}

// HTMLExporter renders the Markdown report to a standalone HTML page
type HTMLExporter struct{}

// Export converts the report to HTML via goldmark
func (he *HTMLExporter) Export(report Report) (string, error) {
	md, err := (&MarkdownExporter{IncludeTimestamp: true}).Export(report)
	if err != nil {
		return "", err
	}

	renderer := goldmark.New(goldmark.WithExtensions(extension.Table))
	var body bytes.Buffer
	if err := renderer.Convert([]byte(md), &body); err != nil {
		return "", fmt.Errorf("failed to render HTML: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	sb.WriteString("<title>fsearch results</title>\n</head>\n<body>\n")
	sb.Write(body.Bytes())
	sb.WriteString("</body>\n</html>\n")
	return sb.String(), nil
}

func formatModTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
