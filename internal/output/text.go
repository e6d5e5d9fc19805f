package output

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/harrison/fsearch/internal/models"
)

// TextPrinter writes matches one per line as they arrive.
// It is safe for concurrent use.
type TextPrinter struct {
	w     io.Writer
	long  bool
	color bool
	mu    sync.Mutex
	count int
}

// NewTextPrinter creates a printer. With long set, each line carries size
// and modification time before the path. colorize enables ANSI colors.
func NewTextPrinter(w io.Writer, long, colorize bool) *TextPrinter {
	return &TextPrinter{w: w, long: long, color: colorize}
}

// PrintMatch writes a single match line.
func (p *TextPrinter) PrintMatch(m models.MatchResult) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.count++
	_, err := io.WriteString(p.w, p.formatMatch(m))
	return err
}

// Count returns how many matches were printed.
func (p *TextPrinter) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.count
}

func (p *TextPrinter) formatMatch(m models.MatchResult) string {
	path := m.Path
	if m.IsDirectory {
		path += "/"
		if p.color {
			path = color.New(color.FgBlue, color.Bold).Sprint(path)
		}
	}
	if !p.long {
		return path + "\n"
	}

	size := humanize.IBytes(uint64(m.Size))
	if m.IsDirectory {
		size = "-"
	}
	return fmt.Sprintf("%9s  %s  %s\n", size, formatModTime(m.ModifiedAt), path)
}

// PrintSummary writes the closing status line for a session.
// Format: "<n> matches in <duration> (<state>[, notes])"
func (p *TextPrinter) PrintSummary(s models.SessionSummary) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, err := io.WriteString(p.w, formatSummaryLine(s, p.color))
	return err
}

func formatSummaryLine(s models.SessionSummary, colorize bool) string {
	noun := "matches"
	if s.Delivered == 1 {
		noun = "match"
	}

	state := s.State.String()
	if colorize {
		switch s.State {
		case models.StateCompleted:
			state = color.GreenString(state)
		case models.StateCancelled:
			state = color.YellowString(state)
		case models.StateFailed:
			state = color.RedString(state)
		}
	}

	notes := []string{state}
	if s.CapReached {
		notes = append(notes, "result cap reached")
	}
	if s.TraversalErrors > 0 {
		notes = append(notes, fmt.Sprintf("%d path(s) skipped", s.TraversalErrors))
	}

	line := fmt.Sprintf("%s %s in %s (%s)\n",
		humanize.Comma(int64(s.Delivered)), noun, s.Duration.Round(time.Millisecond), strings.Join(notes, ", "))
	if s.Error != "" {
		line += "error: " + s.Error + "\n"
	}
	return line
}

// TextExporter renders a complete report as plain text
type TextExporter struct {
	Long bool // Include size and modification time
}

// Export converts the report to plain text, one match per line followed by
// the summary line.
func (te *TextExporter) Export(report Report) (string, error) {
	var sb strings.Builder
	p := NewTextPrinter(&sb, te.Long, false)
	for _, m := range report.Results {
		if err := p.PrintMatch(m); err != nil {
			return "", err
		}
	}
	summary := report.Summary
	summary.Delivered = len(report.Results)
	if err := p.PrintSummary(summary); err != nil {
		return "", err
	}
	return sb.String(), nil
}
