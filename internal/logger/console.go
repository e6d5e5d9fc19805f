// Package logger provides logging implementations for fsearch sessions.
//
// The logger package offers leveled logging of session lifecycle events and
// traversal problems. Implementations are thread-safe and support various
// output destinations (console, file, or several at once).
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/harrison/fsearch/internal/models"
)

// Log level constants for filtering
const (
	levelTrace int = 0
	levelDebug int = 1
	levelInfo  int = 2
	levelWarn  int = 3
	levelError int = 4
)

// ConsoleLogger logs session progress to a writer with timestamps and thread safety.
// All output is prefixed with [HH:MM:SS] timestamps.
// It supports log level filtering to control message verbosity.
// Color output is automatically enabled for terminal output (os.Stdout/os.Stderr).
type ConsoleLogger struct {
	writer      io.Writer
	logLevel    string
	mutex       sync.Mutex
	colorOutput bool
}

// NewConsoleLogger creates a ConsoleLogger that writes to the provided io.Writer.
// If writer is nil, messages are silently discarded.
// Valid levels: trace, debug, info, warn, error (case-insensitive).
// If logLevel is empty or invalid, defaults to "info".
func NewConsoleLogger(writer io.Writer, logLevel string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:      writer,
		logLevel:    normalizeLogLevel(logLevel),
		colorOutput: isTerminal(writer),
	}
}

// isTerminal checks if the writer is a terminal that supports colors.
// NO_COLOR (honored by fatih/color) disables colors even on a TTY.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil {
		return false
	}
	if f != os.Stdout && f != os.Stderr {
		return false
	}
	return !color.NoColor && isatty.IsTerminal(f.Fd())
}

// normalizeLogLevel converts a log level string to lowercase and validates it.
// Returns "info" as default for empty or invalid levels.
func normalizeLogLevel(level string) string {
	normalized := strings.ToLower(strings.TrimSpace(level))

	switch normalized {
	case "trace", "debug", "info", "warn", "error":
		return normalized
	default:
		return "info"
	}
}

// IsValidLevel reports whether level names one of the supported log levels.
func IsValidLevel(level string) bool {
	l := strings.ToLower(strings.TrimSpace(level))
	return normalizeLogLevel(l) == l
}

// logLevelToInt converts a log level string to its numeric value.
func logLevelToInt(level string) int {
	switch level {
	case "trace":
		return levelTrace
	case "debug":
		return levelDebug
	case "info":
		return levelInfo
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

func (cl *ConsoleLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(cl.logLevel)
}

// LogTrace logs a trace-level message (most verbose).
func (cl *ConsoleLogger) LogTrace(message string) {
	cl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
// Format: "[HH:MM:SS] [DEBUG] <message>"
func (cl *ConsoleLogger) LogDebug(message string) {
	cl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (cl *ConsoleLogger) LogInfo(message string) {
	cl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (cl *ConsoleLogger) LogWarn(message string) {
	cl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (cl *ConsoleLogger) LogError(message string) {
	cl.logWithLevel("ERROR", message)
}

func (cl *ConsoleLogger) logWithLevel(level string, message string) {
	if cl.writer == nil {
		return
	}
	if !cl.shouldLog(strings.ToLower(level)) {
		return
	}

	ts := timestamp()
	var formatted string
	if cl.colorOutput {
		formatted = fmt.Sprintf("[%s] [%s] %s\n", ts, levelColor(level).Sprint(level), message)
	} else {
		formatted = fmt.Sprintf("[%s] [%s] %s\n", ts, level, message)
	}
	cl.write(formatted)
}

func (cl *ConsoleLogger) write(s string) {
	cl.mutex.Lock()
	defer cl.mutex.Unlock()
	cl.writer.Write([]byte(s))
}

func levelColor(level string) *color.Color {
	switch strings.ToUpper(level) {
	case "TRACE":
		return color.New(color.FgHiBlack)
	case "DEBUG":
		return color.New(color.FgCyan)
	case "INFO":
		return color.New(color.FgBlue)
	case "WARN":
		return color.New(color.FgYellow)
	case "ERROR":
		return color.New(color.FgRed)
	default:
		return color.New(color.Reset)
	}
}

// stateColor maps terminal session states to the color used to print them.
func stateColor(state models.SessionState) *color.Color {
	switch state {
	case models.StateCompleted:
		return color.New(color.FgGreen)
	case models.StateCancelled:
		return color.New(color.FgYellow)
	case models.StateFailed:
		return color.New(color.FgRed)
	default:
		return color.New(color.FgCyan)
	}
}

// LogSessionStart logs the start of a search session at INFO level.
// Format: "[HH:MM:SS] Session <id> searching <root> for "<pattern>" (workers: N, max results: M)"
func (cl *ConsoleLogger) LogSessionStart(id string, req models.SearchRequest) {
	if cl.writer == nil || !cl.shouldLog("info") {
		return
	}

	pattern := fmt.Sprintf("%q", req.Pattern)
	if cl.colorOutput {
		pattern = color.New(color.Bold).Sprint(pattern)
	}
	cl.write(fmt.Sprintf("[%s] Session %s searching %s for %s (%s)\n",
		timestamp(), shortID(id), req.Root, pattern, describeOptions(req.Options)))
}

// LogSessionComplete logs the terminal state of a session at INFO level.
// Format: "[HH:MM:SS] Session <id> <state>: N matches in <duration>[, ...]"
func (cl *ConsoleLogger) LogSessionComplete(summary models.SessionSummary) {
	if cl.writer == nil || !cl.shouldLog("info") {
		return
	}

	state := summary.State.String()
	if cl.colorOutput {
		state = stateColor(summary.State).Sprint(state)
	}
	cl.write(fmt.Sprintf("[%s] Session %s %s: %s\n",
		timestamp(), shortID(summary.ID), state, describeOutcome(summary)))

	if summary.Error != "" {
		cl.logWithLevel("ERROR", summary.Error)
	}
}

// LogTraversalError logs a skipped directory or file at WARN level.
func (cl *ConsoleLogger) LogTraversalError(err error) {
	if err == nil {
		return
	}
	cl.logWithLevel("WARN", fmt.Sprintf("skipped: %v", err))
}

// describeOptions renders the tuning part of a session start line.
func describeOptions(o models.Options) string {
	limit := "unlimited"
	if o.MaxResults > 0 {
		limit = fmt.Sprintf("%d", o.MaxResults)
	}
	parts := []string{
		fmt.Sprintf("workers: %d", o.MaxWorkers),
		fmt.Sprintf("max results: %s", limit),
	}
	if o.MaxDirsPerSecond > 0 {
		parts = append(parts, fmt.Sprintf("throttle: %.0f dirs/s", o.MaxDirsPerSecond))
	}
	if o.IncludeDirectories {
		parts = append(parts, "including directories")
	}
	return strings.Join(parts, ", ")
}

// describeOutcome renders the counters of a session summary.
func describeOutcome(s models.SessionSummary) string {
	noun := "matches"
	if s.Matched == 1 {
		noun = "match"
	}
	out := fmt.Sprintf("%d %s in %s", s.Matched, noun, formatDuration(s.Duration))
	if s.CapReached {
		out += ", result cap reached"
	}
	if s.TraversalErrors > 0 {
		out += fmt.Sprintf(", %d path(s) skipped", s.TraversalErrors)
	}
	return out
}

// shortID returns the first block of a UUID for compact log lines.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}

// timestamp returns the current time formatted as "15:04:05" (HH:MM:SS).
func timestamp() string {
	return time.Now().Format("15:04:05")
}

// formatDuration converts a time.Duration to a human-readable string.
// Examples: "850ms", "5s", "1m30s", "2h15m"
func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Hour:
		hours := d / time.Hour
		remainder := d % time.Hour
		if remainder == 0 {
			return fmt.Sprintf("%dh", hours)
		}
		minutes := remainder / time.Minute
		remainder = remainder % time.Minute
		if remainder == 0 {
			return fmt.Sprintf("%dh%dm", hours, minutes)
		}
		seconds := remainder / time.Second
		return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
	case d >= time.Minute:
		minutes := d / time.Minute
		remainder := d % time.Minute
		if remainder == 0 {
			return fmt.Sprintf("%dm", minutes)
		}
		seconds := remainder / time.Second
		return fmt.Sprintf("%dm%ds", minutes, seconds)
	case d >= time.Second:
		return fmt.Sprintf("%ds", int64(d.Seconds()))
	default:
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
}
