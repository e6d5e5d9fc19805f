package logger

import "github.com/harrison/fsearch/internal/models"

// Logger is the full set of events the fsearch loggers understand.
// It is a superset of search.Logger.
type Logger interface {
	LogTrace(message string)
	LogDebug(message string)
	LogInfo(message string)
	LogWarn(message string)
	LogError(message string)
	LogSessionStart(id string, req models.SearchRequest)
	LogSessionComplete(summary models.SessionSummary)
	LogTraversalError(err error)
}

// MultiLogger forwards every event to each of its loggers in order.
type MultiLogger struct {
	loggers []Logger
}

// NewMultiLogger combines loggers, skipping nil entries.
func NewMultiLogger(loggers ...Logger) *MultiLogger {
	m := &MultiLogger{}
	for _, l := range loggers {
		if l != nil {
			m.loggers = append(m.loggers, l)
		}
	}
	return m
}

func (m *MultiLogger) LogTrace(message string) {
	for _, l := range m.loggers {
		l.LogTrace(message)
	}
}

func (m *MultiLogger) LogDebug(message string) {
	for _, l := range m.loggers {
		l.LogDebug(message)
	}
}

func (m *MultiLogger) LogInfo(message string) {
	for _, l := range m.loggers {
		l.LogInfo(message)
	}
}

func (m *MultiLogger) LogWarn(message string) {
	for _, l := range m.loggers {
		l.LogWarn(message)
	}
}

func (m *MultiLogger) LogError(message string) {
	for _, l := range m.loggers {
		l.LogError(message)
	}
}

func (m *MultiLogger) LogSessionStart(id string, req models.SearchRequest) {
	for _, l := range m.loggers {
		l.LogSessionStart(id, req)
	}
}

func (m *MultiLogger) LogSessionComplete(summary models.SessionSummary) {
	for _, l := range m.loggers {
		l.LogSessionComplete(summary)
	}
}

func (m *MultiLogger) LogTraversalError(err error) {
	for _, l := range m.loggers {
		l.LogTraversalError(err)
	}
}

// NoOpLogger is a Logger implementation that discards all log messages.
// Useful for testing or when logging is disabled.
type NoOpLogger struct{}

// NewNoOpLogger creates a NoOpLogger instance.
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

func (n *NoOpLogger) LogTrace(string) {}
func (n *NoOpLogger) LogDebug(string) {}
func (n *NoOpLogger) LogInfo(string) {}
func (n *NoOpLogger) LogWarn(string) {}
func (n *NoOpLogger) LogError(string) {}
func (n *NoOpLogger) LogSessionStart(string, models.SearchRequest) {}
func (n *NoOpLogger) LogSessionComplete(models.SessionSummary) {}
func (n *NoOpLogger) LogTraversalError(error) {}
