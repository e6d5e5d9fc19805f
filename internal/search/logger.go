package search

import "github.com/harrison/fsearch/internal/models"

// Logger receives engine events. Implementations must be safe for
// concurrent use; traversal errors are reported from worker goroutines.
type Logger interface {
	LogSessionStart(id string, req models.SearchRequest)
	LogSessionComplete(summary models.SessionSummary)
	LogTraversalError(err error)
	LogDebug(message string)
}

type nopLogger struct{}

func (nopLogger) LogSessionStart(string, models.SearchRequest) {}
func (nopLogger) LogSessionComplete(models.SessionSummary) {}
func (nopLogger) LogTraversalError(error) {}
func (nopLogger) LogDebug(string) {}
