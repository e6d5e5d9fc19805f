package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/harrison/fsearch/internal/models"
)

// DefaultLogDir is where FileLogger writes when no directory is configured.
var DefaultLogDir = filepath.Join(".fsearch", "logs")

// FileLogger logs session events to files in .fsearch/logs/.
// It creates a timestamped per-run log file and maintains a latest.log
// symlink pointing to the most recent run.
// It is thread-safe and implements the search.Logger interface.
type FileLogger struct {
	logDir   string
	runLog   *os.File
	runFile  string
	logLevel string
	mu       sync.Mutex
}

// NewFileLogger creates a FileLogger writing to .fsearch/logs/ at "info" level.
func NewFileLogger() (*FileLogger, error) {
	return NewFileLoggerWithDirAndLevel(DefaultLogDir, "info")
}

// NewFileLoggerWithDirAndLevel creates a FileLogger with a custom log
// directory and log level. The directory is created if missing.
func NewFileLoggerWithDirAndLevel(logDir string, logLevel string) (*FileLogger, error) {
	if logDir == "" {
		logDir = DefaultLogDir
	}
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	// Nanoseconds keep two runs within one second from sharing a file.
	now := time.Now()
	runFile := filepath.Join(logDir, fmt.Sprintf("run-%s-%09d.log", now.Format("20060102-150405"), now.Nanosecond()))

	file, err := os.OpenFile(runFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create run log file: %w", err)
	}

	symlinkPath := filepath.Join(logDir, "latest.log")
	if _, err := os.Lstat(symlinkPath); err == nil {
		if err := os.Remove(symlinkPath); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to remove old symlink: %w", err)
		}
	}
	if err := os.Symlink(filepath.Base(runFile), symlinkPath); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create symlink: %w", err)
	}

	logger := &FileLogger{
		logDir:   logDir,
		runLog:   file,
		runFile:  runFile,
		logLevel: normalizeLogLevel(logLevel),
	}

	logger.writeRunLog("=== fsearch Run Log ===\n")
	logger.writeRunLog(fmt.Sprintf("Started at: %s\n\n", now.Format(time.RFC3339)))

	return logger, nil
}

// Path returns the path of the current run log.
func (fl *FileLogger) Path() string {
	return fl.runFile
}

func (fl *FileLogger) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(fl.logLevel)
}

// LogTrace logs a trace-level message.
func (fl *FileLogger) LogTrace(message string) {
	fl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
func (fl *FileLogger) LogDebug(message string) {
	fl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (fl *FileLogger) LogInfo(message string) {
	fl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (fl *FileLogger) LogWarn(message string) {
	fl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (fl *FileLogger) LogError(message string) {
	fl.logWithLevel("ERROR", message)
}

func (fl *FileLogger) logWithLevel(level string, message string) {
	if !fl.shouldLog(strings.ToLower(level)) {
		return
	}
	fl.writeRunLog(fmt.Sprintf("[%s] [%s] %s\n", timestamp(), level, message))
}

// LogSessionStart records the request of a new session at INFO level.
// The full session ID is written so runs can be matched with history rows.
func (fl *FileLogger) LogSessionStart(id string, req models.SearchRequest) {
	if !fl.shouldLog("info") {
		return
	}
	fl.writeRunLog(fmt.Sprintf(
		"[%s] Session %s started\n"+
			"[%s]   root:    %s\n"+
			"[%s]   pattern: %q\n"+
			"[%s]   options: %s\n",
		timestamp(), id,
		timestamp(), req.Root,
		timestamp(), req.Pattern,
		timestamp(), describeOptions(req.Options),
	))
}

// LogSessionComplete writes the session summary block at INFO level.
func (fl *FileLogger) LogSessionComplete(summary models.SessionSummary) {
	if !fl.shouldLog("info") {
		return
	}

	ts := timestamp()
	message := fmt.Sprintf(
		"\n[%s] === SESSION SUMMARY ===\n"+
			"[%s] Session:      %s\n"+
			"[%s] State:        %s\n"+
			"[%s] Matches:      %d\n"+
			"[%s] Cap reached:  %t\n"+
			"[%s] Skipped:      %d\n"+
			"[%s] Total time:   %.3fs\n",
		ts,
		ts, summary.ID,
		ts, strings.ToUpper(summary.State.String()),
		ts, summary.Matched,
		ts, summary.CapReached,
		ts, summary.TraversalErrors,
		ts, summary.Duration.Seconds(),
	)
	if summary.Error != "" {
		message += fmt.Sprintf("[%s] Error:        %s\n", ts, summary.Error)
	}
	fl.writeRunLog(message)
}

// LogTraversalError logs a skipped path at WARN level.
func (fl *FileLogger) LogTraversalError(err error) {
	if err == nil {
		return
	}
	fl.logWithLevel("WARN", fmt.Sprintf("skipped: %v", err))
}

// Close flushes and closes the run log file.
func (fl *FileLogger) Close() error {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		if err := fl.runLog.Sync(); err != nil {
			return fmt.Errorf("failed to sync run log: %w", err)
		}
		if err := fl.runLog.Close(); err != nil {
			return fmt.Errorf("failed to close run log: %w", err)
		}
		fl.runLog = nil
	}
	return nil
}

// writeRunLog is a thread-safe helper to write to the run log file.
func (fl *FileLogger) writeRunLog(message string) {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog != nil {
		fl.runLog.WriteString(message)
		fl.runLog.Sync()
	}
}
