package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/harrison/fsearch/internal/config"
	"github.com/harrison/fsearch/internal/history"
	"github.com/harrison/fsearch/internal/logger"
	"github.com/harrison/fsearch/internal/models"
	"github.com/harrison/fsearch/internal/output"
	"github.com/harrison/fsearch/internal/search"
)

// NewSearchCommand creates the search command
func NewSearchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <root> <pattern>",
		Short: "Search a directory tree for names matching a glob pattern",
		Long: `Search walks <root> concurrently and prints every file whose name matches
<pattern>. Patterns support * (any run of characters) and ? (one character)
and are matched case-insensitively against the base name only.

Matches are printed as soon as they are found. Press Ctrl+C to stop early;
results found so far are kept.

Configuration is loaded from .fsearch/config.yaml (or config.toml) if present.
CLI flags override configuration file settings.

Examples:
  fsearch search ~/projects "*.go"
  fsearch search /var/log "*.log" --max-results 50
  fsearch search . "readme*" --include-dirs --long
  fsearch search /data "*.csv" --format json --output results.json
  fsearch search / "*.conf" --max-dirs-per-second 200 --timeout 30s`,
		Args: cobra.ExactArgs(2),
		RunE: runSearch,
	}

	cmd.Flags().String("config", "", "Path to config file (default: .fsearch/config.yaml)")
	cmd.Flags().Int("max-results", 0, "Stop after this many matches (0 = unlimited)")
	cmd.Flags().Int("workers", 0, "Maximum concurrently walked subtrees (0 = number of CPUs)")
	cmd.Flags().String("timeout", "", "Cancel the search after this long (e.g., 30s, 5m)")
	cmd.Flags().String("shutdown-timeout", "", "How long a cancelled search waits for workers (e.g., 5s)")
	cmd.Flags().String("format", "", "Output format: text, json, yaml, markdown, html")
	cmd.Flags().StringP("output", "o", "", "Write the report to this file instead of stdout")
	cmd.Flags().String("log-level", "", "Log verbosity: trace, debug, info, warn, error")
	cmd.Flags().String("log-dir", "", "Directory for run logs (empty string disables file logs)")
	cmd.Flags().Bool("include-dirs", false, "Also report directories whose names match")
	cmd.Flags().Float64("max-dirs-per-second", 0, "Throttle directory listings (0 = unthrottled)")
	cmd.Flags().Bool("no-history", false, "Do not record this search in the history database")
	cmd.Flags().BoolP("long", "l", false, "Show size and modification time (text format)")

	return cmd
}

// flagOverrides collects only the flags the user actually set.
func flagOverrides(cmd *cobra.Command) (config.FlagOverrides, error) {
	var f config.FlagOverrides
	flags := cmd.Flags()

	if flags.Changed("max-results") {
		v, _ := flags.GetInt("max-results")
		f.MaxResults = &v
	}
	if flags.Changed("workers") {
		v, _ := flags.GetInt("workers")
		f.MaxWorkers = &v
	}
	if flags.Changed("timeout") {
		s, _ := flags.GetString("timeout")
		d, err := time.ParseDuration(s)
		if err != nil {
			return f, fmt.Errorf("invalid timeout format %q: %w", s, err)
		}
		f.Timeout = &d
	}
	if flags.Changed("shutdown-timeout") {
		s, _ := flags.GetString("shutdown-timeout")
		d, err := time.ParseDuration(s)
		if err != nil {
			return f, fmt.Errorf("invalid shutdown-timeout format %q: %w", s, err)
		}
		f.ShutdownTimeout = &d
	}
	if flags.Changed("format") {
		v, _ := flags.GetString("format")
		f.Format = &v
	}
	if flags.Changed("log-level") {
		v, _ := flags.GetString("log-level")
		f.LogLevel = &v
	}
	if flags.Changed("log-dir") {
		v, _ := flags.GetString("log-dir")
		f.LogDir = &v
	}
	if flags.Changed("include-dirs") {
		v, _ := flags.GetBool("include-dirs")
		f.IncludeDirectories = &v
	}
	if flags.Changed("max-dirs-per-second") {
		v, _ := flags.GetFloat64("max-dirs-per-second")
		f.MaxDirsPerSecond = &v
	}
	if flags.Changed("no-history") {
		v, _ := flags.GetBool("no-history")
		f.NoHistory = &v
	}
	return f, nil
}

// loadConfig reads --config or the default config directory, applies flag
// overrides and validates the result.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	} else {
		cfg, err = config.LoadConfigFromDir(".")
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	overrides, err := flagOverrides(cmd)
	if err != nil {
		return nil, err
	}
	cfg.MergeWithFlags(overrides)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// buildLogger writes to stderr and, when a log directory is configured, to a
// run log file. The returned close func releases the file logger.
func buildLogger(cfg *config.Config, stderr io.Writer) (*logger.MultiLogger, func(), error) {
	console := logger.NewConsoleLogger(stderr, cfg.LogLevel)
	if cfg.LogDir == "" {
		return logger.NewMultiLogger(console), func() {}, nil
	}

	fileLogger, err := logger.NewFileLoggerWithDirAndLevel(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create file logger: %w", err)
	}
	return logger.NewMultiLogger(console, fileLogger), func() { fileLogger.Close() }, nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	format, err := output.ParseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}
	outputPath, _ := cmd.Flags().GetString("output")
	long, _ := cmd.Flags().GetBool("long")

	log, closeLog, err := buildLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	req := models.SearchRequest{
		Root:    args[0],
		Pattern: args[1],
		Options: cfg.SearchOptions(),
	}

	session, err := search.NewEngine(search.WithLogger(log)).Search(ctx, req)
	if err != nil {
		return err
	}

	var results []models.MatchResult
	streaming := format == output.FormatText && outputPath == ""
	if streaming {
		printer := output.NewTextPrinter(cmd.OutOrStdout(), long, colorEnabled(cmd.OutOrStdout()))
		for m := range session.Results() {
			if err := printer.PrintMatch(m); err != nil {
				session.Cancel()
				break
			}
		}
	} else {
		results = session.Collect()
	}
	sessionErr := session.Wait()
	summary := session.Summary()

	if streaming {
		printer := output.NewTextPrinter(cmd.ErrOrStderr(), false, colorEnabled(cmd.ErrOrStderr()))
		_ = printer.PrintSummary(summary)
	} else if err := writeReport(cmd, output.Report{Summary: summary, Results: results}, format, outputPath); err != nil {
		return err
	}

	if cfg.History.Enabled {
		recordHistory(cfg.History.DBPath, summary, log)
	}

	if sessionErr != nil {
		return fmt.Errorf("search failed: %w", sessionErr)
	}
	return nil
}

func writeReport(cmd *cobra.Command, report output.Report, format output.Format, path string) error {
	if path == "" {
		content, err := output.ExportToString(report, format)
		if err != nil {
			return err
		}
		_, err = io.WriteString(cmd.OutOrStdout(), content)
		return err
	}

	if err := output.ExportToFile(cmd.Context(), report, path, format); err != nil {
		return err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d match(es) to %s\n", len(report.Results), abs)
	return nil
}

// recordHistory stores the summary. Failures are logged, never fatal.
func recordHistory(dbPath string, summary models.SessionSummary, log logger.Logger) {
	store, err := history.Open(dbPath)
	if err != nil {
		log.LogWarn(fmt.Sprintf("history unavailable: %v", err))
		return
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Record(ctx, summary); err != nil {
		log.LogWarn(fmt.Sprintf("history not recorded: %v", err))
	}
}

func colorEnabled(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || color.NoColor {
		return false
	}
	return isatty.IsTerminal(f.Fd())
}
