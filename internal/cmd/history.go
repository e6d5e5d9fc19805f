package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/harrison/fsearch/internal/history"
	"github.com/harrison/fsearch/internal/models"
)

// NewHistoryCommand creates the history command
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent searches",
		Long: `List recently recorded searches, newest first.

Searches are recorded in .fsearch/history.db unless history is disabled in
the configuration or --no-history was passed to search.`,
		Args: cobra.NoArgs,
		RunE: runHistory,
	}

	cmd.Flags().String("config", "", "Path to config file (default: .fsearch/config.yaml)")
	cmd.Flags().Int("limit", history.DefaultRecentLimit, "Maximum number of searches to show")
	cmd.Flags().String("db", "", "Path to the history database (overrides config)")

	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	dbPath := cfg.History.DBPath
	if cmd.Flags().Changed("db") {
		dbPath, _ = cmd.Flags().GetString("db")
	}
	if dbPath == "" {
		return fmt.Errorf("no history database configured")
	}
	limit, _ := cmd.Flags().GetInt("limit")

	store, err := history.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer store.Close()

	summaries, err := store.Recent(cmd.Context(), limit)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(summaries) == 0 {
		fmt.Fprintln(out, "No searches recorded yet.")
		return nil
	}
	return writeHistoryTable(out, summaries, time.Now())
}

func writeHistoryTable(w io.Writer, summaries []models.SessionSummary, now time.Time) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tSTATE\tMATCHES\tDURATION\tROOT\tPATTERN")
	for _, s := range summaries {
		started := "-"
		if !s.StartedAt.IsZero() {
			started = humanize.RelTime(s.StartedAt, now, "ago", "from now")
		}
		matches := humanize.Comma(int64(s.Matched))
		if s.CapReached {
			matches += " (cap)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			started, s.State, matches, s.Duration.Round(time.Millisecond), s.Root, s.Pattern)
	}
	return tw.Flush()
}
