package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/fieldscope/fieldscope/internal/model"
	"github.com/fieldscope/fieldscope/internal/session"
)

var logPath string

// reportCmd represents the offline report command
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render a local-format incident report from a saved log",
	Long: `Report renders the deterministic local-format incident report from a
serialized event log (a JSON array of log entries), with no network
dependency. Useful for post-session review of exported logs.`,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVar(&logPath, "log", "", "path to a JSON event log (required)")
	_ = reportCmd.MarkFlagRequired("log")
}

func runReport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(logPath)
	if err != nil {
		return fmt.Errorf("read log: %w", err)
	}

	var entries []model.LogEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parse log: %w", err)
	}
	if len(entries) < 2 {
		fmt.Fprintln(os.Stderr, "nothing to report: fewer than two entries")
		return nil
	}

	// Exported logs are newest-first, same as the in-session view.
	chron := make([]model.LogEntry, len(entries))
	for i, e := range entries {
		chron[len(entries)-1-i] = e
	}

	fmt.Println(session.FormatLocal(time.Now(), chron))
	return nil
}
