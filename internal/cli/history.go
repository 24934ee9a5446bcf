package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fieldscope/fieldscope/internal/store"
)

var historyLimit int

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recently persisted analysis results",
	Long: `History reads the durable store and prints the most recent genuine
analysis results, newest first. Synthetic (fallback) results are never
persisted and therefore never appear here.`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum records to list")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.Store.Enabled {
		return fmt.Errorf("durable store is disabled in configuration")
	}

	db, err := store.Open(cmd.Context(), cfg.Store.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	records, err := db.Recent(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("no persisted results")
		return nil
	}

	for _, rec := range records {
		fmt.Printf("%s  %-12s %-9s %s\n",
			rec.CreatedAt.Local().Format("2006-01-02 15:04:05"), rec.Mode, rec.Status, rec.Headline)
		if verbose {
			fmt.Printf("    session=%s operator=%s\n", rec.SessionID, rec.OperatorID)
			fmt.Printf("    %s\n", rec.Reasoning)
		}
	}
	return nil
}
