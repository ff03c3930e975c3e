package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/nguyencaobach123/automated-email-esi/internal/adapters/driven/storage/sqlite"
	"github.com/nguyencaobach123/automated-email-esi/internal/core/domain"
	"github.com/nguyencaobach123/automated-email-esi/internal/core/ports/driven"
)

// ledgerSvc is swapped in tests.
var ledgerSvc driven.ProcessedStore

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently processed emails",
	Long: `Lists the most recent ledger entries: which emails were answered
automatically, forwarded to support, archived as spam or failed.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of entries to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	ledger := ledgerSvc
	if ledger == nil {
		settings, err := loadSettings()
		if err != nil {
			return err
		}
		store, err := sqlite.NewStore(settings.Storage.DatabasePath)
		if err != nil {
			return err
		}
		defer store.Close()
		ledger = store.ProcessedStore()
	}

	records, err := ledger.Recent(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		cmd.Println("No processed emails yet.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "PROCESSED\tOUTCOME\tFROM\tSUBJECT")
	for _, rec := range records {
		subject := rec.Subject
		if rec.Outcome == domain.OutcomeFailed && rec.Error != "" {
			subject = subject + " (" + truncate(rec.Error, 60) + ")"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			rec.ProcessedAt.Local().Format(time.DateTime),
			rec.Outcome,
			truncate(rec.Sender, 40),
			truncate(subject, 60))
	}
	return nil
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
