package cli

import (
	"github.com/spf13/cobra"

	"github.com/nguyencaobach123/automated-email-esi/internal/core/ports/driving"
)

// processorSvc is swapped in tests.
var processorSvc driving.Processor

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Process unread emails once and exit",
	Long: `Drains the unread mailbox through the pipeline a single time,
without listening for push notifications. Useful for catching up after
downtime or for running from cron instead of the listener.`,
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, _ []string) error {
	processor := processorSvc
	if processor == nil {
		app, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()
		processor = app.processor
	}

	settled, err := processor.ProcessUnread(cmd.Context())
	if err != nil {
		return err
	}

	if settled == 0 {
		cmd.Println("No unread messages to process.")
	} else {
		cmd.Printf("Processed %d message(s).\n", settled)
	}
	return nil
}
