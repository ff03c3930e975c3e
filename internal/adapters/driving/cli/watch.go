package cli

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/nguyencaobach123/automated-email-esi/internal/adapters/driven/storage/sqlite"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Manage the Gmail push notification watch",
	Long: `Registers or tears down the Gmail watch that publishes new-mail
notifications to the Pub/Sub topic. The running service renews the
watch automatically; setup is only needed once.`,
}

var watchSetupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Register the mailbox watch",
	RunE:  runWatchSetup,
}

var watchStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the mailbox watch",
	RunE:  runWatchStop,
}

var watchStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current watch registration",
	RunE:  runWatchStatus,
}

func init() {
	watchCmd.AddCommand(watchSetupCmd)
	watchCmd.AddCommand(watchStopCmd)
	watchCmd.AddCommand(watchStatusCmd)
	rootCmd.AddCommand(watchCmd)
}

func runWatchSetup(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	if settings.PubSub.TopicName == "" {
		return errors.New("pubsub.topic_name is required for watch setup, " +
			"e.g. projects/my-project/topics/gmail-push")
	}

	mailbox, err := newMailbox(cmd.Context(), settings)
	if err != nil {
		return err
	}

	state, err := mailbox.Watch(cmd.Context())
	if err != nil {
		return err
	}

	store, err := sqlite.NewStore(settings.Storage.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.WatchStateStore().SaveWatchState(cmd.Context(), state); err != nil {
		return err
	}

	cmd.Printf("Watch registered on %s.\n", settings.PubSub.TopicName)
	cmd.Printf("History ID: %d\n", state.HistoryID)
	cmd.Printf("Expires:    %s\n", state.Expiration.Format(time.RFC1123))
	return nil
}

func runWatchStop(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	mailbox, err := newMailbox(cmd.Context(), settings)
	if err != nil {
		return err
	}

	if err := mailbox.StopWatch(cmd.Context()); err != nil {
		return err
	}
	cmd.Println("Watch stopped. Push notifications are disabled.")
	return nil
}

func runWatchStatus(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	store, err := sqlite.NewStore(settings.Storage.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	state, err := store.WatchStateStore().GetWatchState(cmd.Context())
	if err != nil {
		return err
	}
	if state == nil {
		cmd.Println("No watch registered. Run `automail watch setup` first.")
		return nil
	}

	cmd.Printf("History ID: %d\n", state.HistoryID)
	cmd.Printf("Renewed:    %s\n", state.RenewedAt.Format(time.RFC1123))
	cmd.Printf("Expires:    %s", state.Expiration.Format(time.RFC1123))
	if time.Now().After(state.Expiration) {
		cmd.Printf(" (EXPIRED)")
	}
	cmd.Println()
	return nil
}
