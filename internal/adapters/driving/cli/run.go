package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nguyencaobach123/automated-email-esi/internal/connectors/google/pubsub"
	"github.com/nguyencaobach123/automated-email-esi/internal/core/services"
	"github.com/nguyencaobach123/automated-email-esi/internal/logger"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Listen for mailbox notifications and process emails",
	Long: `Starts the long-running service: receives Gmail push notifications
from the Pub/Sub subscription, drains unread mail on each notification
and keeps the mailbox watch registration alive. Runs until interrupted.`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	listener, err := pubsub.NewListener(ctx, pubsub.Config{
		ProjectID:       app.settings.PubSub.ProjectID,
		SubscriptionID:  app.settings.PubSub.SubscriptionID,
		CredentialsFile: app.settings.PubSub.ServiceAccountKeyFile,
	}, app.processor)
	if err != nil {
		return err
	}
	defer listener.Close()

	// Keep the watch registration alive in the background. Without a
	// topic the watch cannot be registered, so the keeper is skipped
	// and `automail watch setup` output explains the requirement.
	if app.settings.PubSub.TopicName != "" {
		keeper := services.NewWatchKeeper(services.DefaultWatchKeeperConfig(),
			app.mailbox, app.store.WatchStateStore())
		go func() {
			if err := keeper.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("watch keeper stopped: %v", err)
			}
		}()
		defer keeper.Stop()
	} else {
		logger.Warn("pubsub.topic_name not set, watch renewal disabled")
	}

	// Prompt edits take effect without a restart.
	go func() {
		if err := app.prompts.Watch(ctx); err != nil {
			logger.Warn("prompt watching disabled: %v", err)
		}
	}()

	// Catch up on anything that arrived while the service was down.
	if settled, err := app.processor.ProcessUnread(ctx); err != nil {
		logger.Error("initial drain: %v", err)
	} else if settled > 0 {
		logger.Info("initial drain settled %d message(s)", settled)
	}

	err = listener.Listen(ctx)
	if err != nil {
		return err
	}

	cmd.Println("Shutting down.")
	return nil
}
