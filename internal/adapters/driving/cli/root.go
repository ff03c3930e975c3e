// Package cli implements the automail command line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/nguyencaobach123/automated-email-esi/internal/logger"
)

var (
	configDir string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "automail",
	Short: "Automated customer support email assistant",
	Long: `Automail watches a Gmail inbox for customer emails and answers them
automatically: each unread email is classified, product questions are
answered with live eBay listings, and anything the assistant cannot
handle is forwarded to a Telegram support chat.

Typical setup:
  automail auth           # authorise Gmail access
  automail watch setup    # register push notifications
  automail run            # start the listener`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "",
		"configuration directory (default ~/.automail)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"enable debug logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
