package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	gmailapi "google.golang.org/api/gmail/v1"

	configfile "github.com/nguyencaobach123/automated-email-esi/internal/adapters/driven/config/file"
	"github.com/nguyencaobach123/automated-email-esi/internal/connectors/google"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authorise Gmail access",
	Long: `Runs the OAuth consent flow for the support mailbox.

Requires a Google OAuth desktop-app client secret at the configured
credentials path (default ~/.automail/credentials.json). The resulting
token is cached and refreshed automatically; re-run this command only
if the token is revoked.`,
	RunE: runAuth,
}

func init() {
	rootCmd.AddCommand(authCmd)
}

func runAuth(cmd *cobra.Command, _ []string) error {
	dir, err := resolveConfigDir()
	if err != nil {
		return err
	}
	// Validation is skipped here: authorising Gmail is a setup step
	// and must work before the rest of the config is filled in.
	settings, err := configfile.LoadSettings(dir)
	if err != nil {
		return err
	}

	oauthCfg, err := google.LoadInstalledAppConfig(settings.Gmail.CredentialsFile, gmailapi.GmailModifyScope)
	if err != nil {
		return fmt.Errorf("%w\n\nDownload a desktop-app OAuth client secret from the Google Cloud "+
			"console and save it as %s", err, settings.Gmail.CredentialsFile)
	}

	token, err := google.Authorize(cmd.Context(), oauthCfg, settings.Gmail.TokenFile)
	if err != nil {
		return err
	}

	cmd.Printf("Authorisation successful. Token saved to %s.\n", settings.Gmail.TokenFile)
	if !token.Expiry.IsZero() {
		cmd.Printf("Access token valid until %s.\n", token.Expiry.Format("15:04:05"))
	}
	return nil
}
