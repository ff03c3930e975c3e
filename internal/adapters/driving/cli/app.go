package cli

import (
	"context"
	"fmt"
	"path/filepath"

	gmailapi "google.golang.org/api/gmail/v1"

	configfile "github.com/nguyencaobach123/automated-email-esi/internal/adapters/driven/config/file"
	"github.com/nguyencaobach123/automated-email-esi/internal/adapters/driven/llm/gemini"
	"github.com/nguyencaobach123/automated-email-esi/internal/adapters/driven/storage/sqlite"
	"github.com/nguyencaobach123/automated-email-esi/internal/connectors/ebay"
	"github.com/nguyencaobach123/automated-email-esi/internal/connectors/google"
	gmailconn "github.com/nguyencaobach123/automated-email-esi/internal/connectors/google/gmail"
	"github.com/nguyencaobach123/automated-email-esi/internal/connectors/telegram"
	"github.com/nguyencaobach123/automated-email-esi/internal/core/domain"
	"github.com/nguyencaobach123/automated-email-esi/internal/core/ports/driven"
	"github.com/nguyencaobach123/automated-email-esi/internal/core/services"
)

// app holds the wired services for one command invocation.
type app struct {
	settings  *configfile.Settings
	store     *sqlite.Store
	prompts   *configfile.PromptStore
	mailbox   *gmailconn.Client
	assistant *gemini.Assistant
	processor *services.Processor
}

// resolveConfigDir returns the --config value or the default directory.
func resolveConfigDir() (string, error) {
	if configDir != "" {
		return configDir, nil
	}
	return configfile.DefaultConfigDir()
}

// loadSettings loads and validates the configuration.
func loadSettings() (*configfile.Settings, error) {
	dir, err := resolveConfigDir()
	if err != nil {
		return nil, err
	}
	settings, err := configfile.LoadSettings(dir)
	if err != nil {
		return nil, err
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return settings, nil
}

// newMailbox builds the Gmail client from the cached OAuth token.
func newMailbox(ctx context.Context, settings *configfile.Settings) (*gmailconn.Client, error) {
	oauthCfg, err := google.LoadInstalledAppConfig(settings.Gmail.CredentialsFile, gmailapi.GmailModifyScope)
	if err != nil {
		return nil, err
	}
	tokenSource, err := google.NewFileTokenSource(ctx, oauthCfg, settings.Gmail.TokenFile)
	if err != nil {
		return nil, err
	}
	return gmailconn.NewClient(ctx, tokenSource, gmailconn.Config{
		WatchLabelID: settings.Gmail.WatchLabelID,
		TopicName:    settings.PubSub.TopicName,
	})
}

// newApp wires the full pipeline. Missing eBay or Telegram credentials
// degrade those stages instead of failing startup.
func newApp(ctx context.Context) (*app, error) {
	settings, err := loadSettings()
	if err != nil {
		return nil, err
	}

	dir, err := resolveConfigDir()
	if err != nil {
		return nil, err
	}
	prompts, err := configfile.NewPromptStore(filepath.Join(dir, "prompts"))
	if err != nil {
		return nil, err
	}

	mailbox, err := newMailbox(ctx, settings)
	if err != nil {
		return nil, err
	}

	assistant, err := gemini.NewAssistant(ctx, gemini.Config{
		APIKey:              settings.Gemini.APIKey,
		ClassificationModel: settings.Gemini.ClassificationModel,
		GenerationModel:     settings.Gemini.GenerationModel,
	}, prompts)
	if err != nil {
		return nil, err
	}

	var marketplace driven.Marketplace = disabledMarketplace{}
	if settings.Ebay.ClientID != "" && settings.Ebay.ClientSecret != "" {
		marketplace, err = ebay.NewClient(ebay.Config{
			ClientID:      settings.Ebay.ClientID,
			ClientSecret:  settings.Ebay.ClientSecret,
			Environment:   ebay.Environment(settings.Ebay.Environment),
			MarketplaceID: settings.Ebay.MarketplaceID,
		})
		if err != nil {
			return nil, err
		}
	}

	var notifier driven.Notifier = disabledNotifier{}
	if settings.Telegram.BotToken != "" && settings.Telegram.ChatID != 0 {
		notifier, err = telegram.NewNotifier(telegram.Config{
			BotToken: settings.Telegram.BotToken,
			ChatID:   settings.Telegram.ChatID,
		})
		if err != nil {
			return nil, err
		}
	}

	store, err := sqlite.NewStore(settings.Storage.DatabasePath)
	if err != nil {
		return nil, err
	}

	return &app{
		settings:  settings,
		store:     store,
		prompts:   prompts,
		mailbox:   mailbox,
		assistant: assistant,
		processor: services.NewProcessor(mailbox, assistant, marketplace, notifier, store.ProcessedStore()),
	}, nil
}

// Close releases the app's resources.
func (a *app) Close() {
	if a.assistant != nil {
		a.assistant.Close()
	}
	if a.store != nil {
		a.store.Close()
	}
}

// disabledMarketplace stands in when eBay credentials are not set.
// Searches fail with ErrNotConfigured, which routes product emails to
// the support chat.
type disabledMarketplace struct{}

func (disabledMarketplace) Search(context.Context, *domain.SearchQuery) ([]domain.Listing, error) {
	return nil, fmt.Errorf("ebay search: %w", domain.ErrNotConfigured)
}

// disabledNotifier stands in when Telegram is not set up. Forwarding
// fails with ErrNotConfigured, which leaves the email unread for the
// next run.
type disabledNotifier struct{}

func (disabledNotifier) ForwardForReview(context.Context, *domain.Email) error {
	return fmt.Errorf("telegram forward: %w", domain.ErrNotConfigured)
}
