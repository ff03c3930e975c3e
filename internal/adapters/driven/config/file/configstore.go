package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pelletier/go-toml/v2"

	"github.com/nguyencaobach123/automated-email-esi/internal/logger"
)

// DefaultConfigDirName is the directory under $HOME holding all
// automail state: config.toml, OAuth tokens, prompts and the ledger.
const DefaultConfigDirName = ".automail"

// Settings is the full application configuration, stored as TOML.
type Settings struct {
	Gmail    GmailSettings    `toml:"gmail"`
	PubSub   PubSubSettings   `toml:"pubsub"`
	Gemini   GeminiSettings   `toml:"gemini"`
	Ebay     EbaySettings     `toml:"ebay"`
	Telegram TelegramSettings `toml:"telegram"`
	Storage  StorageSettings  `toml:"storage"`
}

// GmailSettings configures the mailbox connector.
type GmailSettings struct {
	// CredentialsFile is the OAuth installed-app client secret JSON.
	CredentialsFile string `toml:"credentials_file"`
	// TokenFile caches the user token after `automail auth`.
	TokenFile string `toml:"token_file"`
	// WatchLabelID limits processing to one label. Empty means inbox.
	WatchLabelID string `toml:"watch_label_id"`
}

// PubSubSettings configures the push notification subscription.
type PubSubSettings struct {
	ProjectID      string `toml:"project_id"`
	TopicName      string `toml:"topic_name"`
	SubscriptionID string `toml:"subscription_id"`
	// ServiceAccountKeyFile is optional. Empty uses application
	// default credentials.
	ServiceAccountKeyFile string `toml:"service_account_key_file"`
}

// GeminiSettings configures the assistant.
type GeminiSettings struct {
	APIKey              string `toml:"api_key"`
	ClassificationModel string `toml:"classification_model"`
	GenerationModel     string `toml:"generation_model"`
}

// EbaySettings configures the marketplace connector.
type EbaySettings struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	// Environment is "sandbox" or "production".
	Environment   string `toml:"environment"`
	MarketplaceID string `toml:"marketplace_id"`
}

// TelegramSettings configures the support-chat notifier.
type TelegramSettings struct {
	BotToken string `toml:"bot_token"`
	ChatID   int64  `toml:"chat_id"`
}

// StorageSettings configures the local database.
type StorageSettings struct {
	// DatabasePath is the sqlite file holding the processed-message
	// ledger and watch state.
	DatabasePath string `toml:"database_path"`
}

// DefaultConfigDir returns ~/.automail.
func DefaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, DefaultConfigDirName), nil
}

// LoadSettings reads config.toml from configDir, applies defaults and
// environment overrides. A missing file is not an error; defaults and
// the environment still apply.
func LoadSettings(configDir string) (*Settings, error) {
	if configDir == "" {
		dir, err := DefaultConfigDir()
		if err != nil {
			return nil, err
		}
		configDir = dir
	}

	settings := &Settings{}
	path := filepath.Join(configDir, "config.toml")
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		logger.Debug("no config file at %s, using defaults", path)
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := toml.Unmarshal(data, settings); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	settings.applyDefaults(configDir)
	settings.applyEnv()
	return settings, nil
}

// SaveSettings writes the settings to config.toml with restricted
// permissions, creating configDir if needed.
func SaveSettings(configDir string, settings *Settings) error {
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := toml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	// Restricted permissions: the file carries API keys.
	return os.WriteFile(filepath.Join(configDir, "config.toml"), data, 0600)
}

// applyDefaults fills paths relative to the config directory.
func (s *Settings) applyDefaults(configDir string) {
	if s.Gmail.CredentialsFile == "" {
		s.Gmail.CredentialsFile = filepath.Join(configDir, "credentials.json")
	}
	if s.Gmail.TokenFile == "" {
		s.Gmail.TokenFile = filepath.Join(configDir, "token.json")
	}
	if s.Storage.DatabasePath == "" {
		s.Storage.DatabasePath = filepath.Join(configDir, "automail.db")
	}
	if s.Ebay.Environment == "" {
		s.Ebay.Environment = "sandbox"
	}
}

// applyEnv overrides file values from the environment. Secrets are
// commonly injected this way in deployments.
func (s *Settings) applyEnv() {
	overrideString(&s.Gemini.APIKey, "GEMINI_API_KEY")
	overrideString(&s.Telegram.BotToken, "TELEGRAM_BOT_TOKEN")
	overrideString(&s.Ebay.ClientID, "EBAY_OAUTH_CLIENT_ID")
	overrideString(&s.Ebay.ClientSecret, "EBAY_OAUTH_CLIENT_SECRET")
	overrideString(&s.Ebay.Environment, "EBAY_ENVIRONMENT")
	overrideString(&s.PubSub.ProjectID, "GOOGLE_CLOUD_PROJECT")

	if raw := os.Getenv("TELEGRAM_CHAT_ID"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			s.Telegram.ChatID = id
		} else {
			logger.Warn("ignoring invalid TELEGRAM_CHAT_ID %q", raw)
		}
	}
}

func overrideString(dst *string, env string) {
	if value := os.Getenv(env); value != "" {
		*dst = value
	}
}

// Validate checks the settings needed to run the pipeline.
// The assistant and the notification subscription are hard
// requirements. Missing eBay or Telegram credentials degrade those
// stages at runtime rather than preventing startup, so they only warn.
func (s *Settings) Validate() error {
	if s.Gemini.APIKey == "" {
		return fmt.Errorf("gemini.api_key is required (or set GEMINI_API_KEY)")
	}
	if s.PubSub.ProjectID == "" {
		return fmt.Errorf("pubsub.project_id is required")
	}
	if s.PubSub.SubscriptionID == "" {
		return fmt.Errorf("pubsub.subscription_id is required")
	}

	if s.Ebay.ClientID == "" || s.Ebay.ClientSecret == "" {
		logger.Warn("ebay credentials not set, product search is disabled and product emails will be forwarded")
	}
	if s.Telegram.BotToken == "" || s.Telegram.ChatID == 0 {
		logger.Warn("telegram not configured, emails needing review will stay unread instead of being forwarded")
	}
	return nil
}
