package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettingsMissingFile(t *testing.T) {
	dir := t.TempDir()

	settings, err := LoadSettings(dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "credentials.json"), settings.Gmail.CredentialsFile)
	assert.Equal(t, filepath.Join(dir, "token.json"), settings.Gmail.TokenFile)
	assert.Equal(t, filepath.Join(dir, "automail.db"), settings.Storage.DatabasePath)
	assert.Equal(t, "sandbox", settings.Ebay.Environment)
}

func TestLoadSettingsFromFile(t *testing.T) {
	dir := t.TempDir()
	content := `
[gmail]
watch_label_id = "Label_42"

[pubsub]
project_id = "my-project"
topic_name = "projects/my-project/topics/gmail-push"
subscription_id = "gmail-push-sub"

[gemini]
api_key = "file-key"
generation_model = "gemini-2.5-pro"

[telegram]
bot_token = "bot:token"
chat_id = 12345
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	settings, err := LoadSettings(dir)
	require.NoError(t, err)

	assert.Equal(t, "Label_42", settings.Gmail.WatchLabelID)
	assert.Equal(t, "my-project", settings.PubSub.ProjectID)
	assert.Equal(t, "gmail-push-sub", settings.PubSub.SubscriptionID)
	assert.Equal(t, "file-key", settings.Gemini.APIKey)
	assert.Equal(t, "gemini-2.5-pro", settings.Gemini.GenerationModel)
	assert.Equal(t, int64(12345), settings.Telegram.ChatID)
}

func TestLoadSettingsEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	content := `
[gemini]
api_key = "file-key"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("TELEGRAM_CHAT_ID", "99")
	t.Setenv("EBAY_OAUTH_CLIENT_ID", "env-ebay-id")

	settings, err := LoadSettings(dir)
	require.NoError(t, err)

	assert.Equal(t, "env-key", settings.Gemini.APIKey)
	assert.Equal(t, int64(99), settings.Telegram.ChatID)
	assert.Equal(t, "env-ebay-id", settings.Ebay.ClientID)
}

func TestLoadSettingsInvalidChatIDEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TELEGRAM_CHAT_ID", "not-a-number")

	settings, err := LoadSettings(dir)
	require.NoError(t, err)
	assert.Zero(t, settings.Telegram.ChatID)
}

func TestSaveSettingsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	configDir := filepath.Join(dir, "nested", ".automail")

	in := &Settings{}
	in.PubSub.ProjectID = "my-project"
	in.Gemini.APIKey = "key"
	require.NoError(t, SaveSettings(configDir, in))

	info, err := os.Stat(filepath.Join(configDir, "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	out, err := LoadSettings(configDir)
	require.NoError(t, err)
	assert.Equal(t, "my-project", out.PubSub.ProjectID)
	assert.Equal(t, "key", out.Gemini.APIKey)
}

func TestValidate(t *testing.T) {
	settings := &Settings{}
	assert.ErrorContains(t, settings.Validate(), "gemini.api_key")

	settings.Gemini.APIKey = "key"
	assert.ErrorContains(t, settings.Validate(), "pubsub.project_id")

	settings.PubSub.ProjectID = "p"
	assert.ErrorContains(t, settings.Validate(), "pubsub.subscription_id")

	settings.PubSub.SubscriptionID = "s"
	assert.NoError(t, settings.Validate())
}
