package gmail

import "strings"

// DefaultUserID addresses the authenticated mailbox.
const DefaultUserID = "me"

// Config holds Gmail connector configuration.
type Config struct {
	// UserID is the mailbox to operate on. Defaults to "me".
	UserID string
	// WatchLabelID limits processing and the push watch to one label.
	// Empty means the whole inbox.
	WatchLabelID string
	// TopicName is the fully qualified Pub/Sub topic for users.watch,
	// e.g. projects/my-project/topics/gmail-push.
	TopicName string
	// MaxResults is the page size for list requests.
	MaxResults int64
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		UserID:     DefaultUserID,
		MaxResults: 100,
	}
}

// normalise fills in defaults for zero-valued fields.
func (c Config) normalise() Config {
	if c.UserID == "" {
		c.UserID = DefaultUserID
	}
	if c.MaxResults <= 0 {
		c.MaxResults = 100
	}
	return c
}

// unreadQuery builds the Gmail search query for unread support mail.
func (c Config) unreadQuery() string {
	parts := []string{"is:unread"}
	if c.WatchLabelID != "" {
		parts = append(parts, "label:"+c.WatchLabelID)
	}
	parts = append(parts, "in:inbox")
	return strings.Join(parts, " ")
}

// watchLabelIDs returns the label filter for users.watch.
func (c Config) watchLabelIDs() []string {
	if c.WatchLabelID != "" {
		return []string{c.WatchLabelID}
	}
	return []string{"INBOX"}
}
