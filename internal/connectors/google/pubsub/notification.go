package pubsub

import (
	"encoding/json"
	"fmt"

	"github.com/nguyencaobach123/automated-email-esi/internal/core/ports/driving"
)

// pushPayload is the JSON body Gmail publishes on the watch topic.
// historyId arrives as a JSON number; json.Number keeps precision for
// the uint64 conversion.
type pushPayload struct {
	EmailAddress string      `json:"emailAddress"`
	HistoryID    json.Number `json:"historyId"`
}

// DecodeNotification parses the data payload of a Gmail push message.
func DecodeNotification(data []byte) (driving.Notification, error) {
	var payload pushPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return driving.Notification{}, fmt.Errorf("decode push notification: %w", err)
	}

	var historyID uint64
	if payload.HistoryID != "" {
		parsed, err := parseHistoryID(payload.HistoryID)
		if err != nil {
			return driving.Notification{}, fmt.Errorf("decode push notification: %w", err)
		}
		historyID = parsed
	}

	return driving.Notification{
		EmailAddress: payload.EmailAddress,
		HistoryID:    historyID,
	}, nil
}

func parseHistoryID(n json.Number) (uint64, error) {
	i, err := n.Int64()
	if err != nil {
		return 0, fmt.Errorf("invalid historyId %q: %w", n.String(), err)
	}
	if i < 0 {
		return 0, fmt.Errorf("invalid historyId %q: negative", n.String())
	}
	return uint64(i), nil
}
