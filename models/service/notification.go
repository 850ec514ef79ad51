package service

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/storagestats/gcs-stats/constants"
)

// Notification is an object-arrival message. It mirrors the shape of a
// Pub/Sub storage notification. Only attributes.objectId is consumed.
type Notification struct {
	MessageID  string            `json:"messageId,omitempty"`
	Attributes map[string]string `json:"attributes"`
}

// NewNotification returns a notification for the specified object.
func NewNotification(objectID string) *Notification {
	return &Notification{
		Attributes: map[string]string{
			constants.NotificationObjectID: objectID,
		},
	}
}

// NotificationFromJSON parses a notification and makes sure it names
// an object.
func NotificationFromJSON(data []byte) (*Notification, error) {
	n := &Notification{}
	if err := json.Unmarshal(data, n); err != nil {
		return nil, fmt.Errorf("invalid notification body: %w", err)
	}
	if n.ObjectID() == "" {
		return nil, fmt.Errorf("notification has no %s attribute", constants.NotificationObjectID)
	}
	return n, nil
}

// ObjectID returns the id of the newly created object.
func (n *Notification) ObjectID() string {
	if n.Attributes == nil {
		return ""
	}
	return strings.TrimSpace(n.Attributes[constants.NotificationObjectID])
}

func (n *Notification) ToJSON() ([]byte, error) {
	return json.Marshal(n)
}
