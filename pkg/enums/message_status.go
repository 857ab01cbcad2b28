package enums

import "fmt"

// MessageStatus is the inbox state of a contact form submission.
type MessageStatus string

const (
	MessageStatusNew      MessageStatus = "new"
	MessageStatusRead     MessageStatus = "read"
	MessageStatusArchived MessageStatus = "archived"
)

var validMessageStatuses = []MessageStatus{
	MessageStatusNew,
	MessageStatusRead,
	MessageStatusArchived,
}

func (s MessageStatus) String() string {
	return string(s)
}

func (s MessageStatus) IsValid() bool {
	for _, candidate := range validMessageStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

func ParseMessageStatus(value string) (MessageStatus, error) {
	for _, candidate := range validMessageStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid message status %q", value)
}
