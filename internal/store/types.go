package store

import "time"

// Chat style codes.
const (
	StyleGroup  = 43
	StyleDirect = 45
)

// Handle is a participant identity: a phone number or email on a service.
type Handle struct {
	ID         int64
	Identifier string
	Service    string
}

// Chat is a conversation with its participants and a denormalized view of
// its most recent message.
type Chat struct {
	ID              int64
	GUID            string
	Identifier      string
	DisplayName     string
	IsGroup         bool
	Participants    []Handle
	LastMessageText string
	LastMessageAt   time.Time // zero when the chat has no dated message
}

// Message is a single message with its text already resolved.
type Message struct {
	ID             int64
	GUID           string
	Text           string
	Timestamp      time.Time // zero when the archive has no date
	FromMe         bool
	ChatID         int64
	Sender         *Handle // nil for messages sent by the device owner
	HasAttachments bool
}

// Attachment is a file attached to a message.
type Attachment struct {
	ID        int64
	GUID      string
	Path      string
	MIMEType  string
	Filename  string
	Size      *int64
	MessageID int64
}
