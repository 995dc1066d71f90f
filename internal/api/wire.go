package api

import (
	"encoding/json"
	"fmt"
	"mime"
	"path/filepath"
	"strconv"
	"time"

	"github.com/matheus3301/msgarchive/internal/store"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// TimeLayout is the ISO-8601 form used for every timestamp on the wire.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// Handle is a participant or sender.
type Handle struct {
	ID         string `json:"id"`
	Identifier string `json:"identifier"`
	Service    string `json:"service,omitempty"`
}

// Chat is the wire form of store.Chat.
type Chat struct {
	ID            string   `json:"id"`
	GUID          string   `json:"guid"`
	Identifier    string   `json:"identifier,omitempty"`
	DisplayName   string   `json:"displayName,omitempty"`
	IsGroup       bool     `json:"isGroup"`
	Participants  []Handle `json:"participants"`
	LastMessage   string   `json:"lastMessage,omitempty"`
	LastMessageAt string   `json:"lastMessageAt,omitempty"`
}

// Message is the wire form of store.Message.
type Message struct {
	ID             string  `json:"id"`
	GUID           string  `json:"guid"`
	Text           string  `json:"text"`
	Timestamp      string  `json:"timestamp,omitempty"`
	FromMe         bool    `json:"fromMe"`
	ChatID         string  `json:"chatId,omitempty"`
	Sender         *Handle `json:"sender,omitempty"`
	HasAttachments bool    `json:"hasAttachments"`
}

// Attachment is the wire form of store.Attachment.
type Attachment struct {
	ID        string `json:"id"`
	GUID      string `json:"guid"`
	Path      string `json:"path"`
	MIMEType  string `json:"mimeType,omitempty"`
	Filename  string `json:"filename,omitempty"`
	Size      *int64 `json:"size,omitempty"`
	MessageID string `json:"messageId,omitempty"`
}

// Status describes the daemon and its archive.
type Status struct {
	Profile     string `json:"profile"`
	State       string `json:"state"`
	Detail      string `json:"detail,omitempty"`
	Since       string `json:"since"`
	UptimeMs    int64  `json:"uptimeMs"`
	ArchivePath string `json:"archivePath"`
	// LatestMessageID is the newest message the daemon has seen. It
	// changes whenever messages arrive, empty until the first poll.
	LatestMessageID string `json:"latestMessageId,omitempty"`
}

// ListChatsRequest asks for the most recently active chats.
type ListChatsRequest struct {
	Limit int `json:"limit,omitempty"`
}

// GetRequest addresses a single record.
type GetRequest struct {
	ID string `json:"id"`
}

// MessageQuery filters ListMessages and SearchMessages. Timestamps are
// RFC 3339 or YYYY-MM-DD and both bounds are exclusive.
type MessageQuery struct {
	ChatID  string `json:"chatId,omitempty"`
	Contact string `json:"contact,omitempty"`
	After   string `json:"after,omitempty"`
	Before  string `json:"before,omitempty"`
	FromMe  *bool  `json:"fromMe,omitempty"`
	Query   string `json:"query,omitempty"`
	Limit   int    `json:"limit,omitempty"`
}

// AttachmentQuery filters ListAttachments.
type AttachmentQuery struct {
	MessageID string `json:"messageId,omitempty"`
	ChatID    string `json:"chatId,omitempty"`
	Limit     int    `json:"limit,omitempty"`
}

// ChatList is the ListChats response.
type ChatList struct {
	Chats []Chat `json:"chats"`
}

// ChatReply is the GetChat response.
type ChatReply struct {
	Chat Chat `json:"chat"`
}

// MessageList is the ListMessages and SearchMessages response.
type MessageList struct {
	Messages []Message `json:"messages"`
}

// MessageReply is the GetMessage response.
type MessageReply struct {
	Message Message `json:"message"`
}

// AttachmentList is the ListAttachments response.
type AttachmentList struct {
	Attachments []Attachment `json:"attachments"`
}

// AttachmentReply is the GetAttachment response.
type AttachmentReply struct {
	Attachment Attachment `json:"attachment"`
}

// Encode converts a wire value into the Struct carried by the service.
func Encode(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return out, nil
}

// Decode fills v from a Struct payload. A nil payload leaves v untouched.
func Decode(in *structpb.Struct, v any) error {
	if in == nil {
		return nil
	}
	b, err := protojson.Marshal(in)
	if err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}

// FormatTime renders t for the wire; the zero time is absent.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(TimeLayout)
}

func formatID(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}

func handleToWire(h store.Handle) Handle {
	return Handle{ID: formatID(h.ID), Identifier: h.Identifier, Service: h.Service}
}

func chatToWire(c *store.Chat) Chat {
	out := Chat{
		ID:            formatID(c.ID),
		GUID:          c.GUID,
		Identifier:    c.Identifier,
		DisplayName:   c.DisplayName,
		IsGroup:       c.IsGroup,
		Participants:  make([]Handle, 0, len(c.Participants)),
		LastMessage:   c.LastMessageText,
		LastMessageAt: FormatTime(c.LastMessageAt),
	}
	for _, h := range c.Participants {
		out.Participants = append(out.Participants, handleToWire(h))
	}
	return out
}

func messageToWire(m *store.Message) Message {
	out := Message{
		ID:             formatID(m.ID),
		GUID:           m.GUID,
		Text:           m.Text,
		Timestamp:      FormatTime(m.Timestamp),
		FromMe:         m.FromMe,
		ChatID:         formatID(m.ChatID),
		HasAttachments: m.HasAttachments,
	}
	if m.Sender != nil {
		h := handleToWire(*m.Sender)
		out.Sender = &h
	}
	return out
}

func attachmentToWire(a *store.Attachment) Attachment {
	mimeType := a.MIMEType
	if mimeType == "" {
		mimeType = guessMIMEType(a.Filename, a.Path)
	}
	return Attachment{
		ID:        formatID(a.ID),
		GUID:      a.GUID,
		Path:      a.Path,
		MIMEType:  mimeType,
		Filename:  a.Filename,
		Size:      a.Size,
		MessageID: formatID(a.MessageID),
	}
}

// guessMIMEType derives a type from the first name with a known extension.
func guessMIMEType(names ...string) string {
	for _, n := range names {
		if ext := filepath.Ext(n); ext != "" {
			if t := mime.TypeByExtension(ext); t != "" {
				return t
			}
		}
	}
	return ""
}
