package mcp

import "github.com/matheus3301/msgarchive/internal/api"

// StatusInput is the input for the archive_status tool.
type StatusInput struct{}

// ListChatsInput is the input for the list_chats tool.
type ListChatsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Max chats to return, most recently active first. Default 50, max 500"`
}

// GetInput addresses one record by id.
type GetInput struct {
	ID string `json:"id" jsonschema:"Record id as returned by the list tools"`
}

// MessagesInput is the input for list_messages and search_messages.
type MessagesInput struct {
	ChatID  string `json:"chat_id,omitempty" jsonschema:"Only messages of this chat"`
	Contact string `json:"contact,omitempty" jsonschema:"Only chats with this contact, matched by name in the address book"`
	After   string `json:"after,omitempty" jsonschema:"Only messages strictly after this time (RFC 3339 or YYYY-MM-DD)"`
	Before  string `json:"before,omitempty" jsonschema:"Only messages strictly before this time (RFC 3339 or YYYY-MM-DD)"`
	FromMe  *bool  `json:"from_me,omitempty" jsonschema:"true for sent messages only, false for received only"`
	Query   string `json:"query,omitempty" jsonschema:"Case-insensitive substring of the message text"`
	Limit   int    `json:"limit,omitempty" jsonschema:"Max messages to return, newest first. Default 50, max 500"`
}

// AttachmentsInput is the input for the list_attachments tool.
type AttachmentsInput struct {
	MessageID string `json:"message_id,omitempty" jsonschema:"Only attachments of this message"`
	ChatID    string `json:"chat_id,omitempty" jsonschema:"Only attachments sent in this chat"`
	Limit     int    `json:"limit,omitempty" jsonschema:"Max attachments to return. Default 50, max 500"`
}

// StatusOutput is the output for the archive_status tool.
type StatusOutput struct {
	Status api.Status `json:"status"`
}

// ChatsOutput is the output for list_chats.
type ChatsOutput struct {
	Chats []api.Chat `json:"chats"`
}

// ChatOutput is the output for get_chat.
type ChatOutput struct {
	Chat api.Chat `json:"chat"`
}

// MessagesOutput is the output for list_messages and search_messages.
type MessagesOutput struct {
	Messages []api.Message `json:"messages"`
}

// MessageOutput is the output for get_message.
type MessageOutput struct {
	Message api.Message `json:"message"`
}

// AttachmentsOutput is the output for list_attachments.
type AttachmentsOutput struct {
	Attachments []api.Attachment `json:"attachments"`
}

// AttachmentOutput is the output for get_attachment.
type AttachmentOutput struct {
	Attachment api.Attachment `json:"attachment"`
}

func (in MessagesInput) query() api.MessageQuery {
	return api.MessageQuery{
		ChatID:  in.ChatID,
		Contact: in.Contact,
		After:   in.After,
		Before:  in.Before,
		FromMe:  in.FromMe,
		Query:   in.Query,
		Limit:   in.Limit,
	}
}
