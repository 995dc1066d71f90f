package fixture

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/matheus3301/msgarchive/internal/typedstream"
)

func TestCreateAppliesSchema(t *testing.T) {
	a, err := Create(filepath.Join(t.TempDir(), "chat.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = a.Close() })

	for _, table := range []string{"chat", "message", "handle", "chat_message_join", "chat_handle_join", "attachment", "message_attachment_join"} {
		var n int
		if err := a.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&n); err != nil {
			t.Fatal(err)
		}
		if n != 1 {
			t.Errorf("table %s missing", table)
		}
	}
}

func TestAddRows(t *testing.T) {
	a, err := Create(filepath.Join(t.TempDir(), "chat.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = a.Close() })

	h, err := a.AddHandle("+15551234567", ServiceIMessage)
	if err != nil {
		t.Fatal(err)
	}
	chatID, err := a.AddChat(ChatSpec{Identifier: "+15551234567", Handles: []int64{h}})
	if err != nil {
		t.Fatal(err)
	}
	msgID, err := a.AddMessage(MessageSpec{ChatID: chatID, Text: "hi", Date: 1, HandleID: h, HasAttachments: true})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := a.AddAttachment(AttachmentSpec{MessageID: msgID, Path: "/tmp/a.jpg"}); err != nil {
		t.Fatal(err)
	}

	var joined int
	if err := a.QueryRow(`SELECT COUNT(*) FROM chat_message_join WHERE chat_id = ? AND message_id = ?`, chatID, msgID).Scan(&joined); err != nil {
		t.Fatal(err)
	}
	if joined != 1 {
		t.Errorf("chat_message_join rows = %d, want 1", joined)
	}
}

func TestAttributedBodyDecodes(t *testing.T) {
	for _, text := range []string{"short", strings.Repeat("x", 200), strings.Repeat("long ", 10000)} {
		got := typedstream.DecodeBlob(AttributedBody(text))
		if got != text {
			t.Errorf("DecodeBlob(AttributedBody(%d chars)) returned %d chars", len(text), len(got))
		}
	}
}
