// Package fixture builds writable databases shaped like the message archive,
// for tests and local demos. The archive itself is never written through
// this package.
package fixture

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	"github.com/matheus3301/msgarchive/internal/store/fixture/migrations"
	_ "github.com/mattn/go-sqlite3"
)

// Chat style codes as stored in the archive.
const (
	StyleGroup  = 43
	StyleDirect = 45
)

// Service labels as stored in the handle table.
const (
	ServiceIMessage = "iMessage"
	ServiceSMS      = "SMS"
)

// Archive is a writable archive-shaped database.
type Archive struct {
	*sql.DB
}

// Create makes a new archive database at path and applies the schema.
func Create(path string) (*Archive, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open fixture: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping fixture: %w", err)
	}

	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration source: %w", err)
	}
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration instance: %w", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		_ = db.Close()
		return nil, fmt.Errorf("migration up: %w", err)
	}
	return &Archive{db}, nil
}

// AddHandle inserts a participant identity and returns its row id.
func (a *Archive) AddHandle(identifier, service string) (int64, error) {
	res, err := a.Exec(`INSERT INTO handle (id, service) VALUES (?, ?)`, identifier, service)
	if err != nil {
		return 0, fmt.Errorf("insert handle %q: %w", identifier, err)
	}
	return res.LastInsertId()
}

// ChatSpec describes a chat row and its participants.
type ChatSpec struct {
	GUID        string
	Identifier  string
	DisplayName string
	Style       int
	Handles     []int64
}

// AddChat inserts a chat with its participant joins.
func (a *Archive) AddChat(c ChatSpec) (int64, error) {
	if c.GUID == "" {
		c.GUID = "iMessage;-;" + c.Identifier
	}
	if c.Style == 0 {
		c.Style = StyleDirect
	}
	tx, err := a.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(`
		INSERT INTO chat (guid, style, chat_identifier, display_name, service_name)
		VALUES (?, ?, ?, ?, 'iMessage')`,
		c.GUID, c.Style, nullString(c.Identifier), nullString(c.DisplayName))
	if err != nil {
		return 0, fmt.Errorf("insert chat %q: %w", c.GUID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	for _, h := range c.Handles {
		if _, err := tx.Exec(`INSERT INTO chat_handle_join (chat_id, handle_id) VALUES (?, ?)`, id, h); err != nil {
			return 0, fmt.Errorf("join handle %d: %w", h, err)
		}
	}
	return id, tx.Commit()
}

// MessageSpec describes a message row. Date is in archive units. An empty
// Text is stored as NULL.
type MessageSpec struct {
	GUID           string
	ChatID         int64
	Text           string
	Body           []byte
	Date           int64
	FromMe         bool
	HandleID       int64
	HasAttachments bool
}

// AddMessage inserts a message and links it to its chat.
func (a *Archive) AddMessage(m MessageSpec) (int64, error) {
	if m.GUID == "" {
		m.GUID = strings.ToUpper(uuid.NewString())
	}
	tx, err := a.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(`
		INSERT INTO message (guid, text, attributedBody, date, is_from_me, handle_id, cache_has_attachments)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.GUID, nullString(m.Text), nullBytes(m.Body), m.Date, m.FromMe, m.HandleID, m.HasAttachments)
	if err != nil {
		return 0, fmt.Errorf("insert message %q: %w", m.GUID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if m.ChatID != 0 {
		if _, err := tx.Exec(`
			INSERT INTO chat_message_join (chat_id, message_id, message_date) VALUES (?, ?, ?)`,
			m.ChatID, id, m.Date); err != nil {
			return 0, fmt.Errorf("join chat %d: %w", m.ChatID, err)
		}
	}
	return id, tx.Commit()
}

// LinkMessage joins an existing message to another chat, as the archive does
// for threads merged across services.
func (a *Archive) LinkMessage(chatID, messageID, date int64) error {
	if _, err := a.Exec(`
		INSERT INTO chat_message_join (chat_id, message_id, message_date) VALUES (?, ?, ?)`,
		chatID, messageID, date); err != nil {
		return fmt.Errorf("join chat %d: %w", chatID, err)
	}
	return nil
}

// AttachmentSpec describes an attachment row.
type AttachmentSpec struct {
	GUID         string
	MessageID    int64
	Path         string
	MIMEType     string
	TransferName string
	TotalBytes   int64
}

// AddAttachment inserts an attachment and links it to its message.
func (a *Archive) AddAttachment(at AttachmentSpec) (int64, error) {
	if at.GUID == "" {
		at.GUID = strings.ToUpper(uuid.NewString())
	}
	tx, err := a.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var total any
	if at.TotalBytes > 0 {
		total = at.TotalBytes
	}
	res, err := tx.Exec(`
		INSERT INTO attachment (guid, filename, mime_type, transfer_name, total_bytes)
		VALUES (?, ?, ?, ?, ?)`,
		at.GUID, nullString(at.Path), nullString(at.MIMEType), nullString(at.TransferName), total)
	if err != nil {
		return 0, fmt.Errorf("insert attachment %q: %w", at.GUID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if at.MessageID != 0 {
		if _, err := tx.Exec(`
			INSERT INTO message_attachment_join (message_id, attachment_id) VALUES (?, ?)`,
			at.MessageID, id); err != nil {
			return 0, fmt.Errorf("join message %d: %w", at.MessageID, err)
		}
	}
	return id, tx.Commit()
}

// AttributedBody builds a serialized body blob carrying text, laid out the
// way current archives store it.
func AttributedBody(text string) []byte {
	var b []byte
	b = append(b, "\x04\x0bstreamtyped\x81\xe8\x03\x84\x01@\x84\x84\x84"...)
	b = append(b, "\x12NSAttributedString\x00\x84\x84\x08NSObject\x00\x85\x92\x84\x84\x84"...)
	b = append(b, "\x08NSString\x01\x94\x84\x01\x2b"...)
	b = appendLength(b, len(text))
	b = append(b, text...)
	b = append(b, "\x86\x84\x02iI\x01\x01\x92\x84\x84\x84\x0cNSDictionary\x00\x86\x86"...)
	return b
}

func appendLength(b []byte, n int) []byte {
	switch {
	case n < 0x80:
		return append(b, byte(n))
	case n <= 0xffff:
		return binary.LittleEndian.AppendUint16(append(b, 0x81), uint16(n))
	default:
		return binary.LittleEndian.AppendUint32(append(b, 0x82), uint32(n))
	}
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}
