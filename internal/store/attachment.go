package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// AttachmentFilter narrows an attachment listing.
type AttachmentFilter struct {
	MessageID int64 // 0 = any message
	ChatID    int64 // 0 = any chat
	Limit     int
}

const attachmentSelect = `
	SELECT a.ROWID, a.guid, a.filename, a.mime_type, a.transfer_name, a.total_bytes, maj.message_id
	FROM attachment a`

// ListAttachments returns attachments matching f, newest message first.
func (db *DB) ListAttachments(ctx context.Context, f AttachmentFilter) ([]Attachment, error) {
	limit := clampLimit(f.Limit)

	q := attachmentSelect + `
		JOIN message_attachment_join maj ON maj.attachment_id = a.ROWID
		JOIN message m ON m.ROWID = maj.message_id`
	var (
		where []string
		args  []any
	)
	if f.ChatID != 0 {
		q += ` JOIN chat_message_join cmj ON cmj.message_id = m.ROWID`
		where = append(where, "cmj.chat_id = ?")
		args = append(args, f.ChatID)
	}
	if f.MessageID != 0 {
		where = append(where, "maj.message_id = ?")
		args = append(args, f.MessageID)
	}
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY m.date DESC, a.ROWID DESC LIMIT ?"
	args = append(args, limit)

	db.mu.Lock()
	defer db.mu.Unlock()
	conn, err := db.connLocked(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Attachment
	for rows.Next() {
		a, err := scanAttachment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// GetAttachment returns a single attachment by id, or nil if there is none.
func (db *DB) GetAttachment(ctx context.Context, id int64) (*Attachment, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	conn, err := db.connLocked(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := conn.QueryContext(ctx, attachmentSelect+`
		LEFT JOIN message_attachment_join maj ON maj.attachment_id = a.ROWID
		WHERE a.ROWID = ?
		LIMIT 1`, id)
	if err != nil {
		return nil, fmt.Errorf("get attachment: %w", err)
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		return nil, rows.Err()
	}
	a, err := scanAttachment(rows)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func scanAttachment(rows *sql.Rows) (Attachment, error) {
	var (
		a         Attachment
		filename  sql.NullString
		mimeType  sql.NullString
		transfer  sql.NullString
		size      sql.NullInt64
		messageID sql.NullInt64
	)
	if err := rows.Scan(&a.ID, &a.GUID, &filename, &mimeType, &transfer, &size, &messageID); err != nil {
		return Attachment{}, fmt.Errorf("scan attachment: %w", err)
	}
	a.Path = expandHome(filename.String)
	a.MIMEType = mimeType.String
	a.Filename = transfer.String
	if size.Valid {
		n := size.Int64
		a.Size = &n
	}
	a.MessageID = messageID.Int64
	return a, nil
}

// expandHome resolves the "~/" prefix the archive uses for paths under the
// user's home directory.
func expandHome(p string) string {
	rest, ok := strings.CutPrefix(p, "~/")
	if !ok {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, rest)
}
