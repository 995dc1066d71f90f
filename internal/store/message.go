package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrEmptyQuery is returned by SearchMessages when no search text is given.
var ErrEmptyQuery = errors.New("search query is required")

// MessageFilter narrows a message listing. Every set field is ANDed.
type MessageFilter struct {
	ChatID      int64     // 0 = any chat
	ContactName string    // resolved through the contact resolver
	After       time.Time // exclusive lower bound; zero = unbounded
	Before      time.Time // exclusive upper bound; zero = unbounded
	FromMe      *bool
	Query       string // substring of the resolved text, ASCII case-insensitive
	Limit       int
}

const messageColumns = `
	SELECT m.ROWID, m.guid, m.text, m.attributedBody, m.date, m.is_from_me,
		m.cache_has_attachments, %s, h.ROWID, h.id, h.service
	FROM message m
	LEFT JOIN handle h ON h.ROWID = m.handle_id`

// blankText matches a text column that resolveText treats as absent.
const blankText = `COALESCE(TRIM(m.text, char(32, 9, 10, 11, 12, 13)), '') = ''`

// messageSelect returns the message projection with one row per message. A
// message joined to several chats reports the lowest chat id, limited to
// chats when that list is non-empty; its arguments must precede the WHERE
// arguments.
func messageSelect(chats []int64) (string, []any) {
	col := `(SELECT MIN(j.chat_id) FROM chat_message_join j WHERE j.message_id = m.ROWID`
	var args []any
	if len(chats) > 0 {
		col += ` AND j.chat_id IN (` + placeholders(len(chats)) + `)`
		for _, id := range chats {
			args = append(args, id)
		}
	}
	return fmt.Sprintf(messageColumns, col+`)`), args
}

// inChats restricts messages to those joined to one of chats.
func inChats(chats []int64) (string, []any) {
	args := make([]any, 0, len(chats))
	for _, id := range chats {
		args = append(args, id)
	}
	return `m.ROWID IN (SELECT message_id FROM chat_message_join WHERE chat_id IN (` + placeholders(len(chats)) + `))`, args
}

// ListMessages returns messages matching f, newest first.
func (db *DB) ListMessages(ctx context.Context, f MessageFilter) ([]Message, error) {
	f.Limit = clampLimit(f.Limit)

	var scope []int64
	if strings.TrimSpace(f.ContactName) != "" {
		ids, err := db.ChatIDsForContact(ctx, f.ContactName)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return nil, nil
		}
		scope = ids
	}
	return db.queryMessages(ctx, f, scope)
}

// SearchMessages is ListMessages with a mandatory search query.
func (db *DB) SearchMessages(ctx context.Context, f MessageFilter) ([]Message, error) {
	if strings.TrimSpace(f.Query) == "" {
		return nil, ErrEmptyQuery
	}
	return db.ListMessages(ctx, f)
}

// GetMessage returns a single message by id, or nil if there is none.
func (db *DB) GetMessage(ctx context.Context, id int64) (*Message, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	conn, err := db.connLocked(ctx)
	if err != nil {
		return nil, err
	}

	q, _ := messageSelect(nil)
	rows, err := conn.QueryContext(ctx, q+` WHERE m.ROWID = ? LIMIT 1`, id)
	if err != nil {
		return nil, fmt.Errorf("get message: %w", err)
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		return nil, rows.Err()
	}
	m, err := db.scanMessage(rows)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// queryMessages runs the filtered listing. scope, when non-nil, restricts
// results to those chat ids.
func (db *DB) queryMessages(ctx context.Context, f MessageFilter, scope []int64) ([]Message, error) {
	var (
		where []string
		args  []any
	)
	reported := scope
	if f.ChatID != 0 {
		reported = []int64{f.ChatID}
		cond, condArgs := inChats(reported)
		where = append(where, cond)
		args = append(args, condArgs...)
	}
	if scope != nil {
		cond, condArgs := inChats(scope)
		where = append(where, cond)
		args = append(args, condArgs...)
	}
	if !f.After.IsZero() {
		where = append(where, "m.date > ?")
		args = append(args, ToArchiveTime(f.After))
	}
	if !f.Before.IsZero() {
		where = append(where, "m.date < ?")
		args = append(args, ToArchiveTime(f.Before))
	}
	if f.FromMe != nil {
		where = append(where, "m.is_from_me = ?")
		args = append(args, *f.FromMe)
	}
	query := strings.TrimSpace(f.Query)
	if query != "" {
		// Only rows without plain text can hold a match in their blob; they
		// are decoded and matched below.
		where = append(where, `(m.text LIKE ? ESCAPE '\' OR (`+blankText+` AND m.attributedBody IS NOT NULL))`)
		args = append(args, likePattern(query))
	}

	q, selectArgs := messageSelect(reported)
	args = append(selectArgs, args...)
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY m.date DESC, m.ROWID DESC"
	if query == "" {
		q += " LIMIT ?"
		args = append(args, f.Limit)
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	conn, err := db.connLocked(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var msgs []Message
	for rows.Next() {
		m, err := db.scanMessage(rows)
		if err != nil {
			return nil, err
		}
		if query != "" && !containsFold(m.Text, query) {
			continue
		}
		msgs = append(msgs, m)
		if len(msgs) == f.Limit {
			break
		}
	}
	return msgs, rows.Err()
}

func (db *DB) scanMessage(rows *sql.Rows) (Message, error) {
	var (
		m          Message
		text       sql.NullString
		body       []byte
		date       sql.NullInt64
		fromMe     sql.NullBool
		hasAttach  sql.NullBool
		chatID     sql.NullInt64
		handleID   sql.NullInt64
		identifier sql.NullString
		service    sql.NullString
	)
	if err := rows.Scan(&m.ID, &m.GUID, &text, &body, &date, &fromMe,
		&hasAttach, &chatID, &handleID, &identifier, &service); err != nil {
		return Message{}, fmt.Errorf("scan message: %w", err)
	}
	m.FromMe = fromMe.Bool
	m.Text = db.resolveText(m.ID, text.String, body)
	m.Timestamp, _ = FromArchiveTime(date.Int64)
	m.HasAttachments = hasAttach.Bool
	m.ChatID = chatID.Int64
	if !m.FromMe && handleID.Valid {
		m.Sender = &Handle{ID: handleID.Int64, Identifier: identifier.String, Service: service.String}
	}
	return m, nil
}
