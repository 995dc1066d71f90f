package store

import (
	"context"
	"database/sql"
	"fmt"
)

// chatSelect projects each chat with its latest message. SQLite fills the
// bare columns of an aggregate from the row that produced MAX(date).
const chatSelect = `
	WITH last AS (
		SELECT cmj.chat_id, m.ROWID AS message_id, m.text, m.attributedBody, MAX(m.date) AS date
		FROM chat_message_join cmj
		JOIN message m ON m.ROWID = cmj.message_id
		GROUP BY cmj.chat_id
	)
	SELECT c.ROWID, c.guid, c.chat_identifier, c.display_name, c.style,
		last.message_id, last.text, last.attributedBody, last.date
	FROM chat c
	LEFT JOIN last ON last.chat_id = c.ROWID`

// ListChats returns chats with the most recently active first.
func (db *DB) ListChats(ctx context.Context, limit int) ([]Chat, error) {
	limit = clampLimit(limit)

	db.mu.Lock()
	defer db.mu.Unlock()
	conn, err := db.connLocked(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := conn.QueryContext(ctx, chatSelect+`
		ORDER BY COALESCE(last.date, 0) DESC, c.ROWID DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var chats []Chat
	for rows.Next() {
		c, err := db.scanChat(rows)
		if err != nil {
			return nil, err
		}
		chats = append(chats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := db.loadParticipants(ctx, conn, chats); err != nil {
		return nil, err
	}
	return chats, nil
}

// GetChat returns a single chat by id, or nil if there is none.
func (db *DB) GetChat(ctx context.Context, id int64) (*Chat, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	conn, err := db.connLocked(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := conn.QueryContext(ctx, chatSelect+` WHERE c.ROWID = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("get chat: %w", err)
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		return nil, rows.Err()
	}
	c, err := db.scanChat(rows)
	if err != nil {
		return nil, err
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	chats := []Chat{c}
	if err := db.loadParticipants(ctx, conn, chats); err != nil {
		return nil, err
	}
	return &chats[0], nil
}

func (db *DB) scanChat(rows *sql.Rows) (Chat, error) {
	var (
		c           Chat
		identifier  sql.NullString
		displayName sql.NullString
		style       sql.NullInt64
		lastID      sql.NullInt64
		lastText    sql.NullString
		lastBody    []byte
		lastDate    sql.NullInt64
	)
	if err := rows.Scan(&c.ID, &c.GUID, &identifier, &displayName, &style,
		&lastID, &lastText, &lastBody, &lastDate); err != nil {
		return Chat{}, fmt.Errorf("scan chat: %w", err)
	}
	c.Identifier = identifier.String
	c.DisplayName = displayName.String
	c.IsGroup = style.Int64 == StyleGroup
	if lastID.Valid {
		c.LastMessageText = db.resolveText(lastID.Int64, lastText.String, lastBody)
		c.LastMessageAt, _ = FromArchiveTime(lastDate.Int64)
	}
	return c, nil
}

// loadParticipants fills Participants for every chat in one query.
func (db *DB) loadParticipants(ctx context.Context, conn *sql.DB, chats []Chat) error {
	if len(chats) == 0 {
		return nil
	}
	index := make(map[int64]int, len(chats))
	args := make([]any, 0, len(chats))
	for i, c := range chats {
		index[c.ID] = i
		args = append(args, c.ID)
	}

	rows, err := conn.QueryContext(ctx, `
		SELECT chj.chat_id, h.ROWID, h.id, h.service
		FROM chat_handle_join chj
		JOIN handle h ON h.ROWID = chj.handle_id
		WHERE chj.chat_id IN (`+placeholders(len(args))+`)
		ORDER BY chj.chat_id, h.ROWID`, args...)
	if err != nil {
		return fmt.Errorf("load participants: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			chatID  int64
			h       Handle
			service sql.NullString
		)
		if err := rows.Scan(&chatID, &h.ID, &h.Identifier, &service); err != nil {
			return fmt.Errorf("scan participant: %w", err)
		}
		h.Service = service.String
		if i, ok := index[chatID]; ok {
			chats[i].Participants = append(chats[i].Participants, h)
		}
	}
	return rows.Err()
}
