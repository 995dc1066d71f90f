package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Arrival summarizes the messages a chat gained past some row id.
type Arrival struct {
	ChatID   int64
	Count    int
	LatestID int64
	LatestAt time.Time // zero when none of the messages is dated
}

// LatestMessageID returns the highest message row id, or 0 for an empty
// archive. Row ids only grow, so it works as a change cursor.
func (db *DB) LatestMessageID(ctx context.Context) (int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	conn, err := db.connLocked(ctx)
	if err != nil {
		return 0, err
	}

	var id sql.NullInt64
	if err := conn.QueryRowContext(ctx, `SELECT MAX(ROWID) FROM message`).Scan(&id); err != nil {
		return 0, fmt.Errorf("latest message id: %w", err)
	}
	return id.Int64, nil
}

// ArrivalsAfter groups the messages with a row id above afterID by chat,
// newest chat first. Messages that belong to no chat are skipped.
func (db *DB) ArrivalsAfter(ctx context.Context, afterID int64) ([]Arrival, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	conn, err := db.connLocked(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := conn.QueryContext(ctx, `
		SELECT cmj.chat_id, COUNT(*), MAX(m.ROWID), MAX(m.date)
		FROM message m
		JOIN chat_message_join cmj ON cmj.message_id = m.ROWID
		WHERE m.ROWID > ?
		GROUP BY cmj.chat_id
		ORDER BY MAX(m.ROWID) DESC`, afterID)
	if err != nil {
		return nil, fmt.Errorf("arrivals after %d: %w", afterID, err)
	}
	defer func() { _ = rows.Close() }()

	var out []Arrival
	for rows.Next() {
		var (
			a    Arrival
			date sql.NullInt64
		)
		if err := rows.Scan(&a.ChatID, &a.Count, &a.LatestID, &date); err != nil {
			return nil, fmt.Errorf("scan arrival: %w", err)
		}
		a.LatestAt, _ = FromArchiveTime(date.Int64)
		out = append(out, a)
	}
	return out, rows.Err()
}
