package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/matheus3301/msgarchive/internal/contacts"
	"go.uber.org/zap"
)

// ErrNoContactResolver is returned when a contact filter is used without a
// configured resolver.
var ErrNoContactResolver = errors.New("contact filtering requires a contact resolver")

// ChatIDsForContact returns the ids of chats that include any phone number
// or email of the contacts matching name. No matching contact, or no chat
// with their identifiers, yields an empty result without error.
func (db *DB) ChatIDsForContact(ctx context.Context, name string) ([]int64, error) {
	if db.contacts == nil {
		return nil, ErrNoContactResolver
	}
	found, err := db.contacts.Resolve(ctx, contacts.Query{Name: name})
	if err != nil {
		return nil, fmt.Errorf("resolve contact %q: %w", name, err)
	}
	if len(found) == 0 {
		db.logger.Debug("no contacts match", zap.String("name", name))
		return nil, nil
	}

	phones, emails := contacts.Identifiers(found)
	var handles []string
	for _, p := range phones {
		handles = append(handles, phoneVariants(p)...)
	}
	if len(handles) == 0 && len(emails) == 0 {
		return nil, nil
	}
	return db.chatIDsForHandles(ctx, handles, emails)
}

func (db *DB) chatIDsForHandles(ctx context.Context, handles, emails []string) ([]int64, error) {
	var (
		conds []string
		args  []any
	)
	if len(handles) > 0 {
		conds = append(conds, "h.id IN ("+placeholders(len(handles))+")")
		for _, h := range handles {
			args = append(args, h)
		}
	}
	if len(emails) > 0 {
		conds = append(conds, "LOWER(h.id) IN ("+placeholders(len(emails))+")")
		for _, e := range emails {
			args = append(args, e)
		}
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	conn, err := db.connLocked(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := conn.QueryContext(ctx, `
		SELECT DISTINCT chj.chat_id
		FROM chat_handle_join chj
		JOIN handle h ON h.ROWID = chj.handle_id
		WHERE `+strings.Join(conds, " OR ")+`
		ORDER BY chj.chat_id`, args...)
	if err != nil {
		return nil, fmt.Errorf("chats for contact: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// phoneVariants lists the spellings a phone number may have in the handle
// table: as given, digits only, E.164 with "+", and with the North American
// country code added to ten-digit numbers.
func phoneVariants(phone string) []string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()

	out := []string{phone}
	add := func(v string) {
		for _, existing := range out {
			if existing == v {
				return
			}
		}
		out = append(out, v)
	}
	if d == "" {
		return out
	}
	add(d)
	add("+" + d)
	if len(d) == 10 {
		add("+1" + d)
	}
	if len(d) == 11 && d[0] == '1' {
		add(d[1:])
	}
	return out
}
