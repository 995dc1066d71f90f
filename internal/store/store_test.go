package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/matheus3301/msgarchive/internal/contacts"
	"github.com/matheus3301/msgarchive/internal/store/fixture"
)

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func at(d time.Duration) int64 {
	return ToArchiveTime(base.Add(d))
}

// fakeResolver returns canned contacts and records the queries it saw.
type fakeResolver struct {
	contacts []contacts.Contact
	err      error
	queries  []contacts.Query
}

func (f *fakeResolver) Resolve(_ context.Context, q contacts.Query) ([]contacts.Contact, error) {
	f.queries = append(f.queries, q)
	return f.contacts, f.err
}

// seeded holds the row ids of the standard test archive.
type seeded struct {
	alice, bob, carol int64 // handles
	direct, group     int64 // chats
	m1, m2, m3, m4    int64 // messages
	photo             int64 // attachment
}

// testArchive builds a small archive:
//
//	direct chat with Alice (+15551234567): m1 from Alice, m2 from me (blob only)
//	group chat "Trip" with Bob and Carol: m3 from Bob, m4 from me with a photo
func testArchive(t *testing.T) (string, seeded) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chat.db")
	a, err := fixture.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = a.Close() })

	var s seeded
	must := func(id int64, err error) int64 {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
		return id
	}
	s.alice = must(a.AddHandle("+15551234567", fixture.ServiceIMessage))
	s.bob = must(a.AddHandle("bob@example.com", fixture.ServiceIMessage))
	s.carol = must(a.AddHandle("+15559876543", fixture.ServiceSMS))

	s.direct = must(a.AddChat(fixture.ChatSpec{Identifier: "+15551234567", Style: fixture.StyleDirect, Handles: []int64{s.alice}}))
	s.group = must(a.AddChat(fixture.ChatSpec{GUID: "iMessage;+;chat123", Identifier: "chat123", DisplayName: "Trip", Style: fixture.StyleGroup, Handles: []int64{s.bob, s.carol}}))

	s.m1 = must(a.AddMessage(fixture.MessageSpec{ChatID: s.direct, Text: "Hello from Alice", Date: at(0), HandleID: s.alice}))
	s.m2 = must(a.AddMessage(fixture.MessageSpec{ChatID: s.direct, Body: fixture.AttributedBody("Recovered Reply"), Date: at(time.Minute), FromMe: true, HandleID: s.alice}))
	s.m3 = must(a.AddMessage(fixture.MessageSpec{ChatID: s.group, Text: "who has the 100% plan_b?", Date: at(2 * time.Minute), HandleID: s.bob}))
	s.m4 = must(a.AddMessage(fixture.MessageSpec{ChatID: s.group, Text: "photo attached", Date: at(3 * time.Minute), FromMe: true, HasAttachments: true}))

	s.photo = must(a.AddAttachment(fixture.AttachmentSpec{MessageID: s.m4, Path: "~/Library/Messages/Attachments/ab/IMG_0001.heic", MIMEType: "image/heic", TransferName: "IMG_0001.heic", TotalBytes: 2048}))
	return path, s
}

func testDB(t *testing.T, path string, opts ...Option) *DB {
	t.Helper()
	db, err := New(path, opts...)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestListChatsGroupFlagAndOrder(t *testing.T) {
	path, s := testArchive(t)
	db := testDB(t, path)

	chats, err := db.ListChats(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(chats) != 2 {
		t.Fatalf("got %d chats, want 2", len(chats))
	}
	// The group chat has the newest message.
	if chats[0].ID != s.group || !chats[0].IsGroup {
		t.Errorf("chats[0] = %+v, want group chat first with IsGroup", chats[0])
	}
	if chats[1].ID != s.direct || chats[1].IsGroup {
		t.Errorf("chats[1] = %+v, want direct chat with IsGroup=false", chats[1])
	}
	if chats[0].DisplayName != "Trip" {
		t.Errorf("display name = %q, want Trip", chats[0].DisplayName)
	}
	if got := len(chats[0].Participants); got != 2 {
		t.Errorf("group participants = %d, want 2", got)
	}
	if chats[0].Participants[1].Service != fixture.ServiceSMS {
		t.Errorf("participant service = %q, want SMS", chats[0].Participants[1].Service)
	}
}

func TestListChatsLastMessageFromBlob(t *testing.T) {
	path, _ := testArchive(t)
	db := testDB(t, path)

	chats, err := db.ListChats(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	direct := chats[1]
	if direct.LastMessageText != "Recovered Reply" {
		t.Errorf("last message = %q, want Recovered Reply", direct.LastMessageText)
	}
	if want := base.Add(time.Minute); !direct.LastMessageAt.Equal(want) {
		t.Errorf("last message at = %v, want %v", direct.LastMessageAt, want)
	}
}

func TestListChatsLimit(t *testing.T) {
	path, _ := testArchive(t)
	db := testDB(t, path)

	chats, err := db.ListChats(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(chats) != 1 {
		t.Errorf("got %d chats, want 1", len(chats))
	}
}

func TestGetChat(t *testing.T) {
	path, s := testArchive(t)
	db := testDB(t, path)

	c, err := db.GetChat(context.Background(), s.direct)
	if err != nil {
		t.Fatal(err)
	}
	if c == nil || c.Identifier != "+15551234567" || len(c.Participants) != 1 {
		t.Fatalf("GetChat() = %+v, want direct chat with one participant", c)
	}
	if c.LastMessageText != "Recovered Reply" {
		t.Errorf("last message = %q", c.LastMessageText)
	}

	missing, err := db.GetChat(context.Background(), 9999)
	if err != nil {
		t.Fatal(err)
	}
	if missing != nil {
		t.Errorf("expected nil for missing chat, got %+v", missing)
	}
}

func TestListMessagesDefaultOrder(t *testing.T) {
	path, s := testArchive(t)
	db := testDB(t, path)

	msgs, err := db.ListMessages(context.Background(), MessageFilter{})
	if err != nil {
		t.Fatal(err)
	}
	want := []int64{s.m4, s.m3, s.m2, s.m1}
	if len(msgs) != len(want) {
		t.Fatalf("got %d messages, want %d", len(msgs), len(want))
	}
	for i, id := range want {
		if msgs[i].ID != id {
			t.Errorf("msgs[%d].ID = %d, want %d", i, msgs[i].ID, id)
		}
	}
}

func TestListMessagesFilters(t *testing.T) {
	path, s := testArchive(t)
	db := testDB(t, path)
	yes, no := true, false

	tests := []struct {
		name   string
		filter MessageFilter
		want   []int64
	}{
		{"by chat", MessageFilter{ChatID: s.direct}, []int64{s.m2, s.m1}},
		{"after", MessageFilter{After: base.Add(90 * time.Second)}, []int64{s.m4, s.m3}},
		{"before", MessageFilter{Before: base.Add(90 * time.Second)}, []int64{s.m2, s.m1}},
		{"window", MessageFilter{After: base.Add(30 * time.Second), Before: base.Add(150 * time.Second)}, []int64{s.m3, s.m2}},
		{"from me", MessageFilter{FromMe: &yes}, []int64{s.m4, s.m2}},
		{"not from me", MessageFilter{FromMe: &no}, []int64{s.m3, s.m1}},
		{"query plain text", MessageFilter{Query: "hello"}, []int64{s.m1}},
		{"query is ascii case-insensitive", MessageFilter{Query: "HELLO FROM"}, []int64{s.m1}},
		{"query matches blob text", MessageFilter{Query: "recovered"}, []int64{s.m2}},
		{"query wildcards are literal", MessageFilter{Query: "100%"}, []int64{s.m3}},
		{"query underscore is literal", MessageFilter{Query: "plan_b"}, []int64{s.m3}},
		{"query no match", MessageFilter{Query: "nothing like this"}, nil},
		{"chat and from me", MessageFilter{ChatID: s.group, FromMe: &yes}, []int64{s.m4}},
		{"limit", MessageFilter{Limit: 1}, []int64{s.m4}},
		{"limit with query", MessageFilter{Query: "o", Limit: 2}, []int64{s.m4, s.m3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msgs, err := db.ListMessages(context.Background(), tt.filter)
			if err != nil {
				t.Fatal(err)
			}
			if len(msgs) != len(tt.want) {
				t.Fatalf("got %d messages, want %d", len(msgs), len(tt.want))
			}
			for i, id := range tt.want {
				if msgs[i].ID != id {
					t.Errorf("msgs[%d].ID = %d, want %d", i, msgs[i].ID, id)
				}
			}
		})
	}
}

func TestQueryDoesNotFoldNonASCII(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.db")
	a, err := fixture.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = a.Close() })
	chat, _ := a.AddChat(fixture.ChatSpec{Identifier: "x@example.com"})
	if _, err := a.AddMessage(fixture.MessageSpec{ChatID: chat, Text: "ÉCOLE", Date: at(0)}); err != nil {
		t.Fatal(err)
	}
	db := testDB(t, path)

	msgs, err := db.SearchMessages(context.Background(), MessageFilter{Query: "école"})
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 0 {
		t.Errorf("non-ASCII letters should not fold, got %d matches", len(msgs))
	}
	msgs, err = db.SearchMessages(context.Background(), MessageFilter{Query: "École"})
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 1 {
		t.Errorf("ASCII letters should fold, got %d matches", len(msgs))
	}
}

func TestSearchMessagesRequiresQuery(t *testing.T) {
	path, _ := testArchive(t)
	db := testDB(t, path)

	_, err := db.SearchMessages(context.Background(), MessageFilter{Query: "  "})
	if !errors.Is(err, ErrEmptyQuery) {
		t.Errorf("error = %v, want ErrEmptyQuery", err)
	}
}

func TestGetMessage(t *testing.T) {
	path, s := testArchive(t)
	db := testDB(t, path)
	ctx := context.Background()

	m, err := db.GetMessage(ctx, s.m1)
	if err != nil {
		t.Fatal(err)
	}
	if m == nil || m.Text != "Hello from Alice" || m.ChatID != s.direct {
		t.Fatalf("GetMessage() = %+v", m)
	}
	if m.Sender == nil || m.Sender.Identifier != "+15551234567" {
		t.Errorf("sender = %+v, want Alice", m.Sender)
	}
	if !m.Timestamp.Equal(base) {
		t.Errorf("timestamp = %v, want %v", m.Timestamp, base)
	}

	// Outgoing messages carry the recipient in handle_id; it is not a sender.
	mine, err := db.GetMessage(ctx, s.m2)
	if err != nil {
		t.Fatal(err)
	}
	if mine.Sender != nil {
		t.Errorf("sender = %+v, want nil for from-me message", mine.Sender)
	}
	if mine.Text != "Recovered Reply" {
		t.Errorf("text = %q, want Recovered Reply", mine.Text)
	}

	withPhoto, err := db.GetMessage(ctx, s.m4)
	if err != nil {
		t.Fatal(err)
	}
	if !withPhoto.HasAttachments {
		t.Error("expected HasAttachments")
	}

	missing, err := db.GetMessage(ctx, 9999)
	if err != nil {
		t.Fatal(err)
	}
	if missing != nil {
		t.Errorf("expected nil for missing message")
	}
}

func TestListMessagesContactNoContacts(t *testing.T) {
	path, _ := testArchive(t)
	r := &fakeResolver{}
	db := testDB(t, path, WithContactResolver(r))

	msgs, err := db.ListMessages(context.Background(), MessageFilter{ContactName: "Nobody"})
	if err != nil {
		t.Fatalf("ListMessages() error = %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("got %d messages, want 0", len(msgs))
	}
	if len(r.queries) != 1 || r.queries[0].Name != "Nobody" {
		t.Errorf("resolver queries = %+v, want one name query", r.queries)
	}
}

func TestListMessagesContactPhoneMatchesNoChat(t *testing.T) {
	path, _ := testArchive(t)
	r := &fakeResolver{contacts: []contacts.Contact{
		{FullName: "Dave", Phones: []contacts.Labeled{{Label: "mobile", Value: "+1 (555) 000-0000"}}},
	}}
	db := testDB(t, path, WithContactResolver(r))

	msgs, err := db.ListMessages(context.Background(), MessageFilter{ContactName: "Dave"})
	if err != nil {
		t.Fatalf("ListMessages() error = %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("got %d messages, want 0", len(msgs))
	}
}

func TestListMessagesContactMatchesFormattedPhone(t *testing.T) {
	path, s := testArchive(t)
	r := &fakeResolver{contacts: []contacts.Contact{
		{FullName: "Alice", Phones: []contacts.Labeled{{Label: "mobile", Value: "(555) 123-4567"}}},
	}}
	db := testDB(t, path, WithContactResolver(r))

	msgs, err := db.ListMessages(context.Background(), MessageFilter{ContactName: "Alice"})
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 2 || msgs[0].ID != s.m2 || msgs[1].ID != s.m1 {
		t.Errorf("got %+v, want messages of the direct chat", msgs)
	}
}

func TestListMessagesContactMatchesEmailAndOtherFilters(t *testing.T) {
	path, s := testArchive(t)
	r := &fakeResolver{contacts: []contacts.Contact{
		{FullName: "Bob", Emails: []contacts.Labeled{{Label: "home", Value: "BOB@example.com"}}},
	}}
	db := testDB(t, path, WithContactResolver(r))
	no := false

	msgs, err := db.ListMessages(context.Background(), MessageFilter{ContactName: "Bob", FromMe: &no})
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 1 || msgs[0].ID != s.m3 {
		t.Errorf("got %+v, want only m3", msgs)
	}

	// A chat id outside the contact's chats intersects to nothing.
	msgs, err = db.ListMessages(context.Background(), MessageFilter{ContactName: "Bob", ChatID: s.direct})
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 0 {
		t.Errorf("got %d messages, want 0", len(msgs))
	}
}

func TestListMessagesContactResolverError(t *testing.T) {
	path, _ := testArchive(t)
	boom := errors.New("helper crashed")
	db := testDB(t, path, WithContactResolver(&fakeResolver{err: boom}))

	_, err := db.ListMessages(context.Background(), MessageFilter{ContactName: "Alice"})
	if !errors.Is(err, boom) {
		t.Errorf("error = %v, want wrapped resolver error", err)
	}
}

func TestListMessagesContactWithoutResolver(t *testing.T) {
	path, _ := testArchive(t)
	db := testDB(t, path)

	_, err := db.ListMessages(context.Background(), MessageFilter{ContactName: "Alice"})
	if !errors.Is(err, ErrNoContactResolver) {
		t.Errorf("error = %v, want ErrNoContactResolver", err)
	}
}

func TestAttachments(t *testing.T) {
	path, s := testArchive(t)
	db := testDB(t, path)
	ctx := context.Background()

	byChat, err := db.ListAttachments(ctx, AttachmentFilter{ChatID: s.group})
	if err != nil {
		t.Fatal(err)
	}
	if len(byChat) != 1 || byChat[0].ID != s.photo {
		t.Fatalf("by chat = %+v, want the photo", byChat)
	}
	a := byChat[0]
	if a.MessageID != s.m4 || a.MIMEType != "image/heic" || a.Filename != "IMG_0001.heic" {
		t.Errorf("attachment = %+v", a)
	}
	if a.Size == nil || *a.Size != 2048 {
		t.Errorf("size = %v, want 2048", a.Size)
	}
	if filepath.Base(a.Path) != "IMG_0001.heic" || a.Path[0] == '~' {
		t.Errorf("path = %q, want home-expanded path", a.Path)
	}

	none, err := db.ListAttachments(ctx, AttachmentFilter{ChatID: s.direct})
	if err != nil {
		t.Fatal(err)
	}
	if len(none) != 0 {
		t.Errorf("direct chat attachments = %d, want 0", len(none))
	}

	byMsg, err := db.ListAttachments(ctx, AttachmentFilter{MessageID: s.m4})
	if err != nil {
		t.Fatal(err)
	}
	if len(byMsg) != 1 {
		t.Errorf("by message = %d, want 1", len(byMsg))
	}

	got, err := db.GetAttachment(ctx, s.photo)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.GUID != a.GUID {
		t.Errorf("GetAttachment() = %+v", got)
	}
	missing, err := db.GetAttachment(ctx, 9999)
	if err != nil {
		t.Fatal(err)
	}
	if missing != nil {
		t.Error("expected nil for missing attachment")
	}
}

func TestTextCache(t *testing.T) {
	path, s := testArchive(t)
	db := testDB(t, path, WithTextCacheSize(8))

	if _, err := db.GetMessage(context.Background(), s.m2); err != nil {
		t.Fatal(err)
	}
	if text, ok := db.texts.Get(s.m2); !ok || text != "Recovered Reply" {
		t.Errorf("cache entry = (%q, %v), want recovered text", text, ok)
	}
	// Plain-text rows never enter the cache.
	if _, ok := db.texts.Get(s.m1); ok {
		t.Error("plain-text message should not be cached")
	}

	uncached := testDB(t, path, WithTextCacheSize(0))
	m, err := uncached.GetMessage(context.Background(), s.m2)
	if err != nil {
		t.Fatal(err)
	}
	if m.Text != "Recovered Reply" {
		t.Errorf("text = %q without cache", m.Text)
	}
}

func TestPhoneVariants(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"(555) 123-4567", []string{"(555) 123-4567", "5551234567", "+5551234567", "+15551234567"}},
		{"+15551234567", []string{"+15551234567", "15551234567", "5551234567"}},
		{"+44 20 7946 0958", []string{"+44 20 7946 0958", "442079460958", "+442079460958"}},
		{"n/a", []string{"n/a"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := phoneVariants(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("phoneVariants(%q) = %v, want %v", tt.in, got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("phoneVariants(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestMessageInTwoChatsListedOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.db")
	a, err := fixture.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = a.Close() })

	h, err := a.AddHandle("+15551234567", fixture.ServiceIMessage)
	if err != nil {
		t.Fatal(err)
	}
	imsg, err := a.AddChat(fixture.ChatSpec{Identifier: "+15551234567", Handles: []int64{h}})
	if err != nil {
		t.Fatal(err)
	}
	sms, err := a.AddChat(fixture.ChatSpec{GUID: "SMS;-;+15551234567", Identifier: "+15551234567", Handles: []int64{h}})
	if err != nil {
		t.Fatal(err)
	}
	shared, err := a.AddMessage(fixture.MessageSpec{ChatID: imsg, Text: "see you there", Date: at(0), HandleID: h})
	if err != nil {
		t.Fatal(err)
	}
	if err := a.LinkMessage(sms, shared, at(0)); err != nil {
		t.Fatal(err)
	}
	if _, err := a.AddMessage(fixture.MessageSpec{ChatID: sms, Text: "running late", Date: at(time.Minute), HandleID: h}); err != nil {
		t.Fatal(err)
	}

	db := testDB(t, path)
	ctx := context.Background()

	all, err := db.ListMessages(ctx, MessageFilter{Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || all[0].Text != "running late" || all[1].ID != shared {
		t.Fatalf("ListMessages() = %+v, want each message once", all)
	}
	if all[1].ChatID != imsg {
		t.Errorf("shared message ChatID = %d, want lowest chat %d", all[1].ChatID, imsg)
	}

	inSMS, err := db.ListMessages(ctx, MessageFilter{ChatID: sms})
	if err != nil {
		t.Fatal(err)
	}
	if len(inSMS) != 2 {
		t.Fatalf("chat filter returned %d messages, want 2", len(inSMS))
	}
	for _, m := range inSMS {
		if m.ChatID != sms {
			t.Errorf("message %d ChatID = %d, want filtered chat %d", m.ID, m.ChatID, sms)
		}
	}

	found, err := db.SearchMessages(ctx, MessageFilter{Query: "SEE YOU"})
	if err != nil {
		t.Fatal(err)
	}
	if len(found) != 1 || found[0].ID != shared {
		t.Errorf("SearchMessages() = %+v, want the shared message once", found)
	}
}

func TestSearchPlainTextTakesPrecedenceOverBlob(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.db")
	a, err := fixture.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = a.Close() })

	chat, err := a.AddChat(fixture.ChatSpec{Identifier: "+15551234567"})
	if err != nil {
		t.Fatal(err)
	}
	both, err := a.AddMessage(fixture.MessageSpec{ChatID: chat, Text: "plain words", Body: fixture.AttributedBody("hidden treasure"), Date: at(0)})
	if err != nil {
		t.Fatal(err)
	}
	blank, err := a.AddMessage(fixture.MessageSpec{ChatID: chat, Text: " \n", Body: fixture.AttributedBody("hidden treasure map"), Date: at(time.Minute)})
	if err != nil {
		t.Fatal(err)
	}

	db := testDB(t, path)
	ctx := context.Background()

	got, err := db.SearchMessages(ctx, MessageFilter{Query: "treasure"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != blank || got[0].Text != "hidden treasure map" {
		t.Errorf("SearchMessages(treasure) = %+v, want only the blank-text row %d", got, blank)
	}

	got, err = db.SearchMessages(ctx, MessageFilter{Query: "plain"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != both {
		t.Errorf("SearchMessages(plain) = %+v, want row %d", got, both)
	}
}
