package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/matheus3301/msgarchive/internal/store/fixture"
)

func TestArrivals(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.db")
	a, err := fixture.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = a.Close() }()

	db := testDB(t, path)
	ctx := context.Background()

	latest, err := db.LatestMessageID(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if latest != 0 {
		t.Errorf("empty archive latest = %d, want 0", latest)
	}

	alice, _ := a.AddHandle("+15551234567", fixture.ServiceIMessage)
	direct, _ := a.AddChat(fixture.ChatSpec{Identifier: "+15551234567", Style: fixture.StyleDirect, Handles: []int64{alice}})
	group, _ := a.AddChat(fixture.ChatSpec{Identifier: "chat1", Style: fixture.StyleGroup})

	first, err := a.AddMessage(fixture.MessageSpec{ChatID: direct, Text: "one", Date: at(0), HandleID: alice})
	if err != nil {
		t.Fatal(err)
	}
	if latest, _ = db.LatestMessageID(ctx); latest != first {
		t.Errorf("latest = %d, want %d", latest, first)
	}

	for _, m := range []fixture.MessageSpec{
		{ChatID: direct, Text: "two", Date: at(time.Minute), HandleID: alice},
		{ChatID: group, Text: "three", Date: at(2 * time.Minute), FromMe: true},
		{Text: "orphan", Date: at(3 * time.Minute)},
		{ChatID: direct, Text: "four", Date: at(4 * time.Minute), FromMe: true},
	} {
		if _, err := a.AddMessage(m); err != nil {
			t.Fatal(err)
		}
	}

	arrivals, err := db.ArrivalsAfter(ctx, first)
	if err != nil {
		t.Fatal(err)
	}
	if len(arrivals) != 2 {
		t.Fatalf("arrivals = %+v, want 2 chats", arrivals)
	}
	if arrivals[0].ChatID != direct || arrivals[0].Count != 2 || !arrivals[0].LatestAt.Equal(base.Add(4*time.Minute)) {
		t.Errorf("direct arrival = %+v", arrivals[0])
	}
	if arrivals[1].ChatID != group || arrivals[1].Count != 1 {
		t.Errorf("group arrival = %+v", arrivals[1])
	}

	latest, _ = db.LatestMessageID(ctx)
	if arrivals[0].LatestID != latest {
		t.Errorf("LatestID = %d, want %d", arrivals[0].LatestID, latest)
	}
	if none, err := db.ArrivalsAfter(ctx, latest); err != nil || len(none) != 0 {
		t.Errorf("after latest: %+v, %v", none, err)
	}
}
