package bus

import (
	"testing"
	"time"
)

func TestPublishSubscribe(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("archive.", 10)
	defer unsub()

	b.Publish(Event{Kind: KindStatusChanged, Payload: "test"})

	select {
	case evt := <-ch:
		if evt.Kind != KindStatusChanged {
			t.Errorf("got kind %q, want %s", evt.Kind, KindStatusChanged)
		}
		if evt.Timestamp.IsZero() {
			t.Error("Publish should stamp events without a timestamp")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestNamespaceFiltering(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("api.", 10)
	defer unsub()

	b.Publish(Event{Kind: KindStatusChanged})
	b.Publish(Event{Kind: KindRequest})

	select {
	case evt := <-ch:
		if evt.Kind != KindRequest {
			t.Errorf("got kind %q, want %s", evt.Kind, KindRequest)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}

	select {
	case evt := <-ch:
		t.Errorf("unexpected event: %v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("archive.", 10)
	unsub()
	unsub()

	b.Publish(Event{Kind: KindStatusChanged})

	if _, ok := <-ch; ok {
		t.Error("received event after unsubscribe")
	}
}

func TestDropOnFullBuffer(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("test.", 1)
	defer unsub()

	b.Publish(Event{Kind: "test.one"})
	b.Publish(Event{Kind: "test.two"})

	evt := <-ch
	if evt.Kind != "test.one" {
		t.Errorf("got %q, want test.one", evt.Kind)
	}
}

func TestClose(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("", 1)
	b.Close()
	b.Close()
	unsub()

	if _, ok := <-ch; ok {
		t.Error("subscriber channel should be closed")
	}

	b.Publish(Event{Kind: KindRequest})
	late, _ := b.Subscribe("", 1)
	if _, ok := <-late; ok {
		t.Error("subscribe after Close should return a closed channel")
	}
}
