package status

import (
	"testing"

	"github.com/matheus3301/msgarchive/internal/bus"
)

func TestInitialState(t *testing.T) {
	m := NewMachine(nil)
	if m.Current() != Booting {
		t.Errorf("initial state = %s, want BOOTING", m.Current())
	}
	if m.Snapshot().Since.IsZero() {
		t.Error("initial snapshot has no timestamp")
	}
}

func TestValidTransitions(t *testing.T) {
	tests := []struct {
		from State
		to   State
	}{
		{Booting, Ready},
		{Booting, AccessDenied},
		{Booting, Error},
		{Ready, AccessDenied},
		{Ready, Error},
		{AccessDenied, Ready},
		{AccessDenied, Error},
		{Error, Booting},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			m := NewMachine(nil)
			walkTo(t, m, tt.from)
			if err := m.Transition(tt.to, ""); err != nil {
				t.Errorf("Transition(%s -> %s) error = %v", tt.from, tt.to, err)
			}
			if m.Current() != tt.to {
				t.Errorf("state = %s, want %s", m.Current(), tt.to)
			}
		})
	}
}

func TestInvalidTransitions(t *testing.T) {
	tests := []struct {
		from State
		to   State
	}{
		{Ready, Booting},
		{AccessDenied, Booting},
		{Error, Ready},
		{Error, AccessDenied},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			m := NewMachine(nil)
			walkTo(t, m, tt.from)
			if err := m.Transition(tt.to, ""); err == nil {
				t.Errorf("Transition(%s -> %s) should fail", tt.from, tt.to)
			}
			if m.Current() != tt.from {
				t.Errorf("state = %s, want unchanged %s", m.Current(), tt.from)
			}
		})
	}
}

func TestTransitionEmitsEvent(t *testing.T) {
	b := bus.New()
	ch, unsub := b.Subscribe("archive.", 10)
	defer unsub()

	m := NewMachine(b)
	if err := m.Transition(AccessDenied, "grant Full Disk Access"); err != nil {
		t.Fatal(err)
	}

	evt := <-ch
	if evt.Kind != bus.KindStatusChanged {
		t.Errorf("event kind = %q, want %s", evt.Kind, bus.KindStatusChanged)
	}
	change, ok := evt.Payload.(StatusChange)
	if !ok {
		t.Fatalf("payload type = %T, want StatusChange", evt.Payload)
	}
	if change.From != Booting || change.To != AccessDenied || change.Detail != "grant Full Disk Access" {
		t.Errorf("change = %+v", change)
	}
}

func TestSameStateUpdatesDetailOnly(t *testing.T) {
	b := bus.New()
	ch, unsub := b.Subscribe("archive.", 10)
	defer unsub()

	m := NewMachine(b)
	walkTo(t, m, AccessDenied)
	<-ch
	since := m.Snapshot().Since

	if err := m.Transition(AccessDenied, "still denied"); err != nil {
		t.Fatal(err)
	}
	snap := m.Snapshot()
	if snap.Detail != "still denied" || !snap.Since.Equal(since) {
		t.Errorf("snapshot = %+v, want new detail and unchanged Since", snap)
	}
	select {
	case evt := <-ch:
		t.Errorf("unexpected event %v", evt)
	default:
	}
}

// TestAccessGrantedLifecycle covers a daemon started before the host was
// granted access: BOOTING → ACCESS_DENIED → READY.
func TestAccessGrantedLifecycle(t *testing.T) {
	m := NewMachine(nil)
	for _, s := range []State{AccessDenied, Ready} {
		if err := m.Transition(s, ""); err != nil {
			t.Fatalf("Transition to %s: %v (current: %s)", s, err, m.Current())
		}
	}
	if m.Current() != Ready {
		t.Errorf("final state = %s, want READY", m.Current())
	}
}

func walkTo(t *testing.T, m *Machine, target State) {
	t.Helper()
	paths := map[State][]State{
		Booting:      {},
		Ready:        {Ready},
		AccessDenied: {AccessDenied},
		Error:        {Error},
	}
	for _, s := range paths[target] {
		if err := m.Transition(s, ""); err != nil {
			t.Fatalf("walkTo(%s): %v", target, err)
		}
	}
}
