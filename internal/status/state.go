package status

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/matheus3301/msgarchive/internal/bus"
)

// State represents the daemon's view of the archive.
type State string

const (
	Booting      State = "BOOTING"
	Ready        State = "READY"
	AccessDenied State = "ACCESS_DENIED"
	Error        State = "ERROR"
)

// validTransitions defines allowed state transitions. ACCESS_DENIED can
// recover once the host is granted access; ERROR only through a new boot.
var validTransitions = map[State][]State{
	Booting:      {Ready, AccessDenied, Error},
	Ready:        {AccessDenied, Error},
	AccessDenied: {Ready, Error},
	Error:        {Booting},
}

// Snapshot is the current state with the detail recorded at the transition.
type Snapshot struct {
	State  State
	Detail string
	Since  time.Time
}

// Machine tracks and enforces daemon runtime state transitions.
type Machine struct {
	mu      sync.RWMutex
	current Snapshot
	bus     *bus.Bus
}

// NewMachine creates a new state machine starting in Booting state.
func NewMachine(b *bus.Bus) *Machine {
	return &Machine{
		current: Snapshot{State: Booting, Since: time.Now()},
		bus:     b,
	}
}

// Current returns the current state.
func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.State
}

// Snapshot returns the current state, its detail and when it was entered.
func (m *Machine) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Transition moves to a new state with an optional human-readable detail.
// Moving to the current state only updates the detail and publishes nothing.
func (m *Machine) Transition(to State, detail string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	from := m.current.State
	if from == to {
		m.current.Detail = detail
		return nil
	}
	if !slices.Contains(validTransitions[from], to) {
		return fmt.Errorf("invalid transition from %s to %s", from, to)
	}
	now := time.Now()
	m.current = Snapshot{State: to, Detail: detail, Since: now}
	if m.bus != nil {
		m.bus.Publish(bus.Event{
			Kind:      bus.KindStatusChanged,
			Timestamp: now,
			Payload:   StatusChange{From: from, To: to, Detail: detail},
		})
	}
	return nil
}

// StatusChange is the payload for status change events.
type StatusChange struct {
	From   State
	To     State
	Detail string
}
