package watch

import (
	"context"
	"sync"
	"time"

	"github.com/matheus3301/msgarchive/internal/bus"
	"github.com/matheus3301/msgarchive/internal/status"
	"github.com/matheus3301/msgarchive/internal/store"
	"go.uber.org/zap"
)

// Source is the part of store.DB the watcher polls.
type Source interface {
	LatestMessageID(ctx context.Context) (int64, error)
	ArrivalsAfter(ctx context.Context, afterID int64) ([]store.Arrival, error)
}

// Arrived is the payload of bus.KindMessagesArrived.
type Arrived struct {
	Chats    []store.Arrival
	LatestID int64
}

// Count returns the number of new messages across all chats.
func (a Arrived) Count() int {
	n := 0
	for _, c := range a.Chats {
		n += c.Count
	}
	return n
}

// Watcher polls the archive for messages past the last seen row id and
// publishes what arrived. It only polls while the daemon is READY.
type Watcher struct {
	src      Source
	bus      *bus.Bus
	machine  *status.Machine
	interval time.Duration
	logger   *zap.Logger

	mu     sync.Mutex
	latest int64
	primed bool

	loopMu sync.Mutex
	stop   chan struct{}
	done   chan struct{}
}

// New creates a watcher that polls every interval.
func New(src Source, b *bus.Bus, machine *status.Machine, interval time.Duration, logger *zap.Logger) *Watcher {
	return &Watcher{src: src, bus: b, machine: machine, interval: interval, logger: logger}
}

// Latest returns the highest message row id seen so far, 0 before the
// first successful poll.
func (w *Watcher) Latest() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.latest
}

// Poll checks the archive once. The first successful poll records the
// cursor without publishing; later polls publish one event per batch of
// new messages.
func (w *Watcher) Poll(ctx context.Context) error {
	if w.machine.Current() != status.Ready {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.primed {
		latest, err := w.src.LatestMessageID(ctx)
		if err != nil {
			return err
		}
		w.latest, w.primed = latest, true
		w.logger.Debug("watch cursor set", zap.Int64("latest_id", latest))
		return nil
	}

	chats, err := w.src.ArrivalsAfter(ctx, w.latest)
	if err != nil {
		return err
	}
	if len(chats) == 0 {
		return nil
	}

	evt := Arrived{Chats: chats, LatestID: w.latest}
	for _, c := range chats {
		evt.LatestID = max(evt.LatestID, c.LatestID)
	}
	w.latest = evt.LatestID

	w.bus.Publish(bus.Event{
		Kind:      bus.KindMessagesArrived,
		Timestamp: time.Now(),
		Payload:   evt,
	})
	return nil
}

// Start runs Poll every interval until Stop.
func (w *Watcher) Start() {
	w.loopMu.Lock()
	defer w.loopMu.Unlock()
	if w.stop != nil {
		return
	}
	w.stop = make(chan struct{})
	w.done = make(chan struct{})
	go w.loop(w.stop, w.done)
}

// Stop ends the loop started by Start and waits for it to exit.
func (w *Watcher) Stop() {
	w.loopMu.Lock()
	stop, done := w.stop, w.done
	w.stop, w.done = nil, nil
	w.loopMu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
}

func (w *Watcher) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), w.interval)
			if err := w.Poll(ctx); err != nil {
				w.logger.Warn("watch poll failed", zap.Error(err))
			}
			cancel()
		}
	}
}
