package daemon

import (
	"context"
	"sync"
	"time"

	"github.com/matheus3301/msgarchive/internal/status"
	"github.com/matheus3301/msgarchive/internal/store"
	"go.uber.org/zap"
)

// Pinger opens the archive and reports whether it is readable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Prober re-checks archive access while the daemon is not READY, so a
// daemon started before access was granted recovers without a restart.
type Prober struct {
	db       Pinger
	machine  *status.Machine
	interval time.Duration
	logger   *zap.Logger

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// NewProber creates a prober that retries every interval.
func NewProber(db Pinger, machine *status.Machine, interval time.Duration, logger *zap.Logger) *Prober {
	return &Prober{db: db, machine: machine, interval: interval, logger: logger}
}

// Probe pings the archive once and moves the state machine accordingly.
func (p *Prober) Probe(ctx context.Context) {
	if p.machine.Current() == status.Ready {
		return
	}
	if p.machine.Current() == status.Error {
		_ = p.machine.Transition(status.Booting, "retrying")
	}

	err := p.db.Ping(ctx)
	var (
		to     status.State
		detail string
	)
	switch {
	case err == nil:
		to = status.Ready
	case store.IsAccessDenied(err):
		to, detail = status.AccessDenied, err.Error()
	default:
		to, detail = status.Error, err.Error()
	}
	if tErr := p.machine.Transition(to, detail); tErr != nil {
		p.logger.Warn("status transition failed", zap.Error(tErr))
	}
}

// Start runs Probe every interval until Stop.
func (p *Prober) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stop != nil {
		return
	}
	p.stop = make(chan struct{})
	p.done = make(chan struct{})
	go p.loop(p.stop, p.done)
}

// Stop ends the loop started by Start and waits for it to exit.
func (p *Prober) Stop() {
	p.mu.Lock()
	stop, done := p.stop, p.done
	p.stop, p.done = nil, nil
	p.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
}

func (p *Prober) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), p.interval)
			p.Probe(ctx)
			cancel()
		}
	}
}
