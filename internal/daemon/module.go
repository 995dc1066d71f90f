package daemon

import (
	"context"
	"time"

	"github.com/matheus3301/msgarchive/internal/api"
	"github.com/matheus3301/msgarchive/internal/bus"
	"github.com/matheus3301/msgarchive/internal/config"
	"github.com/matheus3301/msgarchive/internal/contacts"
	"github.com/matheus3301/msgarchive/internal/lock"
	"github.com/matheus3301/msgarchive/internal/logging"
	"github.com/matheus3301/msgarchive/internal/profile"
	"github.com/matheus3301/msgarchive/internal/status"
	"github.com/matheus3301/msgarchive/internal/store"
	"github.com/matheus3301/msgarchive/internal/watch"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	defaultProbeInterval = 30 * time.Second
	defaultWatchInterval = 5 * time.Second
)

// Params holds the resolved profile configuration passed to the fx module.
type Params struct {
	Profile       string
	Config        *config.Config
	SocketPath    string        // optional override for testing; empty = use default
	ProbeInterval time.Duration // how often an unreadable archive is retried; 0 = default
	WatchInterval time.Duration // how often the archive is polled for new messages; 0 = default
}

// Module returns the fx module for the daemon, composing all providers and lifecycle hooks.
func Module(p Params) fx.Option {
	if p.Config == nil {
		p.Config = config.Default()
	}
	if p.ProbeInterval <= 0 {
		p.ProbeInterval = defaultProbeInterval
	}
	if p.WatchInterval <= 0 {
		p.WatchInterval = defaultWatchInterval
	}
	return fx.Module("daemon",
		fx.Supply(p),
		fx.Provide(
			provideLogger,
			provideBus,
			provideStateMachine,
			provideLock,
			provideContactResolver,
			provideStore,
			provideService,
			provideProber,
			provideWatcher,
			NewServer,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideLogger(p Params) (*zap.Logger, error) {
	return logging.New(profile.LogPath(p.Profile), p.Profile)
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideStateMachine(b *bus.Bus) *status.Machine {
	return status.NewMachine(b)
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	if err := profile.EnsureDir(p.Profile); err != nil {
		return nil, err
	}
	logger.Info("acquiring profile lock", zap.String("profile", p.Profile))
	l, err := lock.Acquire(profile.Dir(p.Profile))
	if err != nil {
		return nil, err
	}
	logger.Info("profile lock acquired", zap.String("path", l.Path()))
	return l, nil
}

func provideContactResolver(p Params, logger *zap.Logger) (contacts.Resolver, error) {
	if p.Config.Contacts.Command == "" {
		logger.Info("no contacts helper configured, contact filters disabled")
		return nil, nil
	}
	timeout, err := p.Config.ContactTimeout()
	if err != nil {
		return nil, err
	}
	return contacts.NewExecResolver(p.Config.Contacts.Command, p.Config.Contacts.Args, timeout, logger), nil
}

func provideStore(p Params, resolver contacts.Resolver, logger *zap.Logger) (*store.DB, error) {
	path := p.Config.ArchiveFile()
	opts := []store.Option{
		store.WithLogger(logger.Named("store")),
		store.WithTextCacheSize(p.Config.TextCacheSize),
	}
	if resolver != nil {
		opts = append(opts, store.WithContactResolver(resolver))
	}
	db, err := store.New(path, opts...)
	if err != nil {
		return nil, err
	}
	logger.Info("store configured", zap.String("path", path), zap.Int("text_cache_size", p.Config.TextCacheSize))
	return db, nil
}

func provideService(p Params, db *store.DB, machine *status.Machine, w *watch.Watcher, logger *zap.Logger) *api.Service {
	return api.NewService(p.Profile, db, machine, logger.Named("api"), api.WithCursor(w))
}

func provideProber(p Params, db *store.DB, machine *status.Machine, logger *zap.Logger) *Prober {
	return NewProber(db, machine, p.ProbeInterval, logger.Named("probe"))
}

func provideWatcher(p Params, db *store.DB, b *bus.Bus, machine *status.Machine, logger *zap.Logger) *watch.Watcher {
	return watch.New(db, b, machine, p.WatchInterval, logger.Named("watch"))
}

func registerLifecycle(lc fx.Lifecycle, srv *Server, lk *lock.Lock, db *store.DB, prober *Prober, watcher *watch.Watcher, b *bus.Bus, logger *zap.Logger) {
	events, unsubscribe := b.Subscribe("archive.", 16)
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go logArchiveEvents(events, logger)

			go func() {
				if err := srv.Start(); err != nil {
					logger.Error("gRPC server error", zap.Error(err))
				}
			}()

			// The first probe decides READY / ACCESS_DENIED / ERROR before
			// clients can observe BOOTING for long.
			prober.Probe(ctx)
			prober.Start()
			if err := watcher.Poll(ctx); err != nil {
				logger.Warn("initial watch poll failed", zap.Error(err))
			}
			watcher.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			watcher.Stop()
			prober.Stop()
			srv.Stop(ctx)
			if err := db.Close(); err != nil {
				logger.Warn("error closing archive", zap.Error(err))
			}
			unsubscribe()
			b.Close()
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("daemon stopped")
			return nil
		},
	})
}

func logArchiveEvents(events <-chan bus.Event, logger *zap.Logger) {
	for evt := range events {
		switch payload := evt.Payload.(type) {
		case status.StatusChange:
			logStatusChange(payload, logger)
		case watch.Arrived:
			logger.Info("new messages",
				zap.Int("messages", payload.Count()),
				zap.Int("chats", len(payload.Chats)),
				zap.Int64("latest_id", payload.LatestID))
		}
	}
}

func logStatusChange(change status.StatusChange, logger *zap.Logger) {
	fields := []zap.Field{zap.String("from", string(change.From)), zap.String("to", string(change.To))}
	if change.Detail != "" {
		fields = append(fields, zap.String("detail", change.Detail))
	}
	if change.To == status.Ready {
		logger.Info("archive status changed", fields...)
	} else {
		logger.Warn("archive status changed", fields...)
	}
}
