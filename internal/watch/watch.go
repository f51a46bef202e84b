// Package watch refreshes the pickup times of saved profiles on a fixed interval.
package watch

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/nicolasacchi/abfallcli/internal/api"
	"github.com/nicolasacchi/abfallcli/internal/config"
	"github.com/nicolasacchi/abfallcli/internal/pickupcache"
)

// Fetcher retrieves pickup times for a finalized configuration. *api.Client implements it.
type Fetcher interface {
	FetchPickupTimes(ctx context.Context, cfg api.Configuration) (api.PickupResult, error)
}

// Observer is told about every refresh. err is set when the refresh failed hard;
// a stale entry without err means the vendor was unreachable and old data was kept.
type Observer interface {
	PickupsRefreshed(entry pickupcache.Entry, err error)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(entry pickupcache.Entry, err error)

func (f ObserverFunc) PickupsRefreshed(entry pickupcache.Entry, err error) { f(entry, err) }

// Watcher refreshes profiles and keeps the cache current.
type Watcher struct {
	fetcher  Fetcher
	cache    *pickupcache.Cache
	interval time.Duration
	observer Observer
	logger   *slog.Logger
	group    singleflight.Group
}

// Option configures a Watcher.
type Option func(*Watcher)

func WithInterval(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

func WithObserver(o Observer) Option {
	return func(w *Watcher) { w.observer = o }
}

func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// New creates a Watcher. The default interval is one hour.
func New(fetcher Fetcher, cache *pickupcache.Cache, opts ...Option) *Watcher {
	w := &Watcher{
		fetcher:  fetcher,
		cache:    cache,
		interval: config.DefaultRefreshInterval,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Refresh fetches pickups for p once and updates the cache. Concurrent refreshes of
// the same profile share one vendor round trip. When the vendor is unreachable the
// cached entry is returned marked stale; a hard error (bad configuration, malformed
// payload) is returned alongside it.
func (w *Watcher) Refresh(ctx context.Context, p config.Profile) (pickupcache.Entry, error) {
	v, err, shared := w.group.Do(key(p.Name), func() (interface{}, error) {
		return w.refresh(ctx, p)
	})
	if shared {
		w.logger.DebugContext(ctx, "joined running refresh", "profile", p.Name)
	}
	entry, _ := v.(pickupcache.Entry)
	return entry, err
}

func (w *Watcher) refresh(ctx context.Context, p config.Profile) (pickupcache.Entry, error) {
	result, err := w.fetcher.FetchPickupTimes(ctx, p.Configuration)
	switch {
	case err != nil:
		w.cache.RecordFailure(p.Name)
		w.logger.ErrorContext(ctx, "pickup refresh failed", "profile", p.Name, "err", err)
	case result == nil:
		w.cache.RecordFailure(p.Name)
		w.logger.WarnContext(ctx, "vendor unavailable, keeping previous pickups", "profile", p.Name)
	default:
		w.cache.Store(p.Name, result)
		w.logger.InfoContext(ctx, "pickups refreshed", "profile", p.Name, "categories", len(result))
	}

	entry, _ := w.cache.Get(p.Name)
	if entry.Profile == "" {
		entry.Profile = p.Name
	}
	return entry, err
}

// Run refreshes all profiles immediately and then on every tick until ctx is done.
// The cache is persisted after each round.
func (w *Watcher) Run(ctx context.Context, profiles []config.Profile) error {
	if len(profiles) == 0 {
		return errors.New("no profiles to watch")
	}

	w.round(ctx, profiles)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("watch stopped")
			return nil
		case <-ticker.C:
			w.round(ctx, profiles)
		}
	}
}

func (w *Watcher) round(ctx context.Context, profiles []config.Profile) {
	for _, p := range profiles {
		if ctx.Err() != nil {
			return
		}
		entry, err := w.Refresh(ctx, p)
		if ctx.Err() != nil {
			return
		}
		if w.observer != nil {
			w.observer.PickupsRefreshed(entry, err)
		}
	}
	if err := w.cache.Persist(); err != nil {
		w.logger.WarnContext(ctx, "persisting pickup cache failed", "err", err)
	}
}

func key(profile string) string {
	return "pickups:" + strings.ToLower(profile)
}
