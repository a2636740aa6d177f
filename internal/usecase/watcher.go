package usecase

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/andrebassi/confnav/internal/domain/entity"
	"github.com/andrebassi/confnav/internal/domain/port"
)

// DefaultWatchInterval is the polling interval used when none is configured.
const DefaultWatchInterval = 5 * time.Second

// ChangeEvent reports that a watched entry changed remotely.
type ChangeEvent struct {
	Key            entity.ConfigKey
	Entry          *entity.ConfigEntry
	OldFingerprint string
	NewFingerprint string
	Deleted        bool
	At             time.Time
}

// ConfigWatcher polls a set of entries and reports content changes.
// It is safe for concurrent use.
type ConfigWatcher struct {
	store    port.ConfigStore
	interval time.Duration
	timeout  time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	watched map[entity.ConfigKey]string
	seen    map[entity.ConfigKey]bool

	events chan ChangeEvent
}

// NewConfigWatcher creates a watcher polling store every interval.
func NewConfigWatcher(store port.ConfigStore, interval time.Duration, logger *zap.Logger) *ConfigWatcher {
	if interval <= 0 {
		interval = DefaultWatchInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConfigWatcher{
		store:    store,
		interval: interval,
		timeout:  DefaultRequestTimeout,
		logger:   logger,
		watched:  make(map[entity.ConfigKey]string),
		seen:     make(map[entity.ConfigKey]bool),
		events:   make(chan ChangeEvent, 16),
	}
}

// Watch adds key. The next poll records its baseline without emitting.
func (w *ConfigWatcher) Watch(key entity.ConfigKey) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.watched[key]; !ok {
		w.watched[key] = ""
		w.seen[key] = false
	}
}

// Unwatch removes key.
func (w *ConfigWatcher) Unwatch(key entity.ConfigKey) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.watched, key)
	delete(w.seen, key)
}

// Keys returns the watched keys in a stable order.
func (w *ConfigWatcher) Keys() []entity.ConfigKey {
	w.mu.Lock()
	defer w.mu.Unlock()
	keys := make([]entity.ConfigKey, 0, len(w.watched))
	for k := range w.watched {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys
}

// Events returns the channel Run delivers changes on.
func (w *ConfigWatcher) Events() <-chan ChangeEvent {
	return w.events
}

// Run polls until ctx is done, then closes the events channel.
func (w *ConfigWatcher) Run(ctx context.Context) {
	defer close(w.events)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.deliver(ctx, w.Poll(ctx))
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.deliver(ctx, w.Poll(ctx))
		}
	}
}

func (w *ConfigWatcher) deliver(ctx context.Context, events []ChangeEvent) {
	for _, ev := range events {
		select {
		case w.events <- ev:
		case <-ctx.Done():
			return
		}
	}
}

// Poll fetches every watched key once and returns the changes found.
func (w *ConfigWatcher) Poll(ctx context.Context) []ChangeEvent {
	var events []ChangeEvent
	for _, key := range w.Keys() {
		if ctx.Err() != nil {
			break
		}
		if ev, ok := w.check(ctx, key); ok {
			events = append(events, ev)
		}
	}
	return events
}

func (w *ConfigWatcher) check(ctx context.Context, key entity.ConfigKey) (ChangeEvent, bool) {
	reqCtx, cancel := context.WithTimeout(ctx, w.timeout)
	entry, err := w.store.GetConfig(reqCtx, key)
	cancel()

	deleted := errors.Is(err, port.ErrNotFound) || (err == nil && entry == nil)
	if err != nil && !deleted {
		w.logger.Warn("watch poll failed", zap.String("key", key.String()), zap.Error(err))
		return ChangeEvent{}, false
	}

	fp := ""
	if !deleted {
		fp = Fingerprint(entry.Content)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	old, ok := w.watched[key]
	if !ok {
		return ChangeEvent{}, false
	}
	first := !w.seen[key]
	w.watched[key] = fp
	w.seen[key] = true
	if first || old == fp {
		return ChangeEvent{}, false
	}

	w.logger.Debug("watched config changed", zap.String("key", key.String()), zap.Bool("deleted", deleted))
	ev := ChangeEvent{
		Key:            key,
		OldFingerprint: old,
		NewFingerprint: fp,
		Deleted:        deleted,
		At:             time.Now(),
	}
	if !deleted {
		e := entry.Clone()
		ev.Entry = &e
	}
	return ev, true
}

// Fingerprint returns the hex MD5 of content, the digest config servers
// use for change detection.
func Fingerprint(content string) string {
	sum := md5.Sum([]byte(content))
	return hex.EncodeToString(sum[:])
}
