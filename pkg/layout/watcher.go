package layout

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 200 * time.Millisecond

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithLogger routes watcher diagnostics to logger.
func WithLogger(logger *zap.Logger) WatcherOption {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithDebounce sets how long the watcher waits for a burst of file events to
// settle before reloading.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// OnReload registers a callback invoked with every successfully reloaded
// store. The callback runs on the watcher goroutine and must not call Close.
func OnReload(fn func(*Store)) WatcherOption {
	return func(w *Watcher) {
		w.onReload = fn
	}
}

// Watcher keeps a Store in sync with a directory of layout files. A reload
// that fails to parse keeps the previously loaded store.
type Watcher struct {
	dir      string
	logger   *zap.Logger
	debounce time.Duration
	onReload func(*Store)

	mu    sync.RWMutex
	store *Store

	fsw     *fsnotify.Watcher
	done    chan struct{}
	closeMu sync.Mutex
	started bool
	closed  bool
	cancel  context.CancelFunc
}

// NewWatcher loads dir once and prepares a watcher for it. Call Start to
// begin watching.
func NewWatcher(dir string, options ...WatcherOption) (*Watcher, error) {
	w := &Watcher{
		dir:      dir,
		logger:   zap.NewNop(),
		debounce: defaultDebounce,
		done:     make(chan struct{}),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(w)
	}

	store, err := LoadFS(os.DirFS(dir))
	if err != nil {
		return nil, fmt.Errorf("layout: initial load of %s: %w", dir, err)
	}
	w.store = store

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("layout: create watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("layout: watch %s: %w", dir, err)
	}
	w.fsw = fsw
	return w, nil
}

// Store returns the most recently loaded store.
func (w *Watcher) Store() *Store {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.store
}

// Start runs the event loop in its own goroutine until ctx is cancelled or
// Close is called. Calls after the first, or after Close, do nothing.
func (w *Watcher) Start(ctx context.Context) {
	w.closeMu.Lock()
	if w.started || w.closed {
		w.closeMu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	w.started = true
	w.cancel = cancel
	w.closeMu.Unlock()

	w.logger.Info("watching layouts", zap.String("dir", w.dir))
	go w.run(ctx)
}

// Close stops the event loop and releases the underlying watcher. It waits
// for the loop to exit when Start was called, so it must not be called from
// an OnReload callback.
func (w *Watcher) Close() error {
	w.closeMu.Lock()
	if w.closed {
		w.closeMu.Unlock()
		return nil
	}
	w.closed = true
	cancel := w.cancel
	w.closeMu.Unlock()

	if cancel != nil {
		cancel()
		<-w.done
	}
	return w.fsw.Close()
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !relevant(event) {
				continue
			}
			w.logger.Debug("layout change", zap.String("path", event.Name), zap.String("op", event.Op.String()))
			timer.Reset(w.debounce)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("layout watcher error", zap.Error(err))
		case <-timer.C:
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	store, err := LoadFS(os.DirFS(w.dir))
	if err != nil {
		w.logger.Error("layout reload failed; keeping previous layouts", zap.String("dir", w.dir), zap.Error(err))
		return
	}

	w.mu.Lock()
	w.store = store
	w.mu.Unlock()

	w.logger.Info("layouts reloaded", zap.String("dir", w.dir), zap.Strings("layouts", store.IDs()))
	if w.onReload != nil {
		w.onReload(store)
	}
}

func relevant(event fsnotify.Event) bool {
	if !isLayoutFile(event.Name) {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}
