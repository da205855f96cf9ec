package config

import (
	"context"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watcher watches a single file and notifies registered handlers with a
// freshly-loaded value whenever it changes. Loaded fresh on every change
// so handlers never see stale data.
//
// Grounded on smazurov-videonode's internal/config.Watcher[T], adapted to
// this module's zerolog logger instead of log/slog and reusing the
// teacher's context.Context-driven goroutine shutdown idiom
// (core.Start/sync.Once) in place of the original's bespoke cancel field.
type Watcher[T any] struct {
	path     string
	debounce time.Duration
	loader   func(path string) (T, error)
	onError  func(error)
	log      zerolog.Logger

	mu       sync.RWMutex
	handlers []func(T)

	fsw    *fsnotify.Watcher
	cancel context.CancelFunc
	once   sync.Once
	died   chan struct{}
}

// WatcherOption configures a Watcher.
type WatcherOption[T any] func(*Watcher[T])

// WithDebounce overrides the default 1500ms debounce between a detected
// write and the reload it triggers.
func WithDebounce[T any](d time.Duration) WatcherOption[T] {
	return func(w *Watcher[T]) { w.debounce = d }
}

// WithErrorHandler registers a callback invoked when loader returns an
// error; the bad reload is otherwise only logged.
func WithErrorHandler[T any](handler func(error)) WatcherOption[T] {
	return func(w *Watcher[T]) { w.onError = handler }
}

// NewWatcher builds a Watcher for path, using loader to produce a T on
// every change.
func NewWatcher[T any](path string, loader func(path string) (T, error), log zerolog.Logger, opts ...WatcherOption[T]) *Watcher[T] {
	w := &Watcher[T]{
		path:     path,
		debounce: 1500 * time.Millisecond,
		loader:   loader,
		log:      log,
		died:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// DyingChan implements crossmacro.Death.
func (w *Watcher[T]) DyingChan() chan struct{} {
	return w.died
}

// OnReload registers handler to be called with every fresh reload. Returns
// an unsubscribe function.
func (w *Watcher[T]) OnReload(handler func(T)) func() {
	w.mu.Lock()
	w.handlers = append(w.handlers, handler)
	idx := len(w.handlers) - 1
	w.mu.Unlock()

	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if idx < len(w.handlers) {
			w.handlers[idx] = nil
		}
	}
}

// Start mounts the fsnotify watch loop exactly once; ctx cancellation
// stops it and closes DyingChan.
func (w *Watcher[T]) Start(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fsw.Add(w.path); err != nil {
		fsw.Close()
		return err
	}
	w.fsw = fsw

	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.once.Do(func() {
		go w.watch(ctx)
	})
	return nil
}

// Stop cancels the watch loop and releases the fsnotify handle.
func (w *Watcher[T]) Stop() error {
	if w.cancel != nil {
		w.cancel()
	}
	if w.fsw != nil {
		return w.fsw.Close()
	}
	return nil
}

func (w *Watcher[T]) watch(ctx context.Context) {
	defer close(w.died)

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				if timer != nil {
					timer.Stop()
				}
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			}

		case <-timerC:
			w.loadAndNotify()
			timerC = nil

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Str("path", w.path).Msg("config watcher error")
		}
	}
}

func (w *Watcher[T]) loadAndNotify() {
	value, err := w.loader(w.path)
	if err != nil {
		w.log.Warn().Err(err).Str("path", w.path).Msg("failed to reload config")
		if w.onError != nil {
			w.onError(err)
		}
		return
	}

	w.mu.RLock()
	handlers := make([]func(T), 0, len(w.handlers))
	for _, h := range w.handlers {
		if h != nil {
			handlers = append(handlers, h)
		}
	}
	w.mu.RUnlock()

	for _, handler := range handlers {
		handler(value)
	}
}
