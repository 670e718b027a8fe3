package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches a directory tree with fsnotify. New subdirectories are
// added as they appear.
type Watcher struct {
	fs        *fsnotify.Watcher
	debouncer *Debouncer
	opts      Options
	logger    *slog.Logger
	root      string

	events chan []FileEvent
	errs   chan error

	mu      sync.RWMutex
	stopped bool
	stopCh  chan struct{}
}

// New creates a watcher. Call Start to begin watching.
func New(opts Options, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	opts = opts.WithDefaults()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	return &Watcher{
		fs:        fsw,
		debouncer: NewDebouncer(opts.DebounceWindow, logger),
		opts:      opts,
		logger:    logger,
		events:    make(chan []FileEvent, opts.EventBufferSize),
		errs:      make(chan error, 8),
		stopCh:    make(chan struct{}),
	}, nil
}

// Start watches root until ctx is canceled or Stop is called. It blocks.
func (w *Watcher) Start(ctx context.Context, root string) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolve absolute path: %w", err)
	}
	if err := w.addTree(abs); err != nil {
		_ = w.Stop()
		return fmt.Errorf("watch %s: %w", abs, err)
	}
	w.mu.Lock()
	w.root = abs
	w.mu.Unlock()
	w.logger.Info("watch_started", slog.String("root", abs))

	go w.forward()

	for {
		select {
		case <-ctx.Done():
			_ = w.Stop()
			return nil
		case <-w.stopCh:
			return nil
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.emitError(err)
		}
	}
}

// addTree adds dir and every non-hidden directory below it.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && hidden(d.Name()) {
			return filepath.SkipDir
		}
		return w.fs.Add(path)
	})
}

func (w *Watcher) handle(ev fsnotify.Event) {
	rel, err := filepath.Rel(w.root, ev.Name)
	if err != nil || rel == "." {
		return
	}
	rel = filepath.ToSlash(rel)
	if hiddenPath(rel) {
		return
	}

	isDir := false
	if info, err := os.Stat(ev.Name); err == nil {
		isDir = info.IsDir()
	}

	var op Operation
	switch {
	case ev.Has(fsnotify.Create):
		op = OpCreate
		if isDir {
			if err := w.addTree(ev.Name); err != nil {
				w.emitError(fmt.Errorf("watch %s: %w", ev.Name, err))
			}
		}
	case ev.Has(fsnotify.Write):
		op = OpModify
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		// The new name of a rename arrives as its own Create.
		op = OpDelete
	default:
		return
	}

	if !isDir && op != OpDelete && w.opts.Include != nil && !w.opts.Include(rel) {
		return
	}

	w.debouncer.Add(FileEvent{
		Path:      rel,
		Operation: op,
		IsDir:     isDir,
		Timestamp: time.Now(),
	})
}

// forward moves debounced batches to the events channel.
func (w *Watcher) forward() {
	for batch := range w.debouncer.Output() {
		w.mu.RLock()
		if !w.stopped {
			select {
			case w.events <- batch:
			default:
				w.logger.Warn("watch_batch_dropped", slog.Int("events", len(batch)))
			}
		}
		w.mu.RUnlock()
	}
}

func (w *Watcher) emitError(err error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.stopped {
		return
	}
	select {
	case w.errs <- err:
	default:
		w.logger.Warn("watch_error_dropped", slog.String("error", err.Error()))
	}
}

// Events returns batches of coalesced changes. It is closed by Stop.
func (w *Watcher) Events() <-chan []FileEvent {
	return w.events
}

// Errors returns non-fatal watch errors. It is closed by Stop.
func (w *Watcher) Errors() <-chan error {
	return w.errs
}

// Root returns the absolute watched directory once the tree is registered,
// or "" before that.
func (w *Watcher) Root() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.root
}

// Stop releases the watcher. It is safe to call more than once.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.stopCh)
	w.debouncer.Stop()
	err := w.fs.Close()
	close(w.events)
	close(w.errs)
	if err != nil && !errors.Is(err, fsnotify.ErrClosed) {
		return err
	}
	return nil
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

func hiddenPath(rel string) bool {
	for part := range strings.SplitSeq(rel, "/") {
		if hidden(part) {
			return true
		}
	}
	return false
}
