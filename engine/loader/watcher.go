package loader

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period a file must observe before a change is emitted.
const DefaultDebounce = 250 * time.Millisecond

// watcher is the implementation of the Watcher interface.
type watcher struct {
	mu       sync.Mutex
	fsw      *fsnotify.Watcher
	files    map[string]string // absolute path -> path as registered
	dirs     map[string]bool
	timers   map[string]*time.Timer
	debounce time.Duration
	logger   *slog.Logger

	changes   chan string
	done      chan struct{}
	closeOnce sync.Once
}

// Watcher reports changes to a set of asset files. Each file's directory is watched so
// editors that save by renaming a temporary file are still noticed. Bursts of write
// and create events for one file are coalesced into a single notification.
type Watcher interface {
	// Add starts watching a file. The path is reported back exactly as given.
	//
	// Parameters:
	//   - path: the file to watch
	//
	// Returns:
	//   - error: error if the containing directory cannot be watched
	Add(path string) error

	// Changes returns the channel that receives the registered path of each changed file.
	//
	// Returns:
	//   - <-chan string: the change channel
	Changes() <-chan string

	// Close stops watching and releases the underlying OS resources.
	//
	// Returns:
	//   - error: error from the OS watcher
	Close() error
}

var _ Watcher = &watcher{}

// NewWatcher creates a Watcher and starts its event loop.
//
// Parameters:
//   - options: variadic list of WatcherBuilderOption functions
//
// Returns:
//   - Watcher: the running watcher
//   - error: error if the OS watcher cannot be created
func NewWatcher(options ...WatcherBuilderOption) (Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &watcher{
		fsw:      fsw,
		files:    make(map[string]string),
		dirs:     make(map[string]bool),
		timers:   make(map[string]*time.Timer),
		debounce: DefaultDebounce,
		logger:   slog.Default(),
		changes:  make(chan string, 8),
		done:     make(chan struct{}),
	}
	for _, opt := range options {
		opt(w)
	}

	go w.run()
	return w, nil
}

func (w *watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	dir := filepath.Dir(abs)

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.dirs[dir] {
		if err := w.fsw.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		w.dirs[dir] = true
	}
	w.files[abs] = path
	return nil
}

func (w *watcher) Changes() <-chan string {
	return w.changes
}

func (w *watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		w.mu.Lock()
		for _, t := range w.timers {
			t.Stop()
		}
		w.mu.Unlock()
		err = w.fsw.Close()
	})
	return err
}

// run forwards relevant OS events into the debouncer until the watcher is closed.
func (w *watcher) run() {
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				w.touch(ev.Name)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", "err", err)
		}
	}
}

// touch (re)starts the debounce timer of a watched file.
func (w *watcher) touch(name string) {
	abs, err := filepath.Abs(name)
	if err != nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	registered, ok := w.files[abs]
	if !ok {
		return
	}
	if t, ok := w.timers[abs]; ok {
		t.Reset(w.debounce)
		return
	}
	w.timers[abs] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, abs)
		w.mu.Unlock()

		w.logger.Debug("asset changed", "path", registered)
		select {
		case w.changes <- registered:
		case <-w.done:
		}
	})
}
