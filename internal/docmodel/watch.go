package docmodel

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/chmouel/worksetview/internal/log"
)

// WatchDebounce is the settle window for filesystem events before a save
// is reported.
const WatchDebounce = 600 * time.Millisecond

// WatchService observes the open documents on disk. An external write to
// an open file surfaces as a saved-path on Events: the on-disk content is
// now the saved content, so the model treats it like a save.
type WatchService struct {
	mu       sync.Mutex
	started  bool
	watcher  *fsnotify.Watcher
	manager  *Manager
	dirs     map[string]struct{}
	pending  map[string]struct{}
	timer    *time.Timer
	debounce time.Duration

	// Events delivers saved file paths, coalesced per debounce window.
	Events chan string
	done   chan struct{}
}

// NewWatchService returns a stopped watch service for manager.
func NewWatchService(manager *Manager) *WatchService {
	return &WatchService{
		manager:  manager,
		debounce: WatchDebounce,
		dirs:     make(map[string]struct{}),
		pending:  make(map[string]struct{}),
	}
}

// Start creates the fsnotify watcher, registers the directories of the
// documents already open, and begins delivering events. Starting twice is
// a no-op.
func (w *WatchService) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.watcher = watcher
	w.Events = make(chan string, 16)
	w.done = make(chan struct{})
	w.started = true

	for _, f := range w.manager.WorkingSet() {
		w.addDirLocked(filepath.Dir(f.FullPath))
	}

	go w.run()
	return nil
}

// Stop shuts the watcher down. Safe to call on a stopped service.
func (w *WatchService) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.started {
		return
	}
	w.started = false
	close(w.done)
	_ = w.watcher.Close()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

// WatchFile ensures the directory holding path is watched. Called when a
// document joins the working set after Start.
func (w *WatchService) WatchFile(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.started {
		return
	}
	w.addDirLocked(filepath.Dir(path))
}

func (w *WatchService) addDirLocked(dir string) {
	if _, ok := w.dirs[dir]; ok {
		return
	}
	if err := w.watcher.Add(dir); err != nil {
		log.Printf("watch: cannot watch %s: %v", dir, err)
		return
	}
	w.dirs[dir] = struct{}{}
}

func (w *WatchService) run() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if w.manager.OpenDocumentForPath(event.Name) == nil {
				continue
			}
			w.queue(event.Name)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("watch: %v", err)
		}
	}
}

func (w *WatchService) queue(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.started {
		return
	}
	w.pending[path] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
}

func (w *WatchService) flush() {
	w.mu.Lock()
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]struct{})
	started := w.started
	events := w.Events
	w.mu.Unlock()

	if !started {
		return
	}
	for _, p := range paths {
		select {
		case events <- p:
		default:
			// Receiver is behind; dropping is fine, the next write
			// will re-report.
		}
	}
}
