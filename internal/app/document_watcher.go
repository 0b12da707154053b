package app

import (
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
)

// WatchDebounceDelay coalesces bursts of filesystem events for one file
const WatchDebounceDelay = 250 * time.Millisecond

// documentWatcher reports changes made to the open document by other
// programs. The parent directory is watched rather than the file itself
// because editors (and our own save) replace files by rename.
type documentWatcher struct {
	watcher  *fsnotify.Watcher
	debounce func(f func())
	onChange func(path string)

	mu          sync.Mutex
	path        string
	dir         string
	ignoreUntil time.Time

	done chan struct{}
}

func newDocumentWatcher(onChange func(path string)) (*documentWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &documentWatcher{
		watcher:  watcher,
		debounce: debounce.New(WatchDebounceDelay),
		onChange: onChange,
		done:     make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Watch switches the watcher to path. An empty path stops watching.
func (w *documentWatcher) Watch(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	dir := ""
	if path != "" {
		dir = filepath.Dir(path)
	}

	if w.dir != "" && w.dir != dir {
		if err := w.watcher.Remove(w.dir); err != nil {
			log.Printf("⚠️ [Watcher] Failed to stop watching %s: %v", w.dir, err)
		}
	}
	if dir != "" && dir != w.dir {
		if err := w.watcher.Add(dir); err != nil {
			w.path, w.dir = "", ""
			return err
		}
	}

	w.path, w.dir = path, dir
	return nil
}

// Suppress ignores events for d, covering writes we make ourselves.
func (w *documentWatcher) Suppress(d time.Duration) {
	w.mu.Lock()
	w.ignoreUntil = time.Now().Add(d)
	w.mu.Unlock()
}

func (w *documentWatcher) Close() error {
	select {
	case <-w.done:
		return nil
	default:
		close(w.done)
	}
	return w.watcher.Close()
}

func (w *documentWatcher) loop() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("⚠️ [Watcher] fsnotify error: %v", err)
		}
	}
}

func (w *documentWatcher) handle(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
		return
	}

	w.mu.Lock()
	path := w.path
	ignore := time.Now().Before(w.ignoreUntil)
	w.mu.Unlock()

	if path == "" || filepath.Clean(event.Name) != path || ignore {
		return
	}

	w.debounce(func() {
		w.mu.Lock()
		current := w.path
		ignore := time.Now().Before(w.ignoreUntil)
		w.mu.Unlock()
		if current == path && !ignore {
			w.onChange(path)
		}
	})
}

func (a *App) watchDocument(path string) {
	if a.watcher == nil {
		return
	}
	if err := a.watcher.Watch(path); err != nil {
		log.Printf("⚠️ [Watcher] Failed to watch %s: %v", path, err)
	}
}

func (a *App) onDocumentChangedOnDisk(path string) {
	log.Printf("🔍 [Watcher] %s changed on disk", path)
	a.ui.Emit(EventDocumentChanged, map[string]string{"path": path})
}

// ReloadDocument discards in-memory edits and reads the document again
func (a *App) ReloadDocument() error {
	if err := a.begin("open"); err != nil {
		a.report(err)
		return err
	}
	defer a.end()

	path := a.GetDocument().Path
	if path == "" {
		return nil
	}
	return a.openPath(path)
}
