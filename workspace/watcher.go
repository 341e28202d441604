package workspace

import (
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
)

const DefaultDebounce = 300 * time.Millisecond

// Watcher reports Java files under a root that were created or written.
// Bursts of events for the same file are reported once, after the file has
// been quiet for the debounce period.
type Watcher struct {
	root     string
	skipDirs []string
	debounce time.Duration
	onChange func(path string)

	fs      *fsnotify.Watcher
	mu      sync.Mutex
	timers  map[string]*time.Timer
	started bool
	done    chan struct{}
}

// NewWatcher watches root and every directory below it except hidden
// ones and those named in skipDirs.
func NewWatcher(root string, debounce time.Duration, onChange func(path string), skipDirs ...string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "creating file watcher")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w := &Watcher{
		root:     root,
		skipDirs: skipDirs,
		debounce: debounce,
		onChange: onChange,
		fs:       fw,
		timers:   make(map[string]*time.Timer),
		done:     make(chan struct{}),
	}
	if err := w.addTree(root); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return
	}
	w.started = true
	go w.run()
}

// Close stops watching and drops pending notifications.
func (w *Watcher) Close() error {
	w.mu.Lock()
	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
	started := w.started
	w.mu.Unlock()
	err := w.fs.Close()
	if started {
		<-w.done
	}
	return err
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && skipDir(d.Name(), w.skipDirs) {
			return filepath.SkipDir
		}
		if err := w.fs.Add(path); err != nil {
			return errors.Wrapf(err, "watching %s", path)
		}
		return nil
	})
}

func (w *Watcher) run() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			log.Warning("file watcher error", "error", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if skipDir(info.Name(), w.skipDirs) {
				return
			}
			if err := w.addTree(event.Name); err != nil {
				log.Warning("watching new directory failed", "path", event.Name, "error", err)
			}
			return
		}
	}
	if filepath.Ext(event.Name) != ".java" {
		return
	}
	w.schedule(event.Name)
}

func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()
		log.Debug("source changed", "path", path)
		w.onChange(path)
	})
}
