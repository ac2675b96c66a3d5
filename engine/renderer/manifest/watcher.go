package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/vkforge/engine/core"
)

// Suffix marks the files a Watcher treats as pipeline manifests.
const Suffix = ".pipeline.toml"

type (
	ChangeFunc func(path string, m *Manifest)
	ErrorFunc  func(path string, err error)
	RemoveFunc func(path string)
)

// Watcher reloads pipeline manifests when they change on disk. Callbacks
// run one at a time on the watcher goroutine, except for the initial load
// done by Watch, which runs on the caller's goroutine. Set the callbacks
// before the first Watch.
type Watcher struct {
	fsnotify *fsnotify.Watcher

	OnChange ChangeFunc
	OnError  ErrorFunc
	OnRemove RemoveFunc

	mu       sync.Mutex
	isClosed bool
	started  bool
	done     chan struct{}
	stopped  chan struct{}
}

func NewWatcher(onChange ChangeFunc, onError ErrorFunc) (*Watcher, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsnotify: fsWatch,
		OnChange: onChange,
		OnError:  onError,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	return w, nil
}

// Watch loads every manifest under dir and keeps watching dir and its
// sub-directories.
func (w *Watcher) Watch(dir string) error {
	w.mu.Lock()
	if w.isClosed {
		w.mu.Unlock()
		return errors.New("manifest watcher already closed")
	}
	if !w.started {
		w.started = true
		go w.start()
	}
	w.mu.Unlock()

	return w.addTree(dir)
}

// addTree watches dir and every directory below it, then loads the
// manifests already there. Every directory of the tree is watched before
// the first OnChange.
func (w *Watcher) addTree(dir string) error {
	var files []string
	err := filepath.Walk(dir, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return w.fsnotify.Add(walkPath)
		}
		files = append(files, walkPath)
		return nil
	})
	for _, f := range files {
		w.handleFile(f)
	}
	return err
}

// Close stops the watcher and waits for the event loop to exit.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.isClosed {
		w.mu.Unlock()
		return nil
	}
	w.isClosed = true
	started := w.started
	w.mu.Unlock()

	if !started {
		return w.fsnotify.Close()
	}
	close(w.done)
	<-w.stopped
	return nil
}

func (w *Watcher) start() {
	defer close(w.stopped)
	for {
		select {
		case e, ok := <-w.fsnotify.Events:
			if !ok {
				return
			}
			if e.Op&fsnotify.Create != 0 {
				if s, err := os.Stat(e.Name); err == nil && s.IsDir() {
					if err := w.addTree(e.Name); err != nil {
						w.reportError(e.Name, err)
					}
					continue
				}
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				w.handleFile(e.Name)
			}
			if e.Op&(fsnotify.Remove|fsnotify.Rename) != 0 && isManifest(e.Name) && w.OnRemove != nil {
				w.OnRemove(e.Name)
			}

		case err, ok := <-w.fsnotify.Errors:
			if !ok {
				return
			}
			w.reportError("", err)

		case <-w.done:
			w.fsnotify.Close()
			return
		}
	}
}

func (w *Watcher) handleFile(path string) {
	if !isManifest(path) {
		return
	}
	m, err := Load(path)
	if err != nil {
		w.reportError(path, err)
		return
	}
	core.LogDebug("pipeline manifest %s loaded", path)
	if w.OnChange != nil {
		w.OnChange(path, m)
	}
}

func (w *Watcher) reportError(path string, err error) {
	core.LogError("pipeline manifest %s: %s", path, err.Error())
	if w.OnError != nil {
		w.OnError(path, err)
	}
}

func isManifest(path string) bool {
	return strings.HasSuffix(path, Suffix)
}
