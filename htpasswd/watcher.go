package htpasswd

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher is a file-backed credential store that reloads itself when the
// underlying htpasswd file changes on disk. It watches the file's parent
// directory so that atomic replace-by-rename (the way most tools rewrite
// credential files) is picked up as well as in-place writes.
//
// A reload that fails — unreadable file, malformed "$apr1$" entry — keeps
// the previous snapshot, so lookups never observe a half-loaded store.
//
// # Thread safety
//
// All Watcher methods are safe for concurrent use. A [sync.RWMutex]
// serialises snapshot swaps while allowing concurrent lookups.
type Watcher struct {
	path string
	fsw  *fsnotify.Watcher
	done chan struct{}

	mu   sync.RWMutex
	file *File
}

// NewWatcher loads the htpasswd file at path and starts watching it for
// changes. Callers must Close the returned Watcher when done.
//
// The initial load is mandatory: if the file cannot be read or parsed,
// NewWatcher fails rather than serving an empty store.
func NewWatcher(path string) (*Watcher, error) {
	file, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("htpasswd: failed to create file watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("htpasswd: failed to watch %s: %w", filepath.Dir(path), err)
	}

	w := &Watcher{
		path: path,
		fsw:  fsw,
		done: make(chan struct{}),
		file: file,
	}
	go w.run()
	return w, nil
}

// Check verifies username/password against the current snapshot. Semantics
// match [File.Check].
func (w *Watcher) Check(username, password string) (bool, error) {
	return w.snapshot().Check(username, password)
}

// HasUser reports whether the current snapshot has an entry for username.
func (w *Watcher) HasUser(username string) bool {
	return w.snapshot().HasUser(username)
}

// File returns the current immutable snapshot. The snapshot remains valid
// (and consistent) after subsequent reloads; it just goes stale.
func (w *Watcher) File() *File {
	return w.snapshot()
}

// Reload re-reads the htpasswd file immediately. On failure the previous
// snapshot stays in place and the error is returned.
func (w *Watcher) Reload() error {
	file, err := LoadFile(w.path)
	if err != nil {
		return err
	}
	w.mu.Lock()
	w.file = file
	w.mu.Unlock()
	return nil
}

// Close stops watching and releases the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}

func (w *Watcher) snapshot() *File {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.file
}

func (w *Watcher) run() {
	target := filepath.Clean(w.path)
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			// Best effort: a failed reload keeps the old snapshot.
			_ = w.Reload()
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
		}
	}
}
