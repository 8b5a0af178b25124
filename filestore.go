package cadence

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// FileStorage is a Storage backed by a YAML document on disk, organized as
// group → key → string value. Writes rewrite the file atomically; external
// edits can be observed through Watch and picked up with Store.Reload.
type FileStorage struct {
	path string

	mu     sync.Mutex
	groups map[string]map[string]string
}

// NewFileStorage creates a file storage at path. The file need not exist;
// it is created on first write.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{
		path:   path,
		groups: make(map[string]map[string]string),
	}
}

// Read returns the stored value for group/key, or def when absent or when
// the file is unreadable.
func (f *FileStorage) Read(group, key, def string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.loadLocked(); err != nil {
		return def
	}
	if v, ok := f.groups[group][key]; ok {
		return v
	}
	return def
}

// Write stores value under group/key and rewrites the file atomically.
func (f *FileStorage) Write(group, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.loadLocked(); err != nil {
		return fmt.Errorf("load settings file: %w", err)
	}
	g := f.groups[group]
	if g == nil {
		g = make(map[string]string)
		f.groups[group] = g
	}
	g[key] = value
	return f.flushLocked()
}

// loadLocked refreshes the in-memory document from disk. A missing file is
// an empty document.
func (f *FileStorage) loadLocked() error {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			f.groups = make(map[string]map[string]string)
			return nil
		}
		return err
	}
	groups := make(map[string]map[string]string)
	if err := yaml.Unmarshal(data, &groups); err != nil {
		return err
	}
	f.groups = groups
	return nil
}

// flushLocked writes the document to a temp file in the same directory and
// renames it into place.
func (f *FileStorage) flushLocked() error {
	data, err := yaml.Marshal(f.groups)
	if err != nil {
		return err
	}
	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, ".cadence-settings-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), f.path)
}

// Watch emits a notification whenever the settings file changes, until ctx
// is cancelled. The parent directory is watched rather than the file itself
// so atomic rename-into-place writes keep being observed across inode
// swaps. One notification is emitted immediately so consumers can prime
// themselves; coalescing is built in (a pending notification absorbs
// further changes).
func (f *FileStorage) Watch(ctx context.Context) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	dir := filepath.Dir(f.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}

	out := make(chan struct{}, 1)

	go func() {
		defer close(out)
		defer watcher.Close()

		notify := func() {
			select {
			case out <- struct{}{}:
			default:
			}
		}
		notify()

		name := filepath.Base(f.path)
		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != name {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				notify()

			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
				// Continue watching despite errors
			}
		}
	}()

	return out, nil
}
