// Package watcher provides file system watching with debouncing for icon
// directories.
package watcher

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/zjrosen/iconkit/internal/icon"
	"github.com/zjrosen/iconkit/internal/loader"
	"github.com/zjrosen/iconkit/internal/log"
)

// Change identifies one icon whose file was written, created, removed or
// renamed.
type Change struct {
	Namespace string
	Name      string
	Removed   bool
}

// Key returns the fully-qualified reference of the changed icon.
func (c Change) Key() string {
	return icon.Key(c.Namespace, c.Name)
}

// Watcher monitors icon directories and sends batches of changed icons.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	roots     []root
	debounce  time.Duration
	changes   chan []Change
	done      chan struct{}
	stopOnce  sync.Once
}

type root struct {
	namespace string
	path      string
}

// Config holds watcher configuration options.
type Config struct {
	// Dirs maps namespace to icon directory.
	Dirs        map[string]string
	DebounceDur time.Duration
}

// DefaultConfig returns sensible defaults for the watcher.
func DefaultConfig(dirs map[string]string) Config {
	return Config{
		Dirs:        dirs,
		DebounceDur: 100 * time.Millisecond,
	}
}

// New creates a new icon directory watcher.
func New(cfg Config) (*Watcher, error) {
	roots := make([]root, 0, len(cfg.Dirs))
	for ns, dir := range cfg.Dirs {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("resolving icon dir %s: %w", dir, err)
		}
		roots = append(roots, root{namespace: ns, path: abs})
	}
	// Longest path first so nested roots win over their parents.
	slices.SortFunc(roots, func(a, b root) int {
		return len(b.path) - len(a.path)
	})

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	return &Watcher{
		fsWatcher: fsw,
		roots:     roots,
		debounce:  cfg.DebounceDur,
		changes:   make(chan []Change, 1),
		done:      make(chan struct{}),
	}, nil
}

// Start begins watching every configured directory tree.
// Returns a channel that receives each debounced batch of changes. The
// channel is closed once the watcher stops.
func (w *Watcher) Start() (<-chan []Change, error) {
	for _, r := range w.roots {
		if err := w.addTree(r.path); err != nil {
			return nil, err
		}
	}

	go w.loop()

	return w.changes, nil
}

// Stop terminates the watcher and releases resources. It is safe to call
// more than once.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.fsWatcher.Close()
	})
	return err
}

// addTree watches dir and every non-hidden directory below it. fsnotify is
// not recursive, so nested icon folders need their own watch.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("watching directory %s: %w", path, err)
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.fsWatcher.Add(path); err != nil {
			return fmt.Errorf("watching directory %s: %w", path, err)
		}
		return nil
	})
}

// loop processes file system events with debouncing.
func (w *Watcher) loop() {
	defer close(w.changes)

	var (
		timer   *time.Timer
		pending = make(map[string]Change)
	)

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}

			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						log.ErrorErr(log.CatWatcher, "Failed to watch new directory", err, "path", event.Name)
					}
					continue
				}
			}

			change, ok := w.changeFor(event)
			if !ok {
				continue
			}
			pending[change.Key()] = change

			// Reset or start debounce timer
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case <-func() <-chan time.Time {
			if timer != nil {
				return timer.C
			}
			return nil
		}():
			timer = nil
			if len(pending) == 0 {
				continue
			}
			batch := make([]Change, 0, len(pending))
			for _, c := range pending {
				batch = append(batch, c)
			}
			slices.SortFunc(batch, func(a, b Change) int {
				return strings.Compare(a.Key(), b.Key())
			})
			clear(pending)

			log.Debug(log.CatWatcher, "Icon files changed", "count", len(batch))
			select {
			case w.changes <- batch:
			case <-w.done:
				return
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.ErrorErr(log.CatWatcher, "Watch error", err)

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// changeFor maps an event on an *.svg file below a watched root onto the
// icon it affects.
func (w *Watcher) changeFor(event fsnotify.Event) (Change, bool) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return Change{}, false
	}
	if filepath.Ext(event.Name) != loader.Extension || strings.HasPrefix(filepath.Base(event.Name), ".") {
		return Change{}, false
	}

	for _, r := range w.roots {
		rel, err := filepath.Rel(r.path, event.Name)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		name := strings.TrimSuffix(filepath.ToSlash(rel), loader.Extension)
		return Change{
			Namespace: r.namespace,
			Name:      loader.NormalizeName(name),
			Removed:   event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename),
		}, true
	}
	return Change{}, false
}
