// Package watcher triggers reconciliation passes when configuration
// documents change on disk.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/singleflight"

	"arbor/internal/reconciler"
	"arbor/pkg/logging"
)

// Reconciler is the engine surface the watcher drives.
type Reconciler interface {
	ApplyPendingChanges() (reconciler.PassResult, error)
	Flush() error
	Files() []string
}

// Options configures a Watcher.
type Options struct {
	// BaseDir is the directory the engine's filesystem is rooted at.
	// Watches are armed on absolute paths beneath it.
	BaseDir string

	// Debounce is how long to soak further file events before running a
	// pass. Defaults to 500ms.
	Debounce time.Duration

	// OnPass, when set, receives the result of every completed pass.
	OnPass func(reconciler.PassResult)
}

// Watcher debounces file events over the resolved document set and runs one
// reconciliation pass at a time. After each pass the watched set is re-armed,
// since imports may have changed which files matter.
type Watcher struct {
	mu sync.Mutex

	engine Reconciler
	opts   Options

	watcher *fsnotify.Watcher

	// watched tracks directories already added to the fsnotify watcher.
	watched map[string]bool

	// pending is the live debounce timer, if any.
	pending *time.Timer

	// group collapses overlapping triggers into one in-flight pass.
	group singleflight.Group

	stopCh  chan struct{}
	wg      sync.WaitGroup
	running bool
}

// New builds a watcher over engine. Start arms it.
func New(engine Reconciler, opts Options) *Watcher {
	if opts.Debounce == 0 {
		opts.Debounce = 500 * time.Millisecond
	}
	return &Watcher{
		engine:  engine,
		opts:    opts,
		watched: make(map[string]bool),
		stopCh:  make(chan struct{}),
	}
}

// Start begins watching the directories of the engine's resolved file list.
// The engine should have resolved at least once so the list is populated.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return fmt.Errorf("starting file watcher: %w", err)
	}
	w.watcher = fsw
	w.running = true
	w.stopCh = make(chan struct{})
	w.mu.Unlock()

	w.armWatches()

	w.wg.Add(1)
	go w.loop(ctx, fsw)

	logging.Info("Watcher", "Watching %s for document changes", w.opts.BaseDir)
	return nil
}

// Stop tears the watcher down and waits for the event loop to exit.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	close(w.stopCh)

	if w.pending != nil {
		w.pending.Stop()
		w.pending = nil
	}
	fsw := w.watcher
	w.watcher = nil
	w.mu.Unlock()

	if fsw != nil {
		if err := fsw.Close(); err != nil {
			logging.Error("Watcher", err, "Closing file watcher")
		}
	}
	w.wg.Wait()

	logging.Info("Watcher", "Stopped")
	return nil
}

// armWatches adds a watch for the directory of every resolved document.
// Directories already watched stay watched.
func (w *Watcher) armWatches() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.watcher == nil {
		return
	}

	for _, dir := range watchDirs(w.opts.BaseDir, w.engine.Files()) {
		if w.watched[dir] {
			continue
		}
		if err := w.watcher.Add(dir); err != nil {
			logging.Warn("Watcher", "Cannot watch %s: %v", dir, err)
			continue
		}
		w.watched[dir] = true
		logging.Debug("Watcher", "Watching directory %s", dir)
	}
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return

		case <-w.stopCh:
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			logging.Error("Watcher", err, "File watcher error")
		}
	}
}

// handleEvent debounces one filesystem event. Only YAML document changes
// count; everything else in the watched directories is ignored.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !isYAMLFile(event.Name) {
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	logging.Debug("Watcher", "Document event: %s %s", event.Op, event.Name)
	w.soak()
}

// soak schedules a pass one debounce interval out, resetting any timer
// already armed.
func (w *Watcher) soak() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	if w.pending != nil {
		w.pending.Stop()
	}
	w.pending = time.AfterFunc(w.opts.Debounce, w.runPass)
}

// runPass executes one reconciliation pass. A trigger that lands while a
// pass is already in flight joins it, then soaks another interval and runs
// again: the file state behind the trigger may postdate the joined diff.
func (w *Watcher) runPass() {
	w.mu.Lock()
	running := w.running
	w.mu.Unlock()
	if !running {
		return
	}

	executed := false
	result, err, _ := w.group.Do("pass", func() (any, error) {
		executed = true
		res, err := w.engine.ApplyPendingChanges()
		if err != nil {
			return res, err
		}
		if err := w.engine.Flush(); err != nil {
			return res, err
		}
		return res, nil
	})
	if !executed {
		w.soak()
		return
	}
	if err != nil {
		logging.Error("Watcher", err, "Reconciliation pass failed")
		return
	}

	res := result.(reconciler.PassResult)
	if !res.Skipped {
		logging.Info("Watcher", "Pass %s applied %d changes", res.ID, res.Total())
	}

	// Imports may have added or moved files, so re-arm.
	w.armWatches()

	if w.opts.OnPass != nil {
		w.opts.OnPass(res)
	}
}

// watchDirs maps root-relative document paths to the deduplicated set of
// absolute directories containing them.
func watchDirs(baseDir string, files []string) []string {
	seen := make(map[string]bool, len(files))
	dirs := make([]string, 0, len(files))
	for _, f := range files {
		dir := filepath.Dir(filepath.Join(baseDir, filepath.FromSlash(f)))
		if seen[dir] {
			continue
		}
		seen[dir] = true
		dirs = append(dirs, dir)
	}
	return dirs
}

// isYAMLFile checks if a file path is a YAML file.
func isYAMLFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
