package reconciler

import (
	"fmt"
	"time"

	"arbor/internal/document"
	"arbor/internal/events"
	"arbor/internal/filemap"
	"arbor/internal/pathtree"
	"arbor/internal/resolver"
	"arbor/internal/staleness"
	"arbor/internal/store"
	"arbor/internal/vfs"
	"arbor/pkg/logging"
)

// Engine reconciles the file-backed desired tree against the stored
// snapshot. It is not safe for concurrent use.
type Engine struct {
	opts Options

	fs    vfs.FS
	store store.Store
	cache staleness.Cache

	resolver *resolver.Resolver
	registry *events.Registry
	files    *filemap.Map

	// stored is the snapshot, hydrated from the record store exactly once.
	stored   pathtree.Tree
	hydrated bool

	// desired is the merged tree from the last resolution, with the files
	// that produced it.
	desired      pathtree.Tree
	desiredFiles []string

	snapshotDirty bool

	// stamped records that dateModified was written in the current dirty
	// window. Flush opens a new window.
	stamped bool

	ownsStore bool

	pass *passState
}

// New builds an engine from opts, applying defaults for zero values.
func New(opts Options) (*Engine, error) {
	if opts.RootFile == "" {
		opts.RootFile = DefaultRootFile
	}
	if opts.StalenessTTL == 0 {
		opts.StalenessTTL = staleness.DefaultTTL
	}
	if opts.FS == nil {
		opts.FS = vfs.NewRoot(".")
	}

	st := opts.Store
	ownsStore := false
	if st == nil {
		path := opts.StorePath
		if path == "" {
			path = DefaultStorePath
		}
		sq, err := store.NewSQLite(path)
		if err != nil {
			return nil, fmt.Errorf("opening record store: %w", err)
		}
		st = sq
		ownsStore = true
	}

	var cache staleness.Cache
	if !opts.DisableStalenessCache {
		cache = staleness.NewCache(st, opts.StalenessTTL)
	}

	e := &Engine{
		opts:      opts,
		fs:        opts.FS,
		store:     st,
		cache:     cache,
		resolver:  resolver.New(opts.FS, opts.StrictImports),
		registry:  events.NewRegistry(),
		files:     filemap.New(opts.RootFile),
		ownsStore: ownsStore,
	}
	logging.Debug("Engine", "Engine created for root %s", opts.RootFile)
	return e, nil
}

// Subscribe registers a handler for paths matching pattern under kind.
// Subscriptions live for the engine's lifetime.
func (e *Engine) Subscribe(kind events.Kind, pattern string, handler events.Handler, data any) error {
	if err := e.registry.Subscribe(kind, pattern, handler, data); err != nil {
		return err
	}
	logging.Debug("Engine", "Subscribed %s handler for %s", kind, pattern)
	return nil
}

// Get returns the value at path. With fromDesired set it reads the merged
// desired tree, resolving the import graph on first use; otherwise it reads
// the stored snapshot. The returned value is a copy.
func (e *Engine) Get(path string, fromDesired bool) (any, error) {
	if fromDesired {
		if err := e.ensureDesired(); err != nil {
			return nil, err
		}
		return pathtree.CloneValue(pathtree.Get(e.desired, path)), nil
	}

	if err := e.ensureHydrated(); err != nil {
		return nil, err
	}
	return pathtree.CloneValue(pathtree.Get(e.stored, path)), nil
}

// Save writes value at path into the desired tree and the backing file
// owning the path's top-level node, then processes the path so subscribers
// see the change immediately. A nil value deletes the path. The first Save
// of a dirty window also stamps dateModified in the root document.
func (e *Engine) Save(path string, value any) error {
	if path == "" {
		return fmt.Errorf("saving: empty path")
	}
	if err := e.ensureHydrated(); err != nil {
		return err
	}
	if err := e.ensureDesired(); err != nil {
		return err
	}

	top := pathtree.First(path)
	file := e.files.Resolve(top)
	doc, err := e.resolver.Document(file)
	if err != nil {
		return err
	}

	if value == nil {
		pathtree.Delete(doc, path)
		pathtree.Delete(e.desired, path)
	} else {
		pathtree.Set(doc, path, pathtree.CloneValue(value))
		pathtree.Set(e.desired, path, pathtree.CloneValue(value))
		if top != document.ImportsKey {
			e.files.MapNode(top, file)
		}
	}

	if err := e.stampDateModified(file); err != nil {
		return err
	}
	if err := document.Save(e.fs, file, doc); err != nil {
		return err
	}
	logging.Debug("Engine", "Saved %s to %s", path, file)

	e.beginPass()
	return e.processPath(path)
}

// Remove deletes the value at path.
func (e *Engine) Remove(path string) error {
	return e.Save(path, nil)
}

// Flush persists the snapshot and file map to the record store when dirty,
// records fresh file modification times for the staleness check, and opens
// a new dateModified window.
func (e *Engine) Flush() error {
	if e.snapshotDirty {
		raw, err := document.Encode(e.stored)
		if err != nil {
			return fmt.Errorf("encoding snapshot: %w", err)
		}
		if err := e.store.Set(store.KeySnapshot, raw); err != nil {
			return fmt.Errorf("persisting snapshot: %w", err)
		}
		e.snapshotDirty = false
	}

	if e.files.Dirty() {
		raw, err := e.files.Encode()
		if err != nil {
			return err
		}
		if err := e.store.Set(store.KeyFileMap, raw); err != nil {
			return fmt.Errorf("persisting file map: %w", err)
		}
		e.files.MarkClean()
	}

	if e.cache != nil && len(e.desiredFiles) > 0 {
		times := staleness.Snapshot(e.fs, e.desiredFiles)
		if err := e.cache.Set(e.opts.RootFile, times, e.opts.StalenessTTL); err != nil {
			// Advisory only. A stale payload just costs one extra diff.
			logging.Warn("Engine", "Recording staleness payload failed: %v", err)
		}
	}

	e.stamped = false
	logging.Debug("Engine", "Flushed persisted state")
	return nil
}

// Dirty reports unflushed snapshot or file map changes.
func (e *Engine) Dirty() bool {
	return e.snapshotDirty || e.files.Dirty()
}

// Files returns the documents the desired tree was last resolved from,
// root first. Empty until the first resolution.
func (e *Engine) Files() []string {
	out := make([]string, len(e.desiredFiles))
	copy(out, e.desiredFiles)
	return out
}

// Close releases the record store when the engine opened it itself.
func (e *Engine) Close() error {
	if !e.ownsStore {
		return nil
	}
	return e.store.Close()
}

// ensureHydrated loads the snapshot and file map from the record store on
// first use.
func (e *Engine) ensureHydrated() error {
	if e.hydrated {
		return nil
	}

	raw, ok, err := e.store.Get(store.KeySnapshot)
	if err != nil {
		return fmt.Errorf("loading stored snapshot: %w", err)
	}
	if ok {
		tree, err := document.Decode(store.KeySnapshot, raw)
		if err != nil {
			return fmt.Errorf("decoding stored snapshot: %w", err)
		}
		e.stored = tree
	} else {
		e.stored = pathtree.New()
	}

	raw, ok, err = e.store.Get(store.KeyFileMap)
	if err != nil {
		return fmt.Errorf("loading file map: %w", err)
	}
	if ok {
		m, err := filemap.Decode(e.opts.RootFile, raw)
		if err != nil {
			return fmt.Errorf("decoding file map: %w", err)
		}
		e.files = m
	}

	e.hydrated = true
	logging.Debug("Engine", "Hydrated snapshot with %d top-level nodes", len(e.stored))
	return nil
}

// ensureDesired resolves the desired tree on first use and re-resolves it
// unless the staleness check proves no document changed on disk since the
// last flush. Without a payload to vouch for the cached resolution, an
// out-of-band edit would go unseen until the next pass, so a long-lived
// engine resolves from disk instead.
func (e *Engine) ensureDesired() error {
	if e.desired == nil {
		return e.refreshDesired()
	}

	if e.cache != nil && len(e.desiredFiles) > 0 {
		if cached, ok := e.cache.Get(e.opts.RootFile); ok {
			if staleness.IsStale(e.fs, cached, e.desiredFiles) {
				return e.refreshDesired()
			}
			return nil
		}
	}
	return e.refreshDesired()
}

// refreshDesired re-resolves the import graph from disk, regenerating the
// root document first when it went missing.
func (e *Engine) refreshDesired() error {
	if err := e.regenerateRootIfMissing(); err != nil {
		return err
	}

	e.resolver.Reset()
	res, err := e.resolver.Resolve(e.opts.RootFile)
	if err != nil {
		return err
	}
	e.desired = res.Tree
	e.desiredFiles = res.Files
	return nil
}

// regenerateRootIfMissing rewrites the root document from the stored
// snapshot when the file disappeared. Entries that previously lived in
// imported files all land in the root.
func (e *Engine) regenerateRootIfMissing() error {
	ok, err := vfs.Exists(e.fs, e.opts.RootFile)
	if err != nil {
		return fmt.Errorf("checking root document: %w", err)
	}
	if ok {
		return nil
	}

	if err := e.ensureHydrated(); err != nil {
		return err
	}
	if len(e.stored) == 0 {
		return nil
	}

	logging.Warn("Engine", "Root document %s missing, regenerating it from the stored snapshot", e.opts.RootFile)
	if err := document.Save(e.fs, e.opts.RootFile, e.stored); err != nil {
		return fmt.Errorf("regenerating root document: %w", err)
	}
	e.resolver.Forget(e.opts.RootFile)
	for node := range e.stored {
		e.files.MapNode(node, e.opts.RootFile)
	}
	return nil
}

// stampDateModified writes the modification timestamp into the root
// document once per dirty window. When the routed write already targets the
// root, the caller's save carries the stamp to disk.
func (e *Engine) stampDateModified(targetFile string) error {
	if e.stamped {
		return nil
	}

	stamp := time.Now().Format(time.RFC3339)
	root, err := e.resolver.Document(e.opts.RootFile)
	if err != nil {
		return err
	}
	root[document.DateModifiedKey] = stamp
	e.desired[document.DateModifiedKey] = stamp

	if targetFile != e.opts.RootFile {
		if err := document.Save(e.fs, e.opts.RootFile, root); err != nil {
			return err
		}
	}
	e.stamped = true
	return nil
}
