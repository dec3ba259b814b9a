package reconciler

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"arbor/internal/diff"
	"arbor/internal/document"
	"arbor/internal/events"
	"arbor/internal/pathtree"
	"arbor/internal/staleness"
	"arbor/pkg/logging"
)

// Category keys used by PendingChangeSummary.
const (
	CategoryAdded   = "added"
	CategoryChanged = "changed"
	CategoryRemoved = "removed"
)

// ApplyPendingChanges runs one full reconciliation pass: resolve the
// desired tree, diff it against the stored snapshot and dispatch events for
// every divergent path. Removals settle first, then changes, then
// additions; within each category deeper paths run before shallower ones.
// A pass whose staleness check proves nothing changed on disk is skipped
// outright.
func (e *Engine) ApplyPendingChanges() (PassResult, error) {
	start := time.Now()
	st := e.beginPass()

	finish := func() PassResult {
		st.result.Duration = time.Since(start)
		return st.result
	}

	if err := e.ensureHydrated(); err != nil {
		return finish(), err
	}

	if e.cache != nil {
		if cached, ok := e.cache.Get(e.opts.RootFile); ok {
			files := e.desiredFiles
			if len(files) == 0 {
				files = cachedFiles(cached)
			}
			if !staleness.IsStale(e.fs, cached, files) {
				st.result.Skipped = true
				logging.Debug("Engine", "Pass %s skipped, nothing modified since the last flush", st.id)
				return finish(), nil
			}
		}
	}

	if err := e.refreshDesired(); err != nil {
		return finish(), err
	}

	cs := diff.Compute(e.desired, e.stored)
	logging.Debug("Engine", "Pass %s diff: %d removed, %d changed, %d added",
		st.id, len(cs.Removed), len(cs.Changed), len(cs.Added))

	for _, category := range [][]string{cs.Removed, cs.Changed, cs.Added} {
		for _, path := range category {
			if err := e.processPath(path); err != nil {
				return finish(), fmt.Errorf("pass %s: %w", st.id, err)
			}
		}
	}

	if err := e.files.Regenerate(e.desiredFiles, e.resolver.Document); err != nil {
		return finish(), fmt.Errorf("pass %s: %w", st.id, err)
	}

	result := finish()
	logging.Info("Engine", "Pass %s dispatched %d events across %d paths in %s",
		st.id, result.Total(), result.Processed, result.Duration)
	return result, nil
}

// IsUpdatePending reports whether a pass would dispatch any events.
func (e *Engine) IsUpdatePending() (bool, error) {
	if err := e.ensureHydrated(); err != nil {
		return false, err
	}
	if err := e.refreshDesired(); err != nil {
		return false, err
	}
	return !diff.Compute(e.desired, e.stored).Empty(), nil
}

// PendingChangeSummary returns the pending divergence per category, with
// paths reduced to their top two segments for display. All three category
// keys are always present.
func (e *Engine) PendingChangeSummary() (map[string][]string, error) {
	if err := e.ensureHydrated(); err != nil {
		return nil, err
	}
	if err := e.refreshDesired(); err != nil {
		return nil, err
	}

	cs := diff.Compute(e.desired, e.stored)
	return map[string][]string{
		CategoryAdded:   summarize(cs.Added),
		CategoryChanged: summarize(cs.Changed),
		CategoryRemoved: summarize(cs.Removed),
	}, nil
}

// beginPass opens a fresh dispatch scope. Save and ApplyPendingChanges each
// begin their own pass; re-entrant processing within one pass shares it.
func (e *Engine) beginPass() *passState {
	st := &passState{
		id:        uuid.NewString(),
		processed: make(map[string]bool),
	}
	st.result.ID = st.id
	e.pass = st
	return st
}

// processPath classifies path against the stored snapshot, dispatches the
// resulting event, re-evaluates nested paths, then writes the desired value
// back into the snapshot. A path already handled in this pass is skipped,
// which makes handler-triggered re-entry idempotent.
func (e *Engine) processPath(path string) error {
	st := e.pass
	if st.processed[path] {
		return nil
	}
	st.processed[path] = true

	if path == document.ImportsKey || path == document.DateModifiedKey {
		return nil
	}

	oldVal := pathtree.Get(e.stored, path)
	newVal := pathtree.Get(e.desired, path)
	st.result.Processed++

	var kind events.Kind
	switch {
	case oldVal == nil && newVal == nil:
		return nil
	case oldVal == nil:
		kind = events.KindAdd
		st.result.Added++
	case newVal == nil:
		kind = events.KindRemove
		st.result.Removed++
	default:
		if pathtree.Equal(oldVal, newVal) {
			return nil
		}
		kind = events.KindUpdate
		st.result.Updated++
	}

	logging.Debug("Engine", "Pass %s %s %s", st.id, kind, path)
	if e.opts.Observer != nil {
		e.opts.Observer(kind, path)
	}
	if err := e.dispatch(kind, path, oldVal, newVal); err != nil {
		return err
	}

	// Children are re-evaluated against the snapshot as it was before this
	// write, so deeper subscribers observe their own leaf transitions.
	for _, child := range childKeys(oldVal, newVal) {
		if err := e.processPath(pathtree.Join(path, child)); err != nil {
			return err
		}
	}

	if kind == events.KindRemove {
		pathtree.Delete(e.stored, path)
	} else {
		pathtree.Set(e.stored, path, pathtree.CloneValue(newVal))
	}
	e.snapshotDirty = true
	return nil
}

// dispatch runs every subscription matching kind and path. A full match
// invokes the handler; a prefix match re-enters processing for the matched
// prefix so the broader path is handled as one unit.
func (e *Engine) dispatch(kind events.Kind, path string, oldVal, newVal any) error {
	for _, m := range e.registry.Match(kind, path) {
		if m.Extra != "" {
			logging.Debug("Engine", "Pattern %s widens %s to %s", m.Binding.Pattern, path, m.Prefix)
			if err := e.processPath(m.Prefix); err != nil {
				return err
			}
			continue
		}

		ev := events.Event{
			Kind:   kind,
			Path:   path,
			Old:    oldVal,
			New:    newVal,
			Tokens: m.Tokens,
			Data:   m.Binding.Data,
		}
		if err := m.Binding.Handler(ev); err != nil {
			return fmt.Errorf("handler %s for %s: %w", m.Binding.Pattern, path, err)
		}
	}
	return nil
}

// childKeys returns the sorted union of child keys across both sides of a
// transition. Scalars contribute nothing.
func childKeys(oldVal, newVal any) []string {
	seen := make(map[string]struct{})
	if m, ok := oldVal.(map[string]any); ok {
		for k := range m {
			seen[k] = struct{}{}
		}
	}
	if m, ok := newVal.(map[string]any); ok {
		for k := range m {
			seen[k] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return nil
	}

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// summarize reduces paths to their top two segments, deduplicated and
// sorted.
func summarize(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		seen[pathtree.Truncate(p, 2)] = struct{}{}
	}

	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// cachedFiles lists the files recorded in a staleness payload, for the
// first pass of a process when no resolution ran yet.
func cachedFiles(cached map[string]time.Time) []string {
	files := make([]string, 0, len(cached))
	for f := range cached {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}
