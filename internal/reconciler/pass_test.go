package reconciler

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arbor/internal/document"
	"arbor/internal/events"
	"arbor/internal/pathtree"
	"arbor/internal/store"
	"arbor/internal/vfs"
)

// recorder collects the events a pass delivers, in order.
type recorder struct {
	seen []events.Event
}

func (r *recorder) handle(ev events.Event) error {
	r.seen = append(r.seen, ev)
	return nil
}

func (r *recorder) reset() {
	r.seen = nil
}

func newTestEngine(t *testing.T) (*Engine, vfs.FS) {
	t.Helper()

	fs := vfs.NewMemory()
	e, err := New(Options{
		FS:                    fs,
		Store:                 store.NewMemory(),
		DisableStalenessCache: true,
	})
	require.NoError(t, err)
	return e, fs
}

func writeDoc(t *testing.T, fs vfs.FS, path string, tree pathtree.Tree) {
	t.Helper()
	require.NoError(t, document.Save(fs, path, tree))
}

func TestApplyAddsNewBranch(t *testing.T) {
	e, fs := newTestEngine(t)
	writeDoc(t, fs, "config.yaml", pathtree.Tree{"a": map[string]any{"b": 1}})

	rec := &recorder{}
	require.NoError(t, e.Subscribe(events.KindAdd, "a", rec.handle, nil))
	require.NoError(t, e.Subscribe(events.KindAdd, "a.b", rec.handle, nil))

	result, err := e.ApplyPendingChanges()
	require.NoError(t, err)

	assert.NotEmpty(t, result.ID)
	assert.False(t, result.Skipped)
	assert.Equal(t, 2, result.Added)
	assert.Equal(t, 2, result.Processed)

	require.Len(t, rec.seen, 2)
	assert.Equal(t, "a", rec.seen[0].Path)
	assert.Equal(t, map[string]any{"b": 1}, rec.seen[0].New)
	assert.Nil(t, rec.seen[0].Old)
	assert.Equal(t, "a.b", rec.seen[1].Path)
	assert.Equal(t, 1, rec.seen[1].New)

	got, err := e.Get("a.b", false)
	require.NoError(t, err)
	assert.Equal(t, 1, got)
}

func TestApplyUpdateCollapsesToParent(t *testing.T) {
	e, fs := newTestEngine(t)
	writeDoc(t, fs, "config.yaml", pathtree.Tree{"x": map[string]any{"y": 1}})

	_, err := e.ApplyPendingChanges()
	require.NoError(t, err)

	rec := &recorder{}
	require.NoError(t, e.Subscribe(events.KindUpdate, "x", rec.handle, nil))
	require.NoError(t, e.Subscribe(events.KindUpdate, "x.y", rec.handle, nil))

	writeDoc(t, fs, "config.yaml", pathtree.Tree{"x": map[string]any{"y": 2}})

	result, err := e.ApplyPendingChanges()
	require.NoError(t, err)
	assert.Equal(t, 2, result.Updated)

	require.Len(t, rec.seen, 2)
	assert.Equal(t, "x", rec.seen[0].Path)
	assert.Equal(t, map[string]any{"y": 1}, rec.seen[0].Old)
	assert.Equal(t, map[string]any{"y": 2}, rec.seen[0].New)
	assert.Equal(t, "x.y", rec.seen[1].Path)
	assert.Equal(t, 1, rec.seen[1].Old)
	assert.Equal(t, 2, rec.seen[1].New)
}

func TestApplyRemove(t *testing.T) {
	e, fs := newTestEngine(t)
	writeDoc(t, fs, "config.yaml", pathtree.Tree{"a": 1})

	_, err := e.ApplyPendingChanges()
	require.NoError(t, err)

	rec := &recorder{}
	require.NoError(t, e.Subscribe(events.KindRemove, "a", rec.handle, nil))

	writeDoc(t, fs, "config.yaml", pathtree.Tree{})

	result, err := e.ApplyPendingChanges()
	require.NoError(t, err)
	assert.Equal(t, 1, result.Removed)

	require.Len(t, rec.seen, 1)
	assert.Equal(t, events.KindRemove, rec.seen[0].Kind)
	assert.Equal(t, 1, rec.seen[0].Old)
	assert.Nil(t, rec.seen[0].New)

	got, err := e.Get("a", false)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestApplyRemovalsSettleFirst(t *testing.T) {
	e, fs := newTestEngine(t)
	writeDoc(t, fs, "config.yaml", pathtree.Tree{"old": 1})

	_, err := e.ApplyPendingChanges()
	require.NoError(t, err)

	rec := &recorder{}
	require.NoError(t, e.Subscribe(events.KindRemove, "old", rec.handle, nil))
	require.NoError(t, e.Subscribe(events.KindAdd, "fresh", rec.handle, nil))

	writeDoc(t, fs, "config.yaml", pathtree.Tree{"fresh": 2})

	_, err = e.ApplyPendingChanges()
	require.NoError(t, err)

	require.Len(t, rec.seen, 2)
	assert.Equal(t, events.KindRemove, rec.seen[0].Kind)
	assert.Equal(t, "old", rec.seen[0].Path)
	assert.Equal(t, events.KindAdd, rec.seen[1].Kind)
	assert.Equal(t, "fresh", rec.seen[1].Path)
}

func TestWildcardHandlerFiresOncePerPass(t *testing.T) {
	e, fs := newTestEngine(t)
	writeDoc(t, fs, "config.yaml", pathtree.Tree{
		"plugins": map[string]any{
			"abc123": map[string]any{
				"settings": map[string]any{"theme": "dark"},
			},
		},
	})

	_, err := e.ApplyPendingChanges()
	require.NoError(t, err)

	rec := &recorder{}
	require.NoError(t, e.Subscribe(events.KindUpdate, "plugins.{uid}", rec.handle, nil))

	writeDoc(t, fs, "config.yaml", pathtree.Tree{
		"plugins": map[string]any{
			"abc123": map[string]any{
				"settings": map[string]any{"theme": "light"},
			},
		},
	})

	result, err := e.ApplyPendingChanges()
	require.NoError(t, err)

	// The changed leaf and its subscribed ancestor both classify as
	// updates; the nested leaf re-evaluation runs after the ancestor's
	// write-back and lands as a no-op.
	assert.Equal(t, 2, result.Updated)
	assert.Equal(t, 3, result.Processed)

	// The handler saw the plugin exactly once, as a whole unit.
	require.Len(t, rec.seen, 1)
	assert.Equal(t, "plugins.abc123", rec.seen[0].Path)
	assert.Equal(t, []string{"abc123"}, rec.seen[0].Tokens)
	assert.Equal(t,
		map[string]any{"settings": map[string]any{"theme": "dark"}},
		rec.seen[0].Old)
	assert.Equal(t,
		map[string]any{"settings": map[string]any{"theme": "light"}},
		rec.seen[0].New)

	got, err := e.Get("plugins.abc123.settings.theme", false)
	require.NoError(t, err)
	assert.Equal(t, "light", got)
}

func TestScalarBecomesSubtree(t *testing.T) {
	e, fs := newTestEngine(t)
	writeDoc(t, fs, "config.yaml", pathtree.Tree{"a": 1})

	_, err := e.ApplyPendingChanges()
	require.NoError(t, err)

	rec := &recorder{}
	require.NoError(t, e.Subscribe(events.KindUpdate, "a", rec.handle, nil))
	require.NoError(t, e.Subscribe(events.KindAdd, "a.b", rec.handle, nil))

	writeDoc(t, fs, "config.yaml", pathtree.Tree{"a": map[string]any{"b": 2}})

	_, err = e.ApplyPendingChanges()
	require.NoError(t, err)

	require.Len(t, rec.seen, 2)
	assert.Equal(t, events.KindUpdate, rec.seen[0].Kind)
	assert.Equal(t, "a", rec.seen[0].Path)
	assert.Equal(t, 1, rec.seen[0].Old)
	assert.Equal(t, map[string]any{"b": 2}, rec.seen[0].New)
	assert.Equal(t, events.KindAdd, rec.seen[1].Kind)
	assert.Equal(t, "a.b", rec.seen[1].Path)

	got, err := e.Get("a.b", false)
	require.NoError(t, err)
	assert.Equal(t, 2, got)
}

func TestRepeatedPassConverges(t *testing.T) {
	e, fs := newTestEngine(t)
	writeDoc(t, fs, "config.yaml", pathtree.Tree{
		"agents": map[string]any{"alpha": map[string]any{"model": "m1"}},
		"ui":     map[string]any{"theme": "dark", "lang": "en"},
	})

	first, err := e.ApplyPendingChanges()
	require.NoError(t, err)
	assert.Positive(t, first.Total())

	second, err := e.ApplyPendingChanges()
	require.NoError(t, err)
	assert.Zero(t, second.Total())
	assert.Zero(t, second.Processed)
}

func TestHandlerErrorAbortsPass(t *testing.T) {
	e, fs := newTestEngine(t)
	writeDoc(t, fs, "config.yaml", pathtree.Tree{"zap": 1})

	_, err := e.ApplyPendingChanges()
	require.NoError(t, err)

	errBoom := errors.New("boom")
	require.NoError(t, e.Subscribe(events.KindRemove, "zap", func(events.Event) error {
		return errBoom
	}, nil))

	writeDoc(t, fs, "config.yaml", pathtree.Tree{"fresh": map[string]any{"x": 1}})

	_, err = e.ApplyPendingChanges()
	require.ErrorIs(t, err, errBoom)

	// The failed path was not written back and later categories never ran.
	got, err := e.Get("zap", false)
	require.NoError(t, err)
	assert.Equal(t, 1, got)

	got, err = e.Get("fresh.x", false)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStalenessSkipsUnchangedTree(t *testing.T) {
	dir := t.TempDir()
	fs := vfs.NewRoot(dir)
	writeDoc(t, fs, "config.yaml", pathtree.Tree{"a": 1})

	e, err := New(Options{FS: fs, Store: store.NewMemory()})
	require.NoError(t, err)

	first, err := e.ApplyPendingChanges()
	require.NoError(t, err)
	assert.False(t, first.Skipped)
	assert.Equal(t, 1, first.Added)

	require.NoError(t, e.Flush())

	second, err := e.ApplyPendingChanges()
	require.NoError(t, err)
	assert.True(t, second.Skipped)
	assert.Zero(t, second.Total())

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("a: 2\n"), 0o644))
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, future, future))

	third, err := e.ApplyPendingChanges()
	require.NoError(t, err)
	assert.False(t, third.Skipped)
	assert.Equal(t, 1, third.Updated)
}

func TestDesiredTreeRefreshedAfterExternalEdit(t *testing.T) {
	dir := t.TempDir()
	fs := vfs.NewRoot(dir)
	writeDoc(t, fs, "config.yaml", pathtree.Tree{"a": 1})

	e, err := New(Options{FS: fs, Store: store.NewMemory()})
	require.NoError(t, err)

	_, err = e.ApplyPendingChanges()
	require.NoError(t, err)
	require.NoError(t, e.Flush())

	got, err := e.Get("a", true)
	require.NoError(t, err)
	assert.Equal(t, 1, got)

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("a: 2\n"), 0o644))
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, future, future))

	got, err = e.Get("a", true)
	require.NoError(t, err)
	assert.Equal(t, 2, got)
}
