package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arbor/internal/document"
	"arbor/internal/pathtree"
	"arbor/internal/reconciler"
	"arbor/internal/store"
	"arbor/internal/vfs"
)

func TestIsYAMLFile(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"/path/to/file.yaml", true},
		{"/path/to/file.yml", true},
		{"/path/to/file.YAML", true},
		{"/path/to/file.json", false},
		{"/path/to/file.txt", false},
		{"/path/to/file", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := isYAMLFile(tt.path); got != tt.expected {
				t.Errorf("isYAMLFile(%s) = %v, want %v", tt.path, got, tt.expected)
			}
		})
	}
}

func TestWatchDirs(t *testing.T) {
	base := filepath.Join("/", "base")
	dirs := watchDirs(base, []string{"config.yaml", "sub/extra.yaml", "sub/other.yaml"})

	want := []string{base, filepath.Join(base, "sub")}
	assert.Equal(t, want, dirs)
}

func TestWatcherRunsPassOnChange(t *testing.T) {
	dir := t.TempDir()
	fs := vfs.NewRoot(dir)
	require.NoError(t, document.Save(fs, "config.yaml", pathtree.Tree{"a": 1}))

	engine, err := reconciler.New(reconciler.Options{
		FS:                    fs,
		Store:                 store.NewMemory(),
		DisableStalenessCache: true,
	})
	require.NoError(t, err)

	_, err = engine.ApplyPendingChanges()
	require.NoError(t, err)

	results := make(chan reconciler.PassResult, 8)
	w := New(engine, Options{
		BaseDir:  dir,
		Debounce: 50 * time.Millisecond,
		OnPass:   func(r reconciler.PassResult) { results <- r },
	})
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("a: 2\n"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("a: 3\n"), 0o644))

	applied := 0
	select {
	case res := <-results:
		applied += res.Total()
	case <-time.After(5 * time.Second):
		t.Fatal("no pass ran after document change")
	}

	// Drain until the watcher goes quiet, then inspect the engine.
	for {
		select {
		case res := <-results:
			applied += res.Total()
		case <-time.After(time.Second):
			assert.Positive(t, applied)

			got, err := engine.Get("a", false)
			require.NoError(t, err)
			assert.Equal(t, 3, got)
			return
		}
	}
}

func TestWatcherStartStopIdempotent(t *testing.T) {
	dir := t.TempDir()
	fs := vfs.NewRoot(dir)
	require.NoError(t, document.Save(fs, "config.yaml", pathtree.Tree{"a": 1}))

	engine, err := reconciler.New(reconciler.Options{
		FS:                    fs,
		Store:                 store.NewMemory(),
		DisableStalenessCache: true,
	})
	require.NoError(t, err)
	_, err = engine.ApplyPendingChanges()
	require.NoError(t, err)

	w := New(engine, Options{BaseDir: dir})
	require.NoError(t, w.Start(context.Background()))
	require.NoError(t, w.Start(context.Background()))
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}
