package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o644))
}

func TestScanDirectory(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "b.pdf"))
	touch(t, filepath.Join(root, "a.PDF"))
	touch(t, filepath.Join(root, "notes.txt"))
	touch(t, filepath.Join(root, "nested", "c.pdf"))
	touch(t, filepath.Join(root, ".cache", "d.pdf"))
	touch(t, filepath.Join(root, ".hidden.pdf"))

	paths, skipped, stats, err := ScanDirectory(root, true)
	require.NoError(t, err)
	assert.Empty(t, skipped)
	assert.Equal(t, []string{
		filepath.Join(root, "a.PDF"),
		filepath.Join(root, "b.pdf"),
		filepath.Join(root, "nested", "c.pdf"),
	}, paths)
	assert.Equal(t, uint32(3), stats.Matched)

	paths, _, _, err = ScanDirectory(root, false)
	require.NoError(t, err)
	assert.Len(t, paths, 5)
}

func TestScanDirectory_Errors(t *testing.T) {
	_, _, _, err := ScanDirectory("  ", false)
	assert.Error(t, err)

	_, _, _, err = ScanDirectory(filepath.Join(t.TempDir(), "missing"), false)
	assert.Error(t, err)
}

func TestWatch_EmitsNewReports(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "existing.pdf"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, _, err := Watch(ctx, WatchConfig{Roots: []string{root}, InitialScan: true, Debounce: 20 * time.Millisecond}, nil)
	require.NoError(t, err)

	next := func() string {
		select {
		case p := <-events:
			return p
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for watch event")
			return ""
		}
	}
	assert.Equal(t, filepath.Join(root, "existing.pdf"), next())

	touch(t, filepath.Join(root, "ignored.txt"))
	touch(t, filepath.Join(root, "new.pdf"))
	assert.Equal(t, filepath.Join(root, "new.pdf"), next())

	cancel()
	for range events {
	}
}

func TestWatch_NoRoots(t *testing.T) {
	_, _, err := Watch(context.Background(), WatchConfig{}, nil)
	assert.Error(t, err)
}
