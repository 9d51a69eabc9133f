package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeTree creates files (slash separated paths relative to root) with the given content.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()

	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

// newSite creates <tmp>/site populated with files and returns its path.
func newSite(t *testing.T, files map[string]string) string {
	t.Helper()

	root := filepath.Join(t.TempDir(), "site")
	require.NoError(t, os.MkdirAll(root, 0o755))
	writeTree(t, root, files)
	return root
}

func collectScan(t *testing.T, root string, allow, ignore []string) []ScanEntry {
	t.Helper()

	var entries []ScanEntry
	for entry, err := range scanFolder(root, allow, ignore) {
		require.NoError(t, err)
		entries = append(entries, entry)
	}
	return entries
}

func relPaths(entries []ScanEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.RelPath)
	}
	return out
}
