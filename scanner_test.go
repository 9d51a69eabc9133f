package main

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanFolder(t *testing.T) {
	root := newSite(t, map[string]string{
		"a.txt":            "a",
		"b.jpg":            "b",
		"css/main.css":     "body{}",
		"css/vendor/x.css": "x",
		"js/app.js":        "app",
		"js/app.js.map":    "{}",
	})

	tests := []struct {
		name   string
		allow  []string
		ignore []string
		want   []string
	}{
		{
			name: "no filters walks every nested directory",
			want: []string{"site/a.txt", "site/b.jpg", "site/css/main.css", "site/css/vendor/x.css", "site/js/app.js", "site/js/app.js.map"},
		},
		{
			name:  "allow",
			allow: []string{".txt"},
			want:  []string{"site/a.txt"},
		},
		{
			name:   "ignore",
			ignore: []string{".txt"},
			want:   []string{"site/b.jpg", "site/css/main.css", "site/css/vendor/x.css", "site/js/app.js", "site/js/app.js.map"},
		},
		{
			name:  "several allowed suffixes",
			allow: []string{".css", ".js"},
			want:  []string{"site/css/main.css", "site/css/vendor/x.css", "site/js/app.js"},
		},
		{
			name:   "allow then ignore",
			allow:  []string{".css"},
			ignore: []string{"x.css"},
			want:   []string{"site/css/main.css"},
		},
		{
			name:  "suffix match is literal and case sensitive",
			allow: []string{".TXT"},
			want:  nil,
		},
		{
			name:  "suffix without dot",
			allow: []string{"map"},
			want:  []string{"site/js/app.js.map"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := relPaths(collectScan(t, root, tt.allow, tt.ignore))
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScanFolder_AbsPath(t *testing.T) {
	root := newSite(t, map[string]string{"sub/test.txt": "x"})

	entries := collectScan(t, root, nil, nil)
	require.Len(t, entries, 1)

	realRoot, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(entries[0].AbsPath))
	assert.Equal(t, filepath.Join(realRoot, "sub", "test.txt"), entries[0].AbsPath)
	assert.Equal(t, "site/sub/test.txt", entries[0].RelPath)
}

func TestScanFolder_RootSpelling(t *testing.T) {
	root := newSite(t, map[string]string{"test.txt": "x"})
	parent := filepath.Dir(root)

	t.Chdir(parent)

	for _, spelling := range []string{root, root + string(filepath.Separator), "site", "site/", "./site", filepath.Join("..", filepath.Base(parent), "site")} {
		t.Run(spelling, func(t *testing.T) {
			assert.Equal(t, []string{"site/test.txt"}, relPaths(collectScan(t, spelling, nil, nil)))
		})
	}
}

func TestScanFolder_Restartable(t *testing.T) {
	root := newSite(t, map[string]string{"a.txt": "a", "b.txt": "b"})
	seq := scanFolder(root, nil, nil)

	var first, second []string
	for e, err := range seq {
		require.NoError(t, err)
		first = append(first, e.RelPath)
	}
	for e, err := range seq {
		require.NoError(t, err)
		second = append(second, e.RelPath)
	}

	assert.Equal(t, []string{"site/a.txt", "site/b.txt"}, first)
	assert.Equal(t, first, second)
}

func TestScanFolder_EarlyBreak(t *testing.T) {
	root := newSite(t, map[string]string{"a.txt": "a", "b.txt": "b", "c.txt": "c"})

	count := 0
	for _, err := range scanFolder(root, nil, nil) {
		require.NoError(t, err)
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(t, 2, count)
}

func TestScanFolder_MissingRoot(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")

	var errs []error
	for _, err := range scanFolder(missing, nil, nil) {
		errs = append(errs, err)
	}

	require.Len(t, errs, 1)
	var scanErr *ScanError
	require.ErrorAs(t, errs[0], &scanErr)
	assert.True(t, errors.Is(errs[0], os.ErrNotExist))
}

func TestScanFolder_UnreadableDirectory(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced")
	}

	root := newSite(t, map[string]string{"a.txt": "a", "locked/b.txt": "b"})
	locked := filepath.Join(root, "locked")
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	var scanErr *ScanError
	for _, err := range scanFolder(root, nil, nil) {
		if err != nil {
			require.ErrorAs(t, err, &scanErr)
		}
	}
	require.NotNil(t, scanErr, "expected the walk to fail")
}

func TestScanFolder_SkipsSymlinkedDirectories(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}

	root := newSite(t, map[string]string{"a.txt": "a"})
	outside := t.TempDir()
	writeTree(t, outside, map[string]string{"shared/b.txt": "b", "c.txt": "c"})

	require.NoError(t, os.Symlink(filepath.Join(outside, "shared"), filepath.Join(root, "shared")))
	require.NoError(t, os.Symlink(filepath.Join(outside, "c.txt"), filepath.Join(root, "c.txt")))

	assert.Equal(t, []string{"site/a.txt", "site/c.txt"}, relPaths(collectScan(t, root, nil, nil)))
}

func TestScanFolder_SymlinkedRoot(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}

	parent := t.TempDir()
	writeTree(t, parent, map[string]string{"build-42/app.js": "a", "build-42/css/site.css": "c"})
	link := filepath.Join(parent, "dist")
	require.NoError(t, os.Symlink("build-42", link))

	entries := collectScan(t, link, nil, nil)

	assert.Equal(t, []string{"dist/app.js", "dist/css/site.css"}, relPaths(entries))
	for _, e := range entries {
		_, err := os.Stat(e.AbsPath)
		assert.NoError(t, err, e.AbsPath)
	}
}
