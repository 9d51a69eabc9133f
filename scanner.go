package main

import (
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"
)

// ScanEntry is a file selected for synchronization.
type ScanEntry struct {
	// AbsPath is the absolute path of the file on disk.
	AbsPath string
	// RelPath is slash separated and relative to the parent of the scanned root,
	// so its first segment is always the root folder's own name.
	RelPath string
}

// scanFolder walks root and every nested directory, yielding the files that pass
// the allow/ignore suffix filters. The returned sequence holds no state between
// iterations, ranging over it again walks the tree again.
//
// A walk failure is yielded once as a *ScanError and ends the sequence.
func scanFolder(root string, allow, ignore []string) iter.Seq2[ScanEntry, error] {
	return func(yield func(ScanEntry, error) bool) {
		absRoot, walkRoot, err := resolveRoot(root)
		if err != nil {
			yield(ScanEntry{}, &ScanError{Path: root, Err: err})
			return
		}
		name := filepath.Base(absRoot)

		stopped := false
		walkErr := filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if d.Type()&fs.ModeSymlink != 0 {
				info, err := os.Stat(path)
				if err != nil {
					return err
				}
				if info.IsDir() {
					return nil
				}
			}
			if !acceptName(d.Name(), allow, ignore) {
				return nil
			}

			rel, err := filepath.Rel(walkRoot, path)
			if err != nil {
				return err
			}
			if name != string(filepath.Separator) {
				rel = filepath.Join(name, rel)
			}
			if !yield(ScanEntry{AbsPath: path, RelPath: filepath.ToSlash(rel)}, nil) {
				stopped = true
				return filepath.SkipAll
			}
			return nil
		})
		if walkErr != nil && !stopped {
			yield(ScanEntry{}, &ScanError{Path: absRoot, Err: walkErr})
		}
	}
}

// resolveRoot returns the absolute spelling of root and the directory to walk.
// The two differ when root is, or goes through, a symlink: the walk follows it
// while relative paths keep the name the user gave.
func resolveRoot(root string) (absRoot, walkRoot string, err error) {
	absRoot, err = filepath.Abs(root)
	if err != nil {
		return "", "", err
	}
	walkRoot, err = filepath.EvalSymlinks(absRoot)
	if err != nil {
		return "", "", err
	}
	return absRoot, walkRoot, nil
}

// acceptName applies the literal, case-sensitive suffix filters to a file name.
func acceptName(name string, allow, ignore []string) bool {
	if len(allow) > 0 && !hasAnySuffix(name, allow) {
		return false
	}
	if len(ignore) > 0 && hasAnySuffix(name, ignore) {
		return false
	}
	return true
}

func hasAnySuffix(name string, suffixes []string) bool {
	for _, s := range suffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}
