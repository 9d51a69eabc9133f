package main

import (
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
)

// Manifest maps local relative paths to the remote keys used for them.
type Manifest map[string]string

// Write serializes the manifest as indented JSON, replacing any previous file.
// The content goes to a temporary file in the same directory first and is then
// renamed into place, so readers never observe a half-written manifest.
func (m Manifest) Write(path string) error {
	buf, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return &ManifestWriteError{Path: path, Err: err}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".manifest-*.tmp")
	if err != nil {
		return &ManifestWriteError{Path: path, Err: err}
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf); err != nil {
		tmp.Close()
		return &ManifestWriteError{Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &ManifestWriteError{Path: path, Err: err}
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return &ManifestWriteError{Path: path, Err: err}
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return &ManifestWriteError{Path: path, Err: err}
	}
	return nil
}
