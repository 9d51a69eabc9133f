package main

import (
	"crypto/md5" // #nosec G501 - cache key, not a security boundary
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// placeholder rendered for an unset header in the fingerprint seed. Keys already
// published by earlier deployments depend on it, do not change it.
const placeholder = "None"

// fingerprintOptions are the attributes folded into every remote key.
type fingerprintOptions struct {
	CacheControl *string
	ExpiresDelta *int64
	Gzip         bool

	UseContent   bool
	UseSize      bool
	UseTimestamp bool
}

// seed renders the transfer-affecting part of the fingerprint:
// "{cacheControl}-{expiresDelta}-{gzip}".
func (o fingerprintOptions) seed() string {
	cc := placeholder
	if o.CacheControl != nil {
		cc = *o.CacheControl
	}
	exp := placeholder
	if o.ExpiresDelta != nil {
		exp = strconv.FormatInt(*o.ExpiresDelta, 10)
	}
	gz := "False"
	if o.Gzip {
		gz = "True"
	}
	return cc + "-" + exp + "-" + gz
}

// fingerprint builds the string hashed into the key of the file at path.
func fingerprint(path string, o fingerprintOptions) (string, error) {
	var b strings.Builder
	b.WriteString(o.seed())

	if o.UseContent {
		sum, err := md5File(path)
		if err != nil {
			return "", err
		}
		b.WriteString(sum)
	}

	if o.UseSize || o.UseTimestamp {
		info, err := os.Stat(path)
		if err != nil {
			return "", err
		}
		if o.UseSize {
			b.WriteString(strconv.FormatInt(info.Size(), 10))
		}
		if o.UseTimestamp {
			b.WriteString(formatModTime(info.ModTime()))
		}
	}

	return b.String(), nil
}

// composeKey derives the remote key of the file at absPath, scanned from root:
// prefix + "/" + subdirs + "/" + stem + "-" + md5(fingerprint) + ext.
func composeKey(root, prefix, absPath string, o fingerprintOptions) (string, error) {
	fp, err := fingerprint(absPath, o)
	if err != nil {
		return "", &ScanError{Path: absPath, Err: err}
	}

	dir, base := filepath.Split(absPath)
	if dir, err = filepath.Abs(dir); err != nil {
		return "", &ScanError{Path: absPath, Err: err}
	}
	stem, ext := splitExt(base)
	name := stem + "-" + md5Hex(fp) + ext

	_, walkRoot, err := resolveRoot(root)
	if err != nil {
		return "", &ScanError{Path: root, Err: err}
	}
	realDir, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return "", &ScanError{Path: absPath, Err: err}
	}
	rel, err := filepath.Rel(walkRoot, filepath.Join(realDir, name))
	if err != nil {
		return "", &ScanError{Path: absPath, Err: err}
	}
	rel = filepath.ToSlash(rel)

	if prefix == "" {
		return rel, nil
	}
	return prefix + "/" + rel, nil
}

// splitExt splits a base name at its last dot. A name whose only dot is the
// leading one (".env") has no extension.
func splitExt(base string) (stem, ext string) {
	i := strings.LastIndexByte(base, '.')
	if i <= 0 || strings.Trim(base[:i], ".") == "" {
		return base, ""
	}
	return base[:i], base[i:]
}

// formatModTime renders a modification time as decimal seconds, always with a
// fractional part ("1700000000.0", "1700000000.25"). Seconds and nanoseconds are
// converted separately: UnixNano does not fit a float64 mantissa.
func formatModTime(t time.Time) string {
	secs := float64(t.Unix()) + float64(t.Nanosecond())*1e-9
	s := strconv.FormatFloat(secs, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s)) // #nosec G401
	return hex.EncodeToString(sum[:])
}

func md5File(path string) (string, error) {
	f, err := os.Open(path) // #nosec G304 - path comes from the scanned tree
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := md5.New() // #nosec G401
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
