package main

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// defaultContentType is used when neither the extension nor the content identify the file.
const defaultContentType = "binary/octet-stream"

// uploadObject reads the whole file, prepares body and headers and stores it
// under key. It returns the number of bytes sent.
func uploadObject(ctx context.Context, store ObjectStore, cfg runConfig, now time.Time, entry ScanEntry, key string) (int64, error) {
	content, err := os.ReadFile(entry.AbsPath) // #nosec G304 - path comes from the scanned tree
	if err != nil {
		return 0, &UploadError{Path: entry.RelPath, Key: key, Err: err}
	}

	input := &UploadInput{
		Bucket:       cfg.Bucket,
		Key:          key,
		Body:         content,
		ContentType:  detectContentType(entry.AbsPath, content),
		ACL:          cfg.ACL,
		CacheControl: cfg.Fingerprint.CacheControl,
	}

	if delta := cfg.Fingerprint.ExpiresDelta; delta != nil {
		expires := now.Add(time.Duration(*delta) * time.Second).UTC()
		input.Expires = &expires
	}

	if cfg.Fingerprint.Gzip {
		body, err := gzipContent(content)
		if err != nil {
			return 0, &UploadError{Path: entry.RelPath, Key: key, Err: err}
		}
		input.Body = body
		input.ContentEncoding = stringPtr("gzip")
	}

	if err := store.PutObject(ctx, input); err != nil {
		return 0, &UploadError{Path: entry.RelPath, Key: key, Err: err}
	}
	return int64(len(input.Body)), nil
}

// detectContentType prefers the extension, then sniffs the content.
func detectContentType(path string, content []byte) string {
	if ext := strings.ToLower(filepath.Ext(path)); ext != "" {
		if byExt := mime.TypeByExtension(ext); byExt != "" {
			return byExt
		}
	}
	if mt := mimetype.Detect(content); mt != nil && !mt.Is("application/octet-stream") {
		return mt.String()
	}
	return defaultContentType
}

func gzipContent(content []byte) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(content); err != nil {
		return nil, fmt.Errorf("compression error: %w", err)
	}
	if err := gz.Close(); err != nil {
		return nil, fmt.Errorf("gzip close error: %w", err)
	}
	return buf.Bytes(), nil
}

func stringPtr(s string) *string {
	return &s
}
