package main

import (
	"errors"
	"fmt"
)

// Exit codes
const (
	Success = iota
	SetupFailed
	CmdLineOptionError
	ScanFailure
	ExistenceCheckFailure
	UploadFailure
	ManifestFailure
)

// ConfigError reports an invalid or missing option.
type ConfigError struct {
	Option string
	Err    error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("option %s: %v", e.Option, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ScanError is returned when the local tree cannot be walked or a file cannot be read
// while fingerprinting it. It always aborts the run.
type ScanError struct {
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan %s: %v", e.Path, e.Err)
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

// ExistenceCheckError wraps any storage failure other than "not found" while
// deciding whether a key is already present.
type ExistenceCheckError struct {
	Op     string
	Bucket string
	Key    string
	Err    error
}

func (e *ExistenceCheckError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("s3.%s %s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
	}
	return fmt.Sprintf("s3.%s bucket %s: %v", e.Op, e.Bucket, e.Err)
}

func (e *ExistenceCheckError) Unwrap() error {
	return e.Err
}

// UploadError is recoverable per file unless the run was started with --fail-on-error.
type UploadError struct {
	Path string
	Key  string
	Err  error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload %s to %s: %v", e.Path, e.Key, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// ManifestWriteError is returned after the sync pass when the manifest cannot be written.
type ManifestWriteError struct {
	Path string
	Err  error
}

func (e *ManifestWriteError) Error() string {
	return fmt.Sprintf("write manifest %s: %v", e.Path, e.Err)
}

func (e *ManifestWriteError) Unwrap() error {
	return e.Err
}

// exitCodeFor maps an error returned by the command to the process exit status.
func exitCodeFor(err error) int {
	var (
		cfgErr      *ConfigError
		scanErr     *ScanError
		existsErr   *ExistenceCheckError
		uploadErr   *UploadError
		manifestErr *ManifestWriteError
	)

	switch {
	case err == nil:
		return Success
	case errors.As(err, &cfgErr):
		return CmdLineOptionError
	case errors.As(err, &scanErr):
		return ScanFailure
	case errors.As(err, &existsErr):
		return ExistenceCheckFailure
	case errors.As(err, &uploadErr):
		return UploadFailure
	case errors.As(err, &manifestErr):
		return ManifestFailure
	default:
		return SetupFailed
	}
}
