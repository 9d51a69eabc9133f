package main

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// syncer drives one pass over the local tree:
// scan, compose key, check existence, upload if absent, record, and finally
// write the manifest. Files are processed one at a time.
type syncer struct {
	cfg    runConfig
	store  ObjectStore
	out    reporter
	logger *slog.Logger
	now    func() time.Time
}

func newSyncer(cfg runConfig, store ObjectStore, out reporter, logger *slog.Logger) *syncer {
	return &syncer{
		cfg:    cfg,
		store:  store,
		out:    out,
		logger: logger,
		now:    time.Now,
	}
}

// Run performs the sync. A fatal error aborts the pass before the manifest is
// written; the partial summary is still returned.
func (s *syncer) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{}

	if s.cfg.DryRun {
		s.logger.Info("dry run, nothing will be uploaded")
	}
	if !s.cfg.LowMemory {
		s.out.progress("listing files from remote s3 bucket s3://%s", s.cfg.Bucket)
	}
	checker, err := newExistenceChecker(ctx, s.store, s.cfg)
	if err != nil {
		return summary, err
	}
	if l, ok := checker.(*listedKeys); ok {
		s.logger.Info("remote listing loaded", "bucket", s.cfg.Bucket, "prefix", s.cfg.S3Folder, "keys", l.Len())
	}

	manifest := Manifest{}
	for entry, err := range scanFolder(s.cfg.LocalFolder, s.cfg.Allow, s.cfg.Ignore) {
		if err != nil {
			return summary, err
		}
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		summary.Total++

		key, err := composeKey(s.cfg.LocalFolder, s.cfg.S3Folder, entry.AbsPath, s.cfg.Fingerprint)
		if err != nil {
			return summary, err
		}

		exists, err := checker.Exists(ctx, key)
		if err != nil {
			return summary, err
		}
		if exists {
			manifest[entry.RelPath] = key
			summary.skip()
			s.out.progress("file exist, skip %s", entry.RelPath)
			continue
		}

		n, err := s.upload(ctx, entry, key)
		if err != nil {
			if s.cfg.FailOnError {
				return summary, err
			}
			s.logger.Debug("upload failed", "path", entry.RelPath, "key", key, "err", err)
			s.out.progress("error uploading file, not adding to manifest: %v", err)
			summary.fail(entry.RelPath)
			continue
		}

		manifest[entry.RelPath] = key
		summary.upload(n)
		s.out.notice("file uploaded %s", entry.RelPath)
	}

	s.out.progress("writing manifest at %s", s.cfg.ManifestFile)
	if err := manifest.Write(s.cfg.ManifestFile); err != nil {
		return summary, err
	}

	s.out.summary(summary)
	return summary, nil
}

// upload stores the file unless this is a dry run, in which case it reports
// the size that would have been sent.
func (s *syncer) upload(ctx context.Context, entry ScanEntry, key string) (int64, error) {
	if s.cfg.DryRun {
		info, err := os.Stat(entry.AbsPath)
		if err != nil {
			return 0, &UploadError{Path: entry.RelPath, Key: key, Err: err}
		}
		return info.Size(), nil
	}
	return uploadObject(ctx, s.store, s.cfg, s.now(), entry, key)
}
