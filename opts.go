package main

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/spf13/viper"
)

// Option keys, shared by flags, environment variables and config files.
const (
	optLocalFolder     = "local-folder"
	optS3Folder        = "s3-folder"
	optBucket          = "bucket"
	optBucketRegion    = "bucket-region"
	optAllowExtension  = "allow-extension"
	optIgnoreExtension = "ignore-extension"
	optACL             = "acl"
	optSyncStrategy    = "sync-strategy"
	optManifestFile    = "manifest-file"
	optCacheControl    = "header-cache-control"
	optExpiresDelta    = "header-expires-delta"
	optGzip            = "gzip"
	optFailOnError     = "fail-on-error"
	optDryRun          = "dry-run"
	optLowMemory       = "low-memory-mode"
	optVerboseLevel    = "verbose-level"
	optEndpointURL     = "endpoint-url"
	optProfile         = "profile"
	optConfig          = "config"
	optSaveConfig      = "save-config"
)

// persistedOptions are the keys written by --save-config.
var persistedOptions = []string{
	optLocalFolder, optS3Folder, optBucket, optBucketRegion,
	optAllowExtension, optIgnoreExtension, optACL, optSyncStrategy,
	optManifestFile, optCacheControl, optExpiresDelta, optGzip,
	optFailOnError, optDryRun, optLowMemory, optVerboseLevel,
	optEndpointURL, optProfile,
}

// Sync strategies accepted by --sync-strategy.
const (
	strategyContent   = "content"
	strategyTimestamp = "timestamp"
	strategySize      = "size"
)

var syncStrategies = []string{strategyContent, strategyTimestamp, strategySize}

// runConfig is the resolved configuration of one run. It is built once from
// flags, environment and config file and then passed by value.
type runConfig struct {
	LocalFolder  string
	S3Folder     string
	Bucket       string
	Region       string
	Allow        []string
	Ignore       []string
	ACL          string
	ManifestFile string
	Fingerprint  fingerprintOptions

	FailOnError bool
	DryRun      bool
	LowMemory   bool
	Verbose     int

	Endpoint string
	Profile  string
}

// loadRunConfig resolves and validates the run configuration.
func loadRunConfig(v *viper.Viper) (runConfig, error) {
	if v.GetString(optS3Folder) == "" {
		return runConfig{}, &ConfigError{Option: optS3Folder, Err: errors.New("is not set")}
	}

	cfg := runConfig{
		LocalFolder:  v.GetString(optLocalFolder),
		S3Folder:     normalizeFolderName(v.GetString(optS3Folder)),
		Bucket:       v.GetString(optBucket),
		Region:       v.GetString(optBucketRegion),
		Allow:        splitList(v.GetStringSlice(optAllowExtension)),
		Ignore:       splitList(v.GetStringSlice(optIgnoreExtension)),
		ACL:          v.GetString(optACL),
		ManifestFile: v.GetString(optManifestFile),
		FailOnError:  v.GetBool(optFailOnError),
		DryRun:       v.GetBool(optDryRun),
		LowMemory:    v.GetBool(optLowMemory),
		Verbose:      v.GetInt(optVerboseLevel),
		Endpoint:     v.GetString(optEndpointURL),
		Profile:      v.GetString(optProfile),
	}

	cfg.Fingerprint.Gzip = v.GetBool(optGzip)
	if v.IsSet(optCacheControl) {
		cfg.Fingerprint.CacheControl = stringPtr(v.GetString(optCacheControl))
	}
	if v.IsSet(optExpiresDelta) {
		delta := v.GetInt64(optExpiresDelta)
		cfg.Fingerprint.ExpiresDelta = &delta
	}

	strategies := splitList(v.GetStringSlice(optSyncStrategy))
	for _, s := range strategies {
		if !slices.Contains(syncStrategies, s) {
			return cfg, &ConfigError{Option: optSyncStrategy, Err: fmt.Errorf("invalid value %q, must be one of %s", s, strings.Join(syncStrategies, ", "))}
		}
	}
	cfg.Fingerprint.UseContent = slices.Contains(strategies, strategyContent)
	cfg.Fingerprint.UseTimestamp = slices.Contains(strategies, strategyTimestamp)
	cfg.Fingerprint.UseSize = slices.Contains(strategies, strategySize)

	if err := validateRunConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// validateRunConfig checks required options and enumerated values. Defers the
// per-option checks to validateOption().
func validateRunConfig(cfg runConfig) error {
	flags := []struct {
		label, val string
	}{
		{optLocalFolder, cfg.LocalFolder},
		{optS3Folder, cfg.S3Folder},
		{optBucket, cfg.Bucket},
		{optBucketRegion, cfg.Region},
		{optACL, cfg.ACL},
		{optManifestFile, cfg.ManifestFile},
	}
	for _, f := range flags {
		if err := validateOption(f.label, f.val); err != nil {
			return &ConfigError{Option: f.label, Err: err}
		}
	}

	if cfg.Fingerprint.ExpiresDelta != nil && *cfg.Fingerprint.ExpiresDelta < 0 {
		return &ConfigError{Option: optExpiresDelta, Err: errors.New("must not be negative")}
	}
	if cfg.Verbose < verboseNone || cfg.Verbose > verboseFull {
		return &ConfigError{Option: optVerboseLevel, Err: fmt.Errorf("invalid value %d, must be 0, 1 or 2", cfg.Verbose)}
	}
	return nil
}

// validateOption handles the actual validation of a single option.
func validateOption(label, val string) error {
	switch label {
	case optLocalFolder:
		if val == "" {
			return errors.New("is not set")
		}
		info, err := os.Stat(val)
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("%s is not a directory", val)
		}
	case optACL:
		acls := types.ObjectCannedACL("").Values()
		if !slices.Contains(acls, types.ObjectCannedACL(val)) {
			names := make([]string, len(acls))
			for i, a := range acls {
				names[i] = string(a)
			}
			return fmt.Errorf("invalid value %q, must be one of %s", val, strings.Join(names, ", "))
		}
	case optS3Folder:
		// may be empty after normalization: "/" is the bucket root
		return nil
	default:
		if val == "" {
			return errors.New("is not set")
		}
	}
	return nil
}

// normalizeFolderName strips one leading and one trailing slash from the remote folder.
func normalizeFolderName(name string) string {
	name = strings.TrimSuffix(name, "/")
	return strings.TrimPrefix(name, "/")
}

// splitList flattens comma separated values and drops empty entries.
func splitList(vals []string) []string {
	var out []string
	for _, v := range vals {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
