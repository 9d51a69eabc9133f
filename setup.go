package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// envPrefix namespaces environment overrides, e.g. S3_STATIC_SYNC_BUCKET.
const envPrefix = "S3_STATIC_SYNC"

// storeFactory builds the object store for a resolved configuration.
type storeFactory func(ctx context.Context, cfg runConfig) (ObjectStore, error)

// app wires the command line to the sync.
type app struct {
	newStore storeFactory
	logger   *slog.Logger
}

func newApp(newStore storeFactory, stderr io.Writer) *app {
	return &app{
		newStore: newStore,
		logger:   newLogger(stderr, verboseFull),
	}
}

// command builds the root command. Options are bound into a fresh viper
// instance per command so that tests do not share state.
func (a *app) command() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "s3-static-sync",
		Short: "Sync a local folder of static assets to S3 under content-addressed keys",
		Long: "s3-static-sync uploads every file of a local folder to an S3 bucket under a key\n" +
			"derived from the file's fingerprint, skips files already present and writes a\n" +
			"manifest mapping local paths to remote keys.",
		Version:       GetVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) > 0 {
				return &ConfigError{Option: "args", Err: fmt.Errorf("unexpected arguments %q", args)}
			}
			return nil
		},
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return bindConfig(cmd, v)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadRunConfig(v)
			if err != nil {
				return err
			}
			a.logger = newLogger(cmd.ErrOrStderr(), cfg.Verbose)

			if path := v.GetString(optSaveConfig); path != "" {
				if err := saveConfig(v, path); err != nil {
					return err
				}
				a.logger.Info("configuration saved", "path", path)
			}

			store, err := a.newStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			out := reporter{w: cmd.OutOrStdout(), verbose: cfg.Verbose}
			_, err = newSyncer(cfg, store, out, a.logger).Run(cmd.Context())
			return err
		},
	}
	cmd.SetVersionTemplate("{{.Version}}\n")
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ConfigError{Option: "flags", Err: err}
	})

	registerFlags(cmd.Flags())
	return cmd
}

// registerFlags declares every command line option.
func registerFlags(f *pflag.FlagSet) {
	f.SortFlags = false
	f.StringP(optLocalFolder, "l", "", "Local folder to sync (required)")
	f.StringP(optS3Folder, "f", "", "S3 folder to upload synced files to (required)")
	f.String(optBucket, "", "S3 bucket to upload files to (required)")
	f.String(optBucketRegion, "", "S3 bucket region (required)")
	f.StringSliceP(optAllowExtension, "a", nil, "Allow only files with this suffix, e.g. .js (repeatable)")
	f.StringSliceP(optIgnoreExtension, "i", nil, "Ignore files with this suffix, e.g. .map (repeatable)")
	f.String(optACL, "private", "Canned ACL to apply to uploaded files")
	f.StringSliceP(optSyncStrategy, "s", []string{strategyContent}, "Attributes hashed into the remote name: content, timestamp, size (repeatable)")
	f.String(optManifestFile, "manifest.json", "Path of the manifest file that will be written")
	f.String(optCacheControl, "", "Cache-Control header for uploaded files, e.g. max-age=3600")
	f.Int64(optExpiresDelta, 0, "Seconds from upload time used for the Expires header, e.g. 3600")
	f.Bool(optGzip, false, "Gzip content before upload")
	f.Bool(optFailOnError, false, "Abort the run on the first upload error")
	f.Bool(optDryRun, false, "Compute keys and manifest without uploading")
	f.Bool(optLowMemory, false, "Check each key with a HEAD request instead of listing the remote folder up front")
	f.IntP(optVerboseLevel, "v", verboseFull, "Verbose level. 0: uploaded files only, 1: plus resume, 2: full verbose")
	f.String(optEndpointURL, "", "Custom S3 endpoint URL (LocalStack, MinIO)")
	f.String(optProfile, os.Getenv("AWS_PROFILE"), "AWS shared config profile")
	f.StringP(optConfig, "c", "", "Config file (json, yaml or toml)")
	f.String(optSaveConfig, "", "Save the resolved options to this config file")
}

// bindConfig layers flags over environment variables over the optional config file.
func bindConfig(cmd *cobra.Command, v *viper.Viper) error {
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path := v.GetString(optConfig); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return &ConfigError{Option: optConfig, Err: fmt.Errorf("config read '%s': %w", path, err)}
		}
	}
	return nil
}

// saveConfig writes the options that were explicitly set to path. The format
// follows the file extension.
func saveConfig(v *viper.Viper, path string) error {
	out := viper.New()
	for _, key := range persistedOptions {
		if v.IsSet(key) {
			out.Set(key, v.Get(key))
		}
	}
	if err := out.WriteConfigAs(path); err != nil {
		return &ConfigError{Option: optSaveConfig, Err: err}
	}
	return nil
}

// newAWSStore loads the AWS configuration through the default credential chain
// (environment, shared files, instance role) and returns an S3 backed store.
func newAWSStore(ctx context.Context, cfg runConfig) (ObjectStore, error) {
	configOpts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}

	// Set shared profile if specified
	if cfg.Profile != "" {
		configOpts = append(configOpts, config.WithSharedConfigProfile(cfg.Profile))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, configOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// Verify credentials are available
	if awsCfg.Credentials == nil {
		return nil, errors.New("unable to initialize AWS credentials - please check environment")
	}
	if _, err := awsCfg.Credentials.Retrieve(ctx); err != nil {
		return nil, fmt.Errorf("unable to initialize AWS credentials - please check environment: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewS3Store(client), nil
}
