// Public mirror API for bucket-to-bucket synchronization.
package s3mirror

import (
	"context"

	"github.com/forgekit/s3mirror/errors"
	"github.com/forgekit/s3mirror/internal/sync/executor"
	"github.com/forgekit/s3mirror/internal/sync/mirror"
	"github.com/forgekit/s3mirror/internal/validation"
	"github.com/forgekit/s3mirror/s3types"
)

// MirrorConfig holds the parameters of a mirror run.
type MirrorConfig struct {
	// SourceBucket is the bucket objects are copied from
	SourceBucket string

	// DestBucket is the bucket missing objects are copied to
	DestBucket string

	// Prefix restricts both listings to keys under this prefix.
	// Empty means the whole bucket.
	Prefix string

	// StagingRoot is the local directory objects are staged under.
	// Objects are written to StagingRoot/SourceBucket/key.
	StagingRoot string
}

// Mirror copies every object present in the source bucket but absent from the
// destination bucket, staging each object under cfg.StagingRoot in between.
// The source and destination handles may target different accounts or regions.
//
// Per-object transfer failures are collected in the result; only listing
// failures and invalid configuration return an error.
func Mirror(
	ctx context.Context,
	source, dest *Client,
	cfg MirrorConfig,
	opts ...s3types.MirrorOption,
) (*s3types.MirrorResult, error) {
	optCfg := applyMirrorOptions(opts)

	if err := validateMirrorConfig(&cfg, true); err != nil {
		return nil, err
	}

	manager := mirror.NewManager(source.s3Client, dest.s3Client, source.filesystem(), optCfg.Logger)
	if optCfg.ProgressTracker != nil {
		manager = manager.WithProgressTracker(optCfg.ProgressTracker)
	}

	return manager.Mirror(ctx, &mirror.Config{
		SourceBucket: cfg.SourceBucket,
		DestBucket:   cfg.DestBucket,
		Prefix:       cfg.Prefix,
		StagingRoot:  cfg.StagingRoot,
		Concurrency:  optCfg.Concurrency,
		DryRun:       optCfg.DryRun,
	})
}

// DownloadAll stages every object under the prefix without diffing against a
// destination. This is the mode used when no destination bucket is
// configured.
func DownloadAll(
	ctx context.Context,
	source *Client,
	cfg MirrorConfig,
	opts ...s3types.MirrorOption,
) (*s3types.MirrorResult, error) {
	optCfg := applyMirrorOptions(opts)

	if err := validateMirrorConfig(&cfg, false); err != nil {
		return nil, err
	}

	manager := mirror.NewManager(source.s3Client, source.s3Client, source.filesystem(), optCfg.Logger)
	if optCfg.ProgressTracker != nil {
		manager = manager.WithProgressTracker(optCfg.ProgressTracker)
	}

	return manager.DownloadAll(ctx, &mirror.Config{
		SourceBucket: cfg.SourceBucket,
		Prefix:       cfg.Prefix,
		StagingRoot:  cfg.StagingRoot,
		Concurrency:  optCfg.Concurrency,
		DryRun:       optCfg.DryRun,
	})
}

// applyMirrorOptions resolves the option set with defaults.
func applyMirrorOptions(opts []s3types.MirrorOption) *s3types.MirrorOptionConfig {
	cfg := &s3types.MirrorOptionConfig{
		Concurrency: executor.DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// validateMirrorConfig checks bucket names, prefix, and staging root before
// any phase runs.
func validateMirrorConfig(cfg *MirrorConfig, needDest bool) error {
	if err := validation.ValidateBucketName(cfg.SourceBucket); err != nil {
		return err
	}
	if needDest {
		if err := validation.ValidateBucketName(cfg.DestBucket); err != nil {
			return err
		}
	}
	if err := validation.ValidatePrefix(cfg.Prefix); err != nil {
		return err
	}
	if cfg.StagingRoot == "" {
		return errors.NewError("mirror", errors.ErrInvalidInput).WithMessage("staging root cannot be empty")
	}
	return nil
}
