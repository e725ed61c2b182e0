// Package mirror orchestrates a one-way bucket synchronization run.
//
// A run has two fatal phases (listing both buckets) and two isolated phases
// (downloading missing objects into the staging tree, uploading staged files
// to the destination). Item failures in the transfer phases are collected
// and reported; only listing and configuration errors abort the run.
package mirror

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/fs"

	"github.com/forgekit/s3mirror/internal/operations/download"
	"github.com/forgekit/s3mirror/internal/operations/list"
	"github.com/forgekit/s3mirror/internal/operations/upload"
	"github.com/forgekit/s3mirror/internal/s3api"
	"github.com/forgekit/s3mirror/internal/staging"
	"github.com/forgekit/s3mirror/internal/sync/differ"
	"github.com/forgekit/s3mirror/internal/sync/executor"
	"github.com/forgekit/s3mirror/s3types"
)

// Config holds the parameters of a mirror run.
type Config struct {
	// SourceBucket is the bucket objects are copied from
	SourceBucket string

	// DestBucket is the bucket missing objects are copied to
	DestBucket string

	// Prefix restricts both listings to keys under this prefix
	Prefix string

	// StagingRoot is the local directory objects are staged under
	StagingRoot string

	// Concurrency caps in-flight transfers per phase
	Concurrency int

	// DryRun stops the run after planning
	DryRun bool
}

// Manager coordinates the listers, differ, executor, and transfer workers
// for a mirror run. The two S3 handles may belong to different accounts or
// regions; they are shared read-only across all transfer tasks.
type Manager struct {
	sourceClient s3api.S3API
	destClient   s3api.S3API
	filesystem   fs.Filesystem
	logger       *slog.Logger
	progress     s3types.ProgressTracker
}

// NewManager creates a Manager over the given S3 handles and staging
// filesystem.
func NewManager(source, dest s3api.S3API, filesystem fs.Filesystem, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Manager{
		sourceClient: source,
		destClient:   dest,
		filesystem:   filesystem,
		logger:       logger,
	}
}

// WithProgressTracker sets the progress tracker for transfer phases.
func (m *Manager) WithProgressTracker(tracker s3types.ProgressTracker) *Manager {
	m.progress = tracker
	return m
}

// Mirror copies every object present in the source bucket but absent from
// the destination bucket, staging each object on the local filesystem in
// between. Listing failures abort the run; transfer failures are isolated
// per object and returned in the result.
func (m *Manager) Mirror(ctx context.Context, cfg *Config) (*s3types.MirrorResult, error) {
	startTime := time.Now()
	result := &s3types.MirrorResult{DryRun: cfg.DryRun}

	sourceObjects, err := list.New(m.sourceClient).ListAll(ctx, cfg.SourceBucket, cfg.Prefix)
	if err != nil {
		return nil, err
	}
	result.SourceObjects = len(sourceObjects)
	m.logger.Info("listed source bucket", "bucket", cfg.SourceBucket, "prefix", cfg.Prefix, "objects", len(sourceObjects))

	destObjects, err := list.New(m.destClient).ListAll(ctx, cfg.DestBucket, cfg.Prefix)
	if err != nil {
		return nil, err
	}
	result.DestObjects = len(destObjects)
	m.logger.Info("listed destination bucket", "bucket", cfg.DestBucket, "objects", len(destObjects))

	missing := differ.Missing(sourceObjects, destObjects)
	result.Missing = missing
	m.logger.Info("computed missing set", "missing", len(missing))

	if cfg.DryRun {
		result.Duration = time.Since(startTime)
		return result, nil
	}

	var bytesTransferred atomic.Int64
	exec := executor.New(cfg.Concurrency).WithProgressTracker(m.progress)

	downloaded := m.downloadPhase(ctx, cfg, exec, missing, &bytesTransferred, result)
	result.Downloaded = downloaded

	uploaded, err := m.uploadPhase(ctx, cfg, exec, &bytesTransferred, result)
	if err != nil {
		return nil, err
	}
	result.Uploaded = uploaded

	result.BytesTransferred = bytesTransferred.Load()
	result.Duration = time.Since(startTime)
	return result, nil
}

// DownloadAll stages every object under the prefix without diffing or
// uploading. This is the mode used when no destination bucket is configured.
func (m *Manager) DownloadAll(ctx context.Context, cfg *Config) (*s3types.MirrorResult, error) {
	startTime := time.Now()
	result := &s3types.MirrorResult{DryRun: cfg.DryRun}

	sourceObjects, err := list.New(m.sourceClient).ListAll(ctx, cfg.SourceBucket, cfg.Prefix)
	if err != nil {
		return nil, err
	}
	result.SourceObjects = len(sourceObjects)
	m.logger.Info("listed source bucket", "bucket", cfg.SourceBucket, "prefix", cfg.Prefix, "objects", len(sourceObjects))

	keys := differ.Missing(sourceObjects, nil)
	result.Missing = keys

	if cfg.DryRun {
		result.Duration = time.Since(startTime)
		return result, nil
	}

	var bytesTransferred atomic.Int64
	exec := executor.New(cfg.Concurrency).WithProgressTracker(m.progress)

	result.Downloaded = m.downloadPhase(ctx, cfg, exec, keys, &bytesTransferred, result)
	result.BytesTransferred = bytesTransferred.Load()
	result.Duration = time.Since(startTime)
	return result, nil
}

// downloadPhase stages the given keys with bounded concurrency and records
// per-object failures on the result.
func (m *Manager) downloadPhase(
	ctx context.Context,
	cfg *Config,
	exec *executor.Executor,
	keys []string,
	bytesTransferred *atomic.Int64,
	result *s3types.MirrorResult,
) int {
	if len(keys) == 0 {
		return 0
	}

	stats := exec.GetStats()
	m.logger.Info("download phase starting",
		"objects", len(keys), "staging", cfg.StagingRoot, "concurrency", stats.MaxConcurrency)
	if m.progress != nil {
		m.progress.Phase(s3types.PhaseDownload, len(keys))
	}

	downloader := download.New(m.sourceClient, m.filesystem)
	runResult := exec.Run(ctx, keys, func(ctx context.Context, key string) error {
		n, err := downloader.Stage(ctx, cfg.SourceBucket, key, cfg.StagingRoot)
		if err != nil {
			return err
		}
		bytesTransferred.Add(n)
		return nil
	})

	for _, failure := range runResult.Failures {
		m.logger.Warn("download failed", "key", failure.Key, "error", failure.Err)
		result.Failures = append(result.Failures, s3types.TransferError{
			Key:   failure.Key,
			Phase: s3types.PhaseDownload,
			Err:   failure.Err,
		})
	}
	if m.progress != nil {
		m.progress.Complete()
	}

	return runResult.Completed
}

// uploadPhase walks the staging tree for the source bucket and uploads each
// staged file under its recovered key. A walk failure is fatal; upload
// failures are isolated per object.
func (m *Manager) uploadPhase(
	ctx context.Context,
	cfg *Config,
	exec *executor.Executor,
	bytesTransferred *atomic.Int64,
	result *s3types.MirrorResult,
) (int, error) {
	walkRoot := filepath.Join(cfg.StagingRoot, cfg.SourceBucket)

	exists, err := m.filesystem.Exists(walkRoot)
	if err != nil {
		return 0, err
	}
	if !exists {
		m.logger.Info("upload phase skipped, nothing staged", "staging", walkRoot)
		return 0, nil
	}

	entries, err := staging.Walk(m.filesystem, walkRoot)
	if err != nil {
		return 0, err
	}

	stats := exec.GetStats()
	m.logger.Info("upload phase starting",
		"objects", len(entries), "bucket", cfg.DestBucket, "concurrency", stats.MaxConcurrency)
	if m.progress != nil {
		m.progress.Phase(s3types.PhaseUpload, len(entries))
	}

	pathByKey := make(map[string]string, len(entries))
	keys := make([]string, 0, len(entries))
	for _, entry := range entries {
		pathByKey[entry.Key] = entry.Path
		keys = append(keys, entry.Key)
	}

	uploader := upload.New(m.destClient, m.filesystem)
	runResult := exec.Run(ctx, keys, func(ctx context.Context, key string) error {
		n, err := uploader.UploadFile(ctx, cfg.DestBucket, key, pathByKey[key])
		if err != nil {
			return err
		}
		bytesTransferred.Add(n)
		return nil
	})

	for _, failure := range runResult.Failures {
		m.logger.Warn("upload failed", "key", failure.Key, "error", failure.Err)
		result.Failures = append(result.Failures, s3types.TransferError{
			Key:   failure.Key,
			Phase: s3types.PhaseUpload,
			Err:   failure.Err,
		})
	}
	if m.progress != nil {
		m.progress.Complete()
	}

	return runResult.Completed, nil
}
