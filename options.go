// Functional options for configuring client handles and mirror runs.
// These follow the functional options pattern for clean, composable configuration.
package s3mirror

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/input-output-hk/catalyst-forge-libs/fs"

	"github.com/forgekit/s3mirror/s3types"
)

// WithRegion sets the AWS region for S3 operations.
// If not specified, uses the default AWS region from the credential chain.
func WithRegion(region string) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Region = region
	}
}

// WithProfile selects a named profile from the shared AWS config files.
// The source and destination handles of a mirror commonly use different
// profiles.
func WithProfile(profile string) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Profile = profile
	}
}

// WithStaticCredentials sets explicit AWS credentials, bypassing the default
// credential chain. The session token may be empty.
func WithStaticCredentials(accessKeyID, secretAccessKey, sessionToken string) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.AccessKeyID = accessKeyID
		c.SecretAccessKey = secretAccessKey
		c.SessionToken = sessionToken
	}
}

// WithEndpoint sets a custom S3 endpoint URL.
// This is useful for S3-compatible services or local testing with LocalStack.
func WithEndpoint(endpoint string) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Endpoint = endpoint
	}
}

// WithForcePathStyle forces the use of path-style URLs instead of virtual-hosted style.
// This is required for S3-compatible services that don't support virtual hosting.
// Default is false (uses virtual-hosted style).
func WithForcePathStyle(forcePathStyle bool) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.ForcePathStyle = forcePathStyle
	}
}

// WithMaxRetries sets the maximum number of retry attempts for failed operations.
// Default is 3 retries. Values below 1 are ignored and keep the default.
func WithMaxRetries(maxRetries int) s3types.Option {
	return func(c *s3types.ClientConfig) {
		if maxRetries > 0 {
			c.MaxRetries = maxRetries
		}
	}
}

// WithTimeout sets the timeout for individual S3 operations.
// Default is no timeout (0). Values should be positive durations.
func WithTimeout(timeout time.Duration) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Timeout = timeout
	}
}

// WithAWSConfig allows providing a custom AWS configuration.
// This overrides the default configuration loading behavior.
// Use this when you need fine-grained control over AWS SDK configuration.
func WithAWSConfig(config *aws.Config) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.CustomAWSConfig = config
	}
}

// WithCustomHTTPClient allows providing a custom HTTP client.
// This gives full control over HTTP behavior including timeouts, proxies, etc.
func WithCustomHTTPClient(client *http.Client) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.CustomHTTPClient = client
	}
}

// WithFilesystem sets a custom filesystem implementation for staging I/O.
// This allows using in-memory filesystems for testing or virtual filesystems.
// If not specified, defaults to the OS filesystem.
func WithFilesystem(filesystem fs.Filesystem) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Filesystem = filesystem
	}
}

// WithConcurrency caps the number of in-flight transfers during a mirror run.
// Default is 30 concurrent transfers.
func WithConcurrency(concurrency int) s3types.MirrorOption {
	return func(c *s3types.MirrorOptionConfig) {
		if concurrency > 0 {
			c.Concurrency = concurrency
		}
	}
}

// WithDryRun stops the mirror run after planning: both buckets are listed
// and the missing set computed, but nothing is transferred.
func WithDryRun(dryRun bool) s3types.MirrorOption {
	return func(c *s3types.MirrorOptionConfig) {
		c.DryRun = dryRun
	}
}

// WithProgress sets a progress tracker for the transfer phases.
func WithProgress(tracker s3types.ProgressTracker) s3types.MirrorOption {
	return func(c *s3types.MirrorOptionConfig) {
		c.ProgressTracker = tracker
	}
}

// WithLogger sets the logger for the mirror run. Phase transitions are
// logged at info level and per-object failures at warn level.
func WithLogger(logger *slog.Logger) s3types.MirrorOption {
	return func(c *s3types.MirrorOptionConfig) {
		c.Logger = logger
	}
}
