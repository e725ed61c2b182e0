// Package download fetches objects from the source bucket into the staging tree.
//
// Each object is written to root/bucket/key. The distinct failure points
// (fetch, directory creation, file write) are reported with distinct error
// kinds so callers can tell them apart; all of them are per-object failures.
package download

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/input-output-hk/catalyst-forge-libs/fs"

	"github.com/forgekit/s3mirror/errors"
	"github.com/forgekit/s3mirror/internal/pool"
	"github.com/forgekit/s3mirror/internal/s3api"
	"github.com/forgekit/s3mirror/internal/staging"
)

// Downloader stages objects from S3 onto the local filesystem.
type Downloader struct {
	s3Client   s3api.S3API
	filesystem fs.Filesystem
}

// New creates a new Downloader instance.
func New(s3Client s3api.S3API, filesystem fs.Filesystem) *Downloader {
	return &Downloader{
		s3Client:   s3Client,
		filesystem: filesystem,
	}
}

// Stage downloads bucket/key and writes it to stagingRoot/bucket/key,
// creating parent directories as needed. It returns the number of bytes
// written.
func (d *Downloader) Stage(ctx context.Context, bucket, key, stagingRoot string) (int64, error) {
	path, err := staging.ObjectPath(stagingRoot, bucket, key)
	if err != nil {
		return 0, err
	}

	input := &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}

	output, err := d.s3Client.GetObject(ctx, input)
	if err != nil {
		if isObjectNotFound(err) {
			return 0, errors.NewObjectError("download", bucket, key, errors.ErrObjectNotFound)
		}
		return 0, errors.NewObjectError("download", bucket, key, errors.ErrFetchFailed).WithCause(err)
	}
	defer output.Body.Close()

	size := int64(0)
	if output.ContentLength != nil {
		size = *output.ContentLength
	}

	buf := pool.GetBuffer(int(size))
	defer pool.PutBuffer(buf)

	body := bytes.NewBuffer(buf)
	n, err := io.Copy(body, output.Body)
	if err != nil {
		return 0, errors.NewObjectError("download", bucket, key, errors.ErrFetchFailed).WithCause(err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := d.filesystem.MkdirAll(dir, 0o755); err != nil {
			return 0, errors.NewObjectError("download", bucket, key, errors.ErrStagingMkdir).WithCause(err)
		}
	}

	if err := d.filesystem.WriteFile(path, body.Bytes(), 0o644); err != nil {
		return 0, errors.NewObjectError("download", bucket, key, errors.ErrStagingWrite).WithCause(err)
	}

	return n, nil
}

// Get downloads an entire object and returns it as a byte slice.
// This is a convenience method for small objects that can fit in memory.
func (d *Downloader) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	input := &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}

	output, err := d.s3Client.GetObject(ctx, input)
	if err != nil {
		if isObjectNotFound(err) {
			return nil, errors.NewObjectError("get", bucket, key, errors.ErrObjectNotFound)
		}
		return nil, errors.NewObjectError("get", bucket, key, errors.ErrFetchFailed).WithCause(err)
	}
	defer output.Body.Close()

	data, err := io.ReadAll(output.Body)
	if err != nil {
		return nil, errors.NewObjectError("get", bucket, key, errors.ErrFetchFailed).WithCause(err)
	}
	return data, nil
}

// isObjectNotFound checks if an error indicates that an object was not found.
func isObjectNotFound(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "NoSuchKey") || strings.Contains(errStr, "NotFound")
}
