// Package upload stores staged files in the destination bucket.
//
// Files are read whole from the staging filesystem and stored with a single
// PutObject call; objects large enough to need multipart transfer are out of
// scope for the mirror.
package upload

import (
	"bytes"
	"context"
	"mime"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"github.com/input-output-hk/catalyst-forge-libs/fs"

	"github.com/forgekit/s3mirror/errors"
	"github.com/forgekit/s3mirror/internal/s3api"
)

// DefaultContentType is used when content sniffing and the file extension
// both fail to identify the data.
const DefaultContentType = "application/octet-stream"

// Uploader stores staged files in S3.
type Uploader struct {
	s3Client   s3api.S3API
	filesystem fs.Filesystem
}

// New creates a new Uploader instance.
func New(s3Client s3api.S3API, filesystem fs.Filesystem) *Uploader {
	return &Uploader{
		s3Client:   s3Client,
		filesystem: filesystem,
	}
}

// UploadFile reads the staged file at path and stores it as bucket/key.
// Read and put failures carry distinct error kinds; both are per-object
// failures for the caller to isolate. It returns the number of bytes sent.
func (u *Uploader) UploadFile(ctx context.Context, bucket, key, path string) (int64, error) {
	data, err := u.filesystem.ReadFile(path)
	if err != nil {
		return 0, errors.NewObjectError("upload", bucket, key, errors.ErrStagingRead).WithCause(err)
	}

	size := int64(len(data))
	input := &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(detectContentType(path, data)),
		ContentLength: aws.Int64(size),
	}

	if _, err := u.s3Client.PutObject(ctx, input); err != nil {
		return 0, errors.NewObjectError("upload", bucket, key, errors.ErrPutFailed).WithCause(err)
	}

	return size, nil
}

// Put stores raw bytes as bucket/key. Used by tests and seed tooling.
func (u *Uploader) Put(ctx context.Context, bucket, key string, data []byte) error {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(detectContentType(key, data)),
		ContentLength: aws.Int64(int64(len(data))),
	}

	if _, err := u.s3Client.PutObject(ctx, input); err != nil {
		return errors.NewObjectError("put", bucket, key, errors.ErrPutFailed).WithCause(err)
	}
	return nil
}

// detectContentType sniffs the content type from the first bytes of the file,
// falling back to the extension when sniffing yields only the generic binary
// type.
func detectContentType(path string, data []byte) string {
	sample := data
	if len(sample) > 512 {
		sample = sample[:512]
	}

	if len(sample) > 0 {
		if mt := mimetype.Detect(sample); mt != nil && mt.String() != DefaultContentType {
			return mt.String()
		}
	}

	if ext := strings.ToLower(filepath.Ext(path)); ext != "" {
		if byExt := mime.TypeByExtension(ext); byExt != "" {
			return byExt
		}
	}

	return DefaultContentType
}
