// Core object operations exposed on the client handle.
package s3mirror

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	s3errors "github.com/forgekit/s3mirror/errors"
	"github.com/forgekit/s3mirror/internal/operations/download"
	"github.com/forgekit/s3mirror/internal/operations/list"
	"github.com/forgekit/s3mirror/internal/operations/upload"
	"github.com/forgekit/s3mirror/internal/validation"
	"github.com/forgekit/s3mirror/s3types"
)

// ListAll returns every object in the bucket under the prefix, following
// continuation tokens until the listing is exhausted. A failure on any page
// aborts the whole listing.
func (c *Client) ListAll(ctx context.Context, bucket, prefix string) ([]s3types.Object, error) {
	if err := validation.ValidateBucketName(bucket); err != nil {
		return nil, err
	}
	if err := validation.ValidatePrefix(prefix); err != nil {
		return nil, err
	}

	return list.New(c.s3Client).ListAll(ctx, bucket, prefix)
}

// ListPage fetches a single page of a bucket listing for callers that manage
// pagination themselves. Pass an empty token for the first page; the returned
// NextContinuationToken feeds the next call while IsTruncated is true.
func (c *Client) ListPage(ctx context.Context, bucket, prefix, token string) (*s3types.ListResult, error) {
	if err := validation.ValidateBucketName(bucket); err != nil {
		return nil, err
	}
	if err := validation.ValidatePrefix(prefix); err != nil {
		return nil, err
	}

	return list.New(c.s3Client).ListPage(ctx, bucket, prefix, token)
}

// Get downloads an entire object and returns it as a byte slice.
// This is a convenience method for small objects that can fit in memory.
func (c *Client) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	if err := validation.ValidateBucketName(bucket); err != nil {
		return nil, err
	}
	if err := validation.ValidateObjectKey(key); err != nil {
		return nil, err
	}

	return download.New(c.s3Client, c.filesystem()).Get(ctx, bucket, key)
}

// Put stores raw bytes as bucket/key with a sniffed content type.
func (c *Client) Put(ctx context.Context, bucket, key string, data []byte) error {
	if err := validation.ValidateBucketName(bucket); err != nil {
		return err
	}
	if err := validation.ValidateObjectKey(key); err != nil {
		return err
	}

	return upload.New(c.s3Client, c.filesystem()).Put(ctx, bucket, key, data)
}

// Exists reports whether bucket/key exists, using a HeadObject request so
// the object body is never transferred.
func (c *Client) Exists(ctx context.Context, bucket, key string) (bool, error) {
	if err := validation.ValidateBucketName(bucket); err != nil {
		return false, err
	}
	if err := validation.ValidateObjectKey(key); err != nil {
		return false, err
	}

	input := &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}

	_, err := c.s3Client.HeadObject(ctx, input)
	if err != nil {
		if isNotFoundErr(err) {
			return false, nil
		}
		return false, s3errors.NewObjectError("exists", bucket, key, err)
	}

	return true, nil
}

// isNotFoundErr checks if an error indicates a missing object.
func isNotFoundErr(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "NotFound") || strings.Contains(errStr, "NoSuchKey") ||
		strings.Contains(errStr, "404")
}
