package list

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/forgekit/s3mirror/errors"
	"github.com/forgekit/s3mirror/internal/s3api"
	"github.com/forgekit/s3mirror/s3types"
)

// Lister retrieves complete bucket listings.
type Lister struct {
	s3Client s3api.S3API
}

// New creates a new Lister.
func New(s3Client s3api.S3API) *Lister {
	return &Lister{
		s3Client: s3Client,
	}
}

// ListAll returns every object under the prefix by following continuation
// tokens until S3 reports the listing is no longer truncated. Pagination is
// strictly sequential: each request needs the token from the previous page.
// Any page failure aborts the whole listing; no partial result is returned.
func (l *Lister) ListAll(ctx context.Context, bucket, prefix string) ([]s3types.Object, error) {
	var objects []s3types.Object
	var continuationToken *string

	for {
		select {
		case <-ctx.Done():
			return nil, errors.NewBucketError("list", bucket, fmt.Errorf("context cancelled during listing: %w", ctx.Err()))
		default:
		}

		input := &s3.ListObjectsV2Input{
			Bucket:            aws.String(bucket),
			ContinuationToken: continuationToken,
			MaxKeys:           aws.Int32(1000), // AWS default and maximum
		}
		if prefix != "" {
			input.Prefix = aws.String(prefix)
		}

		result, err := l.s3Client.ListObjectsV2(ctx, input)
		if err != nil {
			return nil, errors.NewBucketError("list", bucket, err)
		}

		for _, obj := range result.Contents {
			objects = append(objects, s3types.Object{
				Key:          aws.ToString(obj.Key),
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
				ETag:         aws.ToString(obj.ETag),
				StorageClass: string(obj.StorageClass),
			})
		}

		// An absent or false IsTruncated is the authoritative stop signal,
		// regardless of whether a continuation token was returned.
		if result.IsTruncated == nil || !*result.IsTruncated {
			break
		}

		continuationToken = result.NextContinuationToken
	}

	return objects, nil
}

// ListPage fetches a single page. Used where callers manage pagination
// themselves.
func (l *Lister) ListPage(ctx context.Context, bucket, prefix, token string) (*s3types.ListResult, error) {
	input := &s3.ListObjectsV2Input{
		Bucket:  aws.String(bucket),
		MaxKeys: aws.Int32(1000),
	}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}
	if token != "" {
		input.ContinuationToken = aws.String(token)
	}

	output, err := l.s3Client.ListObjectsV2(ctx, input)
	if err != nil {
		return nil, errors.NewBucketError("list", bucket, err)
	}

	result := &s3types.ListResult{
		Objects:               make([]s3types.Object, 0, len(output.Contents)),
		IsTruncated:           aws.ToBool(output.IsTruncated),
		NextContinuationToken: aws.ToString(output.NextContinuationToken),
	}
	for _, obj := range output.Contents {
		result.Objects = append(result.Objects, s3types.Object{
			Key:          aws.ToString(obj.Key),
			Size:         aws.ToInt64(obj.Size),
			LastModified: aws.ToTime(obj.LastModified),
			ETag:         aws.ToString(obj.ETag),
			StorageClass: string(obj.StorageClass),
		})
	}

	return result, nil
}
