// Package testutil provides a builder for creating mock S3 clients.
package testutil

import (
	"context"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// MockBuilder provides a fluent interface for building MockS3Client instances.
type MockBuilder struct {
	client *MockS3Client
}

// NewMockBuilder creates a new MockBuilder.
func NewMockBuilder() *MockBuilder {
	return &MockBuilder{
		client: &MockS3Client{},
	}
}

// Build returns the configured MockS3Client.
func (b *MockBuilder) Build() *MockS3Client {
	return b.client
}

// WithListObjectsV2 configures the ListObjectsV2 behavior.
func (b *MockBuilder) WithListObjectsV2(
	fn func(context.Context, *s3.ListObjectsV2Input) (*s3.ListObjectsV2Output, error),
) *MockBuilder {
	b.client.ListObjectsV2Func = func(ctx context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
		return fn(ctx, params)
	}
	return b
}

// WithGetObject configures the GetObject behavior.
func (b *MockBuilder) WithGetObject(
	fn func(context.Context, *s3.GetObjectInput) (*s3.GetObjectOutput, error),
) *MockBuilder {
	b.client.GetObjectFunc = func(ctx context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
		return fn(ctx, params)
	}
	return b
}

// WithPutObject configures the PutObject behavior.
func (b *MockBuilder) WithPutObject(
	fn func(context.Context, *s3.PutObjectInput) (*s3.PutObjectOutput, error),
) *MockBuilder {
	b.client.PutObjectFunc = func(ctx context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return fn(ctx, params)
	}
	return b
}

// WithHeadObject configures the HeadObject behavior.
func (b *MockBuilder) WithHeadObject(
	fn func(context.Context, *s3.HeadObjectInput) (*s3.HeadObjectOutput, error),
) *MockBuilder {
	b.client.HeadObjectFunc = func(ctx context.Context, params *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
		return fn(ctx, params)
	}
	return b
}

// WithEmptyBucket configures the mock to return an empty bucket listing.
func (b *MockBuilder) WithEmptyBucket() *MockBuilder {
	b.client.ListObjectsV2Func = func(_ context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
		return &s3.ListObjectsV2Output{
			Name:        params.Bucket,
			Prefix:      params.Prefix,
			MaxKeys:     params.MaxKeys,
			IsTruncated: BoolPtr(false),
			KeyCount:    Int32Ptr(0),
		}, nil
	}
	return b
}

// WithObjectNotFound configures the mock to return object not found errors.
func (b *MockBuilder) WithObjectNotFound() *MockBuilder {
	notFoundErr := &types.NoSuchKey{
		Message: StringPtr("The specified key does not exist."),
	}

	b.client.GetObjectFunc = func(_ context.Context, _ *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
		return nil, notFoundErr
	}
	b.client.HeadObjectFunc = func(_ context.Context, _ *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
		return nil, notFoundErr
	}
	return b
}

// WithFailedUpload configures the mock to always return upload failures.
func (b *MockBuilder) WithFailedUpload(err error) *MockBuilder {
	b.client.PutObjectFunc = func(_ context.Context, _ *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return nil, err
	}
	return b
}

// WithObjectStore wires an in-memory ObjectStore into the mock so that
// listing, fetching, and storing all observe a consistent bucket state.
// pageSize controls listing pagination; values below 1 mean 1000.
func (b *MockBuilder) WithObjectStore(store *ObjectStore, pageSize int) *MockBuilder {
	if pageSize < 1 {
		pageSize = 1000
	}

	b.client.ListObjectsV2Func = func(_ context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
		return store.list(params, pageSize)
	}
	b.client.GetObjectFunc = func(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
		data, ok := store.Data(*params.Bucket, *params.Key)
		if !ok {
			return nil, &types.NoSuchKey{Message: StringPtr("The specified key does not exist.")}
		}
		return CreateGetObjectOutput(data, "application/octet-stream"), nil
	}
	b.client.PutObjectFunc = func(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		var data []byte
		if params.Body != nil {
			var err error
			data, err = io.ReadAll(params.Body)
			if err != nil {
				return nil, err
			}
		}
		store.Seed(*params.Bucket, *params.Key, data)
		return CreatePutObjectOutput(CalculateETag(data)), nil
	}
	b.client.HeadObjectFunc = func(_ context.Context, params *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
		data, ok := store.Data(*params.Bucket, *params.Key)
		if !ok {
			return nil, &types.NotFound{Message: StringPtr("Not Found")}
		}
		return &s3.HeadObjectOutput{
			ContentLength: Int64Ptr(int64(len(data))),
			ETag:          StringPtr(CalculateETag(data)),
		}, nil
	}
	return b
}

// ObjectStore is an in-memory bucket fixture shared by the mock operations
// built with WithObjectStore. It is safe for concurrent use.
type ObjectStore struct {
	mu      sync.Mutex
	buckets map[string]map[string][]byte
}

// NewObjectStore creates an empty ObjectStore.
func NewObjectStore() *ObjectStore {
	return &ObjectStore{
		buckets: make(map[string]map[string][]byte),
	}
}

// Seed stores data under bucket/key.
func (s *ObjectStore) Seed(bucket, key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.buckets[bucket] == nil {
		s.buckets[bucket] = make(map[string][]byte)
	}
	s.buckets[bucket][key] = data
}

// Data returns the stored bytes for bucket/key.
func (s *ObjectStore) Data(bucket, key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.buckets[bucket][key]
	return data, ok
}

// Keys returns the sorted keys stored in a bucket.
func (s *ObjectStore) Keys(bucket string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.buckets[bucket]))
	for key := range s.buckets[bucket] {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// list serves a ListObjectsV2 page over the sorted key space. The
// continuation token encodes the index of the next key to serve.
func (s *ObjectStore) list(params *s3.ListObjectsV2Input, pageSize int) (*s3.ListObjectsV2Output, error) {
	bucket := *params.Bucket
	prefix := ""
	if params.Prefix != nil {
		prefix = *params.Prefix
	}

	keys := s.Keys(bucket)
	matching := make([]string, 0, len(keys))
	for _, key := range keys {
		if strings.HasPrefix(key, prefix) {
			matching = append(matching, key)
		}
	}

	start := 0
	if params.ContinuationToken != nil {
		idx, err := strconv.Atoi(*params.ContinuationToken)
		if err != nil {
			return nil, err
		}
		start = idx
	}

	end := start + pageSize
	if end > len(matching) {
		end = len(matching)
	}

	s.mu.Lock()
	contents := make([]types.Object, 0, end-start)
	for _, key := range matching[start:end] {
		contents = append(contents, types.Object{
			Key:  StringPtr(key),
			Size: Int64Ptr(int64(len(s.buckets[bucket][key]))),
			ETag: StringPtr(CalculateETag(s.buckets[bucket][key])),
		})
	}
	s.mu.Unlock()

	truncated := end < len(matching)
	output := &s3.ListObjectsV2Output{
		Contents:    contents,
		KeyCount:    Int32Ptr(int32(len(contents))),
		IsTruncated: BoolPtr(truncated),
	}
	if truncated {
		output.NextContinuationToken = StringPtr(strconv.Itoa(end))
	}
	return output, nil
}
