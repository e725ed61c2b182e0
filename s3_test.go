package s3mirror

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	s3errors "github.com/forgekit/s3mirror/errors"
	"github.com/forgekit/s3mirror/internal/testutil"
)

func TestClient_ListAll(t *testing.T) {
	store := testutil.NewObjectStore()
	store.Seed("my-bucket", "a.txt", []byte("alpha"))
	store.Seed("my-bucket", "dir/b.txt", []byte("bravo"))

	client := NewWithClient(testutil.NewMockBuilder().WithObjectStore(store, 1000).Build())

	objects, err := client.ListAll(context.Background(), "my-bucket", "")
	require.NoError(t, err)
	require.Len(t, objects, 2)
	assert.Equal(t, "a.txt", objects[0].Key)
	assert.Equal(t, "dir/b.txt", objects[1].Key)
}

func TestClient_ListAll_InvalidBucket(t *testing.T) {
	client := NewWithClient(testutil.NewMockBuilder().Build())

	_, err := client.ListAll(context.Background(), "Invalid_Bucket!", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, s3errors.ErrInvalidBucketName)
}

func TestClient_ListAll_InvalidPrefix(t *testing.T) {
	client := NewWithClient(testutil.NewMockBuilder().Build())

	_, err := client.ListAll(context.Background(), "my-bucket", "../escape/")
	require.Error(t, err)
	assert.ErrorIs(t, err, s3errors.ErrInvalidInput)
}

func TestClient_ListPage(t *testing.T) {
	store := testutil.NewObjectStore()
	store.Seed("my-bucket", "a.txt", []byte("alpha"))
	store.Seed("my-bucket", "b.txt", []byte("bravo"))
	store.Seed("my-bucket", "c.txt", []byte("charlie"))

	client := NewWithClient(testutil.NewMockBuilder().WithObjectStore(store, 2).Build())

	first, err := client.ListPage(context.Background(), "my-bucket", "", "")
	require.NoError(t, err)
	require.Len(t, first.Objects, 2)
	assert.True(t, first.IsTruncated)
	require.NotEmpty(t, first.NextContinuationToken)

	second, err := client.ListPage(context.Background(), "my-bucket", "", first.NextContinuationToken)
	require.NoError(t, err)
	require.Len(t, second.Objects, 1)
	assert.False(t, second.IsTruncated)
	assert.Equal(t, "c.txt", second.Objects[0].Key)
}

func TestClient_ListPage_InvalidBucket(t *testing.T) {
	client := NewWithClient(testutil.NewMockBuilder().Build())

	_, err := client.ListPage(context.Background(), "Invalid_Bucket!", "", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, s3errors.ErrInvalidBucketName)
}

func TestClient_Get(t *testing.T) {
	store := testutil.NewObjectStore()
	store.Seed("my-bucket", "a.txt", []byte("alpha"))
	client := NewWithClient(testutil.NewMockBuilder().WithObjectStore(store, 1000).Build())

	data, err := client.Get(context.Background(), "my-bucket", "a.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("alpha"), data)
}

func TestClient_Get_NotFound(t *testing.T) {
	client := NewWithClient(testutil.NewMockBuilder().WithObjectNotFound().Build())

	_, err := client.Get(context.Background(), "my-bucket", "gone.txt")
	require.Error(t, err)
	assert.True(t, s3errors.IsObjectNotFound(err))
}

func TestClient_Get_InvalidKey(t *testing.T) {
	client := NewWithClient(testutil.NewMockBuilder().Build())

	_, err := client.Get(context.Background(), "my-bucket", "../secret")
	require.Error(t, err)
	assert.ErrorIs(t, err, s3errors.ErrInvalidObjectKey)
}

func TestClient_Put(t *testing.T) {
	store := testutil.NewObjectStore()
	client := NewWithClient(testutil.NewMockBuilder().WithObjectStore(store, 1000).Build())

	err := client.Put(context.Background(), "my-bucket", "new.txt", []byte("fresh"))
	require.NoError(t, err)

	data, ok := store.Data("my-bucket", "new.txt")
	require.True(t, ok)
	assert.Equal(t, []byte("fresh"), data)
}

func TestClient_Put_Failure(t *testing.T) {
	apiErr := stderrors.New("AccessDenied")
	client := NewWithClient(testutil.NewMockBuilder().WithFailedUpload(apiErr).Build())

	err := client.Put(context.Background(), "my-bucket", "new.txt", []byte("x"))
	require.Error(t, err)
	assert.True(t, s3errors.IsPutFailed(err))
	assert.ErrorIs(t, err, apiErr)
}

func TestClient_Exists(t *testing.T) {
	store := testutil.NewObjectStore()
	store.Seed("my-bucket", "here.txt", []byte("x"))
	client := NewWithClient(testutil.NewMockBuilder().WithObjectStore(store, 1000).Build())

	exists, err := client.Exists(context.Background(), "my-bucket", "here.txt")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = client.Exists(context.Background(), "my-bucket", "absent.txt")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestClient_Exists_OtherErrorsPropagate(t *testing.T) {
	apiErr := stderrors.New("InternalError: please retry")
	client := NewWithClient(testutil.NewMockBuilder().
		WithHeadObject(func(_ context.Context, _ *s3.HeadObjectInput) (*s3.HeadObjectOutput, error) {
			return nil, apiErr
		}).
		Build())

	_, err := client.Exists(context.Background(), "my-bucket", "a.txt")
	require.Error(t, err)
	assert.ErrorIs(t, err, apiErr)
}
