package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Format(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "bucket and key",
			err:      NewObjectError("download", "my-bucket", "a.txt", ErrFetchFailed),
			expected: "s3mirror.download my-bucket/a.txt: s3mirror: fetch failed",
		},
		{
			name:     "bucket only",
			err:      NewBucketError("list", "my-bucket", ErrInvalidInput),
			expected: "s3mirror.list bucket my-bucket: s3mirror: invalid input",
		},
		{
			name:     "key only",
			err:      NewError("stage", ErrUnsafeKey).WithKey("../x"),
			expected: "s3mirror.stage object ../x: s3mirror: unsafe object key",
		},
		{
			name:     "operation only",
			err:      NewError("walk", ErrStagingRead),
			expected: "s3mirror.walk: s3mirror: staging read failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	err := NewObjectError("download", "b", "k", ErrObjectNotFound)
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestError_WithCause_PreservesBothChains(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := NewObjectError("download", "b", "k", ErrFetchFailed).WithCause(cause)

	// The sentinel and the original cause both survive errors.Is.
	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.ErrorIs(t, err, cause)
}

func TestError_WithMessage(t *testing.T) {
	err := NewError("stage", ErrUnsafeKey).WithMessage("key escapes staging tree")
	assert.ErrorIs(t, err, ErrUnsafeKey)
	assert.Contains(t, err.Error(), "key escapes staging tree")
}

func TestError_Builders(t *testing.T) {
	err := NewError("exists", ErrInvalidInput).WithBucket("b").WithKey("k")
	assert.Equal(t, "b", err.Bucket)
	assert.Equal(t, "k", err.Key)
	assert.Equal(t, "exists", err.Op)
}

func TestHelpers(t *testing.T) {
	assert.True(t, IsObjectNotFound(NewError("get", ErrObjectNotFound)))
	assert.False(t, IsObjectNotFound(NewError("get", ErrFetchFailed)))

	assert.True(t, IsInvalidInput(NewError("mirror", ErrInvalidInput)))
	assert.True(t, IsUnsafeKey(NewError("stage", ErrUnsafeKey)))
	assert.True(t, IsFetchFailed(NewError("download", ErrFetchFailed)))
	assert.True(t, IsPutFailed(NewError("upload", ErrPutFailed)))

	assert.False(t, IsObjectNotFound(nil))
	assert.False(t, IsUnsafeKey(nil))
}
