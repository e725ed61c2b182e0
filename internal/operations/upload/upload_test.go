package upload

import (
	"context"
	stderrors "errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgekit/s3mirror/errors"
	"github.com/forgekit/s3mirror/internal/testutil"
)

func TestUploadFile(t *testing.T) {
	memFS := billy.NewInMemoryFS()
	data := []byte("staged content")
	path := filepath.Join("files", "src", "a.txt")
	require.NoError(t, memFS.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, memFS.WriteFile(path, data, 0o644))

	var captured *s3.PutObjectInput
	var body []byte
	mock := testutil.NewMockBuilder().
		WithPutObject(func(_ context.Context, params *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
			captured = params
			var err error
			body, err = io.ReadAll(params.Body)
			require.NoError(t, err)
			return testutil.CreatePutObjectOutput(testutil.CalculateETag(body)), nil
		}).
		Build()

	n, err := New(mock, memFS).UploadFile(context.Background(), "dest-bucket", "a.txt", path)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), n)

	require.NotNil(t, captured)
	assert.Equal(t, "dest-bucket", *captured.Bucket)
	assert.Equal(t, "a.txt", *captured.Key)
	assert.Equal(t, int64(len(data)), *captured.ContentLength)
	assert.Equal(t, data, body)
}

func TestUploadFile_MissingStagedFile(t *testing.T) {
	memFS := billy.NewInMemoryFS()

	put := false
	mock := testutil.NewMockBuilder().
		WithPutObject(func(_ context.Context, _ *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
			put = true
			return &s3.PutObjectOutput{}, nil
		}).
		Build()

	_, err := New(mock, memFS).UploadFile(context.Background(), "b", "a.txt", "files/src/a.txt")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrStagingRead)
	assert.False(t, put, "nothing should be uploaded when the staged file cannot be read")
}

func TestUploadFile_PutFailure(t *testing.T) {
	memFS := billy.NewInMemoryFS()
	path := filepath.Join("files", "src", "a.txt")
	require.NoError(t, memFS.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, memFS.WriteFile(path, []byte("x"), 0o644))

	apiErr := stderrors.New("AccessDenied: not allowed")
	mock := testutil.NewMockBuilder().WithFailedUpload(apiErr).Build()

	_, err := New(mock, memFS).UploadFile(context.Background(), "b", "a.txt", path)
	require.Error(t, err)
	assert.True(t, errors.IsPutFailed(err))
	assert.ErrorIs(t, err, apiErr)
}

func TestPut(t *testing.T) {
	var captured *s3.PutObjectInput
	mock := testutil.NewMockBuilder().
		WithPutObject(func(_ context.Context, params *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
			captured = params
			return &s3.PutObjectOutput{}, nil
		}).
		Build()

	err := New(mock, billy.NewInMemoryFS()).Put(context.Background(), "b", "k.json", []byte(`{"ok":true}`))
	require.NoError(t, err)
	require.NotNil(t, captured)
	assert.Equal(t, "b", *captured.Bucket)
	assert.Equal(t, "k.json", *captured.Key)
	assert.Equal(t, int64(11), *captured.ContentLength)
}

func TestDetectContentType(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		data     []byte
		expected string
	}{
		{
			name:     "html sniffed from content",
			path:     "page.bin",
			data:     []byte("<!DOCTYPE html><html><body>hi</body></html>"),
			expected: "text/html; charset=utf-8",
		},
		{
			name:     "extension fallback for opaque bytes",
			path:     "archive.pdf",
			data:     []byte("%PDF-1.4 fake"),
			expected: "application/pdf",
		},
		{
			name:     "default for unknown binary without extension",
			path:     "blob",
			data:     []byte{0x01, 0x02, 0x03, 0x04},
			expected: DefaultContentType,
		},
		{
			name:     "default for empty data without extension",
			path:     "empty",
			data:     nil,
			expected: DefaultContentType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detectContentType(tt.path, tt.data)
			if tt.expected == DefaultContentType {
				assert.Equal(t, DefaultContentType, got)
				return
			}
			assert.True(t, strings.HasPrefix(got, strings.Split(tt.expected, ";")[0]),
				"got %q, want prefix of %q", got, tt.expected)
		})
	}
}

func TestDetectContentType_LargeFileSniffsFirstBytes(t *testing.T) {
	// The sniff sample is the first 512 bytes only. Fill that window with
	// HTML and put opaque binary after it; the tail must not affect detection.
	head := []byte("<!DOCTYPE html><html><body>" + strings.Repeat("mirror status page ", 40) + "</body></html>")
	require.Greater(t, len(head), 512)
	data := append(head, testutil.GenerateRandomData(4096)...)

	got := detectContentType("noext", data)
	assert.Contains(t, got, "text/html")
}

func TestDetectContentType_BinaryInsideSampleFallsBack(t *testing.T) {
	// An HTML preamble followed by binary inside the 512-byte sample is not
	// recognizably HTML, and without an extension the default applies.
	data := append([]byte("<!DOCTYPE html>"), testutil.GenerateRandomData(4096)...)
	assert.Equal(t, DefaultContentType, detectContentType("noext", data))
}
