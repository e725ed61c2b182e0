package s3mirror

import (
	"context"
	"testing"

	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	s3errors "github.com/forgekit/s3mirror/errors"
	"github.com/forgekit/s3mirror/internal/testutil"
	"github.com/forgekit/s3mirror/s3types"
)

func newTestClient(store *testutil.ObjectStore) *Client {
	client := NewWithClient(testutil.NewMockBuilder().WithObjectStore(store, 1000).Build())
	client.SetFilesystem(billy.NewInMemoryFS())
	return client
}

func TestMirror(t *testing.T) {
	sourceStore := testutil.NewObjectStore()
	sourceStore.Seed("source-bucket", "a.txt", []byte("alpha"))
	sourceStore.Seed("source-bucket", "dir/b.txt", []byte("bravo"))

	destStore := testutil.NewObjectStore()
	destStore.Seed("dest-bucket", "a.txt", []byte("alpha"))

	source := newTestClient(sourceStore)
	dest := newTestClient(destStore)

	result, err := Mirror(context.Background(), source, dest, MirrorConfig{
		SourceBucket: "source-bucket",
		DestBucket:   "dest-bucket",
		StagingRoot:  "files",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"dir/b.txt"}, result.Missing)
	assert.Equal(t, 1, result.Downloaded)
	assert.Equal(t, 1, result.Uploaded)
	assert.Empty(t, result.Failures)
	assert.Equal(t, []string{"a.txt", "dir/b.txt"}, destStore.Keys("dest-bucket"))
}

func TestMirror_WithOptions(t *testing.T) {
	sourceStore := testutil.NewObjectStore()
	sourceStore.Seed("source-bucket", "a.txt", []byte("alpha"))

	source := newTestClient(sourceStore)
	dest := newTestClient(testutil.NewObjectStore())
	tracker := &testutil.MockProgressTracker{}

	result, err := Mirror(context.Background(), source, dest, MirrorConfig{
		SourceBucket: "source-bucket",
		DestBucket:   "dest-bucket",
		StagingRoot:  "files",
	},
		WithConcurrency(2),
		WithProgress(tracker),
	)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Uploaded)
	assert.Len(t, tracker.Phases, 2)
	assert.Equal(t, s3types.PhaseDownload, tracker.Phases[0].Phase)
	assert.Equal(t, s3types.PhaseUpload, tracker.Phases[1].Phase)
}

func TestMirror_DryRun(t *testing.T) {
	sourceStore := testutil.NewObjectStore()
	sourceStore.Seed("source-bucket", "a.txt", []byte("alpha"))

	source := newTestClient(sourceStore)
	destStore := testutil.NewObjectStore()
	dest := newTestClient(destStore)

	result, err := Mirror(context.Background(), source, dest, MirrorConfig{
		SourceBucket: "source-bucket",
		DestBucket:   "dest-bucket",
		StagingRoot:  "files",
	}, WithDryRun(true))
	require.NoError(t, err)

	assert.True(t, result.DryRun)
	assert.Equal(t, []string{"a.txt"}, result.Missing)
	assert.Empty(t, destStore.Keys("dest-bucket"))
}

func TestMirror_InvalidConfig(t *testing.T) {
	source := newTestClient(testutil.NewObjectStore())
	dest := newTestClient(testutil.NewObjectStore())

	tests := []struct {
		name     string
		cfg      MirrorConfig
		sentinel error
	}{
		{
			name: "bad source bucket",
			cfg: MirrorConfig{
				SourceBucket: "NO", DestBucket: "dest-bucket", StagingRoot: "files",
			},
			sentinel: s3errors.ErrInvalidBucketName,
		},
		{
			name: "bad dest bucket",
			cfg: MirrorConfig{
				SourceBucket: "source-bucket", DestBucket: "_bad_", StagingRoot: "files",
			},
			sentinel: s3errors.ErrInvalidBucketName,
		},
		{
			name: "bad prefix",
			cfg: MirrorConfig{
				SourceBucket: "source-bucket", DestBucket: "dest-bucket",
				Prefix: "../up/", StagingRoot: "files",
			},
			sentinel: s3errors.ErrInvalidInput,
		},
		{
			name: "missing staging root",
			cfg: MirrorConfig{
				SourceBucket: "source-bucket", DestBucket: "dest-bucket",
			},
			sentinel: s3errors.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Mirror(context.Background(), source, dest, tt.cfg)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.ErrorIs(t, err, tt.sentinel)
		})
	}
}

func TestDownloadAll(t *testing.T) {
	sourceStore := testutil.NewObjectStore()
	sourceStore.Seed("source-bucket", "a.txt", []byte("alpha"))
	sourceStore.Seed("source-bucket", "dir/b.txt", []byte("bravo"))

	source := newTestClient(sourceStore)

	result, err := DownloadAll(context.Background(), source, MirrorConfig{
		SourceBucket: "source-bucket",
		StagingRoot:  "files",
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.SourceObjects)
	assert.Equal(t, 2, result.Downloaded)
	assert.Empty(t, result.Failures)

	data, err := source.filesystem().ReadFile("files/source-bucket/a.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("alpha"), data)
}

func TestDownloadAll_NoDestBucketRequired(t *testing.T) {
	source := newTestClient(testutil.NewObjectStore())

	_, err := DownloadAll(context.Background(), source, MirrorConfig{
		SourceBucket: "source-bucket",
		StagingRoot:  "files",
	})
	assert.NoError(t, err)
}
