package staging

import (
	"path/filepath"
	"testing"

	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgekit/s3mirror/errors"
)

func TestObjectPath(t *testing.T) {
	tests := []struct {
		name     string
		root     string
		bucket   string
		key      string
		expected string
	}{
		{
			name:     "simple key",
			root:     "files",
			bucket:   "my-bucket",
			key:      "a.txt",
			expected: filepath.Join("files", "my-bucket", "a.txt"),
		},
		{
			name:     "nested key",
			root:     "files",
			bucket:   "my-bucket",
			key:      "dir/sub/b.txt",
			expected: filepath.Join("files", "my-bucket", "dir", "sub", "b.txt"),
		},
		{
			name:     "absolute root",
			root:     "/tmp/staging",
			bucket:   "my-bucket",
			key:      "a.txt",
			expected: filepath.Join("/tmp/staging", "my-bucket", "a.txt"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := ObjectPath(tt.root, tt.bucket, tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, path)
		})
	}
}

func TestObjectPath_RejectsUnsafeKeys(t *testing.T) {
	tests := []struct {
		name string
		key  string
	}{
		{"empty key", ""},
		{"absolute key", "/etc/passwd"},
		{"backslash absolute key", `\windows\system32`},
		{"parent traversal", "../escape.txt"},
		{"embedded traversal", "dir/../../escape.txt"},
		{"dot segment", "dir/./a.txt"},
		{"bare dot dot", ".."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ObjectPath("files", "my-bucket", tt.key)
			require.Error(t, err)
			assert.True(t, errors.IsUnsafeKey(err), "expected unsafe key error, got %v", err)
		})
	}
}

func TestWalk_RoundTrip(t *testing.T) {
	memFS := billy.NewInMemoryFS()

	staged := map[string][]byte{
		"a.txt":          []byte("alpha"),
		"dir/b.txt":      []byte("bravo"),
		"dir/sub/c.json": []byte(`{"c":true}`),
		"deep/x/y/z.dat": {0x00, 0x01, 0x02},
		"no-extension":   []byte("plain"),
		"dir/empty-file": {},
	}

	root := filepath.Join("files", "my-bucket")
	for key, data := range staged {
		path, err := ObjectPath("files", "my-bucket", key)
		require.NoError(t, err)
		require.NoError(t, memFS.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, memFS.WriteFile(path, data, 0o644))
	}

	entries, err := Walk(memFS, root)
	require.NoError(t, err)
	require.Len(t, entries, len(staged))

	for _, entry := range entries {
		data, ok := staged[entry.Key]
		require.True(t, ok, "unexpected key %s", entry.Key)
		assert.Equal(t, int64(len(data)), entry.Size)
		assert.Equal(t, filepath.Join(root, filepath.FromSlash(entry.Key)), entry.Path)
	}
}

func TestWalk_KeysUseForwardSlashes(t *testing.T) {
	memFS := billy.NewInMemoryFS()

	path, err := ObjectPath("files", "b", "nested/dir/object.txt")
	require.NoError(t, err)
	require.NoError(t, memFS.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, memFS.WriteFile(path, []byte("data"), 0o644))

	entries, err := Walk(memFS, filepath.Join("files", "b"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "nested/dir/object.txt", entries[0].Key)
}

func TestWalk_SkipsDirectories(t *testing.T) {
	memFS := billy.NewInMemoryFS()

	require.NoError(t, memFS.MkdirAll(filepath.Join("files", "b", "only-dirs", "deeper"), 0o755))
	require.NoError(t, memFS.WriteFile(filepath.Join("files", "b", "f.txt"), []byte("x"), 0o644))

	entries, err := Walk(memFS, filepath.Join("files", "b"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "f.txt", entries[0].Key)
}

func TestWalk_MissingRoot(t *testing.T) {
	memFS := billy.NewInMemoryFS()

	_, err := Walk(memFS, "does-not-exist")
	assert.Error(t, err)
}
