// Package staging maps S3 object keys onto a local staging tree and back.
//
// Downloaded objects are written under root/bucket/key; before upload the
// tree is walked and each file's key is recovered from its path relative
// to the walk root.
package staging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/input-output-hk/catalyst-forge-libs/fs"

	"github.com/forgekit/s3mirror/errors"
	"github.com/forgekit/s3mirror/internal/validation"
)

// Entry is a single staged file discovered by Walk.
type Entry struct {
	// Path is the file path on the staging filesystem
	Path string

	// Key is the object key recovered from the path, with forward slashes
	Key string

	// Size is the file size in bytes
	Size int64
}

// ObjectPath derives the staging location for an object as root/bucket/key.
// Keys that are empty, absolute, or contain "." or ".." segments are rejected
// with ErrUnsafeKey so a hostile key can never escape the staging tree.
func ObjectPath(root, bucket, key string) (string, error) {
	if err := checkKey(key); err != nil {
		return "", err
	}
	return filepath.Join(root, bucket, filepath.FromSlash(key)), nil
}

// Walk traverses the staging tree under root and returns an entry for every
// regular file, keyed by its slash-separated path relative to root.
// A file that cannot be relativized against root is a hard error.
func Walk(fsys fs.Filesystem, root string) ([]Entry, error) {
	var entries []Entry

	err := fsys.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		// Skip directories (we only want files)
		if info.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path for %s: %w", path, err)
		}
		if strings.HasPrefix(relPath, "..") {
			return fmt.Errorf("path %s escapes staging root %s", path, root)
		}

		entries = append(entries, Entry{
			Path: path,
			Key:  filepath.ToSlash(relPath),
			Size: info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, errors.NewError("walk", err).WithMessage(fmt.Sprintf("failed to walk staging tree %s", root))
	}

	return entries, nil
}

// checkKey rejects keys that would resolve outside root/bucket.
func checkKey(key string) error {
	if key == "" {
		return errors.NewError("stage", errors.ErrUnsafeKey).WithMessage("object key cannot be empty")
	}
	if strings.HasPrefix(key, "/") || strings.HasPrefix(key, "\\") {
		return errors.NewError("stage", errors.ErrUnsafeKey).WithKey(key).WithMessage("object key cannot be absolute")
	}
	if validation.HasPathTraversal(key) {
		return errors.NewError("stage", errors.ErrUnsafeKey).WithKey(key).
			WithMessage("object key cannot contain path traversal sequences")
	}
	for _, segment := range strings.Split(key, "/") {
		if segment == "." || segment == ".." {
			return errors.NewError("stage", errors.ErrUnsafeKey).WithKey(key).
				WithMessage("object key cannot contain dot segments")
		}
	}
	return nil
}
