// Package errors provides error types and handling for bucket mirror operations.
package errors

import (
	"errors"
	"fmt"
)

// Error represents a mirror operation error with context about what failed.
// It wraps the underlying AWS SDK or filesystem error with the operation,
// bucket, and object key involved.
type Error struct {
	// Op is the operation that failed (e.g., "list", "download", "upload")
	Op string

	// Bucket is the S3 bucket name (if applicable)
	Bucket string

	// Key is the S3 object key (if applicable)
	Key string

	// Err is the underlying error
	Err error
}

// Error implements the error interface by providing a formatted error message.
func (e *Error) Error() string {
	if e.Bucket != "" && e.Key != "" {
		return fmt.Sprintf("s3mirror.%s %s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
	}
	if e.Bucket != "" {
		return fmt.Sprintf("s3mirror.%s bucket %s: %v", e.Op, e.Bucket, e.Err)
	}
	if e.Key != "" {
		return fmt.Sprintf("s3mirror.%s object %s: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("s3mirror.%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithBucket adds bucket context to an existing error.
func (e *Error) WithBucket(bucket string) *Error {
	e.Bucket = bucket
	return e
}

// WithKey adds object key context to an existing error.
func (e *Error) WithKey(key string) *Error {
	e.Key = key
	return e
}

// WithMessage wraps the underlying error with a custom message.
func (e *Error) WithMessage(message string) *Error {
	e.Err = fmt.Errorf("%s: %w", message, e.Err)
	return e
}

// WithCause chains the original cause behind the current sentinel so both
// survive errors.Is checks.
func (e *Error) WithCause(cause error) *Error {
	e.Err = fmt.Errorf("%w: %w", e.Err, cause)
	return e
}

// NewError creates a new Error with the given operation and underlying error.
func NewError(op string, err error) *Error {
	return &Error{
		Op:  op,
		Err: err,
	}
}

// NewBucketError creates a new Error with bucket context.
func NewBucketError(op, bucket string, err error) *Error {
	return &Error{
		Op:     op,
		Bucket: bucket,
		Err:    err,
	}
}

// NewObjectError creates a new Error with bucket and key context.
func NewObjectError(op, bucket, key string, err error) *Error {
	return &Error{
		Op:     op,
		Bucket: bucket,
		Key:    key,
		Err:    err,
	}
}

// Sentinel errors for mirror operation failures.
// These can be used with errors.Is() for error checking.
var (
	// ErrObjectNotFound indicates that the requested object does not exist
	ErrObjectNotFound = errors.New("s3mirror: object not found")

	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("s3mirror: invalid input")

	// ErrInvalidBucketName indicates that the bucket name is invalid
	ErrInvalidBucketName = errors.New("s3mirror: invalid bucket name")

	// ErrInvalidObjectKey indicates that the object key is invalid
	ErrInvalidObjectKey = errors.New("s3mirror: invalid object key")

	// ErrUnsafeKey indicates an object key that would escape the staging tree
	ErrUnsafeKey = errors.New("s3mirror: unsafe object key")

	// ErrFetchFailed indicates that retrieving an object from the source bucket failed
	ErrFetchFailed = errors.New("s3mirror: fetch failed")

	// ErrStagingMkdir indicates that creating staging directories failed
	ErrStagingMkdir = errors.New("s3mirror: staging mkdir failed")

	// ErrStagingWrite indicates that writing a staged file failed
	ErrStagingWrite = errors.New("s3mirror: staging write failed")

	// ErrStagingRead indicates that reading a staged file failed
	ErrStagingRead = errors.New("s3mirror: staging read failed")

	// ErrPutFailed indicates that storing an object in the destination bucket failed
	ErrPutFailed = errors.New("s3mirror: put failed")
)

// IsObjectNotFound checks if an error indicates that an object was not found.
// This is a convenience function that handles both sentinel errors and wrapped errors.
func IsObjectNotFound(err error) bool {
	return errors.Is(err, ErrObjectNotFound)
}

// IsInvalidInput checks if an error indicates invalid input.
// This is a convenience function that handles both sentinel errors and wrapped errors.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsUnsafeKey checks if an error indicates a key that cannot be staged safely.
func IsUnsafeKey(err error) bool {
	return errors.Is(err, ErrUnsafeKey)
}

// IsFetchFailed checks if an error came from the source-bucket fetch step.
func IsFetchFailed(err error) bool {
	return errors.Is(err, ErrFetchFailed)
}

// IsPutFailed checks if an error came from the destination-bucket put step.
func IsPutFailed(err error) bool {
	return errors.Is(err, ErrPutFailed)
}
