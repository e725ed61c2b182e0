// Package s3types provides shared type definitions for the s3mirror module.
package s3types

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/input-output-hk/catalyst-forge-libs/fs"
)

// Object represents an S3 object with its basic metadata.
type Object struct {
	// Key is the S3 object key (path)
	Key string

	// Size is the object size in bytes
	Size int64

	// LastModified is when the object was last modified
	LastModified time.Time

	// ETag is the S3 entity tag for the object
	ETag string

	// StorageClass is the S3 storage class
	StorageClass string
}

// ListResult contains a single page of a list operation.
type ListResult struct {
	// Objects contains the listed objects
	Objects []Object

	// IsTruncated indicates if the results were truncated
	IsTruncated bool

	// NextContinuationToken is the token for the next page of results
	NextContinuationToken string
}

// TransferPhase identifies which half of a mirror run an item failure belongs to.
type TransferPhase string

// Transfer phases.
const (
	PhaseDownload TransferPhase = "download"
	PhaseUpload   TransferPhase = "upload"
)

// TransferError records a single object that failed during a mirror run.
// Item failures never abort the run; they are collected and reported here.
type TransferError struct {
	// Key is the object key that failed
	Key string

	// Phase is the transfer phase the failure occurred in
	Phase TransferPhase

	// Err is the underlying error
	Err error
}

// MirrorResult contains the outcome of a mirror run.
type MirrorResult struct {
	// SourceObjects is the number of objects listed in the source bucket
	SourceObjects int

	// DestObjects is the number of objects listed in the destination bucket
	DestObjects int

	// Missing contains the keys present in the source but absent from the destination
	Missing []string

	// Downloaded is the number of objects staged successfully
	Downloaded int

	// Uploaded is the number of objects uploaded successfully
	Uploaded int

	// BytesTransferred is the total bytes moved through the staging tree
	BytesTransferred int64

	// Failures contains all per-object failures from both phases
	Failures []TransferError

	// DryRun indicates the run stopped after planning
	DryRun bool

	// Duration is how long the run took
	Duration time.Duration
}

// ProgressTracker defines the interface for tracking transfer progress.
// Update is called with item counts as a transfer phase advances.
type ProgressTracker interface {
	// Phase is called when a transfer phase begins with the number of items in it
	Phase(phase TransferPhase, total int)

	// Update is called after each item in the current phase reaches a terminal state
	Update(completed, total int)

	// Complete is called when the current phase finishes
	Complete()

	// Error is called for each item that fails
	Error(err error)
}

// ClientConfig holds configuration for an S3 client handle.
type ClientConfig struct {
	Region           string
	Profile          string
	Endpoint         string
	MaxRetries       int
	Timeout          time.Duration
	ForcePathStyle   bool
	AccessKeyID      string
	SecretAccessKey  string
	SessionToken     string
	CustomAWSConfig  *aws.Config
	CustomHTTPClient *http.Client
	Filesystem       fs.Filesystem // Filesystem abstraction for staging I/O
}

// MirrorOptionConfig holds configuration for mirror runs via functional options.
type MirrorOptionConfig struct {
	Concurrency     int
	DryRun          bool
	ProgressTracker ProgressTracker
	Logger          *slog.Logger
}

// Option is a functional option for configuring an S3 client handle.
type Option func(*ClientConfig)

// MirrorOption is a functional option for configuring a mirror run.
type MirrorOption func(*MirrorOptionConfig)
