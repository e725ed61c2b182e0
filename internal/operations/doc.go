// Package operations contains the core S3 operation implementations.
// These functions handle the low-level AWS SDK interactions for the
// listing, download, and upload steps of a mirror run.
//
// Each operation is isolated into its own subpackage for better organization
// and testability.
package operations
