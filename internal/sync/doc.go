// Package sync implements one-way bucket synchronization.
// This includes diffing bucket listings by key, running per-object transfer
// tasks with bounded concurrency, and orchestrating the download and upload
// phases of a mirror run.
package sync
