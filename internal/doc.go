// Package internal contains private implementation details for the mirror module.
// These packages are not intended for external use and may change without notice.
//
// The internal packages are organized as follows:
//   - operations: Core S3 operation implementations (list, download, upload)
//   - staging: Mapping between object keys and the local staging tree
//   - sync: Diffing, bounded-concurrency execution, and mirror orchestration
//   - validation: Input validation logic
//   - pool: Buffer reuse for transfer bodies
//   - s3api: The S3 client interface the operations are written against
package internal
