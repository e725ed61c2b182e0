// Package list handles S3 object listing operations.
//
// ListAll walks every ListObjectsV2 page of a bucket sequentially and returns
// the complete listing. Pagination stops when a page reports the listing as
// no longer truncated, regardless of any token it carries.
package list
