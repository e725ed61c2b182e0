// Package s3mirror provides one-way synchronization between two S3 buckets
// through a local staging tree. It wraps AWS SDK v2 to list both buckets,
// compute the objects missing from the destination by key name, download
// them into staging/<bucket>/<key>, and upload each staged file to the
// destination under its recovered key.
//
// The two buckets may live in different accounts or regions: each side of
// the mirror gets its own Client handle with its own profile, region, and
// endpoint.
//
// Per-object transfer failures are isolated. A failed download or upload is
// recorded in the result and the run continues; only listing failures and
// invalid configuration abort a run.
//
// Example usage:
//
//	source, err := s3mirror.New(s3mirror.WithProfile("prod"))
//	if err != nil {
//	    return err
//	}
//	dest, err := s3mirror.New(s3mirror.WithProfile("backup"), s3mirror.WithRegion("eu-west-1"))
//	if err != nil {
//	    return err
//	}
//
//	result, err := s3mirror.Mirror(ctx, source, dest, s3mirror.MirrorConfig{
//	    SourceBucket: "assets",
//	    DestBucket:   "assets-backup",
//	    StagingRoot:  "./files",
//	})
package s3mirror
