// Package differ computes the asymmetric difference between two bucket
// listings by exact key name. Size, ETag, and timestamps play no part in the
// comparison: an object is missing if and only if its key is absent from the
// destination.
package differ

import (
	"sort"

	"github.com/forgekit/s3mirror/s3types"
)

// Missing returns the keys present in source but absent from dest.
// Duplicate keys in either listing are collapsed; the result is sorted so
// planning output is deterministic (execution order makes no such promise).
func Missing(source, dest []s3types.Object) []string {
	destKeys := make(map[string]struct{}, len(dest))
	for _, obj := range dest {
		destKeys[obj.Key] = struct{}{}
	}

	seen := make(map[string]struct{}, len(source))
	missing := make([]string, 0)

	for _, obj := range source {
		if _, ok := seen[obj.Key]; ok {
			continue
		}
		seen[obj.Key] = struct{}{}

		if _, ok := destKeys[obj.Key]; !ok {
			missing = append(missing, obj.Key)
		}
	}

	sort.Strings(missing)
	return missing
}

// Keys extracts the key names from a listing, preserving order.
func Keys(objects []s3types.Object) []string {
	keys := make([]string, 0, len(objects))
	for _, obj := range objects {
		keys = append(keys, obj.Key)
	}
	return keys
}
