// Package rbdx reports per-image usage (provisioned size and allocated bytes)
// for the RBD images in one or more Ceph pools.
//
// The heavy lifting lives in the native Ceph libraries. This package selects
// which introspection generation to use and aggregates its listings:
//
//   - GenerationTwo: bulk image-info listing, connected with an additional
//     per-operation timeout
//   - GenerationOne: pool-bound du listing, the fallback
//   - GenerationUnavailable: no provider probed successfully; every query fails
//     to connect and every requested pool resolves to an absence marker
//
// Selection:
//
// Providers register themselves with Register from an init function, the way
// database/sql drivers do (see internal/ceph). The first call to Selected probes
// GenerationTwo, then GenerationOne, and commits to the first usable provider
// for the life of the process.
//
// Result Contract:
//
// A QueryResult always has exactly one entry per requested pool, keyed by the
// pool id's string form. An entry is either a (possibly empty) mapping of image
// id to ImageUsage, or an absence marker when the pool could not be listed.
// Failures are logged and degrade to absence markers, never to panics.
//
// Example usage:
//
//	import _ "github.com/jbweber/cephrbdx/internal/ceph"
//
//	result := rbdx.GetImages(ctx, "ceph", rbdx.ParsePoolIDs([]string{"1", "2"}))
//	for _, pool := range result.Keys() {
//	    entry := result[pool]
//	    if !entry.Available() {
//	        continue
//	    }
//	    for id, usage := range entry.Images {
//	        fmt.Println(pool, id, usage.Size, usage.Capacity)
//	    }
//	}
package rbdx
