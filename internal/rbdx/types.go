package rbdx

import (
	"encoding/json"
	"sort"
	"strconv"
)

// PoolID identifies a storage pool, either by numeric id ("3") or by name ("rbd").
type PoolID string

// PoolIDFromInt returns the PoolID for a numeric pool id.
func PoolIDFromInt(id int64) PoolID {
	return PoolID(strconv.FormatInt(id, 10))
}

// ParsePoolIDs converts raw pool arguments to PoolIDs, keeping order and duplicates.
func ParsePoolIDs(raw []string) []PoolID {
	ids := make([]PoolID, 0, len(raw))
	for _, r := range raw {
		ids = append(ids, PoolID(r))
	}
	return ids
}

// String returns the key used for this pool in a QueryResult.
func (p PoolID) String() string {
	return string(p)
}

// Int64 returns the numeric pool id. ok is false when the pool is referenced by name.
func (p PoolID) Int64() (id int64, ok bool) {
	id, err := strconv.ParseInt(string(p), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// ImageInfo is the native info record returned by a listing.
// Only Size and DU are load-bearing for the usage report.
type ImageInfo struct {
	ID       string // Cluster-assigned image id
	Name     string // Image name
	Size     uint64 // Provisioned size in bytes
	DU       uint64 // Allocated bytes
	Order    uint8  // Object size as a power of two
	Features uint64 // RBD feature bits
}

// ImageResult pairs an ImageInfo with its per-image status.
// A non-nil Err means the image could not be inspected.
type ImageResult struct {
	Info ImageInfo
	Err  error
}

// ImageUsage is the usage summary reported for an image.
type ImageUsage struct {
	Size     uint64 `json:"Size" yaml:"Size"`         // Provisioned size in bytes
	Capacity uint64 `json:"Capacity" yaml:"Capacity"` // Allocated bytes (disk usage)
}

// PoolResult is the entry for one requested pool.
// When Err is set the pool could not be listed and Images is nil.
type PoolResult struct {
	Images map[string]ImageUsage
	Err    error
}

// Available reports whether the pool was listed. An available pool may still have
// zero images.
func (p PoolResult) Available() bool {
	return p.Err == nil
}

// MarshalJSON encodes an absent pool as null and an available pool as its image mapping.
func (p PoolResult) MarshalJSON() ([]byte, error) {
	if !p.Available() {
		return []byte("null"), nil
	}
	images := p.Images
	if images == nil {
		images = map[string]ImageUsage{}
	}
	return json.Marshal(images)
}

// MarshalYAML encodes an absent pool as null and an available pool as its image mapping.
func (p PoolResult) MarshalYAML() (interface{}, error) {
	if !p.Available() {
		return nil, nil
	}
	images := p.Images
	if images == nil {
		images = map[string]ImageUsage{}
	}
	return images, nil
}

// QueryResult maps each requested pool's string id to its PoolResult.
type QueryResult map[string]PoolResult

// Keys returns the pool keys in sorted order.
func (q QueryResult) Keys() []string {
	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Pool returns the entry for a pool and whether it was requested.
func (q QueryResult) Pool(id PoolID) (PoolResult, bool) {
	p, ok := q[id.String()]
	return p, ok
}

// Totals sums provisioned and allocated bytes across available pools.
func (q QueryResult) Totals() (size, capacity uint64) {
	for _, p := range q {
		if !p.Available() {
			continue
		}
		for _, usage := range p.Images {
			size += usage.Size
			capacity += usage.Capacity
		}
	}
	return size, capacity
}

// absent fills every requested pool that has no entry yet with an absence marker.
func (q QueryResult) absent(pools []PoolID, err error) {
	for _, pool := range pools {
		if _, ok := q[pool.String()]; !ok {
			q[pool.String()] = PoolResult{Err: err}
		}
	}
}
