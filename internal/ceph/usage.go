package ceph

import (
	"fmt"

	"github.com/ceph/go-ceph/rados"
	"github.com/ceph/go-ceph/rbd"

	"github.com/jbweber/cephrbdx/internal/rbdx"
)

// atLeast reports whether librbd is at least major.minor.
func atLeast(major, minor int) error {
	maj, mn, ext := rbd.Version()
	if maj > major || (maj == major && mn >= minor) {
		return nil
	}
	return fmt.Errorf("librbd %d.%d.%d is older than %d.%d", maj, mn, ext, major, minor)
}

// diskUsage sums the allocated backing objects of an open image's head, clamped
// to the image size. This is the figure `rbd du` reports.
func diskUsage(image *rbd.Image, size uint64) (uint64, error) {
	if size == 0 {
		return 0, nil
	}

	var used uint64
	cfg := rbd.DiffIterateConfig{
		SnapName:      rbd.NoSnapshot,
		Offset:        0,
		Length:        size,
		IncludeParent: rbd.ExcludeParent,
		WholeObject:   rbd.EnableWholeObject,
		Callback: func(offset, length uint64, exists int, _ interface{}) int {
			if exists != 0 {
				used += length
			}
			return 0
		},
	}
	if err := image.DiffIterate(cfg); err != nil {
		return 0, fmt.Errorf("failed to iterate extents: %w", toStatus(err))
	}
	return used, nil
}

// inspectImage opens a single image read-only and gathers its info record.
func inspectImage(ioctx *rados.IOContext, name string) (rbdx.ImageInfo, error) {
	info := rbdx.ImageInfo{Name: name}

	image, err := rbd.OpenImageReadOnly(ioctx, name, rbd.NoSnapshot)
	if err != nil {
		return info, fmt.Errorf("failed to open image %s: %w", name, toStatus(err))
	}
	defer func() {
		_ = image.Close()
	}()

	if info.ID, err = image.GetId(); err != nil {
		return info, fmt.Errorf("failed to get id of %s: %w", name, toStatus(err))
	}

	stat, err := image.Stat()
	if err != nil {
		return info, fmt.Errorf("failed to stat %s: %w", name, toStatus(err))
	}
	info.Size = stat.Size
	info.Order = uint8(stat.Order)

	if info.Features, err = image.GetFeatures(); err != nil {
		return info, fmt.Errorf("failed to get features of %s: %w", name, toStatus(err))
	}

	if info.DU, err = diskUsage(image, info.Size); err != nil {
		return info, fmt.Errorf("failed to compute usage of %s: %w", name, err)
	}

	return info, nil
}

// listPool inspects every image in the pool. Results are keyed by image id, or by
// image name for images whose id could not be read.
func listPool(ioctx *rados.IOContext) (map[string]rbdx.ImageResult, error) {
	names, err := rbd.GetImageNames(ioctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list image names: %w", toStatus(err))
	}

	results := make(map[string]rbdx.ImageResult, len(names))
	for _, name := range names {
		info, err := inspectImage(ioctx, name)
		key := info.ID
		if key == "" {
			key = name
		}
		results[key] = rbdx.ImageResult{Info: info, Err: err}
	}
	return results, nil
}
