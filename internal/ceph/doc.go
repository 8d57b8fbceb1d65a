// Package ceph provides the rbdx introspection generations on top of
// go-ceph (librados and librbd via cgo).
//
// Importing this package registers both generations with rbdx:
//
//	import _ "github.com/jbweber/cephrbdx/internal/ceph"
//
// Generations:
//
//   - v2 (image-info): needs librbd 1.12 (Nautilus) or newer. Pools are opened
//     by name or id, and the connection also sets rados_osd_op_timeout.
//   - v1 (du): any librbd. Pools must be given by numeric id. A du lister is
//     bound to the pool when it is opened.
//
// Both read each image's id, size, order and features. Disk usage is the sum of
// the image's allocated backing objects clamped to the image size, as `rbd du`
// reports it, with or without fast-diff.
//
// Setting CEPHRBDX_GENERATION to "v1" or "v2" makes the other generation's probe
// fail, which forces the choice for the whole process.
//
// Building this package requires the librados and librbd development headers.
package ceph
