// Package bitmap implements the bit get/set/clear primitives spec.md §4.1
// requires over a fixed BLOCK_SIZE buffer, backed directly by
// github.com/boljen/go-bitmap rather than a hand-rolled bit-twiddler —
// go-bitmap's Bitmap type is itself a []byte, so a block read straight off
// disk converts to it with no copy, per disko's
// drivers/common/allocatormap.go usage of the same package.
package bitmap

import (
	"github.com/boljen/go-bitmap"
)

// Map wraps an existing BLOCK_SIZE buffer as a bitmap in place; writes
// through Set/Clear are visible in buf without a separate flush step.
func Map(buf []byte) bitmap.Bitmap {
	return bitmap.Bitmap(buf)
}

// Get returns the value of bit i, per spec.md §4.1.
func Get(buf []byte, i int) bool {
	return Map(buf).Get(i)
}

// Set sets bit i to 1. Idempotent, per spec.md §4.1.
func Set(buf []byte, i int) {
	Map(buf).Set(i, true)
}

// Clear sets bit i to 0. Reserved for future deletion support, per
// spec.md §4.1.
func Clear(buf []byte, i int) {
	Map(buf).Set(i, false)
}
