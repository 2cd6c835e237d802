// Package alloc implements the inode-number and data-block-number
// allocators described in spec.md §4.2: a bitmap linear scan with
// immediate persistence. Grounded on disko's
// drivers/common/allocatormap.go Allocator type, generalized to read and
// write its bitmap through a rufs.BlockDevice instead of holding it only
// in memory, since spec.md requires every allocation to be durable before
// the caller sees a result.
package alloc

import (
	"github.com/mkch-fs/rufs"
	"github.com/mkch-fs/rufs/bitmap"
)

// AllocInode scans the inode bitmap for the first clear bit, sets it, and
// persists the bitmap before returning, per spec.md §4.2.
func AllocInode(fs *rufs.FS) (uint32, error) {
	sb := fs.Superblock
	buf := make([]byte, sb.BlockSize)
	if err := fs.Device.ReadBlock(sb.IBitmapBlock, buf); err != nil {
		return 0, err
	}

	for i := uint32(0); i < sb.MaxInum; i++ {
		if !bitmap.Get(buf, int(i)) {
			bitmap.Set(buf, int(i))
			if err := fs.Device.WriteBlock(sb.IBitmapBlock, buf); err != nil {
				return 0, err
			}
			return i, nil
		}
	}

	return 0, rufs.ErrNoSpace
}

// AllocBlock scans the data-block bitmap for the first clear bit, sets it,
// and persists the bitmap before returning, per spec.md §4.2. Because
// metadata blocks [0, DStartBlock) are pre-set at mkfs, the first block
// this ever returns is DStartBlock.
func AllocBlock(fs *rufs.FS) (uint32, error) {
	sb := fs.Superblock
	buf := make([]byte, sb.BlockSize)
	if err := fs.Device.ReadBlock(sb.DBitmapBlock, buf); err != nil {
		return 0, err
	}

	for i := uint32(0); i < sb.MaxDnum; i++ {
		if !bitmap.Get(buf, int(i)) {
			bitmap.Set(buf, int(i))
			if err := fs.Device.WriteBlock(sb.DBitmapBlock, buf); err != nil {
				return 0, err
			}
			return i, nil
		}
	}

	return 0, rufs.ErrNoSpace
}

// IsInodeAllocated reports whether bit i is set in the inode bitmap,
// without mutating anything — used by rufs/fsck to check invariant 1.
func IsInodeAllocated(fs *rufs.FS, i uint32) (bool, error) {
	sb := fs.Superblock
	buf := make([]byte, sb.BlockSize)
	if err := fs.Device.ReadBlock(sb.IBitmapBlock, buf); err != nil {
		return false, err
	}
	return bitmap.Get(buf, int(i)), nil
}

// IsBlockAllocated reports whether bit b is set in the data-block bitmap,
// without mutating anything — used by rufs/fsck to check invariant 2.
func IsBlockAllocated(fs *rufs.FS, b uint32) (bool, error) {
	sb := fs.Superblock
	buf := make([]byte, sb.BlockSize)
	if err := fs.Device.ReadBlock(sb.DBitmapBlock, buf); err != nil {
		return false, err
	}
	return bitmap.Get(buf, int(b)), nil
}
