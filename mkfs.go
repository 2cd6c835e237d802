package rufs

import (
	"github.com/boljen/go-bitmap"
)

// Mkfs constructs the initial on-disk state of a fresh image — superblock,
// both bitmaps, and the root inode — per spec.md §4.6. dev must already be
// sized to totalBlocksForGeometry(geometry) blocks (DevInit does this).
func Mkfs(dev BlockDevice, geometry Geometry) error {
	layout := ComputeLayout(geometry)
	sb := NewSuperblock(geometry)

	if err := dev.WriteBlock(0, sb.Encode(geometry.BlockSize)); err != nil {
		return err
	}

	// Inode bitmap: zeroed, no inode allocated yet.
	iBitmap := make([]byte, geometry.BlockSize)
	if err := dev.WriteBlock(layout.IBitmapBlock, iBitmap); err != nil {
		return err
	}

	// Data-block bitmap: bits [0, DStartBlock) pre-set so the allocator
	// never hands out a metadata block, per spec.md §3/§4.6.
	dBitmap := make([]byte, geometry.BlockSize)
	dBits := bitmap.Bitmap(dBitmap)
	for b := uint32(0); b < layout.DStartBlock; b++ {
		dBits.Set(int(b), true)
	}
	if err := dev.WriteBlock(layout.DBitmapBlock, dBitmap); err != nil {
		return err
	}

	// Root inode: ino=0, valid, empty directory, link count 2.
	root := Inode{
		Ino:   0,
		Valid: 1,
		Size:  0,
		Type:  TypeDirectory,
		Link:  2,
	}
	if err := writeInodeDirect(dev, sb, 0, root); err != nil {
		return err
	}

	// Set bit 0 of the inode bitmap for the root and rewrite it.
	iBits := bitmap.Bitmap(iBitmap)
	iBits.Set(0, true)
	return dev.WriteBlock(layout.IBitmapBlock, iBitmap)
}

// writeInodeDirect is Mkfs's own inode write, used before an *FS exists to
// wrap the device. It performs the same read-modify-write as FS.WriteInode,
// per spec.md §4.3.
func writeInodeDirect(dev BlockDevice, sb Superblock, ino uint32, inode Inode) error {
	inodesPerBlock := sb.BlockSize / InodeSize
	blockNum := sb.IStartBlock + ino/inodesPerBlock
	offset := (ino % inodesPerBlock) * InodeSize

	block := make([]byte, sb.BlockSize)
	if err := dev.ReadBlock(blockNum, block); err != nil {
		return err
	}

	copy(block[offset:offset+InodeSize], inode.Encode())

	return dev.WriteBlock(blockNum, block)
}
