package rufs

import (
	"os"
)

// FS is the mounted, in-memory state of a formatted image: the device and
// the superblock read from block 0 at mount time. Per spec.md §4.7, no
// caching beyond the superblock happens here — every allocator and I/O
// operation re-reads its bitmap/inode block from the device.
//
// The superblock is process-wide state in the original design; here it is
// threaded explicitly as a field of FS rather than a package global or a
// context.Context value (see SPEC_FULL.md §9) so multiple images can be
// mounted in the same process, e.g. in tests.
type FS struct {
	Device     BlockDevice
	Superblock Superblock
}

// Mount opens path (creating and formatting it via Mkfs if it doesn't exist)
// and returns the mounted FS, per spec.md §4.7.
func Mount(path string, geometry Geometry) (*FS, error) {
	dev, existing, err := openOrInit(path, geometry)
	if err != nil {
		return nil, err
	}

	if !existing {
		if err := Mkfs(dev, geometry); err != nil {
			dev.Close()
			return nil, err
		}
	}

	sbBuf := make([]byte, dev.BlockSize())
	if err := dev.ReadBlock(0, sbBuf); err != nil {
		dev.Close()
		return nil, err
	}
	sb, err := DecodeSuperblock(sbBuf)
	if err != nil {
		dev.Close()
		return nil, err
	}

	return &FS{Device: dev, Superblock: sb}, nil
}

// Unmount closes the underlying device, per spec.md §4.7.
func (fs *FS) Unmount() error {
	return fs.Device.Close()
}

// ReadInode reads inode number ino from the inode table, per spec.md §4.3.
func (fs *FS) ReadInode(ino uint32) (Inode, error) {
	sb := fs.Superblock
	inodesPerBlock := sb.BlockSize / InodeSize
	blockNum := sb.IStartBlock + ino/inodesPerBlock
	offset := (ino % inodesPerBlock) * InodeSize

	block := make([]byte, sb.BlockSize)
	if err := fs.Device.ReadBlock(blockNum, block); err != nil {
		return Inode{}, err
	}

	return DecodeInode(block[offset : offset+InodeSize])
}

// WriteInode writes inode into the inode table via read-modify-write,
// preserving neighboring inodes in the same block, per spec.md §4.3.
func (fs *FS) WriteInode(ino uint32, inode Inode) error {
	sb := fs.Superblock
	inodesPerBlock := sb.BlockSize / InodeSize
	blockNum := sb.IStartBlock + ino/inodesPerBlock
	offset := (ino % inodesPerBlock) * InodeSize

	block := make([]byte, sb.BlockSize)
	if err := fs.Device.ReadBlock(blockNum, block); err != nil {
		return err
	}

	copy(block[offset:offset+InodeSize], inode.Encode())

	return fs.Device.WriteBlock(blockNum, block)
}

func openOrInit(path string, geometry Geometry) (dev *FileBlockDevice, existing bool, err error) {
	if fileExists(path) {
		dev, err = DevOpen(path, geometry.BlockSize, totalBlocksForGeometry(geometry))
		return dev, true, err
	}
	dev, err = DevInit(path, geometry.BlockSize, totalBlocksForGeometry(geometry))
	return dev, false, err
}

// totalBlocksForGeometry computes how many blocks the image file must hold:
// superblock + bitmaps + inode table + the full data area.
func totalBlocksForGeometry(g Geometry) uint32 {
	layout := ComputeLayout(g)
	return layout.DStartBlock + g.MaxDataBlocks
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
