package rufs

// Geometry describes the fixed, compile-time-derived layout of a disk image:
// block size and inode/data-block slot counts. Everything else in the
// on-disk layout (bitmap block numbers, inode table start, data area start)
// is computed from these three values.
type Geometry struct {
	Name        string
	Description string

	// BlockSize is the fixed byte size of every disk block.
	BlockSize uint32
	// MaxInodes is the total number of inode slots.
	MaxInodes uint32
	// MaxDataBlocks is the total number of data-block slots.
	MaxDataBlocks uint32
}

// DefaultGeometry is used when a caller doesn't specify a preset. It matches
// the fixed constants spec.md assumes throughout its examples.
var DefaultGeometry = Geometry{
	Name:          "default",
	Description:   "4 KiB blocks, 1024 inodes, 16384 data blocks",
	BlockSize:     4096,
	MaxInodes:     1024,
	MaxDataBlocks: 16384,
}

// InodeSize is the packed on-disk size of a single Inode record, in bytes:
// 4 (Ino) + 1 (Valid) + 1 (pad) + 2 (Size) + 2 (Type) + 1 (Link) + 1 (pad) +
// 16*4 (DirectPtr) + 8*4 (IndirectPtr) = 108 bytes.
const InodeSize = 108

// DirentNameCapacity is the fixed capacity, in bytes, of a Dirent's Name
// field, per spec.md §3.
const DirentNameCapacity = 208

// DirentSize is the packed on-disk size of a single Dirent record.
// 4 (Ino) + 1 (Valid) + DirentNameCapacity (Name) = 213 bytes.
const DirentSize = 4 + 1 + DirentNameCapacity

// DirectPointerCount is the number of direct data-block pointers an inode
// carries.
const DirectPointerCount = 16

// IndirectPointerCount is the number of indirect pointers an inode carries.
// Reserved; never populated or dereferenced by core operations.
const IndirectPointerCount = 8

// InodesPerBlock returns BLOCK_SIZE / sizeof(Inode) for this geometry.
func (g Geometry) InodesPerBlock() uint32 {
	return g.BlockSize / InodeSize
}

// DirentsPerBlock returns BLOCK_SIZE / sizeof(Dirent) for this geometry.
func (g Geometry) DirentsPerBlock() uint32 {
	return g.BlockSize / DirentSize
}

// inodeTableBlocks returns ceil(MaxInodes / InodesPerBlock()): the inode
// table stores whole inodes only, never one straddling two blocks, so when
// BLOCK_SIZE is not a multiple of sizeof(Inode) this is larger than
// ceil(MaxInodes * sizeof(Inode) / BLOCK_SIZE).
func (g Geometry) inodeTableBlocks() uint32 {
	perBlock := g.InodesPerBlock()
	return (g.MaxInodes + perBlock - 1) / perBlock
}

// Layout is the set of block-number offsets derived from a Geometry, i.e.
// the fields of the on-disk superblock beyond the raw counts.
type Layout struct {
	IBitmapBlock uint32
	DBitmapBlock uint32
	IStartBlock  uint32
	DStartBlock  uint32
}

// ComputeLayout derives the fixed block-number layout described in spec.md
// §3: block 0 is the superblock, block 1 the inode bitmap, block 2 the data
// bitmap, followed by the inode table, followed by the data area.
func ComputeLayout(g Geometry) Layout {
	l := Layout{
		IBitmapBlock: 1,
		DBitmapBlock: 2,
	}
	l.IStartBlock = l.DBitmapBlock + 1
	l.DStartBlock = l.IStartBlock + g.inodeTableBlocks()
	return l
}
