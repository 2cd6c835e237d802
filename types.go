package rufs

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/noxer/bytewriter"
)

// MagicNum is the fixed signature written to the superblock for integrity
// checking on mount.
const MagicNum uint32 = 0x5246 // "RF"

// Superblock is the block-0 record holding geometry and layout offsets, per
// spec.md §3.
type Superblock struct {
	MagicNum     uint32
	MaxInum      uint32
	MaxDnum      uint32
	IBitmapBlock uint32
	DBitmapBlock uint32
	IStartBlock  uint32
	DStartBlock  uint32
	BlockSize    uint32
}

// NewSuperblock builds the in-memory superblock for a geometry, per spec.md
// §3's derivation rules.
func NewSuperblock(g Geometry) Superblock {
	layout := ComputeLayout(g)
	return Superblock{
		MagicNum:     MagicNum,
		MaxInum:      g.MaxInodes,
		MaxDnum:      g.MaxDataBlocks,
		IBitmapBlock: layout.IBitmapBlock,
		DBitmapBlock: layout.DBitmapBlock,
		IStartBlock:  layout.IStartBlock,
		DStartBlock:  layout.DStartBlock,
		BlockSize:    g.BlockSize,
	}
}

// Geometry reconstructs the Geometry value this superblock was formatted
// with.
func (sb Superblock) Geometry() Geometry {
	return Geometry{
		Name:          "mounted",
		BlockSize:     sb.BlockSize,
		MaxInodes:     sb.MaxInum,
		MaxDataBlocks: sb.MaxDnum,
	}
}

// Encode packs the superblock into a BLOCK_SIZE buffer, zero-padded, ready
// for a single write_block call.
func (sb Superblock) Encode(blockSize uint32) []byte {
	buf := make([]byte, blockSize)
	w := bytewriter.New(buf)
	binary.Write(w, binary.LittleEndian, sb)
	return buf
}

// DecodeSuperblock unpacks a superblock from a block-sized buffer.
func DecodeSuperblock(buf []byte) (Superblock, error) {
	var sb Superblock
	r := bytes.NewReader(buf)
	if err := binary.Read(r, binary.LittleEndian, &sb); err != nil {
		return Superblock{}, fmt.Errorf("decode superblock: %w", err)
	}
	if sb.MagicNum != MagicNum {
		return Superblock{}, NewDriverErrorWithMessage(ErrInvalid.Errno, "bad superblock magic number")
	}
	return sb, nil
}

// Inode is the packed on-disk inode record, per spec.md §3.
type Inode struct {
	Ino         uint32
	Valid       uint8
	_           [1]byte // alignment padding, never interpreted
	Size        uint16
	Type        InodeType
	Link        uint8
	_           [1]byte // alignment padding, never interpreted
	DirectPtr   [DirectPointerCount]uint32
	IndirectPtr [IndirectPointerCount]uint32 // reserved; always zero in core
}

// IsValid reports whether this inode slot is occupied, per invariant 1 in
// spec.md §3.
func (i Inode) IsValid() bool { return i.Valid != 0 }

// Encode packs the inode into its fixed-size on-disk representation.
func (i Inode) Encode() []byte {
	buf := make([]byte, InodeSize)
	w := bytewriter.New(buf)
	binary.Write(w, binary.LittleEndian, i)
	return buf
}

// DecodeInode unpacks an inode from its fixed-size on-disk representation.
func DecodeInode(buf []byte) (Inode, error) {
	var in Inode
	r := bytes.NewReader(buf)
	if err := binary.Read(r, binary.LittleEndian, &in); err != nil {
		return Inode{}, fmt.Errorf("decode inode: %w", err)
	}
	return in, nil
}

// Dirent is a directory entry binding a name to an inode number, per
// spec.md §3.
type Dirent struct {
	Ino   uint32
	Valid uint8
	Name  [DirentNameCapacity]byte
}

// NameString returns the dirent's name as a Go string, trimmed at the first
// NUL byte.
func (d Dirent) NameString() string {
	n := bytes.IndexByte(d.Name[:], 0)
	if n < 0 {
		n = len(d.Name)
	}
	return string(d.Name[:n])
}

// NewDirent builds a Dirent for the given inode number and name. name must
// fit (with a trailing NUL) in DirentNameCapacity bytes.
func NewDirent(ino uint32, name string) (Dirent, error) {
	if len(name)+1 > DirentNameCapacity {
		return Dirent{}, NewDriverErrorWithMessage(ErrInvalid.Errno, fmt.Sprintf("name %q too long", name))
	}
	var d Dirent
	d.Ino = ino
	d.Valid = 1
	copy(d.Name[:], name)
	return d, nil
}

// Encode packs the dirent into its fixed-size on-disk representation.
func (d Dirent) Encode() []byte {
	buf := make([]byte, DirentSize)
	w := bytewriter.New(buf)
	binary.Write(w, binary.LittleEndian, d)
	return buf
}

// DecodeDirent unpacks a dirent from its fixed-size on-disk representation.
func DecodeDirent(buf []byte) (Dirent, error) {
	var d Dirent
	r := bytes.NewReader(buf)
	if err := binary.Read(r, binary.LittleEndian, &d); err != nil {
		return Dirent{}, fmt.Errorf("decode dirent: %w", err)
	}
	return d, nil
}
