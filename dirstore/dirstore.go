// Package dirstore implements the directory store: dirent search and
// insertion over a directory inode's direct data blocks, per spec.md §4.4.
// Grounded on original_source/rufs.c's dir_find/dir_add, with the three
// bug fixes spec.md §9 calls for: null-terminated name comparison, an
// all-slots duplicate scan, and writing the inode back only when a new
// block was actually allocated.
package dirstore

import (
	"github.com/mkch-fs/rufs"
	"github.com/mkch-fs/rufs/alloc"
)

// Find searches dirIno's direct data blocks for a dirent named name,
// per spec.md §4.4 dir_find.
//
// Name comparison is exact: the query is compared against exactly
// name_len bytes of the stored name, and a stored name with a non-NUL
// byte at that position (i.e. a stored name longer than the query) is
// not a match. This resolves spec.md §9 open question 1 in favor of the
// null-terminated-copy draft.
func Find(fs *rufs.FS, dirIno uint32, name string) (rufs.Dirent, bool, error) {
	dir, err := fs.ReadInode(dirIno)
	if err != nil {
		return rufs.Dirent{}, false, err
	}

	block := make([]byte, fs.Superblock.BlockSize)
	direntsPerBlock := int(fs.Superblock.BlockSize) / rufs.DirentSize

	for j := uint16(0); j < dir.Size; j++ {
		ptr := dir.DirectPtr[j]
		if ptr == 0 {
			continue
		}
		if err := fs.Device.ReadBlock(ptr, block); err != nil {
			return rufs.Dirent{}, false, err
		}
		for slot := 0; slot < direntsPerBlock; slot++ {
			off := slot * rufs.DirentSize
			d, err := rufs.DecodeDirent(block[off : off+rufs.DirentSize])
			if err != nil {
				return rufs.Dirent{}, false, err
			}
			if d.Valid != 0 && d.NameString() == name {
				return d, true, nil
			}
		}
	}

	return rufs.Dirent{}, false, nil
}

// Add binds name to fIno within the directory identified by dirIno,
// following the four-step protocol of spec.md §4.4: duplicate check
// across all slots (valid or not, resolving §9 open question 2), then
// placement into an existing free slot, then directory growth by one
// block, then NOSPC once size reaches 16 with no free slot.
//
// dirInode is the caller's already-read copy of the directory inode; Add
// does not re-read it, and only calls fs.WriteInode when size
// or DirectPtr actually change, per spec.md §9's "mutable-by-value
// directory inode" note — in-place dirent slot updates never require
// rewriting the inode.
func Add(fs *rufs.FS, dirInode rufs.Inode, fIno uint32, name string) error {
	direntsPerBlock := int(fs.Superblock.BlockSize) / rufs.DirentSize
	block := make([]byte, fs.Superblock.BlockSize)

	// Step 1: duplicate check across every existing block, every slot.
	for j := uint16(0); j < dirInode.Size; j++ {
		ptr := dirInode.DirectPtr[j]
		if ptr == 0 {
			continue
		}
		if err := fs.Device.ReadBlock(ptr, block); err != nil {
			return err
		}
		for slot := 0; slot < direntsPerBlock; slot++ {
			off := slot * rufs.DirentSize
			d, err := rufs.DecodeDirent(block[off : off+rufs.DirentSize])
			if err != nil {
				return err
			}
			if d.NameString() == name {
				return rufs.ErrExists
			}
		}
	}

	newDirent, err := rufs.NewDirent(fIno, name)
	if err != nil {
		return err
	}

	// Step 2: placement into an existing block with a free slot.
	for j := uint16(0); j < dirInode.Size; j++ {
		ptr := dirInode.DirectPtr[j]
		if ptr == 0 {
			continue
		}
		if err := fs.Device.ReadBlock(ptr, block); err != nil {
			return err
		}
		for slot := 0; slot < direntsPerBlock; slot++ {
			off := slot * rufs.DirentSize
			d, err := rufs.DecodeDirent(block[off : off+rufs.DirentSize])
			if err != nil {
				return err
			}
			if d.Valid == 0 {
				copy(block[off:off+rufs.DirentSize], newDirent.Encode())
				return fs.Device.WriteBlock(ptr, block)
			}
		}
	}

	// Step 4: overflow.
	if dirInode.Size >= rufs.DirectPointerCount {
		return rufs.ErrNoSpace
	}

	// Step 3: grow the directory by one block.
	newBlockNum, err := alloc.AllocBlock(fs)
	if err != nil {
		return err
	}

	newBlock := make([]byte, fs.Superblock.BlockSize)
	copy(newBlock[0:rufs.DirentSize], newDirent.Encode())
	if err := fs.Device.WriteBlock(newBlockNum, newBlock); err != nil {
		return err
	}

	dirInode.DirectPtr[dirInode.Size] = newBlockNum
	dirInode.Size++

	return fs.WriteInode(dirInode.Ino, dirInode)
}

// Remove is reserved for future deletion support and is a no-op, per
// spec.md §4.4.
func Remove(fs *rufs.FS, dirInode rufs.Inode, name string) error {
	return nil
}
