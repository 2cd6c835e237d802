// Package driver implements the VFS operation contract spec.md §6
// describes: the thin layer a host kernel bridge calls into, which
// resolves a path and then invokes the core's directory-store or
// file-I/O primitives before writing back inode state.
//
// Grounded on disko's driver/driver.go BaseDriver (method-per-operation
// shape, mutable mount state held as ordinary struct fields) — generalized
// from disko's pluggable-implementation abstraction (BaseDriver wraps an
// arbitrary disko.FileSystemImplementer) down to the one concrete engine
// this repo implements, since spec.md names exactly one on-disk format.
package driver

import (
	"os"
	"sync"
	"time"

	"github.com/mkch-fs/rufs"
	"github.com/mkch-fs/rufs/alloc"
	"github.com/mkch-fs/rufs/dirstore"
	"github.com/mkch-fs/rufs/fileio"
	"github.com/mkch-fs/rufs/namei"
)

// FS is the VFS-facing adapter around a mounted rufs.FS. Per spec.md §5,
// the core engine itself is lock-free and single-threaded; the mutex here
// is the "hardening requirement for production use" the spec calls for if
// a host dispatches FUSE callbacks concurrently. It guards exactly one
// top-level operation at a time.
type FS struct {
	mu   sync.Mutex
	core *rufs.FS
}

// New wraps an already-mounted rufs.FS.
func New(core *rufs.FS) *FS {
	return &FS{core: core}
}

// Stat is the subset of POSIX stat(2) fields spec.md §6's getattr fills in.
type Stat struct {
	Ino     uint64
	Size    int64
	Uid     uint32
	Gid     uint32
	Mode    uint32
	Nlink   uint32
	ModTime time.Time
}

// Getattr resolves path and fills a Stat from the inode, per spec.md §6.
func (fs *FS) Getattr(path string) (Stat, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	inode, err := namei.Resolve(fs.core, path, 0)
	if err != nil {
		return Stat{}, err
	}

	nlink := uint32(1)
	if inode.Type.IsDirectory() {
		nlink = 2
	}

	return Stat{
		Ino:     uint64(inode.Ino),
		Size:    int64(inode.Size) * int64(fs.core.Superblock.BlockSize),
		Uid:     uint32(os.Getuid()),
		Gid:     uint32(os.Getgid()),
		Mode:    uint32(inode.Type) | rufs.DefaultPermBits,
		Nlink:   nlink,
		ModTime: time.Now(),
	}, nil
}

// Opendir succeeds iff path resolves, per spec.md §6.
func (fs *FS) Opendir(path string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	_, err := namei.Resolve(fs.core, path, 0)
	return err
}

// Readdir resolves path and calls emit once per valid dirent name found in
// its direct blocks, per spec.md §6.
func (fs *FS) Readdir(path string, emit func(name string)) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	inode, err := namei.Resolve(fs.core, path, 0)
	if err != nil {
		return err
	}

	blockSize := fs.core.Superblock.BlockSize
	direntsPerBlock := int(blockSize) / rufs.DirentSize
	block := make([]byte, blockSize)

	for j := uint16(0); j < inode.Size; j++ {
		ptr := inode.DirectPtr[j]
		if ptr == 0 {
			continue
		}
		if err := fs.core.Device.ReadBlock(ptr, block); err != nil {
			return err
		}
		for slot := 0; slot < direntsPerBlock; slot++ {
			off := slot * rufs.DirentSize
			d, err := rufs.DecodeDirent(block[off : off+rufs.DirentSize])
			if err != nil {
				return err
			}
			if d.Valid != 0 {
				emit(d.NameString())
			}
		}
	}

	return nil
}

// Mkdir splits path into parent and name, resolves the parent, allocates a
// new inode, adds the directory entry, and writes the new directory
// inode, per spec.md §6.
func (fs *FS) Mkdir(path string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	return fs.createNode(path, rufs.TypeDirectory, 2)
}

// Create is Mkdir's twin for regular files, per spec.md §6.
func (fs *FS) Create(path string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	return fs.createNode(path, rufs.TypeRegular, 1)
}

func (fs *FS) createNode(path string, nodeType rufs.InodeType, link uint8) error {
	parentPath, name := namei.SplitParentAndName(path)

	parent, err := namei.Resolve(fs.core, parentPath, 0)
	if err != nil {
		return err
	}

	newIno, err := alloc.AllocInode(fs.core)
	if err != nil {
		return err
	}

	if err := dirstore.Add(fs.core, parent, newIno, name); err != nil {
		return err
	}

	newInode := rufs.Inode{
		Ino:   newIno,
		Valid: 1,
		Size:  0,
		Type:  nodeType,
		Link:  link,
	}
	return fs.core.WriteInode(newIno, newInode)
}

// Open succeeds iff path resolves, per spec.md §6.
func (fs *FS) Open(path string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	_, err := namei.Resolve(fs.core, path, 0)
	return err
}

// Read implements spec.md §4.8/§6.
func (fs *FS) Read(path string, size uint32, offset uint32) ([]byte, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	return fileio.Read(fs.core, path, size, offset)
}

// Write implements spec.md §4.9/§6.
func (fs *FS) Write(path string, data []byte, offset uint32) (uint32, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	return fileio.Write(fs.core, path, data, uint32(len(data)), offset)
}

// The following are explicit non-goals per spec.md §1/§6: they accept and
// return success without doing anything.

func (fs *FS) Rmdir(path string) error                         { return nil }
func (fs *FS) Unlink(path string) error                         { return nil }
func (fs *FS) Truncate(path string, size int64) error           { return nil }
func (fs *FS) Flush(path string) error                          { return nil }
func (fs *FS) Utimens(path string, atime, mtime time.Time) error { return nil }
func (fs *FS) Release(path string) error                        { return nil }
func (fs *FS) Releasedir(path string) error                     { return nil }
