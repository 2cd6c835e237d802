package main

import (
	"context"
	"path"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/mkch-fs/rufs"
	rufsdriver "github.com/mkch-fs/rufs/driver"
)

// rufsNode is the go-fuse v2 node adapter over driver.FS. It is the "host
// kernel bridge" spec.md §1 calls an external collaborator: it translates
// FUSE callbacks into calls against the path-based VFS contract exposed by
// rufsdriver.FS, and nothing here participates in the on-disk invariants
// directly. Adopted from the KarpelesLab-squashfs example's use of
// github.com/hanwen/go-fuse/v2, the only FUSE binding present anywhere in
// the reference corpus.
type rufsNode struct {
	fs.Inode

	path string
	vfs  *rufsdriver.FS
}

var (
	_ fs.NodeGetattrer = (*rufsNode)(nil)
	_ fs.NodeLookuper  = (*rufsNode)(nil)
	_ fs.NodeReaddirer = (*rufsNode)(nil)
	_ fs.NodeMkdirer   = (*rufsNode)(nil)
	_ fs.NodeCreater   = (*rufsNode)(nil)
	_ fs.NodeOpener    = (*rufsNode)(nil)
	_ fs.NodeReader    = (*rufsNode)(nil)
	_ fs.NodeWriter    = (*rufsNode)(nil)
)

func childPath(parent, name string) string {
	if parent == "/" {
		return "/" + name
	}
	return path.Join(parent, name)
}

func fillAttr(out *fuse.Attr, st rufsdriver.Stat) {
	out.Ino = st.Ino
	out.Size = uint64(st.Size)
	out.Mode = st.Mode
	out.Nlink = st.Nlink
	out.Uid = st.Uid
	out.Gid = st.Gid
	out.SetTimes(&st.ModTime, &st.ModTime, &st.ModTime)
}

func (n *rufsNode) Getattr(ctx context.Context, f fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	st, err := n.vfs.Getattr(n.path)
	if err != nil {
		return errnoOf(err)
	}
	fillAttr(&out.Attr, st)
	return 0
}

func (n *rufsNode) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	childP := childPath(n.path, name)
	st, err := n.vfs.Getattr(childP)
	if err != nil {
		return nil, errnoOf(err)
	}

	fillAttr(&out.Attr, st)
	child := &rufsNode{path: childP, vfs: n.vfs}
	stable := fs.StableAttr{Mode: st.Mode & syscall.S_IFMT, Ino: st.Ino}
	return n.NewInode(ctx, child, stable), 0
}

func (n *rufsNode) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	var entries []fuse.DirEntry
	err := n.vfs.Readdir(n.path, func(name string) {
		entries = append(entries, fuse.DirEntry{Name: name})
	})
	if err != nil {
		return nil, errnoOf(err)
	}
	return fs.NewListDirStream(entries), 0
}

func (n *rufsNode) Mkdir(ctx context.Context, name string, mode uint32, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	childP := childPath(n.path, name)
	if err := n.vfs.Mkdir(childP); err != nil {
		return nil, errnoOf(err)
	}

	st, err := n.vfs.Getattr(childP)
	if err != nil {
		return nil, errnoOf(err)
	}
	fillAttr(&out.Attr, st)
	child := &rufsNode{path: childP, vfs: n.vfs}
	return n.NewInode(ctx, child, fs.StableAttr{Mode: syscall.S_IFDIR, Ino: st.Ino}), 0
}

func (n *rufsNode) Create(
	ctx context.Context, name string, flags uint32, mode uint32, out *fuse.EntryOut,
) (*fs.Inode, fs.FileHandle, uint32, syscall.Errno) {
	childP := childPath(n.path, name)
	if err := n.vfs.Create(childP); err != nil {
		return nil, nil, 0, errnoOf(err)
	}

	st, err := n.vfs.Getattr(childP)
	if err != nil {
		return nil, nil, 0, errnoOf(err)
	}
	fillAttr(&out.Attr, st)
	child := &rufsNode{path: childP, vfs: n.vfs}
	inode := n.NewInode(ctx, child, fs.StableAttr{Mode: syscall.S_IFREG, Ino: st.Ino})
	return inode, nil, 0, 0
}

func (n *rufsNode) Open(ctx context.Context, flags uint32) (fs.FileHandle, uint32, syscall.Errno) {
	if err := n.vfs.Open(n.path); err != nil {
		return nil, 0, errnoOf(err)
	}
	return nil, 0, 0
}

func (n *rufsNode) Read(ctx context.Context, f fs.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	data, err := n.vfs.Read(n.path, uint32(len(dest)), uint32(off))
	if err != nil {
		return nil, errnoOf(err)
	}
	return fuse.ReadResultData(data), 0
}

func (n *rufsNode) Write(ctx context.Context, f fs.FileHandle, data []byte, off int64) (uint32, syscall.Errno) {
	written, err := n.vfs.Write(n.path, data, uint32(off))
	if err != nil {
		return written, errnoOf(err)
	}
	return written, 0
}

func errnoOf(err error) syscall.Errno {
	if de, ok := err.(*rufs.DriverError); ok {
		return de.Errno
	}
	return syscall.EIO
}

func runFuseServer(core *rufs.FS, mountPoint string) error {
	vfs := rufsdriver.New(core)
	root := &rufsNode{path: "/", vfs: vfs}

	server, err := fs.Mount(mountPoint, root, &fs.Options{
		MountOptions: fuse.MountOptions{FsName: "rufs"},
	})
	if err != nil {
		return err
	}

	server.Wait()
	return nil
}
