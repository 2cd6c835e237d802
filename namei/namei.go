// Package namei implements the path resolver (namei): component-by-
// component descent from a starting inode to the inode a path names, per
// spec.md §4.5. Grounded on original_source/rufs.c's get_node_by_path
// (left as a stub there; this fills in the recursive algorithm spec.md
// §4.5 specifies) and disko's driver/driver.go path-normalization helpers.
// Components are split by hand with the strings package (one '/' at a
// time), not with the stdlib path package.
package namei

import (
	"strings"

	"github.com/mkch-fs/rufs"
	"github.com/mkch-fs/rufs/dirstore"
)

// Resolve walks path starting at startIno and returns the inode it names,
// per spec.md §4.5. It never mutates on-disk state.
func Resolve(fs *rufs.FS, path string, startIno uint32) (rufs.Inode, error) {
	if path == "/" || path == "" {
		return fs.ReadInode(startIno)
	}

	path = strings.TrimPrefix(path, "/")

	slash := strings.IndexByte(path, '/')
	var component, rest string
	if slash < 0 {
		component = path
	} else {
		component = path[:slash]
		rest = path[slash+1:]
	}

	current, err := fs.ReadInode(startIno)
	if err != nil {
		return rufs.Inode{}, err
	}

	if current.IsValid() && current.Type.IsRegular() {
		return current, nil
	}

	found, ok, err := dirstore.Find(fs, startIno, component)
	if err != nil {
		return rufs.Inode{}, err
	}
	if !ok {
		return rufs.Inode{}, rufs.ErrNotFound
	}

	if slash < 0 {
		return fs.ReadInode(found.Ino)
	}

	return Resolve(fs, rest, found.Ino)
}

// SplitParentAndName splits a path into the parent directory path and the
// final path component, for use by the mkdir/create glue at the VFS
// boundary (spec.md §6). Unlike C's dirname()/basename(), this never
// mutates its input and always returns a parent path usable with Resolve.
func SplitParentAndName(path string) (parent, name string) {
	trimmed := strings.TrimSuffix(path, "/")
	slash := strings.LastIndexByte(trimmed, '/')
	if slash < 0 {
		return "/", trimmed
	}
	if slash == 0 {
		return "/", trimmed[1:]
	}
	return trimmed[:slash], trimmed[slash+1:]
}
