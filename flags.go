package rufs

// File type/mode bits, kernel-style. Trimmed to the subset the core and the
// VFS glue actually use: spec.md only distinguishes directories from regular
// files, but permission bits are still needed to build st_mode for getattr.
const (
	sIXOTH = 1 << iota
	sIWOTH
	sIROTH
	sIXGRP
	sIWGRP
	sIRGRP
	sIXUSR
	sIWUSR
	sIRUSR
)

// IRWXU, IRWXG, IRWXO are the owner, group and other permission trios of
// the default 0755 mode reported by getattr (spec.md §6): IRWXU is rwx,
// while IRWXG and IRWXO carry only r-x.
const (
	IRWXU = sIXUSR | sIWUSR | sIRUSR
	IRWXG = sIXGRP | sIRGRP
	IRWXO = sIXOTH | sIROTH
)

// DefaultPermBits is the permission portion of st_mode reported for every
// file and directory, per spec.md §6 ("st_mode = type | 0755").
const DefaultPermBits = IRWXU | IRWXG | IRWXO

// InodeType distinguishes directory inodes from regular-file inodes. Values
// follow the kernel S_IFDIR/S_IFREG convention so they can be OR'd directly
// into a reported st_mode.
type InodeType uint16

const (
	// TypeRegular marks an inode as a regular file.
	TypeRegular InodeType = 0x8000 // S_IFREG
	// TypeDirectory marks an inode as a directory.
	TypeDirectory InodeType = 0x4000 // S_IFDIR
)

func (t InodeType) IsDirectory() bool { return t == TypeDirectory }
func (t InodeType) IsRegular() bool   { return t == TypeRegular }
