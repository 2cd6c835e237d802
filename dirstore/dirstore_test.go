package dirstore_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkch-fs/rufs"
	"github.com/mkch-fs/rufs/alloc"
	"github.com/mkch-fs/rufs/dirstore"
	"github.com/mkch-fs/rufs/rtesting"
)

func TestAddThenFind(t *testing.T) {
	fs := rtesting.NewMountedFS(t, rtesting.SmallGeometry)
	root, err := fs.ReadInode(0)
	require.NoError(t, err)

	ino, err := alloc.AllocInode(fs)
	require.NoError(t, err)
	require.NoError(t, dirstore.Add(fs, root, ino, "hello.txt"))

	root, err = fs.ReadInode(0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, root.Size)

	d, ok, err := dirstore.Find(fs, 0, "hello.txt")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, ino, d.Ino)
}

func TestFindMissingReturnsFalse(t *testing.T) {
	fs := rtesting.NewMountedFS(t, rtesting.SmallGeometry)

	_, ok, err := dirstore.Find(fs, 0, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAddRejectsDuplicateName(t *testing.T) {
	fs := rtesting.NewMountedFS(t, rtesting.SmallGeometry)
	root, err := fs.ReadInode(0)
	require.NoError(t, err)

	ino1, err := alloc.AllocInode(fs)
	require.NoError(t, err)
	require.NoError(t, dirstore.Add(fs, root, ino1, "dup"))

	root, err = fs.ReadInode(0)
	require.NoError(t, err)

	ino2, err := alloc.AllocInode(fs)
	require.NoError(t, err)
	err = dirstore.Add(fs, root, ino2, "dup")
	assert.ErrorIs(t, err, rufs.ErrExists)
}

func TestAddGrowsDirectoryPastOneBlock(t *testing.T) {
	fs := rtesting.NewMountedFS(t, rtesting.SmallGeometry)
	direntsPerBlock := int(rtesting.SmallGeometry.BlockSize) / rufs.DirentSize

	root, err := fs.ReadInode(0)
	require.NoError(t, err)

	for i := 0; i < direntsPerBlock+1; i++ {
		ino, err := alloc.AllocInode(fs)
		require.NoError(t, err)

		name := fmt.Sprintf("f%d", i)
		require.NoError(t, dirstore.Add(fs, root, ino, name))

		root, err = fs.ReadInode(0)
		require.NoError(t, err)
	}

	assert.EqualValues(t, 2, root.Size)
	assert.NotZero(t, root.DirectPtr[0])
	assert.NotZero(t, root.DirectPtr[1])

	// Every inserted name must still be findable after the growth.
	for i := 0; i < direntsPerBlock+1; i++ {
		name := fmt.Sprintf("f%d", i)
		_, ok, err := dirstore.Find(fs, 0, name)
		require.NoError(t, err)
		assert.Truef(t, ok, "expected %q to be found after directory growth", name)
	}
}

func TestAddFailsWithNoSpaceWhenAllDirectSlotsFull(t *testing.T) {
	// Needs strictly more free inodes than direntsPerBlock*DirectPointerCount
	// (the root inode itself consumes one slot), so this can't reuse
	// rtesting.SmallGeometry as-is.
	geometry := rtesting.SmallGeometry
	geometry.MaxInodes = 64

	fs := rtesting.NewMountedFS(t, geometry)
	direntsPerBlock := int(geometry.BlockSize) / rufs.DirentSize

	root, err := fs.ReadInode(0)
	require.NoError(t, err)

	total := direntsPerBlock * rufs.DirectPointerCount
	for i := 0; i < total; i++ {
		ino, err := alloc.AllocInode(fs)
		require.NoError(t, err)
		require.NoError(t, dirstore.Add(fs, root, ino, fmt.Sprintf("f%d", i)))
		root, err = fs.ReadInode(0)
		require.NoError(t, err)
	}

	assert.EqualValues(t, rufs.DirectPointerCount, root.Size)

	ino, err := alloc.AllocInode(fs)
	require.NoError(t, err)
	err = dirstore.Add(fs, root, ino, "overflow")
	assert.ErrorIs(t, err, rufs.ErrNoSpace)
}
