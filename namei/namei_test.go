package namei_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkch-fs/rufs"
	"github.com/mkch-fs/rufs/alloc"
	"github.com/mkch-fs/rufs/dirstore"
	"github.com/mkch-fs/rufs/namei"
	"github.com/mkch-fs/rufs/rtesting"
)

func mkdir(t *testing.T, fs *rufs.FS, parentIno uint32, name string) uint32 {
	t.Helper()
	parent, err := fs.ReadInode(parentIno)
	require.NoError(t, err)

	ino, err := alloc.AllocInode(fs)
	require.NoError(t, err)

	require.NoError(t, dirstore.Add(fs, parent, ino, name))

	require.NoError(t, fs.WriteInode(ino, rufs.Inode{
		Ino: ino, Valid: 1, Type: rufs.TypeDirectory, Link: 2,
	}))
	return ino
}

func TestResolveRoot(t *testing.T) {
	fs := rtesting.NewMountedFS(t, rtesting.SmallGeometry)

	inode, err := namei.Resolve(fs, "/", 0)
	require.NoError(t, err)
	assert.EqualValues(t, 0, inode.Ino)
	assert.True(t, inode.Type.IsDirectory())
}

func TestResolveNestedPath(t *testing.T) {
	fs := rtesting.NewMountedFS(t, rtesting.SmallGeometry)

	aIno := mkdir(t, fs, 0, "a")
	bIno := mkdir(t, fs, aIno, "b")

	inode, err := namei.Resolve(fs, "/a/b", 0)
	require.NoError(t, err)
	assert.Equal(t, bIno, inode.Ino)
}

func TestResolveMissingComponent(t *testing.T) {
	fs := rtesting.NewMountedFS(t, rtesting.SmallGeometry)

	_, err := namei.Resolve(fs, "/nope", 0)
	assert.ErrorIs(t, err, rufs.ErrNotFound)
}

func TestResolveMissingIntermediateComponent(t *testing.T) {
	fs := rtesting.NewMountedFS(t, rtesting.SmallGeometry)
	mkdir(t, fs, 0, "a")

	_, err := namei.Resolve(fs, "/a/missing/deeper", 0)
	assert.ErrorIs(t, err, rufs.ErrNotFound)
}

func TestSplitParentAndName(t *testing.T) {
	cases := []struct {
		path, parent, name string
	}{
		{"/foo", "/", "foo"},
		{"/a/b", "/a", "b"},
		{"/a/b/c", "/a/b", "c"},
		{"/a/b/", "/a", "b"},
	}
	for _, c := range cases {
		parent, name := namei.SplitParentAndName(c.path)
		assert.Equal(t, c.parent, parent, c.path)
		assert.Equal(t, c.name, name, c.path)
	}
}
