package fileio_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkch-fs/rufs"
	"github.com/mkch-fs/rufs/alloc"
	"github.com/mkch-fs/rufs/dirstore"
	"github.com/mkch-fs/rufs/fileio"
	"github.com/mkch-fs/rufs/fsck"
	"github.com/mkch-fs/rufs/rtesting"
)

func createFile(t *testing.T, fs *rufs.FS, name string) uint32 {
	t.Helper()
	root, err := fs.ReadInode(0)
	require.NoError(t, err)

	ino, err := alloc.AllocInode(fs)
	require.NoError(t, err)
	require.NoError(t, dirstore.Add(fs, root, ino, name))
	require.NoError(t, fs.WriteInode(ino, rufs.Inode{
		Ino: ino, Valid: 1, Type: rufs.TypeRegular, Link: 1,
	}))
	return ino
}

func TestWriteReadRoundTripWithinOneBlock(t *testing.T) {
	fs := rtesting.NewMountedFS(t, rtesting.SmallGeometry)
	createFile(t, fs, "a.txt")

	data := []byte("hello, rufs")
	n, err := fileio.Write(fs, "/a.txt", data, uint32(len(data)), 0)
	require.NoError(t, err)
	assert.EqualValues(t, len(data), n)

	out, err := fileio.Read(fs, "/a.txt", uint32(len(data)), 0)
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestWriteReadRoundTripAcrossManyBlocks(t *testing.T) {
	fs := rtesting.NewMountedFS(t, rtesting.SmallGeometry)
	createFile(t, fs, "big.bin")

	blockSize := rtesting.SmallGeometry.BlockSize
	total := blockSize * rufs.DirectPointerCount
	data := bytes.Repeat([]byte{0xAB}, int(total))

	n, err := fileio.Write(fs, "/big.bin", data, uint32(len(data)), 0)
	require.NoError(t, err)
	assert.EqualValues(t, len(data), n)

	out, err := fileio.Read(fs, "/big.bin", uint32(len(data)), 0)
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestWriteBeyondDirectPointersReturnsFileTooBig(t *testing.T) {
	fs := rtesting.NewMountedFS(t, rtesting.SmallGeometry)
	createFile(t, fs, "toobig.bin")

	blockSize := rtesting.SmallGeometry.BlockSize
	offset := blockSize * rufs.DirectPointerCount
	_, err := fileio.Write(fs, "/toobig.bin", []byte("x"), 1, offset)
	assert.ErrorIs(t, err, rufs.ErrFileTooBig)
}

func TestReadBeyondEndOfFileReturnsEmpty(t *testing.T) {
	fs := rtesting.NewMountedFS(t, rtesting.SmallGeometry)
	createFile(t, fs, "empty.txt")

	out, err := fileio.Read(fs, "/empty.txt", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestPartialOverwritePreservesNeighboringBytes(t *testing.T) {
	fs := rtesting.NewMountedFS(t, rtesting.SmallGeometry)
	createFile(t, fs, "patch.txt")

	original := bytes.Repeat([]byte{'x'}, 20)
	_, err := fileio.Write(fs, "/patch.txt", original, uint32(len(original)), 0)
	require.NoError(t, err)

	patch := []byte("YYY")
	_, err = fileio.Write(fs, "/patch.txt", patch, uint32(len(patch)), 5)
	require.NoError(t, err)

	out, err := fileio.Read(fs, "/patch.txt", uint32(len(original)), 0)
	require.NoError(t, err)

	expected := append([]byte{}, original...)
	copy(expected[5:8], patch)
	assert.Equal(t, expected, out)
}

func TestPartialWriteAllocatesBlockInsteadOfCorruptingSuperblock(t *testing.T) {
	fs := rtesting.NewMountedFS(t, rtesting.SmallGeometry)
	ino := createFile(t, fs, "partial.txt")

	data := []byte("hi")
	_, err := fileio.Write(fs, "/partial.txt", data, uint32(len(data)), 0)
	require.NoError(t, err)

	inode, err := fs.ReadInode(ino)
	require.NoError(t, err)
	require.NotZero(t, inode.DirectPtr[0], "a partial write below one block must still allocate direct_ptr[0]")

	sbBuf := make([]byte, fs.Superblock.BlockSize)
	require.NoError(t, fs.Device.ReadBlock(0, sbBuf))
	sb, err := rufs.DecodeSuperblock(sbBuf)
	require.NoError(t, err, "superblock must survive a partial write unaltered")
	assert.Equal(t, fs.Superblock, sb)

	require.NoError(t, fsck.Check(fs))
}

func TestSparseWriteMaterializesHoleBlocks(t *testing.T) {
	fs := rtesting.NewMountedFS(t, rtesting.SmallGeometry)
	ino := createFile(t, fs, "sparse.bin")

	blockSize := rtesting.SmallGeometry.BlockSize
	data := []byte("tail")
	offset := blockSize * 3
	_, err := fileio.Write(fs, "/sparse.bin", data, uint32(len(data)), offset)
	require.NoError(t, err)

	inode, err := fs.ReadInode(ino)
	require.NoError(t, err)
	require.EqualValues(t, 4, inode.Size)
	for j := uint16(0); j < inode.Size; j++ {
		assert.NotZerof(t, inode.DirectPtr[j], "direct_ptr[%d] must be materialized for j < size", j)
	}

	hole, err := fileio.Read(fs, "/sparse.bin", blockSize, 0)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, blockSize), hole, "skipped blocks must read back as zeroes")

	require.NoError(t, fsck.Check(fs))
}

func TestFullBlockAlignedRewriteReusesSameBlock(t *testing.T) {
	fs := rtesting.NewMountedFS(t, rtesting.SmallGeometry)
	ino := createFile(t, fs, "reuse.bin")

	blockSize := rtesting.SmallGeometry.BlockSize
	first := bytes.Repeat([]byte{0x01}, int(blockSize))
	_, err := fileio.Write(fs, "/reuse.bin", first, blockSize, 0)
	require.NoError(t, err)

	inode, err := fs.ReadInode(ino)
	require.NoError(t, err)
	firstPtr := inode.DirectPtr[0]

	second := bytes.Repeat([]byte{0x02}, int(blockSize))
	_, err = fileio.Write(fs, "/reuse.bin", second, blockSize, 0)
	require.NoError(t, err)

	inode, err = fs.ReadInode(ino)
	require.NoError(t, err)
	assert.Equal(t, firstPtr, inode.DirectPtr[0])

	out, err := fileio.Read(fs, "/reuse.bin", blockSize, 0)
	require.NoError(t, err)
	assert.Equal(t, second, out)
}
