package rufs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkch-fs/rufs"
)

func TestInodeRoundTrip(t *testing.T) {
	in := rufs.Inode{
		Ino:   7,
		Valid: 1,
		Size:  3,
		Type:  rufs.TypeDirectory,
		Link:  2,
	}
	in.DirectPtr[0] = 10
	in.DirectPtr[1] = 11
	in.DirectPtr[2] = 12

	encoded := in.Encode()
	assert.Len(t, encoded, rufs.InodeSize)

	decoded, err := rufs.DecodeInode(encoded)
	require.NoError(t, err)
	assert.Equal(t, in, decoded)
}

func TestDirentRoundTrip(t *testing.T) {
	d, err := rufs.NewDirent(42, "hello.txt")
	require.NoError(t, err)

	encoded := d.Encode()
	assert.Len(t, encoded, rufs.DirentSize)

	decoded, err := rufs.DecodeDirent(encoded)
	require.NoError(t, err)
	assert.Equal(t, uint32(42), decoded.Ino)
	assert.Equal(t, uint8(1), decoded.Valid)
	assert.Equal(t, "hello.txt", decoded.NameString())
}

func TestNewDirentRejectsOverlongName(t *testing.T) {
	longName := make([]byte, rufs.DirentNameCapacity)
	for i := range longName {
		longName[i] = 'a'
	}
	_, err := rufs.NewDirent(1, string(longName))
	assert.Error(t, err)
}

func TestSuperblockRoundTrip(t *testing.T) {
	sb := rufs.NewSuperblock(rufs.DefaultGeometry)
	encoded := sb.Encode(rufs.DefaultGeometry.BlockSize)
	assert.Len(t, encoded, int(rufs.DefaultGeometry.BlockSize))

	decoded, err := rufs.DecodeSuperblock(encoded)
	require.NoError(t, err)
	assert.Equal(t, sb, decoded)
}

func TestDecodeSuperblockRejectsBadMagic(t *testing.T) {
	buf := make([]byte, rufs.DefaultGeometry.BlockSize)
	_, err := rufs.DecodeSuperblock(buf)
	assert.Error(t, err)
}

func TestComputeLayout(t *testing.T) {
	layout := rufs.ComputeLayout(rufs.DefaultGeometry)
	assert.Equal(t, uint32(1), layout.IBitmapBlock)
	assert.Equal(t, uint32(2), layout.DBitmapBlock)
	assert.Equal(t, uint32(3), layout.IStartBlock)
	assert.Greater(t, layout.DStartBlock, layout.IStartBlock)
}
