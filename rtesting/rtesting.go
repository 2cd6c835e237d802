// Package rtesting holds shared test helpers for building an in-memory
// mounted filesystem, modeled on disko's testing package
// (testing/images.go, testing/blockcache.go): use
// bytesextra.NewReadWriteSeeker over a plain []byte instead of a real
// disk image so tests never touch the filesystem.
package rtesting

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/bytesextra"

	"github.com/mkch-fs/rufs"
)

// SmallGeometry is a small-but-non-trivial geometry cheap enough to run
// full directory-growth and allocator-exhaustion tests against.
var SmallGeometry = rufs.Geometry{
	Name:          "test",
	BlockSize:     512,
	MaxInodes:     32,
	MaxDataBlocks: 64,
}

// NewMountedFS formats a fresh in-memory image with the given geometry and
// returns the mounted FS. The test fails immediately on any error.
func NewMountedFS(t *testing.T, geometry rufs.Geometry) *rufs.FS {
	t.Helper()

	layout := rufs.ComputeLayout(geometry)
	totalBlocks := layout.DStartBlock + geometry.MaxDataBlocks
	backing := make([]byte, uint64(geometry.BlockSize)*uint64(totalBlocks))

	stream := bytesextra.NewReadWriteSeeker(backing)
	dev := rufs.NewFileBlockDevice(stream, geometry.BlockSize, totalBlocks)

	require.NoError(t, rufs.Mkfs(dev, geometry))

	sbBuf := make([]byte, geometry.BlockSize)
	require.NoError(t, dev.ReadBlock(0, sbBuf))
	sb, err := rufs.DecodeSuperblock(sbBuf)
	require.NoError(t, err)

	return &rufs.FS{Device: dev, Superblock: sb}
}
