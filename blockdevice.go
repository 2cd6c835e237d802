package rufs

import (
	"fmt"
	"io"
	"os"
)

// BlockDevice is the block-level contract the core requires from the host:
// fixed-size block reads and writes against a seekable stream, per spec.md
// §6. The VFS/CLI layer is responsible for constructing one (via
// NewFileBlockDevice for a real disk image, or directly from an
// io.ReadWriteSeeker in tests).
type BlockDevice interface {
	ReadBlock(index uint32, out []byte) error
	WriteBlock(index uint32, in []byte) error
	BlockSize() uint32
	TotalBlocks() uint32
	Close() error
}

// FileBlockDevice implements BlockDevice over any io.ReadWriteSeeker, most
// commonly an *os.File opened on a disk image. Grounded on disko's
// drivers/common/blockdevice.go BlockDevice type: same seek-then-read/write
// shape and the same bounds-checking discipline, generalized to a single
// fixed BLOCK_SIZE instead of an arbitrary sector size.
type FileBlockDevice struct {
	stream      io.ReadWriteSeeker
	closer      io.Closer
	blockSize   uint32
	totalBlocks uint32
}

// NewFileBlockDevice wraps an already-open stream (a real file, or, in
// tests, a bytesextra.NewReadWriteSeeker-backed in-memory buffer).
func NewFileBlockDevice(stream io.ReadWriteSeeker, blockSize, totalBlocks uint32) *FileBlockDevice {
	dev := &FileBlockDevice{stream: stream, blockSize: blockSize, totalBlocks: totalBlocks}
	if closer, ok := stream.(io.Closer); ok {
		dev.closer = closer
	}
	return dev
}

// DevInit creates and zero-fills a new disk image file of the given
// capacity, per spec.md §6's dev_init contract.
func DevInit(path string, blockSize, totalBlocks uint32) (*FileBlockDevice, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, ErrIO.WrapError(err)
	}

	totalSize := int64(blockSize) * int64(totalBlocks)
	if err := f.Truncate(totalSize); err != nil {
		f.Close()
		return nil, ErrIO.WrapError(err)
	}

	return NewFileBlockDevice(f, blockSize, totalBlocks), nil
}

// DevOpen opens an existing disk image file, per spec.md §6's dev_open
// contract.
func DevOpen(path string, blockSize, totalBlocks uint32) (*FileBlockDevice, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0644)
	if err != nil {
		return nil, ErrIO.WrapError(err)
	}
	return NewFileBlockDevice(f, blockSize, totalBlocks), nil
}

func (dev *FileBlockDevice) BlockSize() uint32   { return dev.blockSize }
func (dev *FileBlockDevice) TotalBlocks() uint32 { return dev.totalBlocks }

func (dev *FileBlockDevice) checkBounds(index uint32) error {
	if index >= dev.totalBlocks {
		return NewDriverErrorWithMessage(
			ErrIO.Errno,
			fmt.Sprintf("block %d not in range [0, %d)", index, dev.totalBlocks),
		)
	}
	return nil
}

func (dev *FileBlockDevice) seekToBlock(index uint32) error {
	offset := int64(index) * int64(dev.blockSize)
	_, err := dev.stream.Seek(offset, io.SeekStart)
	return err
}

// ReadBlock reads exactly BlockSize() bytes from block index into out.
func (dev *FileBlockDevice) ReadBlock(index uint32, out []byte) error {
	if err := dev.checkBounds(index); err != nil {
		return err
	}
	if uint32(len(out)) != dev.blockSize {
		return NewDriverErrorWithMessage(ErrInvalid.Errno, "read_block buffer must be exactly BLOCK_SIZE")
	}
	if err := dev.seekToBlock(index); err != nil {
		return ErrIO.WrapError(err)
	}
	if _, err := io.ReadFull(dev.stream, out); err != nil {
		return ErrIO.WrapError(err)
	}
	return nil
}

// WriteBlock writes exactly BlockSize() bytes from in to block index.
func (dev *FileBlockDevice) WriteBlock(index uint32, in []byte) error {
	if err := dev.checkBounds(index); err != nil {
		return err
	}
	if uint32(len(in)) != dev.blockSize {
		return NewDriverErrorWithMessage(ErrInvalid.Errno, "write_block buffer must be exactly BLOCK_SIZE")
	}
	if err := dev.seekToBlock(index); err != nil {
		return ErrIO.WrapError(err)
	}
	if _, err := dev.stream.Write(in); err != nil {
		return ErrIO.WrapError(err)
	}
	return nil
}

// Close closes the underlying stream if it supports it, per spec.md §6's
// dev_close contract.
func (dev *FileBlockDevice) Close() error {
	if dev.closer == nil {
		return nil
	}
	return dev.closer.Close()
}
