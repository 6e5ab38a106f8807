package ecs150fs

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// BlockSize is the fixed size, in bytes, of every block transferred
// to or from a BlockDevice.
const BlockSize = 4096

// BlockDevice is the narrow contract the core requires of the disk: a
// fixed number of fixed-size blocks, read and written whole. Tests
// substitute MemBlockDevice; production code uses FileBlockDevice.
type BlockDevice interface {
	// ReadBlock reads exactly BlockSize bytes into dst from block index i.
	ReadBlock(i int, dst []byte) error
	// WriteBlock writes exactly BlockSize bytes from src to block index i.
	WriteBlock(i int, src []byte) error
	// BlockCount returns the total number of addressable blocks.
	BlockCount() int
}

var errBlockRange = errors.New("ecs150fs: block index out of range")
var errBlockSize = errors.New("ecs150fs: buffer is not exactly one block")

// MemBlockDevice is a BlockDevice backed entirely by memory: a flat
// byte slice sized to blockCount*BlockSize. It is the workhorse test
// fixture, substituting for a real disk in tests that need a fast,
// disposable device.
type MemBlockDevice struct {
	buf []byte
}

// NewMemBlockDevice allocates a zeroed in-memory device of blockCount blocks.
func NewMemBlockDevice(blockCount int) *MemBlockDevice {
	return &MemBlockDevice{buf: make([]byte, blockCount*BlockSize)}
}

func (m *MemBlockDevice) ReadBlock(i int, dst []byte) error {
	if len(dst) != BlockSize {
		return errBlockSize
	}
	if i < 0 || i >= m.BlockCount() {
		return errBlockRange
	}
	copy(dst, m.buf[i*BlockSize:(i+1)*BlockSize])
	return nil
}

func (m *MemBlockDevice) WriteBlock(i int, src []byte) error {
	if len(src) != BlockSize {
		return errBlockSize
	}
	if i < 0 || i >= m.BlockCount() {
		return errBlockRange
	}
	copy(m.buf[i*BlockSize:(i+1)*BlockSize], src)
	return nil
}

func (m *MemBlockDevice) BlockCount() int {
	return len(m.buf) / BlockSize
}

// FileBlockDevice is a BlockDevice backed by a regular file, used to
// host a disk image on the host file system.
type FileBlockDevice struct {
	f      *os.File
	blocks int
}

// OpenFileBlockDevice opens an existing disk-image file of exactly
// blockCount*BlockSize bytes.
func OpenFileBlockDevice(name string, blockCount int) (*FileBlockDevice, error) {
	f, err := os.OpenFile(name, os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.Size() != int64(blockCount)*BlockSize {
		f.Close()
		return nil, errors.New("ecs150fs: disk image size does not match block count")
	}
	return &FileBlockDevice{f: f, blocks: blockCount}, nil
}

// CreateFileBlockDevice creates a new zero-filled disk-image file of
// blockCount blocks.
func CreateFileBlockDevice(name string, blockCount int) (*FileBlockDevice, error) {
	f, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	if err := f.Truncate(int64(blockCount) * BlockSize); err != nil {
		f.Close()
		return nil, err
	}
	return &FileBlockDevice{f: f, blocks: blockCount}, nil
}

func (d *FileBlockDevice) ReadBlock(i int, dst []byte) error {
	if len(dst) != BlockSize {
		return errBlockSize
	}
	if i < 0 || i >= d.blocks {
		return errBlockRange
	}
	_, err := d.f.ReadAt(dst, int64(i)*BlockSize)
	return err
}

func (d *FileBlockDevice) WriteBlock(i int, src []byte) error {
	if len(src) != BlockSize {
		return errBlockSize
	}
	if i < 0 || i >= d.blocks {
		return errBlockRange
	}
	_, err := d.f.WriteAt(src, int64(i)*BlockSize)
	return err
}

func (d *FileBlockDevice) BlockCount() int {
	return d.blocks
}

// Flush commits any OS-buffered writes to the underlying storage via a
// direct fsync syscall, rather than the higher-level os.File.Sync.
func (d *FileBlockDevice) Flush() error {
	return unix.Fsync(int(d.f.Fd()))
}

// Close flushes and closes the backing file.
func (d *FileBlockDevice) Close() error {
	if err := d.Flush(); err != nil {
		d.f.Close()
		return err
	}
	return d.f.Close()
}
