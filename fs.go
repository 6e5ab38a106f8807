package ecs150fs

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// slogLevelTrace sits below slog.LevelDebug for per-call tracing (failed
// creates, opens) that would otherwise drown out ordinary debug logging.
// Block reads and writes are not logged.
const slogLevelTrace = slog.LevelDebug - 2

// FS is the mounted file system: a superblock, FAT, root directory and
// file descriptor table bound to one BlockDevice. The zero value is an
// unmounted FS ready for Mount.
type FS struct {
	dev     BlockDevice
	sb      superblock
	fat     *fatTable
	dir     *directory
	fdTable descriptorTable
	mounted bool
	log     *slog.Logger
}

// Option configures a Mount call.
type Option func(*FS)

// WithLogger attaches a structured logger. A nil logger (the default)
// disables logging entirely; every log call is nil-checked first.
func WithLogger(log *slog.Logger) Option {
	return func(fsys *FS) { fsys.log = log }
}

func (fsys *FS) trace(msg string, args ...any) {
	if fsys.log != nil {
		fsys.log.Log(context.Background(), slogLevelTrace, msg, args...)
	}
}

func (fsys *FS) debug(msg string, args ...any) {
	if fsys.log != nil {
		fsys.log.Debug(msg, args...)
	}
}

func (fsys *FS) warn(msg string, args ...any) {
	if fsys.log != nil {
		fsys.log.Warn(msg, args...)
	}
}

// Mount loads the superblock, FAT, and root directory from dev and
// readies the file system for use. It fails with ErrCorruptSuperblock
// if block 0 does not validate.
func (fsys *FS) Mount(dev BlockDevice, opts ...Option) error {
	if dev == nil {
		return ErrNoDisk
	}
	for _, opt := range opts {
		opt(fsys)
	}
	block := make([]byte, BlockSize)
	if err := dev.ReadBlock(0, block); err != nil {
		fsys.warn("failed to read superblock", "err", err)
		return ErrIOError
	}
	sb, err := readSuperblock(block, dev.BlockCount())
	if err != nil {
		fsys.warn("superblock validation failed")
		return err
	}
	fat, err := loadFATTable(dev, int(sb.FATBlockCount), int(sb.DataBlockCount))
	if err != nil {
		return err
	}
	dir, err := loadDirectory(dev, int(sb.RootDirBlock))
	if err != nil {
		return err
	}
	fsys.dev = dev
	fsys.sb = sb
	fsys.fat = fat
	fsys.dir = dir
	fsys.fdTable = descriptorTable{}
	fsys.mounted = true
	fsys.debug("mounted", "total_blocks", sb.TotalBlocks, "data_blocks", sb.DataBlockCount)
	return nil
}

// Umount flushes the FAT and root directory to disk and releases the
// mount. It fails with ErrBusy if any descriptor is still open.
func (fsys *FS) Umount() error {
	if err := fsys.requireMounted(); err != nil {
		return err
	}
	if fsys.fdTable.anyOpen() {
		return ErrBusy
	}
	if err := fsys.fat.flush(fsys.dev, int(fsys.sb.FATBlockCount)); err != nil {
		return err
	}
	if err := fsys.dir.flush(fsys.dev, int(fsys.sb.RootDirBlock)); err != nil {
		return err
	}
	fsys.debug("unmounted")
	*fsys = FS{log: fsys.log}
	return nil
}

func (fsys *FS) requireMounted() error {
	if !fsys.mounted {
		return ErrNotMounted
	}
	return nil
}

// Create adds a new, empty file named name to the root directory.
func (fsys *FS) Create(name string) error {
	if err := fsys.requireMounted(); err != nil {
		return err
	}
	_, err := fsys.dir.create(name)
	if err != nil {
		fsys.trace("create failed", "name", name, "err", err)
		return err
	}
	return nil
}

// Delete removes name from the root directory and frees its blocks.
// It fails with ErrBusy if the file has open descriptors.
func (fsys *FS) Delete(name string) error {
	if err := fsys.requireMounted(); err != nil {
		return err
	}
	idx, err := fsys.dir.find(name)
	if err != nil {
		return err
	}
	return fsys.dir.delete(idx, fsys.fat)
}

// Open returns a new file descriptor positioned at offset 0 into name.
func (fsys *FS) Open(name string) (int, error) {
	if err := fsys.requireMounted(); err != nil {
		return 0, err
	}
	idx, err := fsys.dir.find(name)
	if err != nil {
		return 0, err
	}
	fd, err := fsys.fdTable.alloc(idx)
	if err != nil {
		return 0, err
	}
	fsys.dir.openCount[idx]++
	fsys.trace("opened", "name", name, "fd", fd)
	return fd, nil
}

// Close releases fd.
func (fsys *FS) Close(fd int) error {
	if err := fsys.requireMounted(); err != nil {
		return err
	}
	slot, err := fsys.fdTable.get(fd)
	if err != nil {
		return err
	}
	idx := slot.rootIndex
	fsys.fdTable.release(fd)
	fsys.dir.openCount[idx]--
	if fsys.dir.openCount[idx] <= 0 {
		delete(fsys.dir.openCount, idx)
	}
	return nil
}

// Stat returns the size in bytes of the file behind fd.
func (fsys *FS) Stat(fd int) (int64, error) {
	if err := fsys.requireMounted(); err != nil {
		return 0, err
	}
	slot, err := fsys.fdTable.get(fd)
	if err != nil {
		return 0, err
	}
	return int64(fsys.dir.entries[slot.rootIndex].Size), nil
}

// Lseek moves fd's cursor to offset, which must lie within [0, size].
func (fsys *FS) Lseek(fd int, offset int64) error {
	if err := fsys.requireMounted(); err != nil {
		return err
	}
	slot, err := fsys.fdTable.get(fd)
	if err != nil {
		return err
	}
	size := int64(fsys.dir.entries[slot.rootIndex].Size)
	if offset < 0 || offset > size {
		return ErrOutOfBounds
	}
	slot.offset = offset
	return nil
}

// FileInfo describes one root-directory entry for listing purposes.
type FileInfo struct {
	Name       string
	Size       int64
	FirstBlock int
}

// StatByName returns file metadata by name, without requiring an open
// descriptor or burning a file descriptor slot.
func (fsys *FS) StatByName(name string) (FileInfo, error) {
	if err := fsys.requireMounted(); err != nil {
		return FileInfo{}, err
	}
	idx, err := fsys.dir.find(name)
	if err != nil {
		return FileInfo{}, err
	}
	e := fsys.dir.entries[idx]
	return FileInfo{Name: e.nameString(), Size: int64(e.Size), FirstBlock: int(e.FirstBlock)}, nil
}

// ReadDir returns metadata for every file currently in the root
// directory, in slot order.
func (fsys *FS) ReadDir() ([]FileInfo, error) {
	if err := fsys.requireMounted(); err != nil {
		return nil, err
	}
	var out []FileInfo
	for _, e := range fsys.dir.entries {
		if e.empty() {
			continue
		}
		out = append(out, FileInfo{Name: e.nameString(), Size: int64(e.Size), FirstBlock: int(e.FirstBlock)})
	}
	return out, nil
}

// Info summarizes the mounted volume's layout and free space.
type Info struct {
	TotalBlocks        int
	FATBlocks          int
	RootDirBlock       int
	DataStartBlock     int
	DataBlockCount     int
	FATFreeBlocks      int
	RootDirFreeEntries int
}

// Info returns the current layout and free-space counters.
func (fsys *FS) Info() (Info, error) {
	if err := fsys.requireMounted(); err != nil {
		return Info{}, err
	}
	free := 0
	for _, e := range fsys.dir.entries {
		if e.empty() {
			free++
		}
	}
	return Info{
		TotalBlocks:        int(fsys.sb.TotalBlocks),
		FATBlocks:          int(fsys.sb.FATBlockCount),
		RootDirBlock:       int(fsys.sb.RootDirBlock),
		DataStartBlock:     int(fsys.sb.DataStartBlock),
		DataBlockCount:     int(fsys.sb.DataBlockCount),
		FATFreeBlocks:      fsys.fat.freeCount(),
		RootDirFreeEntries: free,
	}, nil
}

// InfoString renders Info in the exact golden line format.
func (fsys *FS) InfoString() (string, error) {
	info, err := fsys.Info()
	if err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "FS Info:\n")
	fmt.Fprintf(&b, "total_blk_count=%d\n", info.TotalBlocks)
	fmt.Fprintf(&b, "fat_blk_count=%d\n", info.FATBlocks)
	fmt.Fprintf(&b, "rdir_blk=%d\n", info.RootDirBlock)
	fmt.Fprintf(&b, "data_blk=%d\n", info.DataStartBlock)
	fmt.Fprintf(&b, "data_blk_count=%d\n", info.DataBlockCount)
	fmt.Fprintf(&b, "fat_free_ratio=%d/%d\n", info.FATFreeBlocks, info.DataBlockCount)
	fmt.Fprintf(&b, "rdir_free_ratio=%d/%d\n", info.RootDirFreeEntries, rootDirEntries)
	return b.String(), nil
}

// LsString renders the directory listing in the exact golden line
// format, one line per non-empty entry.
func (fsys *FS) LsString() (string, error) {
	entries, err := fsys.ReadDir()
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "file: %s, size: %d, data_blk: %d\n", e.Name, e.Size, e.FirstBlock)
	}
	return b.String(), nil
}
