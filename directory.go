package ecs150fs

import (
	"bytes"
	"encoding/binary"

	"golang.org/x/text/encoding/charmap"
)

const dirEntrySize = 32
const maxNameLen = 16 // including the NUL terminator

// dirEntry is the on-disk layout of one root-directory slot.
type dirEntry struct {
	Name       [16]byte
	Size       uint32
	FirstBlock uint16
	_          [10]byte
}

func (e *dirEntry) empty() bool {
	return e.Name[0] == 0x00
}

func (e *dirEntry) nameString() string {
	n := bytes.IndexByte(e.Name[:], 0)
	if n < 0 {
		n = len(e.Name)
	}
	return string(e.Name[:n])
}

// directory is the in-memory image of the 128-entry root directory,
// loaded at mount and flushed at umount. Open-descriptor counts are
// kept here in a parallel map rather than in the zero-valued on-disk
// padding, per the per-file open-count design decision.
type directory struct {
	entries   [rootDirEntries]dirEntry
	openCount map[int]int
}

// loadDirectory reads the single root-directory block and unpacks its
// 128 fixed-size entries.
func loadDirectory(dev BlockDevice, rootDirBlock int) (*directory, error) {
	block := make([]byte, BlockSize)
	if err := dev.ReadBlock(rootDirBlock, block); err != nil {
		return nil, ErrIOError
	}
	d := &directory{openCount: make(map[int]int)}
	for i := range d.entries {
		off := i * dirEntrySize
		copy(d.entries[i].Name[:], block[off:off+16])
		d.entries[i].Size = binary.LittleEndian.Uint32(block[off+16:])
		d.entries[i].FirstBlock = binary.LittleEndian.Uint16(block[off+20:])
	}
	return d, nil
}

// newDirectory builds a fresh, all-empty root directory for a newly
// formatted disk.
func newDirectory() *directory {
	return &directory{openCount: make(map[int]int)}
}

// flush writes the 128 entries back to the single root-directory block.
func (d *directory) flush(dev BlockDevice, rootDirBlock int) error {
	block := make([]byte, BlockSize)
	for i, e := range d.entries {
		off := i * dirEntrySize
		copy(block[off:off+16], e.Name[:])
		binary.LittleEndian.PutUint32(block[off+16:], e.Size)
		binary.LittleEndian.PutUint16(block[off+20:], e.FirstBlock)
	}
	if err := dev.WriteBlock(rootDirBlock, block); err != nil {
		return ErrIOError
	}
	return nil
}

// validateName enforces length and host-encoding constraints on a
// candidate file name. Names are passed through CodePage437 so bytes
// that don't round-trip through the volume's host encoding are
// rejected before they ever reach disk.
func validateName(name string) error {
	if len(name) == 0 || len(name) >= maxNameLen {
		return ErrInvalidName
	}
	if _, err := charmap.CodePage437.NewEncoder().String(name); err != nil {
		return ErrInvalidName
	}
	return nil
}

// find returns the index of the non-empty entry whose name matches,
// or ErrNotFound.
func (d *directory) find(name string) (int, error) {
	for i := range d.entries {
		if !d.entries[i].empty() && d.entries[i].nameString() == name {
			return i, nil
		}
	}
	return 0, ErrNotFound
}

// create validates name, rejects duplicates, and writes a fresh
// zero-length entry into the lowest free slot.
func (d *directory) create(name string) (int, error) {
	if err := validateName(name); err != nil {
		return 0, err
	}
	if _, err := d.find(name); err == nil {
		return 0, ErrExists
	}
	for i := range d.entries {
		if d.entries[i].empty() {
			d.entries[i] = dirEntry{FirstBlock: fatEOC}
			copy(d.entries[i].Name[:], name)
			return i, nil
		}
	}
	return 0, ErrDirFull
}

// delete frees index's FAT chain and clears its slot. It refuses a
// file with open descriptors.
func (d *directory) delete(index int, fat *fatTable) error {
	if d.openCount[index] > 0 {
		return ErrBusy
	}
	e := &d.entries[index]
	if err := fat.freeChain(int(e.FirstBlock)); err != nil {
		return err
	}
	*e = dirEntry{}
	delete(d.openCount, index)
	return nil
}
