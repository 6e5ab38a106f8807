package ecs150fs

// chainWalk advances floor(offset/BlockSize) steps along the chain
// starting at head and returns the data-block index reached. It never
// allocates; callers extend the chain themselves when a write walks
// past its end.
func (fsys *FS) chainWalk(head int, offset int64) (int, error) {
	steps := int(offset / BlockSize)
	cur := head
	for i := 0; i < steps; i++ {
		next, end, err := fsys.fat.next(cur)
		if err != nil {
			return 0, err
		}
		if end {
			return 0, ErrIOError // caller asked to walk past the chain's end
		}
		cur = next
	}
	return cur, nil
}

func (fsys *FS) physicalBlock(dataBlock int) int {
	return int(fsys.sb.DataStartBlock) + dataBlock
}

// Read copies up to len(buf) bytes starting at fd's cursor and
// advances the cursor by the number of bytes copied. It returns fewer
// bytes than requested, without error, once end of file is reached.
func (fsys *FS) Read(fd int, buf []byte) (int, error) {
	if err := fsys.requireMounted(); err != nil {
		return 0, err
	}
	slot, err := fsys.fdTable.get(fd)
	if err != nil {
		return 0, err
	}
	if len(buf) == 0 {
		return 0, nil
	}
	entry := &fsys.dir.entries[slot.rootIndex]
	size := int64(entry.Size)
	count := int64(len(buf))
	if slot.offset >= size {
		return 0, nil
	}
	if slot.offset+count > size {
		count = size - slot.offset
	}

	remaining := count
	cursor := slot.offset
	cur, err := fsys.chainWalk(int(entry.FirstBlock), cursor)
	if err != nil {
		return 0, err
	}
	scratch := make([]byte, BlockSize)
	written := int64(0)
	for remaining > 0 {
		inBlock := cursor % BlockSize
		take := BlockSize - inBlock
		if take > remaining {
			take = remaining
		}
		phys := fsys.physicalBlock(cur)
		if take == BlockSize {
			if err := fsys.dev.ReadBlock(phys, buf[written:written+take]); err != nil {
				return int(written), ErrIOError
			}
		} else {
			if err := fsys.dev.ReadBlock(phys, scratch); err != nil {
				return int(written), ErrIOError
			}
			copy(buf[written:written+take], scratch[inBlock:inBlock+take])
		}
		cursor += take
		written += take
		remaining -= take
		if remaining > 0 {
			next, end, err := fsys.fat.next(cur)
			if err != nil {
				return int(written), err
			}
			if end {
				break
			}
			cur = next
		}
	}
	slot.offset = cursor
	return int(written), nil
}

// Write copies up to len(buf) bytes to fd's cursor, growing the file
// and its FAT chain as needed, and advances the cursor. A short count
// with a nil error signals the device ran out of free blocks
// mid-write; it is not reported as an error.
func (fsys *FS) Write(fd int, buf []byte) (int, error) {
	if err := fsys.requireMounted(); err != nil {
		return 0, err
	}
	slot, err := fsys.fdTable.get(fd)
	if err != nil {
		return 0, err
	}
	if len(buf) == 0 {
		return 0, nil
	}
	entry := &fsys.dir.entries[slot.rootIndex]

	if entry.FirstBlock == fatEOC && entry.Size == 0 {
		head, err := fsys.fat.allocate()
		if err != nil {
			return 0, nil // no space at all: write nothing, no error
		}
		entry.FirstBlock = uint16(head)
	}

	remaining := int64(len(buf))
	cursor := slot.offset
	cur, err := fsys.walkOrExtend(int(entry.FirstBlock), cursor)
	if err == ErrNoSpace {
		return 0, nil // no room to reach the target block: short count, not an error
	} else if err != nil {
		return 0, err
	}
	scratch := make([]byte, BlockSize)
	written := int64(0)
	for remaining > 0 {
		inBlock := cursor % BlockSize
		take := BlockSize - inBlock
		if take > remaining {
			take = remaining
		}
		phys := fsys.physicalBlock(cur)
		if take == BlockSize {
			if err := fsys.dev.WriteBlock(phys, buf[written:written+take]); err != nil {
				return int(written), ErrIOError
			}
		} else {
			if err := fsys.dev.ReadBlock(phys, scratch); err != nil {
				return int(written), ErrIOError
			}
			copy(scratch[inBlock:inBlock+take], buf[written:written+take])
			if err := fsys.dev.WriteBlock(phys, scratch); err != nil {
				return int(written), ErrIOError
			}
		}
		cursor += take
		written += take
		remaining -= take
		if remaining > 0 {
			next, end, err := fsys.fat.next(cur)
			if err != nil {
				return int(written), err
			}
			if end {
				j, err := fsys.fat.extend(cur)
				if err != nil {
					break // out of space: stop, return the short count
				}
				cur = j
			} else {
				cur = next
			}
		}
	}
	if uint32(slot.offset+written) > entry.Size {
		entry.Size = uint32(slot.offset + written)
	}
	slot.offset = cursor
	return int(written), nil
}

// walkOrExtend is chainWalk's write-side counterpart: it extends the
// chain with newly allocated blocks whenever the walk would otherwise
// run past the chain's current end.
func (fsys *FS) walkOrExtend(head int, offset int64) (int, error) {
	steps := int(offset / BlockSize)
	cur := head
	for i := 0; i < steps; i++ {
		next, end, err := fsys.fat.next(cur)
		if err != nil {
			return 0, err
		}
		if end {
			j, err := fsys.fat.extend(cur)
			if err != nil {
				return 0, err
			}
			cur = j
			continue
		}
		cur = next
	}
	return cur, nil
}
