package ecs150fs

// newTestDevice builds a freshly formatted in-memory device with
// dataBlockCount data blocks.
func newTestDevice(dataBlockCount int) *MemBlockDevice {
	fatBlocks := ceilDiv(dataBlockCount*2, BlockSize)
	totalBlocks := 1 + fatBlocks + 1 + dataBlockCount
	dev := NewMemBlockDevice(totalBlocks)
	if err := Format(dev, FormatConfig{DataBlockCount: dataBlockCount}); err != nil {
		panic(err)
	}
	return dev
}

// mountedTestFS formats and mounts a fresh FS with dataBlockCount data blocks.
func mountedTestFS(dataBlockCount int) (*FS, *MemBlockDevice) {
	dev := newTestDevice(dataBlockCount)
	var fsys FS
	if err := fsys.Mount(dev); err != nil {
		panic(err)
	}
	return &fsys, dev
}
