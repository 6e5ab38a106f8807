package ecs150fs

// FormatConfig controls Format's layout choices.
type FormatConfig struct {
	// DataBlockCount is the number of data blocks the volume should
	// provide. The FAT and root directory block counts are derived
	// from it per the on-disk layout invariants.
	DataBlockCount int
}

// Format writes a fresh superblock, empty FAT, and empty root
// directory to dev, sized to hold cfg.DataBlockCount data blocks.
// dev.BlockCount() must already equal the resulting total_blocks;
// Format does not resize the device, only lay out its contents.
func Format(dev BlockDevice, cfg FormatConfig) error {
	if cfg.DataBlockCount <= 0 {
		return ErrIOError
	}
	fatBlocks := ceilDiv(cfg.DataBlockCount*2, BlockSize)
	rootDirBlock := 1 + fatBlocks
	dataStartBlock := rootDirBlock + 1
	totalBlocks := dataStartBlock + cfg.DataBlockCount
	if dev.BlockCount() != totalBlocks {
		return ErrIOError
	}

	sb := superblock{
		Signature:      signature,
		TotalBlocks:    uint16(totalBlocks),
		RootDirBlock:   uint16(rootDirBlock),
		DataStartBlock: uint16(dataStartBlock),
		DataBlockCount: uint16(cfg.DataBlockCount),
		FATBlockCount:  uint8(fatBlocks),
	}
	if err := dev.WriteBlock(0, writeSuperblock(sb)); err != nil {
		return ErrIOError
	}

	fat := newFATTable(cfg.DataBlockCount)
	if err := fat.flush(dev, fatBlocks); err != nil {
		return err
	}

	dir := newDirectory()
	if err := dir.flush(dev, rootDirBlock); err != nil {
		return err
	}
	return nil
}
