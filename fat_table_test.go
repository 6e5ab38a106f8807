package ecs150fs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFATAllocateLowestFreeIndex(t *testing.T) {
	fat := newFATTable(8)
	a, err := fat.allocate()
	require.NoError(t, err)
	require.Equal(t, 1, a) // index 0 is permanently reserved

	b, err := fat.allocate()
	require.NoError(t, err)
	require.Equal(t, 2, b)

	require.NoError(t, fat.freeChain(a))
	c, err := fat.allocate()
	require.NoError(t, err)
	require.Equal(t, 1, c) // freed slot is reused as the new lowest free index
}

func TestFATAllocateNoSpace(t *testing.T) {
	fat := newFATTable(2) // only index 1 is ever allocatable
	_, err := fat.allocate()
	require.NoError(t, err)
	_, err = fat.allocate()
	require.ErrorIs(t, err, ErrNoSpace)
}

func TestFATExtendAndNext(t *testing.T) {
	fat := newFATTable(4)
	head, err := fat.allocate()
	require.NoError(t, err)

	_, end, err := fat.next(head)
	require.NoError(t, err)
	require.True(t, end)

	tail, err := fat.extend(head)
	require.NoError(t, err)

	next, end, err := fat.next(head)
	require.NoError(t, err)
	require.False(t, end)
	require.Equal(t, tail, next)
}

func TestFATFreeChainIdempotent(t *testing.T) {
	fat := newFATTable(4)
	head, err := fat.allocate()
	require.NoError(t, err)
	_, err = fat.extend(head)
	require.NoError(t, err)

	require.NoError(t, fat.freeChain(head))
	require.Equal(t, 3, fat.freeCount())
	require.NoError(t, fat.freeChain(int(fatEOC))) // empty-file chain: no-op
}

func TestFATNextRejectsCorruption(t *testing.T) {
	fat := newFATTable(4)
	_, _, err := fat.next(1) // entry 1 is free, not part of any chain
	require.ErrorIs(t, err, ErrIOError)
	_, _, err = fat.next(99)
	require.ErrorIs(t, err, ErrIOError)
}

func TestFATLoadRejectsMutatedReservedEntry(t *testing.T) {
	dev := newTestDevice(8)
	block := make([]byte, BlockSize)
	require.NoError(t, dev.ReadBlock(1, block))
	block[0], block[1] = 0, 0 // clobber entry 0, which must stay FAT_EOC
	require.NoError(t, dev.WriteBlock(1, block))

	_, err := loadFATTable(dev, 1, 8)
	require.ErrorIs(t, err, ErrCorruptSuperblock)
}

func TestFATChainLength(t *testing.T) {
	fat := newFATTable(8)
	require.Equal(t, 0, mustChainLength(t, fat, int(fatEOC)))

	head, err := fat.allocate()
	require.NoError(t, err)
	require.Equal(t, 1, mustChainLength(t, fat, head))

	_, err = fat.extend(head)
	require.NoError(t, err)
	require.Equal(t, 2, mustChainLength(t, fat, head))
}

func mustChainLength(t *testing.T, fat *fatTable, head int) int {
	t.Helper()
	n, err := fat.chainLength(head)
	require.NoError(t, err)
	return n
}
