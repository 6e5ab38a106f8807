package ecs150fs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemBlockDeviceRoundTrip(t *testing.T) {
	dev := NewMemBlockDevice(4)
	require.Equal(t, 4, dev.BlockCount())

	block := make([]byte, BlockSize)
	for i := range block {
		block[i] = byte(i)
	}
	require.NoError(t, dev.WriteBlock(2, block))

	got := make([]byte, BlockSize)
	require.NoError(t, dev.ReadBlock(2, got))
	require.Equal(t, block, got)
}

func TestMemBlockDeviceBounds(t *testing.T) {
	dev := NewMemBlockDevice(2)
	buf := make([]byte, BlockSize)
	require.ErrorIs(t, dev.ReadBlock(-1, buf), errBlockRange)
	require.ErrorIs(t, dev.ReadBlock(2, buf), errBlockRange)
	require.ErrorIs(t, dev.WriteBlock(2, buf), errBlockRange)
	require.ErrorIs(t, dev.ReadBlock(0, buf[:10]), errBlockSize)
}
