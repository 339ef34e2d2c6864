package types

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToBaseUnits(t *testing.T) {
	v, ok := ToBaseUnits(10, 6)
	require.True(t, ok)
	assert.Equal(t, uint64(10_000_000), v.Uint64())

	v, ok = ToBaseUnits(500, 6)
	require.True(t, ok)
	assert.Equal(t, uint64(500_000_000), v.Uint64())

	v, ok = ToBaseUnits(7, 0)
	require.True(t, ok)
	assert.Equal(t, uint64(7), v.Uint64())

	_, ok = ToBaseUnits(math.MaxUint64, 1)
	assert.False(t, ok)

	_, ok = ToBaseUnits(1, 20)
	assert.False(t, ok, "10^20 does not fit in a u64")

	v, ok = ToBaseUnits(1, 19)
	require.True(t, ok)
	assert.Equal(t, uint64(10_000_000_000_000_000_000), v.Uint64())
}

func TestStakeInfo_AccountLayout(t *testing.T) {
	info := &StakeInfo{StakeAtSlot: 1000, IsStaked: true, LockEndTime: 1_700_000_000 + 315_360_000}

	data, err := info.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, data, StakeInfoAccountSize)

	assert.Equal(t, StakeInfoDiscriminator[:], data[:8])
	assert.Equal(t, uint64(1000), binary.LittleEndian.Uint64(data[8:16]))
	assert.Equal(t, byte(1), data[16])
	assert.Equal(t, int64(2_015_360_000), int64(binary.LittleEndian.Uint64(data[17:25])))

	var decoded StakeInfo
	require.NoError(t, decoded.UnmarshalBinary(data))
	assert.Equal(t, *info, decoded)
}

func TestStakeInfo_RejectsForeignAccount(t *testing.T) {
	data := make([]byte, StakeInfoAccountSize)
	var info StakeInfo
	assert.Error(t, info.UnmarshalBinary(data))
}

func TestStakeInfo_LockEnded(t *testing.T) {
	info := &StakeInfo{IsStaked: true, LockEndTime: 100}
	assert.False(t, info.LockEnded(99))
	assert.True(t, info.LockEnded(100))
	assert.Equal(t, "staked", info.Status())
}
