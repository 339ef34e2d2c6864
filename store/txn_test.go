package store

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mezonai/stakevault/types"
)

func newTestStores(t *testing.T) *Stores {
	t.Helper()
	stores, err := CreateStores(&StoreConfig{Type: MemoryStoreType})
	require.NoError(t, err)
	t.Cleanup(func() { _ = stores.Close() })
	return stores
}

func TestTxn_CommitPersistsAllRecords(t *testing.T) {
	stores := newTestStores(t)

	mintAddr := solana.NewWallet().PublicKey()
	owner := solana.NewWallet().PublicKey()
	accAddr := solana.NewWallet().PublicKey()
	infoAddr := solana.NewWallet().PublicKey()

	txn := stores.Begin()
	require.NoError(t, txn.PutMint(&types.Mint{Address: mintAddr, Decimals: 6, Supply: uint256.NewInt(0), MintAuthority: owner}))
	acc := types.NewTokenAccount(accAddr, mintAddr, owner)
	acc.Amount = uint256.NewInt(42)
	require.NoError(t, txn.PutTokenAccount(acc))
	require.NoError(t, txn.PutStakeInfo(infoAddr, &types.StakeInfo{StakeAtSlot: 7, IsStaked: true, LockEndTime: 99}))

	// read your own writes before commit
	staged, err := txn.GetTokenAccount(accAddr)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), staged.Amount.Uint64())

	// but nothing is visible outside the transaction yet
	persisted, err := stores.TokenAccounts.GetByAddr(accAddr)
	require.NoError(t, err)
	assert.Nil(t, persisted)

	assert.Equal(t, 3, txn.Writes())
	require.NoError(t, txn.Commit())

	persisted, err = stores.TokenAccounts.GetByAddr(accAddr)
	require.NoError(t, err)
	require.NotNil(t, persisted)
	assert.Equal(t, owner, persisted.Owner)
	assert.Equal(t, uint64(42), persisted.Amount.Uint64())

	mint, err := stores.Mints.GetByAddr(mintAddr)
	require.NoError(t, err)
	require.NotNil(t, mint)
	assert.Equal(t, uint8(6), mint.Decimals)

	info, err := stores.StakeInfos.GetByAddr(infoAddr)
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, types.StakeInfo{StakeAtSlot: 7, IsStaked: true, LockEndTime: 99}, *info)

	staked, err := stores.StakeInfos.Count(true)
	require.NoError(t, err)
	assert.Equal(t, 1, staked)
}

func TestTxn_DiscardLeavesStateUntouched(t *testing.T) {
	stores := newTestStores(t)
	accAddr := solana.NewWallet().PublicKey()

	txn := stores.Begin()
	require.NoError(t, txn.PutTokenAccount(types.NewTokenAccount(accAddr, solana.PublicKey{}, solana.PublicKey{})))
	txn.Discard()

	ok, err := stores.TokenAccounts.ExistsByAddr(accAddr)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.ErrorIs(t, txn.Commit(), ErrTxnClosed)
	_, err = txn.GetTokenAccount(accAddr)
	assert.ErrorIs(t, err, ErrTxnClosed)
}

func TestStoreConfig_Validate(t *testing.T) {
	assert.Error(t, (&StoreConfig{}).Validate())
	assert.Error(t, (&StoreConfig{Type: LevelDBStoreType}).Validate())
	assert.Error(t, (&StoreConfig{Type: RedisStoreType}).Validate())
	assert.Error(t, (&StoreConfig{Type: "rocksdb", Directory: "x"}).Validate())
	assert.NoError(t, (&StoreConfig{Type: BoltStoreType, Directory: "x"}).Validate())
	assert.NoError(t, (&StoreConfig{Type: MemoryStoreType}).Validate())
}
