package token

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mezonai/stakevault/pda"
	"github.com/mezonai/stakevault/store"
)

type fixture struct {
	stores    *store.Stores
	program   *Program
	programID solana.PublicKey
	mint      solana.PublicKey
	authority solana.PublicKey
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	stores, err := store.CreateStores(&store.StoreConfig{Type: store.MemoryStoreType})
	require.NoError(t, err)
	t.Cleanup(func() { _ = stores.Close() })

	f := &fixture{
		stores:    stores,
		programID: solana.NewWallet().PublicKey(),
		mint:      solana.NewWallet().PublicKey(),
		authority: solana.NewWallet().PublicKey(),
	}
	f.program = NewProgram(f.programID)

	txn := stores.Begin()
	_, err = f.program.CreateMint(txn, f.mint, 6, f.authority)
	require.NoError(t, err)
	require.NoError(t, txn.Commit())
	return f
}

func (f *fixture) walletAccount(t *testing.T, owner solana.PublicKey, amount uint64) solana.PublicKey {
	t.Helper()
	addr, err := pda.AssociatedTokenAddress(owner, f.mint)
	require.NoError(t, err)

	txn := f.stores.Begin()
	_, err = f.program.InitializeAccount(txn, addr, f.mint, owner)
	require.NoError(t, err)
	if amount > 0 {
		require.NoError(t, f.program.MintTo(txn, f.mint, addr, uint256.NewInt(amount), WalletAuthority(f.authority)))
	}
	require.NoError(t, txn.Commit())
	return addr
}

func (f *fixture) balance(t *testing.T, addr solana.PublicKey) uint64 {
	t.Helper()
	acc, err := f.stores.TokenAccounts.GetByAddr(addr)
	require.NoError(t, err)
	require.NotNil(t, acc)
	return acc.Balance().Uint64()
}

func TestTransfer_WalletSigner(t *testing.T) {
	f := newFixture(t)
	alice := solana.NewWallet().PublicKey()
	bob := solana.NewWallet().PublicKey()
	from := f.walletAccount(t, alice, 100)
	to := f.walletAccount(t, bob, 0)

	txn := f.stores.Begin()
	require.NoError(t, f.program.Transfer(txn, from, to, uint256.NewInt(40), WalletAuthority(alice)))
	require.NoError(t, txn.Commit())

	assert.Equal(t, uint64(60), f.balance(t, from))
	assert.Equal(t, uint64(40), f.balance(t, to))
}

func TestTransfer_RejectsWrongSigner(t *testing.T) {
	f := newFixture(t)
	alice := solana.NewWallet().PublicKey()
	bob := solana.NewWallet().PublicKey()
	from := f.walletAccount(t, alice, 100)
	to := f.walletAccount(t, bob, 0)

	txn := f.stores.Begin()
	err := f.program.Transfer(txn, from, to, uint256.NewInt(1), WalletAuthority(bob))
	assert.ErrorIs(t, err, ErrMissingSignature)
}

func TestTransfer_InsufficientFunds(t *testing.T) {
	f := newFixture(t)
	alice := solana.NewWallet().PublicKey()
	from := f.walletAccount(t, alice, 5)
	to := f.walletAccount(t, solana.NewWallet().PublicKey(), 0)

	txn := f.stores.Begin()
	err := f.program.Transfer(txn, from, to, uint256.NewInt(6), WalletAuthority(alice))
	assert.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestTransfer_PDASigner(t *testing.T) {
	f := newFixture(t)
	vault, err := pda.VaultAddress(f.programID)
	require.NoError(t, err)

	txn := f.stores.Begin()
	_, created, err := f.program.InitializeAccountIfNeeded(txn, vault.Key, f.mint, vault.Key)
	require.NoError(t, err)
	assert.True(t, created)
	require.NoError(t, f.program.MintTo(txn, f.mint, vault.Key, uint256.NewInt(1000), WalletAuthority(f.authority)))
	require.NoError(t, txn.Commit())

	to := f.walletAccount(t, solana.NewWallet().PublicKey(), 0)

	// a seed set that does not derive the vault cannot move its funds
	txn = f.stores.Begin()
	wrong := pda.Signer{Seeds: [][]byte{[]byte("not-the-vault")}, Bump: vault.Bump}
	err = f.program.Transfer(txn, vault.Key, to, uint256.NewInt(1), PDAAuthority(wrong))
	assert.ErrorIs(t, err, ErrMissingSignature)
	txn.Discard()

	txn = f.stores.Begin()
	require.NoError(t, f.program.Transfer(txn, vault.Key, to, uint256.NewInt(250), PDAAuthority(pda.VaultSigner(vault.Bump))))
	require.NoError(t, txn.Commit())

	assert.Equal(t, uint64(750), f.balance(t, vault.Key))
	assert.Equal(t, uint64(250), f.balance(t, to))
}

func TestInitializeAccountIfNeeded_ChecksOwner(t *testing.T) {
	f := newFixture(t)
	alice := solana.NewWallet().PublicKey()
	addr := f.walletAccount(t, alice, 0)

	txn := f.stores.Begin()
	_, created, err := f.program.InitializeAccountIfNeeded(txn, addr, f.mint, alice)
	require.NoError(t, err)
	assert.False(t, created)

	_, _, err = f.program.InitializeAccountIfNeeded(txn, addr, f.mint, solana.NewWallet().PublicKey())
	assert.ErrorIs(t, err, ErrOwnerMismatch)

	_, err = f.program.InitializeAccount(txn, addr, f.mint, alice)
	assert.ErrorIs(t, err, ErrAccountExists)
}

func TestMintTo_RequiresMintAuthority(t *testing.T) {
	f := newFixture(t)
	alice := solana.NewWallet().PublicKey()
	addr := f.walletAccount(t, alice, 0)

	txn := f.stores.Begin()
	err := f.program.MintTo(txn, f.mint, addr, uint256.NewInt(1), WalletAuthority(alice))
	assert.ErrorIs(t, err, ErrMissingSignature)
}

func TestMintTo_Overflow(t *testing.T) {
	f := newFixture(t)
	addr := f.walletAccount(t, solana.NewWallet().PublicKey(), ^uint64(0))

	txn := f.stores.Begin()
	err := f.program.MintTo(txn, f.mint, addr, uint256.NewInt(1), WalletAuthority(f.authority))
	assert.ErrorIs(t, err, ErrOverflow)
}
