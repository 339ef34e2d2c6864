package store

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/mezonai/stakevault/db"
	"github.com/mezonai/stakevault/types"
)

var ErrTxnClosed = errors.New("store: transaction already committed or discarded")

// Txn stages every read and write of one call. Reads go through a cache so the call sees its own
// writes; nothing reaches the database until Commit writes all dirty records in a single batch.
type Txn struct {
	stores *Stores
	closed bool

	tokenAccounts map[solana.PublicKey]*types.TokenAccount
	mints         map[solana.PublicKey]*types.Mint
	stakeInfos    map[solana.PublicKey]*types.StakeInfo

	// write order is kept so batches are deterministic
	dirtyTokenAccounts []solana.PublicKey
	dirtyMints         []solana.PublicKey
	dirtyStakeInfos    []solana.PublicKey
}

func newTxn(stores *Stores) *Txn {
	return &Txn{
		stores:        stores,
		tokenAccounts: make(map[solana.PublicKey]*types.TokenAccount),
		mints:         make(map[solana.PublicKey]*types.Mint),
		stakeInfos:    make(map[solana.PublicKey]*types.StakeInfo),
	}
}

// GetTokenAccount returns the staged account or nil if it does not exist.
// Mutations are only persisted after PutTokenAccount.
func (t *Txn) GetTokenAccount(addr solana.PublicKey) (*types.TokenAccount, error) {
	if t.closed {
		return nil, ErrTxnClosed
	}
	if acc, ok := t.tokenAccounts[addr]; ok {
		return acc, nil
	}
	acc, err := t.stores.TokenAccounts.GetByAddr(addr)
	if err != nil {
		return nil, err
	}
	t.tokenAccounts[addr] = acc
	return acc, nil
}

func (t *Txn) PutTokenAccount(acc *types.TokenAccount) error {
	if t.closed {
		return ErrTxnClosed
	}
	t.dirtyTokenAccounts = appendUnique(t.dirtyTokenAccounts, acc.Address)
	t.tokenAccounts[acc.Address] = acc
	return nil
}

func (t *Txn) GetMint(addr solana.PublicKey) (*types.Mint, error) {
	if t.closed {
		return nil, ErrTxnClosed
	}
	if mint, ok := t.mints[addr]; ok {
		return mint, nil
	}
	mint, err := t.stores.Mints.GetByAddr(addr)
	if err != nil {
		return nil, err
	}
	t.mints[addr] = mint
	return mint, nil
}

func (t *Txn) PutMint(mint *types.Mint) error {
	if t.closed {
		return ErrTxnClosed
	}
	t.dirtyMints = appendUnique(t.dirtyMints, mint.Address)
	t.mints[mint.Address] = mint
	return nil
}

// GetStakeInfo returns nil when no ledger entry exists at addr
func (t *Txn) GetStakeInfo(addr solana.PublicKey) (*types.StakeInfo, error) {
	if t.closed {
		return nil, ErrTxnClosed
	}
	if info, ok := t.stakeInfos[addr]; ok {
		return info, nil
	}
	info, err := t.stores.StakeInfos.GetByAddr(addr)
	if err != nil {
		return nil, err
	}
	t.stakeInfos[addr] = info
	return info, nil
}

func (t *Txn) PutStakeInfo(addr solana.PublicKey, info *types.StakeInfo) error {
	if t.closed {
		return ErrTxnClosed
	}
	t.dirtyStakeInfos = appendUnique(t.dirtyStakeInfos, addr)
	t.stakeInfos[addr] = info
	return nil
}

// Writes returns how many records Commit would persist
func (t *Txn) Writes() int {
	return len(t.dirtyTokenAccounts) + len(t.dirtyMints) + len(t.dirtyStakeInfos)
}

// Commit persists all staged writes atomically and closes the transaction
func (t *Txn) Commit() error {
	if t.closed {
		return ErrTxnClosed
	}
	t.closed = true

	return t.stores.txManager.WithBatch(func(batch db.DatabaseBatch) error {
		for _, addr := range t.dirtyMints {
			if err := t.stores.Mints.StoreToBatch(batch, t.mints[addr]); err != nil {
				return fmt.Errorf("stage mint %s: %w", addr, err)
			}
		}
		for _, addr := range t.dirtyTokenAccounts {
			if err := t.stores.TokenAccounts.StoreToBatch(batch, t.tokenAccounts[addr]); err != nil {
				return fmt.Errorf("stage token account %s: %w", addr, err)
			}
		}
		for _, addr := range t.dirtyStakeInfos {
			if err := t.stores.StakeInfos.StoreToBatch(batch, addr, t.stakeInfos[addr]); err != nil {
				return fmt.Errorf("stage stake info %s: %w", addr, err)
			}
		}
		return nil
	})
}

// Discard drops every staged write. Safe to call after Commit.
func (t *Txn) Discard() {
	t.closed = true
	t.tokenAccounts = nil
	t.mints = nil
	t.stakeInfos = nil
	t.dirtyTokenAccounts = nil
	t.dirtyMints = nil
	t.dirtyStakeInfos = nil
}

func containsKey(keys []solana.PublicKey, k solana.PublicKey) bool {
	for _, existing := range keys {
		if existing == k {
			return true
		}
	}
	return false
}

func appendUnique(keys []solana.PublicKey, k solana.PublicKey) []solana.PublicKey {
	if containsKey(keys, k) {
		return keys
	}
	return append(keys, k)
}
