package staking

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"

	"github.com/mezonai/stakevault/types"
)

// StakeInfo returns the participant's ledger entry. A participant that never staked reads
// as the zero value, which is the Unstaked state.
func (e *Engine) StakeInfo(participant solana.PublicKey) (*types.StakeInfo, error) {
	addr, err := e.stakeInfoKey(participant)
	if err != nil {
		return nil, err
	}
	info, err := e.stores.StakeInfos.GetByAddr(addr)
	if err != nil {
		return nil, fmt.Errorf("load stake info: %w", err)
	}
	if info == nil {
		return &types.StakeInfo{}, nil
	}
	return info, nil
}

// TokenAccount returns nil when no account exists at addr
func (e *Engine) TokenAccount(addr solana.PublicKey) (*types.TokenAccount, error) {
	return e.stores.TokenAccounts.GetByAddr(addr)
}

// TokenBalance reads the base unit balance at addr, zero for a missing account
func (e *Engine) TokenBalance(addr solana.PublicKey) (*uint256.Int, error) {
	acc, err := e.TokenAccount(addr)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return uint256.NewInt(0), nil
	}
	return acc.Balance(), nil
}

func (e *Engine) VaultBalance() (*uint256.Int, error) {
	return e.TokenBalance(e.vault.Key)
}

func (e *Engine) MintInfo() (*types.Mint, error) {
	return e.stores.Mints.GetByAddr(e.mint)
}

func (e *Engine) stakeInfoKey(participant solana.PublicKey) (solana.PublicKey, error) {
	addr, err := e.Addresses(participant)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return addr.StakeInfo.Key, nil
}
