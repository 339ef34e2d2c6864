package types

import (
	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"
)

// TokenAccount is a custodial balance of one mint. Owner is the authority that must sign debits:
// a wallet for associated token accounts, the account itself for program-derived custody.
type TokenAccount struct {
	Address solana.PublicKey `json:"address"`
	Mint    solana.PublicKey `json:"mint"`
	Owner   solana.PublicKey `json:"owner"`
	Amount  *uint256.Int     `json:"amount"`
}

func NewTokenAccount(address, mint, owner solana.PublicKey) *TokenAccount {
	return &TokenAccount{
		Address: address,
		Mint:    mint,
		Owner:   owner,
		Amount:  uint256.NewInt(0),
	}
}

// Balance returns a copy of the amount, zero when unset
func (a *TokenAccount) Balance() *uint256.Int {
	if a == nil || a.Amount == nil {
		return uint256.NewInt(0)
	}
	return new(uint256.Int).Set(a.Amount)
}
