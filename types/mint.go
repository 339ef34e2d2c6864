package types

import (
	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"
)

// MaxScalingDecimals is the largest precision whose 10^decimals still fits a u64
const MaxScalingDecimals = 19

type Mint struct {
	Address       solana.PublicKey `json:"address"`
	Decimals      uint8            `json:"decimals"`
	Supply        *uint256.Int     `json:"supply"`
	MintAuthority solana.PublicKey `json:"mint_authority"`
}

// ToBaseUnits multiplies amount by 10^decimals. ok is false when the result does not fit in a u64,
// the width token amounts are carried in on-chain.
func ToBaseUnits(amount uint64, decimals uint8) (*uint256.Int, bool) {
	if decimals > MaxScalingDecimals {
		return nil, false
	}
	scale := new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(uint64(decimals)))
	res, overflow := new(uint256.Int).MulOverflow(uint256.NewInt(amount), scale)
	if overflow || !res.IsUint64() {
		return nil, false
	}
	return res, true
}

// ToBaseUnits scales a human denominated amount by the mint precision
func (m *Mint) ToBaseUnits(amount uint64) (*uint256.Int, bool) {
	return ToBaseUnits(amount, m.Decimals)
}
