package interfaces

import (
	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"

	"github.com/mezonai/stakevault/staking"
	"github.com/mezonai/stakevault/sysvar"
	"github.com/mezonai/stakevault/types"
)

// StakingService is what the RPC layer needs from the staking program.
// Signer identities passed in have already been authenticated.
type StakingService interface {
	Initialize(payer solana.PublicKey) (bool, error)
	Stake(participant solana.PublicKey, amount uint64) (*staking.StakeReceipt, error)
	Destake(participant solana.PublicKey) (*staking.DestakeReceipt, error)
	StakeInfo(participant solana.PublicKey) (*types.StakeInfo, error)
	Addresses(participant solana.PublicKey) (*staking.Addresses, error)
}

// TokenService exposes the token accounts behind the staking program
type TokenService interface {
	CreateWalletAccount(owner solana.PublicKey) (solana.PublicKey, error)
	MintTo(authority, dest solana.PublicKey, amount uint64) error
	TokenBalance(addr solana.PublicKey) (*uint256.Int, error)
	MintInfo() (*types.Mint, error)
}

type HealthService interface {
	Now() sysvar.Clock
	ActiveStakes() int
	VaultBalance() (*uint256.Int, error)
}
