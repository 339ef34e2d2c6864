package staking

import "github.com/gagliardetto/solana-go"

// LockDuration is ten years in seconds
const LockDuration int64 = 10 * 365 * 24 * 60 * 60

// DefaultProgramID is the address of the deployed staking program, so derived
// addresses line up with existing on-chain state
var DefaultProgramID = solana.MustPublicKeyFromBase58("6F4xuFXwNTowkA7FnNmo1ejeTTCX6FxYgsifQDwp5Xsf")

// Operation names used in logs, metrics and events
const (
	OpInitialize    = "initialize"
	OpStake         = "stake"
	OpDestake       = "destake"
	OpCreateMint    = "create_mint"
	OpCreateAccount = "create_account"
	OpMintTo        = "mint_to"
)
