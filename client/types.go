package client

import "errors"

var (
	ErrInvalidAddress = errors.New("client: invalid address format")
	ErrUnsupportedKey = errors.New("client: unsupported private key length")
)

// JSON-RPC method names
const (
	MethodStakingInitialize   = "staking.initialize"
	MethodStakingStake        = "staking.stake"
	MethodStakingDestake      = "staking.destake"
	MethodStakingGetStakeInfo = "staking.getstakeinfo"
	MethodStakingGetAddresses = "staking.getaddresses"

	MethodTokenGetBalance    = "token.getbalance"
	MethodTokenMintTo        = "token.mintto"
	MethodTokenCreateAccount = "token.createaccount"

	MethodHealthCheck = "health.check"
)

// SignedParams authenticate a mutating call. Signer is the base58 public key whose authority
// the call exercises; Signature is the base58 ed25519 signature over Payload. Nonce makes two
// otherwise identical calls in the same second distinct, the server accepts each payload once.
type SignedParams struct {
	Signer    string `json:"signer"`
	Amount    int64  `json:"amount,omitempty"`
	Target    string `json:"target,omitempty"`
	Timestamp int64  `json:"timestamp"`
	Nonce     string `json:"nonce,omitempty"`
	Signature string `json:"signature"`
}

type ParticipantParams struct {
	Participant string `json:"participant"`
}

type AddressParams struct {
	Address string `json:"address"`
}

type InitializeResult struct {
	Vault   string `json:"vault"`
	Created bool   `json:"created"`
}

type StakeResult struct {
	Participant  string `json:"participant"`
	StakeAccount string `json:"stake_account"`
	Amount       uint64 `json:"amount"`
	BaseUnits    string `json:"base_units"`
	StakeAtSlot  uint64 `json:"stake_at_slot"`
	LockEndTime  int64  `json:"lock_end_time"`
}

type DestakeResult struct {
	Participant  string `json:"participant"`
	SlotsElapsed uint64 `json:"slots_elapsed"`
	Reward       string `json:"reward"`
	Principal    string `json:"principal"`
	Slot         uint64 `json:"slot"`
}

type StakeInfoResult struct {
	Participant  string `json:"participant"`
	Address      string `json:"address"`
	Status       string `json:"status"`
	IsStaked     bool   `json:"is_staked"`
	StakeAtSlot  uint64 `json:"stake_at_slot"`
	LockEndTime  int64  `json:"lock_end_time"`
	EscrowAmount string `json:"escrow_amount"`
}

type DerivedAddress struct {
	Address string `json:"address"`
	Bump    uint8  `json:"bump"`
}

type AddressesResult struct {
	Participant        string         `json:"participant"`
	Vault              DerivedAddress `json:"vault"`
	StakeInfo          DerivedAddress `json:"stake_info"`
	StakeAccount       DerivedAddress `json:"stake_account"`
	WalletTokenAccount string         `json:"wallet_token_account"`
}

type BalanceResult struct {
	Address  string `json:"address"`
	Balance  string `json:"balance"`
	Decimals uint8  `json:"decimals"`
}

type CreateAccountResult struct {
	Address string `json:"address"`
}

type MintToResult struct {
	Destination string `json:"destination"`
	Balance     string `json:"balance"`
}

type HealthResult struct {
	Status        string `json:"status"`
	Slot          uint64 `json:"slot"`
	UnixTimestamp int64  `json:"unix_timestamp"`
	ActiveStakes  int    `json:"active_stakes"`
	VaultBalance  string `json:"vault_balance"`
}
