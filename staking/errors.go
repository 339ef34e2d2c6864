package staking

import (
	"errors"

	"github.com/mezonai/stakevault/token"
)

var (
	ErrAlreadyStaked      = errors.New("tokens are already staked")
	ErrNotStaked          = errors.New("tokens not staked")
	ErrNoTokensProvided   = errors.New("no tokens to stake")
	ErrLockPeriodNotEnded = errors.New("lock period has not ended yet")

	// ErrArithmeticOverflow aborts a call whose decimal scaling or clock math does not fit
	ErrArithmeticOverflow = errors.New("arithmetic overflow")

	ErrVaultNotInitialized = errors.New("vault not initialized")
)

// Reason maps an error onto a short stable label for metrics and events
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAlreadyStaked):
		return "already_staked"
	case errors.Is(err, ErrNotStaked):
		return "not_staked"
	case errors.Is(err, ErrNoTokensProvided):
		return "no_tokens_provided"
	case errors.Is(err, ErrLockPeriodNotEnded):
		return "lock_period_not_ended"
	case errors.Is(err, ErrArithmeticOverflow), errors.Is(err, token.ErrOverflow):
		return "arithmetic_overflow"
	case errors.Is(err, ErrVaultNotInitialized):
		return "vault_not_initialized"
	case errors.Is(err, token.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, token.ErrMissingSignature):
		return "missing_signature"
	case errors.Is(err, token.ErrAccountNotFound):
		return "account_not_found"
	case errors.Is(err, token.ErrMintNotFound):
		return "mint_not_found"
	case errors.Is(err, token.ErrMintExists):
		return "mint_exists"
	case errors.Is(err, token.ErrMintMismatch), errors.Is(err, token.ErrOwnerMismatch):
		return "account_mismatch"
	default:
		return "internal"
	}
}
