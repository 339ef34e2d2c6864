package errors

import (
	"github.com/mezonai/stakevault/jsonx"
)

// NetworkErrorCode represents standardized error codes for network operations
type NetworkErrorCode string

const (
	// General errors
	ErrCodeInternal NetworkErrorCode = "internal_error"

	// Validation errors
	ErrCodeInvalidRequest   NetworkErrorCode = "invalid_request"
	ErrCodeInvalidSignature NetworkErrorCode = "invalid_signature"
	ErrCodeInvalidAddress   NetworkErrorCode = "invalid_address"
	ErrCodeInvalidAmount    NetworkErrorCode = "invalid_amount"
	ErrCodeStaleRequest     NetworkErrorCode = "stale_request"
	ErrCodeReplayedRequest  NetworkErrorCode = "replayed_request"

	// System errors
	ErrCodeRateLimited NetworkErrorCode = "rate_limited"

	// Staking errors
	ErrCodeAlreadyStaked       NetworkErrorCode = "already_staked"
	ErrCodeNotStaked           NetworkErrorCode = "not_staked"
	ErrCodeNoTokensProvided    NetworkErrorCode = "no_tokens_provided"
	ErrCodeLockPeriodNotEnded  NetworkErrorCode = "lock_period_not_ended"
	ErrCodeArithmeticOverflow  NetworkErrorCode = "arithmetic_overflow"
	ErrCodeVaultNotInitialized NetworkErrorCode = "vault_not_initialized"

	// Token errors
	ErrCodeInsufficientFunds NetworkErrorCode = "insufficient_funds"
	ErrCodeMissingSignature  NetworkErrorCode = "missing_signature"
	ErrCodeAccountNotFound   NetworkErrorCode = "account_not_found"
	ErrCodeMintNotFound      NetworkErrorCode = "mint_not_found"
	ErrCodeMintExists        NetworkErrorCode = "mint_exists"
	ErrCodeAccountMismatch   NetworkErrorCode = "account_mismatch"
)

// NetworkError represents a standardized network error
type NetworkError struct {
	Code    NetworkErrorCode `json:"code"`
	Message string           `json:"message"`
}

// Error implements the error interface
func (e *NetworkError) Error() string {
	err, _ := jsonx.Marshal(NetworkError{
		Code:    e.Code,
		Message: e.Message,
	})
	return string(err)
}

// Error message constants - user-friendly and concise
const (
	ErrMsgInvalidRequest      = "Request format is invalid"
	ErrMsgInvalidSignature    = "Request signature is invalid"
	ErrMsgInvalidAddress      = "Wallet address is invalid"
	ErrMsgInvalidAmount       = "Amount is invalid or zero"
	ErrMsgStaleRequest        = "Request timestamp is outside the allowed window"
	ErrMsgReplayedRequest     = "Request was already submitted"
	ErrMsgAlreadyStaked       = "Tokens are already staked"
	ErrMsgNotStaked           = "Tokens are not staked"
	ErrMsgNoTokensProvided    = "No tokens to stake"
	ErrMsgLockPeriodNotEnded  = "Lock period has not ended yet"
	ErrMsgArithmeticOverflow  = "Amount is too large"
	ErrMsgVaultNotInitialized = "Vault has not been initialized"
	ErrMsgInsufficientFunds   = "Not enough balance in the source account"
	ErrMsgMissingSignature    = "Account owner did not sign"
	ErrMsgAccountNotFound     = "Account does not exist"
	ErrMsgMintNotFound        = "Mint does not exist"
	ErrMsgMintExists          = "Mint already exists"
	ErrMsgAccountMismatch     = "Account belongs to another mint or owner"
	ErrMsgRateLimited         = "Too many requests, please slow down"
	ErrMsgInternal            = "Server error, please try again"
)

var messages = map[NetworkErrorCode]string{
	ErrCodeInvalidRequest:      ErrMsgInvalidRequest,
	ErrCodeInvalidSignature:    ErrMsgInvalidSignature,
	ErrCodeInvalidAddress:      ErrMsgInvalidAddress,
	ErrCodeInvalidAmount:       ErrMsgInvalidAmount,
	ErrCodeStaleRequest:        ErrMsgStaleRequest,
	ErrCodeReplayedRequest:     ErrMsgReplayedRequest,
	ErrCodeAlreadyStaked:       ErrMsgAlreadyStaked,
	ErrCodeNotStaked:           ErrMsgNotStaked,
	ErrCodeNoTokensProvided:    ErrMsgNoTokensProvided,
	ErrCodeLockPeriodNotEnded:  ErrMsgLockPeriodNotEnded,
	ErrCodeArithmeticOverflow:  ErrMsgArithmeticOverflow,
	ErrCodeVaultNotInitialized: ErrMsgVaultNotInitialized,
	ErrCodeInsufficientFunds:   ErrMsgInsufficientFunds,
	ErrCodeMissingSignature:    ErrMsgMissingSignature,
	ErrCodeAccountNotFound:     ErrMsgAccountNotFound,
	ErrCodeMintNotFound:        ErrMsgMintNotFound,
	ErrCodeMintExists:          ErrMsgMintExists,
	ErrCodeAccountMismatch:     ErrMsgAccountMismatch,
	ErrCodeRateLimited:         ErrMsgRateLimited,
	ErrCodeInternal:            ErrMsgInternal,
}

// NewError creates a new NetworkError and returns it as error interface
func NewError(code NetworkErrorCode, message string) error {
	return &NetworkError{
		Code:    code,
		Message: message,
	}
}

// FromCode builds the error with its standard message, falling back to internal_error
// for unknown codes.
func FromCode(code string) *NetworkError {
	c := NetworkErrorCode(code)
	msg, ok := messages[c]
	if !ok {
		return &NetworkError{Code: ErrCodeInternal, Message: ErrMsgInternal}
	}
	return &NetworkError{Code: c, Message: msg}
}
