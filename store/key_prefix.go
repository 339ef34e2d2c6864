package store

// Declare database key prefix for objects
const (
	PrefixTokenAccount = "token_account:"
	PrefixMint         = "mint:"
	PrefixStakeInfo    = "stake_info:"
)
