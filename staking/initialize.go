package staking

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/mezonai/stakevault/events"
	"github.com/mezonai/stakevault/logx"
	"github.com/mezonai/stakevault/monitoring"
	"github.com/mezonai/stakevault/pda"
	"github.com/mezonai/stakevault/store"
	"github.com/mezonai/stakevault/token"
)

// Initialize creates the vault token account for the configured mint if it does not exist yet.
// The vault is owned by its own program address, so only the vault signer can debit it.
func (e *Engine) Initialize(payer solana.PublicKey) (created bool, err error) {
	err = e.execute(OpInitialize, payer, func(txn *store.Txn) error {
		_, fresh, err := e.tokens.InitializeAccountIfNeeded(txn, e.vault.Key, e.mint, e.vault.Key)
		if err != nil {
			return fmt.Errorf("initialize vault: %w", err)
		}
		created = fresh
		return nil
	})
	if err != nil {
		return false, err
	}

	monitoring.IncreaseInitializeCount()
	if created {
		logx.Info("STAKING", fmt.Sprintf("Vault %s initialized by %s", e.vault.Key, payer))
		e.publish(events.NewVaultInitialized(payer.String(), e.vault.Key.String()))
	} else {
		logx.Info("STAKING", fmt.Sprintf("Vault %s already initialized", e.vault.Key))
	}
	return created, nil
}

// CreateMint registers the staking mint. Deployment tooling calls it once before Initialize.
func (e *Engine) CreateMint(authority solana.PublicKey, decimals uint8) error {
	return e.execute(OpCreateMint, authority, func(txn *store.Txn) error {
		_, err := e.tokens.CreateMint(txn, e.mint, decimals, authority)
		return err
	})
}

// CreateWalletAccount opens the associated token account of owner for the staking mint
func (e *Engine) CreateWalletAccount(owner solana.PublicKey) (solana.PublicKey, error) {
	addr, err := e.walletAccount(owner)
	if err != nil {
		return solana.PublicKey{}, err
	}
	err = e.execute(OpCreateAccount, owner, func(txn *store.Txn) error {
		_, err := e.tokens.InitializeAccount(txn, addr, e.mint, owner)
		return err
	})
	if err != nil {
		return solana.PublicKey{}, err
	}
	return addr, nil
}

// MintTo issues amount whole tokens into dest, signed by the mint authority
func (e *Engine) MintTo(authority, dest solana.PublicKey, amount uint64) error {
	if amount == 0 {
		return ErrNoTokensProvided
	}
	return e.execute(OpMintTo, authority, func(txn *store.Txn) error {
		mint, err := e.loadMint(txn)
		if err != nil {
			return err
		}
		scaled, err := e.scale(amount, mint)
		if err != nil {
			return err
		}
		return e.tokens.MintTo(txn, e.mint, dest, scaled, token.WalletAuthority(authority))
	})
}

func (e *Engine) walletAccount(owner solana.PublicKey) (solana.PublicKey, error) {
	return pda.AssociatedTokenAddress(owner, e.mint)
}
