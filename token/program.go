// Package token is the custodial token program: mints, token accounts and
// authority-checked transfers, executed against a staged store transaction.
package token

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"

	"github.com/mezonai/stakevault/logx"
	"github.com/mezonai/stakevault/pda"
	"github.com/mezonai/stakevault/store"
	"github.com/mezonai/stakevault/types"
)

var (
	ErrAccountNotFound   = errors.New("token: account not found")
	ErrAccountExists     = errors.New("token: account already exists")
	ErrMintNotFound      = errors.New("token: mint not found")
	ErrMintExists        = errors.New("token: mint already exists")
	ErrMintMismatch      = errors.New("token: account mint mismatch")
	ErrOwnerMismatch     = errors.New("token: account owner mismatch")
	ErrMissingSignature  = errors.New("token: owner signature missing")
	ErrInsufficientFunds = errors.New("token: insufficient funds")
	ErrOverflow          = errors.New("token: amount overflow")
)

var maxAmount = uint256.NewInt(^uint64(0))

// Authority lists who authorized the current call: wallets whose signatures the caller has
// verified, and program-derived signers proven by seeds.
type Authority struct {
	Wallets []solana.PublicKey
	PDAs    []pda.Signer
}

func WalletAuthority(keys ...solana.PublicKey) Authority {
	return Authority{Wallets: keys}
}

func PDAAuthority(signers ...pda.Signer) Authority {
	return Authority{PDAs: signers}
}

type Program struct {
	// pdaProgramID is the only program whose derived addresses PDA signers may prove
	pdaProgramID solana.PublicKey
}

func NewProgram(pdaProgramID solana.PublicKey) *Program {
	return &Program{pdaProgramID: pdaProgramID}
}

func (p *Program) CreateMint(txn *store.Txn, address solana.PublicKey, decimals uint8, mintAuthority solana.PublicKey) (*types.Mint, error) {
	existing, err := txn.GetMint(address)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrMintExists, address)
	}

	mint := &types.Mint{
		Address:       address,
		Decimals:      decimals,
		Supply:        uint256.NewInt(0),
		MintAuthority: mintAuthority,
	}
	if err := txn.PutMint(mint); err != nil {
		return nil, err
	}
	logx.Info("TOKEN", fmt.Sprintf("Created mint %s decimals=%d", address, decimals))
	return mint, nil
}

// InitializeAccount creates a zero balance account, failing if one exists at address
func (p *Program) InitializeAccount(txn *store.Txn, address, mintAddr, owner solana.PublicKey) (*types.TokenAccount, error) {
	acc, created, err := p.InitializeAccountIfNeeded(txn, address, mintAddr, owner)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, fmt.Errorf("%w: %s", ErrAccountExists, address)
	}
	return acc, nil
}

// InitializeAccountIfNeeded returns the existing account after checking its mint and owner,
// or creates it inside the same transaction.
func (p *Program) InitializeAccountIfNeeded(txn *store.Txn, address, mintAddr, owner solana.PublicKey) (*types.TokenAccount, bool, error) {
	mint, err := txn.GetMint(mintAddr)
	if err != nil {
		return nil, false, err
	}
	if mint == nil {
		return nil, false, fmt.Errorf("%w: %s", ErrMintNotFound, mintAddr)
	}

	acc, err := txn.GetTokenAccount(address)
	if err != nil {
		return nil, false, err
	}
	if acc != nil {
		if !acc.Mint.Equals(mintAddr) {
			return nil, false, fmt.Errorf("%w: %s holds %s", ErrMintMismatch, address, acc.Mint)
		}
		if !acc.Owner.Equals(owner) {
			return nil, false, fmt.Errorf("%w: %s owned by %s", ErrOwnerMismatch, address, acc.Owner)
		}
		return acc, false, nil
	}

	acc = types.NewTokenAccount(address, mintAddr, owner)
	if err := txn.PutTokenAccount(acc); err != nil {
		return nil, false, err
	}
	logx.Debug("TOKEN", fmt.Sprintf("Initialized token account %s owner=%s", address, owner))
	return acc, true, nil
}

// MintTo issues new supply into dest, signed by the mint authority
func (p *Program) MintTo(txn *store.Txn, mintAddr, dest solana.PublicKey, amount *uint256.Int, auth Authority) error {
	mint, err := txn.GetMint(mintAddr)
	if err != nil {
		return err
	}
	if mint == nil {
		return fmt.Errorf("%w: %s", ErrMintNotFound, mintAddr)
	}
	if !p.authorized(mint.MintAuthority, auth) {
		return fmt.Errorf("%w: mint authority %s", ErrMissingSignature, mint.MintAuthority)
	}

	acc, err := p.loadAccount(txn, dest, mintAddr)
	if err != nil {
		return err
	}

	supply, err := checkedAdd(mint.Supply, amount)
	if err != nil {
		return err
	}
	balance, err := checkedAdd(acc.Amount, amount)
	if err != nil {
		return err
	}

	mint.Supply = supply
	acc.Amount = balance
	if err := txn.PutMint(mint); err != nil {
		return err
	}
	return txn.PutTokenAccount(acc)
}

// Transfer moves amount between two accounts of the same mint. The source owner must be
// among the wallet signers or be proven by one of the PDA signers.
func (p *Program) Transfer(txn *store.Txn, from, to solana.PublicKey, amount *uint256.Int, auth Authority) error {
	src, err := txn.GetTokenAccount(from)
	if err != nil {
		return err
	}
	if src == nil {
		return fmt.Errorf("%w: source %s", ErrAccountNotFound, from)
	}
	dst, err := p.loadAccount(txn, to, src.Mint)
	if err != nil {
		return err
	}

	if !p.authorized(src.Owner, auth) {
		return fmt.Errorf("%w: %s owned by %s", ErrMissingSignature, from, src.Owner)
	}
	if src.Balance().Lt(amount) {
		return fmt.Errorf("%w: %s has %s, needs %s", ErrInsufficientFunds, from, src.Balance().Dec(), amount.Dec())
	}

	src.Amount = new(uint256.Int).Sub(src.Balance(), amount)
	credited, err := checkedAdd(dst.Amount, amount)
	if err != nil {
		return err
	}
	dst.Amount = credited

	if err := txn.PutTokenAccount(src); err != nil {
		return err
	}
	if err := txn.PutTokenAccount(dst); err != nil {
		return err
	}
	logx.Debug("TOKEN", fmt.Sprintf("Transfer %s from %s to %s", amount.Dec(), from, to))
	return nil
}

func (p *Program) loadAccount(txn *store.Txn, addr, mintAddr solana.PublicKey) (*types.TokenAccount, error) {
	acc, err := txn.GetTokenAccount(addr)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, addr)
	}
	if !acc.Mint.Equals(mintAddr) {
		return nil, fmt.Errorf("%w: %s holds %s, expected %s", ErrMintMismatch, addr, acc.Mint, mintAddr)
	}
	return acc, nil
}

func (p *Program) authorized(owner solana.PublicKey, auth Authority) bool {
	for _, w := range auth.Wallets {
		if w.Equals(owner) {
			return true
		}
	}
	for _, s := range auth.PDAs {
		if s.Proves(p.pdaProgramID, owner) {
			return true
		}
	}
	return false
}

// checkedAdd keeps balances within the u64 range of on-chain token amounts
func checkedAdd(a, b *uint256.Int) (*uint256.Int, error) {
	if a == nil {
		a = uint256.NewInt(0)
	}
	sum, overflow := new(uint256.Int).AddOverflow(a, b)
	if overflow || sum.Gt(maxAmount) {
		return nil, ErrOverflow
	}
	return sum, nil
}
