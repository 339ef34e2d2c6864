// Package staking implements the time-locked staking program: participants lock
// tokens in a per-participant escrow and, once the lock expires, withdraw the
// principal plus a slot-based reward paid from the shared vault.
package staking

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"

	"github.com/mezonai/stakevault/events"
	"github.com/mezonai/stakevault/logx"
	"github.com/mezonai/stakevault/monitoring"
	"github.com/mezonai/stakevault/pda"
	"github.com/mezonai/stakevault/store"
	"github.com/mezonai/stakevault/sysvar"
	"github.com/mezonai/stakevault/token"
	"github.com/mezonai/stakevault/types"
)

type Config struct {
	ProgramID solana.PublicKey
	Mint      solana.PublicKey
	Stores    *store.Stores
	Clock     sysvar.ClockSource
	// EventBus is optional
	EventBus *events.EventBus
}

// Engine executes one call at a time. Each call runs inside a staged store transaction
// that is either committed whole or discarded whole.
type Engine struct {
	mu sync.Mutex

	programID solana.PublicKey
	mint      solana.PublicKey
	stores    *store.Stores
	clock     sysvar.ClockSource
	tokens    *token.Program
	eventBus  *events.EventBus
	vault     pda.Address

	activeStakes atomic.Int64
}

// Addresses are every account a participant's calls touch
type Addresses struct {
	Participant        solana.PublicKey `json:"participant"`
	Vault              pda.Address      `json:"vault"`
	StakeInfo          pda.Address      `json:"stake_info"`
	StakeAccount       pda.Address      `json:"stake_account"`
	WalletTokenAccount solana.PublicKey `json:"wallet_token_account"`
}

func NewEngine(cfg Config) (*Engine, error) {
	if cfg.Stores == nil {
		return nil, errors.New("stores cannot be nil")
	}
	if cfg.Clock == nil {
		return nil, errors.New("clock cannot be nil")
	}
	if cfg.ProgramID.IsZero() || cfg.Mint.IsZero() {
		return nil, errors.New("program id and mint are required")
	}

	vault, err := pda.VaultAddress(cfg.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("derive vault: %w", err)
	}

	e := &Engine{
		programID: cfg.ProgramID,
		mint:      cfg.Mint,
		stores:    cfg.Stores,
		clock:     cfg.Clock,
		tokens:    token.NewProgram(cfg.ProgramID),
		eventBus:  cfg.EventBus,
		vault:     vault,
	}

	if n, err := cfg.Stores.StakeInfos.Count(true); err == nil {
		e.activeStakes.Store(int64(n))
		monitoring.SetActiveStakes(n)
	} else {
		logx.Warn("STAKING", "Could not count active stakes: ", err)
	}

	return e, nil
}

func (e *Engine) ProgramID() solana.PublicKey {
	return e.programID
}

func (e *Engine) Mint() solana.PublicKey {
	return e.mint
}

func (e *Engine) VaultAddress() solana.PublicKey {
	return e.vault.Key
}

// Now reads the clock the engine stamps ledger entries with
func (e *Engine) Now() sysvar.Clock {
	return e.clock.Now()
}

func (e *Engine) Addresses(participant solana.PublicKey) (*Addresses, error) {
	info, err := pda.StakeInfoAddress(e.programID, participant)
	if err != nil {
		return nil, err
	}
	escrow, err := pda.StakeAccountAddress(e.programID, participant)
	if err != nil {
		return nil, err
	}
	wallet, err := pda.AssociatedTokenAddress(participant, e.mint)
	if err != nil {
		return nil, err
	}
	return &Addresses{
		Participant:        participant,
		Vault:              e.vault,
		StakeInfo:          info,
		StakeAccount:       escrow,
		WalletTokenAccount: wallet,
	}, nil
}

// execute serializes calls and gives fn an all-or-nothing view of the state
func (e *Engine) execute(op string, participant solana.PublicKey, fn func(txn *store.Txn) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	txn := e.stores.Begin()
	if err := fn(txn); err != nil {
		txn.Discard()
		e.fail(op, participant, err)
		return err
	}

	writes := txn.Writes()
	if err := txn.Commit(); err != nil {
		err = fmt.Errorf("commit %s: %w", op, err)
		e.fail(op, participant, err)
		return err
	}
	logx.Debug("STAKING", fmt.Sprintf("%s committed | participant=%s | writes=%d", op, participant, writes))
	return nil
}

func (e *Engine) fail(op string, participant solana.PublicKey, err error) {
	reason := Reason(err)
	monitoring.RecordFailedOp(op, reason)
	logx.Warn("STAKING", fmt.Sprintf("%s rolled back | participant=%s | reason=%s | err=%v", op, participant, reason, err))
	e.publish(events.NewOperationFailed(op, participant.String(), err.Error()))
}

func (e *Engine) publish(event events.StakingEvent) {
	if e.eventBus != nil {
		e.eventBus.Publish(event)
	}
}

func (e *Engine) loadMint(txn *store.Txn) (*types.Mint, error) {
	mint, err := txn.GetMint(e.mint)
	if err != nil {
		return nil, err
	}
	if mint == nil {
		return nil, fmt.Errorf("%w: %s", token.ErrMintNotFound, e.mint)
	}
	return mint, nil
}

func (e *Engine) scale(amount uint64, mint *types.Mint) (*uint256.Int, error) {
	scaled, ok := mint.ToBaseUnits(amount)
	if !ok {
		return nil, fmt.Errorf("%w: %d * 10^%d", ErrArithmeticOverflow, amount, mint.Decimals)
	}
	return scaled, nil
}

func (e *Engine) adjustActiveStakes(delta int64) {
	monitoring.SetActiveStakes(int(e.activeStakes.Add(delta)))
}

// ActiveStakes is the number of ledger entries currently staked
func (e *Engine) ActiveStakes() int {
	return int(e.activeStakes.Load())
}
