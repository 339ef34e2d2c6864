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
	"github.com/mezonai/stakevault/types"
)

type DestakeReceipt struct {
	Participant  solana.PublicKey `json:"participant"`
	SlotsElapsed uint64           `json:"slots_elapsed"`
	Reward       string           `json:"reward"`
	Principal    string           `json:"principal"`
	Slot         uint64           `json:"slot"`
}

// Destake pays the slot reward out of the vault, returns the whole escrow balance to the
// participant's wallet token account and resets the ledger entry. The reward transfer runs
// first; if the vault cannot cover it nothing changes and the participant stays staked.
func (e *Engine) Destake(participant solana.PublicKey) (*DestakeReceipt, error) {
	addrs, err := e.Addresses(participant)
	if err != nil {
		return nil, err
	}

	var (
		receipt        *DestakeReceipt
		paid, returned uint64
	)
	err = e.execute(OpDestake, participant, func(txn *store.Txn) error {
		info, err := txn.GetStakeInfo(addrs.StakeInfo.Key)
		if err != nil {
			return err
		}
		if info == nil || !info.IsStaked {
			return ErrNotStaked
		}

		clock := e.clock.Now()
		if !info.LockEnded(clock.UnixTimestamp) {
			return fmt.Errorf("%w: unlocks at %d, now %d", ErrLockPeriodNotEnded, info.LockEndTime, clock.UnixTimestamp)
		}
		if clock.Slot < info.StakeAtSlot {
			return fmt.Errorf("%w: slot %d before stake slot %d", ErrArithmeticOverflow, clock.Slot, info.StakeAtSlot)
		}
		slotsElapsed := clock.Slot - info.StakeAtSlot

		mint, err := e.loadMint(txn)
		if err != nil {
			return err
		}
		reward, err := e.scale(slotsElapsed, mint)
		if err != nil {
			return err
		}

		vault, err := txn.GetTokenAccount(addrs.Vault.Key)
		if err != nil {
			return err
		}
		if vault == nil {
			return ErrVaultNotInitialized
		}
		vaultAuth := token.PDAAuthority(pda.VaultSigner(addrs.Vault.Bump))
		if err := e.tokens.Transfer(txn, addrs.Vault.Key, addrs.WalletTokenAccount, reward, vaultAuth); err != nil {
			return fmt.Errorf("pay reward: %w", err)
		}

		escrow, err := txn.GetTokenAccount(addrs.StakeAccount.Key)
		if err != nil {
			return err
		}
		if escrow == nil {
			return fmt.Errorf("%w: stake account %s", token.ErrAccountNotFound, addrs.StakeAccount.Key)
		}
		principal := escrow.Balance()
		escrowAuth := token.PDAAuthority(pda.StakeAccountSigner(participant, addrs.StakeAccount.Bump))
		if err := e.tokens.Transfer(txn, addrs.StakeAccount.Key, addrs.WalletTokenAccount, principal, escrowAuth); err != nil {
			return fmt.Errorf("return principal: %w", err)
		}

		if err := txn.PutStakeInfo(addrs.StakeInfo.Key, &types.StakeInfo{
			StakeAtSlot: clock.Slot,
			IsStaked:    false,
			LockEndTime: 0,
		}); err != nil {
			return err
		}

		receipt = &DestakeReceipt{
			Participant:  participant,
			SlotsElapsed: slotsElapsed,
			Reward:       reward.Dec(),
			Principal:    principal.Dec(),
			Slot:         clock.Slot,
		}
		paid, returned = reward.Uint64(), principal.Uint64()
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.adjustActiveStakes(-1)
	monitoring.IncreaseDestakeCount()
	monitoring.RecordPayout(paid, returned)
	logx.Info("STAKING", fmt.Sprintf("Destaked | participant=%s | reward=%s | principal=%s | slots=%d",
		participant, receipt.Reward, receipt.Principal, receipt.SlotsElapsed))
	e.publish(events.NewDestaked(participant.String(), receipt.Reward, receipt.Principal, receipt.Slot))
	return receipt, nil
}
