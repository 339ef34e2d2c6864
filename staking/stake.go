package staking

import (
	"fmt"
	"math"

	"github.com/gagliardetto/solana-go"

	"github.com/mezonai/stakevault/events"
	"github.com/mezonai/stakevault/logx"
	"github.com/mezonai/stakevault/monitoring"
	"github.com/mezonai/stakevault/store"
	"github.com/mezonai/stakevault/token"
	"github.com/mezonai/stakevault/types"
)

type StakeReceipt struct {
	Participant  solana.PublicKey `json:"participant"`
	StakeAccount solana.PublicKey `json:"stake_account"`
	Amount       uint64           `json:"amount"`
	BaseUnits    string           `json:"base_units"`
	StakeAtSlot  uint64           `json:"stake_at_slot"`
	LockEndTime  int64            `json:"lock_end_time"`
}

// Stake locks amount whole tokens from the participant's wallet token account into the
// participant's escrow for LockDuration seconds. The caller must have verified the
// participant's signature.
func (e *Engine) Stake(participant solana.PublicKey, amount uint64) (*StakeReceipt, error) {
	addrs, err := e.Addresses(participant)
	if err != nil {
		return nil, err
	}

	var receipt *StakeReceipt
	err = e.execute(OpStake, participant, func(txn *store.Txn) error {
		info, err := txn.GetStakeInfo(addrs.StakeInfo.Key)
		if err != nil {
			return err
		}
		if info != nil && info.IsStaked {
			return ErrAlreadyStaked
		}
		if amount == 0 {
			return ErrNoTokensProvided
		}

		clock := e.clock.Now()
		if clock.UnixTimestamp > math.MaxInt64-LockDuration {
			return fmt.Errorf("%w: lock end from timestamp %d", ErrArithmeticOverflow, clock.UnixTimestamp)
		}
		lockEnd := clock.UnixTimestamp + LockDuration

		mint, err := e.loadMint(txn)
		if err != nil {
			return err
		}
		scaled, err := e.scale(amount, mint)
		if err != nil {
			return err
		}

		if _, _, err := e.tokens.InitializeAccountIfNeeded(txn, addrs.StakeAccount.Key, e.mint, addrs.StakeAccount.Key); err != nil {
			return fmt.Errorf("stake account: %w", err)
		}
		if err := e.tokens.Transfer(txn, addrs.WalletTokenAccount, addrs.StakeAccount.Key, scaled, token.WalletAuthority(participant)); err != nil {
			return err
		}

		if err := txn.PutStakeInfo(addrs.StakeInfo.Key, &types.StakeInfo{
			StakeAtSlot: clock.Slot,
			IsStaked:    true,
			LockEndTime: lockEnd,
		}); err != nil {
			return err
		}

		receipt = &StakeReceipt{
			Participant:  participant,
			StakeAccount: addrs.StakeAccount.Key,
			Amount:       amount,
			BaseUnits:    scaled.Dec(),
			StakeAtSlot:  clock.Slot,
			LockEndTime:  lockEnd,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.adjustActiveStakes(1)
	monitoring.IncreaseStakeCount()
	logx.Info("STAKING", fmt.Sprintf("Staked | participant=%s | amount=%s | slot=%d | lock_end=%d",
		participant, receipt.BaseUnits, receipt.StakeAtSlot, receipt.LockEndTime))
	e.publish(events.NewStaked(participant.String(), receipt.BaseUnits, receipt.StakeAtSlot, receipt.LockEndTime))
	return receipt, nil
}
