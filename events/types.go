package events

import (
	"time"
)

// EventType is an enum-like string type for staking events
type EventType string

const (
	EventVaultInitialized EventType = "VaultInitialized"
	EventStaked           EventType = "Staked"
	EventDestaked         EventType = "Destaked"
	EventOperationFailed  EventType = "OperationFailed"
)

// StakingEvent represents anything a committed or rejected call produced
type StakingEvent interface {
	Type() EventType
	Timestamp() time.Time
	Participant() string
}

type baseEvent struct {
	participant string
	timestamp   time.Time
}

func (e baseEvent) Timestamp() time.Time {
	return e.timestamp
}

func (e baseEvent) Participant() string {
	return e.participant
}

// VaultInitialized is emitted only when initialize actually created the vault
type VaultInitialized struct {
	baseEvent
	Vault string
}

func NewVaultInitialized(payer, vault string) *VaultInitialized {
	return &VaultInitialized{
		baseEvent: baseEvent{participant: payer, timestamp: time.Now()},
		Vault:     vault,
	}
}

func (e *VaultInitialized) Type() EventType {
	return EventVaultInitialized
}

type Staked struct {
	baseEvent
	Amount      string
	Slot        uint64
	LockEndTime int64
}

func NewStaked(participant, amount string, slot uint64, lockEndTime int64) *Staked {
	return &Staked{
		baseEvent:   baseEvent{participant: participant, timestamp: time.Now()},
		Amount:      amount,
		Slot:        slot,
		LockEndTime: lockEndTime,
	}
}

func (e *Staked) Type() EventType {
	return EventStaked
}

type Destaked struct {
	baseEvent
	Reward    string
	Principal string
	Slot      uint64
}

func NewDestaked(participant, reward, principal string, slot uint64) *Destaked {
	return &Destaked{
		baseEvent: baseEvent{participant: participant, timestamp: time.Now()},
		Reward:    reward,
		Principal: principal,
		Slot:      slot,
	}
}

func (e *Destaked) Type() EventType {
	return EventDestaked
}

// OperationFailed carries the reason a call was rolled back
type OperationFailed struct {
	baseEvent
	Operation string
	Reason    string
}

func NewOperationFailed(operation, participant, reason string) *OperationFailed {
	return &OperationFailed{
		baseEvent: baseEvent{participant: participant, timestamp: time.Now()},
		Operation: operation,
		Reason:    reason,
	}
}

func (e *OperationFailed) Type() EventType {
	return EventOperationFailed
}
