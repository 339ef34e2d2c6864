// Package pda derives the program addresses the staking program owns and
// models the signing capability it holds over them.
package pda

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Fixed seed namespaces
var (
	VaultSeed     = []byte("vault")
	StakeInfoSeed = []byte("stake_info")
	TokenSeed     = []byte("token")
)

// Address is a derived address together with the bump that pushed it off the ed25519 curve
type Address struct {
	Key  solana.PublicKey `json:"key"`
	Bump uint8            `json:"bump"`
}

// Find searches bumps from 255 down, exactly as the on-chain runtime does
func Find(programID solana.PublicKey, seeds ...[]byte) (Address, error) {
	key, bump, err := solana.FindProgramAddress(seeds, programID)
	if err != nil {
		return Address{}, fmt.Errorf("find program address: %w", err)
	}
	return Address{Key: key, Bump: bump}, nil
}

func VaultAddress(programID solana.PublicKey) (Address, error) {
	return Find(programID, VaultSeed)
}

func StakeInfoAddress(programID, participant solana.PublicKey) (Address, error) {
	return Find(programID, StakeInfoSeed, participant.Bytes())
}

func StakeAccountAddress(programID, participant solana.PublicKey) (Address, error) {
	return Find(programID, TokenSeed, participant.Bytes())
}

// AssociatedTokenAddress is the canonical wallet token account of owner for mint
func AssociatedTokenAddress(owner, mint solana.PublicKey) (solana.PublicKey, error) {
	key, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("find associated token address: %w", err)
	}
	return key, nil
}

// Signer is a delegated signing capability: whoever holds the seeds and bump can
// authorize debits from the address they derive under the owning program.
type Signer struct {
	Seeds [][]byte
	Bump  uint8
}

func VaultSigner(bump uint8) Signer {
	return Signer{Seeds: [][]byte{VaultSeed}, Bump: bump}
}

func StakeAccountSigner(participant solana.PublicKey, bump uint8) Signer {
	return Signer{Seeds: [][]byte{TokenSeed, participant.Bytes()}, Bump: bump}
}

// Address recreates the program address from seeds plus bump
func (s Signer) Address(programID solana.PublicKey) (solana.PublicKey, error) {
	seeds := make([][]byte, 0, len(s.Seeds)+1)
	seeds = append(seeds, s.Seeds...)
	seeds = append(seeds, []byte{s.Bump})
	return solana.CreateProgramAddress(seeds, programID)
}

// Proves reports whether this signer derives expected under programID
func (s Signer) Proves(programID, expected solana.PublicKey) bool {
	addr, err := s.Address(programID)
	if err != nil {
		return false
	}
	return addr.Equals(expected)
}
