package types

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	bin "github.com/gagliardetto/binary"
)

// StakeInfoAccountSize is the allocated account size: discriminator plus the padded struct (u64, bool, i64)
const StakeInfoAccountSize = 8 + 24

// StakeInfoDiscriminator prefixes every serialized StakeInfo, matching the Anchor account layout
var StakeInfoDiscriminator = accountDiscriminator("StakeInfo")

func accountDiscriminator(name string) [8]byte {
	sum := sha256.Sum256([]byte("account:" + name))
	var d [8]byte
	copy(d[:], sum[:8])
	return d
}

// StakeInfo is the per participant ledger entry.
// IsStaked implies LockEndTime > 0, !IsStaked implies LockEndTime == 0.
type StakeInfo struct {
	StakeAtSlot uint64 `json:"stake_at_slot"`
	IsStaked    bool   `json:"is_staked"`
	LockEndTime int64  `json:"lock_end_time"`
}

func (s *StakeInfo) Status() string {
	if s.IsStaked {
		return "staked"
	}
	return "unstaked"
}

// LockEnded reports whether withdrawal is permitted at unix time now
func (s *StakeInfo) LockEnded(now int64) bool {
	return now >= s.LockEndTime
}

func (s *StakeInfo) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := enc.WriteBytes(StakeInfoDiscriminator[:], false); err != nil {
		return err
	}
	if err := enc.WriteUint64(s.StakeAtSlot, binary.LittleEndian); err != nil {
		return err
	}
	if err := enc.WriteBool(s.IsStaked); err != nil {
		return err
	}
	return enc.WriteInt64(s.LockEndTime, binary.LittleEndian)
}

func (s *StakeInfo) UnmarshalWithDecoder(dec *bin.Decoder) error {
	disc, err := dec.ReadNBytes(8)
	if err != nil {
		return fmt.Errorf("read discriminator: %w", err)
	}
	if !bytes.Equal(disc, StakeInfoDiscriminator[:]) {
		return fmt.Errorf("invalid stake info discriminator %x", disc)
	}
	if s.StakeAtSlot, err = dec.ReadUint64(binary.LittleEndian); err != nil {
		return fmt.Errorf("read stake_at_slot: %w", err)
	}
	if s.IsStaked, err = dec.ReadBool(); err != nil {
		return fmt.Errorf("read is_staked: %w", err)
	}
	if s.LockEndTime, err = dec.ReadInt64(binary.LittleEndian); err != nil {
		return fmt.Errorf("read lock_end_time: %w", err)
	}
	return nil
}

// MarshalBinary returns the zero padded account data
func (s *StakeInfo) MarshalBinary() ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := s.MarshalWithEncoder(bin.NewBorshEncoder(buf)); err != nil {
		return nil, err
	}
	data := buf.Bytes()
	if len(data) < StakeInfoAccountSize {
		data = append(data, make([]byte, StakeInfoAccountSize-len(data))...)
	}
	return data, nil
}

func (s *StakeInfo) UnmarshalBinary(data []byte) error {
	return s.UnmarshalWithDecoder(bin.NewBorshDecoder(data))
}
