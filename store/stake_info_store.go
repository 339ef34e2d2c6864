package store

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"

	"github.com/mezonai/stakevault/db"
	"github.com/mezonai/stakevault/types"
)

// StakeInfoStore persists ledger entries keyed by their derived address, in the binary account layout
type StakeInfoStore interface {
	StoreToBatch(batch db.DatabaseBatch, addr solana.PublicKey, info *types.StakeInfo) error
	GetByAddr(addr solana.PublicKey) (*types.StakeInfo, error)
	Count(onlyStaked bool) (int, error)
}

type GenericStakeInfoStore struct {
	dbProvider db.DatabaseProvider
}

func NewGenericStakeInfoStore(dbProvider db.DatabaseProvider) (*GenericStakeInfoStore, error) {
	if dbProvider == nil {
		return nil, fmt.Errorf("provider cannot be nil")
	}
	return &GenericStakeInfoStore{dbProvider: dbProvider}, nil
}

func (ss *GenericStakeInfoStore) StoreToBatch(batch db.DatabaseBatch, addr solana.PublicKey, info *types.StakeInfo) error {
	data, err := info.MarshalBinary()
	if err != nil {
		return errors.Wrap(err, "failed to encode stake info")
	}
	batch.Put(stakeInfoKey(addr), data)
	return nil
}

// GetByAddr returns nil, nil for a participant that never staked
func (ss *GenericStakeInfoStore) GetByAddr(addr solana.PublicKey) (*types.StakeInfo, error) {
	data, err := ss.dbProvider.Get(stakeInfoKey(addr))
	if err != nil {
		return nil, errors.Wrapf(err, "could not get stake info %s from db", addr)
	}
	if data == nil {
		return nil, nil
	}

	var info types.StakeInfo
	if err := info.UnmarshalBinary(data); err != nil {
		return nil, errors.Wrapf(err, "failed to decode stake info %s", addr)
	}
	return &info, nil
}

// Count scans every ledger entry; it needs an iterable provider
func (ss *GenericStakeInfoStore) Count(onlyStaked bool) (int, error) {
	it, ok := ss.dbProvider.(db.IterableProvider)
	if !ok {
		return 0, fmt.Errorf("provider %T does not support iteration", ss.dbProvider)
	}

	count := 0
	var decodeErr error
	err := it.IteratePrefix([]byte(PrefixStakeInfo), func(key, value []byte) bool {
		var info types.StakeInfo
		if err := info.UnmarshalBinary(value); err != nil {
			decodeErr = errors.Wrapf(err, "failed to decode %s", key)
			return false
		}
		if !onlyStaked || info.IsStaked {
			count++
		}
		return true
	})
	if err != nil {
		return 0, err
	}
	return count, decodeErr
}

func stakeInfoKey(addr solana.PublicKey) []byte {
	return []byte(PrefixStakeInfo + addr.String())
}
