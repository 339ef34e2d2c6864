package store

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"

	"github.com/mezonai/stakevault/db"
	"github.com/mezonai/stakevault/jsonx"
	"github.com/mezonai/stakevault/types"
)

type MintStore interface {
	StoreToBatch(batch db.DatabaseBatch, mint *types.Mint) error
	GetByAddr(addr solana.PublicKey) (*types.Mint, error)
}

type GenericMintStore struct {
	dbProvider db.DatabaseProvider
}

func NewGenericMintStore(dbProvider db.DatabaseProvider) (*GenericMintStore, error) {
	if dbProvider == nil {
		return nil, fmt.Errorf("provider cannot be nil")
	}
	return &GenericMintStore{dbProvider: dbProvider}, nil
}

func (ms *GenericMintStore) StoreToBatch(batch db.DatabaseBatch, mint *types.Mint) error {
	data, err := jsonx.Marshal(mint)
	if err != nil {
		return errors.Wrap(err, "failed to marshal mint")
	}
	batch.Put(mintKey(mint.Address), data)
	return nil
}

// GetByAddr returns nil, nil when the mint does not exist
func (ms *GenericMintStore) GetByAddr(addr solana.PublicKey) (*types.Mint, error) {
	data, err := ms.dbProvider.Get(mintKey(addr))
	if err != nil {
		return nil, errors.Wrapf(err, "could not get mint %s from db", addr)
	}
	if data == nil {
		return nil, nil
	}

	var mint types.Mint
	if err := jsonx.Unmarshal(data, &mint); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal mint %s", addr)
	}
	return &mint, nil
}

func mintKey(addr solana.PublicKey) []byte {
	return []byte(PrefixMint + addr.String())
}
