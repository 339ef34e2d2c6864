package store

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"

	"github.com/mezonai/stakevault/db"
	"github.com/mezonai/stakevault/jsonx"
	"github.com/mezonai/stakevault/types"
)

type TokenAccountStore interface {
	StoreToBatch(batch db.DatabaseBatch, account *types.TokenAccount) error
	GetByAddr(addr solana.PublicKey) (*types.TokenAccount, error)
	ExistsByAddr(addr solana.PublicKey) (bool, error)
}

type GenericTokenAccountStore struct {
	dbProvider db.DatabaseProvider
}

func NewGenericTokenAccountStore(dbProvider db.DatabaseProvider) (*GenericTokenAccountStore, error) {
	if dbProvider == nil {
		return nil, fmt.Errorf("provider cannot be nil")
	}

	return &GenericTokenAccountStore{
		dbProvider: dbProvider,
	}, nil
}

// StoreToBatch queues the account write into batch; nothing is persisted until the batch is written
func (as *GenericTokenAccountStore) StoreToBatch(batch db.DatabaseBatch, account *types.TokenAccount) error {
	data, err := jsonx.Marshal(account)
	if err != nil {
		return errors.Wrap(err, "failed to marshal token account")
	}
	batch.Put(tokenAccountKey(account.Address), data)
	return nil
}

// GetByAddr returns account instance from db, return both nil if not exist
func (as *GenericTokenAccountStore) GetByAddr(addr solana.PublicKey) (*types.TokenAccount, error) {
	data, err := as.dbProvider.Get(tokenAccountKey(addr))
	if err != nil {
		return nil, errors.Wrapf(err, "could not get token account %s from db", addr)
	}
	if data == nil {
		return nil, nil
	}

	var acc types.TokenAccount
	if err := jsonx.Unmarshal(data, &acc); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal token account %s", addr)
	}
	return &acc, nil
}

func (as *GenericTokenAccountStore) ExistsByAddr(addr solana.PublicKey) (bool, error) {
	return as.dbProvider.Has(tokenAccountKey(addr))
}

func tokenAccountKey(addr solana.PublicKey) []byte {
	return []byte(PrefixTokenAccount + addr.String())
}
