package store

import (
	"fmt"
	"path/filepath"

	"github.com/mezonai/stakevault/db"
)

// StoreType represents the type of store implementation
type StoreType string

const (
	// LevelDBStoreType uses the LevelDB implementation
	LevelDBStoreType StoreType = "leveldb"

	// BoltStoreType uses a single bbolt file inside Directory
	BoltStoreType StoreType = "bolt"

	// RedisStoreType uses the Redis implementation
	RedisStoreType StoreType = "redis"

	// MemoryStoreType keeps everything in an in-memory LevelDB, for tests and dry runs
	MemoryStoreType StoreType = "memory"
)

const boltFileName = "stakevault.db"

// StoreConfig holds configuration for creating store instances
type StoreConfig struct {
	// Type specifies which store implementation to use
	Type StoreType `json:"type" yaml:"type" ini:"type"`

	// Directory is the database directory path (for file-based databases)
	Directory string `json:"directory" yaml:"directory" ini:"directory"`

	// RedisAddr and RedisDB are only read for the redis store
	RedisAddr string `json:"redis_addr" yaml:"redis_addr" ini:"redis_addr"`
	RedisDB   int    `json:"redis_db" yaml:"redis_db" ini:"redis_db"`
}

// Validate validates the store configuration
func (sc *StoreConfig) Validate() error {
	if sc.Type == "" {
		return fmt.Errorf("store type cannot be empty")
	}

	switch sc.Type {
	case LevelDBStoreType, BoltStoreType:
		if sc.Directory == "" {
			return fmt.Errorf("directory cannot be empty")
		}
		return nil
	case RedisStoreType:
		if sc.RedisAddr == "" {
			return fmt.Errorf("redis address cannot be empty")
		}
		return nil
	case MemoryStoreType:
		return nil
	default:
		return fmt.Errorf("unsupported store type: %s", sc.Type)
	}
}

// CreateProvider creates a database provider based on the configuration
func CreateProvider(config *StoreConfig) (db.DatabaseProvider, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	switch config.Type {
	case LevelDBStoreType:
		return db.NewLevelDBProvider(config.Directory)
	case BoltStoreType:
		return db.NewBoltProvider(filepath.Join(config.Directory, boltFileName))
	case RedisStoreType:
		return db.NewRedisProvider(config.RedisAddr, config.RedisDB)
	case MemoryStoreType:
		return db.NewMemLevelDBProvider()
	default:
		return nil, fmt.Errorf("unsupported store type: %s", config.Type)
	}
}

// Stores bundles every store sharing one provider
type Stores struct {
	provider      db.DatabaseProvider
	txManager     *db.DBTxManager
	TokenAccounts TokenAccountStore
	Mints         MintStore
	StakeInfos    StakeInfoStore
}

func NewStores(provider db.DatabaseProvider) (*Stores, error) {
	accStore, err := NewGenericTokenAccountStore(provider)
	if err != nil {
		return nil, fmt.Errorf("failed to create token account store: %w", err)
	}

	mintStore, err := NewGenericMintStore(provider)
	if err != nil {
		return nil, fmt.Errorf("failed to create mint store: %w", err)
	}

	stakeInfoStore, err := NewGenericStakeInfoStore(provider)
	if err != nil {
		return nil, fmt.Errorf("failed to create stake info store: %w", err)
	}

	return &Stores{
		provider:      provider,
		txManager:     db.NewDBTxManager(provider),
		TokenAccounts: accStore,
		Mints:         mintStore,
		StakeInfos:    stakeInfoStore,
	}, nil
}

// CreateStores opens the configured provider and wires the stores on top of it
func CreateStores(config *StoreConfig) (*Stores, error) {
	provider, err := CreateProvider(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider: %w", err)
	}
	stores, err := NewStores(provider)
	if err != nil {
		_ = provider.Close()
		return nil, err
	}
	return stores, nil
}

// Begin starts a staged transaction
func (s *Stores) Begin() *Txn {
	return newTxn(s)
}

func (s *Stores) Close() error {
	return s.provider.Close()
}
