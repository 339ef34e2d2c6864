package cmd

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/mezonai/stakevault/config"
	"github.com/mezonai/stakevault/logx"
	"github.com/mezonai/stakevault/staking"
	"github.com/mezonai/stakevault/store"
	"github.com/mezonai/stakevault/sysvar"
)

var (
	initDataDir     string
	initDatabase    string
	initDecimals    uint8
	initPrivKeyPath string
	initProgramID   string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize node by generating the mint authority key, the mint and the vault",
	Long: `Initialize a new staking node by:
- Generating a new Ed25519 mint authority key (or using provided one)
- Writing program.yml and node.ini into the config directory
- Creating the staking mint and the vault token account`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return initializeNode()
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringVar(&initDataDir, "data-dir", "./data", "Directory to save node data")
	initCmd.Flags().StringVar(&initDatabase, "database", string(store.LevelDBStoreType), "Database backend (leveldb, bolt or redis)")
	initCmd.Flags().Uint8Var(&initDecimals, "decimals", 6, "Decimals of the staking mint")
	initCmd.Flags().StringVar(&initPrivKeyPath, "privkey-path", "", "Path to existing mint authority key file (optional)")
	initCmd.Flags().StringVar(&initProgramID, "program-id", staking.DefaultProgramID.String(), "Program id the derived addresses are computed under")
}

// initializeNode is idempotent: existing config files and on-disk state are reused
func initializeNode() error {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	authority, err := loadOrCreateKey()
	if err != nil {
		return err
	}
	authorityKey := config.PublicKeyOf(authority)

	programCfg, err := loadOrCreateProgramConfig(authorityKey)
	if err != nil {
		return err
	}

	nodeCfg, err := loadOrCreateNodeConfig()
	if err != nil {
		return err
	}

	stores, err := store.CreateStores(&nodeCfg.Store)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer stores.Close()

	engine, err := staking.NewEngine(staking.Config{
		ProgramID: programCfg.ProgramKey(),
		Mint:      programCfg.MintKey(),
		Stores:    stores,
		Clock:     sysvar.NewManualClock(0, 0),
	})
	if err != nil {
		return err
	}

	mint, err := engine.MintInfo()
	if err != nil {
		return err
	}
	if mint == nil {
		if err := engine.CreateMint(authorityKey, programCfg.Mint.Decimals); err != nil {
			return fmt.Errorf("create mint: %w", err)
		}
	}

	if _, err := engine.Initialize(authorityKey); err != nil {
		return fmt.Errorf("initialize vault: %w", err)
	}

	logx.Info("INIT", fmt.Sprintf("Node initialized | program=%s | mint=%s | vault=%s | authority=%s",
		programCfg.ProgramID, programCfg.Mint.Address, engine.VaultAddress(), authorityKey))
	return nil
}

func loadOrCreateKey() (ed25519.PrivateKey, error) {
	path := initPrivKeyPath
	if path == "" {
		path = configPath(privKeyFile)
	}

	if _, err := os.Stat(path); err == nil {
		key, err := config.LoadEd25519PrivKey(path)
		if err != nil {
			return nil, fmt.Errorf("load private key: %w", err)
		}
		logx.Info("INIT", "Using existing private key from ", path)
		return key, nil
	} else if initPrivKeyPath != "" {
		return nil, fmt.Errorf("private key %s: %w", path, err)
	}

	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	if err := config.SaveEd25519PrivKey(path, key); err != nil {
		return nil, fmt.Errorf("save private key: %w", err)
	}
	pub := config.PublicKeyOf(key).String()
	if err := os.WriteFile(configPath(pubKeyFile), []byte(pub), 0o644); err != nil {
		return nil, fmt.Errorf("save public key: %w", err)
	}
	logx.Info("INIT", "Generated mint authority key ", pub)
	return key, nil
}

func loadOrCreateProgramConfig(authority solana.PublicKey) (*config.ProgramConfig, error) {
	path := configPath(programConfigFile)
	if _, err := os.Stat(path); err == nil {
		return config.LoadProgramConfig(path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	cfg := &config.ProgramConfig{
		ProgramID: initProgramID,
		Mint: config.MintConfig{
			Address:   solana.NewWallet().PublicKey().String(),
			Decimals:  initDecimals,
			Authority: authority.String(),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := config.SaveProgramConfig(path, cfg); err != nil {
		return nil, fmt.Errorf("save program config: %w", err)
	}
	return cfg, nil
}

func loadOrCreateNodeConfig() (*config.NodeConfig, error) {
	path := configPath(nodeConfigFile)
	if _, err := os.Stat(path); err == nil {
		return config.LoadNodeConfig(path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	dataDir, err := filepath.Abs(initDataDir)
	if err != nil {
		return nil, err
	}
	cfg := config.DefaultNodeConfig(filepath.Join(dataDir, "store"))
	cfg.Store.Type = store.StoreType(initDatabase)
	if cfg.Store.Type == store.RedisStoreType {
		cfg.Store.RedisAddr = "localhost:6379"
	}
	if err := cfg.Store.Validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.Store.Directory, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	if err := config.SaveNodeConfig(path, cfg); err != nil {
		return nil, fmt.Errorf("save node config: %w", err)
	}
	return cfg, nil
}
