package config

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"

	"github.com/mezonai/stakevault/logx"
	"github.com/mezonai/stakevault/store"
	"github.com/mezonai/stakevault/sysvar"
)

// LoadProgramConfig reads and parses the program.yml file
func LoadProgramConfig(path string) (*ProgramConfig, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var cfgFile ConfigFile
	if err := yaml.NewDecoder(file).Decode(&cfgFile); err != nil {
		logx.Error("CONFIG", "Failed to decode program config: ", err)
		return nil, err
	}
	if err := cfgFile.Program.Validate(); err != nil {
		return nil, err
	}
	logx.Info("CONFIG", fmt.Sprintf("Loaded program %s mint=%s decimals=%d",
		cfgFile.Program.ProgramID, cfgFile.Program.Mint.Address, cfgFile.Program.Mint.Decimals))
	return &cfgFile.Program, nil
}

func SaveProgramConfig(path string, cfg *ProgramConfig) error {
	data, err := yaml.Marshal(&ConfigFile{Program: *cfg})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (c *ProgramConfig) Validate() error {
	if _, err := solana.PublicKeyFromBase58(c.ProgramID); err != nil {
		return fmt.Errorf("invalid program_id: %w", err)
	}
	if _, err := solana.PublicKeyFromBase58(c.Mint.Address); err != nil {
		return fmt.Errorf("invalid mint address: %w", err)
	}
	if c.Mint.Authority != "" {
		if _, err := solana.PublicKeyFromBase58(c.Mint.Authority); err != nil {
			return fmt.Errorf("invalid mint authority: %w", err)
		}
	}
	return nil
}

// ProgramKey and MintKey assume Validate passed
func (c *ProgramConfig) ProgramKey() solana.PublicKey {
	return solana.MustPublicKeyFromBase58(c.ProgramID)
}

func (c *ProgramConfig) MintKey() solana.PublicKey {
	return solana.MustPublicKeyFromBase58(c.Mint.Address)
}

// NodeConfig is everything node.ini configures
type NodeConfig struct {
	Store   store.StoreConfig
	RPC     RPCConfig
	Clock   ClockConfig
	Metrics MetricsConfig
}

func DefaultNodeConfig(dataDir string) *NodeConfig {
	return &NodeConfig{
		Store: store.StoreConfig{
			Type:      store.LevelDBStoreType,
			Directory: dataDir,
		},
		RPC: RPCConfig{
			ListenAddr:      ":8899",
			MaxClockSkewSec: 60,
			RateLimitIP:     50,
			RateLimitSigner: 10,
		},
		Clock: ClockConfig{
			SlotDurationMs: int(sysvar.DefaultSlotDuration / time.Millisecond),
			GenesisUnix:    time.Now().Unix(),
		},
		Metrics: MetricsConfig{
			ListenAddr: ":9100",
		},
	}
}

// LoadNodeConfig reads every section of node.ini over the defaults
func LoadNodeConfig(path string) (*NodeConfig, error) {
	file, err := ini.Load(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultNodeConfig("")
	sections := []struct {
		name string
		dst  interface{}
	}{
		{"store", &cfg.Store},
		{"rpc", &cfg.RPC},
		{"clock", &cfg.Clock},
		{"metrics", &cfg.Metrics},
	}
	for _, s := range sections {
		if err := file.Section(s.name).MapTo(s.dst); err != nil {
			return nil, fmt.Errorf("section [%s]: %w", s.name, err)
		}
	}
	if err := cfg.Store.Validate(); err != nil {
		return nil, fmt.Errorf("section [store]: %w", err)
	}
	if cfg.Clock.SlotDurationMs <= 0 {
		return nil, fmt.Errorf("section [clock]: slot_duration_ms must be positive")
	}
	return cfg, nil
}

func SaveNodeConfig(path string, cfg *NodeConfig) error {
	file := ini.Empty()
	sections := []struct {
		name string
		src  interface{}
	}{
		{"store", &cfg.Store},
		{"rpc", &cfg.RPC},
		{"clock", &cfg.Clock},
		{"metrics", &cfg.Metrics},
	}
	for _, s := range sections {
		sec, err := file.NewSection(s.name)
		if err != nil {
			return err
		}
		if err := sec.ReflectFrom(s.src); err != nil {
			return fmt.Errorf("section [%s]: %w", s.name, err)
		}
	}
	return file.SaveTo(path)
}

func (c *ClockConfig) SlotDuration() time.Duration {
	return time.Duration(c.SlotDurationMs) * time.Millisecond
}

func (c *ClockConfig) Genesis() time.Time {
	return time.Unix(c.GenesisUnix, 0)
}

func (c *RPCConfig) MaxClockSkew() time.Duration {
	return time.Duration(c.MaxClockSkewSec) * time.Second
}

// LoadEd25519PrivKey loads an Ed25519 private key from a file (expects hex encoding of the seed or the full key)
func LoadEd25519PrivKey(path string) (ed25519.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	key, err := hex.DecodeString(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, err
	}
	switch len(key) {
	case ed25519.SeedSize:
		return ed25519.NewKeyFromSeed(key), nil
	case ed25519.PrivateKeySize:
		return ed25519.PrivateKey(key), nil
	default:
		return nil, fmt.Errorf("invalid private key length %d", len(key))
	}
}

// SaveEd25519PrivKey writes the hex seed with owner only permissions
func SaveEd25519PrivKey(path string, key ed25519.PrivateKey) error {
	return os.WriteFile(path, []byte(hex.EncodeToString(key.Seed())), 0o600)
}

// PublicKeyOf returns the wallet address of key
func PublicKeyOf(key ed25519.PrivateKey) solana.PublicKey {
	return solana.PublicKeyFromBytes(key.Public().(ed25519.PublicKey))
}
