package config

import (
	"crypto/ed25519"
	"os"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mezonai/stakevault/store"
)

func TestProgramConfig_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "program.yml")
	cfg := &ProgramConfig{
		ProgramID: "6F4xuFXwNTowkA7FnNmo1ejeTTCX6FxYgsifQDwp5Xsf",
		Mint: MintConfig{
			Address:   solana.NewWallet().PublicKey().String(),
			Decimals:  6,
			Authority: solana.NewWallet().PublicKey().String(),
		},
	}
	require.NoError(t, SaveProgramConfig(path, cfg))

	loaded, err := LoadProgramConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
	assert.Equal(t, cfg.Mint.Address, loaded.MintKey().String())
}

func TestProgramConfig_RejectsBadKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "program.yml")
	require.NoError(t, os.WriteFile(path, []byte("program:\n  program_id: nope\n"), 0o644))

	_, err := LoadProgramConfig(path)
	require.Error(t, err)
}

func TestNodeConfig_SaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "node.ini")

	cfg := DefaultNodeConfig(filepath.Join(dir, "db"))
	cfg.Store.Type = store.BoltStoreType
	cfg.RPC.MaxClockSkewSec = 30
	require.NoError(t, SaveNodeConfig(path, cfg))

	loaded, err := LoadNodeConfig(path)
	require.NoError(t, err)
	assert.Equal(t, store.BoltStoreType, loaded.Store.Type)
	assert.Equal(t, cfg.Store.Directory, loaded.Store.Directory)
	assert.Equal(t, cfg.RPC.ListenAddr, loaded.RPC.ListenAddr)
	assert.Equal(t, int64(30), int64(loaded.RPC.MaxClockSkew().Seconds()))
	assert.Equal(t, cfg.Clock.GenesisUnix, loaded.Clock.GenesisUnix)
	assert.Equal(t, int64(400), loaded.Clock.SlotDuration().Milliseconds())
}

func TestNodeConfig_InvalidStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "node.ini")
	require.NoError(t, os.WriteFile(path, []byte("[store]\ntype = cassandra\n"), 0o644))

	_, err := LoadNodeConfig(path)
	require.Error(t, err)
}

func TestEd25519PrivKey_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key.hex")
	_, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	require.NoError(t, SaveEd25519PrivKey(path, priv))
	loaded, err := LoadEd25519PrivKey(path)
	require.NoError(t, err)
	assert.Equal(t, priv, loaded)
	assert.Equal(t, PublicKeyOf(priv), PublicKeyOf(loaded))
}
