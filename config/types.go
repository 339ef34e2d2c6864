package config

// MintConfig describes the token the program stakes
type MintConfig struct {
	Address   string `yaml:"address"`
	Decimals  uint8  `yaml:"decimals"`
	Authority string `yaml:"authority"`
}

// ProgramConfig holds the configuration from program.yml
type ProgramConfig struct {
	ProgramID string     `yaml:"program_id"`
	Mint      MintConfig `yaml:"mint"`
}

// ConfigFile is the top-level structure for program.yml
type ConfigFile struct {
	Program ProgramConfig `yaml:"program"`
}

type RPCConfig struct {
	ListenAddr      string `ini:"listen_addr"`
	MaxClockSkewSec int    `ini:"max_clock_skew_sec"`
	RateLimitIP     int    `ini:"rate_limit_ip"`
	RateLimitSigner int    `ini:"rate_limit_signer"`
}

type ClockConfig struct {
	SlotDurationMs int   `ini:"slot_duration_ms"`
	GenesisUnix    int64 `ini:"genesis_unix"`
}

type MetricsConfig struct {
	ListenAddr string `ini:"listen_addr"`
}
