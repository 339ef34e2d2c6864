package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mezonai/stakevault/logx"
)

const (
	programConfigFile = "program.yml"
	nodeConfigFile    = "node.ini"
	privKeyFile       = "privkey.txt"
	pubKeyFile        = "pubkey.txt"
)

var (
	configDir string
	logStderr bool
)

var rootCmd = &cobra.Command{
	Use:   "stakevault",
	Short: "Time-locked staking node CLI",
	Long:  "Command line interface for running a stakevault node and staking against it.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if logStderr {
			logx.SetOutput(os.Stderr)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", ".", "Directory holding program.yml, node.ini and key files")
	rootCmd.PersistentFlags().BoolVar(&logStderr, "log-stderr", false, "Write logs to stderr instead of the log file")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logx.Error("CMD", "Command execution failed:", err)
		os.Exit(1)
	}
}

func configPath(name string) string {
	return filepath.Join(configDir, name)
}
