package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/mezonai/stakevault/client"
	"github.com/mezonai/stakevault/config"
	"github.com/mezonai/stakevault/jsonx"
)

var (
	rpcEndpoint string
	keyPath     string
	rpcTimeout  time.Duration
)

var mintCmd = &cobra.Command{
	Use:   "mint <destination> <amount>",
	Short: "Mint whole tokens into a token account (mint authority key)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := parseAmount(args[1])
		if err != nil {
			return err
		}
		return withSigner(func(ctx context.Context, cli *client.Client, signer *client.Signer) (any, error) {
			return cli.MintTo(ctx, signer, args[0], amount)
		})
	},
}

var fundVaultCmd = &cobra.Command{
	Use:   "fund-vault <amount>",
	Short: "Mint whole tokens into the reward vault (mint authority key)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := parseAmount(args[0])
		if err != nil {
			return err
		}
		return withSigner(func(ctx context.Context, cli *client.Client, signer *client.Signer) (any, error) {
			addrs, err := cli.GetAddresses(ctx, signer.PublicKey())
			if err != nil {
				return nil, err
			}
			return cli.MintTo(ctx, signer, addrs.Vault.Address, amount)
		})
	},
}

var createAccountCmd = &cobra.Command{
	Use:   "create-account",
	Short: "Open the wallet token account of the key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSigner(func(ctx context.Context, cli *client.Client, signer *client.Signer) (any, error) {
			return cli.CreateAccount(ctx, signer)
		})
	},
}

var initializeCmd = &cobra.Command{
	Use:   "initialize",
	Short: "Create the vault token account if it does not exist",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSigner(func(ctx context.Context, cli *client.Client, signer *client.Signer) (any, error) {
			return cli.Initialize(ctx, signer)
		})
	},
}

var stakeCmd = &cobra.Command{
	Use:   "stake <amount>",
	Short: "Lock whole tokens for the lock period",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := parseAmount(args[0])
		if err != nil {
			return err
		}
		return withSigner(func(ctx context.Context, cli *client.Client, signer *client.Signer) (any, error) {
			return cli.Stake(ctx, signer, amount)
		})
	},
}

var destakeCmd = &cobra.Command{
	Use:   "destake",
	Short: "Withdraw the principal and the reward after the lock period",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSigner(func(ctx context.Context, cli *client.Client, signer *client.Signer) (any, error) {
			return cli.Destake(ctx, signer)
		})
	},
}

var infoCmd = &cobra.Command{
	Use:   "info [participant]",
	Short: "Show the stake ledger entry of a participant (defaults to the key)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withParticipant(args, func(ctx context.Context, cli *client.Client, participant string) (any, error) {
			return cli.GetStakeInfo(ctx, participant)
		})
	},
}

var addressesCmd = &cobra.Command{
	Use:   "addresses [participant]",
	Short: "Show every derived address a participant uses",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withParticipant(args, func(ctx context.Context, cli *client.Client, participant string) (any, error) {
			return cli.GetAddresses(ctx, participant)
		})
	},
}

var balanceCmd = &cobra.Command{
	Use:   "balance [token-account]",
	Short: "Show a token account balance (defaults to the key's wallet token account)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(ctx context.Context, cli *client.Client) (any, error) {
			addr := ""
			if len(args) == 1 {
				addr = args[0]
			} else {
				signer, err := loadSigner()
				if err != nil {
					return nil, err
				}
				addrs, err := cli.GetAddresses(ctx, signer.PublicKey())
				if err != nil {
					return nil, err
				}
				addr = addrs.WalletTokenAccount
			}
			return cli.GetBalance(ctx, addr)
		})
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the node",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(ctx context.Context, cli *client.Client) (any, error) {
			return cli.CheckHealth(ctx)
		})
	},
}

func init() {
	walletCmds := []*cobra.Command{
		mintCmd, fundVaultCmd, createAccountCmd, initializeCmd, stakeCmd,
		destakeCmd, infoCmd, addressesCmd, balanceCmd, healthCmd,
	}
	for _, c := range walletCmds {
		c.Flags().StringVar(&rpcEndpoint, "rpc", "http://localhost:8899", "JSON-RPC endpoint of the node")
		c.Flags().StringVar(&keyPath, "key", "", "Hex encoded ed25519 key file (defaults to <config-dir>/privkey.txt)")
		c.Flags().DurationVar(&rpcTimeout, "timeout", 10*time.Second, "Request timeout")
		rootCmd.AddCommand(c)
	}
}

func parseAmount(s string) (int64, error) {
	amount, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return amount, nil
}

func loadSigner() (*client.Signer, error) {
	path := keyPath
	if path == "" {
		path = configPath(privKeyFile)
	}
	key, err := config.LoadEd25519PrivKey(path)
	if err != nil {
		return nil, fmt.Errorf("load key %s: %w", path, err)
	}
	return client.NewSigner(key)
}

func withClient(fn func(ctx context.Context, cli *client.Client) (any, error)) error {
	cli, err := client.NewClient(client.Config{Endpoint: rpcEndpoint})
	if err != nil {
		return err
	}
	defer cli.Close()

	ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
	defer cancel()

	res, err := fn(ctx, cli)
	if err != nil {
		return err
	}
	return printJSON(res)
}

func withSigner(fn func(ctx context.Context, cli *client.Client, signer *client.Signer) (any, error)) error {
	signer, err := loadSigner()
	if err != nil {
		return err
	}
	return withClient(func(ctx context.Context, cli *client.Client) (any, error) {
		return fn(ctx, cli, signer)
	})
}

func withParticipant(args []string, fn func(ctx context.Context, cli *client.Client, participant string) (any, error)) error {
	if len(args) == 1 {
		return withClient(func(ctx context.Context, cli *client.Client) (any, error) {
			return fn(ctx, cli, args[0])
		})
	}
	return withSigner(func(ctx context.Context, cli *client.Client, signer *client.Signer) (any, error) {
		return fn(ctx, cli, signer.PublicKey())
	})
}

func printJSON(v any) error {
	out, err := jsonx.MarshalIndent(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(os.Stdout, string(out))
	return err
}
