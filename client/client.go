package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/jhttp"

	neterrors "github.com/mezonai/stakevault/errors"
	"github.com/mezonai/stakevault/jsonx"
)

type Config struct {
	Endpoint string
}

type Client struct {
	cfg Config
	cli *jrpc2.Client
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("endpoint cannot be empty")
	}
	ch := jhttp.NewChannel(cfg.Endpoint, nil)
	return &Client{
		cfg: cfg,
		cli: jrpc2.NewClient(ch, nil),
	}, nil
}

func (c *Client) Close() error {
	return c.cli.Close()
}

func (c *Client) CheckHealth(ctx context.Context) (*HealthResult, error) {
	var res HealthResult
	if err := c.call(ctx, MethodHealthCheck, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Initialize(ctx context.Context, signer *Signer) (*InitializeResult, error) {
	var res InitializeResult
	if err := c.signedCall(ctx, signer, MethodStakingInitialize, &SignedParams{}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Stake(ctx context.Context, signer *Signer, amount int64) (*StakeResult, error) {
	var res StakeResult
	if err := c.signedCall(ctx, signer, MethodStakingStake, &SignedParams{Amount: amount}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Destake(ctx context.Context, signer *Signer) (*DestakeResult, error) {
	var res DestakeResult
	if err := c.signedCall(ctx, signer, MethodStakingDestake, &SignedParams{}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) GetStakeInfo(ctx context.Context, participant string) (*StakeInfoResult, error) {
	var res StakeInfoResult
	if err := c.call(ctx, MethodStakingGetStakeInfo, ParticipantParams{Participant: participant}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) GetAddresses(ctx context.Context, participant string) (*AddressesResult, error) {
	var res AddressesResult
	if err := c.call(ctx, MethodStakingGetAddresses, ParticipantParams{Participant: participant}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) GetBalance(ctx context.Context, address string) (*BalanceResult, error) {
	var res BalanceResult
	if err := c.call(ctx, MethodTokenGetBalance, AddressParams{Address: address}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) CreateAccount(ctx context.Context, signer *Signer) (*CreateAccountResult, error) {
	var res CreateAccountResult
	if err := c.signedCall(ctx, signer, MethodTokenCreateAccount, &SignedParams{}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// MintTo issues whole tokens into the token account dest, signed by the mint authority
func (c *Client) MintTo(ctx context.Context, authority *Signer, dest string, amount int64) (*MintToResult, error) {
	var res MintToResult
	p := &SignedParams{Amount: amount, Target: dest}
	if err := c.signedCall(ctx, authority, MethodTokenMintTo, p, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) signedCall(ctx context.Context, signer *Signer, method string, p *SignedParams, result any) error {
	if signer == nil {
		return ErrUnsupportedKey
	}
	signer.Sign(method, p)
	return c.call(ctx, method, p, result)
}

// call unwraps server side network errors so callers can match on their code
func (c *Client) call(ctx context.Context, method string, params, result any) error {
	err := c.cli.CallResult(ctx, method, params, result)
	if err == nil {
		return nil
	}
	var rpcErr *jrpc2.Error
	if errors.As(err, &rpcErr) && len(rpcErr.Data) > 0 {
		var netErr neterrors.NetworkError
		if jerr := jsonx.Unmarshal(rpcErr.Data, &netErr); jerr == nil && netErr.Code != "" {
			return &netErr
		}
	}
	return fmt.Errorf("%s: %w", method, err)
}
