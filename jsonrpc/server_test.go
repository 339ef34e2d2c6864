package jsonrpc

import (
	"context"
	"crypto/ed25519"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/jhttp"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mezonai/stakevault/client"
	neterrors "github.com/mezonai/stakevault/errors"
	"github.com/mezonai/stakevault/jsonx"
	"github.com/mezonai/stakevault/staking"
	"github.com/mezonai/stakevault/store"
	"github.com/mezonai/stakevault/sysvar"
)

const genesisUnix int64 = 1_700_000_000

type rpcFixture struct {
	url       string
	cli       *client.Client
	engine    *staking.Engine
	clock     *sysvar.ManualClock
	authority *client.Signer
	user      *client.Signer
}

func seededSigner(t *testing.T, b byte) *client.Signer {
	t.Helper()
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = b
	}
	s, err := client.NewSigner(seed)
	require.NoError(t, err)
	return s
}

func pubkey(s *client.Signer) solana.PublicKey {
	return solana.MustPublicKeyFromBase58(s.PublicKey())
}

func newRPCFixture(t *testing.T) *rpcFixture {
	t.Helper()

	stores, err := store.CreateStores(&store.StoreConfig{Type: store.MemoryStoreType})
	require.NoError(t, err)
	t.Cleanup(func() { _ = stores.Close() })

	clock := sysvar.NewManualClock(1000, genesisUnix)
	engine, err := staking.NewEngine(staking.Config{
		ProgramID: staking.DefaultProgramID,
		Mint:      solana.NewWallet().PublicKey(),
		Stores:    stores,
		Clock:     clock,
	})
	require.NoError(t, err)

	authority := seededSigner(t, 1)
	require.NoError(t, engine.CreateMint(pubkey(authority), 6))

	srv := httptest.NewServer(NewServer("", engine, engine, engine).Handler())
	t.Cleanup(srv.Close)

	cli, err := client.NewClient(client.Config{Endpoint: srv.URL})
	require.NoError(t, err)
	t.Cleanup(func() { _ = cli.Close() })

	return &rpcFixture{
		url:       srv.URL,
		cli:       cli,
		engine:    engine,
		clock:     clock,
		authority: authority,
		user:      seededSigner(t, 2),
	}
}

// fund opens the user's wallet and the vault with token balances
func (f *rpcFixture) fund(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	init, err := f.cli.Initialize(ctx, f.authority)
	require.NoError(t, err)
	require.True(t, init.Created)

	acc, err := f.cli.CreateAccount(ctx, f.user)
	require.NoError(t, err)

	_, err = f.cli.MintTo(ctx, f.authority, acc.Address, 100)
	require.NoError(t, err)
	_, err = f.cli.MintTo(ctx, f.authority, init.Vault, 10_000)
	require.NoError(t, err)
	return acc.Address
}

func networkCode(t *testing.T, err error) neterrors.NetworkErrorCode {
	t.Helper()
	require.Error(t, err)
	var netErr *neterrors.NetworkError
	require.True(t, errors.As(err, &netErr), "expected a network error, got %v", err)
	return netErr.Code
}

func TestServer_StakeLifecycle(t *testing.T) {
	f := newRPCFixture(t)
	ctx := context.Background()
	wallet := f.fund(t)

	staked, err := f.cli.Stake(ctx, f.user, 10)
	require.NoError(t, err)
	assert.Equal(t, "10000000", staked.BaseUnits)
	assert.Equal(t, uint64(1000), staked.StakeAtSlot)

	info, err := f.cli.GetStakeInfo(ctx, f.user.PublicKey())
	require.NoError(t, err)
	assert.True(t, info.IsStaked)
	assert.Equal(t, "staked", info.Status)
	assert.Equal(t, "10000000", info.EscrowAmount)

	_, err = f.cli.Stake(ctx, f.user, 10)
	assert.Equal(t, neterrors.ErrCodeAlreadyStaked, networkCode(t, err))

	_, err = f.cli.Destake(ctx, f.user)
	assert.Equal(t, neterrors.ErrCodeLockPeriodNotEnded, networkCode(t, err))

	f.clock.Set(1500, genesisUnix+staking.LockDuration)
	destaked, err := f.cli.Destake(ctx, f.user)
	require.NoError(t, err)
	assert.Equal(t, "500000000", destaked.Reward)
	assert.Equal(t, "10000000", destaked.Principal)

	bal, err := f.cli.GetBalance(ctx, wallet)
	require.NoError(t, err)
	assert.Equal(t, "600000000", bal.Balance)
	assert.Equal(t, uint8(6), bal.Decimals)

	_, err = f.cli.Destake(ctx, f.user)
	assert.Equal(t, neterrors.ErrCodeNotStaked, networkCode(t, err))
}

func TestServer_RejectsNonPositiveAmounts(t *testing.T) {
	f := newRPCFixture(t)
	f.fund(t)

	for _, amount := range []int64{0, -5} {
		_, err := f.cli.Stake(context.Background(), f.user, amount)
		assert.Equal(t, neterrors.ErrCodeNoTokensProvided, networkCode(t, err))
	}
}

func TestServer_InsufficientVault(t *testing.T) {
	f := newRPCFixture(t)
	ctx := context.Background()

	_, err := f.cli.Initialize(ctx, f.authority)
	require.NoError(t, err)
	acc, err := f.cli.CreateAccount(ctx, f.user)
	require.NoError(t, err)
	_, err = f.cli.MintTo(ctx, f.authority, acc.Address, 100)
	require.NoError(t, err)

	_, err = f.cli.Stake(ctx, f.user, 10)
	require.NoError(t, err)
	f.clock.Set(1500, genesisUnix+staking.LockDuration)

	_, err = f.cli.Destake(ctx, f.user)
	assert.Equal(t, neterrors.ErrCodeInsufficientFunds, networkCode(t, err))

	info, err := f.cli.GetStakeInfo(ctx, f.user.PublicKey())
	require.NoError(t, err)
	assert.True(t, info.IsStaked)
}

func TestServer_MintToRequiresAuthority(t *testing.T) {
	f := newRPCFixture(t)
	wallet := f.fund(t)

	_, err := f.cli.MintTo(context.Background(), f.user, wallet, 1)
	assert.Equal(t, neterrors.ErrCodeMissingSignature, networkCode(t, err))
}

func rawCall(t *testing.T, url, method string, params any) error {
	t.Helper()
	cli := jrpc2.NewClient(jhttp.NewChannel(url, nil), nil)
	defer cli.Close()
	var out map[string]any
	return cli.CallResult(context.Background(), method, params, &out)
}

func rawNetworkCode(t *testing.T, err error) neterrors.NetworkErrorCode {
	t.Helper()
	require.Error(t, err)
	var rpcErr *jrpc2.Error
	require.True(t, errors.As(err, &rpcErr))
	var netErr neterrors.NetworkError
	require.NoError(t, jsonx.Unmarshal(rpcErr.Data, &netErr))
	return netErr.Code
}

func TestServer_RejectsBadSignature(t *testing.T) {
	f := newRPCFixture(t)
	f.fund(t)

	p := &client.SignedParams{Amount: 10}
	f.user.Sign(client.MethodStakingStake, p)
	p.Amount = 20

	err := rawCall(t, f.url, client.MethodStakingStake, p)
	assert.Equal(t, neterrors.ErrCodeInvalidSignature, rawNetworkCode(t, err))

	// a signature by someone else over the victim's key
	forged := &client.SignedParams{Amount: 10}
	seededSigner(t, 9).Sign(client.MethodStakingStake, forged)
	forged.Signer = f.user.PublicKey()
	err = rawCall(t, f.url, client.MethodStakingStake, forged)
	assert.Equal(t, neterrors.ErrCodeInvalidSignature, rawNetworkCode(t, err))

	info, err := f.cli.GetStakeInfo(context.Background(), f.user.PublicKey())
	require.NoError(t, err)
	assert.False(t, info.IsStaked)
}

func TestServer_RejectsStaleRequest(t *testing.T) {
	f := newRPCFixture(t)
	f.fund(t)

	p := &client.SignedParams{Amount: 10, Timestamp: time.Now().Add(-time.Hour).Unix()}
	f.user.Sign(client.MethodStakingStake, p)

	err := rawCall(t, f.url, client.MethodStakingStake, p)
	assert.Equal(t, neterrors.ErrCodeStaleRequest, rawNetworkCode(t, err))
}

func TestServer_InvalidAddress(t *testing.T) {
	f := newRPCFixture(t)

	_, err := f.cli.GetStakeInfo(context.Background(), "not-an-address")
	assert.Equal(t, neterrors.ErrCodeInvalidAddress, networkCode(t, err))
}

func TestServer_AddressesAndHealth(t *testing.T) {
	f := newRPCFixture(t)
	f.fund(t)
	ctx := context.Background()

	addrs, err := f.cli.GetAddresses(ctx, f.user.PublicKey())
	require.NoError(t, err)
	assert.Equal(t, f.engine.VaultAddress().String(), addrs.Vault.Address)
	assert.NotEqual(t, addrs.StakeInfo.Address, addrs.StakeAccount.Address)

	health, err := f.cli.CheckHealth(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, uint64(1000), health.Slot)
	assert.Equal(t, "10000000000", health.VaultBalance)

	resp, err := http.Get(f.url + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_RateLimitsSigner(t *testing.T) {
	f := newRPCFixture(t)
	f.fund(t)

	srv := NewServer("", f.engine, f.engine, f.engine)
	srv.SetRateLimits(0, 1)
	defer srv.stopLimiters()
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	cli, err := client.NewClient(client.Config{Endpoint: ts.URL})
	require.NoError(t, err)
	defer cli.Close()

	_, err = cli.Stake(context.Background(), f.user, 1)
	require.NoError(t, err)
	_, err = cli.Destake(context.Background(), f.user)
	assert.Equal(t, neterrors.ErrCodeRateLimited, networkCode(t, err))
}

func TestServer_RejectsReplayedRequest(t *testing.T) {
	f := newRPCFixture(t)
	wallet := f.fund(t)

	p := &client.SignedParams{Amount: 5, Target: wallet}
	f.authority.Sign(client.MethodTokenMintTo, p)

	require.NoError(t, rawCall(t, f.url, client.MethodTokenMintTo, p))
	for i := 0; i < 2; i++ {
		err := rawCall(t, f.url, client.MethodTokenMintTo, p)
		assert.Equal(t, neterrors.ErrCodeReplayedRequest, rawNetworkCode(t, err))
	}

	bal, err := f.cli.GetBalance(context.Background(), wallet)
	require.NoError(t, err)
	assert.Equal(t, "105000000", bal.Balance)

	// a freshly signed call with the same amount goes through
	_, err = f.cli.MintTo(context.Background(), f.authority, wallet, 5)
	require.NoError(t, err)
}

func TestServer_ForgedRequestsDoNotSpendSignerQuota(t *testing.T) {
	f := newRPCFixture(t)
	f.fund(t)

	srv := NewServer("", f.engine, f.engine, f.engine)
	srv.SetRateLimits(0, 1)
	defer srv.stopLimiters()
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	for i := 0; i < 3; i++ {
		forged := &client.SignedParams{Amount: 1}
		seededSigner(t, 9).Sign(client.MethodStakingStake, forged)
		forged.Signer = f.user.PublicKey()
		err := rawCall(t, ts.URL, client.MethodStakingStake, forged)
		assert.Equal(t, neterrors.ErrCodeInvalidSignature, rawNetworkCode(t, err))
	}

	cli, err := client.NewClient(client.Config{Endpoint: ts.URL})
	require.NoError(t, err)
	defer cli.Close()

	_, err = cli.Stake(context.Background(), f.user, 1)
	require.NoError(t, err)
}

func postHealth(t *testing.T, url, forwardedFor string) int {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"health.check"}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-For", forwardedFor)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	return resp.StatusCode
}

func TestServer_RateLimitsClientIP(t *testing.T) {
	f := newRPCFixture(t)

	srv := NewServer("", f.engine, f.engine, f.engine)
	srv.SetRateLimits(1, 0)
	defer srv.stopLimiters()
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	assert.Equal(t, http.StatusOK, postHealth(t, ts.URL, "203.0.113.7"))
	assert.Equal(t, http.StatusTooManyRequests, postHealth(t, ts.URL, "203.0.113.7"))
	assert.Equal(t, http.StatusOK, postHealth(t, ts.URL, "203.0.113.8"))
}

func TestExtractClientIPFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", nil)
	r.RemoteAddr = "192.0.2.1:4321"
	assert.Equal(t, "192.0.2.1", extractClientIPFromRequest(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", extractClientIPFromRequest(r))

	r.Header.Set("X-Forwarded-For", "garbage")
	assert.Equal(t, "192.0.2.1", extractClientIPFromRequest(r))

	r.Header.Del("X-Forwarded-For")
	r.RemoteAddr = "not-an-addr"
	assert.Equal(t, "unknown", extractClientIPFromRequest(r))
}
