package jsonrpc

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/mezonai/stakevault/client"
	"github.com/mezonai/stakevault/errors"
	"github.com/mezonai/stakevault/logx"
	"github.com/mezonai/stakevault/staking"
)

const (
	codeInvalidParams = -32602
	codeServerError   = -32000
)

func newRPCError(code int, netErr *errors.NetworkError) *rpcError {
	return &rpcError{Code: code, Message: netErr.Error()}
}

func invalidParams(code errors.NetworkErrorCode) *rpcError {
	return newRPCError(codeInvalidParams, errors.FromCode(string(code)))
}

// domainError maps a rolled back call onto its network error code
func domainError(err error) *rpcError {
	reason := staking.Reason(err)
	if reason == "internal" {
		logx.Error("RPC", "Internal error: ", err)
	}
	return newRPCError(codeServerError, errors.FromCode(reason))
}

// authenticate checks the request window, signature, signer quota and replay set,
// returning the signer key
func (s *Server) authenticate(method string, p *client.SignedParams) (solana.PublicKey, *rpcError) {
	signer, rerr := parseAddress(p.Signer)
	if rerr != nil {
		return solana.PublicKey{}, rerr
	}

	now := s.now()
	issued := time.Unix(p.Timestamp, 0)
	skew := now.Sub(issued)
	if skew < 0 {
		skew = -skew
	}
	if skew > s.maxSkew {
		logx.Warn("RPC", "Stale request ", method, " from ", p.Signer, " skew=", skew)
		return solana.PublicKey{}, invalidParams(errors.ErrCodeStaleRequest)
	}
	if !client.Verify(method, p) {
		logx.Warn("RPC", "Invalid signature on ", method, " from ", p.Signer)
		return solana.PublicKey{}, invalidParams(errors.ErrCodeInvalidSignature)
	}

	// quota is charged only once the signer has proven the key
	if s.signerLimiter != nil && !s.signerLimiter.Allow(p.Signer) {
		logx.Warn("RPC", "Rate limited signer ", p.Signer, " on ", method)
		return solana.PublicKey{}, newRPCError(codeServerError, errors.FromCode(string(errors.ErrCodeRateLimited)))
	}
	if !s.replays.remember(string(client.Payload(method, p)), issued.Add(s.maxSkew), now) {
		logx.Warn("RPC", "Replayed request ", method, " from ", p.Signer)
		return solana.PublicKey{}, invalidParams(errors.ErrCodeReplayedRequest)
	}
	return signer, nil
}

// --- Implementations ---

func (s *Server) rpcInitialize(ctx context.Context, p *client.SignedParams) (*client.InitializeResult, *rpcError) {
	payer, rerr := s.authenticate(client.MethodStakingInitialize, p)
	if rerr != nil {
		return nil, rerr
	}
	created, err := s.stakingSvc.Initialize(payer)
	if err != nil {
		return nil, domainError(err)
	}
	addrs, err := s.stakingSvc.Addresses(payer)
	if err != nil {
		return nil, domainError(err)
	}
	return &client.InitializeResult{Vault: addrs.Vault.Key.String(), Created: created}, nil
}

func (s *Server) rpcStake(ctx context.Context, p *client.SignedParams) (*client.StakeResult, *rpcError) {
	participant, rerr := s.authenticate(client.MethodStakingStake, p)
	if rerr != nil {
		return nil, rerr
	}
	if p.Amount <= 0 {
		return nil, domainError(staking.ErrNoTokensProvided)
	}
	receipt, err := s.stakingSvc.Stake(participant, uint64(p.Amount))
	if err != nil {
		return nil, domainError(err)
	}
	return &client.StakeResult{
		Participant:  receipt.Participant.String(),
		StakeAccount: receipt.StakeAccount.String(),
		Amount:       receipt.Amount,
		BaseUnits:    receipt.BaseUnits,
		StakeAtSlot:  receipt.StakeAtSlot,
		LockEndTime:  receipt.LockEndTime,
	}, nil
}

func (s *Server) rpcDestake(ctx context.Context, p *client.SignedParams) (*client.DestakeResult, *rpcError) {
	participant, rerr := s.authenticate(client.MethodStakingDestake, p)
	if rerr != nil {
		return nil, rerr
	}
	receipt, err := s.stakingSvc.Destake(participant)
	if err != nil {
		return nil, domainError(err)
	}
	return &client.DestakeResult{
		Participant:  receipt.Participant.String(),
		SlotsElapsed: receipt.SlotsElapsed,
		Reward:       receipt.Reward,
		Principal:    receipt.Principal,
		Slot:         receipt.Slot,
	}, nil
}

func (s *Server) rpcGetStakeInfo(p client.ParticipantParams) (*client.StakeInfoResult, *rpcError) {
	participant, rerr := parseAddress(p.Participant)
	if rerr != nil {
		return nil, rerr
	}
	info, err := s.stakingSvc.StakeInfo(participant)
	if err != nil {
		return nil, domainError(err)
	}
	addrs, err := s.stakingSvc.Addresses(participant)
	if err != nil {
		return nil, domainError(err)
	}
	escrow, err := s.tokenSvc.TokenBalance(addrs.StakeAccount.Key)
	if err != nil {
		return nil, domainError(err)
	}
	return &client.StakeInfoResult{
		Participant:  participant.String(),
		Address:      addrs.StakeInfo.Key.String(),
		Status:       info.Status(),
		IsStaked:     info.IsStaked,
		StakeAtSlot:  info.StakeAtSlot,
		LockEndTime:  info.LockEndTime,
		EscrowAmount: escrow.Dec(),
	}, nil
}

func (s *Server) rpcGetAddresses(p client.ParticipantParams) (*client.AddressesResult, *rpcError) {
	participant, rerr := parseAddress(p.Participant)
	if rerr != nil {
		return nil, rerr
	}
	addrs, err := s.stakingSvc.Addresses(participant)
	if err != nil {
		return nil, domainError(err)
	}
	return &client.AddressesResult{
		Participant:        participant.String(),
		Vault:              client.DerivedAddress{Address: addrs.Vault.Key.String(), Bump: addrs.Vault.Bump},
		StakeInfo:          client.DerivedAddress{Address: addrs.StakeInfo.Key.String(), Bump: addrs.StakeInfo.Bump},
		StakeAccount:       client.DerivedAddress{Address: addrs.StakeAccount.Key.String(), Bump: addrs.StakeAccount.Bump},
		WalletTokenAccount: addrs.WalletTokenAccount.String(),
	}, nil
}

func (s *Server) rpcGetBalance(p client.AddressParams) (*client.BalanceResult, *rpcError) {
	addr, rerr := parseAddress(p.Address)
	if rerr != nil {
		return nil, rerr
	}
	bal, err := s.tokenSvc.TokenBalance(addr)
	if err != nil {
		return nil, domainError(err)
	}
	mint, err := s.tokenSvc.MintInfo()
	if err != nil {
		return nil, domainError(err)
	}
	var decimals uint8
	if mint != nil {
		decimals = mint.Decimals
	}
	return &client.BalanceResult{Address: addr.String(), Balance: bal.Dec(), Decimals: decimals}, nil
}

func (s *Server) rpcMintTo(ctx context.Context, p *client.SignedParams) (*client.MintToResult, *rpcError) {
	authority, rerr := s.authenticate(client.MethodTokenMintTo, p)
	if rerr != nil {
		return nil, rerr
	}
	dest, rerr := parseAddress(p.Target)
	if rerr != nil {
		return nil, rerr
	}
	if p.Amount <= 0 {
		return nil, invalidParams(errors.ErrCodeInvalidAmount)
	}
	if err := s.tokenSvc.MintTo(authority, dest, uint64(p.Amount)); err != nil {
		return nil, domainError(err)
	}
	bal, err := s.tokenSvc.TokenBalance(dest)
	if err != nil {
		return nil, domainError(err)
	}
	return &client.MintToResult{Destination: dest.String(), Balance: bal.Dec()}, nil
}

func (s *Server) rpcCreateAccount(ctx context.Context, p *client.SignedParams) (*client.CreateAccountResult, *rpcError) {
	owner, rerr := s.authenticate(client.MethodTokenCreateAccount, p)
	if rerr != nil {
		return nil, rerr
	}
	addr, err := s.tokenSvc.CreateWalletAccount(owner)
	if err != nil {
		return nil, domainError(err)
	}
	return &client.CreateAccountResult{Address: addr.String()}, nil
}

func (s *Server) rpcHealth() (*client.HealthResult, *rpcError) {
	clock := s.healthSvc.Now()
	res := &client.HealthResult{
		Status:        "ok",
		Slot:          clock.Slot,
		UnixTimestamp: clock.UnixTimestamp,
		ActiveStakes:  s.healthSvc.ActiveStakes(),
	}
	vault, err := s.healthSvc.VaultBalance()
	if err != nil {
		res.Status = "degraded"
		return res, domainError(err)
	}
	res.VaultBalance = vault.Dec()
	return res, nil
}
