package jsonrpc

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"
	"github.com/creachadair/jrpc2/jhttp"
	"github.com/gagliardetto/solana-go"
	"github.com/gorilla/mux"

	"github.com/mezonai/stakevault/client"
	"github.com/mezonai/stakevault/errors"
	"github.com/mezonai/stakevault/exception"
	"github.com/mezonai/stakevault/interfaces"
	"github.com/mezonai/stakevault/jsonx"
	"github.com/mezonai/stakevault/logx"
	"github.com/mezonai/stakevault/monitoring"
	"github.com/mezonai/stakevault/ratelimit"
)

// DefaultMaxClockSkew bounds how far a signed request timestamp may drift from server time
const DefaultMaxClockSkew = 60 * time.Second

// --- Error type used by handlers ---

type rpcError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func toJRPC2Error(e *rpcError) error {
	if e == nil {
		return nil
	}
	var networkError errors.NetworkError
	err := jsonx.Unmarshal([]byte(e.Message), &networkError)
	if err == nil {
		return jrpc2.Errorf(jrpc2.Code(e.Code), "%s", networkError.Message).WithData(networkError)
	}
	return jrpc2.Errorf(jrpc2.Code(e.Code), "%s", e.Message)
}

// --- Server ---

type Server struct {
	addr       string
	stakingSvc interfaces.StakingService
	tokenSvc   interfaces.TokenService
	healthSvc  interfaces.HealthService
	maxSkew    time.Duration
	now        func() time.Time
	corsConfig CORSConfig
	httpServer *http.Server

	// nil limiters do not limit
	ipLimiter     *ratelimit.RateLimiter
	signerLimiter *ratelimit.RateLimiter

	replays *replayGuard
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         int
}

func NewServer(addr string, stakingSvc interfaces.StakingService, tokenSvc interfaces.TokenService, healthSvc interfaces.HealthService) *Server {
	return &Server{
		addr:       addr,
		stakingSvc: stakingSvc,
		tokenSvc:   tokenSvc,
		healthSvc:  healthSvc,
		maxSkew:    DefaultMaxClockSkew,
		now:        time.Now,
		replays:    newReplayGuard(2 * DefaultMaxClockSkew),
		corsConfig: CORSConfig{
			AllowedOrigins: []string{},
			AllowedMethods: []string{},
			AllowedHeaders: []string{},
			MaxAge:         0,
		},
	}
}

// SetMaxClockSkew changes the accepted timestamp window, non-positive values keep the default
func (s *Server) SetMaxClockSkew(d time.Duration) {
	if d > 0 {
		s.maxSkew = d
		s.replays = newReplayGuard(2 * d)
	}
}

// SetRateLimits caps requests per second per client IP and per signer, zero disables a limit
func (s *Server) SetRateLimits(perIP, perSigner int) {
	s.stopLimiters()
	s.ipLimiter, s.signerLimiter = nil, nil
	if perIP > 0 {
		cfg := ratelimit.DefaultConfig()
		cfg.MaxRequests = perIP
		s.ipLimiter = ratelimit.NewRateLimiter(cfg)
	}
	if perSigner > 0 {
		cfg := ratelimit.DefaultConfig()
		cfg.MaxRequests = perSigner
		s.signerLimiter = ratelimit.NewRateLimiter(cfg)
	}
}

func (s *Server) stopLimiters() {
	if s.ipLimiter != nil {
		s.ipLimiter.Stop()
	}
	if s.signerLimiter != nil {
		s.signerLimiter.Stop()
	}
}

// SetCORSConfig allows configuring CORS settings
func (s *Server) SetCORSConfig(config CORSConfig) {
	s.corsConfig = config
}

// Handler routes JSON-RPC on "/", plus "/health" and "/metrics"
func (s *Server) Handler() http.Handler {
	jh := jhttp.NewBridge(s.buildMethodMap(), &jhttp.BridgeOptions{Server: &jrpc2.ServerOptions{}})

	router := mux.NewRouter()
	router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	monitoring.RegisterMetrics(router)
	router.PathPrefix("/").Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.setCORSHeaders(w, r)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		if s.ipLimiter != nil {
			if ip := extractClientIPFromRequest(r); !s.ipLimiter.Allow(ip) {
				logx.Warn("RPC", "Rate limited ip=", ip)
				writeNetworkError(w, http.StatusTooManyRequests, errors.FromCode(string(errors.ErrCodeRateLimited)))
				return
			}
		}
		jh.ServeHTTP(w, r)
	}))
	return router
}

func (s *Server) Start() {
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	logx.Info("RPC", "JSON-RPC server listening on ", s.addr)
	exception.SafeGo("jsonrpc.ListenAndServe", func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Error("RPC", "JSON-RPC server stopped: ", err)
		}
	})
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.stopLimiters()
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Build jrpc2 method map
func (s *Server) buildMethodMap() handler.Map {
	return handler.Map{
		client.MethodStakingInitialize: handler.New(func(ctx context.Context, p client.SignedParams) (*client.InitializeResult, error) {
			res, err := s.rpcInitialize(ctx, &p)
			return res, toJRPC2Error(err)
		}),
		client.MethodStakingStake: handler.New(func(ctx context.Context, p client.SignedParams) (*client.StakeResult, error) {
			res, err := s.rpcStake(ctx, &p)
			return res, toJRPC2Error(err)
		}),
		client.MethodStakingDestake: handler.New(func(ctx context.Context, p client.SignedParams) (*client.DestakeResult, error) {
			res, err := s.rpcDestake(ctx, &p)
			return res, toJRPC2Error(err)
		}),
		client.MethodStakingGetStakeInfo: handler.New(func(ctx context.Context, p client.ParticipantParams) (*client.StakeInfoResult, error) {
			res, err := s.rpcGetStakeInfo(p)
			return res, toJRPC2Error(err)
		}),
		client.MethodStakingGetAddresses: handler.New(func(ctx context.Context, p client.ParticipantParams) (*client.AddressesResult, error) {
			res, err := s.rpcGetAddresses(p)
			return res, toJRPC2Error(err)
		}),
		client.MethodTokenGetBalance: handler.New(func(ctx context.Context, p client.AddressParams) (*client.BalanceResult, error) {
			res, err := s.rpcGetBalance(p)
			return res, toJRPC2Error(err)
		}),
		client.MethodTokenMintTo: handler.New(func(ctx context.Context, p client.SignedParams) (*client.MintToResult, error) {
			res, err := s.rpcMintTo(ctx, &p)
			return res, toJRPC2Error(err)
		}),
		client.MethodTokenCreateAccount: handler.New(func(ctx context.Context, p client.SignedParams) (*client.CreateAccountResult, error) {
			res, err := s.rpcCreateAccount(ctx, &p)
			return res, toJRPC2Error(err)
		}),
		client.MethodHealthCheck: handler.New(func(ctx context.Context) (*client.HealthResult, error) {
			res, err := s.rpcHealth()
			return res, toJRPC2Error(err)
		}),
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	res, rerr := s.rpcHealth()
	w.Header().Set("Content-Type", "application/json")
	if rerr != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if err := jsonx.NewEncoder(w).Encode(res); err != nil {
		logx.Warn("RPC", "Failed to write health response: ", err)
	}
}

// --- Helpers ---

func writeNetworkError(w http.ResponseWriter, status int, netErr *errors.NetworkError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := jsonx.NewEncoder(w).Encode(netErr); err != nil {
		logx.Warn("RPC", "Failed to write error response: ", err)
	}
}

func (s *Server) setCORSHeaders(w http.ResponseWriter, r *http.Request) {
	// Set allowed origins
	if len(s.corsConfig.AllowedOrigins) > 0 {
		if s.corsConfig.AllowedOrigins[0] == "*" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		} else {
			origin := r.Header.Get("Origin")
			for _, allowedOrigin := range s.corsConfig.AllowedOrigins {
				if origin == allowedOrigin {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					break
				}
			}
		}
	}

	if len(s.corsConfig.AllowedMethods) > 0 {
		w.Header().Set("Access-Control-Allow-Methods", strings.Join(s.corsConfig.AllowedMethods, ", "))
	}

	if len(s.corsConfig.AllowedHeaders) > 0 {
		w.Header().Set("Access-Control-Allow-Headers", strings.Join(s.corsConfig.AllowedHeaders, ", "))
	}

	if s.corsConfig.MaxAge > 0 {
		w.Header().Set("Access-Control-Max-Age", fmt.Sprintf("%d", s.corsConfig.MaxAge))
	}
}

// --- Env helpers ---

// CORSFromEnv reads environment variables and constructs a CORSConfig.
// Returns (cfg, true) if any CORS-related env var is set; otherwise (zero, false).
//
// Env vars:
// - CORS_ALLOWED_ORIGINS: comma-separated list
// - CORS_ALLOWED_METHODS: comma-separated list
// - CORS_ALLOWED_HEADERS: comma-separated list
// - CORS_MAX_AGE: integer seconds
func CORSFromEnv() (CORSConfig, bool) {
	origins := os.Getenv("CORS_ALLOWED_ORIGINS")
	methods := os.Getenv("CORS_ALLOWED_METHODS")
	headers := os.Getenv("CORS_ALLOWED_HEADERS")
	maxAgeStr := os.Getenv("CORS_MAX_AGE")

	var maxAge int
	if maxAgeStr != "" {
		if v, err := strconv.Atoi(maxAgeStr); err == nil {
			maxAge = v
		}
	}

	var allowedOrigins, allowedMethods, allowedHeaders []string
	if origins != "" {
		allowedOrigins = splitAndTrim(origins)
	}
	if methods != "" {
		allowedMethods = splitAndTrim(methods)
	}
	if headers != "" {
		allowedHeaders = splitAndTrim(headers)
	}

	provided := len(allowedOrigins) > 0 || len(allowedMethods) > 0 || len(allowedHeaders) > 0 || maxAge > 0
	if !provided {
		return CORSConfig{}, false
	}

	return CORSConfig{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: allowedMethods,
		AllowedHeaders: allowedHeaders,
		MaxAge:         maxAge,
	}, true
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	var out []string
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

func parseAddress(addr string) (solana.PublicKey, *rpcError) {
	key, err := solana.PublicKeyFromBase58(addr)
	if err != nil {
		return solana.PublicKey{}, invalidParams(errors.ErrCodeInvalidAddress)
	}
	return key, nil
}
