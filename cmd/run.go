package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"

	"github.com/mezonai/stakevault/config"
	"github.com/mezonai/stakevault/events"
	"github.com/mezonai/stakevault/exception"
	"github.com/mezonai/stakevault/jsonrpc"
	"github.com/mezonai/stakevault/logx"
	"github.com/mezonai/stakevault/monitoring"
	"github.com/mezonai/stakevault/staking"
	"github.com/mezonai/stakevault/store"
	"github.com/mezonai/stakevault/sysvar"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the staking node",
	Long:  "Serve the staking program over JSON-RPC and expose prometheus metrics.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runNode()
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runNode() error {
	monitoring.InitMetrics()

	programCfg, err := config.LoadProgramConfig(configPath(programConfigFile))
	if err != nil {
		return fmt.Errorf("load program config: %w", err)
	}
	nodeCfg, err := config.LoadNodeConfig(configPath(nodeConfigFile))
	if err != nil {
		return fmt.Errorf("load node config: %w", err)
	}

	stores, err := store.CreateStores(&nodeCfg.Store)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer stores.Close()

	clock, err := sysvar.NewSlotClock(nodeCfg.Clock.Genesis(), nodeCfg.Clock.SlotDuration())
	if err != nil {
		return err
	}

	eventBus := events.NewEventBus()
	engine, err := staking.NewEngine(staking.Config{
		ProgramID: programCfg.ProgramKey(),
		Mint:      programCfg.MintKey(),
		Stores:    stores,
		Clock:     clock,
		EventBus:  eventBus,
	})
	if err != nil {
		return err
	}

	subID, eventCh := eventBus.Subscribe()
	defer eventBus.Unsubscribe(subID)
	exception.SafeGo("events.Logger", func() {
		for ev := range eventCh {
			logx.Info("EVENTBUS", fmt.Sprintf("%s | participant=%s | at=%s",
				ev.Type(), ev.Participant(), ev.Timestamp().Format(time.RFC3339)))
		}
	})

	server := jsonrpc.NewServer(nodeCfg.RPC.ListenAddr, engine, engine, engine)
	server.SetMaxClockSkew(nodeCfg.RPC.MaxClockSkew())
	server.SetRateLimits(nodeCfg.RPC.RateLimitIP, nodeCfg.RPC.RateLimitSigner)
	if cors, ok := jsonrpc.CORSFromEnv(); ok {
		server.SetCORSConfig(cors)
	}
	server.Start()

	metricsServer := startMetricsServer(nodeCfg.Metrics.ListenAddr)

	logx.Info("NODE", fmt.Sprintf("Node running | program=%s | vault=%s | rpc=%s | metrics=%s",
		programCfg.ProgramID, engine.VaultAddress(), nodeCfg.RPC.ListenAddr, nodeCfg.Metrics.ListenAddr))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logx.Info("NODE", "Received signal ", sig, ", shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logx.Warn("NODE", "RPC shutdown: ", err)
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(ctx); err != nil {
			logx.Warn("NODE", "Metrics shutdown: ", err)
		}
	}
	return nil
}

// startMetricsServer serves /metrics on its own listener, empty addr disables it
func startMetricsServer(addr string) *http.Server {
	if addr == "" {
		return nil
	}
	router := mux.NewRouter()
	monitoring.RegisterMetrics(router)
	srv := &http.Server{Addr: addr, Handler: router, ReadHeaderTimeout: 10 * time.Second}
	exception.SafeGo("monitoring.ListenAndServe", func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Error("MONITORING", "Metrics server stopped: ", err)
		}
	})
	return srv
}
