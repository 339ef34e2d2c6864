package monitoring

import (
	"sync"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mezonai/stakevault/logx"
)

type nodePromMetrics struct {
	nodeUpUnixSeconds prometheus.Gauge
	stakeCount        prometheus.Counter
	destakeCount      prometheus.Counter
	initializeCount   prometheus.Counter
	failedOpCount     *prometheus.CounterVec
	rewardPaid        prometheus.Counter
	principalReturned prometheus.Counter
	activeStakes      prometheus.Gauge
	panicCount        prometheus.Counter
}

func newNodePromMetrics() *nodePromMetrics {
	return &nodePromMetrics{
		nodeUpUnixSeconds: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "stakevault_node_up_timestamp_unix_seconds",
				Help: "Unix timestamp of the node",
			},
		),
		stakeCount: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "stakevault_stake_total",
				Help: "The total number of committed stake calls",
			},
		),
		destakeCount: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "stakevault_destake_total",
				Help: "The total number of committed destake calls",
			},
		),
		initializeCount: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "stakevault_initialize_total",
				Help: "The total number of initialize calls that created the vault",
			},
		),
		failedOpCount: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stakevault_failed_ops_total",
				Help: "The total number of rolled back calls",
			},
			[]string{"op", "reason"},
		),
		rewardPaid: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "stakevault_reward_paid_base_units_total",
				Help: "Base units paid out of the vault as rewards",
			},
		),
		principalReturned: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "stakevault_principal_returned_base_units_total",
				Help: "Base units returned from escrow accounts",
			},
		),
		activeStakes: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "stakevault_active_stakes",
				Help: "Number of ledger entries currently staked",
			},
		),
		panicCount: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "stakevault_panic_total",
				Help: "Recovered panics in background goroutines",
			},
		),
	}
}

var (
	nodeMetrics *nodePromMetrics
	initOnce    sync.Once
)

// InitMetrics registers the collectors once; recording before init is a no-op
func InitMetrics() {
	initOnce.Do(func() {
		nodeMetrics = newNodePromMetrics()
		nodeMetrics.nodeUpUnixSeconds.SetToCurrentTime()
	})
}

func RegisterMetrics(router *mux.Router) {
	logx.Info("MONITORING", "Registering prometheus metrics")
	router.Handle("/metrics", promhttp.Handler())
}

func IncreaseStakeCount() {
	if nodeMetrics == nil {
		return
	}
	nodeMetrics.stakeCount.Inc()
}

func IncreaseDestakeCount() {
	if nodeMetrics == nil {
		return
	}
	nodeMetrics.destakeCount.Inc()
}

func IncreaseInitializeCount() {
	if nodeMetrics == nil {
		return
	}
	nodeMetrics.initializeCount.Inc()
}

func RecordFailedOp(op string, reason string) {
	if nodeMetrics == nil {
		return
	}
	nodeMetrics.failedOpCount.With(prometheus.Labels{
		"op":     op,
		"reason": reason,
	}).Inc()
}

func RecordPayout(reward, principal uint64) {
	if nodeMetrics == nil {
		return
	}
	nodeMetrics.rewardPaid.Add(float64(reward))
	nodeMetrics.principalReturned.Add(float64(principal))
}

func SetActiveStakes(n int) {
	if nodeMetrics == nil {
		return
	}
	nodeMetrics.activeStakes.Set(float64(n))
}

func IncreasePanicCount() {
	if nodeMetrics == nil {
		return
	}
	nodeMetrics.panicCount.Inc()
}
