package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
)

// 确认流程的业务指标。未调用 Init 时指标照常计数，只是不会被暴露 (测试环境)
var (
	StageDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wallet_confirm_stage_duration_seconds",
		Help:    "Duration of each confirmation pipeline stage",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"stage"})

	EnrichmentFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wallet_confirm_enrichment_failures_total",
		Help: "Enrichment sub-tasks that degraded to a fallback value",
	}, []string{"task"})

	DecisionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wallet_confirm_decisions_total",
		Help: "Final decisions returned to callers",
	}, []string{"family", "decision"})

	RefreshTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wallet_confirm_refresh_total",
		Help: "Standing dialog refresh outcomes",
	}, []string{"result"})

	SideEffectsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wallet_confirm_side_effects_total",
		Help: "Lifecycle side-effects scheduled or executed",
	}, []string{"kind", "result"})
)

func registerConfirmMetrics(r prometheus.Registerer) {
	r.MustRegister(StageDuration, EnrichmentFailures, DecisionsTotal, RefreshTotal, SideEffectsTotal)
}
