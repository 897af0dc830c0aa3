package metrics

import "github.com/prometheus/client_golang/prometheus"

// Provider analysis Prometheus metrics.
var (
	AnalysisAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "memoryreel",
			Name:      "analysis_attempts_total",
			Help:      "Total number of provider analysis attempts",
		},
		[]string{"provider", "capability", "outcome"},
	)

	AnalysisAttemptDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "memoryreel",
			Name:      "analysis_attempt_duration_seconds",
			Help:      "Provider analysis attempt duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider", "capability"},
	)

	ProviderHealth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "memoryreel",
			Name:      "provider_health",
			Help:      "Provider health state: 2 available, 1 degraded, 0 unavailable",
		},
		[]string{"provider"},
	)

	ProviderErrorRate = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "memoryreel",
			Name:      "provider_error_rate",
			Help:      "Rolling provider error rate observed between health sweeps",
		},
		[]string{"provider"},
	)
)

// Attempt outcome label values.
const (
	OutcomeSuccess      = "success"
	OutcomeError        = "error"
	OutcomeTimeout      = "timeout"
	OutcomeSubThreshold = "sub_threshold"
	OutcomeCanceled     = "canceled"
)

var analysisMetricsRegistered bool

// RegisterAnalysisMetrics registers provider analysis metrics. Must be called once from main.
func RegisterAnalysisMetrics() {
	if analysisMetricsRegistered {
		return
	}
	prometheus.MustRegister(AnalysisAttemptsTotal)
	prometheus.MustRegister(AnalysisAttemptDuration)
	prometheus.MustRegister(ProviderHealth)
	prometheus.MustRegister(ProviderErrorRate)
	analysisMetricsRegistered = true
}
