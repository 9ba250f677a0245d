package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ticksTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "warden_ticks_total",
		Help: "Total number of monitoring ticks completed",
	})
	scanFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "warden_scan_failures_total",
		Help: "Total number of failed process snapshot attempts",
	})
	violationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "warden_violations_total",
		Help: "Total number of blocked executables detected running",
	})
	challengesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "warden_challenges_total",
		Help: "Total number of completed challenge sessions by result",
	}, []string{"result"})
)

// Register registers Prometheus collectors. Call once at startup.
func Register(registry *prometheus.Registry) {
	registry.MustRegister(ticksTotal, scanFailuresTotal, violationsTotal, challengesTotal)
}

// IncTick increments the completed ticks counter.
func IncTick() { ticksTotal.Inc() }

// IncScanFailure increments the failed snapshot counter.
func IncScanFailure() { scanFailuresTotal.Inc() }

// IncViolation increments the detected violations counter.
func IncViolation() { violationsTotal.Inc() }

// IncChallenge increments the challenge counter for a result
// ("granted", "terminated", "skipped").
func IncChallenge(result string) { challengesTotal.WithLabelValues(result).Inc() }
