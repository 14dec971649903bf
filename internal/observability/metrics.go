// Package observability holds service-wide Prometheus instruments.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Live timer states reported by the state gauge.
var liveStates = []string{"idle", "running", "paused", "finished"}

var (
	sessionsRecorded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "motionlog",
		Subsystem: "sessions",
		Name:      "recorded_total",
		Help:      "Number of sessions appended to the log, by source.",
	}, []string{"source"})

	lastSessionGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "motionlog",
		Subsystem: "sessions",
		Name:      "last_recorded_timestamp_seconds",
		Help:      "Unix timestamp of the most recent session appended to the log.",
	})

	motionSamples = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "motionlog",
		Subsystem: "live",
		Name:      "samples_classified_total",
		Help:      "Number of accelerometer samples classified, by motion category.",
	}, []string{"category"})

	ignoredSamples = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "motionlog",
		Subsystem: "live",
		Name:      "samples_ignored_total",
		Help:      "Number of sensor events ignored by the live session, by reason.",
	}, []string{"reason"})

	liveStateGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "motionlog",
		Subsystem: "live",
		Name:      "timer_state",
		Help:      "1 for the current live timer state, 0 otherwise.",
	}, []string{"state"})
)

func init() {
	prometheus.MustRegister(sessionsRecorded, lastSessionGauge, motionSamples, ignoredSamples, liveStateGauge)
}

// RecordSessionRecorded counts a new session and advances the watermark gauge.
func RecordSessionRecorded(source string, ts time.Time) {
	sessionsRecorded.WithLabelValues(source).Inc()
	if ts.IsZero() {
		return
	}
	lastSessionGauge.Set(float64(ts.Unix()))
}

// RecordMotion counts a classified sample.
func RecordMotion(category string) {
	motionSamples.WithLabelValues(category).Inc()
}

// RecordIgnoredSample counts a sensor event the live session discarded.
func RecordIgnoredSample(reason string) {
	ignoredSamples.WithLabelValues(reason).Inc()
}

// RecordLiveState flips the state gauge to the given state.
func RecordLiveState(state string) {
	for _, s := range liveStates {
		value := 0.0
		if s == state {
			value = 1
		}
		liveStateGauge.WithLabelValues(s).Set(value)
	}
}
