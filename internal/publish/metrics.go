package publish

import "github.com/prometheus/client_golang/prometheus"

var (
	deliveredCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "motionlog",
		Subsystem: "publish",
		Name:      "events_delivered_total",
		Help:      "Number of session events successfully published to Kafka.",
	})

	failedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "motionlog",
		Subsystem: "publish",
		Name:      "events_failed_total",
		Help:      "Number of session events that failed to publish.",
	})

	droppedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "motionlog",
		Subsystem: "publish",
		Name:      "events_dropped_total",
		Help:      "Number of session events dropped because the publish queue was full.",
	})

	publishDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "motionlog",
		Subsystem: "publish",
		Name:      "write_duration_seconds",
		Help:      "Time spent writing one session event to Kafka.",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
	})
)

func init() {
	prometheus.MustRegister(deliveredCounter, failedCounter, droppedCounter, publishDuration)
}
