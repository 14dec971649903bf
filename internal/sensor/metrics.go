package sensor

import "github.com/prometheus/client_golang/prometheus"

var (
	deliveredCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "motionlog",
		Subsystem: "sensor",
		Name:      "events_delivered_total",
		Help:      "Number of sensor events handed to a registered listener.",
	}, []string{"sensor"})

	droppedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "motionlog",
		Subsystem: "sensor",
		Name:      "events_dropped_total",
		Help:      "Number of sensor events received while no listener was registered.",
	}, []string{"sensor"})

	decodeErrorCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "motionlog",
		Subsystem: "sensor",
		Name:      "decode_errors_total",
		Help:      "Number of sample messages that could not be decoded, per topic.",
	}, []string{"topic"})
)

func init() {
	prometheus.MustRegister(deliveredCounter, droppedCounter, decodeErrorCounter)
}

func recordDelivered(t Type) {
	deliveredCounter.WithLabelValues(string(t)).Inc()
}

func recordDropped(t Type) {
	droppedCounter.WithLabelValues(string(t)).Inc()
}

func recordDecodeError(topic string) {
	decodeErrorCounter.WithLabelValues(topic).Inc()
}
