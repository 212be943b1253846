package observe

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	connState = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "apexmatch_connection_state",
		Help: "Current connection state (0 disconnected, 1 connecting, 2 connected, 3 reconnecting, 4 failed)",
	})

	messagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apexmatch_messages_total",
			Help: "Total envelopes by direction",
		},
		[]string{"direction"}, // sent|received|queued
	)

	droppedMessagesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "apexmatch_dropped_messages_total",
		Help: "Total envelopes evicted from the outbound queue",
	})

	reconnectsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "apexmatch_reconnect_attempts_total",
		Help: "Total reconnection attempts",
	})

	heartbeatsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apexmatch_heartbeats_total",
			Help: "Total heartbeats by direction",
		},
		[]string{"direction"}, // sent|received
	)

	parseErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "apexmatch_parse_errors_total",
		Help: "Total inbound frames that failed to decode",
	})

	deliveryTimeoutsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "apexmatch_delivery_timeouts_total",
		Help: "Total tracked envelopes that expired without a delivery receipt",
	})

	queueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "apexmatch_outbound_queue_depth",
		Help: "Envelopes currently waiting in the outbound queue",
	})
)

func init() {
	prometheus.MustRegister(
		connState,
		messagesTotal,
		droppedMessagesTotal,
		reconnectsTotal,
		heartbeatsTotal,
		parseErrorsTotal,
		deliveryTimeoutsTotal,
		queueDepth,
	)
}

func SetState(s float64)       { connState.Set(s) }
func IncMessage(dir string)    { messagesTotal.WithLabelValues(dir).Inc() }
func IncDropped()              { droppedMessagesTotal.Inc() }
func IncReconnect()            { reconnectsTotal.Inc() }
func IncHeartbeat(dir string)  { heartbeatsTotal.WithLabelValues(dir).Inc() }
func IncParseError()           { parseErrorsTotal.Inc() }
func IncDeliveryTimeout()      { deliveryTimeoutsTotal.Inc() }
func SetQueueDepth(n float64)  { queueDepth.Set(n) }
