package redif

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Close reasons used as the "reason" label of connections_closed_total.
const (
	ReasonEOF           = "eof"
	ReasonProtocol      = "protocol"
	ReasonFrameTooLarge = "frame_too_large"
	ReasonHandlerPanic  = "handler_panic"
	ReasonIO            = "io"
	ReasonShutdown      = "shutdown"
)

// Metrics holds the reactor's Prometheus collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	connsActive     prometheus.Gauge
	connsAccepted   prometheus.Counter
	connsClosed     *prometheus.CounterVec
	framesReceived  prometheus.Counter
	repliesSent     prometheus.Counter
	bytesRead       prometheus.Counter
	bytesWritten    prometheus.Counter
	handlerDuration prometheus.Histogram
}

// NewMetrics creates the reactor collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	const ns = "redif"
	m := &Metrics{
		connsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "connections_active",
			Help:      "Number of open client connections.",
		}),
		connsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "connections_accepted_total",
			Help:      "Total number of accepted client connections.",
		}),
		connsClosed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "connections_closed_total",
			Help:      "Total number of closed client connections by reason.",
		}, []string{"reason"}),
		framesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "frames_received_total",
			Help:      "Total number of decoded request values.",
		}),
		repliesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "replies_sent_total",
			Help:      "Total number of replies queued for clients.",
		}),
		bytesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "bytes_read_total",
			Help:      "Total number of bytes read from clients.",
		}),
		bytesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "bytes_written_total",
			Help:      "Total number of bytes written to clients.",
		}),
		handlerDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "handler_duration_seconds",
			Help:      "Time spent handling one drained batch of requests.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.connsActive,
			m.connsAccepted,
			m.connsClosed,
			m.framesReceived,
			m.repliesSent,
			m.bytesRead,
			m.bytesWritten,
			m.handlerDuration,
		)
	}
	return m
}

func (m *Metrics) accepted() {
	if m == nil {
		return
	}
	m.connsAccepted.Inc()
	m.connsActive.Inc()
}

func (m *Metrics) closed(reason string) {
	if m == nil {
		return
	}
	m.connsActive.Dec()
	m.connsClosed.WithLabelValues(reason).Inc()
}

func (m *Metrics) read(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.bytesRead.Add(float64(n))
}

func (m *Metrics) written(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.bytesWritten.Add(float64(n))
}

func (m *Metrics) batch(frames, replies int, d time.Duration) {
	if m == nil || frames == 0 {
		return
	}
	m.framesReceived.Add(float64(frames))
	m.repliesSent.Add(float64(replies))
	m.handlerDuration.Observe(d.Seconds())
}
