// Package metrics wires the hub's dispatch, delivery, and shared-state
// activity into Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// Collector holds the hub's Prometheus collectors. The zero value is not
// usable; construct with NewCollector.
type Collector struct {
	dispatchTotal       prometheus.Counter
	queueDepth          *prometheus.GaugeVec
	sharedStateResolves *prometheus.CounterVec
	responseTimeouts    prometheus.Counter

	registerer prometheus.Registerer
}

func newCounter(name, help string) prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "eventhub",
		Name:      name,
		Help:      help,
	})
}

func newGaugeVec(name, help string, labels []string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "eventhub",
		Name:      name,
		Help:      help,
	}, labels)
}

func newCounterVec(name, help string, labels []string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eventhub",
		Name:      name,
		Help:      help,
	}, labels)
}

// NewCollector builds a Collector. If registerer is nil, prometheus's
// default registerer is used.
func NewCollector(registerer prometheus.Registerer) *Collector {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	return &Collector{
		registerer:          registerer,
		dispatchTotal:       newCounter("dispatch_total", "Total number of events dispatched."),
		queueDepth:          newGaugeVec("extension_queue_depth", "Number of events queued for an extension's private worker.", []string{"extension"}),
		sharedStateResolves: newCounterVec("shared_state_resolve_total", "Total number of shared-state resolutions, by extension.", []string{"extension"}),
		responseTimeouts:    newCounter("response_listener_timeout_total", "Total number of response listeners that fired on timeout instead of a match."),
	}
}

// Register registers all collectors. Safe to call more than once.
func (c *Collector) Register() error {
	collectors := []prometheus.Collector{
		c.dispatchTotal,
		c.queueDepth,
		c.sharedStateResolves,
		c.responseTimeouts,
	}
	for _, collector := range collectors {
		if err := c.registerer.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}

// RecordDispatch increments the dispatch counter.
func (c *Collector) RecordDispatch() {
	c.dispatchTotal.Inc()
}

// RecordQueueDepth sets the current queue depth gauge for extensionName.
func (c *Collector) RecordQueueDepth(extensionName string, depth int) {
	c.queueDepth.WithLabelValues(extensionName).Set(float64(depth))
}

// RecordSharedStateResolve increments the resolve counter for extensionName.
func (c *Collector) RecordSharedStateResolve(extensionName string) {
	c.sharedStateResolves.WithLabelValues(extensionName).Inc()
}

// RecordResponseTimeout increments the response-listener timeout counter.
func (c *Collector) RecordResponseTimeout() {
	c.responseTimeouts.Inc()
}

// SharedStateResolveTotal reports the current value of the resolve counter
// for extensionName. It exists for tests that need to assert which code
// paths do, and do not, count as a resolution.
func (c *Collector) SharedStateResolveTotal(extensionName string) float64 {
	return testutil.ToFloat64(c.sharedStateResolves.WithLabelValues(extensionName))
}
