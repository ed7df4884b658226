package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	CycleCount         prometheus.Counter
	AccountFailures    prometheus.Counter
	MessagesScanned    prometheus.Counter
	CodesExtracted     *prometheus.CounterVec
	ShipmentsCreated   prometheus.Counter
	DeliverySuccesses  prometheus.Counter
	DeliveryFailures   prometheus.Counter
	AmbiguousMatches   prometheus.Counter
	CycleDuration      prometheus.Histogram
	ConfiguredAccounts prometheus.Gauge
}

// NewMetrics creates new Prometheus metrics registered against reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		CycleCount: factory.NewCounter(prometheus.CounterOpts{
			Name: "parcel_code_relay_cycle_count",
			Help: "Total number of mailbox scan cycles",
		}),
		AccountFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "parcel_code_relay_account_failures",
			Help: "Total number of per-account scan failures",
		}),
		MessagesScanned: factory.NewCounter(prometheus.CounterOpts{
			Name: "parcel_code_relay_messages_scanned",
			Help: "Total number of candidate messages examined",
		}),
		CodesExtracted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "parcel_code_relay_codes_extracted",
			Help: "Total number of codes extracted from emails by kind",
		}, []string{"kind"}),
		ShipmentsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "parcel_code_relay_shipments_created",
			Help: "Total number of shipment rows auto-created from emails",
		}),
		DeliverySuccesses: factory.NewCounter(prometheus.CounterOpts{
			Name: "parcel_code_relay_delivery_successes",
			Help: "Total number of successful pickup-code deliveries",
		}),
		DeliveryFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "parcel_code_relay_delivery_failures",
			Help: "Total number of failed pickup-code deliveries",
		}),
		AmbiguousMatches: factory.NewCounter(prometheus.CounterOpts{
			Name: "parcel_code_relay_ambiguous_matches",
			Help: "Total number of tracking-number lookups matching multiple shipments",
		}),
		CycleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "parcel_code_relay_cycle_duration_seconds",
			Help:    "Time spent per mailbox scan cycle",
			Buckets: prometheus.DefBuckets,
		}),
		ConfiguredAccounts: factory.NewGauge(prometheus.GaugeOpts{
			Name: "parcel_code_relay_configured_accounts",
			Help: "Number of configured mailbox accounts",
		}),
	}
}
